package handler

import (
	"net/http"

	"DrinkBuddy/internal/service"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	svc *service.CommentService
}

type createCommentReq struct {
	MeetupID uint64 `json:"meetupId"`
	Content  string `json:"content"`
}

type editCommentReq struct {
	Content string `json:"content"`
}

func NewCommentHandler(svc *service.CommentService) *CommentHandler {
	return &CommentHandler{svc: svc}
}

// List 某个聚会的评论，公开
func (h *CommentHandler) List(c *gin.Context) {
	meetupID, ok := paramID(c, "meetupId")
	if !ok {
		return
	}
	list, err := h.svc.List(c.Request.Context(), meetupID)
	if err != nil {
		fail(c, err, "failed to load comments")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "comments": list})
}

// Create 发表评论
func (h *CommentHandler) Create(c *gin.Context) {
	var req createCommentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badParams(c)
		return
	}
	comment, err := h.svc.Create(c.Request.Context(), req.MeetupID, caller(c).ID, req.Content)
	if err != nil {
		fail(c, err, "failed to create comment")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "comment": comment})
}

// Edit 只能改自己的评论
func (h *CommentHandler) Edit(c *gin.Context) {
	commentID, ok := paramID(c, "commentId")
	if !ok {
		return
	}
	var req editCommentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badParams(c)
		return
	}
	comment, err := h.svc.Edit(c.Request.Context(), commentID, caller(c).ID, req.Content)
	if err != nil {
		fail(c, err, "failed to edit comment")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "comment": comment})
}

// Delete 只能删自己的评论
func (h *CommentHandler) Delete(c *gin.Context) {
	commentID, ok := paramID(c, "commentId")
	if !ok {
		return
	}
	deletedID, err := h.svc.Delete(c.Request.Context(), commentID, caller(c).ID)
	if err != nil {
		fail(c, err, "failed to delete comment")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "deletedId": deletedID})
}

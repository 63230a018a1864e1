package handler

import (
	"net/http"

	"DrinkBuddy/internal/service"

	"github.com/gin-gonic/gin"
)

type ParticipantHandler struct {
	svc *service.ParticipantService
}

func NewParticipantHandler(svc *service.ParticipantService) *ParticipantHandler {
	return &ParticipantHandler{svc: svc}
}

// List 参与者列表，公开
func (h *ParticipantHandler) List(c *gin.Context) {
	meetupID, ok := paramID(c, "id")
	if !ok {
		return
	}
	list, err := h.svc.ListParticipants(c.Request.Context(), meetupID)
	if err != nil {
		fail(c, err, "failed to load participants")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "participants": list})
}

// Join 加入聚会；重复加入返回 200 + alreadyJoined
func (h *ParticipantHandler) Join(c *gin.Context) {
	meetupID, ok := paramID(c, "id")
	if !ok {
		return
	}
	res, err := h.svc.Join(c.Request.Context(), meetupID, caller(c).ID)
	if err != nil {
		fail(c, err, "failed to join")
		return
	}
	if res.AlreadyJoined {
		c.JSON(http.StatusOK, gin.H{"ok": true, "alreadyJoined": true, "joinedCount": res.JoinedCount})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "joinedCount": res.JoinedCount})
}

// Leave 退出聚会
func (h *ParticipantHandler) Leave(c *gin.Context) {
	meetupID, ok := paramID(c, "id")
	if !ok {
		return
	}
	count, err := h.svc.Leave(c.Request.Context(), meetupID, caller(c).ID)
	if err != nil {
		fail(c, err, "failed to leave")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "joinedCount": count})
}

// Kick 发起人移除参与者
func (h *ParticipantHandler) Kick(c *gin.Context) {
	meetupID, ok := paramID(c, "id")
	if !ok {
		return
	}
	targetID, ok := paramID(c, "userId")
	if !ok {
		return
	}
	res, err := h.svc.Kick(c.Request.Context(), meetupID, caller(c).ID, targetID)
	if err != nil {
		fail(c, err, "Failed to kick")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "kickedUserId": res.KickedUserID, "joinedCount": res.JoinedCount})
}

package handler

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"

	"DrinkBuddy/internal/middleware"
	"DrinkBuddy/internal/service"

	"github.com/gin-gonic/gin"
)

type MeetupHandler struct {
	meetups *service.MeetupService
	feed    *service.FeedService
}

type createMeetupReq struct {
	City      string          `json:"city"`
	Drink     string          `json:"drink"`
	TimeLabel string          `json:"timeLabel"`
	People    json.RawMessage `json:"people"`
	Text      string          `json:"text"`
}

func NewMeetupHandler(meetups *service.MeetupService, feed *service.FeedService) *MeetupHandler {
	return &MeetupHandler{meetups: meetups, feed: feed}
}

// parsePeople 客户端可能传数字或字符串，解析不了按 NaN 交给容量修正
func parsePeople(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return math.NaN()
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return v
		}
	}
	return math.NaN()
}

// List 聚会列表，登录可选
func (h *MeetupHandler) List(c *gin.Context) {
	list, err := h.feed.ListMeetups(c.Request.Context(), middleware.Identity(c))
	if err != nil {
		fail(c, err, "failed to load meetups")
		return
	}
	c.JSON(http.StatusOK, list)
}

// Get 单个聚会，登录可选
func (h *MeetupHandler) Get(c *gin.Context) {
	meetupID, ok := paramID(c, "id")
	if !ok {
		return
	}
	view, err := h.feed.GetMeetup(c.Request.Context(), meetupID, middleware.Identity(c))
	if err != nil {
		fail(c, err, "failed to load meetup")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "meetup": view})
}

// Create 发布聚会
func (h *MeetupHandler) Create(c *gin.Context) {
	var req createMeetupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badParams(c)
		return
	}

	m, err := h.meetups.Create(c.Request.Context(), caller(c).ID, service.CreateMeetupInput{
		City:        req.City,
		Drink:       req.Drink,
		TimeLabel:   req.TimeLabel,
		People:      parsePeople(req.People),
		Description: req.Text,
	})
	if err != nil {
		fail(c, err, "failed to create meetup")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "meetupId": m.ID})
}

// Close 发起人关闭报名
func (h *MeetupHandler) Close(c *gin.Context) {
	meetupID, ok := paramID(c, "id")
	if !ok {
		return
	}
	m, err := h.meetups.Close(c.Request.Context(), meetupID, caller(c).ID)
	if err != nil {
		fail(c, err, "Failed to close")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "meetup": gin.H{
		"id":          m.ID,
		"status":      m.Status,
		"closed_at":   m.ClosedAt,
		"canceled_at": m.CanceledAt,
	}})
}

// Cancel 发起人取消聚会
func (h *MeetupHandler) Cancel(c *gin.Context) {
	meetupID, ok := paramID(c, "id")
	if !ok {
		return
	}
	m, err := h.meetups.Cancel(c.Request.Context(), meetupID, caller(c).ID)
	if err != nil {
		fail(c, err, "Failed to cancel")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "meetup": gin.H{
		"id":          m.ID,
		"status":      m.Status,
		"closed_at":   m.ClosedAt,
		"canceled_at": m.CanceledAt,
	}})
}

package handler

import (
	"net/http"

	"DrinkBuddy/internal/service"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	svc  *service.UserService
	auth *service.AuthService
}

type credentialsReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func NewUserHandler(svc *service.UserService, auth *service.AuthService) *UserHandler {
	return &UserHandler{svc: svc, auth: auth}
}

// Register 注册接口
func (h *UserHandler) Register(c *gin.Context) {
	var req credentialsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badParams(c)
		return
	}

	if _, err := h.svc.Register(c.Request.Context(), req.Username, req.Password); err != nil {
		fail(c, err, "register failed")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ok": true})
}

// Login 登录接口
func (h *UserHandler) Login(c *gin.Context) {
	var req credentialsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badParams(c)
		return
	}

	res, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		fail(c, err, "login failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":        true,
		"token":     res.Token,
		"expiresAt": res.ExpiresAt,
		"user":      gin.H{"id": res.User.ID, "username": res.User.Username},
	})
}

// Logout 吊销当前 token
func (h *UserHandler) Logout(c *gin.Context) {
	if err := h.auth.Logout(c.Request.Context(), caller(c)); err != nil {
		fail(c, err, "logout failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Me 当前登录用户
func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.svc.Profile(c.Request.Context(), caller(c).ID)
	if err != nil {
		fail(c, err, "failed to load user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": gin.H{"id": user.ID, "username": user.Username}})
}

package handler

import (
	"errors"
	"net/http"
	"strconv"

	"DrinkBuddy/internal/middleware"
	"DrinkBuddy/internal/service"

	"github.com/gin-gonic/gin"
)

// statusOf 错误分类 -> HTTP 状态码
func statusOf(kind service.Kind) int {
	switch kind {
	case service.KindBadInput, service.KindInvalidState:
		return http.StatusBadRequest
	case service.KindUnauthenticated:
		return http.StatusUnauthorized
	case service.KindForbidden:
		return http.StatusForbidden
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// fail 统一错误响应：{ok:false, code, message}
func fail(c *gin.Context, err error, fallback string) {
	var e *service.Error
	if errors.As(err, &e) {
		c.JSON(statusOf(e.Kind), gin.H{"ok": false, "code": e.Code, "message": e.Msg})
		return
	}
	// 非业务错误不把内部信息暴露给客户端，记到访问日志
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "code": "internal", "message": fallback})
}

func badParams(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"ok": false, "code": "invalid_params", "message": "invalid params"})
}

// paramID 路径参数必须是正整数
func paramID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		fail(c, service.ErrInvalidID, "")
		return 0, false
	}
	return id, true
}

// caller 受保护路由上一定有身份，中间件保证
func caller(c *gin.Context) *service.Identity {
	return middleware.Identity(c)
}

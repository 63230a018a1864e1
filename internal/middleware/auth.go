package middleware

import (
	"errors"
	"net/http"
	"strings"

	"DrinkBuddy/internal/service"

	"github.com/gin-gonic/gin"
)

const ContextIdentityKey = "identity"

// BearerToken 取出 "Bearer <token>"，格式不对返回空串
func BearerToken(header string) string {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// AuthMiddleware 所有写操作必须登录
func AuthMiddleware(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c.GetHeader("Authorization"))
		id, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			status := http.StatusUnauthorized
			code, msg := "unauthenticated", "Invalid token"
			var e *service.Error
			if errors.As(err, &e) {
				code, msg = e.Code, e.Msg
			} else {
				status = http.StatusInternalServerError
				code, msg = "internal", "auth check failed"
				_ = c.Error(err)
			}
			c.AbortWithStatusJSON(status, gin.H{"ok": false, "code": code, "message": msg})
			return
		}

		// 注入调用方身份
		c.Set(ContextIdentityKey, id)
		c.Next()
	}
}

// OptionalAuth 读接口用，token 缺失或无效都按匿名处理
func OptionalAuth(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c.GetHeader("Authorization"))
		if id := auth.AuthenticateOptional(c.Request.Context(), token); id != nil {
			c.Set(ContextIdentityKey, id)
		}
		c.Next()
	}
}

// Identity 取出调用方，匿名时为 nil
func Identity(c *gin.Context) *service.Identity {
	if v, ok := c.Get(ContextIdentityKey); ok {
		if id, ok2 := v.(*service.Identity); ok2 {
			return id
		}
	}
	return nil
}

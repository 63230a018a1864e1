package middleware

import (
	"log/slog"
	"time"

	"DrinkBuddy/internal/pkg"

	"github.com/gin-gonic/gin"
)

const ContextRequestIDKey = "request_id"

// RequestID 透传或生成 X-Request-ID
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := pkg.RequestID(c.GetHeader(pkg.RequestIDHeader))
		c.Set(ContextRequestIDKey, id)
		c.Header(pkg.RequestIDHeader, id)
		c.Next()
	}
}

// AccessLog 每个请求一行结构化日志
func AccessLog(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		attrs := []any{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"request_id", c.GetString(ContextRequestIDKey),
		}
		if id := Identity(c); id != nil {
			attrs = append(attrs, "user_id", id.ID)
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "errors", c.Errors.String())
		}

		switch {
		case c.Writer.Status() >= 500:
			logger.Error("request", attrs...)
		case c.Writer.Status() >= 400:
			logger.Warn("request", attrs...)
		default:
			logger.Info("request", attrs...)
		}
	}
}

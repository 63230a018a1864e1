package pkg

import (
	"strings"

	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// RequestID 复用上游传入的 id，过长或为空时重新生成
func RequestID(incoming string) string {
	id := strings.TrimSpace(incoming)
	if id == "" || len(id) > 64 {
		return uuid.NewString()
	}
	return id
}

package handler

import (
	"net/http"

	"DrinkBuddy/internal/repository/db"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db *gorm.DB
}

func NewHealthHandler(gdb *gorm.DB) *HealthHandler {
	return &HealthHandler{db: gdb}
}

func (h *HealthHandler) Health(c *gin.Context) {
	if err := db.Ping(h.db.WithContext(c.Request.Context())); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "DB not reachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "db": true, "service": "drinkbuddy-backend"})
}

package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glowday/api/internal/constants"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db      *gorm.DB
	started time.Time
}

func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db, started: time.Now()}
}

// Health handles GET /api/health. Reports degraded with a 503 when the
// database is unreachable.
func (h *HealthHandler) Health(c *gin.Context) {
	status := http.StatusOK
	dbStatus := "up"

	sqlDB, err := h.db.DB()
	if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
		status = http.StatusServiceUnavailable
		dbStatus = "down"
	}

	constants.Respond(c, status, "Health check", gin.H{
		"name":     constants.AppName,
		"version":  constants.AppVersion,
		"uptime":   time.Since(h.started).String(),
		"database": dbStatus,
	}, nil)
}

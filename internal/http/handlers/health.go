package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yungbote/healthwhisperer-backend/internal/data/db"
	"github.com/yungbote/healthwhisperer-backend/internal/observability"
)

type HealthHandler struct {
	db      *gorm.DB
	metrics *observability.Metrics
}

func NewHealthHandler(gdb *gorm.DB, metrics *observability.Metrics) *HealthHandler {
	return &HealthHandler{db: gdb, metrics: metrics}
}

// GET /healthcheck
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// GET /api/admin/db
func (h *HealthHandler) DBInfo(c *gin.Context) {
	status := db.VerifySchema(c.Request.Context(), h.db)
	c.JSON(http.StatusOK, gin.H{"ok": status.OK(), "schema": status})
}

// GET /metrics
func (h *HealthHandler) Metrics(c *gin.Context) {
	h.metrics.WriteHTTP(c.Writer, c.Request)
}

package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/healthwhisperer-backend/internal/data/repos"
	"github.com/yungbote/healthwhisperer-backend/internal/http/response"
	"github.com/yungbote/healthwhisperer-backend/internal/rules"
	"github.com/yungbote/healthwhisperer-backend/internal/services"
)

type LogHandler struct {
	logService services.LogService
}

func NewLogHandler(logService services.LogService) *LogHandler {
	return &LogHandler{logService: logService}
}

type createLogRequest struct {
	Payload json.RawMessage `json:"payload"`
	TS      *time.Time      `json:"ts"`
}

// POST /api/logs/:type
// body: { "payload": {...}, "ts": "RFC3339 (optional)" }
func (h *LogHandler) Create(c *gin.Context) {
	var req createLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	row, err := h.logService.Create(c.Request.Context(), rules.EventType(c.Param("type")), req.Payload, req.TS)
	if err != nil {
		response.RespondServiceError(c, "create_log_failed", err)
		return
	}
	response.RespondCreated(c, gin.H{"log": row})
}

// GET /api/logs?type=&since=&until=&limit=
func (h *LogHandler) List(c *gin.Context) {
	f := repos.LogFilter{Type: c.Query("type")}
	var err error
	if f.Since, err = queryTime(c, "since"); err != nil {
		response.RespondServiceError(c, "list_logs_failed", err)
		return
	}
	if f.Until, err = queryTime(c, "until"); err != nil {
		response.RespondServiceError(c, "list_logs_failed", err)
		return
	}
	if f.Limit, err = queryLimit(c); err != nil {
		response.RespondServiceError(c, "list_logs_failed", err)
		return
	}
	logs, err := h.logService.List(c.Request.Context(), f)
	if err != nil {
		response.RespondServiceError(c, "list_logs_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"logs": logs})
}

// DELETE /api/logs/:id
func (h *LogHandler) Delete(c *gin.Context) {
	id, err := pathUUID(c, "id")
	if err != nil {
		response.RespondServiceError(c, "delete_log_failed", err)
		return
	}
	if err := h.logService.Delete(c.Request.Context(), id); err != nil {
		response.RespondServiceError(c, "delete_log_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

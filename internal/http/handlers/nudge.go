package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/healthwhisperer-backend/internal/data/repos"
	"github.com/yungbote/healthwhisperer-backend/internal/http/response"
	"github.com/yungbote/healthwhisperer-backend/internal/services"
)

type NudgeHandler struct {
	nudgeService services.NudgeService
}

func NewNudgeHandler(nudgeService services.NudgeService) *NudgeHandler {
	return &NudgeHandler{nudgeService: nudgeService}
}

// POST /api/nudges/evaluate
func (h *NudgeHandler) Evaluate(c *gin.Context) {
	res, err := h.nudgeService.Evaluate(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, "evaluate_failed", err)
		return
	}
	response.RespondOK(c, res)
}

// POST /api/nudges/rules/:rule_id/respond
// body: { "action": "accept|snooze|dismiss", "snooze_minutes": 10, "title": "", "body": "" }
func (h *NudgeHandler) RespondRule(c *gin.Context) {
	var req struct {
		Action        services.NudgeAction `json:"action"`
		SnoozeMinutes *int                 `json:"snooze_minutes"`
		Title         string               `json:"title"`
		Body          string               `json:"body"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res, err := h.nudgeService.RespondRule(c.Request.Context(), c.Param("rule_id"), services.RuleResponseInput{
		Action:        req.Action,
		SnoozeMinutes: req.SnoozeMinutes,
		Title:         req.Title,
		Body:          req.Body,
	})
	if err != nil {
		response.RespondServiceError(c, "respond_rule_failed", err)
		return
	}
	response.RespondOK(c, res)
}

// POST /api/nudges/suggest
// body: { "category": "mental|nutrition|physical", "context": {...} }
func (h *NudgeHandler) Suggest(c *gin.Context) {
	var req struct {
		Category string         `json:"category"`
		Context  map[string]any `json:"context"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	n, err := h.nudgeService.Suggest(c.Request.Context(), req.Category, req.Context)
	if err != nil {
		response.RespondServiceError(c, "suggest_failed", err)
		return
	}
	response.RespondCreated(c, gin.H{"nudge": n})
}

// POST /api/nudges/:id/respond
// body: { "action": "accept|snooze|dismiss" }
func (h *NudgeHandler) RespondNudge(c *gin.Context) {
	id, err := pathUUID(c, "id")
	if err != nil {
		response.RespondServiceError(c, "respond_nudge_failed", err)
		return
	}
	var req struct {
		Action services.NudgeAction `json:"action"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	n, err := h.nudgeService.RespondNudge(c.Request.Context(), id, req.Action)
	if err != nil {
		response.RespondServiceError(c, "respond_nudge_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"nudge": n})
}

// GET /api/nudges?category=&rule_id=&since=&until=&limit=
func (h *NudgeHandler) List(c *gin.Context) {
	f := repos.NudgeFilter{Category: c.Query("category"), RuleID: c.Query("rule_id")}
	var err error
	if f.Since, err = queryTime(c, "since"); err != nil {
		response.RespondServiceError(c, "list_nudges_failed", err)
		return
	}
	if f.Until, err = queryTime(c, "until"); err != nil {
		response.RespondServiceError(c, "list_nudges_failed", err)
		return
	}
	if f.Limit, err = queryLimit(c); err != nil {
		response.RespondServiceError(c, "list_nudges_failed", err)
		return
	}
	nudges, err := h.nudgeService.List(c.Request.Context(), f)
	if err != nil {
		response.RespondServiceError(c, "list_nudges_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"nudges": nudges})
}

// GET /api/nudges/rules
func (h *NudgeHandler) ListRules(c *gin.Context) {
	states, err := h.nudgeService.ListRuleStates(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, "list_rule_states_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"rules_state": states})
}

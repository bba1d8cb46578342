package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/healthwhisperer-backend/internal/http/response"
	"github.com/yungbote/healthwhisperer-backend/internal/services"
)

type SummaryHandler struct {
	summaryService services.SummaryService
	exportService  services.ExportService
}

func NewSummaryHandler(summaryService services.SummaryService, exportService services.ExportService) *SummaryHandler {
	return &SummaryHandler{summaryService: summaryService, exportService: exportService}
}

// GET /api/summary/today
func (h *SummaryHandler) Today(c *gin.Context) {
	sum, err := h.summaryService.Today(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, "summary_failed", err)
		return
	}
	response.RespondOK(c, sum)
}

// GET /api/ai/headline
func (h *SummaryHandler) Headline(c *gin.Context) {
	line, err := h.summaryService.Headline(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, "headline_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"headline": line})
}

// POST /api/ai/portions
// body: { "meal_time": "lunch", "items": ["rice", "beans"] }
func (h *SummaryHandler) Portions(c *gin.Context) {
	var req struct {
		MealTime string   `json:"meal_time"`
		Items    []string `json:"items"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	g, err := h.summaryService.Portions(c.Request.Context(), req.MealTime, req.Items)
	if err != nil {
		response.RespondServiceError(c, "portions_failed", err)
		return
	}
	response.RespondOK(c, g)
}

// GET /api/export/:kind?format=csv|json
func (h *SummaryHandler) Export(c *gin.Context) {
	out, err := h.exportService.Today(c.Request.Context(), services.ExportKind(c.Param("kind")), services.ExportFormat(c.Query("format")))
	if err != nil {
		response.RespondServiceError(c, "export_failed", err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+out.Filename+`"`)
	if out.ArchiveURL != "" {
		c.Header("X-Archive-Url", out.ArchiveURL)
	}
	c.Data(http.StatusOK, out.ContentType, out.Body)
}

// GET /api/export/bundle
func (h *SummaryHandler) Bundle(c *gin.Context) {
	b, err := h.exportService.Bundle(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, "bundle_failed", err)
		return
	}
	response.RespondOK(c, b)
}

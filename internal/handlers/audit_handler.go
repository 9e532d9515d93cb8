package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/motofin/motofin-api/internal/services"
)

// AuditHandler serves the audit trail endpoint
type AuditHandler struct {
	auditService *services.AuditService
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(auditService *services.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// @Summary List Audit Logs
// @Description Get the audit trail, newest first
// @Tags Audits
// @Produce json
// @Param entity query string false "Filter by entity type"
// @Param action query string false "Filter by action"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /audits [get]
func (h *AuditHandler) Index(c *gin.Context) {
	query := parseListQuery(c)
	query.Filters["entity"] = c.Query("entity")
	query.Filters["action"] = c.Query("action")

	logs, total, err := h.auditService.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"audits":     logs,
		"pagination": paginationResponse(query, total),
	})
}

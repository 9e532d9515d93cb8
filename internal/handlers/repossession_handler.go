package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/motofin/motofin-api/internal/middleware"
	"github.com/motofin/motofin-api/internal/models"
	"github.com/motofin/motofin-api/internal/services"
)

// RepossessionHandler serves repossession case endpoints
type RepossessionHandler struct {
	repossessionService *services.RepossessionService
}

// NewRepossessionHandler creates a new repossession handler
func NewRepossessionHandler(repossessionService *services.RepossessionService) *RepossessionHandler {
	return &RepossessionHandler{repossessionService: repossessionService}
}

// @Summary List Cases
// @Description Get repossession cases, most overdue first
// @Tags Repossessions
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param status query string false "Filter by status ('open' covers every non-closed state)"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /repossessions [get]
func (h *RepossessionHandler) Index(c *gin.Context) {
	query := parseListQuery(c)
	query.Filters["status"] = c.Query("status")

	cases, total, err := h.repossessionService.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]models.RepossessionCaseResponse, 0, len(cases))
	for i := range cases {
		responses = append(responses, cases[i].ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{
		"repossession_cases": responses,
		"pagination":         paginationResponse(query, total),
	})
}

// @Summary Get Case
// @Description Get a case with its full event timeline
// @Tags Repossessions
// @Produce json
// @Param case_id path int true "Case ID"
// @Success 200 {object} models.RepossessionCaseResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /repossessions/{case_id} [get]
func (h *RepossessionHandler) Show(c *gin.Context) {
	repoCase, err := h.repossessionService.FindByIDWithEvents(c.Request.Context(), parseID(c, "case_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"repossession_case": repoCase.ToResponse()})
}

type reminderRequest struct {
	Message string `json:"message"`
}

// @Summary Send Reminder
// @Description Record a reminder on an open case and email the applicant
// @Tags Repossessions
// @Accept json
// @Produce json
// @Param case_id path int true "Case ID"
// @Param request body reminderRequest false "Message"
// @Success 200 {object} models.RepossessionCaseResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /repossessions/{case_id}/reminder [post]
func (h *RepossessionHandler) Reminder(c *gin.Context) {
	var req reminderRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	repoCase, err := h.repossessionService.RecordReminder(c.Request.Context(), parseID(c, "case_id"), req.Message, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"repossession_case": repoCase.ToResponse()})
}

type closeCaseRequest struct {
	Notes string `json:"notes"`
}

// @Summary Close Case
// @Description Close a case administratively; idempotent
// @Tags Repossessions
// @Accept json
// @Produce json
// @Param case_id path int true "Case ID"
// @Param request body closeCaseRequest false "Resolution notes"
// @Success 200 {object} models.RepossessionCaseResponse
// @Security BearerAuth
// @Router /repossessions/{case_id}/close [post]
func (h *RepossessionHandler) Close(c *gin.Context) {
	var req closeCaseRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	repoCase, err := h.repossessionService.CloseCase(c.Request.Context(), parseID(c, "case_id"), req.Notes, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"repossession_case": repoCase.ToResponse()})
}

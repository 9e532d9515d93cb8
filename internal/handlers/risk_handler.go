package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/motofin/motofin-api/internal/models"
	"github.com/motofin/motofin-api/internal/services"
)

// RiskHandler serves risk assessment endpoints
type RiskHandler struct {
	riskService *services.RiskService
}

// NewRiskHandler creates a new risk handler
func NewRiskHandler(riskService *services.RiskService) *RiskHandler {
	return &RiskHandler{riskService: riskService}
}

// @Summary Loan Risk
// @Description Get the loan's current risk assessment
// @Tags Risk
// @Produce json
// @Param loan_id path int true "Loan ID"
// @Success 200 {object} models.RiskAssessmentResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /loans/{loan_id}/risk [get]
func (h *RiskHandler) Show(c *gin.Context) {
	assessment, err := h.riskService.GetForLoan(c.Request.Context(), parseID(c, "loan_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"risk_assessment": assessment.ToResponse()})
}

type evaluateRiskRequest struct {
	BaseScore   *int    `json:"base_score"`
	CreditScore *int    `json:"credit_score"`
	Notes       *string `json:"notes"`
}

// @Summary Evaluate Risk
// @Description Recompute the loan's risk assessment, optionally overriding base and credit scores
// @Tags Risk
// @Accept json
// @Produce json
// @Param loan_id path int true "Loan ID"
// @Param request body evaluateRiskRequest false "Overrides"
// @Success 200 {object} models.RiskAssessmentResponse
// @Security BearerAuth
// @Router /loans/{loan_id}/risk/evaluate [post]
func (h *RiskHandler) Evaluate(c *gin.Context) {
	var req evaluateRiskRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	assessment, err := h.riskService.EvaluateForLoan(c.Request.Context(), parseID(c, "loan_id"), &services.RiskEvaluationInput{
		BaseScore:   req.BaseScore,
		CreditScore: req.CreditScore,
		Notes:       req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"risk_assessment": assessment.ToResponse()})
}

// @Summary Risk Distribution
// @Description Get the count of assessments per risk level
// @Tags Risk
// @Produce json
// @Success 200 {object} map[string]int64
// @Security BearerAuth
// @Router /risk/distribution [get]
func (h *RiskHandler) Distribution(c *gin.Context) {
	dist, err := h.riskService.LevelDistribution(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"distribution": dist})
}

// @Summary Assessments by Level
// @Description List assessments at a risk level, highest score first
// @Tags Risk
// @Produce json
// @Param level path string true "Risk level (low, medium, high)"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /risk/{level} [get]
func (h *RiskHandler) ListByLevel(c *gin.Context) {
	level := c.Param("level")
	switch level {
	case models.RiskLevelLow, models.RiskLevelMedium, models.RiskLevelHigh:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown risk level"})
		return
	}

	assessments, err := h.riskService.ListByLevel(c.Request.Context(), level)
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]models.RiskAssessmentResponse, 0, len(assessments))
	for i := range assessments {
		responses = append(responses, assessments[i].ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{"risk_assessments": responses})
}

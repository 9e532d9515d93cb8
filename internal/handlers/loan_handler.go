package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/motofin/motofin-api/internal/middleware"
	"github.com/motofin/motofin-api/internal/models"
	"github.com/motofin/motofin-api/internal/repository"
	"github.com/motofin/motofin-api/internal/services"
)

// LoanHandler serves the loan application lifecycle
type LoanHandler struct {
	loanService *services.LoanService
}

// NewLoanHandler creates a new loan handler
func NewLoanHandler(loanService *services.LoanService) *LoanHandler {
	return &LoanHandler{loanService: loanService}
}

// @Summary List Loans
// @Description Get a paginated list of loan applications
// @Tags Loans
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param status query string false "Filter by status (CSV accepted)"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /loans [get]
func (h *LoanHandler) Index(c *gin.Context) {
	query := &repository.LoanQuery{
		ListQuery: parseListQuery(c),
		Status:    c.Query("status"),
	}
	if motorID, err := strconv.ParseUint(c.Query("motor_id"), 10, 32); err == nil {
		query.MotorID = uint(motorID)
	}

	loans, total, err := h.loanService.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]models.LoanApplicationResponse, 0, len(loans))
	for i := range loans {
		responses = append(responses, loans[i].ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{
		"loans":      responses,
		"pagination": paginationResponse(query.ListQuery, total),
	})
}

// @Summary Get Loan
// @Description Get a loan with schedule, risk and repossession details
// @Tags Loans
// @Produce json
// @Param loan_id path int true "Loan ID"
// @Success 200 {object} models.LoanApplicationResponse
// @Security BearerAuth
// @Router /loans/{loan_id} [get]
func (h *LoanHandler) Show(c *gin.Context) {
	loan, err := h.loanService.FindByIDWithDetails(c.Request.Context(), parseID(c, "loan_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"loan": loan.ToResponse()})
}

type createLoanRequest struct {
	ApplicantFirstName string          `json:"applicant_first_name" binding:"required"`
	ApplicantLastName  string          `json:"applicant_last_name" binding:"required"`
	ApplicantEmail     string          `json:"applicant_email" binding:"required"`
	ApplicantPhone     string          `json:"applicant_phone"`
	DateOfBirth        *time.Time      `json:"date_of_birth"`
	EmploymentStatus   string          `json:"employment_status"`
	EmployerName       string          `json:"employer_name"`
	MonthlyIncome      decimal.Decimal `json:"monthly_income"`
	MotorID            uint            `json:"motor_id" binding:"required"`
	FinancingTermID    uint            `json:"financing_term_id" binding:"required"`
	DownPayment        decimal.Decimal `json:"down_payment"`
	HasValidID         bool            `json:"has_valid_id"`
	HasProofOfIncome   bool            `json:"has_proof_of_income"`
	Notes              string          `json:"notes"`
}

// @Summary Create Loan
// @Description Submit a new loan application
// @Tags Loans
// @Accept json
// @Produce json
// @Param request body createLoanRequest true "Application"
// @Success 201 {object} models.LoanApplicationResponse
// @Failure 400 {object} map[string]interface{}
// @Security BearerAuth
// @Router /loans [post]
func (h *LoanHandler) Create(c *gin.Context) {
	var req createLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	loan, err := h.loanService.Create(c.Request.Context(), &services.CreateLoanInput{
		ApplicantFirstName: req.ApplicantFirstName,
		ApplicantLastName:  req.ApplicantLastName,
		ApplicantEmail:     req.ApplicantEmail,
		ApplicantPhone:     req.ApplicantPhone,
		DateOfBirth:        req.DateOfBirth,
		EmploymentStatus:   req.EmploymentStatus,
		EmployerName:       req.EmployerName,
		MonthlyIncome:      req.MonthlyIncome,
		MotorID:            req.MotorID,
		FinancingTermID:    req.FinancingTermID,
		DownPayment:        req.DownPayment,
		HasValidID:         req.HasValidID,
		HasProofOfIncome:   req.HasProofOfIncome,
		Notes:              req.Notes,
		SubmittedByID:      middleware.GetUserID(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"loan": loan.ToResponse()})
}

// @Summary Approve Loan
// @Description Approve a pending loan and generate its payment schedule
// @Tags Loans
// @Produce json
// @Param loan_id path int true "Loan ID"
// @Success 200 {object} models.LoanApplicationResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /loans/{loan_id}/approve [post]
func (h *LoanHandler) Approve(c *gin.Context) {
	loan, err := h.loanService.Approve(c.Request.Context(), parseID(c, "loan_id"), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"loan": loan.ToResponse()})
}

// @Summary Activate Loan
// @Description Activate an approved loan, reserving a stock unit
// @Tags Loans
// @Produce json
// @Param loan_id path int true "Loan ID"
// @Success 200 {object} models.LoanApplicationResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /loans/{loan_id}/activate [post]
func (h *LoanHandler) Activate(c *gin.Context) {
	loan, err := h.loanService.Activate(c.Request.Context(), parseID(c, "loan_id"), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"loan": loan.ToResponse()})
}

// @Summary Complete Loan
// @Description Mark a fully paid active loan completed
// @Tags Loans
// @Produce json
// @Param loan_id path int true "Loan ID"
// @Success 200 {object} models.LoanApplicationResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /loans/{loan_id}/complete [post]
func (h *LoanHandler) Complete(c *gin.Context) {
	loan, err := h.loanService.Complete(c.Request.Context(), parseID(c, "loan_id"), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"loan": loan.ToResponse()})
}

// @Summary Loan Schedule
// @Description Get the loan's amortization schedule
// @Tags Loans
// @Produce json
// @Param loan_id path int true "Loan ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /loans/{loan_id}/schedule [get]
func (h *LoanHandler) Schedule(c *gin.Context) {
	schedules, err := h.loanService.Schedule(c.Request.Context(), parseID(c, "loan_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]models.PaymentScheduleResponse, 0, len(schedules))
	for i := range schedules {
		responses = append(responses, schedules[i].ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{"schedule": responses})
}

// @Summary Loan Stats
// @Description Get loan counts by status
// @Tags Loans
// @Produce json
// @Success 200 {object} repository.LoanStats
// @Security BearerAuth
// @Router /loans/stats [get]
func (h *LoanHandler) Stats(c *gin.Context) {
	stats, err := h.loanService.GetStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/motofin/motofin-api/internal/middleware"
	"github.com/motofin/motofin-api/internal/models"
	"github.com/motofin/motofin-api/internal/services"
)

// PaymentHandler serves collection endpoints
type PaymentHandler struct {
	paymentService *services.PaymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// @Summary List Payments
// @Description Get a paginated list of payments
// @Tags Payments
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param payment_method query string false "Filter by method"
// @Param start_date query string false "Filter from date (YYYY-MM-DD)"
// @Param end_date query string false "Filter to date (YYYY-MM-DD)"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /payments [get]
func (h *PaymentHandler) Index(c *gin.Context) {
	query := parseListQuery(c)
	query.Filters["payment_method"] = c.Query("payment_method")
	query.Filters["start_date"] = c.Query("start_date")
	query.Filters["end_date"] = c.Query("end_date")

	payments, total, err := h.paymentService.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]models.PaymentResponse, 0, len(payments))
	for i := range payments {
		responses = append(responses, payments[i].ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{
		"payments":   responses,
		"pagination": paginationResponse(query, total),
	})
}

// @Summary Get Payment
// @Tags Payments
// @Produce json
// @Param payment_id path int true "Payment ID"
// @Success 200 {object} models.PaymentResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /payments/{payment_id} [get]
func (h *PaymentHandler) Show(c *gin.Context) {
	payment, err := h.paymentService.FindByID(c.Request.Context(), parseID(c, "payment_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment": payment.ToResponse()})
}

// @Summary Loan Payments
// @Description Get the payments recorded against a loan
// @Tags Payments
// @Produce json
// @Param loan_id path int true "Loan ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /loans/{loan_id}/payments [get]
func (h *PaymentHandler) IndexByLoan(c *gin.Context) {
	payments, err := h.paymentService.FindByLoan(c.Request.Context(), parseID(c, "loan_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]models.PaymentResponse, 0, len(payments))
	for i := range payments {
		responses = append(responses, payments[i].ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{"payments": responses})
}

type recordPaymentRequest struct {
	PaymentScheduleID uint            `json:"payment_schedule_id" binding:"required"`
	Amount            decimal.Decimal `json:"amount" binding:"required"`
	PaymentDate       *time.Time      `json:"payment_date"`
	PaymentMethod     string          `json:"payment_method"`
	Reference         string          `json:"reference"`
	Notes             string          `json:"notes"`
}

// @Summary Record Payment
// @Description Record a collection against a schedule installment
// @Tags Payments
// @Accept json
// @Produce json
// @Param loan_id path int true "Loan ID"
// @Param request body recordPaymentRequest true "Payment"
// @Success 201 {object} models.PaymentResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /loans/{loan_id}/payments [post]
func (h *PaymentHandler) Create(c *gin.Context) {
	var req recordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payment, err := h.paymentService.Record(c.Request.Context(), &services.RecordPaymentInput{
		LoanApplicationID: parseID(c, "loan_id"),
		PaymentScheduleID: req.PaymentScheduleID,
		Amount:            req.Amount,
		PaymentDate:       req.PaymentDate,
		PaymentMethod:     req.PaymentMethod,
		Reference:         req.Reference,
		Notes:             req.Notes,
		RecordedByID:      middleware.GetUserID(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"payment": payment.ToResponse()})
}

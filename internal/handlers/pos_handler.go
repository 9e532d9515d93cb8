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

// POSHandler serves the cashier terminal endpoints
type POSHandler struct {
	posService *services.POSService
}

// NewPOSHandler creates a new POS handler
func NewPOSHandler(posService *services.POSService) *POSHandler {
	return &POSHandler{posService: posService}
}

type openSessionRequest struct {
	OpeningCash decimal.Decimal `json:"opening_cash"`
	Notes       string          `json:"notes"`
}

// @Summary Open Session
// @Description Start a cashier shift; one open session per cashier
// @Tags POS
// @Accept json
// @Produce json
// @Param request body openSessionRequest true "Opening drawer"
// @Success 201 {object} models.POSSessionResponse
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /pos/sessions [post]
func (h *POSHandler) OpenSession(c *gin.Context) {
	var req openSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.posService.OpenSession(c.Request.Context(), middleware.GetUserID(c), req.OpeningCash, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session": session.ToResponse()})
}

type closeSessionRequest struct {
	ClosingCash decimal.Decimal `json:"closing_cash"`
	Notes       string          `json:"notes"`
}

// @Summary Close Session
// @Description Close a shift and reconcile the drawer
// @Tags POS
// @Accept json
// @Produce json
// @Param session_id path int true "Session ID"
// @Param request body closeSessionRequest true "Counted drawer"
// @Success 200 {object} models.POSSessionResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /pos/sessions/{session_id}/close [post]
func (h *POSHandler) CloseSession(c *gin.Context) {
	var req closeSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.posService.CloseSession(c.Request.Context(), parseID(c, "session_id"), req.ClosingCash, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session.ToResponse()})
}

// @Summary List Sessions
// @Tags POS
// @Produce json
// @Param status query string false "Filter by status"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /pos/sessions [get]
func (h *POSHandler) IndexSessions(c *gin.Context) {
	query := parseListQuery(c)
	query.Filters["status"] = c.Query("status")

	sessions, total, err := h.posService.ListSessions(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]models.POSSessionResponse, 0, len(sessions))
	for i := range sessions {
		responses = append(responses, sessions[i].ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{
		"sessions":   responses,
		"pagination": paginationResponse(query, total),
	})
}

// @Summary Get Session
// @Description Get a session with its transactions
// @Tags POS
// @Produce json
// @Param session_id path int true "Session ID"
// @Success 200 {object} models.POSSessionResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /pos/sessions/{session_id} [get]
func (h *POSHandler) ShowSession(c *gin.Context) {
	session, err := h.posService.GetSession(c.Request.Context(), parseID(c, "session_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session.ToResponse()})
}

type terminalPaymentRequest struct {
	LoanApplicationID uint            `json:"loan_application_id" binding:"required"`
	PaymentScheduleID uint            `json:"payment_schedule_id" binding:"required"`
	Amount            decimal.Decimal `json:"amount" binding:"required"`
	PaymentDate       *time.Time      `json:"payment_date"`
	PaymentMethod     string          `json:"payment_method"`
	Reference         string          `json:"reference"`
	Notes             string          `json:"notes"`
}

// @Summary Terminal Payment
// @Description Take a payment through an open session and issue a receipt
// @Tags POS
// @Accept json
// @Produce json
// @Param session_id path int true "Session ID"
// @Param request body terminalPaymentRequest true "Payment"
// @Success 201 {object} map[string]interface{}
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /pos/sessions/{session_id}/payments [post]
func (h *POSHandler) RecordPayment(c *gin.Context) {
	var req terminalPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payment, receipt, err := h.posService.RecordTerminalPayment(c.Request.Context(), parseID(c, "session_id"), &services.RecordPaymentInput{
		LoanApplicationID: req.LoanApplicationID,
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

	resp := gin.H{"payment": payment.ToResponse()}
	if receipt != nil {
		resp["receipt_number"] = receipt.ReceiptNumber
	}
	c.JSON(http.StatusCreated, resp)
}

// @Summary Receipt PDF
// @Description Download a printable receipt
// @Tags POS
// @Produce application/pdf
// @Param receipt_number path string true "Receipt number"
// @Success 200 {file} binary
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /pos/receipts/{receipt_number}/pdf [get]
func (h *POSHandler) ReceiptPDF(c *gin.Context) {
	data, filename, err := h.posService.RenderReceiptPDF(c.Request.Context(), c.Param("receipt_number"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/pdf", data)
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/motofin/motofin-api/internal/middleware"
	"github.com/motofin/motofin-api/internal/models"
	"github.com/motofin/motofin-api/internal/services"
)

// InventoryHandler serves catalogue, stock and financing term endpoints
type InventoryHandler struct {
	inventoryService *services.InventoryService
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(inventoryService *services.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService}
}

// @Summary List Motors
// @Description Get a paginated list of catalogue units
// @Tags Inventory
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /motors [get]
func (h *InventoryHandler) IndexMotors(c *gin.Context) {
	query := parseListQuery(c)
	query.Filters["type"] = c.Query("type")
	query.Filters["brand"] = c.Query("brand")

	motors, total, err := h.inventoryService.ListMotors(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]models.MotorResponse, 0, len(motors))
	for i := range motors {
		responses = append(responses, motors[i].ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{
		"motors":     responses,
		"pagination": paginationResponse(query, total),
	})
}

// @Summary Get Motor
// @Description Get a motor with its derived sale status
// @Tags Inventory
// @Produce json
// @Param motor_id path int true "Motor ID"
// @Success 200 {object} models.MotorResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /motors/{motor_id} [get]
func (h *InventoryHandler) ShowMotor(c *gin.Context) {
	motor, status, err := h.inventoryService.GetMotor(c.Request.Context(), parseID(c, "motor_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	resp := motor.ToResponse()
	resp.Status = status
	c.JSON(http.StatusOK, gin.H{"motor": resp})
}

type motorRequest struct {
	Type          string          `json:"type"`
	Brand         string          `json:"brand" binding:"required"`
	ModelName     string          `json:"model_name" binding:"required"`
	Year          int             `json:"year"`
	ChassisNumber *string         `json:"chassis_number"`
	Color         string          `json:"color"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	StockID       *uint           `json:"stock_id"`
	Notes         string          `json:"notes"`
}

// @Summary Create Motor
// @Tags Inventory
// @Accept json
// @Produce json
// @Param request body motorRequest true "Motor"
// @Success 201 {object} models.MotorResponse
// @Security BearerAuth
// @Router /motors [post]
func (h *InventoryHandler) CreateMotor(c *gin.Context) {
	var req motorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	motor := &models.Motor{
		Type:          req.Type,
		Brand:         req.Brand,
		ModelName:     req.ModelName,
		Year:          req.Year,
		ChassisNumber: req.ChassisNumber,
		Color:         req.Color,
		PurchasePrice: req.PurchasePrice,
		StockID:       req.StockID,
		Notes:         req.Notes,
	}
	if err := h.inventoryService.CreateMotor(c.Request.Context(), motor, middleware.GetUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"motor": motor.ToResponse()})
}

// @Summary Update Motor
// @Tags Inventory
// @Accept json
// @Produce json
// @Param motor_id path int true "Motor ID"
// @Success 200 {object} models.MotorResponse
// @Security BearerAuth
// @Router /motors/{motor_id} [put]
func (h *InventoryHandler) UpdateMotor(c *gin.Context) {
	motor, _, err := h.inventoryService.GetMotor(c.Request.Context(), parseID(c, "motor_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	var req motorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	motor.Type = req.Type
	motor.Brand = req.Brand
	motor.ModelName = req.ModelName
	motor.Year = req.Year
	motor.ChassisNumber = req.ChassisNumber
	motor.Color = req.Color
	motor.PurchasePrice = req.PurchasePrice
	motor.StockID = req.StockID
	motor.Notes = req.Notes

	if err := h.inventoryService.UpdateMotor(c.Request.Context(), motor, middleware.GetUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"motor": motor.ToResponse()})
}

// @Summary List Stocks
// @Description Get all stock batches with their four-bucket counters
// @Tags Inventory
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /stocks [get]
func (h *InventoryHandler) IndexStocks(c *gin.Context) {
	stocks, err := h.inventoryService.ListStocks(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]models.StockResponse, 0, len(stocks))
	for i := range stocks {
		responses = append(responses, stocks[i].ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{"stocks": responses})
}

// @Summary Get Stock
// @Tags Inventory
// @Produce json
// @Param stock_id path int true "Stock ID"
// @Success 200 {object} models.StockResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /stocks/{stock_id} [get]
func (h *InventoryHandler) ShowStock(c *gin.Context) {
	stock, err := h.inventoryService.GetStock(c.Request.Context(), parseID(c, "stock_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stock": stock.ToResponse()})
}

type createStockRequest struct {
	Brand             string `json:"brand" binding:"required"`
	ModelName         string `json:"model_name" binding:"required"`
	Year              int    `json:"year"`
	Color             string `json:"color"`
	QuantityAvailable int    `json:"quantity_available"`
}

// @Summary Create Stock
// @Description Register a new stock batch
// @Tags Inventory
// @Accept json
// @Produce json
// @Param request body createStockRequest true "Stock"
// @Success 201 {object} models.StockResponse
// @Security BearerAuth
// @Router /stocks [post]
func (h *InventoryHandler) CreateStock(c *gin.Context) {
	var req createStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stock := &models.Stock{
		Brand:             req.Brand,
		ModelName:         req.ModelName,
		Year:              req.Year,
		Color:             req.Color,
		QuantityAvailable: req.QuantityAvailable,
	}
	if err := h.inventoryService.CreateStock(c.Request.Context(), stock, middleware.GetUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"stock": stock.ToResponse()})
}

type transferRequest struct {
	Operation string `json:"operation" binding:"required"`
	Amount    int    `json:"amount" binding:"required"`
}

// @Summary Transfer Stock
// @Description Move units between stock buckets (reserve, cancel_reservation, mark_sold, mark_repossessed, return_to_available)
// @Tags Inventory
// @Accept json
// @Produce json
// @Param stock_id path int true "Stock ID"
// @Param request body transferRequest true "Transfer"
// @Success 200 {object} models.StockResponse
// @Failure 400 {object} map[string]interface{}
// @Security BearerAuth
// @Router /stocks/{stock_id}/transfer [post]
func (h *InventoryHandler) Transfer(c *gin.Context) {
	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stock, err := h.inventoryService.Transfer(c.Request.Context(), parseID(c, "stock_id"), req.Operation, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stock": stock.ToResponse()})
}

// @Summary List Financing Terms
// @Description Get financing terms; active=true restricts to offerable ones
// @Tags Inventory
// @Produce json
// @Param active query bool false "Only active terms"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /financing_terms [get]
func (h *InventoryHandler) IndexFinancingTerms(c *gin.Context) {
	activeOnly := c.Query("active") == "true"
	terms, err := h.inventoryService.ListFinancingTerms(c.Request.Context(), activeOnly)
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]models.FinancingTermResponse, 0, len(terms))
	for i := range terms {
		responses = append(responses, terms[i].ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{"financing_terms": responses})
}

type createTermRequest struct {
	TermYears    int             `json:"term_years" binding:"required"`
	InterestRate decimal.Decimal `json:"interest_rate"`
	Active       *bool           `json:"active"`
}

// @Summary Create Financing Term
// @Tags Inventory
// @Accept json
// @Produce json
// @Param request body createTermRequest true "Term"
// @Success 201 {object} models.FinancingTermResponse
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /financing_terms [post]
func (h *InventoryHandler) CreateFinancingTerm(c *gin.Context) {
	var req createTermRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	term := &models.FinancingTerm{
		TermYears:    req.TermYears,
		InterestRate: req.InterestRate,
	}
	if req.Active != nil {
		term.Active = *req.Active
	} else {
		term.Active = true
	}

	if err := h.inventoryService.CreateFinancingTerm(c.Request.Context(), term, middleware.GetUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"financing_term": term.ToResponse()})
}

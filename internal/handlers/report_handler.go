package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/motofin/motofin-api/internal/repository"
	"github.com/motofin/motofin-api/internal/services"
)

// ReportHandler serves the dashboard report and file exports
type ReportHandler struct {
	reportService *services.ReportService
	exportService *services.ExportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportService *services.ReportService, exportService *services.ExportService) *ReportHandler {
	return &ReportHandler{reportService: reportService, exportService: exportService}
}

// @Summary Portfolio Report
// @Description Get the portfolio summary: loan counts, collections, overdue totals, risk distribution and open cases
// @Tags Reports
// @Produce json
// @Success 200 {object} services.PortfolioReport
// @Security BearerAuth
// @Router /reports/portfolio [get]
func (h *ReportHandler) Portfolio(c *gin.Context) {
	report, err := h.reportService.Generate(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// @Summary Collections Range
// @Description Total payments collected in an inclusive date range
// @Tags Reports
// @Produce json
// @Param from query string true "Start date (YYYY-MM-DD)"
// @Param to query string true "End date (YYYY-MM-DD)"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /reports/collections [get]
func (h *ReportHandler) Collections(c *gin.Context) {
	from := c.Query("from")
	to := c.Query("to")
	if from == "" || to == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to are required (YYYY-MM-DD)"})
		return
	}

	total, err := h.reportService.CollectionsBetween(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"from": from, "to": to, "total_collected": total})
}

func (h *ReportHandler) loanExportQuery(c *gin.Context) *repository.LoanQuery {
	return &repository.LoanQuery{
		ListQuery: parseListQuery(c),
		Status:    c.Query("status"),
	}
}

// @Summary Export Loans CSV
// @Tags Reports
// @Produce text/csv
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /reports/loans_csv [get]
func (h *ReportHandler) LoansCSV(c *gin.Context) {
	data, filename, err := h.exportService.ExportLoansCSV(c.Request.Context(), h.loanExportQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "text/csv", data)
}

// @Summary Export Loans XLSX
// @Tags Reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /reports/loans_xlsx [get]
func (h *ReportHandler) LoansXLSX(c *gin.Context) {
	data, filename, err := h.exportService.ExportLoansXLSX(c.Request.Context(), h.loanExportQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// @Summary Export Loans PDF
// @Tags Reports
// @Produce application/pdf
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /reports/loans_pdf [get]
func (h *ReportHandler) LoansPDF(c *gin.Context) {
	data, filename, err := h.exportService.ExportLoansPDF(c.Request.Context(), h.loanExportQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/pdf", data)
}

// @Summary Export Portfolio PDF
// @Tags Reports
// @Produce application/pdf
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /reports/portfolio_pdf [get]
func (h *ReportHandler) PortfolioPDF(c *gin.Context) {
	data, filename, err := h.exportService.ExportPortfolioPDF(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/pdf", data)
}

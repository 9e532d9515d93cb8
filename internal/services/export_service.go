package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"github.com/motofin/motofin-api/internal/models"
	"github.com/motofin/motofin-api/internal/repository"
)

// ExportService renders loan book exports in CSV, XLSX and PDF.
type ExportService struct {
	repos     *repository.Repositories
	reportSvc *ReportService
}

// NewExportService creates a new export service
func NewExportService(repos *repository.Repositories, reportSvc *ReportService) *ExportService {
	return &ExportService{repos: repos, reportSvc: reportSvc}
}

var loanExportHeaders = []string{
	"ID", "Applicant", "Email", "Phone", "Motor", "Status",
	"Loan Amount", "Down Payment", "Principal", "Rate %", "Monthly Payment",
	"Risk Level", "Submitted",
}

func loanExportRow(loan *models.LoanApplication) []string {
	motorName := ""
	if loan.Motor.ID != 0 {
		motorName = loan.Motor.DisplayName()
	}
	riskLevel := ""
	if loan.RiskAssessment != nil {
		riskLevel = loan.RiskAssessment.RiskLevel
	}
	return []string{
		fmt.Sprintf("%d", loan.ID),
		loan.ApplicantFullName(),
		loan.ApplicantEmail,
		loan.ApplicantPhone,
		motorName,
		loan.Status,
		loan.LoanAmount.StringFixed(2),
		loan.DownPayment.StringFixed(2),
		loan.PrincipalAmount.StringFixed(2),
		loan.InterestRate.StringFixed(2),
		loan.MonthlyPayment.StringFixed(2),
		riskLevel,
		loan.SubmittedAt.Format("2006-01-02"),
	}
}

func (s *ExportService) fetchLoans(ctx context.Context, query *repository.LoanQuery) ([]models.LoanApplication, error) {
	if query == nil {
		query = &repository.LoanQuery{}
	}
	if query.ListQuery == nil {
		query.ListQuery = repository.NewListQuery()
	}
	query.PerPage = 0 // exports are unpaginated
	loans, _, err := s.repos.Loan.List(ctx, query)
	return loans, err
}

// ExportLoansCSV exports the loan book as CSV
func (s *ExportService) ExportLoansCSV(ctx context.Context, query *repository.LoanQuery) ([]byte, string, error) {
	loans, err := s.fetchLoans(ctx, query)
	if err != nil {
		return nil, "", err
	}

	buf := new(bytes.Buffer)
	w := csv.NewWriter(buf)

	if err := w.Write(loanExportHeaders); err != nil {
		return nil, "", err
	}
	for i := range loans {
		if err := w.Write(loanExportRow(&loans[i])); err != nil {
			return nil, "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("loans_%s.csv", time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

// ExportLoansXLSX exports the loan book as an Excel workbook
func (s *ExportService) ExportLoansXLSX(ctx context.Context, query *repository.LoanQuery) ([]byte, string, error) {
	loans, err := s.fetchLoans(ctx, query)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Loans"
	f.SetSheetName("Sheet1", sheet)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return nil, "", err
	}

	for col, header := range loanExportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, header)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	for i := range loans {
		for col, value := range loanExportRow(&loans[i]) {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("loans_%s.xlsx", time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

// ExportLoansPDF exports the loan book as a landscape PDF table
func (s *ExportService) ExportLoansPDF(ctx context.Context, query *repository.LoanQuery) ([]byte, string, error) {
	loans, err := s.fetchLoans(ctx, query)
	if err != nil {
		return nil, "", err
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(40, 10, "Loan Book")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 8)
	pdf.Cell(40, 6, fmt.Sprintf("Generated %s", time.Now().Format("2006-01-02 15:04")))
	pdf.Ln(10)

	colWidths := []float64{12, 45, 28, 20, 40, 20, 25, 25, 22, 25, 15}
	headers := []string{"ID", "Applicant", "Motor", "Status", "Email", "Loan", "Principal", "Monthly", "Rate %", "Submitted", "Risk"}

	pdf.SetFont("Arial", "B", 8)
	for i, h := range headers {
		pdf.CellFormat(colWidths[i], 7, h, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for i := range loans {
		loan := &loans[i]
		motorName := ""
		if loan.Motor.ID != 0 {
			motorName = loan.Motor.DisplayName()
		}
		riskLevel := ""
		if loan.RiskAssessment != nil {
			riskLevel = loan.RiskAssessment.RiskLevel
		}
		cells := []string{
			fmt.Sprintf("%d", loan.ID),
			loan.ApplicantFullName(),
			motorName,
			loan.Status,
			loan.ApplicantEmail,
			loan.LoanAmount.StringFixed(2),
			loan.PrincipalAmount.StringFixed(2),
			loan.MonthlyPayment.StringFixed(2),
			loan.InterestRate.StringFixed(2),
			loan.SubmittedAt.Format("2006-01-02"),
			riskLevel,
		}
		for j, c := range cells {
			pdf.CellFormat(colWidths[j], 6, c, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("loans_%s.pdf", time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

// ExportPortfolioPDF renders the portfolio summary as a one-page PDF
func (s *ExportService) ExportPortfolioPDF(ctx context.Context) ([]byte, string, error) {
	report, err := s.reportSvc.Generate(ctx)
	if err != nil {
		return nil, "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Portfolio Summary")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 9)
	pdf.Cell(40, 6, fmt.Sprintf("Generated %s", report.GeneratedAt.Format("2006-01-02 15:04")))
	pdf.Ln(12)

	line := func(label, value string) {
		pdf.SetFont("Arial", "B", 10)
		pdf.Cell(70, 7, label)
		pdf.SetFont("Arial", "", 10)
		pdf.Cell(70, 7, value)
		pdf.Ln(7)
	}

	line("Total loans", fmt.Sprintf("%d", report.Loans.Total))
	line("Pending", fmt.Sprintf("%d", report.Loans.Pending))
	line("Approved", fmt.Sprintf("%d", report.Loans.Approved))
	line("Active", fmt.Sprintf("%d", report.Loans.Active))
	line("Completed", fmt.Sprintf("%d", report.Loans.Completed))
	pdf.Ln(4)

	line("Collected this month", report.CollectedThisMonth.StringFixed(2))
	line("Collected today", report.CollectedToday.StringFixed(2))
	line("Overdue installments", fmt.Sprintf("%d", report.OverdueInstallments))
	line("Overdue amount", report.OverdueAmount.StringFixed(2))
	pdf.Ln(4)

	line("Low risk", fmt.Sprintf("%d", report.RiskDistribution[models.RiskLevelLow]))
	line("Medium risk", fmt.Sprintf("%d", report.RiskDistribution[models.RiskLevelMedium]))
	line("High risk", fmt.Sprintf("%d", report.RiskDistribution[models.RiskLevelHigh]))
	line("Open repossession cases", fmt.Sprintf("%d", report.OpenCases))

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("portfolio_%s.pdf", time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/motofin/motofin-api/internal/repository"
)

// ReportService assembles the portfolio summary shown on the back-office
// dashboard.
type ReportService struct {
	db    *gorm.DB
	repos *repository.Repositories
}

// NewReportService creates a new report service
func NewReportService(db *gorm.DB, repos *repository.Repositories) *ReportService {
	return &ReportService{db: db, repos: repos}
}

// PortfolioReport is a point-in-time snapshot of the whole book.
type PortfolioReport struct {
	GeneratedAt time.Time `json:"generated_at"`

	Loans *repository.LoanStats `json:"loans"`

	CollectedThisMonth decimal.Decimal  `json:"collected_this_month"`
	CollectedToday     decimal.Decimal  `json:"collected_today"`
	PaymentsByMethod   map[string]int64 `json:"payments_by_method"`

	OverdueInstallments int64           `json:"overdue_installments"`
	OverdueAmount       decimal.Decimal `json:"overdue_amount"`

	RiskDistribution map[string]int64 `json:"risk_distribution"`
	OpenCases        int64            `json:"open_cases"`
}

// Generate builds the portfolio report. Collection figures cover the
// current calendar month and the current day.
func (s *ReportService) Generate(ctx context.Context) (*PortfolioReport, error) {
	now := time.Now()
	report := &PortfolioReport{GeneratedAt: now}

	stats, err := s.repos.Loan.GetStats(ctx)
	if err != nil {
		return nil, err
	}
	report.Loans = stats

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	today := now.Format("2006-01-02")

	report.CollectedThisMonth, err = s.repos.Payment.SumCollectedBetween(ctx, monthStart.Format("2006-01-02"), today)
	if err != nil {
		return nil, err
	}
	report.CollectedToday, err = s.repos.Payment.SumCollectedBetween(ctx, today, today)
	if err != nil {
		return nil, err
	}
	report.PaymentsByMethod, err = s.repos.Payment.CountByMethod(ctx)
	if err != nil {
		return nil, err
	}

	report.OverdueInstallments, report.OverdueAmount, err = s.repos.Schedule.PortfolioOverdue(ctx)
	if err != nil {
		return nil, err
	}

	report.RiskDistribution, err = s.repos.Risk.CountByLevel(ctx)
	if err != nil {
		return nil, err
	}
	report.OpenCases, err = s.repos.Repossession.CountOpen(ctx)
	if err != nil {
		return nil, err
	}

	return report, nil
}

// CollectionsBetween totals payments in an inclusive date range given as
// YYYY-MM-DD strings.
func (s *ReportService) CollectionsBetween(ctx context.Context, from, to string) (decimal.Decimal, error) {
	return s.repos.Payment.SumCollectedBetween(ctx, from, to)
}

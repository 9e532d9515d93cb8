package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/motofin/motofin-api/internal/models"
	"github.com/motofin/motofin-api/internal/repository"
)

type mockRiskRepo struct {
	repository.RiskRepository
	existing *models.RiskAssessment
	saved    *models.RiskAssessment
}

func (m *mockRiskRepo) FindByLoan(ctx context.Context, loanID uint) (*models.RiskAssessment, error) {
	if m.existing == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return m.existing, nil
}

func (m *mockRiskRepo) Save(ctx context.Context, assessment *models.RiskAssessment) error {
	m.saved = assessment
	return nil
}

type mockScheduleRepo struct {
	repository.ScheduleRepository
	overdueCount  int
	overdueAmount decimal.Decimal
}

func (m *mockScheduleRepo) OverdueMetrics(ctx context.Context, loanID uint) (int, decimal.Decimal, error) {
	return m.overdueCount, m.overdueAmount, nil
}

func riskServiceLoan() *models.LoanApplication {
	return &models.LoanApplication{
		ID:               1,
		MonthlyIncome:    decimal.RequireFromString("50000.00"),
		PrincipalAmount:  decimal.RequireFromString("60000.00"),
		MonthlyPayment:   decimal.RequireFromString("2800.00"),
		EmploymentStatus: models.EmploymentEmployed,
	}
}

func TestEvaluateCreatesAssessmentWithDefaults(t *testing.T) {
	risk := &mockRiskRepo{}
	repos := &repository.Repositories{
		Risk:     risk,
		Schedule: &mockScheduleRepo{overdueCount: 2, overdueAmount: decimal.RequireFromString("8266.66")},
	}
	svc := NewRiskService(repos)

	assessment, err := svc.Evaluate(context.Background(), repos, riskServiceLoan(), nil)
	assert.NoError(t, err)
	assert.Equal(t, models.DefaultBaseScore, assessment.BaseScore)
	assert.Equal(t, models.DefaultCreditScore, assessment.CreditScore)
	assert.Equal(t, 2, assessment.MissedPayments)
	assert.Equal(t, 47, assessment.Score)
	assert.Equal(t, models.RiskLevelMedium, assessment.RiskLevel)
	assert.Same(t, assessment, risk.saved)
}

func TestEvaluatePreservesPriorInputs(t *testing.T) {
	risk := &mockRiskRepo{
		existing: &models.RiskAssessment{
			ID:                9,
			LoanApplicationID: 1,
			BaseScore:         45,
			CreditScore:       400,
			Notes:             "manual review requested",
		},
	}
	repos := &repository.Repositories{
		Risk:     risk,
		Schedule: &mockScheduleRepo{overdueCount: 0, overdueAmount: decimal.Zero},
	}
	svc := NewRiskService(repos)

	assessment, err := svc.Evaluate(context.Background(), repos, riskServiceLoan(), nil)
	assert.NoError(t, err)

	// Re-evaluation overwrites the row in place, keeping the tuning inputs
	assert.Equal(t, uint(9), assessment.ID)
	assert.Equal(t, 45, assessment.BaseScore)
	assert.Equal(t, 400, assessment.CreditScore)
	assert.Equal(t, "manual review requested", assessment.Notes)
	// 45 + 0 + 12 − 20 + 0
	assert.Equal(t, 37, assessment.Score)
	assert.Equal(t, models.RiskLevelLow, assessment.RiskLevel)
}

func TestEvaluateAppliesCallerOverrides(t *testing.T) {
	risk := &mockRiskRepo{
		existing: &models.RiskAssessment{
			ID:                9,
			LoanApplicationID: 1,
			BaseScore:         30,
			CreditScore:       650,
		},
	}
	repos := &repository.Repositories{
		Risk:     risk,
		Schedule: &mockScheduleRepo{overdueCount: 1, overdueAmount: decimal.RequireFromString("4133.33")},
	}
	svc := NewRiskService(repos)

	base := 50
	notes := "income docs expired"
	assessment, err := svc.Evaluate(context.Background(), repos, riskServiceLoan(), &RiskEvaluationInput{
		BaseScore: &base,
		Notes:     &notes,
	})
	assert.NoError(t, err)
	assert.Equal(t, 50, assessment.BaseScore)
	assert.Equal(t, 650, assessment.CreditScore)
	assert.Equal(t, "income docs expired", assessment.Notes)
	// 50 + 15 + 12 − 25 + 0
	assert.Equal(t, 52, assessment.Score)
	assert.Equal(t, models.RiskLevelMedium, assessment.RiskLevel)
}

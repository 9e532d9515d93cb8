package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func riskTestLoan(income, principal, monthlyPayment, employment string) *LoanApplication {
	return &LoanApplication{
		ID:               1,
		MonthlyIncome:    decimal.RequireFromString(income),
		PrincipalAmount:  decimal.RequireFromString(principal),
		MonthlyPayment:   decimal.RequireFromString(monthlyPayment),
		EmploymentStatus: employment,
	}
}

func TestComputeRiskEmployedApplicant(t *testing.T) {
	loan := riskTestLoan("50000.00", "60000.00", "2800.00", EmploymentEmployed)

	comp := ComputeRisk(loan, 30, 650, 2)

	assert.Equal(t, "12.00", comp.IncomeFactor.StringFixed(2))
	assert.Equal(t, "25.00", comp.CreditFactor.StringFixed(2))
	assert.Equal(t, "5.60", comp.DebtToIncomeRatio.StringFixed(2))
	assert.Equal(t, 0, comp.EmploymentPenalty)
	// 30 + 2×15 + 12 − 25 + 0
	assert.Equal(t, 47, comp.Score)
	assert.Equal(t, RiskLevelMedium, comp.RiskLevel)
}

func TestComputeRiskUnemployedWithoutIncome(t *testing.T) {
	loan := riskTestLoan("0.00", "60000.00", "2800.00", EmploymentUnemployed)

	comp := ComputeRisk(loan, 30, 500, 1)

	// Zero income pins the factor at its cap and the ratio at 100
	assert.Equal(t, "30.00", comp.IncomeFactor.StringFixed(2))
	assert.Equal(t, "100.00", comp.DebtToIncomeRatio.StringFixed(2))
	assert.Equal(t, "25.00", comp.CreditFactor.StringFixed(2))
	assert.Equal(t, 25, comp.EmploymentPenalty)
	// 30 + 15 + 30 − 25 + 25
	assert.Equal(t, 75, comp.Score)
	assert.Equal(t, RiskLevelHigh, comp.RiskLevel)
}

func TestComputeRiskScoreNeverNegative(t *testing.T) {
	loan := riskTestLoan("1000000.00", "10000.00", "900.00", EmploymentEmployed)

	comp := ComputeRisk(loan, 0, 650, 0)

	// 0 + 0 + 0.10 − 25 + 0 floors at zero
	assert.Equal(t, 0, comp.Score)
	assert.Equal(t, RiskLevelLow, comp.RiskLevel)
}

func TestComputeRiskFactorCaps(t *testing.T) {
	loan := riskTestLoan("50000.00", "500000.00", "999999.00", EmploymentEmployed)

	comp := ComputeRisk(loan, 30, 2000, 0)

	assert.Equal(t, "30.00", comp.IncomeFactor.StringFixed(2))
	assert.Equal(t, "999.99", comp.DebtToIncomeRatio.StringFixed(2))
	assert.Equal(t, "25.00", comp.CreditFactor.StringFixed(2))
}

func TestComputeRiskEmploymentPenalties(t *testing.T) {
	penalties := map[string]int{
		EmploymentEmployed:     0,
		EmploymentSelfEmployed: 8,
		EmploymentUnemployed:   25,
		EmploymentStudent:      10,
		EmploymentRetired:      6,
		"freelancer":           0,
	}

	for status, want := range penalties {
		loan := riskTestLoan("50000.00", "60000.00", "2800.00", status)
		comp := ComputeRisk(loan, 30, 650, 0)
		assert.Equal(t, want, comp.EmploymentPenalty, "status %s", status)
	}
}

func TestRiskLevelForScoreBoundaries(t *testing.T) {
	assert.Equal(t, RiskLevelLow, RiskLevelForScore(0))
	assert.Equal(t, RiskLevelLow, RiskLevelForScore(39))
	assert.Equal(t, RiskLevelMedium, RiskLevelForScore(40))
	assert.Equal(t, RiskLevelMedium, RiskLevelForScore(69))
	assert.Equal(t, RiskLevelHigh, RiskLevelForScore(70))
	assert.Equal(t, RiskLevelHigh, RiskLevelForScore(120))
}

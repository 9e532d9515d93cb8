package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/motofin/motofin-api/pkg/money"
)

// RiskAssessment is the scoring snapshot for one loan. Re-evaluating a loan
// overwrites this row in place rather than appending a history.
type RiskAssessment struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	LoanApplicationID uint            `gorm:"not null;uniqueIndex" json:"loan_application_id"`
	Score             int             `gorm:"not null" json:"score"`
	RiskLevel         string          `gorm:"not null;index" json:"risk_level"`
	BaseScore         int             `gorm:"not null;default:30" json:"base_score"`
	CreditScore       int             `gorm:"not null;default:650" json:"credit_score"`
	MissedPayments    int             `gorm:"not null;default:0" json:"missed_payments"`
	EmploymentPenalty int             `gorm:"not null;default:0" json:"employment_penalty"`
	IncomeFactor      decimal.Decimal `gorm:"type:decimal(6,2);not null" json:"income_factor"`
	CreditFactor      decimal.Decimal `gorm:"type:decimal(6,2);not null" json:"credit_factor"`
	DebtToIncomeRatio decimal.Decimal `gorm:"type:decimal(6,2);not null" json:"debt_to_income_ratio"`
	Notes             string          `gorm:"type:text" json:"notes"`
	CalculatedAt      time.Time       `gorm:"autoCreateTime" json:"calculated_at"`
	UpdatedAt         time.Time       `json:"updated_at"`

	// Associations
	LoanApplication LoanApplication `gorm:"foreignKey:LoanApplicationID" json:"-"`
}

// TableName specifies the table name for RiskAssessment
func (RiskAssessment) TableName() string {
	return "risk_assessments"
}

// Risk level constants
const (
	RiskLevelLow    = "low"
	RiskLevelMedium = "medium"
	RiskLevelHigh   = "high"
)

// Scoring defaults and thresholds
const (
	DefaultBaseScore   = 30
	DefaultCreditScore = 650
	RiskLowThreshold   = 40
	RiskHighThreshold  = 70
)

// employmentPenalties is the fixed penalty lookup by employment status.
// Unknown statuses carry no penalty.
var employmentPenalties = map[string]int{
	EmploymentEmployed:     0,
	EmploymentSelfEmployed: 8,
	EmploymentUnemployed:   25,
	EmploymentStudent:      10,
	EmploymentRetired:      6,
}

// RiskComputation carries the computed factors and the resulting score.
type RiskComputation struct {
	BaseScore         int
	CreditScore       int
	MissedPayments    int
	EmploymentPenalty int
	IncomeFactor      decimal.Decimal
	CreditFactor      decimal.Decimal
	DebtToIncomeRatio decimal.Decimal
	Score             int
	RiskLevel         string
}

// ComputeRisk scores a loan from its current state. It is a pure function
// of the loan, the tuning inputs and the overdue installment count:
//
//	raw = base + missed×15 + incomeFactor − creditFactor + employmentPenalty
//	score = max(0, round(raw))
//
// Zero or negative monthly income pins the income factor at its 30.00 cap
// and the debt-to-income ratio at 100.00.
func ComputeRisk(loan *LoanApplication, baseScore, creditScore, missedPayments int) RiskComputation {
	var incomeFactor, dtiRatio decimal.Decimal

	if loan.MonthlyIncome.LessThanOrEqual(decimal.Zero) {
		incomeFactor = decimal.RequireFromString("30.00")
		dtiRatio = decimal.RequireFromString("100.00")
	} else {
		ratio := loan.PrincipalAmount.Div(loan.MonthlyIncome)
		incomeFactor = money.Round2(money.Min(
			ratio.Mul(decimal.NewFromInt(10)),
			decimal.RequireFromString("30.00"),
		))
		dtiRatio = money.Round2(money.Min(
			loan.MonthlyPayment.Div(loan.MonthlyIncome).Mul(decimal.NewFromInt(100)),
			decimal.RequireFromString("999.99"),
		))
	}

	creditFactor := money.Round2(money.Min(
		decimal.NewFromInt(int64(creditScore)).Div(decimal.NewFromInt(20)),
		decimal.RequireFromString("25.00"),
	))

	penalty := employmentPenalties[loan.EmploymentStatus]

	raw := decimal.NewFromInt(int64(baseScore)).
		Add(decimal.NewFromInt(int64(missedPayments * 15))).
		Add(incomeFactor).
		Sub(creditFactor).
		Add(decimal.NewFromInt(int64(penalty)))

	score := money.RoundInt(raw)
	if score < 0 {
		score = 0
	}

	return RiskComputation{
		BaseScore:         baseScore,
		CreditScore:       creditScore,
		MissedPayments:    missedPayments,
		EmploymentPenalty: penalty,
		IncomeFactor:      incomeFactor,
		CreditFactor:      creditFactor,
		DebtToIncomeRatio: dtiRatio,
		Score:             score,
		RiskLevel:         RiskLevelForScore(score),
	}
}

// RiskLevelForScore buckets a score into low / medium / high.
func RiskLevelForScore(score int) string {
	if score < RiskLowThreshold {
		return RiskLevelLow
	}
	if score < RiskHighThreshold {
		return RiskLevelMedium
	}
	return RiskLevelHigh
}

// RiskAssessmentResponse is the JSON response format for risk assessments
type RiskAssessmentResponse struct {
	ID                uint            `json:"id"`
	LoanApplicationID uint            `json:"loan_application_id"`
	Score             int             `json:"score"`
	RiskLevel         string          `json:"risk_level"`
	BaseScore         int             `json:"base_score"`
	CreditScore       int             `json:"credit_score"`
	MissedPayments    int             `json:"missed_payments"`
	EmploymentPenalty int             `json:"employment_penalty"`
	IncomeFactor      decimal.Decimal `json:"income_factor"`
	CreditFactor      decimal.Decimal `json:"credit_factor"`
	DebtToIncomeRatio decimal.Decimal `json:"debt_to_income_ratio"`
	Notes             string          `json:"notes"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// ToResponse converts RiskAssessment to RiskAssessmentResponse
func (r *RiskAssessment) ToResponse() RiskAssessmentResponse {
	return RiskAssessmentResponse{
		ID:                r.ID,
		LoanApplicationID: r.LoanApplicationID,
		Score:             r.Score,
		RiskLevel:         r.RiskLevel,
		BaseScore:         r.BaseScore,
		CreditScore:       r.CreditScore,
		MissedPayments:    r.MissedPayments,
		EmploymentPenalty: r.EmploymentPenalty,
		IncomeFactor:      r.IncomeFactor,
		CreditFactor:      r.CreditFactor,
		DebtToIncomeRatio: r.DebtToIncomeRatio,
		Notes:             r.Notes,
		UpdatedAt:         r.UpdatedAt,
	}
}

package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/motofin/motofin-api/pkg/money"
)

// LoanApplication is the aggregate root of the financing workflow: it holds
// the applicant's data, the financed amounts and the forward-only status
// state machine (pending → approved → active → completed).
type LoanApplication struct {
	ID                 uint            `gorm:"primaryKey" json:"id"`
	ApplicantFirstName string          `gorm:"not null" json:"applicant_first_name"`
	ApplicantLastName  string          `gorm:"not null" json:"applicant_last_name"`
	ApplicantEmail     string          `gorm:"not null" json:"applicant_email"`
	ApplicantPhone     string          `json:"applicant_phone"`
	DateOfBirth        *time.Time      `gorm:"type:date" json:"date_of_birth"`
	EmploymentStatus   string          `gorm:"default:employed;not null" json:"employment_status"`
	EmployerName       string          `json:"employer_name"`
	MonthlyIncome      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"monthly_income"`
	MotorID            uint            `gorm:"not null;index" json:"motor_id"`
	FinancingTermID    uint            `gorm:"not null;index" json:"financing_term_id"`

	// LoanAmount is the motor price being financed; PrincipalAmount is what
	// remains after the down payment and is what the schedule amortizes.
	LoanAmount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"loan_amount"`
	DownPayment     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"down_payment"`
	PrincipalAmount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"principal_amount"`

	// InterestRate is the annual percentage captured from the financing term
	// at submission time; the term's own rate may change afterwards without
	// affecting this loan.
	InterestRate   decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"interest_rate"`
	MonthlyPayment decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"monthly_payment"`

	HasValidID       bool   `gorm:"default:false" json:"has_valid_id"`
	HasProofOfIncome bool   `gorm:"default:false" json:"has_proof_of_income"`
	Notes            string `gorm:"type:text" json:"notes"`

	Status        string     `gorm:"default:pending;not null;index" json:"status"`
	SubmittedByID uint       `gorm:"not null" json:"submitted_by_id"`
	SubmittedAt   time.Time  `gorm:"autoCreateTime" json:"submitted_at"`
	ApprovedAt    *time.Time `json:"approved_at"`
	ActivatedAt   *time.Time `json:"activated_at"`
	CompletedAt   *time.Time `json:"completed_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	// Associations
	Motor            Motor             `gorm:"foreignKey:MotorID" json:"motor,omitempty"`
	FinancingTerm    FinancingTerm     `gorm:"foreignKey:FinancingTermID" json:"financing_term,omitempty"`
	SubmittedBy      User              `gorm:"foreignKey:SubmittedByID" json:"submitted_by,omitempty"`
	Schedules        []PaymentSchedule `gorm:"foreignKey:LoanApplicationID" json:"schedules,omitempty"`
	Payments         []Payment         `gorm:"foreignKey:LoanApplicationID" json:"payments,omitempty"`
	RiskAssessment   *RiskAssessment   `gorm:"foreignKey:LoanApplicationID" json:"risk_assessment,omitempty"`
	RepossessionCase *RepossessionCase `gorm:"foreignKey:LoanApplicationID" json:"repossession_case,omitempty"`
}

// TableName specifies the table name for LoanApplication
func (LoanApplication) TableName() string {
	return "loan_applications"
}

// Loan status constants
const (
	LoanStatusPending   = "pending"
	LoanStatusApproved  = "approved"
	LoanStatusActive    = "active"
	LoanStatusCompleted = "completed"
)

// Employment status constants
const (
	EmploymentEmployed     = "employed"
	EmploymentSelfEmployed = "self_employed"
	EmploymentUnemployed   = "unemployed"
	EmploymentStudent      = "student"
	EmploymentRetired      = "retired"
)

// ApplicantFullName returns the applicant's display name.
func (l *LoanApplication) ApplicantFullName() string {
	name := l.ApplicantFirstName + " " + l.ApplicantLastName
	if l.ApplicantFirstName == "" || l.ApplicantLastName == "" {
		name = l.ApplicantFirstName + l.ApplicantLastName
	}
	return name
}

// MayApprove returns true if the loan can transition to approved
func (l *LoanApplication) MayApprove() bool {
	return l.Status == LoanStatusPending
}

// MayActivate returns true if the loan can transition to active
func (l *LoanApplication) MayActivate() bool {
	return l.Status == LoanStatusApproved
}

// MayComplete returns true if the loan can transition to completed
func (l *LoanApplication) MayComplete() bool {
	return l.Status == LoanStatusActive
}

// CalculateMonthlyPayment returns the simple-interest flat installment:
// total interest is principal × annual rate × years rounded half-up to 2dp,
// and the payment spreads principal + interest evenly over the term.
// Requires FinancingTerm to be loaded.
func (l *LoanApplication) CalculateMonthlyPayment() decimal.Decimal {
	principal := l.PrincipalAmount
	if principal.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}

	totalMonths := l.FinancingTerm.TotalMonths()
	if totalMonths <= 0 {
		return decimal.Zero
	}

	totalInterest := l.TotalInterest()
	total := principal.Add(totalInterest)
	return money.Round2(total.Div(decimal.NewFromInt(int64(totalMonths))))
}

// TotalInterest returns the simple interest charged over the whole term,
// rounded half-up to 2dp. Requires FinancingTerm to be loaded.
func (l *LoanApplication) TotalInterest() decimal.Decimal {
	annualRate := l.InterestRate.Div(decimal.NewFromInt(100))
	years := decimal.NewFromInt(int64(l.FinancingTerm.TermYears))
	return money.Round2(l.PrincipalAmount.Mul(annualRate).Mul(years))
}

// LoanApplicationResponse is the JSON response format for loan applications
type LoanApplicationResponse struct {
	ID               uint                      `json:"id"`
	ApplicantName    string                    `json:"applicant_name"`
	ApplicantEmail   string                    `json:"applicant_email"`
	ApplicantPhone   string                    `json:"applicant_phone"`
	EmploymentStatus string                    `json:"employment_status"`
	MonthlyIncome    decimal.Decimal           `json:"monthly_income"`
	MotorID          uint                      `json:"motor_id"`
	MotorName        string                    `json:"motor_name,omitempty"`
	FinancingTermID  uint                      `json:"financing_term_id"`
	TermYears        int                       `json:"term_years,omitempty"`
	LoanAmount       decimal.Decimal           `json:"loan_amount"`
	DownPayment      decimal.Decimal           `json:"down_payment"`
	PrincipalAmount  decimal.Decimal           `json:"principal_amount"`
	InterestRate     decimal.Decimal           `json:"interest_rate"`
	MonthlyPayment   decimal.Decimal           `json:"monthly_payment"`
	Status           string                    `json:"status"`
	SubmittedAt      time.Time                 `json:"submitted_at"`
	ApprovedAt       *time.Time                `json:"approved_at"`
	ActivatedAt      *time.Time                `json:"activated_at"`
	CompletedAt      *time.Time                `json:"completed_at"`
	Schedules        []PaymentScheduleResponse `json:"schedules,omitempty"`
	RiskLevel        string                    `json:"risk_level,omitempty"`
}

// ToResponse converts LoanApplication to LoanApplicationResponse
func (l *LoanApplication) ToResponse() LoanApplicationResponse {
	resp := LoanApplicationResponse{
		ID:               l.ID,
		ApplicantName:    l.ApplicantFullName(),
		ApplicantEmail:   l.ApplicantEmail,
		ApplicantPhone:   l.ApplicantPhone,
		EmploymentStatus: l.EmploymentStatus,
		MonthlyIncome:    l.MonthlyIncome,
		MotorID:          l.MotorID,
		FinancingTermID:  l.FinancingTermID,
		LoanAmount:       l.LoanAmount,
		DownPayment:      l.DownPayment,
		PrincipalAmount:  l.PrincipalAmount,
		InterestRate:     l.InterestRate,
		MonthlyPayment:   l.MonthlyPayment,
		Status:           l.Status,
		SubmittedAt:      l.SubmittedAt,
		ApprovedAt:       l.ApprovedAt,
		ActivatedAt:      l.ActivatedAt,
		CompletedAt:      l.CompletedAt,
	}

	if l.Motor.ID != 0 {
		resp.MotorName = l.Motor.DisplayName()
	}
	if l.FinancingTerm.ID != 0 {
		resp.TermYears = l.FinancingTerm.TermYears
	}
	if l.RiskAssessment != nil {
		resp.RiskLevel = l.RiskAssessment.RiskLevel
	}
	for i := range l.Schedules {
		resp.Schedules = append(resp.Schedules, l.Schedules[i].ToResponse())
	}

	return resp
}

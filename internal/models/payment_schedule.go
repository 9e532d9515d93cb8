package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentSchedule is one amortization line of a loan. The sum of principal
// amounts across a loan's lines equals the loan's principal exactly; any
// rounding drift is absorbed into the final installment at generation time.
type PaymentSchedule struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	LoanApplicationID uint            `gorm:"not null;uniqueIndex:idx_loan_sequence" json:"loan_application_id"`
	Sequence          int             `gorm:"not null;uniqueIndex:idx_loan_sequence" json:"sequence"`
	DueDate           time.Time       `gorm:"type:date;not null;index" json:"due_date"`
	PrincipalAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"principal_amount"`
	InterestAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"interest_amount"`
	TotalAmount       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	Status            string          `gorm:"default:due;not null;index" json:"status"`
	PaidAt            *time.Time      `json:"paid_at"`
	CreatedAt         time.Time       `json:"created_at"`

	// Associations
	LoanApplication LoanApplication `gorm:"foreignKey:LoanApplicationID" json:"-"`
	Payment         *Payment        `gorm:"foreignKey:PaymentScheduleID" json:"payment,omitempty"`
}

// TableName specifies the table name for PaymentSchedule
func (PaymentSchedule) TableName() string {
	return "payment_schedules"
}

// Schedule status constants
const (
	ScheduleStatusDue     = "due"
	ScheduleStatusOverdue = "overdue"
	ScheduleStatusPaid    = "paid"
)

// IsPaid returns true if the installment has been settled
func (s *PaymentSchedule) IsPaid() bool {
	return s.Status == ScheduleStatusPaid
}

// IsOverdueAsOf reports whether an unpaid installment is past due relative
// to the reference date. Due dates are exclusive: an installment due today
// is not yet overdue.
func (s *PaymentSchedule) IsOverdueAsOf(reference time.Time) bool {
	if s.IsPaid() {
		return false
	}
	return s.DueDate.Before(truncateToDate(reference))
}

// MarkPaid settles the installment, stamping paid_at with the given payment
// date (midnight of the day the customer settled).
func (s *PaymentSchedule) MarkPaid(when time.Time) {
	paidAt := truncateToDate(when)
	s.Status = ScheduleStatusPaid
	s.PaidAt = &paidAt
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// PaymentScheduleResponse is the JSON response format for schedule lines
type PaymentScheduleResponse struct {
	ID              uint            `json:"id"`
	Sequence        int             `json:"sequence"`
	DueDate         time.Time       `json:"due_date"`
	PrincipalAmount decimal.Decimal `json:"principal_amount"`
	InterestAmount  decimal.Decimal `json:"interest_amount"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Status          string          `json:"status"`
	PaidAt          *time.Time      `json:"paid_at"`
}

// ToResponse converts PaymentSchedule to PaymentScheduleResponse
func (s *PaymentSchedule) ToResponse() PaymentScheduleResponse {
	return PaymentScheduleResponse{
		ID:              s.ID,
		Sequence:        s.Sequence,
		DueDate:         s.DueDate,
		PrincipalAmount: s.PrincipalAmount,
		InterestAmount:  s.InterestAmount,
		TotalAmount:     s.TotalAmount,
		Status:          s.Status,
		PaidAt:          s.PaidAt,
	}
}

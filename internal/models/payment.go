package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment is a recorded collection against exactly one schedule line. The
// unique index on payment_schedule_id is the storage-level guarantee that
// two concurrent requests cannot both settle the same installment: the
// second insert fails with a duplicate-key conflict.
type Payment struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	LoanApplicationID uint            `gorm:"not null;index" json:"loan_application_id"`
	PaymentScheduleID uint            `gorm:"not null;uniqueIndex" json:"payment_schedule_id"`
	Amount            decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	PaymentDate       time.Time       `gorm:"type:date;not null;index" json:"payment_date"`
	Reference         string          `json:"reference"`
	Notes             string          `gorm:"type:text" json:"notes"`
	PaymentMethod     string          `gorm:"default:cash;not null" json:"payment_method"`
	RecordedByID      uint            `gorm:"not null" json:"recorded_by_id"`
	RecordedAt        time.Time       `gorm:"autoCreateTime" json:"recorded_at"`

	// Associations
	LoanApplication LoanApplication `gorm:"foreignKey:LoanApplicationID" json:"-"`
	Schedule        PaymentSchedule `gorm:"foreignKey:PaymentScheduleID" json:"schedule,omitempty"`
	RecordedBy      User            `gorm:"foreignKey:RecordedByID" json:"recorded_by,omitempty"`
}

// TableName specifies the table name for Payment
func (Payment) TableName() string {
	return "payments"
}

// Payment method constants
const (
	PaymentMethodCash         = "cash"
	PaymentMethodGCash        = "gcash"
	PaymentMethodBankTransfer = "bank_transfer"
	PaymentMethodCard         = "card"
)

// PaymentResponse is the JSON response format for payments
type PaymentResponse struct {
	ID                uint            `json:"id"`
	LoanApplicationID uint            `json:"loan_application_id"`
	PaymentScheduleID uint            `json:"payment_schedule_id"`
	Sequence          int             `json:"sequence,omitempty"`
	Amount            decimal.Decimal `json:"amount"`
	PaymentDate       time.Time       `json:"payment_date"`
	Reference         string          `json:"reference"`
	Notes             string          `json:"notes"`
	PaymentMethod     string          `json:"payment_method"`
	RecordedBy        string          `json:"recorded_by,omitempty"`
	RecordedAt        time.Time       `json:"recorded_at"`
}

// ToResponse converts Payment to PaymentResponse
func (p *Payment) ToResponse() PaymentResponse {
	resp := PaymentResponse{
		ID:                p.ID,
		LoanApplicationID: p.LoanApplicationID,
		PaymentScheduleID: p.PaymentScheduleID,
		Amount:            p.Amount,
		PaymentDate:       p.PaymentDate,
		Reference:         p.Reference,
		Notes:             p.Notes,
		PaymentMethod:     p.PaymentMethod,
		RecordedAt:        p.RecordedAt,
	}
	if p.Schedule.ID != 0 {
		resp.Sequence = p.Schedule.Sequence
	}
	if p.RecordedBy.ID != 0 {
		resp.RecordedBy = p.RecordedBy.FullName
	}
	return resp
}

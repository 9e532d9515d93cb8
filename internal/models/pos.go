package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// POSSession is one cashier shift at the payment terminal. Payments taken
// through the terminal are attached to the open session; closing the
// session reconciles counted cash against what was collected.
type POSSession struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	OpenedByID  uint             `gorm:"not null;index" json:"opened_by_id"`
	OpeningCash decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0" json:"opening_cash"`
	ClosingCash *decimal.Decimal `gorm:"type:decimal(12,2)" json:"closing_cash"`
	Status      string           `gorm:"default:open;not null;index" json:"status"`
	Notes       string           `gorm:"type:text" json:"notes"`
	OpenedAt    time.Time        `gorm:"autoCreateTime" json:"opened_at"`
	ClosedAt    *time.Time       `json:"closed_at"`

	// Associations
	OpenedBy     User             `gorm:"foreignKey:OpenedByID" json:"opened_by,omitempty"`
	Transactions []POSTransaction `gorm:"foreignKey:POSSessionID" json:"transactions,omitempty"`
}

// TableName specifies the table name for POSSession
func (POSSession) TableName() string {
	return "pos_sessions"
}

// Session status constants
const (
	POSSessionOpen   = "open"
	POSSessionClosed = "closed"
)

// IsOpen returns true if the session still accepts transactions
func (s *POSSession) IsOpen() bool {
	return s.Status == POSSessionOpen
}

// TotalCollected sums the cash taken during the session. Only cash
// transactions count toward the drawer; digital methods settle elsewhere.
func (s *POSSession) TotalCollected() decimal.Decimal {
	total := decimal.Zero
	for i := range s.Transactions {
		t := &s.Transactions[i]
		if t.TransactionType != POSTransactionPayment {
			continue
		}
		if t.PaymentMethod != PaymentMethodCash {
			continue
		}
		total = total.Add(t.Amount)
	}
	return total
}

// CashVariance is counted closing cash minus the expected drawer total
// (opening cash plus cash collected). Positive means an overage, negative a
// shortage. Returns zero while the session is still open.
func (s *POSSession) CashVariance() decimal.Decimal {
	if s.ClosingCash == nil {
		return decimal.Zero
	}
	expected := s.OpeningCash.Add(s.TotalCollected())
	return s.ClosingCash.Sub(expected)
}

// CloseSession records the counted drawer and closes the session. No-op
// when already closed.
func (s *POSSession) CloseSession(closingCash decimal.Decimal, notes string, now time.Time) bool {
	if !s.IsOpen() {
		return false
	}
	s.Status = POSSessionClosed
	s.ClosingCash = &closingCash
	if notes != "" {
		s.Notes = notes
	}
	s.ClosedAt = &now
	return true
}

// POSTransaction ties a terminal action to its session. Payment-type
// transactions reference the Payment row they produced one-to-one.
type POSTransaction struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	POSSessionID    uint            `gorm:"not null;index" json:"pos_session_id"`
	PaymentID       *uint           `gorm:"uniqueIndex" json:"payment_id"`
	TransactionType string          `gorm:"default:payment;not null" json:"transaction_type"`
	Amount          decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	PaymentMethod   string          `gorm:"default:cash;not null" json:"payment_method"`
	Notes           string          `gorm:"type:text" json:"notes"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`

	// Associations
	Session POSSession `gorm:"foreignKey:POSSessionID" json:"-"`
	Payment *Payment   `gorm:"foreignKey:PaymentID" json:"payment,omitempty"`
}

// TableName specifies the table name for POSTransaction
func (POSTransaction) TableName() string {
	return "pos_transactions"
}

// Transaction type constants
const (
	POSTransactionPayment    = "payment"
	POSTransactionRefund     = "refund"
	POSTransactionAdjustment = "adjustment"
)

// ReceiptLog records every receipt issued from the terminal with a
// sequential number.
type ReceiptLog struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	ReceiptNumber    string     `gorm:"not null;uniqueIndex" json:"receipt_number"`
	POSTransactionID uint       `gorm:"not null;index" json:"pos_transaction_id"`
	PrintedAt        *time.Time `json:"printed_at"`
	PrintCount       int        `gorm:"not null;default:0" json:"print_count"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`

	// Associations
	Transaction POSTransaction `gorm:"foreignKey:POSTransactionID" json:"-"`
}

// TableName specifies the table name for ReceiptLog
func (ReceiptLog) TableName() string {
	return "receipt_logs"
}

// FormatReceiptNumber renders the sequential receipt number, e.g. RCP-000042.
func FormatReceiptNumber(seq int64) string {
	return fmt.Sprintf("RCP-%06d", seq)
}

// MarkPrinted stamps the latest print and bumps the print counter.
func (r *ReceiptLog) MarkPrinted(now time.Time) {
	r.PrintedAt = &now
	r.PrintCount++
}

// POSSessionResponse is the JSON response format for terminal sessions
type POSSessionResponse struct {
	ID             uint             `json:"id"`
	OpenedBy       string           `json:"opened_by,omitempty"`
	OpeningCash    decimal.Decimal  `json:"opening_cash"`
	ClosingCash    *decimal.Decimal `json:"closing_cash"`
	Status         string           `json:"status"`
	TotalCollected decimal.Decimal  `json:"total_collected"`
	CashVariance   decimal.Decimal  `json:"cash_variance"`
	Notes          string           `json:"notes,omitempty"`
	OpenedAt       time.Time        `json:"opened_at"`
	ClosedAt       *time.Time       `json:"closed_at"`
}

// ToResponse converts POSSession to POSSessionResponse
func (s *POSSession) ToResponse() POSSessionResponse {
	resp := POSSessionResponse{
		ID:             s.ID,
		OpeningCash:    s.OpeningCash,
		ClosingCash:    s.ClosingCash,
		Status:         s.Status,
		TotalCollected: s.TotalCollected(),
		CashVariance:   s.CashVariance(),
		Notes:          s.Notes,
		OpenedAt:       s.OpenedAt,
		ClosedAt:       s.ClosedAt,
	}
	if s.OpenedBy.ID != 0 {
		resp.OpenedBy = s.OpenedBy.FullName
	}
	return resp
}

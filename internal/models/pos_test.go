package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func testSession() *POSSession {
	return &POSSession{
		ID:          1,
		OpenedByID:  5,
		OpeningCash: decimal.RequireFromString("1000.00"),
		Status:      POSSessionOpen,
		Transactions: []POSTransaction{
			{TransactionType: POSTransactionPayment, PaymentMethod: PaymentMethodCash, Amount: decimal.RequireFromString("4133.33")},
			{TransactionType: POSTransactionPayment, PaymentMethod: PaymentMethodCash, Amount: decimal.RequireFromString("2500.00")},
			{TransactionType: POSTransactionPayment, PaymentMethod: PaymentMethodCard, Amount: decimal.RequireFromString("4133.33")},
			{TransactionType: POSTransactionRefund, PaymentMethod: PaymentMethodCash, Amount: decimal.RequireFromString("500.00")},
		},
	}
}

func TestTotalCollectedCountsOnlyCashPayments(t *testing.T) {
	s := testSession()

	// Card payments and refunds never touch the drawer
	assert.Equal(t, "6633.33", s.TotalCollected().StringFixed(2))
}

func TestCashVariance(t *testing.T) {
	s := testSession()

	// Still open, nothing counted yet
	assert.True(t, s.CashVariance().IsZero())

	closing := decimal.RequireFromString("7733.33")
	s.ClosingCash = &closing
	assert.Equal(t, "100.00", s.CashVariance().StringFixed(2))

	short := decimal.RequireFromString("7500.00")
	s.ClosingCash = &short
	assert.Equal(t, "-133.33", s.CashVariance().StringFixed(2))
}

func TestCloseSession(t *testing.T) {
	s := testSession()
	now := time.Date(2026, time.August, 25, 18, 0, 0, 0, time.UTC)

	ok := s.CloseSession(decimal.RequireFromString("7633.33"), "drawer counted twice", now)
	assert.True(t, ok)
	assert.Equal(t, POSSessionClosed, s.Status)
	assert.Equal(t, "7633.33", s.ClosingCash.StringFixed(2))
	assert.Equal(t, "drawer counted twice", s.Notes)
	assert.Equal(t, &now, s.ClosedAt)

	// Closing again changes nothing
	ok = s.CloseSession(decimal.RequireFromString("0.00"), "again", now.Add(time.Hour))
	assert.False(t, ok)
	assert.Equal(t, "7633.33", s.ClosingCash.StringFixed(2))
	assert.Equal(t, "drawer counted twice", s.Notes)
}

func TestFormatReceiptNumber(t *testing.T) {
	assert.Equal(t, "RCP-000042", FormatReceiptNumber(42))
	assert.Equal(t, "RCP-123456", FormatReceiptNumber(123456))
	assert.Equal(t, "RCP-1234567", FormatReceiptNumber(1234567))
}

func TestReceiptMarkPrinted(t *testing.T) {
	r := &ReceiptLog{ReceiptNumber: "RCP-000001"}
	now := time.Now()

	r.MarkPrinted(now)
	r.MarkPrinted(now.Add(time.Minute))

	assert.Equal(t, 2, r.PrintCount)
	assert.NotNil(t, r.PrintedAt)
}

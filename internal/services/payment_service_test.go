package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/motofin/motofin-api/internal/models"
)

func paymentTestFixtures() (*models.LoanApplication, *models.PaymentSchedule) {
	loan := &models.LoanApplication{ID: 1}
	schedule := &models.PaymentSchedule{
		ID:                10,
		LoanApplicationID: 1,
		Sequence:          3,
		TotalAmount:       decimal.RequireFromString("4133.33"),
		Status:            models.ScheduleStatusDue,
	}
	return loan, schedule
}

func TestValidatePaymentAcceptsExactAmount(t *testing.T) {
	loan, schedule := paymentTestFixtures()

	err := validatePayment(loan, schedule, decimal.RequireFromString("4133.33"))
	assert.NoError(t, err)
}

func TestValidatePaymentRejectsForeignSchedule(t *testing.T) {
	loan, schedule := paymentTestFixtures()
	schedule.LoanApplicationID = 2

	err := validatePayment(loan, schedule, decimal.RequireFromString("4133.33"))

	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, "payment_schedule_id", verr.Field)
}

func TestValidatePaymentRejectsSettledInstallment(t *testing.T) {
	loan, schedule := paymentTestFixtures()
	schedule.Status = models.ScheduleStatusPaid

	err := validatePayment(loan, schedule, decimal.RequireFromString("4133.33"))
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.Contains(t, err.Error(), "installment 3 is already settled")
}

func TestValidatePaymentRejectsWrongAmount(t *testing.T) {
	loan, schedule := paymentTestFixtures()

	// No partial payments
	err := validatePayment(loan, schedule, decimal.RequireFromString("4000.00"))
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, "amount", verr.Field)
	assert.Contains(t, verr.Message, "4133.33")

	// No overpayments either
	err = validatePayment(loan, schedule, decimal.RequireFromString("4133.34"))
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, "amount", verr.Field)

	err = validatePayment(loan, schedule, decimal.Zero)
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, "must be greater than zero", verr.Message)
}

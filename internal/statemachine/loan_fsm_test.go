package statemachine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/motofin/motofin-api/internal/models"
)

func TestLoanLifecycleHappyPath(t *testing.T) {
	ctx := context.Background()
	loan := &models.LoanApplication{Status: models.LoanStatusPending}
	machine := NewLoanFSM(loan)

	assert.True(t, machine.Can("approve"))
	assert.NoError(t, machine.Approve(ctx))
	assert.Equal(t, models.LoanStatusApproved, loan.Status)

	assert.NoError(t, machine.Activate(ctx))
	assert.Equal(t, models.LoanStatusActive, loan.Status)

	assert.NoError(t, machine.Complete(ctx))
	assert.Equal(t, models.LoanStatusCompleted, loan.Status)
	assert.Equal(t, models.LoanStatusCompleted, machine.Current())
}

func TestLoanCannotSkipStates(t *testing.T) {
	ctx := context.Background()
	loan := &models.LoanApplication{Status: models.LoanStatusPending}
	machine := NewLoanFSM(loan)

	assert.Error(t, machine.Activate(ctx))
	assert.Error(t, machine.Complete(ctx))
	assert.Equal(t, models.LoanStatusPending, loan.Status)
}

func TestLoanDoubleApproveFails(t *testing.T) {
	ctx := context.Background()
	loan := &models.LoanApplication{Status: models.LoanStatusPending}
	machine := NewLoanFSM(loan)

	assert.NoError(t, machine.Approve(ctx))
	err := machine.Approve(ctx)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be approved")
	assert.Equal(t, models.LoanStatusApproved, loan.Status)
}

func TestLoanNoRegressionFromCompleted(t *testing.T) {
	ctx := context.Background()
	loan := &models.LoanApplication{Status: models.LoanStatusCompleted}
	machine := NewLoanFSM(loan)

	assert.False(t, machine.Can("approve"))
	assert.False(t, machine.Can("activate"))
	assert.False(t, machine.Can("complete"))
	assert.Error(t, machine.Approve(ctx))
	assert.Equal(t, models.LoanStatusCompleted, loan.Status)
}

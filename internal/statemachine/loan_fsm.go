package statemachine

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"

	"github.com/motofin/motofin-api/internal/models"
)

// LoanFSM wraps a loan application with its state machine. The lifecycle is
// forward-only: pending → approved → active → completed, no regression.
type LoanFSM struct {
	loan *models.LoanApplication
	fsm  *fsm.FSM
}

// NewLoanFSM creates a new loan application state machine
func NewLoanFSM(loan *models.LoanApplication) *LoanFSM {
	lfsm := &LoanFSM{
		loan: loan,
	}

	lfsm.fsm = fsm.NewFSM(
		loan.Status,
		fsm.Events{
			// pending → approved
			{Name: "approve", Src: []string{models.LoanStatusPending}, Dst: models.LoanStatusApproved},

			// approved → active
			{Name: "activate", Src: []string{models.LoanStatusApproved}, Dst: models.LoanStatusActive},

			// active → completed
			{Name: "complete", Src: []string{models.LoanStatusActive}, Dst: models.LoanStatusCompleted},
		},
		fsm.Callbacks{},
	)

	return lfsm
}

// Approve transitions the loan to approved state
func (l *LoanFSM) Approve(ctx context.Context) error {
	if !l.loan.MayApprove() {
		return fmt.Errorf("loan cannot be approved in current state: %s", l.loan.Status)
	}

	if err := l.fsm.Event(ctx, "approve"); err != nil {
		return fmt.Errorf("failed to approve loan: %w", err)
	}

	l.loan.Status = l.fsm.Current()
	return nil
}

// Activate transitions the loan to active state
func (l *LoanFSM) Activate(ctx context.Context) error {
	if !l.loan.MayActivate() {
		return fmt.Errorf("loan cannot be activated in current state: %s", l.loan.Status)
	}

	if err := l.fsm.Event(ctx, "activate"); err != nil {
		return fmt.Errorf("failed to activate loan: %w", err)
	}

	l.loan.Status = l.fsm.Current()
	return nil
}

// Complete transitions the loan to completed state
func (l *LoanFSM) Complete(ctx context.Context) error {
	if !l.loan.MayComplete() {
		return fmt.Errorf("loan cannot be completed in current state: %s", l.loan.Status)
	}

	if err := l.fsm.Event(ctx, "complete"); err != nil {
		return fmt.Errorf("failed to complete loan: %w", err)
	}

	l.loan.Status = l.fsm.Current()
	return nil
}

// Current returns the current state
func (l *LoanFSM) Current() string {
	return l.fsm.Current()
}

// Can checks if a transition is possible
func (l *LoanFSM) Can(event string) bool {
	return l.fsm.Can(event)
}

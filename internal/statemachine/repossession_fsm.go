package statemachine

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"

	"github.com/motofin/motofin-api/internal/models"
)

// RepossessionFSM wraps a repossession case with its state machine. Open
// states (warning, active, reminder) may move between each other; recovered
// and closed are terminal except that a recovered case can still be closed
// with resolution notes.
type RepossessionFSM struct {
	repoCase *models.RepossessionCase
	fsm      *fsm.FSM
}

// NewRepossessionFSM creates a new repossession case state machine
func NewRepossessionFSM(repoCase *models.RepossessionCase) *RepossessionFSM {
	rfsm := &RepossessionFSM{
		repoCase: repoCase,
	}

	rfsm.fsm = fsm.NewFSM(
		repoCase.Status,
		fsm.Events{
			// warning → active
			{Name: "escalate", Src: []string{models.RepossessionStatusWarning}, Dst: models.RepossessionStatusActive},

			// any open state → reminder
			{Name: "remind", Src: []string{models.RepossessionStatusWarning, models.RepossessionStatusActive, models.RepossessionStatusReminder}, Dst: models.RepossessionStatusReminder},

			// any open state → recovered
			{Name: "recover", Src: []string{models.RepossessionStatusWarning, models.RepossessionStatusActive, models.RepossessionStatusReminder}, Dst: models.RepossessionStatusRecovered},

			// anything but closed → closed
			{Name: "close", Src: []string{models.RepossessionStatusWarning, models.RepossessionStatusActive, models.RepossessionStatusReminder, models.RepossessionStatusRecovered}, Dst: models.RepossessionStatusClosed},
		},
		fsm.Callbacks{},
	)

	return rfsm
}

// Escalate transitions the case from warning to active
func (r *RepossessionFSM) Escalate(ctx context.Context) error {
	if err := r.fsm.Event(ctx, "escalate"); err != nil {
		return fmt.Errorf("failed to escalate case: %w", err)
	}

	r.repoCase.Status = r.fsm.Current()
	return nil
}

// Remind transitions the case to reminder state
func (r *RepossessionFSM) Remind(ctx context.Context) error {
	if !r.repoCase.IsOpen() {
		return fmt.Errorf("case cannot receive reminders in current state: %s", r.repoCase.Status)
	}

	if err := r.fsm.Event(ctx, "remind"); err != nil {
		return fmt.Errorf("failed to record reminder: %w", err)
	}

	r.repoCase.Status = r.fsm.Current()
	return nil
}

// Recover transitions the case to recovered state
func (r *RepossessionFSM) Recover(ctx context.Context) error {
	if !r.repoCase.IsOpen() {
		return fmt.Errorf("case cannot be recovered in current state: %s", r.repoCase.Status)
	}

	if err := r.fsm.Event(ctx, "recover"); err != nil {
		return fmt.Errorf("failed to recover case: %w", err)
	}

	r.repoCase.Status = r.fsm.Current()
	return nil
}

// Close transitions the case to closed state
func (r *RepossessionFSM) Close(ctx context.Context) error {
	if r.repoCase.Status == models.RepossessionStatusClosed {
		return fmt.Errorf("case is already closed")
	}

	if err := r.fsm.Event(ctx, "close"); err != nil {
		return fmt.Errorf("failed to close case: %w", err)
	}

	r.repoCase.Status = r.fsm.Current()
	return nil
}

// Current returns the current state
func (r *RepossessionFSM) Current() string {
	return r.fsm.Current()
}

// Can checks if a transition is possible
func (r *RepossessionFSM) Can(event string) bool {
	return r.fsm.Can(event)
}

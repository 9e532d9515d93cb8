package statemachine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/motofin/motofin-api/internal/models"
)

func TestRepossessionEscalation(t *testing.T) {
	ctx := context.Background()
	repoCase := &models.RepossessionCase{Status: models.RepossessionStatusWarning}
	machine := NewRepossessionFSM(repoCase)

	assert.NoError(t, machine.Escalate(ctx))
	assert.Equal(t, models.RepossessionStatusActive, repoCase.Status)

	// Only warning cases escalate
	assert.Error(t, machine.Escalate(ctx))
	assert.Equal(t, models.RepossessionStatusActive, repoCase.Status)
}

func TestRepossessionRemindFromAnyOpenState(t *testing.T) {
	ctx := context.Background()

	for _, status := range []string{
		models.RepossessionStatusWarning,
		models.RepossessionStatusActive,
		models.RepossessionStatusReminder,
	} {
		repoCase := &models.RepossessionCase{Status: status}
		machine := NewRepossessionFSM(repoCase)
		assert.NoError(t, machine.Remind(ctx), "from %s", status)
		assert.Equal(t, models.RepossessionStatusReminder, repoCase.Status)
	}
}

func TestRepossessionRemindRejectsTerminalStates(t *testing.T) {
	ctx := context.Background()

	for _, status := range []string{
		models.RepossessionStatusRecovered,
		models.RepossessionStatusClosed,
	} {
		repoCase := &models.RepossessionCase{Status: status}
		machine := NewRepossessionFSM(repoCase)
		assert.Error(t, machine.Remind(ctx), "from %s", status)
		assert.Equal(t, status, repoCase.Status)
	}
}

func TestRepossessionRecoverAndClose(t *testing.T) {
	ctx := context.Background()
	repoCase := &models.RepossessionCase{Status: models.RepossessionStatusReminder}
	machine := NewRepossessionFSM(repoCase)

	assert.NoError(t, machine.Recover(ctx))
	assert.Equal(t, models.RepossessionStatusRecovered, repoCase.Status)

	// A recovered case can no longer be recovered, but may still be closed
	assert.Error(t, machine.Recover(ctx))
	assert.NoError(t, machine.Close(ctx))
	assert.Equal(t, models.RepossessionStatusClosed, repoCase.Status)

	err := machine.Close(ctx)
	assert.EqualError(t, err, "case is already closed")
}

package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func testCase(status string) *RepossessionCase {
	return &RepossessionCase{
		ID:                 1,
		LoanApplicationID:  1,
		Status:             status,
		TotalOverdueAmount: decimal.Zero,
	}
}

func TestApplyMetrics(t *testing.T) {
	c := testCase(RepossessionStatusWarning)

	assert.True(t, c.ApplyMetrics(1, decimal.RequireFromString("4133.33")))
	assert.Equal(t, 1, c.OverdueInstallments)
	assert.Equal(t, "4133.33", c.TotalOverdueAmount.StringFixed(2))

	// Same counters report no change
	assert.False(t, c.ApplyMetrics(1, decimal.RequireFromString("4133.33")))
	assert.True(t, c.ApplyMetrics(2, decimal.RequireFromString("8266.66")))
}

func TestShouldEscalate(t *testing.T) {
	c := testCase(RepossessionStatusWarning)
	c.OverdueInstallments = 1
	assert.False(t, c.ShouldEscalate())

	c.OverdueInstallments = 2
	assert.True(t, c.ShouldEscalate())

	// Only warning cases escalate, growth on an active case is just metrics
	c.Status = RepossessionStatusActive
	c.OverdueInstallments = 3
	assert.False(t, c.ShouldEscalate())
}

func TestMetricsEvent(t *testing.T) {
	c := testCase(RepossessionStatusWarning)
	c.ApplyMetrics(2, decimal.RequireFromString("8266.66"))

	event := c.MetricsEvent()
	assert.Equal(t, RepossessionEventSystem, event.EventType)
	assert.Equal(t, "Overdue installments: 2, total overdue: 8266.66", event.Description)
}

func TestStatusChangeEvent(t *testing.T) {
	c := testCase(RepossessionStatusActive)
	actor := uint(7)

	event := c.StatusChangeEvent(RepossessionStatusWarning, &actor)
	assert.Equal(t, RepossessionEventStatus, event.EventType)
	assert.Equal(t, "Status changed from Warning to Active case", event.Description)
	assert.Equal(t, &actor, event.CreatedByID)
}

func TestNoteReminder(t *testing.T) {
	c := testCase(RepossessionStatusReminder)
	now := time.Date(2026, time.August, 25, 10, 0, 0, 0, time.UTC)
	actor := uint(7)

	event := c.NoteReminder("please settle installment 3", &actor, now)
	assert.Equal(t, RepossessionEventReminder, event.EventType)
	assert.Contains(t, event.Description, "please settle installment 3")
	assert.Equal(t, &now, c.LastReminderSentAt)

	// Without a message the event carries the generic wording
	event = c.NoteReminder("", &actor, now)
	assert.Equal(t, "Reminder sent to customer", event.Description)
}

func TestNoteRecoveredClearsCounters(t *testing.T) {
	c := testCase(RepossessionStatusRecovered)
	c.OverdueInstallments = 2
	c.TotalOverdueAmount = decimal.RequireFromString("8266.66")
	now := time.Date(2026, time.August, 25, 12, 0, 0, 0, time.UTC)

	event := c.NoteRecovered(nil, now)

	assert.Equal(t, 0, c.OverdueInstallments)
	assert.Equal(t, "0.00", c.TotalOverdueAmount.StringFixed(2))
	assert.Equal(t, &now, c.ClosedAt)
	assert.Equal(t, RepossessionEventSystem, event.EventType)
}

func TestNoteClosed(t *testing.T) {
	c := testCase(RepossessionStatusClosed)
	now := time.Date(2026, time.August, 25, 15, 0, 0, 0, time.UTC)
	actor := uint(3)

	event := c.NoteClosed("unit returned to dealer", &actor, now)

	assert.Equal(t, "unit returned to dealer", c.ResolutionNotes)
	assert.Equal(t, &now, c.ClosedAt)
	assert.Contains(t, event.Description, "unit returned to dealer")
}

func TestCaseIsOpen(t *testing.T) {
	for _, status := range []string{RepossessionStatusWarning, RepossessionStatusActive, RepossessionStatusReminder} {
		assert.True(t, testCase(status).IsOpen(), "status %s", status)
	}
	for _, status := range []string{RepossessionStatusRecovered, RepossessionStatusClosed} {
		assert.False(t, testCase(status).IsOpen(), "status %s", status)
	}
}

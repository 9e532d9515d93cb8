package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// RepossessionCase tracks collection escalation for a delinquent loan. At
// most one case exists per loan; its counters are never written directly by
// payments, only re-derived from the loan's overdue schedule lines.
type RepossessionCase struct {
	ID                  uint            `gorm:"primaryKey" json:"id"`
	LoanApplicationID   uint            `gorm:"not null;uniqueIndex" json:"loan_application_id"`
	Status              string          `gorm:"default:warning;not null;index" json:"status"`
	OverdueInstallments int             `gorm:"not null;default:0" json:"overdue_installments"`
	TotalOverdueAmount  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total_overdue_amount"`
	LastReminderSentAt  *time.Time      `json:"last_reminder_sent_at"`
	ResolutionNotes     string          `gorm:"type:text" json:"resolution_notes"`
	ClosedAt            *time.Time      `json:"closed_at"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`

	// Associations
	LoanApplication LoanApplication     `gorm:"foreignKey:LoanApplicationID" json:"-"`
	Events          []RepossessionEvent `gorm:"foreignKey:RepossessionCaseID" json:"events,omitempty"`
}

// TableName specifies the table name for RepossessionCase
func (RepossessionCase) TableName() string {
	return "repossession_cases"
}

// RepossessionEvent is one append-only timeline entry on a case. Events are
// never edited or deleted.
type RepossessionEvent struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	RepossessionCaseID uint      `gorm:"not null;index" json:"repossession_case_id"`
	EventType          string    `gorm:"not null" json:"event_type"`
	Description        string    `gorm:"type:text;not null" json:"description"`
	CreatedByID        *uint     `json:"created_by_id"`
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Associations
	CreatedBy *User `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
}

// TableName specifies the table name for RepossessionEvent
func (RepossessionEvent) TableName() string {
	return "repossession_events"
}

// Case status constants
const (
	RepossessionStatusWarning   = "warning"
	RepossessionStatusActive    = "active"
	RepossessionStatusReminder  = "reminder"
	RepossessionStatusRecovered = "recovered"
	RepossessionStatusClosed    = "closed"
)

// Event type constants
const (
	RepossessionEventSystem   = "system"
	RepossessionEventReminder = "reminder"
	RepossessionEventStatus   = "status"
	RepossessionEventNote     = "note"
)

// A case escalates from warning to active once this many installments are
// overdue at the same time.
const escalationThreshold = 2

var repossessionStatusNames = map[string]string{
	RepossessionStatusWarning:   "Warning",
	RepossessionStatusActive:    "Active case",
	RepossessionStatusReminder:  "Reminder sent",
	RepossessionStatusRecovered: "Recovered",
	RepossessionStatusClosed:    "Closed",
}

// StatusDisplay returns the human-readable name of the case status.
func (c *RepossessionCase) StatusDisplay() string {
	if name, ok := repossessionStatusNames[c.Status]; ok {
		return name
	}
	return c.Status
}

// IsOpen reports whether the case still accepts reminders and escalation.
func (c *RepossessionCase) IsOpen() bool {
	return c.Status != RepossessionStatusRecovered && c.Status != RepossessionStatusClosed
}

func (c *RepossessionCase) newEvent(eventType, description string, actorID *uint) RepossessionEvent {
	return RepossessionEvent{
		RepossessionCaseID: c.ID,
		EventType:          eventType,
		Description:        description,
		CreatedByID:        actorID,
	}
}

// StatusChangeEvent records a transition from the given previous status to
// the case's current one. The status itself moves through the state machine
// in the service layer; the model only writes the timeline.
func (c *RepossessionCase) StatusChangeEvent(from string, actorID *uint) RepossessionEvent {
	return c.newEvent(RepossessionEventStatus,
		fmt.Sprintf("Status changed from %s to %s", repossessionStatusNames[from], repossessionStatusNames[c.Status]),
		actorID)
}

// ApplyMetrics stores a fresh overdue count and amount, reporting whether
// either changed.
func (c *RepossessionCase) ApplyMetrics(overdueCount int, totalOverdue decimal.Decimal) bool {
	changed := c.OverdueInstallments != overdueCount || !c.TotalOverdueAmount.Equal(totalOverdue)
	c.OverdueInstallments = overdueCount
	c.TotalOverdueAmount = totalOverdue
	return changed
}

// ShouldEscalate reports whether a warning case has accumulated enough
// overdue installments to become an active case.
func (c *RepossessionCase) ShouldEscalate() bool {
	return c.Status == RepossessionStatusWarning && c.OverdueInstallments >= escalationThreshold
}

// MetricsEvent describes the current counters on the timeline.
func (c *RepossessionCase) MetricsEvent() RepossessionEvent {
	return c.newEvent(RepossessionEventSystem,
		fmt.Sprintf("Overdue installments: %d, total overdue: %s", c.OverdueInstallments, c.TotalOverdueAmount.StringFixed(2)),
		nil)
}

// NoteReminder stamps the reminder time and returns its timeline event.
func (c *RepossessionCase) NoteReminder(message string, actorID *uint, now time.Time) RepossessionEvent {
	c.LastReminderSentAt = &now

	description := "Reminder sent to customer"
	if message != "" {
		description = fmt.Sprintf("Reminder sent to customer: %s", message)
	}
	return c.newEvent(RepossessionEventReminder, description, actorID)
}

// NoteRecovered zeroes the overdue counters and stamps the resolution time
// after the loan cleared its arrears.
func (c *RepossessionCase) NoteRecovered(actorID *uint, now time.Time) RepossessionEvent {
	c.OverdueInstallments = 0
	c.TotalOverdueAmount = decimal.Zero
	c.ClosedAt = &now
	return c.newEvent(RepossessionEventSystem, "Loan recovered: no overdue installments remain", actorID)
}

// NoteClosed stores the resolution notes and stamps the closing time.
func (c *RepossessionCase) NoteClosed(notes string, actorID *uint, now time.Time) RepossessionEvent {
	c.ResolutionNotes = notes
	c.ClosedAt = &now

	description := "Case closed"
	if notes != "" {
		description = fmt.Sprintf("Case closed: %s", notes)
	}
	return c.newEvent(RepossessionEventStatus, description, actorID)
}

// RepossessionEventResponse is the JSON response format for timeline events
type RepossessionEventResponse struct {
	ID          uint      `json:"id"`
	EventType   string    `json:"event_type"`
	Description string    `json:"description"`
	CreatedBy   string    `json:"created_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToResponse converts RepossessionEvent to RepossessionEventResponse
func (e *RepossessionEvent) ToResponse() RepossessionEventResponse {
	resp := RepossessionEventResponse{
		ID:          e.ID,
		EventType:   e.EventType,
		Description: e.Description,
		CreatedAt:   e.CreatedAt,
	}
	if e.CreatedBy != nil {
		resp.CreatedBy = e.CreatedBy.FullName
	}
	return resp
}

// RepossessionCaseResponse is the JSON response format for cases
type RepossessionCaseResponse struct {
	ID                  uint                        `json:"id"`
	LoanApplicationID   uint                        `json:"loan_application_id"`
	ApplicantName       string                      `json:"applicant_name,omitempty"`
	Status              string                      `json:"status"`
	StatusDisplay       string                      `json:"status_display"`
	OverdueInstallments int                         `json:"overdue_installments"`
	TotalOverdueAmount  decimal.Decimal             `json:"total_overdue_amount"`
	LastReminderSentAt  *time.Time                  `json:"last_reminder_sent_at"`
	ResolutionNotes     string                      `json:"resolution_notes,omitempty"`
	ClosedAt            *time.Time                  `json:"closed_at"`
	CreatedAt           time.Time                   `json:"created_at"`
	Events              []RepossessionEventResponse `json:"events,omitempty"`
}

// ToResponse converts RepossessionCase to RepossessionCaseResponse
func (c *RepossessionCase) ToResponse() RepossessionCaseResponse {
	resp := RepossessionCaseResponse{
		ID:                  c.ID,
		LoanApplicationID:   c.LoanApplicationID,
		Status:              c.Status,
		StatusDisplay:       c.StatusDisplay(),
		OverdueInstallments: c.OverdueInstallments,
		TotalOverdueAmount:  c.TotalOverdueAmount,
		LastReminderSentAt:  c.LastReminderSentAt,
		ResolutionNotes:     c.ResolutionNotes,
		ClosedAt:            c.ClosedAt,
		CreatedAt:           c.CreatedAt,
	}
	if c.LoanApplication.ID != 0 {
		resp.ApplicantName = c.LoanApplication.ApplicantFullName()
	}
	for i := range c.Events {
		resp.Events = append(resp.Events, c.Events[i].ToResponse())
	}
	return resp
}

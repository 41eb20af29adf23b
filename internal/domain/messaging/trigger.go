package messaging

import (
	"time"

	"github.com/google/uuid"

	"github.com/dropship/backend/internal/domain/shared"
)

// TriggerStatus is the lifecycle state of one template firing
type TriggerStatus string

const (
	TriggerStatusScheduled TriggerStatus = "SCHEDULED"
	TriggerStatusSent      TriggerStatus = "SENT"
	TriggerStatusFailed    TriggerStatus = "FAILED"
)

// TriggerHistory is one scheduled firing of a template for one event.
// Delayed templates sit in SCHEDULED until the scheduler picks them up.
type TriggerHistory struct {
	shared.BaseAggregateRoot
	TemplateID   uuid.UUID
	EventType    string
	AggregateID  uuid.UUID
	Recipient    string
	Status       TriggerStatus
	ScheduledFor time.Time
	FiredAt      *time.Time
	Error        string
	// Vars are the render variables captured at trigger time, so a delayed
	// send does not depend on re-reading the aggregate
	Vars map[string]string `gorm:"-"`
}

// NewTriggerHistory schedules a template firing
func NewTriggerHistory(templateID uuid.UUID, eventType string, aggregateID uuid.UUID, recipient string, scheduledFor time.Time, vars map[string]string) (*TriggerHistory, error) {
	if eventType == "" {
		return nil, shared.NewDomainError("INVALID_TRIGGER", "Trigger event type cannot be empty")
	}
	if recipient == "" {
		return nil, shared.NewDomainError("INVALID_TRIGGER", "Trigger recipient cannot be empty")
	}
	if scheduledFor.IsZero() {
		scheduledFor = time.Now()
	}

	return &TriggerHistory{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		TemplateID:        templateID,
		EventType:         eventType,
		AggregateID:       aggregateID,
		Recipient:         recipient,
		Status:            TriggerStatusScheduled,
		ScheduledFor:      scheduledFor,
		Vars:              vars,
	}, nil
}

// IsDue reports whether the firing should be delivered at the given time
func (h *TriggerHistory) IsDue(now time.Time) bool {
	return h.Status == TriggerStatusScheduled && !h.ScheduledFor.After(now)
}

// MarkSent records that the message went out
func (h *TriggerHistory) MarkSent() error {
	if h.Status != TriggerStatusScheduled {
		return shared.NewDomainError("INVALID_STATE", "Only scheduled triggers can be marked sent")
	}
	now := time.Now()
	h.Status = TriggerStatusSent
	h.FiredAt = &now
	h.UpdatedAt = now
	return nil
}

// MarkFailed records that delivery failed
func (h *TriggerHistory) MarkFailed(errText string) error {
	if h.Status != TriggerStatusScheduled {
		return shared.NewDomainError("INVALID_STATE", "Only scheduled triggers can be marked failed")
	}
	now := time.Now()
	h.Status = TriggerStatusFailed
	h.FiredAt = &now
	h.Error = errText
	h.UpdatedAt = now
	return nil
}

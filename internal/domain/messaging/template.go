package messaging

import (
	"encoding/json"
	"time"

	"github.com/dropship/backend/internal/domain/shared"
)

// ChannelType identifies a delivery channel
type ChannelType string

const (
	ChannelEmail    ChannelType = "EMAIL"
	ChannelSMS      ChannelType = "SMS"
	ChannelWhatsApp ChannelType = "WHATSAPP"
)

// IsValid checks if the channel type is known
func (c ChannelType) IsValid() bool {
	switch c {
	case ChannelEmail, ChannelSMS, ChannelWhatsApp:
		return true
	}
	return false
}

// Template binds a domain event type to a renderable message on one channel.
// SendDelay of zero means the message goes out as soon as the event fires.
type Template struct {
	shared.BaseAggregateRoot
	Name      string
	EventType string
	Channel   ChannelType
	Subject   string
	Body      string
	SendDelay time.Duration
	Active    bool
	// Conditions is a JSON rule set reserved for future filtering.
	// MatchesConditions currently always matches; the column exists so
	// rules can be added without a migration.
	Conditions json.RawMessage
}

// NewTemplate creates a new active message template
func NewTemplate(name, eventType string, channel ChannelType, subject, body string, sendDelay time.Duration) (*Template, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_TEMPLATE", "Template name cannot be empty")
	}
	if eventType == "" {
		return nil, shared.NewDomainError("INVALID_TEMPLATE", "Template event type cannot be empty")
	}
	if !channel.IsValid() {
		return nil, shared.NewDomainError("INVALID_TEMPLATE", "Unknown template channel")
	}
	if body == "" {
		return nil, shared.NewDomainError("INVALID_TEMPLATE", "Template body cannot be empty")
	}
	if sendDelay < 0 {
		return nil, shared.NewDomainError("INVALID_TEMPLATE", "Send delay cannot be negative")
	}

	return &Template{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		EventType:         eventType,
		Channel:           channel,
		Subject:           subject,
		Body:              body,
		SendDelay:         sendDelay,
		Active:            true,
	}, nil
}

// Deactivate stops the template from firing on new events
func (t *Template) Deactivate() {
	if !t.Active {
		return
	}
	t.Active = false
	t.UpdatedAt = time.Now()
}

// Activate re-enables the template
func (t *Template) Activate() {
	if t.Active {
		return
	}
	t.Active = true
	t.UpdatedAt = time.Now()
}

// MatchesConditions evaluates the template's condition rules against event
// variables. No rule grammar is defined yet, so every event matches.
func (t *Template) MatchesConditions(vars map[string]string) bool {
	return true
}

// ScheduledFor returns when a message for an event occurring at occurredAt
// should be delivered
func (t *Template) ScheduledFor(occurredAt time.Time) time.Time {
	return occurredAt.Add(t.SendDelay)
}

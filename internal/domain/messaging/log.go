package messaging

import (
	"time"

	"github.com/google/uuid"

	"github.com/dropship/backend/internal/domain/shared"
)

// LogStatus is the delivery state of one rendered message
type LogStatus string

const (
	LogStatusPending LogStatus = "PENDING"
	LogStatusSent    LogStatus = "SENT"
	LogStatusFailed  LogStatus = "FAILED"
)

// Log records one rendered message headed to one recipient on one channel
type Log struct {
	shared.BaseAggregateRoot
	TemplateID uuid.UUID
	Channel    ChannelType
	Recipient  string
	Subject    string
	Body       string
	Status     LogStatus
	Error      string
	SentAt     *time.Time
}

// NewLog creates a pending message log entry
func NewLog(templateID uuid.UUID, channel ChannelType, recipient, subject, body string) (*Log, error) {
	if recipient == "" {
		return nil, shared.NewDomainError("INVALID_MESSAGE", "Message recipient cannot be empty")
	}
	if !channel.IsValid() {
		return nil, shared.NewDomainError("INVALID_MESSAGE", "Unknown message channel")
	}

	return &Log{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		TemplateID:        templateID,
		Channel:           channel,
		Recipient:         recipient,
		Subject:           subject,
		Body:              body,
		Status:            LogStatusPending,
	}, nil
}

// MarkSent records successful delivery
func (l *Log) MarkSent() error {
	if l.Status == LogStatusSent {
		return nil
	}
	if l.Status != LogStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending messages can be marked sent")
	}
	now := time.Now()
	l.Status = LogStatusSent
	l.SentAt = &now
	l.UpdatedAt = now
	return nil
}

// MarkFailed records a delivery failure with the channel's error text
func (l *Log) MarkFailed(errText string) error {
	if l.Status != LogStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending messages can be marked failed")
	}
	l.Status = LogStatusFailed
	l.Error = errText
	l.UpdatedAt = time.Now()
	return nil
}

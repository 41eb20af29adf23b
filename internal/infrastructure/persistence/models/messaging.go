package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/dropship/backend/internal/domain/messaging"
)

// TemplateModel is the persistence model for message templates.
type TemplateModel struct {
	AggregateModel
	Name             string                `gorm:"type:varchar(100);not null;uniqueIndex"`
	EventType        string                `gorm:"type:varchar(100);not null;index:idx_templates_event_active,priority:1"`
	Channel          messaging.ChannelType `gorm:"type:varchar(20);not null"`
	Subject          string                `gorm:"type:varchar(200)"`
	Body             string                `gorm:"type:text;not null"`
	SendDelaySeconds int64                 `gorm:"not null;default:0"`
	Active           bool                  `gorm:"not null;default:true;index:idx_templates_event_active,priority:2"`
	Conditions       json.RawMessage       `gorm:"type:jsonb"`
}

// TableName returns the table name for GORM
func (TemplateModel) TableName() string {
	return "message_templates"
}

// ToDomain converts the persistence model to a domain Template.
func (m *TemplateModel) ToDomain() *messaging.Template {
	return &messaging.Template{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		EventType:         m.EventType,
		Channel:           m.Channel,
		Subject:           m.Subject,
		Body:              m.Body,
		SendDelay:         time.Duration(m.SendDelaySeconds) * time.Second,
		Active:            m.Active,
		Conditions:        m.Conditions,
	}
}

// FromDomain populates the persistence model from a domain Template.
func (m *TemplateModel) FromDomain(t *messaging.Template) {
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	m.Name = t.Name
	m.EventType = t.EventType
	m.Channel = t.Channel
	m.Subject = t.Subject
	m.Body = t.Body
	m.SendDelaySeconds = int64(t.SendDelay / time.Second)
	m.Active = t.Active
	m.Conditions = t.Conditions
}

// TemplateModelFromDomain creates a new persistence model from a domain Template.
func TemplateModelFromDomain(t *messaging.Template) *TemplateModel {
	m := &TemplateModel{}
	m.FromDomain(t)
	return m
}

// MessageLogModel is the persistence model for individual message sends.
type MessageLogModel struct {
	AggregateModel
	TemplateID uuid.UUID             `gorm:"type:uuid;not null;index"`
	Channel    messaging.ChannelType `gorm:"type:varchar(20);not null"`
	Recipient  string                `gorm:"type:varchar(255);not null;index"`
	Subject    string                `gorm:"type:varchar(200)"`
	Body       string                `gorm:"type:text;not null"`
	Status     messaging.LogStatus   `gorm:"type:varchar(20);not null;default:'PENDING'"`
	Error      string                `gorm:"type:text"`
	SentAt     *time.Time
}

// TableName returns the table name for GORM
func (MessageLogModel) TableName() string {
	return "message_logs"
}

// ToDomain converts the persistence model to a domain Log.
func (m *MessageLogModel) ToDomain() *messaging.Log {
	return &messaging.Log{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		TemplateID:        m.TemplateID,
		Channel:           m.Channel,
		Recipient:         m.Recipient,
		Subject:           m.Subject,
		Body:              m.Body,
		Status:            m.Status,
		Error:             m.Error,
		SentAt:            m.SentAt,
	}
}

// FromDomain populates the persistence model from a domain Log.
func (m *MessageLogModel) FromDomain(l *messaging.Log) {
	m.FromDomainAggregateRoot(l.BaseAggregateRoot)
	m.TemplateID = l.TemplateID
	m.Channel = l.Channel
	m.Recipient = l.Recipient
	m.Subject = l.Subject
	m.Body = l.Body
	m.Status = l.Status
	m.Error = l.Error
	m.SentAt = l.SentAt
}

// MessageLogModelFromDomain creates a new persistence model from a domain Log.
func MessageLogModelFromDomain(l *messaging.Log) *MessageLogModel {
	m := &MessageLogModel{}
	m.FromDomain(l)
	return m
}

// TriggerHistoryModel is the persistence model for scheduled trigger firings.
// Render variables are captured at trigger time as jsonb so delayed sends do
// not depend on re-reading the source aggregate.
type TriggerHistoryModel struct {
	AggregateModel
	TemplateID   uuid.UUID               `gorm:"type:uuid;not null;index"`
	EventType    string                  `gorm:"type:varchar(100);not null;index"`
	AggregateID  uuid.UUID               `gorm:"type:uuid;not null;index"`
	Recipient    string                  `gorm:"type:varchar(255);not null"`
	Status       messaging.TriggerStatus `gorm:"type:varchar(20);not null;default:'SCHEDULED';index:idx_triggers_due,priority:1"`
	ScheduledFor time.Time               `gorm:"not null;index:idx_triggers_due,priority:2"`
	FiredAt      *time.Time
	Error        string          `gorm:"type:text"`
	Vars         json.RawMessage `gorm:"type:jsonb"`
}

// TableName returns the table name for GORM
func (TriggerHistoryModel) TableName() string {
	return "trigger_histories"
}

// ToDomain converts the persistence model to a domain TriggerHistory.
func (m *TriggerHistoryModel) ToDomain() (*messaging.TriggerHistory, error) {
	h := &messaging.TriggerHistory{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		TemplateID:        m.TemplateID,
		EventType:         m.EventType,
		AggregateID:       m.AggregateID,
		Recipient:         m.Recipient,
		Status:            m.Status,
		ScheduledFor:      m.ScheduledFor,
		FiredAt:           m.FiredAt,
		Error:             m.Error,
	}
	if len(m.Vars) > 0 {
		if err := json.Unmarshal(m.Vars, &h.Vars); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// FromDomain populates the persistence model from a domain TriggerHistory.
func (m *TriggerHistoryModel) FromDomain(h *messaging.TriggerHistory) error {
	m.FromDomainAggregateRoot(h.BaseAggregateRoot)
	m.TemplateID = h.TemplateID
	m.EventType = h.EventType
	m.AggregateID = h.AggregateID
	m.Recipient = h.Recipient
	m.Status = h.Status
	m.ScheduledFor = h.ScheduledFor
	m.FiredAt = h.FiredAt
	m.Error = h.Error
	if len(h.Vars) > 0 {
		vars, err := json.Marshal(h.Vars)
		if err != nil {
			return err
		}
		m.Vars = vars
	}
	return nil
}

// TriggerHistoryModelFromDomain creates a new persistence model from a domain TriggerHistory.
func TriggerHistoryModelFromDomain(h *messaging.TriggerHistory) (*TriggerHistoryModel, error) {
	m := &TriggerHistoryModel{}
	if err := m.FromDomain(h); err != nil {
		return nil, err
	}
	return m, nil
}

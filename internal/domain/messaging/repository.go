package messaging

import (
	"context"
	"time"
)

// TemplateRepository defines persistence for message templates
type TemplateRepository interface {
	Save(ctx context.Context, template *Template) error
	FindByID(ctx context.Context, id string) (*Template, error)
	FindActiveByEventType(ctx context.Context, eventType string) ([]*Template, error)
	FindAll(ctx context.Context) ([]*Template, error)
	Update(ctx context.Context, template *Template) error
	Delete(ctx context.Context, id string) error
}

// LogRepository defines persistence for message logs
type LogRepository interface {
	Save(ctx context.Context, log *Log) error
	FindByID(ctx context.Context, id string) (*Log, error)
	FindByRecipient(ctx context.Context, recipient string, limit, offset int) ([]*Log, error)
	Update(ctx context.Context, log *Log) error
}

// TriggerHistoryRepository defines persistence for trigger firings
type TriggerHistoryRepository interface {
	Save(ctx context.Context, history *TriggerHistory) error
	FindByID(ctx context.Context, id string) (*TriggerHistory, error)
	FindDue(ctx context.Context, now time.Time, limit int) ([]*TriggerHistory, error)
	Update(ctx context.Context, history *TriggerHistory) error
}

package event

import (
	"context"

	"gorm.io/gorm"

	"github.com/dropship/backend/internal/domain/shared"
)

// OutboxPublisher writes domain events to the outbox within a transaction,
// so events are persisted atomically with the aggregate changes.
type OutboxPublisher struct {
	serializer *EventSerializer
}

// NewOutboxPublisher creates a new outbox publisher
func NewOutboxPublisher(serializer *EventSerializer) *OutboxPublisher {
	return &OutboxPublisher{
		serializer: serializer,
	}
}

// PublishWithTx publishes events to the outbox within the provided transaction
func (p *OutboxPublisher) PublishWithTx(ctx context.Context, tx *gorm.DB, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	entries := make([]*shared.OutboxEntry, 0, len(events))
	for _, event := range events {
		payload, err := p.serializer.Serialize(event)
		if err != nil {
			return err
		}
		entries = append(entries, shared.NewOutboxEntry(event, payload))
	}

	return NewGormOutboxRepository(tx).Save(ctx, entries...)
}

// DurableEventPublisher persists events to the outbox in their own
// transaction. The outbox processor picks them up and delivers them to the
// event bus, so a crash between commit and delivery loses nothing.
type DurableEventPublisher struct {
	db        *gorm.DB
	publisher *OutboxPublisher
}

// NewDurableEventPublisher creates an EventPublisher backed by the outbox
func NewDurableEventPublisher(db *gorm.DB, publisher *OutboxPublisher) *DurableEventPublisher {
	return &DurableEventPublisher{
		db:        db,
		publisher: publisher,
	}
}

// Publish writes the events to the outbox table
func (p *DurableEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return p.publisher.PublishWithTx(ctx, tx, events...)
	})
}

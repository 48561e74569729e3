package event

import (
	"context"

	"github.com/marketplace/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// OutboxPublisher writes domain events to the outbox within a transaction
type OutboxPublisher struct {
	serializer *EventSerializer
}

// NewOutboxPublisher creates a new outbox publisher
func NewOutboxPublisher(serializer *EventSerializer) *OutboxPublisher {
	return &OutboxPublisher{
		serializer: serializer,
	}
}

// PublishWithTx writes events to the outbox through tx, so they commit or
// roll back together with the aggregate changes
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

// ForTx returns an OutboxEventSaver bound to tx
func (p *OutboxPublisher) ForTx(tx *gorm.DB) shared.OutboxEventSaver {
	return &txOutboxSaver{publisher: p, tx: tx}
}

type txOutboxSaver struct {
	publisher *OutboxPublisher
	tx        *gorm.DB
}

// SaveEvents implements shared.OutboxEventSaver
func (s *txOutboxSaver) SaveEvents(ctx context.Context, events ...shared.DomainEvent) error {
	return s.publisher.PublishWithTx(ctx, s.tx, events...)
}

package shared

import "context"

// EventPublisher publishes domain events
type EventPublisher interface {
	// Publish publishes one or more domain events
	Publish(ctx context.Context, events ...DomainEvent) error
}

// OutboxEventSaver saves domain events to the outbox table within a transaction.
// Implementations are scoped to the transaction they were built from, so the
// events commit or roll back together with the aggregate changes.
type OutboxEventSaver interface {
	SaveEvents(ctx context.Context, events ...DomainEvent) error
}

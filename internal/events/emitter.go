package events

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/sajikita/foodcourt-backend/pkg/logger"
	"github.com/sajikita/foodcourt-backend/pkg/outbox"
)

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Emitter queues domain events without letting a failed insert take the
// surrounding transaction down with it. Event delivery is best-effort; the
// business write always wins.
type Emitter struct {
	outbox outboxPublisher
	logg   *logger.Logger
}

// NewEmitter builds the fire-and-forget event emitter.
func NewEmitter(outbox outboxPublisher, logg *logger.Logger) (*Emitter, error) {
	if outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Emitter{outbox: outbox, logg: logg}, nil
}

// Emit queues the event on the order of the caller's transaction. Errors are
// logged and swallowed.
func (e *Emitter) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) {
	if err := e.outbox.Emit(ctx, tx, event); err != nil {
		logCtx := e.logg.WithFields(ctx, map[string]any{
			"event_type":   event.EventType,
			"aggregate_id": event.AggregateID.String(),
		})
		e.logg.Error(logCtx, "dropping domain event", err)
	}
}

// EmitOnce queues the event unless one already exists for the same
// event/aggregate pair. Errors are logged and swallowed.
func (e *Emitter) EmitOnce(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) {
	if err := e.outbox.EmitIfNotExists(ctx, tx, event); err != nil {
		logCtx := e.logg.WithFields(ctx, map[string]any{
			"event_type":   event.EventType,
			"aggregate_id": event.AggregateID.String(),
		})
		e.logg.Error(logCtx, "dropping domain event", err)
	}
}

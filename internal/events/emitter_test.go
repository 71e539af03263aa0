package events

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/sajikita/foodcourt-backend/pkg/enums"
	"github.com/sajikita/foodcourt-backend/pkg/logger"
	"github.com/sajikita/foodcourt-backend/pkg/outbox"
)

type stubPublisher struct {
	emitted []outbox.DomainEvent
	err     error
}

func (s *stubPublisher) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	if s.err != nil {
		return s.err
	}
	s.emitted = append(s.emitted, event)
	return nil
}

func (s *stubPublisher) EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	return s.Emit(ctx, tx, event)
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled})
}

func TestEmitQueuesEvent(t *testing.T) {
	pub := &stubPublisher{}
	emitter, err := NewEmitter(pub, testLogger())
	if err != nil {
		t.Fatalf("constructor failed: %v", err)
	}

	emitter.Emit(context.Background(), nil, outbox.DomainEvent{
		EventType:     enums.EventOrderCreated,
		AggregateType: enums.AggregateOrder,
		AggregateID:   uuid.New(),
	})

	if len(pub.emitted) != 1 {
		t.Fatalf("expected 1 emitted event, got %d", len(pub.emitted))
	}
}

func TestEmitSwallowsPublisherError(t *testing.T) {
	pub := &stubPublisher{err: errors.New("outbox down")}
	emitter, err := NewEmitter(pub, testLogger())
	if err != nil {
		t.Fatalf("constructor failed: %v", err)
	}

	// Must not panic or propagate the failure.
	emitter.Emit(context.Background(), nil, outbox.DomainEvent{
		EventType:     enums.EventPaymentProcessed,
		AggregateType: enums.AggregatePayment,
		AggregateID:   uuid.New(),
	})
	emitter.EmitOnce(context.Background(), nil, outbox.DomainEvent{
		EventType:     enums.EventSettlementCreated,
		AggregateType: enums.AggregateSettlement,
		AggregateID:   uuid.New(),
	})
}

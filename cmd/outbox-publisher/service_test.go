package main

import (
	"context"
	"errors"
	"testing"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/sajikita/foodcourt-backend/pkg/config"
	"github.com/sajikita/foodcourt-backend/pkg/db/models"
	"github.com/sajikita/foodcourt-backend/pkg/enums"
	"github.com/sajikita/foodcourt-backend/pkg/logger"
)

type stubOutboxRepo struct {
	events    []models.OutboxEvent
	published []uuid.UUID
	failed    []uuid.UUID
	fetchErr  error
}

func (r *stubOutboxRepo) FetchUnpublished(limit, maxAttempts int) ([]models.OutboxEvent, error) {
	if r.fetchErr != nil {
		return nil, r.fetchErr
	}
	var out []models.OutboxEvent
	for _, event := range r.events {
		if event.PublishedAt == nil && event.AttemptCount < maxAttempts {
			out = append(out, event)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *stubOutboxRepo) MarkPublished(id uuid.UUID) error {
	r.published = append(r.published, id)
	for i := range r.events {
		if r.events[i].ID == id {
			now := time.Now()
			r.events[i].PublishedAt = &now
		}
	}
	return nil
}

func (r *stubOutboxRepo) MarkFailed(id uuid.UUID, err error) error {
	r.failed = append(r.failed, id)
	for i := range r.events {
		if r.events[i].ID == id {
			r.events[i].AttemptCount++
		}
	}
	return nil
}

type stubPublisher struct {
	errs     []error
	messages []*gcppubsub.Message
}

type stubResult struct {
	err error
}

func (r stubResult) Get(context.Context) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	return "server-id", nil
}

func (p *stubPublisher) Publish(_ context.Context, msg *gcppubsub.Message) publishResult {
	p.messages = append(p.messages, msg)
	if len(p.errs) > 0 {
		err := p.errs[0]
		p.errs = p.errs[1:]
		return stubResult{err: err}
	}
	return stubResult{}
}

func testOutboxService(t *testing.T, repo *stubOutboxRepo, pub *stubPublisher) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Config: &config.Config{Outbox: config.OutboxConfig{BatchSize: 10, PollIntervalMS: 10, MaxAttempts: 3}},
		Logger: logger.New(logger.Options{ServiceName: "outbox-test"}),
		Repository: repo,
		Publisher:  pub,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func newOutboxEvent(attempts int) models.OutboxEvent {
	return models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventPaymentProcessed,
		AggregateType: enums.AggregatePayment,
		AggregateID:   uuid.New(),
		Payload:       []byte(`{"version":1}`),
		CreatedAt:     time.Now(),
		AttemptCount:  attempts,
	}
}

func TestProcessBatchPublishesAndMarks(t *testing.T) {
	repo := &stubOutboxRepo{events: []models.OutboxEvent{newOutboxEvent(0), newOutboxEvent(0)}}
	pub := &stubPublisher{}
	svc := testOutboxService(t, repo, pub)

	processed, err := svc.processBatch(context.Background())
	if err != nil {
		t.Fatalf("processBatch: %v", err)
	}
	if !processed {
		t.Fatal("expected batch to process events")
	}
	if len(repo.published) != 2 {
		t.Fatalf("published %d events, want 2", len(repo.published))
	}
	if len(pub.messages) != 2 {
		t.Fatalf("sent %d messages, want 2", len(pub.messages))
	}
	if pub.messages[0].Attributes["event_type"] != "payment_processed" {
		t.Fatalf("unexpected attributes: %+v", pub.messages[0].Attributes)
	}
}

func TestProcessBatchMarksFailureAndContinues(t *testing.T) {
	repo := &stubOutboxRepo{events: []models.OutboxEvent{newOutboxEvent(0), newOutboxEvent(0)}}
	pub := &stubPublisher{errs: []error{errors.New("topic unavailable")}}
	svc := testOutboxService(t, repo, pub)

	processed, err := svc.processBatch(context.Background())
	if err != nil {
		t.Fatalf("processBatch: %v", err)
	}
	if !processed {
		t.Fatal("expected batch to process events")
	}
	if len(repo.failed) != 1 || len(repo.published) != 1 {
		t.Fatalf("failed=%d published=%d, want 1 and 1", len(repo.failed), len(repo.published))
	}
}

func TestProcessBatchSkipsExhaustedEvents(t *testing.T) {
	repo := &stubOutboxRepo{events: []models.OutboxEvent{newOutboxEvent(3)}}
	pub := &stubPublisher{}
	svc := testOutboxService(t, repo, pub)

	processed, err := svc.processBatch(context.Background())
	if err != nil {
		t.Fatalf("processBatch: %v", err)
	}
	if processed {
		t.Fatal("expected no events with attempts exhausted")
	}
	if len(pub.messages) != 0 {
		t.Fatalf("expected no publishes, got %d", len(pub.messages))
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	repo := &stubOutboxRepo{}
	pub := &stubPublisher{}
	svc := testOutboxService(t, repo, pub)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- svc.Run(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

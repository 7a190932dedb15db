package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/coupleshub/backend/pkg/config"
	"github.com/coupleshub/backend/pkg/db/models"
	"github.com/coupleshub/backend/pkg/enums"
	"github.com/coupleshub/backend/pkg/logger"
)

type stubRepo struct {
	events    []models.OutboxEvent
	published []uuid.UUID
	attempts  map[uuid.UUID]string
}

func (r *stubRepo) FetchUnpublished(ctx context.Context, limit, maxAttempts int) ([]models.OutboxEvent, error) {
	if len(r.events) > limit {
		return r.events[:limit], nil
	}
	return r.events, nil
}

func (r *stubRepo) MarkPublished(ctx context.Context, id uuid.UUID, at time.Time) error {
	r.published = append(r.published, id)
	return nil
}

func (r *stubRepo) RecordAttempt(ctx context.Context, id uuid.UUID, publishErr error) error {
	if r.attempts == nil {
		r.attempts = map[uuid.UUID]string{}
	}
	r.attempts[id] = publishErr.Error()
	return nil
}

type stubPinger struct{}

func (stubPinger) Ping(ctx context.Context) error { return nil }

type stubPubSub struct{}

func (stubPubSub) Ping(ctx context.Context) error        { return nil }
func (stubPubSub) DomainPublisher() *gcppubsub.Publisher { return nil }

type stubPublisher struct {
	err      error
	messages []*gcppubsub.Message
}

func (p *stubPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	p.messages = append(p.messages, msg)
	return stubResult{err: p.err}
}

type stubResult struct {
	err error
}

func (r stubResult) Get(ctx context.Context) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	return "msg-1", nil
}

func testService(t *testing.T, repo *stubRepo, pub *stubPublisher) *Service {
	t.Helper()
	cfg := &config.Config{
		Outbox: config.OutboxConfig{
			PollInterval: time.Millisecond,
			BatchSize:    10,
			MaxAttempts:  3,
		},
	}
	logg := logger.New(logger.Options{ServiceName: "outbox-test", Output: io.Discard})
	svc, err := NewService(ServiceParams{
		Config:     cfg,
		Logger:     logg,
		DB:         stubPinger{},
		PubSub:     stubPubSub{},
		Repository: repo,
		Publisher:  pub,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func outboxEvent(eventType enums.OutboxEventType) models.OutboxEvent {
	return models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     eventType,
		AggregateType: enums.AggregateTodo,
		AggregateID:   uuid.New(),
		Payload:       json.RawMessage(`{"version":1}`),
		CreatedAt:     time.Now().UTC(),
	}
}

func TestDrainBatchPublishesAndMarks(t *testing.T) {
	first := outboxEvent(enums.EventResourceChanged)
	second := outboxEvent(enums.EventCoupleActivated)
	repo := &stubRepo{events: []models.OutboxEvent{first, second}}
	pub := &stubPublisher{}
	svc := testService(t, repo, pub)

	processed, err := svc.drainBatch(context.Background())
	if err != nil {
		t.Fatalf("drain batch: %v", err)
	}
	if !processed {
		t.Fatal("expected batch to be processed")
	}
	if len(repo.published) != 2 {
		t.Fatalf("expected 2 published marks got %d", len(repo.published))
	}
	if len(pub.messages) != 2 {
		t.Fatalf("expected 2 publishes got %d", len(pub.messages))
	}

	msg := pub.messages[0]
	if got := msg.Attributes["event_type"]; got != string(first.EventType) {
		t.Fatalf("expected event_type attribute %q got %q", first.EventType, got)
	}
	if got := msg.Attributes["aggregate_id"]; got != first.AggregateID.String() {
		t.Fatalf("expected aggregate_id attribute %q got %q", first.AggregateID, got)
	}
	if string(msg.Data) != `{"version":1}` {
		t.Fatalf("unexpected payload %s", msg.Data)
	}
}

func TestDrainBatchRecordsFailedAttempt(t *testing.T) {
	event := outboxEvent(enums.EventResourceChanged)
	repo := &stubRepo{events: []models.OutboxEvent{event}}
	pub := &stubPublisher{err: errors.New("topic unavailable")}
	svc := testService(t, repo, pub)

	processed, err := svc.drainBatch(context.Background())
	if err != nil {
		t.Fatalf("drain batch: %v", err)
	}
	if !processed {
		t.Fatal("expected batch to be processed")
	}
	if len(repo.published) != 0 {
		t.Fatalf("expected no published marks got %d", len(repo.published))
	}
	if repo.attempts[event.ID] != "topic unavailable" {
		t.Fatalf("expected recorded attempt, got %v", repo.attempts)
	}
}

func TestDrainBatchEmptyPoll(t *testing.T) {
	repo := &stubRepo{}
	svc := testService(t, repo, &stubPublisher{})

	processed, err := svc.drainBatch(context.Background())
	if err != nil {
		t.Fatalf("drain batch: %v", err)
	}
	if processed {
		t.Fatal("expected empty poll to report no work")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	repo := &stubRepo{}
	svc := testService(t, repo, &stubPublisher{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := svc.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled got %v", err)
	}
}

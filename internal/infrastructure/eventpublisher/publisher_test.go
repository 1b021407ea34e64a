package eventpublisher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/escrowpay/ledger/internal/domain"
	"github.com/escrowpay/ledger/internal/usecase/mocks"
)

type funcPublisher func(ctx context.Context, event *domain.OutboxEvent) error

func (f funcPublisher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	return f(ctx, event)
}

func seedEvent(t *testing.T, repo *mocks.MockOutboxRepository, id string) {
	t.Helper()

	err := repo.Create(context.Background(), nil, &domain.OutboxEvent{
		ID:            id,
		AggregateID:   "batch-1",
		AggregateType: domain.AggregateTypeBatch,
		EventType:     domain.EventTypeBatchPosted,
		Payload:       map[string]any{"batch_id": "batch-1"},
		CreatedAt:     time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
}

func TestProcessEventsPublishesAndMarks(t *testing.T) {
	repo := mocks.NewMockOutboxRepository()
	seedEvent(t, repo, "evt-1")
	seedEvent(t, repo, "evt-2")

	var published []string
	ep := NewEventPublisher(Config{
		OutboxRepo: repo,
		Publisher: funcPublisher(func(ctx context.Context, event *domain.OutboxEvent) error {
			published = append(published, event.ID)
			return nil
		}),
		Logger: zerolog.Nop(),
	})

	if err := ep.processEvents(context.Background()); err != nil {
		t.Fatalf("processEvents failed: %v", err)
	}

	if len(published) != 2 {
		t.Fatalf("expected 2 published events, got %d", len(published))
	}

	remaining, err := repo.GetUnpublished(context.Background(), 10)
	if err != nil {
		t.Fatalf("GetUnpublished failed: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("expected all events marked published, %d remain", len(remaining))
	}
}

func TestProcessEventsContinuesPastFailure(t *testing.T) {
	repo := mocks.NewMockOutboxRepository()
	seedEvent(t, repo, "evt-bad")
	seedEvent(t, repo, "evt-good")

	ep := NewEventPublisher(Config{
		OutboxRepo: repo,
		Publisher: funcPublisher(func(ctx context.Context, event *domain.OutboxEvent) error {
			if event.ID == "evt-bad" {
				return errors.New("broker unavailable")
			}
			return nil
		}),
		Logger: zerolog.Nop(),
	})

	if err := ep.processEvents(context.Background()); err != nil {
		t.Fatalf("processEvents failed: %v", err)
	}

	remaining, err := repo.GetUnpublished(context.Background(), 10)
	if err != nil {
		t.Fatalf("GetUnpublished failed: %v", err)
	}
	if len(remaining) != 1 || remaining[0].ID != "evt-bad" {
		t.Fatalf("expected only the failed event to remain, got %v", remaining)
	}
}

func TestStartStopsOnContextCancel(t *testing.T) {
	repo := mocks.NewMockOutboxRepository()

	ep := NewEventPublisher(Config{
		OutboxRepo: repo,
		Publisher: funcPublisher(func(ctx context.Context, event *domain.OutboxEvent) error {
			return nil
		}),
		Logger:   zerolog.Nop(),
		Interval: 10 * time.Millisecond,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := ep.Start(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

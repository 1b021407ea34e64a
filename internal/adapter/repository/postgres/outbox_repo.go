package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/escrowpay/ledger/internal/domain"
	"github.com/escrowpay/ledger/internal/usecase"
)

// OutboxRepository implements usecase.OutboxRepository.
type OutboxRepository struct {
	pool *pgxpool.Pool
}

// NewOutboxRepository creates a new OutboxRepository.
func NewOutboxRepository(pool *pgxpool.Pool) *OutboxRepository {
	return &OutboxRepository{pool: pool}
}

// Create writes an outbox event within a posting transaction, making the
// event exactly as durable as the batch it describes.
func (r *OutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	pgxTx := tx.(*Tx).PgxTx()

	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO outbox_events (id, aggregate_id, aggregate_type, event_type, payload, published, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = pgxTx.Exec(ctx, query,
		event.ID,
		event.AggregateID,
		event.AggregateType,
		event.EventType,
		payload,
		event.Published,
		event.CreatedAt,
	)

	return err
}

// CreateStandalone writes an event outside a transaction. Used for
// message lifecycle events that carry no ledger write of their own.
func (r *OutboxRepository) CreateStandalone(ctx context.Context, event *domain.OutboxEvent) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO outbox_events (id, aggregate_id, aggregate_type, event_type, payload, published, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = r.pool.Exec(ctx, query,
		event.ID,
		event.AggregateID,
		event.AggregateType,
		event.EventType,
		payload,
		event.Published,
		event.CreatedAt,
	)

	return err
}

// GetUnpublished retrieves unpublished events, oldest first.
func (r *OutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	query := `
		SELECT id, aggregate_id, aggregate_type, event_type, payload, published, published_at, created_at
		FROM outbox_events
		WHERE published = false
		ORDER BY created_at
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*domain.OutboxEvent
	for rows.Next() {
		var event domain.OutboxEvent
		var payload []byte
		var publishedAt *time.Time

		err := rows.Scan(
			&event.ID,
			&event.AggregateID,
			&event.AggregateType,
			&event.EventType,
			&payload,
			&event.Published,
			&publishedAt,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		if payload != nil {
			_ = json.Unmarshal(payload, &event.Payload)
		}

		event.PublishedAt = publishedAt

		events = append(events, &event)
	}

	return events, rows.Err()
}

// MarkPublished marks an event as published.
func (r *OutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	query := `
		UPDATE outbox_events
		SET published = true, published_at = $2
		WHERE id = $1
	`

	_, err := r.pool.Exec(ctx, query, id, publishedAt)

	return err
}

// DeletePublished deletes published events older than the given time.
func (r *OutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	query := `
		DELETE FROM outbox_events
		WHERE published = true AND published_at < $1
	`

	_, err := r.pool.Exec(ctx, query, before)

	return err
}

package outbox

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository stores auction events in the outbox table until the worker
// ships them to the message bus.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// InsertEvent appends one event to the outbox.
func (r *Repository) InsertEvent(ctx context.Context, gameID uuid.UUID, eventType string, payload []byte) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO auction_outbox (id, game_id, event_type, payload)
		VALUES ($1, $2, $3, $4)
	`, uuid.New(), gameID, eventType, payload)
	if err != nil {
		return fmt.Errorf("failed to insert %s outbox event: %w", eventType, err)
	}
	return nil
}

// FetchUnsent selects a batch of unshipped events inside the worker's
// transaction, row-locked so concurrent workers never double-send.
func (r *Repository) FetchUnsent(ctx context.Context, tx pgx.Tx, limit int32) ([]Event, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, game_id, event_type, payload, created_at
		FROM auction_outbox
		WHERE sent_at IS NULL
		ORDER BY created_at
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unsent outbox events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.GameID, &e.EventType, &e.Payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan outbox event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// MarkSent stamps the given events as shipped inside the worker's transaction.
func (r *Repository) MarkSent(ctx context.Context, tx pgx.Tx, ids []uuid.UUID) error {
	_, err := tx.Exec(ctx, `
		UPDATE auction_outbox
		SET sent_at = now()
		WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return fmt.Errorf("failed to mark outbox events as sent: %w", err)
	}
	return nil
}

package cricketers

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mcdev12/gully/go/internal/auction"
	"github.com/mcdev12/gully/go/internal/models"
	"github.com/mcdev12/gully/go/internal/sqlutil"
)

// Repository implements cricketer data access operations
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new cricketers repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const cricketerColumns = `
	id, game_id, name, role, nationality, base_price, auction_order,
	is_picked, picked_by_participant_id, price_paid, pick_order, was_skipped,
	created_at`

// CreateCricketer adds one cricketer to a game's pool
func (r *Repository) CreateCricketer(ctx context.Context, req CreateCricketerRequest) (*models.Cricketer, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO cricketers (id, game_id, name, role, nationality, base_price, auction_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+cricketerColumns, uuid.New(), req.GameID, req.Name, req.Role, req.Nationality, req.BasePrice, req.AuctionOrder)

	c, err := scanCricketer(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create cricketer: %w", err)
	}
	return c, nil
}

// ImportPool inserts a batch of cricketers in one transaction
func (r *Repository) ImportPool(ctx context.Context, reqs []CreateCricketerRequest) error {
	return sqlutil.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		for _, req := range reqs {
			_, err := tx.Exec(ctx, `
				INSERT INTO cricketers (id, game_id, name, role, nationality, base_price, auction_order)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
			`, uuid.New(), req.GameID, req.Name, req.Role, req.Nationality, req.BasePrice, req.AuctionOrder)
			if err != nil {
				return fmt.Errorf("failed to insert cricketer %s: %w", req.Name, err)
			}
		}
		return nil
	})
}

// GetCricketer retrieves a cricketer by ID
func (r *Repository) GetCricketer(ctx context.Context, id uuid.UUID) (*models.Cricketer, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+cricketerColumns+`
		FROM cricketers
		WHERE id = $1
	`, id)

	c, err := scanCricketer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("cricketer %s: %w", id, auction.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get cricketer: %w", err)
	}
	return c, nil
}

// GetCricketersByGame retrieves a game's full pool in auction order
func (r *Repository) GetCricketersByGame(ctx context.Context, gameID uuid.UUID) ([]*models.Cricketer, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+cricketerColumns+`
		FROM cricketers
		WHERE game_id = $1
		ORDER BY auction_order
	`, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cricketers: %w", err)
	}
	defer rows.Close()

	var cricketers []*models.Cricketer
	for rows.Next() {
		c, err := scanCricketer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cricketer: %w", err)
		}
		cricketers = append(cricketers, c)
	}
	return cricketers, rows.Err()
}

// DeleteCricketer removes a cricketer from the pool
func (r *Repository) DeleteCricketer(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM cricketers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete cricketer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("cricketer %s: %w", id, auction.ErrNotFound)
	}
	return nil
}

func scanCricketer(row pgx.Row) (*models.Cricketer, error) {
	var c models.Cricketer
	err := row.Scan(
		&c.ID, &c.GameID, &c.Name, &c.Role, &c.Nationality, &c.BasePrice, &c.AuctionOrder,
		&c.IsPicked, &c.PickedByParticipantID, &c.PricePaid, &c.PickOrder, &c.WasSkipped,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

package games

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mcdev12/gully/go/internal/auction"
	"github.com/mcdev12/gully/go/internal/models"
)

// Repository implements game data access operations
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new games repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateGame creates a new game in PRE_AUCTION status
func (r *Repository) CreateGame(ctx context.Context, req CreateGameRequest) (*models.Game, error) {
	settings, err := json.Marshal(req.Settings)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal game settings: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO games (id, name, status, creator_id, settings)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, name, status, creator_id, settings, created_at, updated_at
	`, uuid.New(), req.Name, models.GameStatusPreAuction, req.CreatorID, settings)

	game, err := scanGame(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}
	return game, nil
}

// GetGame retrieves a game by ID
func (r *Repository) GetGame(ctx context.Context, id uuid.UUID) (*models.Game, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, status, creator_id, settings, created_at, updated_at
		FROM games
		WHERE id = $1
	`, id)

	game, err := scanGame(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("game %s: %w", id, auction.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	return game, nil
}

// ListGames retrieves all games, newest first
func (r *Repository) ListGames(ctx context.Context) ([]*models.Game, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, status, creator_id, settings, created_at, updated_at
		FROM games
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer rows.Close()

	var games []*models.Game
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, game)
	}
	return games, rows.Err()
}

// UpdateGame updates a game's name and settings
func (r *Repository) UpdateGame(ctx context.Context, id uuid.UUID, req UpdateGameRequest) (*models.Game, error) {
	settings, err := json.Marshal(req.Settings)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal game settings: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE games
		SET name = $2, settings = $3, updated_at = now()
		WHERE id = $1
		RETURNING id, name, status, creator_id, settings, created_at, updated_at
	`, id, req.Name, settings)

	game, err := scanGame(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("game %s: %w", id, auction.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update game: %w", err)
	}
	return game, nil
}

// UpdateGameStatus transitions a game's lifecycle status
func (r *Repository) UpdateGameStatus(ctx context.Context, id uuid.UUID, status models.GameStatus) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE games
		SET status = $2, updated_at = now()
		WHERE id = $1
	`, id, status)
	if err != nil {
		return fmt.Errorf("failed to update game status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("game %s: %w", id, auction.ErrNotFound)
	}
	return nil
}

// DeleteGame deletes a game by ID
func (r *Repository) DeleteGame(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM games WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("game %s: %w", id, auction.ErrNotFound)
	}
	return nil
}

func scanGame(row pgx.Row) (*models.Game, error) {
	var (
		game     models.Game
		settings []byte
	)
	if err := row.Scan(&game.ID, &game.Name, &game.Status, &game.CreatorID, &settings, &game.CreatedAt, &game.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(settings, &game.Settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game settings: %w", err)
	}
	return &game, nil
}

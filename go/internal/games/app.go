package games

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mcdev12/gully/go/internal/models"
)

// GamesRepository defines what the app layer needs from the repository
type GamesRepository interface {
	CreateGame(ctx context.Context, req CreateGameRequest) (*models.Game, error)
	GetGame(ctx context.Context, id uuid.UUID) (*models.Game, error)
	ListGames(ctx context.Context) ([]*models.Game, error)
	UpdateGame(ctx context.Context, id uuid.UUID, req UpdateGameRequest) (*models.Game, error)
	UpdateGameStatus(ctx context.Context, id uuid.UUID, status models.GameStatus) error
	DeleteGame(ctx context.Context, id uuid.UUID) error
}

// App handles games business logic
type App struct {
	repo GamesRepository
}

// NewApp creates a new games App
func NewApp(repo GamesRepository) *App {
	return &App{
		repo: repo,
	}
}

// CreateGame creates a new game with validation, filling defaulted settings
func (a *App) CreateGame(ctx context.Context, req CreateGameRequest) (*models.Game, error) {
	if err := a.validateCreateGameRequest(&req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	game, err := a.repo.CreateGame(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	log.Printf("Created game: %s (%s)", game.Name, game.ID)
	return game, nil
}

// GetGame retrieves a game by ID
func (a *App) GetGame(ctx context.Context, id uuid.UUID) (*models.Game, error) {
	game, err := a.repo.GetGame(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	return game, nil
}

// ListGames retrieves all games
func (a *App) ListGames(ctx context.Context) ([]*models.Game, error) {
	games, err := a.repo.ListGames(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	return games, nil
}

// UpdateGame updates a game's name and settings. Settings are frozen once
// the auction leaves PRE_AUCTION.
func (a *App) UpdateGame(ctx context.Context, id uuid.UUID, req UpdateGameRequest) (*models.Game, error) {
	existing, err := a.repo.GetGame(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("game not found: %w", err)
	}
	if existing.Status != models.GameStatusPreAuction {
		return nil, fmt.Errorf("game %s is %s, settings can only change before the auction", id, existing.Status)
	}
	if req.Name == "" {
		return nil, fmt.Errorf("validation failed: name is required")
	}

	game, err := a.repo.UpdateGame(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	log.Printf("Updated game: %s (%s)", game.Name, game.ID)
	return game, nil
}

// DeleteGame deletes a game by ID
func (a *App) DeleteGame(ctx context.Context, id uuid.UUID) error {
	game, err := a.repo.GetGame(ctx, id)
	if err != nil {
		return fmt.Errorf("game not found: %w", err)
	}

	if err := a.repo.DeleteGame(ctx, id); err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}

	log.Printf("Deleted game: %s (%s)", game.Name, game.ID)
	return nil
}

// validateCreateGameRequest validates create game request and applies defaults
func (a *App) validateCreateGameRequest(req *CreateGameRequest) error {
	if req.Name == "" {
		return fmt.Errorf("name is required")
	}
	if req.CreatorID == uuid.Nil {
		return fmt.Errorf("creator_id is required")
	}
	if req.Settings.BudgetPerParticipant.IsZero() {
		req.Settings.BudgetPerParticipant = decimal.NewFromInt(100)
	}
	if req.Settings.BudgetPerParticipant.IsNegative() {
		return fmt.Errorf("budget_per_participant must be positive")
	}
	if req.Settings.RosterCap == 0 {
		req.Settings.RosterCap = 11
	}
	if req.Settings.RosterCap < 1 {
		return fmt.Errorf("roster_cap must be at least 1")
	}
	if req.Settings.TimerSeconds == 0 {
		req.Settings.TimerSeconds = 30
	}
	if req.Settings.TimerSeconds < 5 {
		return fmt.Errorf("timer_seconds must be at least 5")
	}
	return nil
}

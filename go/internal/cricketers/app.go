package cricketers

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mcdev12/gully/go/internal/models"
)

// CricketersRepository defines what the app layer needs from the repository
type CricketersRepository interface {
	CreateCricketer(ctx context.Context, req CreateCricketerRequest) (*models.Cricketer, error)
	ImportPool(ctx context.Context, reqs []CreateCricketerRequest) error
	GetCricketer(ctx context.Context, id uuid.UUID) (*models.Cricketer, error)
	GetCricketersByGame(ctx context.Context, gameID uuid.UUID) ([]*models.Cricketer, error)
	DeleteCricketer(ctx context.Context, id uuid.UUID) error
}

// App handles cricketers business logic
type App struct {
	repo CricketersRepository
}

// NewApp creates a new cricketers App
func NewApp(repo CricketersRepository) *App {
	return &App{
		repo: repo,
	}
}

// CreateCricketer adds one cricketer to a game's pool with validation
func (a *App) CreateCricketer(ctx context.Context, req CreateCricketerRequest) (*models.Cricketer, error) {
	if err := a.validateCricketer(&req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if req.AuctionOrder == 0 {
		existing, err := a.repo.GetCricketersByGame(ctx, req.GameID)
		if err != nil {
			return nil, fmt.Errorf("failed to determine auction order: %w", err)
		}
		req.AuctionOrder = len(existing) + 1
	}

	cricketer, err := a.repo.CreateCricketer(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create cricketer: %w", err)
	}

	log.Printf("Created cricketer: %s (%s)", cricketer.Name, cricketer.ID)
	return cricketer, nil
}

// ImportPool validates and inserts a whole pool at once, assigning auction
// order by position where not set.
func (a *App) ImportPool(ctx context.Context, req ImportPoolRequest) error {
	if req.GameID == uuid.Nil {
		return fmt.Errorf("validation failed: game_id is required")
	}
	if len(req.Cricketers) == 0 {
		return fmt.Errorf("validation failed: pool is empty")
	}

	for i := range req.Cricketers {
		req.Cricketers[i].GameID = req.GameID
		if req.Cricketers[i].AuctionOrder == 0 {
			req.Cricketers[i].AuctionOrder = i + 1
		}
		if err := a.validateCricketer(&req.Cricketers[i]); err != nil {
			return fmt.Errorf("validation failed for %q: %w", req.Cricketers[i].Name, err)
		}
	}

	if err := a.repo.ImportPool(ctx, req.Cricketers); err != nil {
		return fmt.Errorf("failed to import pool: %w", err)
	}

	log.Printf("Imported %d cricketers into game %s", len(req.Cricketers), req.GameID)
	return nil
}

// GetCricketer retrieves a cricketer by ID
func (a *App) GetCricketer(ctx context.Context, id uuid.UUID) (*models.Cricketer, error) {
	cricketer, err := a.repo.GetCricketer(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get cricketer: %w", err)
	}
	return cricketer, nil
}

// GetCricketersByGame retrieves a game's pool in auction order
func (a *App) GetCricketersByGame(ctx context.Context, gameID uuid.UUID) ([]*models.Cricketer, error) {
	cricketers, err := a.repo.GetCricketersByGame(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cricketers: %w", err)
	}
	return cricketers, nil
}

// DeleteCricketer removes a cricketer that has not been through the block
func (a *App) DeleteCricketer(ctx context.Context, id uuid.UUID) error {
	cricketer, err := a.repo.GetCricketer(ctx, id)
	if err != nil {
		return fmt.Errorf("cricketer not found: %w", err)
	}
	if cricketer.Resolved() {
		return fmt.Errorf("cricketer %s already went through the auction", id)
	}

	if err := a.repo.DeleteCricketer(ctx, id); err != nil {
		return fmt.Errorf("failed to delete cricketer: %w", err)
	}

	log.Printf("Deleted cricketer: %s (%s)", cricketer.Name, cricketer.ID)
	return nil
}

// validateCricketer validates a cricketer entry and applies the base price floor
func (a *App) validateCricketer(req *CreateCricketerRequest) error {
	if req.GameID == uuid.Nil {
		return fmt.Errorf("game_id is required")
	}
	if req.Name == "" {
		return fmt.Errorf("name is required")
	}
	switch req.Role {
	case models.RoleBatter, models.RoleBowler, models.RoleAllRounder, models.RoleWicketKeeper:
	default:
		return fmt.Errorf("role %q is invalid", req.Role)
	}
	if req.BasePrice.IsZero() {
		req.BasePrice = decimal.NewFromFloat(0.5)
	}
	if req.BasePrice.IsNegative() {
		return fmt.Errorf("base_price must be positive")
	}
	if req.AuctionOrder < 0 {
		return fmt.Errorf("auction_order must be positive")
	}
	return nil
}

package participants

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/mcdev12/gully/go/internal/models"
)

// ParticipantsRepository defines what the app layer needs from the repository
type ParticipantsRepository interface {
	CreateParticipant(ctx context.Context, req CreateParticipantRequest) (*models.Participant, error)
	GetParticipant(ctx context.Context, id uuid.UUID) (*models.Participant, error)
	GetParticipantsByGame(ctx context.Context, gameID uuid.UUID) ([]*models.Participant, error)
	UpdateParticipant(ctx context.Context, id uuid.UUID, req UpdateParticipantRequest) (*models.Participant, error)
	DeleteParticipant(ctx context.Context, id uuid.UUID) error
}

// GameChecker verifies the game a participant joins is still joinable
type GameChecker interface {
	GetGame(ctx context.Context, id uuid.UUID) (*models.Game, error)
}

// App handles participants business logic
type App struct {
	repo  ParticipantsRepository
	games GameChecker
}

// NewApp creates a new participants App
func NewApp(repo ParticipantsRepository, games GameChecker) *App {
	return &App{
		repo:  repo,
		games: games,
	}
}

// CreateParticipant joins a user into a game with validation
func (a *App) CreateParticipant(ctx context.Context, req CreateParticipantRequest) (*models.Participant, error) {
	if err := a.validateCreateParticipantRequest(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	game, err := a.games.GetGame(ctx, req.GameID)
	if err != nil {
		return nil, fmt.Errorf("game not found: %w", err)
	}
	if game.Status != models.GameStatusPreAuction {
		return nil, fmt.Errorf("game %s is %s, participants can only join before the auction", game.ID, game.Status)
	}

	// Reject duplicate entries for the same user
	existing, err := a.repo.GetParticipantsByGame(ctx, req.GameID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing participants: %w", err)
	}
	for _, p := range existing {
		if p.UserID == req.UserID {
			return nil, fmt.Errorf("user %s already joined game %s", req.UserID, req.GameID)
		}
		if p.TeamName == req.TeamName {
			return nil, fmt.Errorf("team name %q already taken in game %s", req.TeamName, req.GameID)
		}
	}

	participant, err := a.repo.CreateParticipant(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create participant: %w", err)
	}

	log.Printf("Created participant: %s (%s)", participant.TeamName, participant.ID)
	return participant, nil
}

// GetParticipant retrieves a participant by ID
func (a *App) GetParticipant(ctx context.Context, id uuid.UUID) (*models.Participant, error) {
	participant, err := a.repo.GetParticipant(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}
	return participant, nil
}

// GetParticipantsByGame retrieves all participants in a game
func (a *App) GetParticipantsByGame(ctx context.Context, gameID uuid.UUID) ([]*models.Participant, error) {
	participants, err := a.repo.GetParticipantsByGame(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	return participants, nil
}

// UpdateParticipant updates a participant's team name
func (a *App) UpdateParticipant(ctx context.Context, id uuid.UUID, req UpdateParticipantRequest) (*models.Participant, error) {
	if req.TeamName == "" {
		return nil, fmt.Errorf("validation failed: team_name is required")
	}

	participant, err := a.repo.UpdateParticipant(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("failed to update participant: %w", err)
	}

	log.Printf("Updated participant: %s (%s)", participant.TeamName, participant.ID)
	return participant, nil
}

// DeleteParticipant removes a participant before the auction starts
func (a *App) DeleteParticipant(ctx context.Context, id uuid.UUID) error {
	participant, err := a.repo.GetParticipant(ctx, id)
	if err != nil {
		return fmt.Errorf("participant not found: %w", err)
	}

	game, err := a.games.GetGame(ctx, participant.GameID)
	if err != nil {
		return fmt.Errorf("game not found: %w", err)
	}
	if game.Status != models.GameStatusPreAuction {
		return fmt.Errorf("game %s is %s, participants can only leave before the auction", game.ID, game.Status)
	}

	if err := a.repo.DeleteParticipant(ctx, id); err != nil {
		return fmt.Errorf("failed to delete participant: %w", err)
	}

	log.Printf("Deleted participant: %s (%s)", participant.TeamName, participant.ID)
	return nil
}

// validateCreateParticipantRequest validates create participant request
func (a *App) validateCreateParticipantRequest(req CreateParticipantRequest) error {
	if req.GameID == uuid.Nil {
		return fmt.Errorf("game_id is required")
	}
	if req.UserID == uuid.Nil {
		return fmt.Errorf("user_id is required")
	}
	if req.TeamName == "" {
		return fmt.Errorf("team_name is required")
	}
	return nil
}

package auction

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/gully/go/internal/models"
	"github.com/rs/zerolog/log"
)

// GameRepository defines what the loader needs from game storage.
type GameRepository interface {
	GetGame(ctx context.Context, id uuid.UUID) (*models.Game, error)
}

// ParticipantRepository defines what the loader needs from participant storage.
type ParticipantRepository interface {
	GetParticipantsByGame(ctx context.Context, gameID uuid.UUID) ([]*models.Participant, error)
}

// CricketerRepository defines what the loader needs from cricketer storage.
type CricketerRepository interface {
	GetCricketersByGame(ctx context.Context, gameID uuid.UUID) ([]*models.Cricketer, error)
}

// StateRepository defines what the loader needs from auction-state storage.
type StateRepository interface {
	GetState(ctx context.Context, gameID uuid.UUID) (*models.AuctionState, error)
}

// Loader assembles an in-memory auction room from durable records.
type Loader struct {
	games        GameRepository
	participants ParticipantRepository
	cricketers   CricketerRepository
	states       StateRepository
	clock        clockwork.Clock
}

// NewLoader creates a room loader.
func NewLoader(games GameRepository, participants ParticipantRepository, cricketers CricketerRepository, states StateRepository, clock clockwork.Clock) *Loader {
	return &Loader{
		games:        games,
		participants: participants,
		cricketers:   cricketers,
		states:       states,
		clock:        clock,
	}
}

// LoadRoom fetches the game, its participants, its cricketer pool and any
// persisted auction state, and builds the room. A state persisted while
// in progress (a crashed process) comes back paused with the remaining time
// banked, so an operator can resume where the countdown stopped.
func (l *Loader) LoadRoom(ctx context.Context, gameID uuid.UUID) (*Room, error) {
	game, err := l.games.GetGame(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("load game: %w", err)
	}

	participants, err := l.participants.GetParticipantsByGame(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("load participants: %w", err)
	}
	if len(participants) == 0 {
		return nil, fmt.Errorf("game %s has no participants: %w", gameID, ErrStateConflict)
	}

	pool, err := l.cricketers.GetCricketersByGame(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("load cricketer pool: %w", err)
	}
	if len(pool) == 0 {
		return nil, fmt.Errorf("game %s has no cricketer pool: %w", gameID, ErrStateConflict)
	}
	sort.Slice(pool, func(i, j int) bool { return pool[i].AuctionOrder < pool[j].AuctionOrder })

	state, err := l.states.GetState(ctx, gameID)
	switch {
	case err == nil:
		l.recoverTimer(state)
	case errors.Is(err, ErrNotFound):
		state = models.NewAuctionState(gameID)
	default:
		return nil, fmt.Errorf("load auction state: %w", err)
	}

	byID := make(map[uuid.UUID]*models.Participant, len(participants))
	for _, p := range participants {
		byID[p.ID] = p
	}

	return &Room{
		Game:         *game,
		State:        state,
		Participants: byID,
		Pool:         pool,
	}, nil
}

// recoverTimer converts an in-progress state loaded from storage into a
// paused one. The countdown did not survive the process that armed it, so
// the remaining time is banked for an explicit resume.
func (l *Loader) recoverTimer(state *models.AuctionState) {
	if state.Status != models.AuctionStatusInProgress {
		return
	}
	remaining := time.Duration(0)
	if state.TimerEndTime != nil {
		if d := state.TimerEndTime.Sub(l.clock.Now()); d > 0 {
			remaining = d
		}
	}
	state.TimerEndTime = nil
	state.TimerRemainingOnPause = &remaining
	state.Status = models.AuctionStatusPaused
	log.Info().
		Str("game_id", state.GameID.String()).
		Dur("remaining", remaining).
		Msg("recovered in-progress auction as paused")
}

package auction

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/gully/go/internal/models"
)

type fakeRepos struct {
	game         *models.Game
	participants []*models.Participant
	pool         []*models.Cricketer
	state        *models.AuctionState
}

func (f *fakeRepos) GetGame(ctx context.Context, id uuid.UUID) (*models.Game, error) {
	return f.game, nil
}

func (f *fakeRepos) GetParticipantsByGame(ctx context.Context, gameID uuid.UUID) ([]*models.Participant, error) {
	return f.participants, nil
}

func (f *fakeRepos) GetCricketersByGame(ctx context.Context, gameID uuid.UUID) ([]*models.Cricketer, error) {
	return f.pool, nil
}

func (f *fakeRepos) GetState(ctx context.Context, gameID uuid.UUID) (*models.AuctionState, error) {
	if f.state == nil {
		return nil, ErrNotFound
	}
	return f.state, nil
}

func newFakeRepos(t *testing.T) *fakeRepos {
	t.Helper()
	room := newTestRoom(t, 2, 3)
	// Shuffle the pool to prove the loader sorts by auction order.
	participants := make([]*models.Participant, 0, len(room.Participants))
	for _, p := range room.Participants {
		participants = append(participants, p)
	}
	return &fakeRepos{
		game:         &room.Game,
		participants: participants,
		pool:         []*models.Cricketer{room.Pool[2], room.Pool[0], room.Pool[1]},
	}
}

func TestLoadRoomBuildsFreshState(t *testing.T) {
	repos := newFakeRepos(t)
	clock := clockwork.NewFakeClock()
	loader := NewLoader(repos, repos, repos, repos, clock)

	room, err := loader.LoadRoom(context.Background(), repos.game.ID)
	require.NoError(t, err)

	assert.Equal(t, repos.game.ID, room.State.GameID)
	assert.Equal(t, models.AuctionStatusNotStarted, room.State.Status)
	assert.Len(t, room.Participants, 2)

	require.Len(t, room.Pool, 3)
	for i, c := range room.Pool {
		assert.Equal(t, i+1, c.AuctionOrder)
	}
}

func TestLoadRoomRecoversInProgressAsPaused(t *testing.T) {
	repos := newFakeRepos(t)
	clock := clockwork.NewFakeClock()
	deadline := clock.Now().Add(12 * time.Second)
	repos.state = &models.AuctionState{
		GameID:             repos.game.ID,
		CurrentCricketerID: &repos.pool[0].ID,
		BiddingLog:         []models.BidEntry{},
		TimerEndTime:       &deadline,
		Status:             models.AuctionStatusInProgress,
		Generation:         5,
	}

	loader := NewLoader(repos, repos, repos, repos, clock)
	room, err := loader.LoadRoom(context.Background(), repos.game.ID)
	require.NoError(t, err)

	// The countdown did not survive the crashed process: the room comes back
	// paused with the remaining time banked for an explicit resume.
	assert.Equal(t, models.AuctionStatusPaused, room.State.Status)
	assert.Nil(t, room.State.TimerEndTime)
	require.NotNil(t, room.State.TimerRemainingOnPause)
	assert.Equal(t, 12*time.Second, *room.State.TimerRemainingOnPause)
}

func TestLoadRoomRecoversExpiredDeadlineAsZeroRemaining(t *testing.T) {
	repos := newFakeRepos(t)
	clock := clockwork.NewFakeClock()
	deadline := clock.Now().Add(-5 * time.Second)
	repos.state = &models.AuctionState{
		GameID:       repos.game.ID,
		BiddingLog:   []models.BidEntry{},
		TimerEndTime: &deadline,
		Status:       models.AuctionStatusInProgress,
	}

	loader := NewLoader(repos, repos, repos, repos, clock)
	room, err := loader.LoadRoom(context.Background(), repos.game.ID)
	require.NoError(t, err)

	require.NotNil(t, room.State.TimerRemainingOnPause)
	assert.Equal(t, time.Duration(0), *room.State.TimerRemainingOnPause)
}

func TestLoadRoomRejectsEmptyRoster(t *testing.T) {
	repos := newFakeRepos(t)
	repos.participants = nil
	loader := NewLoader(repos, repos, repos, repos, clockwork.NewFakeClock())

	_, err := loader.LoadRoom(context.Background(), repos.game.ID)
	assert.ErrorIs(t, err, ErrStateConflict)

	repos = newFakeRepos(t)
	repos.pool = nil
	loader = NewLoader(repos, repos, repos, repos, clockwork.NewFakeClock())

	_, err = loader.LoadRoom(context.Background(), repos.game.ID)
	assert.ErrorIs(t, err, ErrStateConflict)
}

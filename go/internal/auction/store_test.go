package auction

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/gully/go/internal/models"
)

func TestStoreOpenAndSnapshot(t *testing.T) {
	store := NewStore()
	room := newTestRoom(t, 2, 1)
	gameID := room.Game.ID

	require.False(t, store.Loaded(gameID))
	store.Open(room)
	require.True(t, store.Loaded(gameID))

	snap, err := store.Snapshot(gameID)
	require.NoError(t, err)
	assert.Equal(t, gameID, snap.GameID)
	assert.Equal(t, models.AuctionStatusNotStarted, snap.Status)

	_, err = store.Snapshot(uuid.New())
	assert.ErrorIs(t, err, ErrGameNotLoaded)
}

func TestStoreMutateCommitsOnSuccess(t *testing.T) {
	store := NewStore()
	room := newTestRoom(t, 2, 1)
	gameID := room.Game.ID
	store.Open(room)

	prev, committed, err := store.Mutate(gameID, func(r *Room) error {
		r.State.Generation = 7
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), prev.State.Generation)
	assert.Equal(t, int64(7), committed.State.Generation)

	snap, err := store.Snapshot(gameID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), snap.Generation)
}

func TestStoreMutateLeavesRoomUntouchedOnError(t *testing.T) {
	store := NewStore()
	room := newTestRoom(t, 2, 1)
	gameID := room.Game.ID
	store.Open(room)

	boom := errors.New("boom")
	_, _, err := store.Mutate(gameID, func(r *Room) error {
		r.State.Generation = 42
		r.State.CurrentHighBid = decimal.NewFromInt(99)
		return boom
	})
	require.ErrorIs(t, err, boom)

	snap, err := store.Snapshot(gameID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), snap.Generation)
	assert.True(t, snap.CurrentHighBid.IsZero())
}

func TestStoreRestoreRollsBackLatestCommitOnly(t *testing.T) {
	store := NewStore()
	room := newTestRoom(t, 2, 1)
	gameID := room.Game.ID
	store.Open(room)

	prev, committed, err := store.Mutate(gameID, func(r *Room) error {
		r.State.Generation = 1
		return nil
	})
	require.NoError(t, err)

	// committed is still the live room, so the rollback lands.
	require.True(t, store.Restore(gameID, prev, committed))
	snap, err := store.Snapshot(gameID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), snap.Generation)

	// After a later mutation the stale rollback must be refused.
	prev, committed, err = store.Mutate(gameID, func(r *Room) error {
		r.State.Generation = 1
		return nil
	})
	require.NoError(t, err)
	_, _, err = store.Mutate(gameID, func(r *Room) error {
		r.State.Generation = 2
		return nil
	})
	require.NoError(t, err)

	require.False(t, store.Restore(gameID, prev, committed))
	snap, err = store.Snapshot(gameID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), snap.Generation)
}

func TestStoreCloseDropsRoom(t *testing.T) {
	store := NewStore()
	room := newTestRoom(t, 2, 1)
	store.Open(room)

	store.Close(room.Game.ID)
	assert.False(t, store.Loaded(room.Game.ID))
	_, _, err := store.Mutate(room.Game.ID, func(r *Room) error { return nil })
	assert.ErrorIs(t, err, ErrGameNotLoaded)
}

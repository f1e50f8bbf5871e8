package auction

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Store owns the live auction rooms, one per game. All mutations to a room
// go through Mutate, which serializes them under a per-game lock: no two
// mutators ever observe the same "before" state, and a mutation either
// commits fully or leaves the room untouched. Rooms for different games are
// fully independent.
type Store struct {
	mu    sync.RWMutex
	rooms map[uuid.UUID]*roomEntry
}

type roomEntry struct {
	mu   sync.Mutex
	room *Room
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{rooms: make(map[uuid.UUID]*roomEntry)}
}

// Open registers a loaded room for its game. Opening a game that already has
// a live room replaces it; callers decide when that is safe.
func (s *Store) Open(room *Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[room.Game.ID] = &roomEntry{room: room.Clone()}
}

// Close drops the room for a game, if any.
func (s *Store) Close(gameID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, gameID)
}

// Loaded reports whether a room is open for the game.
func (s *Store) Loaded(gameID uuid.UUID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.rooms[gameID]
	return ok
}

func (s *Store) entry(gameID uuid.UUID) (*roomEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.rooms[gameID]
	if !ok {
		return nil, fmt.Errorf("game %s: %w", gameID, ErrGameNotLoaded)
	}
	return e, nil
}

// Snapshot returns the last committed read model for a game.
func (s *Store) Snapshot(gameID uuid.UUID) (Snapshot, error) {
	e, err := s.entry(gameID)
	if err != nil {
		return Snapshot{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.room.Snapshot(), nil
}

// Mutate applies fn to a working copy of the game's room under the per-game
// lock. If fn returns an error the committed room is untouched and the error
// is returned. On success the working copy becomes the committed room.
//
// Committed rooms are never mutated in place (every mutation works on a
// fresh clone), so the returned before/after rooms are safe to read after
// the lock is released.
func (s *Store) Mutate(gameID uuid.UUID, fn func(room *Room) error) (prev, committed *Room, err error) {
	e, err := s.entry(gameID)
	if err != nil {
		return nil, nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	work := e.room.Clone()
	if err := fn(work); err != nil {
		return nil, nil, err
	}

	prev = e.room
	e.room = work
	return prev, work, nil
}

// Restore rolls the room back to prev, but only if committed is still the
// live room (no later mutation has landed in the meantime). Used when the
// durability step after a commit fails.
func (s *Store) Restore(gameID uuid.UUID, prev, committed *Room) bool {
	e, err := s.entry(gameID)
	if err != nil {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.room != committed {
		return false
	}
	e.room = prev
	return true
}

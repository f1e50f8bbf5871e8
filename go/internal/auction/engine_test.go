package auction

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/gully/go/internal/models"
)

// newTestRoom builds a room with n participants (100 budget each) and a pool
// of m cricketers at 0.5 base price, in auction order.
func newTestRoom(t *testing.T, nParticipants, nCricketers int) *Room {
	t.Helper()

	gameID := uuid.New()
	participants := make(map[uuid.UUID]*models.Participant, nParticipants)
	for i := 0; i < nParticipants; i++ {
		p := &models.Participant{
			ID:              uuid.New(),
			GameID:          gameID,
			UserID:          uuid.New(),
			TeamName:        fmt.Sprintf("Team %d", i+1),
			BudgetRemaining: decimal.NewFromInt(100),
			Roster:          []models.RosterPick{},
		}
		participants[p.ID] = p
	}

	pool := make([]*models.Cricketer, nCricketers)
	for i := 0; i < nCricketers; i++ {
		pool[i] = &models.Cricketer{
			ID:           uuid.New(),
			GameID:       gameID,
			Name:         fmt.Sprintf("Cricketer %d", i+1),
			Role:         models.RoleBatter,
			BasePrice:    decimal.NewFromFloat(0.5),
			AuctionOrder: i + 1,
		}
	}

	return &Room{
		Game: models.Game{
			ID:     gameID,
			Name:   "test game",
			Status: models.GameStatusPreAuction,
			Settings: models.GameSettings{
				BudgetPerParticipant: decimal.NewFromInt(100),
			},
		},
		State:        models.NewAuctionState(gameID),
		Participants: participants,
		Pool:         pool,
	}
}

// participantsInOrder returns the room's participants sorted by team name.
func participantsInOrder(room *Room) []*models.Participant {
	out := make([]*models.Participant, 0, len(room.Participants))
	for _, p := range room.Participants {
		out = append(out, p)
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].TeamName < out[i].TeamName {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out
}

type fakePersist struct {
	mu            sync.Mutex
	failNextSaves int
	saveStates    int
	sales         int
	skips         int
	statuses      []models.GameStatus
}

func (f *fakePersist) SaveState(ctx context.Context, state *models.AuctionState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNextSaves > 0 {
		f.failNextSaves--
		return errors.New("storage unavailable")
	}
	f.saveStates++
	return nil
}

func (f *fakePersist) SaveSale(ctx context.Context, state *models.AuctionState, cricketer *models.Cricketer, winner *models.Participant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sales++
	return nil
}

func (f *fakePersist) SaveSkip(ctx context.Context, state *models.AuctionState, cricketer *models.Cricketer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.skips++
	return nil
}

func (f *fakePersist) SetGameStatus(ctx context.Context, gameID uuid.UUID, status models.GameStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses = append(f.statuses, status)
	return nil
}

func (f *fakePersist) counts() (saves, sales, skips int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saveStates, f.sales, f.skips
}

func (f *fakePersist) lastStatus() models.GameStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.statuses) == 0 {
		return ""
	}
	return f.statuses[len(f.statuses)-1]
}

type fakeEvent struct {
	gameID  uuid.UUID
	typ     string
	payload any
}

type fakeBroadcaster struct {
	mu     sync.Mutex
	events []fakeEvent
}

func (f *fakeBroadcaster) Publish(ctx context.Context, gameID uuid.UUID, eventType string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, fakeEvent{gameID: gameID, typ: eventType, payload: payload})
	return nil
}

func (f *fakeBroadcaster) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.events))
	for i, ev := range f.events {
		out[i] = ev.typ
	}
	return out
}

func newTestEngine(t *testing.T, room *Room) (*Engine, *clockwork.FakeClock, *fakePersist, *fakeBroadcaster) {
	t.Helper()

	clock := clockwork.NewFakeClock()
	persist := &fakePersist{}
	bcast := &fakeBroadcaster{}
	engine := NewEngine(NewStore(), DefaultRules(), clock, persist, bcast)
	t.Cleanup(engine.Shutdown)

	_, err := engine.Open(context.Background(), room)
	require.NoError(t, err)
	return engine, clock, persist, bcast
}

// liveRoom reads the committed room. Committed rooms are never mutated in
// place, so the pointer is safe to inspect outside the lock.
func liveRoom(t *testing.T, e *Engine, gameID uuid.UUID) *Room {
	t.Helper()
	ent, err := e.store.entry(gameID)
	require.NoError(t, err)
	ent.mu.Lock()
	defer ent.mu.Unlock()
	return ent.room
}

func waitForStatus(t *testing.T, e *Engine, gameID uuid.UUID, want models.AuctionStatus) Snapshot {
	t.Helper()
	var snap Snapshot
	require.Eventually(t, func() bool {
		var err error
		snap, err = e.Read(gameID)
		return err == nil && snap.Status == want
	}, 2*time.Second, 5*time.Millisecond)
	return snap
}

func TestStartPutsCricketerOnBlock(t *testing.T) {
	room := newTestRoom(t, 2, 2)
	gameID := room.Game.ID
	engine, clock, _, _ := newTestEngine(t, room)

	// Unknown cricketer.
	_, err := engine.Start(context.Background(), gameID, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	snap, err := engine.Start(context.Background(), gameID, room.Pool[0].ID)
	require.NoError(t, err)

	assert.Equal(t, models.AuctionStatusInProgress, snap.Status)
	require.NotNil(t, snap.CurrentCricketerID)
	assert.Equal(t, room.Pool[0].ID, *snap.CurrentCricketerID)
	require.NotNil(t, snap.TimerEndTime)
	assert.Equal(t, clock.Now().Add(30*time.Second), *snap.TimerEndTime)
	assert.True(t, snap.CurrentHighBid.IsZero())
	assert.Empty(t, snap.BiddingLog)

	// Another start while one is on the block is refused.
	_, err = engine.Start(context.Background(), gameID, room.Pool[1].ID)
	assert.ErrorIs(t, err, ErrStateConflict)
}

func TestStartRejectsResolvedCricketer(t *testing.T) {
	room := newTestRoom(t, 2, 2)
	room.Pool[0].WasSkipped = true
	gameID := room.Game.ID
	engine, _, _, _ := newTestEngine(t, room)

	_, err := engine.Start(context.Background(), gameID, room.Pool[0].ID)
	assert.ErrorIs(t, err, ErrCricketerResolved)
}

func TestBidValidation(t *testing.T) {
	room := newTestRoom(t, 2, 2)
	room.Pool[0].BasePrice = decimal.NewFromInt(2)
	gameID := room.Game.ID
	ps := participantsInOrder(room)
	engine, _, _, _ := newTestEngine(t, room)
	ctx := context.Background()

	// No cricketer on the block yet.
	_, err := engine.Bid(ctx, gameID, ps[0].ID, dec(2))
	assert.ErrorIs(t, err, ErrAuctionNotActive)

	_, err = engine.Start(ctx, gameID, room.Pool[0].ID)
	require.NoError(t, err)

	// Unknown participant.
	_, err = engine.Bid(ctx, gameID, uuid.New(), dec(2))
	assert.ErrorIs(t, err, ErrUnknownParticipant)

	// Opening bid below the base price.
	_, err = engine.Bid(ctx, gameID, ps[0].ID, dec(1.5))
	assert.ErrorIs(t, err, ErrBidTooLow)

	// Opening bid at the base price is accepted.
	snap, err := engine.Bid(ctx, gameID, ps[0].ID, dec(2))
	require.NoError(t, err)
	assert.True(t, snap.CurrentHighBid.Equal(dec(2)))

	// The standing high bidder cannot raise themselves.
	_, err = engine.Bid(ctx, gameID, ps[0].ID, dec(3))
	assert.ErrorIs(t, err, ErrAlreadyHighBidder)

	// A raise below the minimum increment is refused.
	_, err = engine.Bid(ctx, gameID, ps[1].ID, dec(2.4))
	assert.ErrorIs(t, err, ErrBidTooLow)

	snap, err = engine.Bid(ctx, gameID, ps[1].ID, dec(2.5))
	require.NoError(t, err)
	assert.True(t, snap.CurrentHighBid.Equal(dec(2.5)))
	require.NotNil(t, snap.CurrentHighBidderID)
	assert.Equal(t, ps[1].ID, *snap.CurrentHighBidderID)
	assert.Len(t, snap.BiddingLog, 2)
}

func TestBidReserveBlocksOverspend(t *testing.T) {
	room := newTestRoom(t, 2, 2)
	room.Game.Settings.RosterCap = 3
	gameID := room.Game.ID
	ps := participantsInOrder(room)
	engine, _, _, _ := newTestEngine(t, room)
	ctx := context.Background()

	_, err := engine.Start(ctx, gameID, room.Pool[0].ID)
	require.NoError(t, err)

	// 100 budget, 3 empty slots: 2 slots must keep 0.5 each after this win.
	_, err = engine.Bid(ctx, gameID, ps[0].ID, dec(99.5))
	assert.ErrorIs(t, err, ErrBidExceedsBudget)

	_, err = engine.Bid(ctx, gameID, ps[0].ID, dec(99))
	assert.NoError(t, err)
}

func TestHighestBidderWinsOnExpiry(t *testing.T) {
	room := newTestRoom(t, 2, 2)
	gameID := room.Game.ID
	ps := participantsInOrder(room)
	engine, clock, persist, bcast := newTestEngine(t, room)
	ctx := context.Background()

	_, err := engine.Start(ctx, gameID, room.Pool[0].ID)
	require.NoError(t, err)
	_, err = engine.Bid(ctx, gameID, ps[0].ID, dec(2))
	require.NoError(t, err)
	_, err = engine.Bid(ctx, gameID, ps[1].ID, dec(3))
	require.NoError(t, err)

	clock.Advance(30 * time.Second)
	snap := waitForStatus(t, engine, gameID, models.AuctionStatusNotStarted)

	assert.Nil(t, snap.CurrentCricketerID)
	assert.Contains(t, snap.LastWinMessage, "Cricketer 1 sold to Team 2 for 3.0")

	committed := liveRoom(t, engine, gameID)
	sold := committed.CricketerByID(room.Pool[0].ID)
	require.True(t, sold.IsPicked)
	assert.Equal(t, ps[1].ID, *sold.PickedByParticipantID)
	assert.True(t, sold.PricePaid.Equal(dec(3)))
	assert.Equal(t, 1, *sold.PickOrder)

	winner := committed.Participants[ps[1].ID]
	assert.True(t, winner.BudgetRemaining.Equal(dec(97)))
	require.Len(t, winner.Roster, 1)
	assert.Equal(t, room.Pool[0].ID, winner.Roster[0].CricketerID)

	// The loser's budget is untouched; bids are reservations only.
	loser := committed.Participants[ps[0].ID]
	assert.True(t, loser.BudgetRemaining.Equal(dec(100)))

	_, sales, _ := persist.counts()
	assert.Equal(t, 1, sales)
	assert.Contains(t, bcast.types(), "auction:player_picked")
}

func TestNoBidsSkipsOnExpiry(t *testing.T) {
	room := newTestRoom(t, 2, 2)
	gameID := room.Game.ID
	engine, clock, persist, bcast := newTestEngine(t, room)

	_, err := engine.Start(context.Background(), gameID, room.Pool[0].ID)
	require.NoError(t, err)

	clock.Advance(30 * time.Second)
	snap := waitForStatus(t, engine, gameID, models.AuctionStatusNotStarted)
	assert.Contains(t, snap.LastWinMessage, "went unsold")

	committed := liveRoom(t, engine, gameID)
	assert.True(t, committed.CricketerByID(room.Pool[0].ID).WasSkipped)

	_, _, skips := persist.counts()
	assert.Equal(t, 1, skips)
	assert.Contains(t, bcast.types(), "auction:player_skipped")
}

func TestAddTimeDefersExpiry(t *testing.T) {
	room := newTestRoom(t, 2, 2)
	gameID := room.Game.ID
	engine, clock, _, _ := newTestEngine(t, room)
	ctx := context.Background()

	start, err := engine.Start(ctx, gameID, room.Pool[0].ID)
	require.NoError(t, err)

	clock.Advance(20 * time.Second)
	snap, err := engine.AddTime(ctx, gameID, 15)
	require.NoError(t, err)
	assert.Equal(t, start.TimerEndTime.Add(15*time.Second), *snap.TimerEndTime)
	// A bid does not change the deadline.
	ps := participantsInOrder(room)
	snap, err = engine.Bid(ctx, gameID, ps[0].ID, dec(1))
	require.NoError(t, err)
	assert.Equal(t, start.TimerEndTime.Add(15*time.Second), *snap.TimerEndTime)

	// Past the original deadline, before the extended one: still live.
	clock.Advance(10 * time.Second)
	time.Sleep(50 * time.Millisecond)
	snap, err = engine.Read(gameID)
	require.NoError(t, err)
	assert.Equal(t, models.AuctionStatusInProgress, snap.Status)

	clock.Advance(15 * time.Second)
	waitForStatus(t, engine, gameID, models.AuctionStatusNotStarted)
}

func TestPauseBanksRemainingAndResumeRestores(t *testing.T) {
	room := newTestRoom(t, 2, 2)
	gameID := room.Game.ID
	ps := participantsInOrder(room)
	engine, clock, persist, _ := newTestEngine(t, room)
	ctx := context.Background()

	_, err := engine.Start(ctx, gameID, room.Pool[0].ID)
	require.NoError(t, err)
	_, err = engine.Bid(ctx, gameID, ps[0].ID, dec(4))
	require.NoError(t, err)

	clock.Advance(10 * time.Second)
	snap, err := engine.Pause(ctx, gameID)
	require.NoError(t, err)
	assert.Equal(t, models.AuctionStatusPaused, snap.Status)
	assert.Nil(t, snap.TimerEndTime)
	assert.Equal(t, models.GameStatusAuctionPaused, persist.lastStatus())

	// The countdown is frozen: wall time passing changes nothing.
	clock.Advance(5 * time.Minute)
	time.Sleep(50 * time.Millisecond)
	snap, err = engine.Read(gameID)
	require.NoError(t, err)
	assert.Equal(t, models.AuctionStatusPaused, snap.Status)
	assert.True(t, snap.CurrentHighBid.Equal(dec(4)))

	// Bids are refused while paused.
	_, err = engine.Bid(ctx, gameID, ps[1].ID, dec(5))
	assert.ErrorIs(t, err, ErrAuctionNotActive)

	snap, err = engine.Resume(ctx, gameID)
	require.NoError(t, err)
	assert.Equal(t, models.AuctionStatusInProgress, snap.Status)
	require.NotNil(t, snap.TimerEndTime)
	assert.Equal(t, clock.Now().Add(20*time.Second), *snap.TimerEndTime)
	assert.Equal(t, models.GameStatusAuctionActive, persist.lastStatus())

	// The banked 20 seconds run out and the standing bid wins.
	clock.Advance(20 * time.Second)
	snap = waitForStatus(t, engine, gameID, models.AuctionStatusNotStarted)
	assert.Contains(t, snap.LastWinMessage, "sold to Team 1")
}

func TestSkipDiscardsStandingBids(t *testing.T) {
	room := newTestRoom(t, 2, 2)
	gameID := room.Game.ID
	ps := participantsInOrder(room)
	engine, _, persist, _ := newTestEngine(t, room)
	ctx := context.Background()

	_, err := engine.Start(ctx, gameID, room.Pool[0].ID)
	require.NoError(t, err)
	_, err = engine.Bid(ctx, gameID, ps[0].ID, dec(7))
	require.NoError(t, err)

	snap, err := engine.Skip(ctx, gameID)
	require.NoError(t, err)
	assert.Equal(t, models.AuctionStatusNotStarted, snap.Status)
	assert.Contains(t, snap.LastWinMessage, "went unsold")

	committed := liveRoom(t, engine, gameID)
	assert.True(t, committed.CricketerByID(room.Pool[0].ID).WasSkipped)
	assert.True(t, committed.Participants[ps[0].ID].BudgetRemaining.Equal(dec(100)))

	_, sales, skips := persist.counts()
	assert.Zero(t, sales)
	assert.Equal(t, 1, skips)
}

func TestEndFreezesAuction(t *testing.T) {
	room := newTestRoom(t, 2, 2)
	gameID := room.Game.ID
	ps := participantsInOrder(room)
	engine, clock, persist, _ := newTestEngine(t, room)
	ctx := context.Background()

	_, err := engine.Start(ctx, gameID, room.Pool[0].ID)
	require.NoError(t, err)
	_, err = engine.Bid(ctx, gameID, ps[0].ID, dec(3))
	require.NoError(t, err)

	snap, err := engine.End(ctx, gameID)
	require.NoError(t, err)
	assert.Equal(t, models.AuctionStatusEnded, snap.Status)
	assert.Nil(t, snap.CurrentCricketerID)
	assert.Equal(t, models.GameStatusAuctionEnded, persist.lastStatus())

	// Nothing was settled: the cricketer on the block stays unresolved.
	committed := liveRoom(t, engine, gameID)
	assert.False(t, committed.CricketerByID(room.Pool[0].ID).Resolved())

	// The cancelled countdown never settles anything.
	clock.Advance(time.Minute)
	time.Sleep(50 * time.Millisecond)
	_, sales, skips := persist.counts()
	assert.Zero(t, sales)
	assert.Zero(t, skips)

	_, err = engine.Start(ctx, gameID, room.Pool[1].ID)
	assert.ErrorIs(t, err, ErrStateConflict)
	_, err = engine.End(ctx, gameID)
	assert.ErrorIs(t, err, ErrStateConflict)
}

func TestPersistFailureRollsBackBid(t *testing.T) {
	room := newTestRoom(t, 2, 2)
	gameID := room.Game.ID
	ps := participantsInOrder(room)
	engine, _, persist, bcast := newTestEngine(t, room)
	engine.persistAttempts = 1
	ctx := context.Background()

	_, err := engine.Start(ctx, gameID, room.Pool[0].ID)
	require.NoError(t, err)
	eventsBefore := len(bcast.types())

	persist.failNextSaves = 1
	_, err = engine.Bid(ctx, gameID, ps[0].ID, dec(2))
	require.Error(t, err)

	// The rejected bid left no trace and nothing was broadcast for it.
	snap, err := engine.Read(gameID)
	require.NoError(t, err)
	assert.True(t, snap.CurrentHighBid.IsZero())
	assert.Nil(t, snap.CurrentHighBidderID)
	assert.Empty(t, snap.BiddingLog)
	assert.Len(t, bcast.types(), eventsBefore)

	// Storage is healthy again; the same bid now lands.
	snap, err = engine.Bid(ctx, gameID, ps[0].ID, dec(2))
	require.NoError(t, err)
	assert.True(t, snap.CurrentHighBid.Equal(dec(2)))
}

func TestPersistFailureOnPauseKeepsCountdownLive(t *testing.T) {
	room := newTestRoom(t, 2, 2)
	gameID := room.Game.ID
	engine, clock, persist, _ := newTestEngine(t, room)
	engine.persistAttempts = 1
	ctx := context.Background()

	_, err := engine.Start(ctx, gameID, room.Pool[0].ID)
	require.NoError(t, err)

	persist.failNextSaves = 1
	_, err = engine.Pause(ctx, gameID)
	require.Error(t, err)

	// The failed pause rolled back; the countdown must still be armed.
	snap, err := engine.Read(gameID)
	require.NoError(t, err)
	assert.Equal(t, models.AuctionStatusInProgress, snap.Status)
	require.NotNil(t, snap.TimerEndTime)

	clock.Advance(30 * time.Second)
	waitForStatus(t, engine, gameID, models.AuctionStatusNotStarted)

	committed := liveRoom(t, engine, gameID)
	assert.True(t, committed.CricketerByID(room.Pool[0].ID).WasSkipped)
}

func TestPauseResumeDoesNotAccumulateTimerGoroutines(t *testing.T) {
	room := newTestRoom(t, 2, 2)
	gameID := room.Game.ID
	engine, _, _, _ := newTestEngine(t, room)
	ctx := context.Background()

	_, err := engine.Start(ctx, gameID, room.Pool[0].ID)
	require.NoError(t, err)

	before := runtime.NumGoroutine()
	for i := 0; i < 50; i++ {
		_, err = engine.Pause(ctx, gameID)
		require.NoError(t, err)
		_, err = engine.Resume(ctx, gameID)
		require.NoError(t, err)
	}

	// Each cycle replaces the countdown; the replaced timers' goroutines
	// must wind down instead of piling up until shutdown.
	assert.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= before+5
	}, 2*time.Second, 10*time.Millisecond)
}

func TestResolveIsIdempotentAcrossGenerations(t *testing.T) {
	room := newTestRoom(t, 2, 2)
	gameID := room.Game.ID
	ps := participantsInOrder(room)
	engine, _, persist, _ := newTestEngine(t, room)
	ctx := context.Background()

	_, err := engine.Start(ctx, gameID, room.Pool[0].ID)
	require.NoError(t, err)
	_, err = engine.Bid(ctx, gameID, ps[0].ID, dec(2))
	require.NoError(t, err)

	snap, err := engine.Read(gameID)
	require.NoError(t, err)
	gen := snap.Generation

	// Two triggers scheduled under the same generation race; the second
	// finds the generation already advanced and settles nothing.
	_, err = engine.resolve(ctx, gameID, gen, false)
	require.NoError(t, err)
	_, err = engine.resolve(ctx, gameID, gen, false)
	assert.ErrorIs(t, err, errStaleGeneration)

	committed := liveRoom(t, engine, gameID)
	winner := committed.Participants[ps[0].ID]
	require.Len(t, winner.Roster, 1)
	assert.True(t, winner.BudgetRemaining.Equal(dec(98)))

	_, sales, skips := persist.counts()
	assert.Equal(t, 1, sales)
	assert.Zero(t, skips)
}

func TestOpenRejectsFinishedGames(t *testing.T) {
	for _, status := range []models.GameStatus{
		models.GameStatusAuctionEnded,
		models.GameStatusScoring,
		models.GameStatusCompleted,
	} {
		t.Run(string(status), func(t *testing.T) {
			room := newTestRoom(t, 2, 2)
			room.Game.Status = status
			engine := NewEngine(NewStore(), DefaultRules(), clockwork.NewFakeClock(), &fakePersist{}, nil)
			t.Cleanup(engine.Shutdown)

			_, err := engine.Open(context.Background(), room)
			assert.ErrorIs(t, err, ErrStateConflict)
			_, err = engine.Read(room.Game.ID)
			assert.ErrorIs(t, err, ErrGameNotLoaded)
		})
	}
}

func TestConcurrentEqualBidsHaveOneWinner(t *testing.T) {
	room := newTestRoom(t, 2, 2)
	gameID := room.Game.ID
	ps := participantsInOrder(room)
	engine, _, _, _ := newTestEngine(t, room)
	ctx := context.Background()

	_, err := engine.Start(ctx, gameID, room.Pool[0].ID)
	require.NoError(t, err)

	// Both participants race to open the bidding at the same amount. The
	// store serializes them: the loser sees a standing bid of 2 and a raise
	// to 2 no longer clears the minimum.
	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for _, p := range ps {
		wg.Add(1)
		go func(pid uuid.UUID) {
			defer wg.Done()
			_, err := engine.Bid(ctx, gameID, pid, dec(2))
			errs <- err
		}(p.ID)
	}
	wg.Wait()
	close(errs)

	var won, lost int
	for err := range errs {
		if err == nil {
			won++
		} else {
			assert.ErrorIs(t, err, ErrBidTooLow)
			lost++
		}
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, 1, lost)

	snap, err := engine.Read(gameID)
	require.NoError(t, err)
	assert.True(t, snap.CurrentHighBid.Equal(dec(2)))
	assert.Len(t, snap.BiddingLog, 1)
}

func TestGamesAreIsolated(t *testing.T) {
	roomA := newTestRoom(t, 2, 2)
	roomB := newTestRoom(t, 2, 2)
	engine, clock, _, _ := newTestEngine(t, roomA)
	_, err := engine.Open(context.Background(), roomB)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = engine.Start(ctx, roomA.Game.ID, roomA.Pool[0].ID)
	require.NoError(t, err)
	psA := participantsInOrder(roomA)
	_, err = engine.Bid(ctx, roomA.Game.ID, psA[0].ID, dec(3))
	require.NoError(t, err)

	// Game B never started; game A's activity leaves it untouched.
	snapB, err := engine.Read(roomB.Game.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AuctionStatusNotStarted, snapB.Status)
	assert.True(t, snapB.CurrentHighBid.IsZero())
	assert.Zero(t, snapB.Generation)

	// A's expiry settles A only.
	clock.Advance(30 * time.Second)
	waitForStatus(t, engine, roomA.Game.ID, models.AuctionStatusNotStarted)
	snapB, err = engine.Read(roomB.Game.ID)
	require.NoError(t, err)
	assert.Zero(t, snapB.Generation)
}

func TestAuctionDrainsFullPool(t *testing.T) {
	room := newTestRoom(t, 2, 3)
	gameID := room.Game.ID
	ps := participantsInOrder(room)
	engine, clock, persist, _ := newTestEngine(t, room)
	ctx := context.Background()

	for i, c := range room.Pool {
		_, err := engine.Start(ctx, gameID, c.ID)
		require.NoError(t, err)
		_, err = engine.Bid(ctx, gameID, ps[i%2].ID, dec(2))
		require.NoError(t, err)

		clock.Advance(30 * time.Second)
		want := models.AuctionStatusNotStarted
		if i == len(room.Pool)-1 {
			want = models.AuctionStatusEnded
		}
		waitForStatus(t, engine, gameID, want)
	}

	committed := liveRoom(t, engine, gameID)
	assert.False(t, committed.UnresolvedRemaining())
	// Team 1 won cricketers 1 and 3, Team 2 won cricketer 2, 2.0 each.
	assert.True(t, committed.Participants[ps[0].ID].BudgetRemaining.Equal(dec(96)))
	assert.True(t, committed.Participants[ps[1].ID].BudgetRemaining.Equal(dec(98)))
	assert.Equal(t, models.GameStatusAuctionEnded, persist.lastStatus())

	_, sales, _ := persist.counts()
	assert.Equal(t, 3, sales)
}

func TestPoolExhaustionEndsAuction(t *testing.T) {
	room := newTestRoom(t, 2, 1)
	gameID := room.Game.ID
	ps := participantsInOrder(room)
	engine, clock, persist, bcast := newTestEngine(t, room)
	ctx := context.Background()

	_, err := engine.Start(ctx, gameID, room.Pool[0].ID)
	require.NoError(t, err)
	_, err = engine.Bid(ctx, gameID, ps[0].ID, dec(5))
	require.NoError(t, err)

	clock.Advance(30 * time.Second)
	snap := waitForStatus(t, engine, gameID, models.AuctionStatusEnded)
	assert.Contains(t, snap.LastWinMessage, "sold to Team 1")

	assert.Equal(t, models.GameStatusAuctionEnded, persist.lastStatus())
	assert.Contains(t, bcast.types(), "auction:ended")
}

package auction

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/gully/go/internal/auction/events"
	"github.com/mcdev12/gully/go/internal/models"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Broadcaster fans out auction events to connected clients. Delivery is
// best-effort: clients that miss events recover by calling Read for a fresh
// snapshot.
type Broadcaster interface {
	Publish(ctx context.Context, gameID uuid.UUID, eventType string, payload any) error
}

// PersistenceAdapter durably stores committed auction mutations. Writes
// happen after the in-memory commit; settlement writes must be atomic so a
// sale is never half-recorded.
type PersistenceAdapter interface {
	SaveState(ctx context.Context, state *models.AuctionState) error
	SaveSale(ctx context.Context, state *models.AuctionState, cricketer *models.Cricketer, winner *models.Participant) error
	SaveSkip(ctx context.Context, state *models.AuctionState, cricketer *models.Cricketer) error
	SetGameStatus(ctx context.Context, gameID uuid.UUID, status models.GameStatus) error
}

// Engine runs the live auctions: it validates bids, drives the per-item
// countdown and settles each cricketer exactly once. One engine serves all
// games; per-game serialization lives in the Store.
type Engine struct {
	store   *Store
	rules   Rules
	clock   clockwork.Clock
	persist PersistenceAdapter
	bcast   Broadcaster

	timersMu sync.Mutex
	timers   map[uuid.UUID]*gameTimer

	stopOnce sync.Once
	stopCh   chan struct{}

	persistAttempts int
	expiryTimeout   time.Duration
}

// NewEngine creates an auction engine. clock is injected so timer behavior
// is testable with a fake clock.
func NewEngine(store *Store, rules Rules, clock clockwork.Clock, persist PersistenceAdapter, bcast Broadcaster) *Engine {
	return &Engine{
		store:           store,
		rules:           rules,
		clock:           clock,
		persist:         persist,
		bcast:           bcast,
		timers:          make(map[uuid.UUID]*gameTimer),
		stopCh:          make(chan struct{}),
		persistAttempts: 3,
		expiryTimeout:   30 * time.Second,
	}
}

// Shutdown stops all pending expiry timers. In-memory state is left as-is.
func (e *Engine) Shutdown() {
	e.stopOnce.Do(func() {
		close(e.stopCh)
		e.timersMu.Lock()
		defer e.timersMu.Unlock()
		for id, gt := range e.timers {
			gt.stop()
			delete(e.timers, id)
		}
	})
}

// Open registers a loaded room with the store and marks the game's auction
// live. It must be called before any other operation for the game.
func (e *Engine) Open(ctx context.Context, room *Room) (Snapshot, error) {
	// Active and paused games may be reopened after a crash; a finished
	// game never comes back.
	switch room.Game.Status {
	case models.GameStatusAuctionEnded, models.GameStatusScoring, models.GameStatusCompleted:
		return Snapshot{}, fmt.Errorf("open auction for %s game: %w", room.Game.Status, ErrStateConflict)
	}

	e.store.Open(room)
	err := e.persistWithRetry(ctx, func(ctx context.Context) error {
		return e.persist.SetGameStatus(ctx, room.Game.ID, models.GameStatusAuctionActive)
	})
	if err != nil {
		e.store.Close(room.Game.ID)
		return Snapshot{}, fmt.Errorf("open auction room: %w", err)
	}

	snap, snapErr := e.store.Snapshot(room.Game.ID)
	if snapErr != nil {
		return Snapshot{}, snapErr
	}
	e.publish(ctx, room.Game.ID, events.TypeUpdate, snap)

	log.Info().
		Str("game_id", room.Game.ID.String()).
		Int("pool_size", len(room.Pool)).
		Int("participants", len(room.Participants)).
		Msg("auction room opened")
	return snap, nil
}

// Read returns the last committed snapshot for a game.
func (e *Engine) Read(gameID uuid.UUID) (Snapshot, error) {
	return e.store.Snapshot(gameID)
}

// Start puts a cricketer on the block and starts the countdown. Valid only
// while no other cricketer is up (auction status NOT_STARTED).
func (e *Engine) Start(ctx context.Context, gameID, cricketerID uuid.UUID) (Snapshot, error) {
	prev, committed, err := e.store.Mutate(gameID, func(room *Room) error {
		st := room.State
		if st.Status != models.AuctionStatusNotStarted {
			return fmt.Errorf("start: %w", ErrStateConflict)
		}
		c := room.CricketerByID(cricketerID)
		if c == nil {
			return fmt.Errorf("cricketer %s: %w", cricketerID, ErrNotFound)
		}
		if c.Resolved() {
			return fmt.Errorf("cricketer %s: %w", cricketerID, ErrCricketerResolved)
		}

		end := e.clock.Now().Add(time.Duration(room.TimerSeconds(e.rules)) * time.Second)
		id := c.ID
		st.CurrentCricketerID = &id
		st.CurrentHighBid = decimal.Zero
		st.CurrentHighBidderID = nil
		st.BiddingLog = []models.BidEntry{}
		st.TimerEndTime = &end
		st.TimerRemainingOnPause = nil
		st.Status = models.AuctionStatusInProgress
		st.Generation++
		return nil
	})
	if err != nil {
		return Snapshot{}, err
	}

	if err := e.finalize(ctx, gameID, prev, committed, e.saveState(committed)); err != nil {
		return Snapshot{}, err
	}

	e.scheduleExpiry(gameID, committed.State.Generation, committed.State.TimerEndTime.Sub(e.clock.Now()))
	log.Info().
		Str("game_id", gameID.String()).
		Str("cricketer_id", cricketerID.String()).
		Time("deadline", *committed.State.TimerEndTime).
		Msg("cricketer on the block")
	return committed.Snapshot(), nil
}

// Bid validates and applies a bid atomically against the current state.
// Bids are reservations checked against budget and reserve; nothing is
// deducted until settlement. The countdown is not reset by a bid.
func (e *Engine) Bid(ctx context.Context, gameID, participantID uuid.UUID, amount decimal.Decimal) (Snapshot, error) {
	var entry models.BidEntry
	var cricketerID uuid.UUID
	prev, committed, err := e.store.Mutate(gameID, func(room *Room) error {
		st := room.State
		if st.Status != models.AuctionStatusInProgress || st.CurrentCricketerID == nil {
			return fmt.Errorf("bid: %w", ErrAuctionNotActive)
		}
		p, ok := room.Participants[participantID]
		if !ok {
			return fmt.Errorf("participant %s: %w", participantID, ErrUnknownParticipant)
		}
		rosterCap := room.RosterCap(e.rules)
		if len(p.Roster) >= rosterCap {
			return fmt.Errorf("bid: %w", ErrRosterFull)
		}
		if st.CurrentHighBidderID != nil && *st.CurrentHighBidderID == participantID {
			return fmt.Errorf("bid: %w", ErrAlreadyHighBidder)
		}

		onBlock := room.CurrentCricketer()
		minBid := e.rules.MinNextBid(st.CurrentHighBid, st.CurrentHighBidderID != nil, onBlock.BasePrice)
		if amount.LessThan(minBid) {
			return fmt.Errorf("minimum bid is %s: %w", minBid.StringFixed(1), ErrBidTooLow)
		}

		slotsRemaining := rosterCap - len(p.Roster)
		if amount.GreaterThan(e.rules.MaxBid(p.BudgetRemaining, slotsRemaining)) {
			return fmt.Errorf("bid: %w", ErrBidExceedsBudget)
		}

		pid := participantID
		entry = models.BidEntry{ParticipantID: participantID, Amount: amount, At: e.clock.Now()}
		st.CurrentHighBid = amount
		st.CurrentHighBidderID = &pid
		st.BiddingLog = append(st.BiddingLog, entry)
		cricketerID = onBlock.ID
		return nil
	})
	if err != nil {
		return Snapshot{}, err
	}

	bidEvent := outEvent{events.TypeBid, events.BidPlacedPayload{
		GameID:        gameID.String(),
		CricketerID:   cricketerID.String(),
		ParticipantID: participantID.String(),
		Amount:        entry.Amount,
		PlacedAt:      entry.At,
	}}
	if err := e.finalize(ctx, gameID, prev, committed, e.saveState(committed), bidEvent); err != nil {
		return Snapshot{}, err
	}
	return committed.Snapshot(), nil
}

// AddTime extends the running countdown. The generation is unchanged: it is
// still the same countdown instance, just with a later deadline.
func (e *Engine) AddTime(ctx context.Context, gameID uuid.UUID, seconds int) (Snapshot, error) {
	if seconds <= 0 {
		return Snapshot{}, fmt.Errorf("add time: seconds must be positive: %w", ErrStateConflict)
	}
	prev, committed, err := e.store.Mutate(gameID, func(room *Room) error {
		st := room.State
		if st.Status != models.AuctionStatusInProgress || st.TimerEndTime == nil {
			return fmt.Errorf("add time: %w", ErrStateConflict)
		}
		end := st.TimerEndTime.Add(time.Duration(seconds) * time.Second)
		st.TimerEndTime = &end
		return nil
	})
	if err != nil {
		return Snapshot{}, err
	}

	if err := e.finalize(ctx, gameID, prev, committed, e.saveState(committed)); err != nil {
		return Snapshot{}, err
	}

	e.scheduleExpiry(gameID, committed.State.Generation, committed.State.TimerEndTime.Sub(e.clock.Now()))
	return committed.Snapshot(), nil
}

// Pause freezes the countdown, banking the remaining time.
func (e *Engine) Pause(ctx context.Context, gameID uuid.UUID) (Snapshot, error) {
	var remaining time.Duration
	var pausedAt time.Time
	prev, committed, err := e.store.Mutate(gameID, func(room *Room) error {
		st := room.State
		if st.Status != models.AuctionStatusInProgress || st.TimerEndTime == nil {
			return fmt.Errorf("pause: %w", ErrStateConflict)
		}
		pausedAt = e.clock.Now()
		remaining = st.TimerEndTime.Sub(pausedAt)
		if remaining < 0 {
			remaining = 0
		}
		st.TimerRemainingOnPause = &remaining
		st.TimerEndTime = nil
		st.Status = models.AuctionStatusPaused
		st.Generation++
		return nil
	})
	if err != nil {
		return Snapshot{}, err
	}

	e.cancelTimer(gameID)
	persistFn := func(ctx context.Context) error {
		if err := e.persist.SaveState(ctx, committed.State); err != nil {
			return err
		}
		return e.persist.SetGameStatus(ctx, gameID, models.GameStatusAuctionPaused)
	}
	pausedEvent := outEvent{events.TypePaused, events.PausedPayload{
		GameID:       gameID.String(),
		PausedAt:     pausedAt,
		RemainingSec: remaining.Seconds(),
	}}
	if err := e.finalize(ctx, gameID, prev, committed, persistFn, pausedEvent); err != nil {
		return Snapshot{}, err
	}
	return committed.Snapshot(), nil
}

// Resume restarts the countdown with the time banked at pause, however long
// the pause lasted.
func (e *Engine) Resume(ctx context.Context, gameID uuid.UUID) (Snapshot, error) {
	var resumedAt time.Time
	prev, committed, err := e.store.Mutate(gameID, func(room *Room) error {
		st := room.State
		if st.Status != models.AuctionStatusPaused || st.TimerRemainingOnPause == nil {
			return fmt.Errorf("resume: %w", ErrStateConflict)
		}
		resumedAt = e.clock.Now()
		end := resumedAt.Add(*st.TimerRemainingOnPause)
		st.TimerEndTime = &end
		st.TimerRemainingOnPause = nil
		st.Status = models.AuctionStatusInProgress
		st.Generation++
		return nil
	})
	if err != nil {
		return Snapshot{}, err
	}

	persistFn := func(ctx context.Context) error {
		if err := e.persist.SaveState(ctx, committed.State); err != nil {
			return err
		}
		return e.persist.SetGameStatus(ctx, gameID, models.GameStatusAuctionActive)
	}
	resumedEvent := outEvent{events.TypeResumed, events.ResumedPayload{
		GameID:    gameID.String(),
		ResumedAt: resumedAt,
		EndsAt:    *committed.State.TimerEndTime,
	}}
	if err := e.finalize(ctx, gameID, prev, committed, persistFn, resumedEvent); err != nil {
		return Snapshot{}, err
	}

	e.scheduleExpiry(gameID, committed.State.Generation, committed.State.TimerEndTime.Sub(e.clock.Now()))
	return committed.Snapshot(), nil
}

// Skip resolves the cricketer on the block as unsold regardless of standing
// bids or remaining time. Any in-flight expiry callback for the old
// generation becomes a no-op.
func (e *Engine) Skip(ctx context.Context, gameID uuid.UUID) (Snapshot, error) {
	return e.resolve(ctx, gameID, -1, true)
}

// End terminates the auction early. Nothing is settled; the cricketer on the
// block, if any, stays unresolved and the state is frozen.
func (e *Engine) End(ctx context.Context, gameID uuid.UUID) (Snapshot, error) {
	prev, committed, err := e.store.Mutate(gameID, func(room *Room) error {
		st := room.State
		if st.Status == models.AuctionStatusEnded {
			return fmt.Errorf("end: %w", ErrStateConflict)
		}
		st.CurrentCricketerID = nil
		st.CurrentHighBid = decimal.Zero
		st.CurrentHighBidderID = nil
		st.BiddingLog = []models.BidEntry{}
		st.TimerEndTime = nil
		st.TimerRemainingOnPause = nil
		st.Status = models.AuctionStatusEnded
		st.Generation++
		return nil
	})
	if err != nil {
		return Snapshot{}, err
	}

	e.cancelTimer(gameID)
	persistFn := func(ctx context.Context) error {
		if err := e.persist.SaveState(ctx, committed.State); err != nil {
			return err
		}
		return e.persist.SetGameStatus(ctx, gameID, models.GameStatusAuctionEnded)
	}
	endedEvent := outEvent{events.TypeEnded, events.EndedPayload{
		GameID:  gameID.String(),
		EndedAt: e.clock.Now(),
	}}
	if err := e.finalize(ctx, gameID, prev, committed, persistFn, endedEvent); err != nil {
		return Snapshot{}, err
	}

	log.Info().Str("game_id", gameID.String()).Msg("auction ended")
	return committed.Snapshot(), nil
}

// resolve settles the cricketer on the block: a sale if a high bidder stands
// (and forceSkip is false), otherwise a skip. gen >= 0 restricts the
// resolution to the generation a timer callback was scheduled under, which
// is what makes resolution idempotent across racing triggers.
func (e *Engine) resolve(ctx context.Context, gameID uuid.UUID, gen int64, forceSkip bool) (Snapshot, error) {
	var (
		sold        bool
		cricketerID uuid.UUID
		winnerID    uuid.UUID
		settledAt   time.Time
		ended       bool
	)
	prev, committed, err := e.store.Mutate(gameID, func(room *Room) error {
		st := room.State
		if gen >= 0 && st.Generation != gen {
			return errStaleGeneration
		}
		if st.Status != models.AuctionStatusInProgress && st.Status != models.AuctionStatusPaused {
			return fmt.Errorf("resolve: %w", ErrStateConflict)
		}
		c := room.CurrentCricketer()
		if c == nil {
			return fmt.Errorf("resolve: no cricketer on the block: %w", ErrStateConflict)
		}

		settledAt = e.clock.Now()
		cricketerID = c.ID
		if !forceSkip && st.CurrentHighBidderID != nil {
			p, ok := room.Participants[*st.CurrentHighBidderID]
			if !ok {
				return fmt.Errorf("high bidder %s: %w", *st.CurrentHighBidderID, ErrUnknownParticipant)
			}
			price := st.CurrentHighBid
			order := room.NextPickOrder()
			pid := p.ID
			c.IsPicked = true
			c.PickedByParticipantID = &pid
			c.PricePaid = &price
			c.PickOrder = &order
			p.BudgetRemaining = p.BudgetRemaining.Sub(price)
			p.Roster = append(p.Roster, models.RosterPick{
				CricketerID: c.ID,
				PricePaid:   price,
				PickOrder:   order,
				AcquiredAt:  settledAt,
			})
			st.LastWinMessage = fmt.Sprintf("%s sold to %s for %s", c.Name, p.TeamName, price.StringFixed(1))
			winnerID = p.ID
			sold = true
		} else {
			c.WasSkipped = true
			st.LastWinMessage = fmt.Sprintf("%s went unsold", c.Name)
		}

		st.CurrentCricketerID = nil
		st.CurrentHighBid = decimal.Zero
		st.CurrentHighBidderID = nil
		st.BiddingLog = []models.BidEntry{}
		st.TimerEndTime = nil
		st.TimerRemainingOnPause = nil
		st.Generation++
		if room.UnresolvedRemaining() {
			st.Status = models.AuctionStatusNotStarted
		} else {
			st.Status = models.AuctionStatusEnded
			ended = true
		}
		return nil
	})
	if err != nil {
		return Snapshot{}, err
	}

	e.cancelTimer(gameID)

	cricketer := committed.CricketerByID(cricketerID)
	var emits []outEvent
	var persistFn func(context.Context) error
	if sold {
		winner := committed.Participants[winnerID]
		persistFn = func(ctx context.Context) error {
			if err := e.persist.SaveSale(ctx, committed.State, cricketer, winner); err != nil {
				return err
			}
			if ended {
				return e.persist.SetGameStatus(ctx, gameID, models.GameStatusAuctionEnded)
			}
			return nil
		}
		emits = append(emits, outEvent{events.TypePlayerPicked, events.PlayerPickedPayload{
			GameID:          gameID.String(),
			CricketerID:     cricketer.ID.String(),
			CricketerName:   cricketer.Name,
			ParticipantID:   winner.ID.String(),
			TeamName:        winner.TeamName,
			PricePaid:       *cricketer.PricePaid,
			PickOrder:       *cricketer.PickOrder,
			BudgetRemaining: winner.BudgetRemaining,
			SettledAt:       settledAt,
		}})
	} else {
		persistFn = func(ctx context.Context) error {
			if err := e.persist.SaveSkip(ctx, committed.State, cricketer); err != nil {
				return err
			}
			if ended {
				return e.persist.SetGameStatus(ctx, gameID, models.GameStatusAuctionEnded)
			}
			return nil
		}
		emits = append(emits, outEvent{events.TypePlayerSkipped, events.PlayerSkippedPayload{
			GameID:        gameID.String(),
			CricketerID:   cricketer.ID.String(),
			CricketerName: cricketer.Name,
			SkippedAt:     settledAt,
		}})
	}
	if ended {
		emits = append(emits, outEvent{events.TypeEnded, events.EndedPayload{
			GameID:  gameID.String(),
			EndedAt: settledAt,
		}})
	}

	if err := e.finalize(ctx, gameID, prev, committed, persistFn, emits...); err != nil {
		return Snapshot{}, err
	}

	log.Info().
		Str("game_id", gameID.String()).
		Str("cricketer_id", cricketerID.String()).
		Bool("sold", sold).
		Bool("pool_exhausted", ended).
		Msg("cricketer resolved")
	return committed.Snapshot(), nil
}

// outEvent is an event emitted after a committed, persisted mutation.
type outEvent struct {
	typ     string
	payload any
}

// finalize runs the durability step for a committed mutation and then
// publishes its events plus the canonical snapshot. If the durable write
// fails after retries the in-memory commit is rolled back so a mutation is
// never broadcast and then lost.
func (e *Engine) finalize(ctx context.Context, gameID uuid.UUID, prev, committed *Room, persistFn func(context.Context) error, emits ...outEvent) error {
	if err := e.persistWithRetry(ctx, persistFn); err != nil {
		if e.store.Restore(gameID, prev, committed) {
			// The operation may have cancelled or consumed the countdown
			// timer before the durable write. The restored state is live
			// again, so re-arm its expiry.
			if st := prev.State; st.Status == models.AuctionStatusInProgress && st.TimerEndTime != nil {
				e.scheduleExpiry(gameID, st.Generation, st.TimerEndTime.Sub(e.clock.Now()))
			}
			log.Error().Err(err).Str("game_id", gameID.String()).
				Msg("durable write failed, rolled back in-memory commit")
		} else {
			log.Error().Err(err).Str("game_id", gameID.String()).
				Msg("durable write failed and a later mutation landed; state is ahead of storage")
		}
		return fmt.Errorf("persist auction state: %w", err)
	}

	for _, ev := range emits {
		e.publish(ctx, gameID, ev.typ, ev.payload)
	}
	e.publish(ctx, gameID, events.TypeUpdate, committed.Snapshot())
	return nil
}

func (e *Engine) saveState(committed *Room) func(context.Context) error {
	return func(ctx context.Context) error {
		return e.persist.SaveState(ctx, committed.State)
	}
}

func (e *Engine) persistWithRetry(ctx context.Context, fn func(context.Context) error) error {
	var err error
	for attempt := 0; attempt < e.persistAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-e.clock.After(time.Duration(attempt) * 500 * time.Millisecond):
			}
		}
		if err = fn(ctx); err == nil {
			return nil
		}
		log.Warn().Err(err).Int("attempt", attempt+1).Msg("durable write failed, retrying")
	}
	return err
}

func (e *Engine) publish(ctx context.Context, gameID uuid.UUID, eventType string, payload any) {
	if e.bcast == nil {
		return
	}
	if err := e.bcast.Publish(ctx, gameID, eventType, payload); err != nil {
		log.Warn().Err(err).
			Str("game_id", gameID.String()).
			Str("event", eventType).
			Msg("event publish failed")
	}
}

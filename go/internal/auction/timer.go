package auction

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/gully/go/internal/models"
	"github.com/rs/zerolog/log"
)

// gameTimer pairs a countdown timer with the cancel channel that releases
// its waiting goroutine when the timer is replaced or cancelled.
type gameTimer struct {
	timer  clockwork.Timer
	cancel chan struct{}
}

// stop halts the timer and wakes its goroutine. Callers must hold the entry
// in e.timers so stop runs at most once per gameTimer.
func (gt *gameTimer) stop() {
	if !gt.timer.Stop() {
		select {
		case <-gt.timer.Chan():
		default:
		}
	}
	close(gt.cancel)
}

// scheduleExpiry arms a one-shot countdown timer for the game, tagged with
// the generation it was scheduled under. Any previous timer for the game is
// replaced and its goroutine released. The generation check at fire time is
// what makes a late callback a no-op.
func (e *Engine) scheduleExpiry(gameID uuid.UUID, gen int64, d time.Duration) {
	if d < 0 {
		d = 0
	}
	gt := &gameTimer{timer: e.clock.NewTimer(d), cancel: make(chan struct{})}
	e.replaceTimer(gameID, gt)

	go func() {
		select {
		case <-gt.timer.Chan():
			e.removeTimer(gameID, gt)
			e.handleExpiry(gameID, gen)
		case <-gt.cancel:
		case <-e.stopCh:
		}
	}()

	log.Debug().
		Str("game_id", gameID.String()).
		Int64("generation", gen).
		Dur("duration", d).
		Msg("armed expiry timer")
}

// handleExpiry fires when a countdown elapses. The deadline is re-checked
// against the live state first: add-time pushes the deadline without
// changing the generation, in which case the timer is re-armed for the
// remainder instead of resolving early.
func (e *Engine) handleExpiry(gameID uuid.UUID, gen int64) {
	snap, err := e.store.Snapshot(gameID)
	if err != nil {
		return
	}
	if snap.Generation != gen || snap.Status != models.AuctionStatusInProgress {
		log.Debug().
			Str("game_id", gameID.String()).
			Int64("scheduled_generation", gen).
			Int64("current_generation", snap.Generation).
			Msg("expiry callback stale, ignoring")
		return
	}
	if snap.TimerEndTime != nil {
		if remaining := snap.TimerEndTime.Sub(e.clock.Now()); remaining > 0 {
			e.scheduleExpiry(gameID, gen, remaining)
			return
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), e.expiryTimeout)
	defer cancel()

	if _, err := e.resolve(ctx, gameID, gen, false); err != nil {
		if errors.Is(err, errStaleGeneration) || errors.Is(err, ErrStateConflict) {
			return
		}
		log.Error().Err(err).
			Str("game_id", gameID.String()).
			Int64("generation", gen).
			Msg("timer expiry resolution failed")
	}
}

// replaceTimer atomically replaces the active timer for a game, stopping any
// existing one so two timers never race for the same game.
func (e *Engine) replaceTimer(gameID uuid.UUID, gt *gameTimer) {
	e.timersMu.Lock()
	defer e.timersMu.Unlock()
	if old, ok := e.timers[gameID]; ok {
		old.stop()
	}
	e.timers[gameID] = gt
}

// cancelTimer stops and removes the active timer for a game, if any.
func (e *Engine) cancelTimer(gameID uuid.UUID) {
	e.timersMu.Lock()
	defer e.timersMu.Unlock()
	if gt, ok := e.timers[gameID]; ok {
		gt.stop()
		delete(e.timers, gameID)
	}
}

// removeTimer drops the timer entry when it fires, unless a replacement has
// already slipped in.
func (e *Engine) removeTimer(gameID uuid.UUID, gt *gameTimer) {
	e.timersMu.Lock()
	defer e.timersMu.Unlock()
	if e.timers[gameID] == gt {
		delete(e.timers, gameID)
	}
}

package auctionstate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mcdev12/gully/go/internal/auction"
	"github.com/mcdev12/gully/go/internal/models"
	"github.com/mcdev12/gully/go/internal/sqlutil"
)

// Repository persists auction state and settlement records. It implements
// both the loader's StateRepository and the engine's PersistenceAdapter.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new auction state repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetState loads the persisted auction state for a game
func (r *Repository) GetState(ctx context.Context, gameID uuid.UUID) (*models.AuctionState, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT game_id, current_cricketer_id, current_high_bid, current_high_bidder_id,
		       bidding_log, timer_end_time, timer_remaining_ms, status, last_win_message, generation
		FROM auction_state
		WHERE game_id = $1
	`, gameID)

	state, err := scanState(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("auction state for game %s: %w", gameID, auction.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get auction state: %w", err)
	}
	return state, nil
}

// SaveState upserts the auction state row for a game
func (r *Repository) SaveState(ctx context.Context, state *models.AuctionState) error {
	return saveState(ctx, r.pool, state)
}

// SaveSale records a completed sale atomically: the state row, the
// cricketer's resolution, the winner's budget and the roster pick all land
// in one transaction.
func (r *Repository) SaveSale(ctx context.Context, state *models.AuctionState, cricketer *models.Cricketer, winner *models.Participant) error {
	return sqlutil.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := saveState(ctx, tx, state); err != nil {
			return err
		}

		_, err := tx.Exec(ctx, `
			UPDATE cricketers
			SET is_picked = TRUE,
			    picked_by_participant_id = $2,
			    price_paid = $3,
			    pick_order = $4
			WHERE id = $1
		`, cricketer.ID, cricketer.PickedByParticipantID, cricketer.PricePaid, cricketer.PickOrder)
		if err != nil {
			return fmt.Errorf("failed to mark cricketer picked: %w", err)
		}

		_, err = tx.Exec(ctx, `
			UPDATE participants
			SET budget_remaining = $2
			WHERE id = $1
		`, winner.ID, winner.BudgetRemaining)
		if err != nil {
			return fmt.Errorf("failed to update winner budget: %w", err)
		}

		pick := winner.Roster[len(winner.Roster)-1]
		_, err = tx.Exec(ctx, `
			INSERT INTO roster_picks (participant_id, cricketer_id, price_paid, pick_order, acquired_at)
			VALUES ($1, $2, $3, $4, $5)
		`, winner.ID, pick.CricketerID, pick.PricePaid, pick.PickOrder, pick.AcquiredAt)
		if err != nil {
			return fmt.Errorf("failed to insert roster pick: %w", err)
		}
		return nil
	})
}

// SaveSkip records a skipped cricketer and the state row in one transaction
func (r *Repository) SaveSkip(ctx context.Context, state *models.AuctionState, cricketer *models.Cricketer) error {
	return sqlutil.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := saveState(ctx, tx, state); err != nil {
			return err
		}

		_, err := tx.Exec(ctx, `
			UPDATE cricketers
			SET was_skipped = TRUE
			WHERE id = $1
		`, cricketer.ID)
		if err != nil {
			return fmt.Errorf("failed to mark cricketer skipped: %w", err)
		}
		return nil
	})
}

// SetGameStatus transitions the game's lifecycle status
func (r *Repository) SetGameStatus(ctx context.Context, gameID uuid.UUID, status models.GameStatus) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE games
		SET status = $2, updated_at = now()
		WHERE id = $1
	`, gameID, status)
	if err != nil {
		return fmt.Errorf("failed to set game status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("game %s: %w", gameID, auction.ErrNotFound)
	}
	return nil
}

// execer covers both pgxpool.Pool and pgx.Tx so the state upsert can run
// standalone or inside a settlement transaction.
type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

func saveState(ctx context.Context, db execer, state *models.AuctionState) error {
	biddingLog, err := json.Marshal(state.BiddingLog)
	if err != nil {
		return fmt.Errorf("failed to marshal bidding log: %w", err)
	}

	var remainingMS *int64
	if state.TimerRemainingOnPause != nil {
		ms := state.TimerRemainingOnPause.Milliseconds()
		remainingMS = &ms
	}

	_, err = db.Exec(ctx, `
		INSERT INTO auction_state (
			game_id, current_cricketer_id, current_high_bid, current_high_bidder_id,
			bidding_log, timer_end_time, timer_remaining_ms, status, last_win_message, generation, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now())
		ON CONFLICT (game_id) DO UPDATE SET
			current_cricketer_id   = EXCLUDED.current_cricketer_id,
			current_high_bid       = EXCLUDED.current_high_bid,
			current_high_bidder_id = EXCLUDED.current_high_bidder_id,
			bidding_log            = EXCLUDED.bidding_log,
			timer_end_time         = EXCLUDED.timer_end_time,
			timer_remaining_ms     = EXCLUDED.timer_remaining_ms,
			status                 = EXCLUDED.status,
			last_win_message       = EXCLUDED.last_win_message,
			generation             = EXCLUDED.generation,
			updated_at             = now()
	`, state.GameID, state.CurrentCricketerID, state.CurrentHighBid, state.CurrentHighBidderID,
		biddingLog, state.TimerEndTime, remainingMS, state.Status, state.LastWinMessage, state.Generation)
	if err != nil {
		return fmt.Errorf("failed to save auction state: %w", err)
	}
	return nil
}

func scanState(row pgx.Row) (*models.AuctionState, error) {
	var (
		state       models.AuctionState
		biddingLog  []byte
		remainingMS *int64
	)
	err := row.Scan(
		&state.GameID, &state.CurrentCricketerID, &state.CurrentHighBid, &state.CurrentHighBidderID,
		&biddingLog, &state.TimerEndTime, &remainingMS, &state.Status, &state.LastWinMessage, &state.Generation,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(biddingLog, &state.BiddingLog); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bidding log: %w", err)
	}
	if state.BiddingLog == nil {
		state.BiddingLog = []models.BidEntry{}
	}
	if remainingMS != nil {
		d := time.Duration(*remainingMS) * time.Millisecond
		state.TimerRemainingOnPause = &d
	}
	return &state, nil
}

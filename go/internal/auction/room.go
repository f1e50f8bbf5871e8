package auction

import (
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/gully/go/internal/models"
	"github.com/shopspring/decimal"
)

// Room is the in-memory aggregate for one game's live auction: the auction
// state plus the participants and cricketer pool it is validated against.
// Loading everything up front is what keeps bid validation and settlement
// free of I/O inside the store's critical section.
type Room struct {
	Game         models.Game
	State        *models.AuctionState
	Participants map[uuid.UUID]*models.Participant
	Pool         []*models.Cricketer // ordered by AuctionOrder
}

// Clone returns a deep copy of the room.
func (r *Room) Clone() *Room {
	cp := &Room{
		Game:         r.Game,
		State:        r.State.Clone(),
		Participants: make(map[uuid.UUID]*models.Participant, len(r.Participants)),
		Pool:         make([]*models.Cricketer, len(r.Pool)),
	}
	for id, p := range r.Participants {
		cp.Participants[id] = p.Clone()
	}
	for i, c := range r.Pool {
		cp.Pool[i] = c.Clone()
	}
	return cp
}

// CricketerByID returns the pool entry with the given ID, or nil.
func (r *Room) CricketerByID(id uuid.UUID) *models.Cricketer {
	for _, c := range r.Pool {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// CurrentCricketer returns the cricketer on the block, or nil.
func (r *Room) CurrentCricketer() *models.Cricketer {
	if r.State.CurrentCricketerID == nil {
		return nil
	}
	return r.CricketerByID(*r.State.CurrentCricketerID)
}

// UnresolvedRemaining reports whether any cricketer in the pool has not yet
// been sold or skipped.
func (r *Room) UnresolvedRemaining() bool {
	for _, c := range r.Pool {
		if !c.Resolved() {
			return true
		}
	}
	return false
}

// NextPickOrder returns the pick order for the next sale across the game.
func (r *Room) NextPickOrder() int {
	picked := 0
	for _, c := range r.Pool {
		if c.IsPicked {
			picked++
		}
	}
	return picked + 1
}

// TimerSeconds returns the per-item countdown for this game, falling back to
// the engine rules when the game settings carry no override.
func (r *Room) TimerSeconds(rules Rules) int {
	if r.Game.Settings.TimerSeconds > 0 {
		return r.Game.Settings.TimerSeconds
	}
	return rules.TimerSeconds
}

// RosterCap returns the roster cap for this game, falling back to the engine
// rules when the game settings carry no override.
func (r *Room) RosterCap(rules Rules) int {
	if r.Game.Settings.RosterCap > 0 {
		return r.Game.Settings.RosterCap
	}
	return rules.RosterCap
}

// Snapshot is the read model published to clients after every committed
// mutation and served to reconnecting clients on demand.
type Snapshot struct {
	GameID              uuid.UUID            `json:"game_id"`
	CurrentCricketerID  *uuid.UUID           `json:"current_cricketer_id,omitempty"`
	CurrentHighBid      decimal.Decimal      `json:"current_high_bid"`
	CurrentHighBidderID *uuid.UUID           `json:"current_high_bidder_id,omitempty"`
	BiddingLog          []models.BidEntry    `json:"current_bidding_log"`
	TimerEndTime        *time.Time           `json:"timer_end_time,omitempty"`
	Status              models.AuctionStatus `json:"auction_status"`
	LastWinMessage      string               `json:"last_win_message"`
	Generation          int64                `json:"generation"`
}

// Snapshot returns the room's current read model.
func (r *Room) Snapshot() Snapshot {
	s := r.State.Clone()
	return Snapshot{
		GameID:              s.GameID,
		CurrentCricketerID:  s.CurrentCricketerID,
		CurrentHighBid:      s.CurrentHighBid,
		CurrentHighBidderID: s.CurrentHighBidderID,
		BiddingLog:          s.BiddingLog,
		TimerEndTime:        s.TimerEndTime,
		Status:              s.Status,
		LastWinMessage:      s.LastWinMessage,
		Generation:          s.Generation,
	}
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AuctionStatus represents the status of a game's live auction.
type AuctionStatus string

const (
	AuctionStatusNotStarted AuctionStatus = "NOT_STARTED"
	AuctionStatusInProgress AuctionStatus = "IN_PROGRESS"
	AuctionStatusPaused     AuctionStatus = "PAUSED"
	AuctionStatusEnded      AuctionStatus = "ENDED"
)

// BidEntry is one accepted bid in the bidding log for the cricketer on the block.
type BidEntry struct {
	ParticipantID uuid.UUID       `json:"participant_id"`
	Amount        decimal.Decimal `json:"amount"`
	At            time.Time       `json:"at"`
}

// AuctionState is the mutable heart of one game's live auction. There is
// exactly one per game; it is mutated only through the auction store.
type AuctionState struct {
	GameID uuid.UUID `json:"game_id"`

	CurrentCricketerID  *uuid.UUID      `json:"current_cricketer_id,omitempty"`
	CurrentHighBid      decimal.Decimal `json:"current_high_bid"`
	CurrentHighBidderID *uuid.UUID      `json:"current_high_bidder_id,omitempty"`
	BiddingLog          []BidEntry      `json:"bidding_log"`

	TimerEndTime          *time.Time     `json:"timer_end_time,omitempty"`
	TimerRemainingOnPause *time.Duration `json:"timer_remaining_on_pause,omitempty"`

	Status         AuctionStatus `json:"status"`
	LastWinMessage string        `json:"last_win_message"`

	// Generation is bumped on every state-changing action and is checked by
	// scheduled expiry callbacks so that stale callbacks become no-ops.
	Generation int64 `json:"generation"`
}

// Clone returns a deep copy of the auction state.
func (s *AuctionState) Clone() *AuctionState {
	cp := *s
	if s.CurrentCricketerID != nil {
		id := *s.CurrentCricketerID
		cp.CurrentCricketerID = &id
	}
	if s.CurrentHighBidderID != nil {
		id := *s.CurrentHighBidderID
		cp.CurrentHighBidderID = &id
	}
	if s.TimerEndTime != nil {
		t := *s.TimerEndTime
		cp.TimerEndTime = &t
	}
	if s.TimerRemainingOnPause != nil {
		d := *s.TimerRemainingOnPause
		cp.TimerRemainingOnPause = &d
	}
	cp.BiddingLog = make([]BidEntry, len(s.BiddingLog))
	copy(cp.BiddingLog, s.BiddingLog)
	return &cp
}

// NewAuctionState returns the idle auction state created alongside a game.
func NewAuctionState(gameID uuid.UUID) *AuctionState {
	return &AuctionState{
		GameID:         gameID,
		CurrentHighBid: decimal.Zero,
		BiddingLog:     []BidEntry{},
		Status:         AuctionStatusNotStarted,
	}
}

package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types emitted by the auction engine after every committed mutation.
// Payload types are shared between the engine, outbox and gateway packages.

const (
	TypeUpdate        = "auction:update"
	TypeBid           = "auction:bid"
	TypePlayerPicked  = "auction:player_picked"
	TypePlayerSkipped = "auction:player_skipped"
	TypePaused        = "auction:paused"
	TypeResumed       = "auction:resumed"
	TypeEnded         = "auction:ended"
)

// BidPlacedPayload is the incremental payload for an accepted bid.
type BidPlacedPayload struct {
	GameID        string          `json:"game_id"`
	CricketerID   string          `json:"cricketer_id"`
	ParticipantID string          `json:"participant_id"`
	Amount        decimal.Decimal `json:"amount"`
	PlacedAt      time.Time       `json:"placed_at"`
}

// PlayerPickedPayload is the payload for a settled sale.
type PlayerPickedPayload struct {
	GameID          string          `json:"game_id"`
	CricketerID     string          `json:"cricketer_id"`
	CricketerName   string          `json:"cricketer_name"`
	ParticipantID   string          `json:"participant_id"`
	TeamName        string          `json:"team_name"`
	PricePaid       decimal.Decimal `json:"price_paid"`
	PickOrder       int             `json:"pick_order"`
	BudgetRemaining decimal.Decimal `json:"budget_remaining"`
	SettledAt       time.Time       `json:"settled_at"`
}

// PlayerSkippedPayload is the payload for a cricketer passed without a sale.
type PlayerSkippedPayload struct {
	GameID        string    `json:"game_id"`
	CricketerID   string    `json:"cricketer_id"`
	CricketerName string    `json:"cricketer_name"`
	SkippedAt     time.Time `json:"skipped_at"`
}

// PausedPayload is the payload for a paused countdown.
type PausedPayload struct {
	GameID       string    `json:"game_id"`
	PausedAt     time.Time `json:"paused_at"`
	RemainingSec float64   `json:"remaining_sec"`
}

// ResumedPayload is the payload for a resumed countdown.
type ResumedPayload struct {
	GameID    string    `json:"game_id"`
	ResumedAt time.Time `json:"resumed_at"`
	EndsAt    time.Time `json:"ends_at"`
}

// EndedPayload is the payload for an auction reaching its terminal state.
type EndedPayload struct {
	GameID  string    `json:"game_id"`
	EndedAt time.Time `json:"ended_at"`
}

package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"time"
)

// GameStatus represents the lifecycle stage of a game.
type GameStatus string

const (
	GameStatusPreAuction    GameStatus = "PRE_AUCTION"
	GameStatusAuctionActive GameStatus = "AUCTION_ACTIVE"
	GameStatusAuctionPaused GameStatus = "AUCTION_PAUSED"
	GameStatusAuctionEnded  GameStatus = "AUCTION_ENDED"
	GameStatusScoring       GameStatus = "SCORING"
	GameStatusCompleted     GameStatus = "COMPLETED"
)

// GameSettings holds JSONB configuration for a game's auction.
type GameSettings struct {
	BudgetPerParticipant decimal.Decimal `json:"budget_per_participant"`
	RosterCap            int             `json:"roster_cap"`
	TimerSeconds         int             `json:"timer_seconds"`
}

// Game represents one fantasy-cricket auction league instance.
type Game struct {
	ID        uuid.UUID    `json:"id"`
	Name      string       `json:"name"`
	Status    GameStatus   `json:"status"`
	CreatorID uuid.UUID    `json:"creator_id"`
	Settings  GameSettings `json:"settings"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

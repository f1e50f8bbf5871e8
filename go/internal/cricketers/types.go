package cricketers

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mcdev12/gully/go/internal/models"
)

// CreateCricketerRequest represents one cricketer added to a game's pool
type CreateCricketerRequest struct {
	GameID       uuid.UUID            `json:"game_id" validate:"required"`
	Name         string               `json:"name" validate:"required"`
	Role         models.CricketerRole `json:"role" validate:"required"`
	Nationality  string               `json:"nationality"`
	BasePrice    decimal.Decimal      `json:"base_price"`
	AuctionOrder int                  `json:"auction_order"`
}

// ImportPoolRequest represents a batch import of a game's cricketer pool
type ImportPoolRequest struct {
	GameID     uuid.UUID                `json:"game_id" validate:"required"`
	Cricketers []CreateCricketerRequest `json:"cricketers" validate:"required"`
}

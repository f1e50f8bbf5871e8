package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CricketerRole represents the playing role of a cricketer.
type CricketerRole string

const (
	RoleBatter       CricketerRole = "BATTER"
	RoleBowler       CricketerRole = "BOWLER"
	RoleAllRounder   CricketerRole = "ALL_ROUNDER"
	RoleWicketKeeper CricketerRole = "WICKET_KEEPER"
)

// Cricketer represents one player in a game's auction pool.
type Cricketer struct {
	ID          uuid.UUID     `json:"id"`
	GameID      uuid.UUID     `json:"game_id"`
	Name        string        `json:"name"`
	Role        CricketerRole `json:"role"`
	Nationality string        `json:"nationality"`

	BasePrice    decimal.Decimal `json:"base_price"`
	AuctionOrder int             `json:"auction_order"`

	IsPicked              bool             `json:"is_picked"`
	PickedByParticipantID *uuid.UUID       `json:"picked_by_participant_id,omitempty"`
	PricePaid             *decimal.Decimal `json:"price_paid,omitempty"`
	PickOrder             *int             `json:"pick_order,omitempty"`
	WasSkipped            bool             `json:"was_skipped"`

	CreatedAt time.Time `json:"created_at"`
}

// Resolved reports whether the cricketer has already gone through the block.
func (c *Cricketer) Resolved() bool {
	return c.IsPicked || c.WasSkipped
}

// Clone returns a deep copy of the cricketer.
func (c *Cricketer) Clone() *Cricketer {
	cp := *c
	if c.PickedByParticipantID != nil {
		id := *c.PickedByParticipantID
		cp.PickedByParticipantID = &id
	}
	if c.PricePaid != nil {
		price := *c.PricePaid
		cp.PricePaid = &price
	}
	if c.PickOrder != nil {
		order := *c.PickOrder
		cp.PickOrder = &order
	}
	return &cp
}

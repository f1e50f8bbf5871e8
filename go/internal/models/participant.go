package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Participant is a user's entry in one game: their team, budget and roster.
type Participant struct {
	ID              uuid.UUID       `json:"id"`
	GameID          uuid.UUID       `json:"game_id"`
	UserID          uuid.UUID       `json:"user_id"`
	TeamName        string          `json:"team_name"`
	BudgetRemaining decimal.Decimal `json:"budget_remaining"`
	Roster          []RosterPick    `json:"roster"`
	CreatedAt       time.Time       `json:"created_at"`
}

// RosterPick is one cricketer won at auction, in pick order.
type RosterPick struct {
	CricketerID uuid.UUID       `json:"cricketer_id"`
	PricePaid   decimal.Decimal `json:"price_paid"`
	PickOrder   int             `json:"pick_order"`
	AcquiredAt  time.Time       `json:"acquired_at"`
}

// Clone returns a deep copy of the participant.
func (p *Participant) Clone() *Participant {
	cp := *p
	cp.Roster = make([]RosterPick, len(p.Roster))
	copy(cp.Roster, p.Roster)
	return &cp
}

package auction

import (
	"github.com/shopspring/decimal"
)

// Rules holds the monetary rules of the auction. All amounts are decimal so
// increment comparisons are exact; the granularity is half a currency unit.
type Rules struct {
	// BaseIncrement is the minimum increment while the high bid is below
	// IncrementCutover, and the floor for the very first bid on an item.
	BaseIncrement decimal.Decimal

	// UpperIncrement is the minimum increment once the high bid reaches
	// IncrementCutover.
	UpperIncrement decimal.Decimal

	// IncrementCutover is the high-bid threshold at which the minimum
	// increment switches from BaseIncrement to UpperIncrement.
	IncrementCutover decimal.Decimal

	// RosterCap is the maximum roster size per participant.
	RosterCap int

	// TimerSeconds is the countdown per cricketer, unless the game's
	// settings override it.
	TimerSeconds int
}

// DefaultRules returns the canonical auction rules: 0.5-unit increments below
// 10 units, 1-unit increments at or above, 11-man rosters, 30s countdown.
func DefaultRules() Rules {
	return Rules{
		BaseIncrement:    decimal.NewFromFloat(0.5),
		UpperIncrement:   decimal.NewFromInt(1),
		IncrementCutover: decimal.NewFromInt(10),
		RosterCap:        11,
		TimerSeconds:     30,
	}
}

// MinIncrement returns the minimum increment over the given high bid.
func (r Rules) MinIncrement(highBid decimal.Decimal) decimal.Decimal {
	if highBid.GreaterThanOrEqual(r.IncrementCutover) {
		return r.UpperIncrement
	}
	return r.BaseIncrement
}

// FirstBidFloor returns the minimum opening bid for a cricketer: the base
// increment, or the cricketer's base price if higher.
func (r Rules) FirstBidFloor(basePrice decimal.Decimal) decimal.Decimal {
	if basePrice.GreaterThan(r.BaseIncrement) {
		return basePrice
	}
	return r.BaseIncrement
}

// MinNextBid returns the minimum acceptable bid given the current high bid,
// or the opening floor when no bid has been placed yet.
func (r Rules) MinNextBid(highBid decimal.Decimal, hasBids bool, basePrice decimal.Decimal) decimal.Decimal {
	if !hasBids {
		return r.FirstBidFloor(basePrice)
	}
	return highBid.Add(r.MinIncrement(highBid))
}

// Reserve returns the budget that must stay unspent to guarantee minimum
// bids for the given number of unfilled roster slots.
func (r Rules) Reserve(slotsRemaining int) decimal.Decimal {
	if slotsRemaining <= 0 {
		return decimal.Zero
	}
	return r.BaseIncrement.Mul(decimal.NewFromInt(int64(slotsRemaining)))
}

// MaxBid returns the most a participant may bid without breaking the reserve
// for the roster slots they would still have to fill after winning this one.
func (r Rules) MaxBid(budgetRemaining decimal.Decimal, slotsRemaining int) decimal.Decimal {
	return budgetRemaining.Sub(r.Reserve(slotsRemaining - 1))
}

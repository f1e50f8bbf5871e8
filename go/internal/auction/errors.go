package auction

import "errors"

var (
	// ErrGameNotLoaded is returned when no auction room is open for the game.
	ErrGameNotLoaded = errors.New("auction room not loaded for game")

	// ErrAuctionNotActive is returned for bids while no cricketer is on the block.
	ErrAuctionNotActive = errors.New("auction is not accepting bids")

	// ErrBidTooLow is returned when a bid does not clear the minimum increment.
	ErrBidTooLow = errors.New("bid below minimum increment")

	// ErrBidExceedsBudget is returned when a bid would break the bidder's
	// reserve for their remaining roster slots.
	ErrBidExceedsBudget = errors.New("bid exceeds available budget")

	// ErrAlreadyHighBidder is returned when a participant tries to raise
	// their own standing high bid.
	ErrAlreadyHighBidder = errors.New("participant already holds the high bid")

	// ErrUnknownParticipant is returned for bids from a participant not in the game.
	ErrUnknownParticipant = errors.New("unknown participant")

	// ErrRosterFull is returned when the bidder's roster is at the cap.
	ErrRosterFull = errors.New("participant roster is full")

	// ErrStateConflict is returned when an action is not valid for the
	// auction's current status (e.g. resuming an auction that is not paused).
	ErrStateConflict = errors.New("action not valid for current auction status")

	// ErrNotFound is returned for unknown games, cricketers or participants.
	ErrNotFound = errors.New("not found")

	// ErrCricketerResolved is returned when starting the timer for a
	// cricketer that has already been sold or skipped.
	ErrCricketerResolved = errors.New("cricketer already resolved")

	// errStaleGeneration signals that a scheduled callback lost the race with
	// a later state change and should no-op. Never surfaced to callers.
	errStaleGeneration = errors.New("stale generation")
)

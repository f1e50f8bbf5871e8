package gateway

import (
	"encoding/json"
	"time"

	"github.com/mcdev12/gully/go/internal/auction"
	"github.com/mcdev12/gully/go/internal/auction/events"
)

// AuctionEvent is the wire format pushed to WebSocket clients.
type AuctionEvent struct {
	ID        string          `json:"id"`        // Event UUID
	GameID    string          `json:"game_id"`   // Game UUID
	Type      string          `json:"type"`      // Event type
	Timestamp time.Time       `json:"timestamp"` // Event creation time
	Data      json.RawMessage `json:"data"`      // Event-specific payload
}

// knownEventTypes is the set of event types the gateway forwards to clients.
var knownEventTypes = map[string]bool{
	events.TypeUpdate:        true,
	events.TypeBid:           true,
	events.TypePlayerPicked:  true,
	events.TypePlayerSkipped: true,
	events.TypePaused:        true,
	events.TypeResumed:       true,
	events.TypeEnded:         true,
}

// ParseEventPayload parses event data into the appropriate payload struct.
func ParseEventPayload(event *AuctionEvent) (interface{}, error) {
	switch event.Type {
	case events.TypeUpdate:
		var payload auction.Snapshot
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case events.TypeBid:
		var payload events.BidPlacedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case events.TypePlayerPicked:
		var payload events.PlayerPickedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case events.TypePlayerSkipped:
		var payload events.PlayerSkippedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case events.TypePaused:
		var payload events.PausedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case events.TypeResumed:
		var payload events.ResumedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case events.TypeEnded:
		var payload events.EndedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	default:
		return nil, nil // Unknown event type
	}
}

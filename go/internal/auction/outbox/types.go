package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event represents an outbox row for the application layer.
type Event struct {
	ID        uuid.UUID       `json:"id"`
	GameID    uuid.UUID       `json:"game_id"`
	EventType string          `json:"event_type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
	SentAt    *time.Time      `json:"sent_at,omitempty"`
}

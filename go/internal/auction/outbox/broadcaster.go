package outbox

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Broadcaster adapts the outbox to the auction engine's Broadcaster
// interface: publishing an event means enqueueing it durably; the worker
// ships it to the bus.
type Broadcaster struct {
	repo *Repository
}

func NewBroadcaster(repo *Repository) *Broadcaster {
	return &Broadcaster{repo: repo}
}

func (b *Broadcaster) Publish(ctx context.Context, gameID uuid.UUID, eventType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	return b.repo.InsertEvent(ctx, gameID, eventType, data)
}

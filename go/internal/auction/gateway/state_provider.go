package gateway

import (
	"context"

	"github.com/google/uuid"

	"github.com/mcdev12/gully/go/internal/auction"
)

// EngineStateProvider implements StateProvider against the in-process
// auction engine. Reconnecting clients hit this before (re)subscribing
// to the event stream.
type EngineStateProvider struct {
	engine *auction.Engine
}

// NewEngineStateProvider creates a new engine-backed state provider
func NewEngineStateProvider(engine *auction.Engine) *EngineStateProvider {
	return &EngineStateProvider{engine: engine}
}

// GetAuctionState retrieves the current read model for a game
func (p *EngineStateProvider) GetAuctionState(ctx context.Context, gameID uuid.UUID) (auction.Snapshot, error) {
	return p.engine.Read(gameID)
}

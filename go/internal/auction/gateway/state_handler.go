package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/gully/go/internal/auction"
)

// StateProvider serves the current auction read model for a game.
type StateProvider interface {
	GetAuctionState(ctx context.Context, gameID uuid.UUID) (auction.Snapshot, error)
}

// StateHandler handles HTTP requests for auction state
type StateHandler struct {
	stateProvider StateProvider
}

// NewStateHandler creates a new state handler
func NewStateHandler(provider StateProvider) *StateHandler {
	return &StateHandler{
		stateProvider: provider,
	}
}

// HandleGetAuctionState handles GET /auction/state?game_id={id}
func (h *StateHandler) HandleGetAuctionState(w http.ResponseWriter, r *http.Request) {
	gameIDStr := r.URL.Query().Get("game_id")
	if gameIDStr == "" {
		http.Error(w, "game_id is required", http.StatusBadRequest)
		return
	}

	gameID, err := uuid.Parse(gameIDStr)
	if err != nil {
		http.Error(w, "invalid game_id format", http.StatusBadRequest)
		return
	}

	state, err := h.stateProvider.GetAuctionState(r.Context(), gameID)
	if err != nil {
		if errors.Is(err, auction.ErrGameNotLoaded) || errors.Is(err, auction.ErrNotFound) {
			http.Error(w, "game not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("game_id", gameID.String()).Msg("failed to get auction state")
		http.Error(w, "Failed to get auction state", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(state); err != nil {
		log.Error().Err(err).Msg("failed to encode auction state response")
	}
}

// RegisterStateRoutes registers state-related HTTP routes
func (h *StateHandler) RegisterStateRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /auction/state", h.HandleGetAuctionState)
}

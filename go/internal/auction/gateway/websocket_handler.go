package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// WebSocketHandler upgrades HTTP requests into auction event subscriptions.
type WebSocketHandler struct {
	connections *ConnectionManager
}

func NewWebSocketHandler(cm *ConnectionManager) *WebSocketHandler {
	return &WebSocketHandler{connections: cm}
}

// HandleAuctionConnection subscribes the caller to a game's event feed.
// GET /ws/auction?game_id=...&user_id=...
func (h *WebSocketHandler) HandleAuctionConnection(w http.ResponseWriter, r *http.Request) {
	gameID, err := uuid.Parse(r.URL.Query().Get("game_id"))
	if err != nil {
		http.Error(w, "valid game_id is required", http.StatusBadRequest)
		return
	}

	// No auth on the socket; spectators without a user_id watch anonymously.
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		userID = "anonymous"
	}

	if err := h.connections.UpgradeConnection(w, r, userID, gameID); err != nil {
		log.Error().
			Err(err).
			Str("game_id", gameID.String()).
			Str("user_id", userID).
			Msg("websocket upgrade failed")
	}
}

// HandleConnectionStats reports watcher counts. GET /ws/stats
func (h *WebSocketHandler) HandleConnectionStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.connections.GetConnectionStats()); err != nil {
		log.Error().Err(err).Msg("failed to encode connection stats")
	}
}

// RegisterRoutes mounts the socket endpoints.
func (h *WebSocketHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /ws/auction", h.HandleAuctionConnection)
	mux.HandleFunc("GET /ws/stats", h.HandleConnectionStats)
}

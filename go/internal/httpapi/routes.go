package httpapi

import "net/http"

// RegisterRoutes wires the auction API onto an HTTP mux
func (h *Handlers) RegisterRoutes(mux *http.ServeMux) {
	// Live auction operations
	mux.HandleFunc("POST /auction/open", h.HandleOpenAuction)
	mux.HandleFunc("POST /auction/start", h.HandleStartAuction)
	mux.HandleFunc("POST /auction/bid", h.HandleBid)
	mux.HandleFunc("POST /auction/add-time", h.HandleAddTime)
	mux.HandleFunc("POST /auction/pause", h.HandlePause)
	mux.HandleFunc("POST /auction/resume", h.HandleResume)
	mux.HandleFunc("POST /auction/skip", h.HandleSkip)
	mux.HandleFunc("POST /auction/end", h.HandleEnd)

	// Game setup
	mux.HandleFunc("POST /games", h.HandleCreateGame)
	mux.HandleFunc("GET /games", h.HandleListGames)
	mux.HandleFunc("GET /games/{id}", h.HandleGetGame)
	mux.HandleFunc("PUT /games/{id}", h.HandleUpdateGame)
	mux.HandleFunc("DELETE /games/{id}", h.HandleDeleteGame)
	mux.HandleFunc("GET /games/{id}/participants", h.HandleGetParticipants)
	mux.HandleFunc("GET /games/{id}/cricketers", h.HandleGetPool)

	// Participants
	mux.HandleFunc("POST /participants", h.HandleJoinGame)
	mux.HandleFunc("GET /participants/{id}", h.HandleGetParticipant)
	mux.HandleFunc("PUT /participants/{id}", h.HandleUpdateParticipant)
	mux.HandleFunc("DELETE /participants/{id}", h.HandleLeaveGame)

	// Cricketer pool
	mux.HandleFunc("POST /cricketers", h.HandleCreateCricketer)
	mux.HandleFunc("POST /cricketers/import", h.HandleImportPool)
	mux.HandleFunc("GET /cricketers/{id}", h.HandleGetCricketer)
	mux.HandleFunc("DELETE /cricketers/{id}", h.HandleDeleteCricketer)
}

package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/mcdev12/gully/go/internal/auction"
	"github.com/mcdev12/gully/go/internal/cricketers"
	"github.com/mcdev12/gully/go/internal/games"
	"github.com/mcdev12/gully/go/internal/models"
	"github.com/mcdev12/gully/go/internal/participants"
)

// AuctionEngine defines what the handlers need from the live auction engine
type AuctionEngine interface {
	Open(ctx context.Context, room *auction.Room) (auction.Snapshot, error)
	Read(gameID uuid.UUID) (auction.Snapshot, error)
	Start(ctx context.Context, gameID, cricketerID uuid.UUID) (auction.Snapshot, error)
	Bid(ctx context.Context, gameID, participantID uuid.UUID, amount decimal.Decimal) (auction.Snapshot, error)
	AddTime(ctx context.Context, gameID uuid.UUID, seconds int) (auction.Snapshot, error)
	Pause(ctx context.Context, gameID uuid.UUID) (auction.Snapshot, error)
	Resume(ctx context.Context, gameID uuid.UUID) (auction.Snapshot, error)
	Skip(ctx context.Context, gameID uuid.UUID) (auction.Snapshot, error)
	End(ctx context.Context, gameID uuid.UUID) (auction.Snapshot, error)
}

// RoomLoader assembles a room from durable storage before the engine opens it
type RoomLoader interface {
	LoadRoom(ctx context.Context, gameID uuid.UUID) (*auction.Room, error)
}

// Handlers holds the HTTP handlers for the auction API
type Handlers struct {
	engine       AuctionEngine
	loader       RoomLoader
	games        *games.App
	participants *participants.App
	cricketers   *cricketers.App
}

// NewHandlers creates the API handlers
func NewHandlers(engine AuctionEngine, loader RoomLoader, gamesApp *games.App, participantsApp *participants.App, cricketersApp *cricketers.App) *Handlers {
	return &Handlers{
		engine:       engine,
		loader:       loader,
		games:        gamesApp,
		participants: participantsApp,
		cricketers:   cricketersApp,
	}
}

type openAuctionRequest struct {
	GameID uuid.UUID `json:"game_id"`
}

type startAuctionRequest struct {
	GameID      uuid.UUID `json:"game_id"`
	CricketerID uuid.UUID `json:"cricketer_id"`
}

type bidRequest struct {
	GameID        uuid.UUID       `json:"game_id"`
	ParticipantID uuid.UUID       `json:"participant_id"`
	Amount        decimal.Decimal `json:"amount"`
}

type addTimeRequest struct {
	GameID  uuid.UUID `json:"game_id"`
	Seconds int       `json:"seconds"`
}

type gameOnlyRequest struct {
	GameID uuid.UUID `json:"game_id"`
}

// HandleOpenAuction loads a game's room from storage and registers it with
// the engine. POST /auction/open
func (h *Handlers) HandleOpenAuction(w http.ResponseWriter, r *http.Request) {
	var req openAuctionRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if req.GameID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "game_id is required")
		return
	}

	room, err := h.loader.LoadRoom(r.Context(), req.GameID)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	snap, err := h.engine.Open(r.Context(), room)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// HandleStartAuction puts a cricketer on the block. POST /auction/start
func (h *Handlers) HandleStartAuction(w http.ResponseWriter, r *http.Request) {
	var req startAuctionRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if req.GameID == uuid.Nil || req.CricketerID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "game_id and cricketer_id are required")
		return
	}

	snap, err := h.engine.Start(r.Context(), req.GameID, req.CricketerID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// HandleBid places a bid on the cricketer on the block. POST /auction/bid
func (h *Handlers) HandleBid(w http.ResponseWriter, r *http.Request) {
	var req bidRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if req.GameID == uuid.Nil || req.ParticipantID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "game_id and participant_id are required")
		return
	}
	if !req.Amount.IsPositive() {
		writeError(w, http.StatusBadRequest, "amount must be positive")
		return
	}

	snap, err := h.engine.Bid(r.Context(), req.GameID, req.ParticipantID, req.Amount)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// HandleAddTime extends the countdown for the cricketer on the block.
// POST /auction/add-time
func (h *Handlers) HandleAddTime(w http.ResponseWriter, r *http.Request) {
	var req addTimeRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if req.GameID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "game_id is required")
		return
	}
	if req.Seconds <= 0 {
		writeError(w, http.StatusBadRequest, "seconds must be positive")
		return
	}

	snap, err := h.engine.AddTime(r.Context(), req.GameID, req.Seconds)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// HandlePause freezes the auction. POST /auction/pause
func (h *Handlers) HandlePause(w http.ResponseWriter, r *http.Request) {
	h.gameAction(w, r, h.engine.Pause)
}

// HandleResume restarts a paused auction. POST /auction/resume
func (h *Handlers) HandleResume(w http.ResponseWriter, r *http.Request) {
	h.gameAction(w, r, h.engine.Resume)
}

// HandleSkip force-skips the cricketer on the block. POST /auction/skip
func (h *Handlers) HandleSkip(w http.ResponseWriter, r *http.Request) {
	h.gameAction(w, r, h.engine.Skip)
}

// HandleEnd ends the auction for a game. POST /auction/end
func (h *Handlers) HandleEnd(w http.ResponseWriter, r *http.Request) {
	h.gameAction(w, r, h.engine.End)
}

func (h *Handlers) gameAction(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, gameID uuid.UUID) (auction.Snapshot, error)) {
	var req gameOnlyRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if req.GameID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "game_id is required")
		return
	}

	snap, err := fn(r.Context(), req.GameID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// HandleCreateGame creates a game. POST /games
func (h *Handlers) HandleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req games.CreateGameRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	game, err := h.games.CreateGame(r.Context(), req)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, game)
}

// HandleGetGame retrieves a game. GET /games/{id}
func (h *Handlers) HandleGetGame(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	game, err := h.games.GetGame(r.Context(), id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, game)
}

// HandleListGames lists all games. GET /games
func (h *Handlers) HandleListGames(w http.ResponseWriter, r *http.Request) {
	list, err := h.games.ListGames(r.Context())
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if list == nil {
		list = []*models.Game{}
	}
	writeJSON(w, http.StatusOK, list)
}

// HandleUpdateGame updates a game's name and settings. PUT /games/{id}
func (h *Handlers) HandleUpdateGame(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req games.UpdateGameRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	game, err := h.games.UpdateGame(r.Context(), id, req)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, game)
}

// HandleDeleteGame deletes a game. DELETE /games/{id}
func (h *Handlers) HandleDeleteGame(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.games.DeleteGame(r.Context(), id); err != nil {
		writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleJoinGame adds a participant to a game. POST /participants
func (h *Handlers) HandleJoinGame(w http.ResponseWriter, r *http.Request) {
	var req participants.CreateParticipantRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	participant, err := h.participants.CreateParticipant(r.Context(), req)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, participant)
}

// HandleGetParticipants lists a game's participants. GET /games/{id}/participants
func (h *Handlers) HandleGetParticipants(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	list, err := h.participants.GetParticipantsByGame(r.Context(), id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if list == nil {
		list = []*models.Participant{}
	}
	writeJSON(w, http.StatusOK, list)
}

// HandleGetParticipant retrieves one participant. GET /participants/{id}
func (h *Handlers) HandleGetParticipant(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	participant, err := h.participants.GetParticipant(r.Context(), id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, participant)
}

// HandleUpdateParticipant renames a participant's team. PUT /participants/{id}
func (h *Handlers) HandleUpdateParticipant(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req participants.UpdateParticipantRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	participant, err := h.participants.UpdateParticipant(r.Context(), id, req)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, participant)
}

// HandleLeaveGame removes a participant before the auction starts.
// DELETE /participants/{id}
func (h *Handlers) HandleLeaveGame(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.participants.DeleteParticipant(r.Context(), id); err != nil {
		writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleCreateCricketer adds one cricketer to a game's pool. POST /cricketers
func (h *Handlers) HandleCreateCricketer(w http.ResponseWriter, r *http.Request) {
	var req cricketers.CreateCricketerRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	cricketer, err := h.cricketers.CreateCricketer(r.Context(), req)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, cricketer)
}

// HandleGetCricketer retrieves one cricketer. GET /cricketers/{id}
func (h *Handlers) HandleGetCricketer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	cricketer, err := h.cricketers.GetCricketer(r.Context(), id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cricketer)
}

// HandleDeleteCricketer removes an unresolved cricketer from the pool.
// DELETE /cricketers/{id}
func (h *Handlers) HandleDeleteCricketer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.cricketers.DeleteCricketer(r.Context(), id); err != nil {
		writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleImportPool imports a game's cricketer pool. POST /cricketers/import
func (h *Handlers) HandleImportPool(w http.ResponseWriter, r *http.Request) {
	var req cricketers.ImportPoolRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	if err := h.cricketers.ImportPool(r.Context(), req); err != nil {
		writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// HandleGetPool lists a game's cricketer pool. GET /games/{id}/cricketers
func (h *Handlers) HandleGetPool(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	list, err := h.cricketers.GetCricketersByGame(r.Context(), id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if list == nil {
		list = []*models.Cricketer{}
	}
	writeJSON(w, http.StatusOK, list)
}

func decodeRequest(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeEngineError maps domain errors to HTTP status codes
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auction.ErrNotFound), errors.Is(err, auction.ErrGameNotLoaded):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, auction.ErrBidTooLow),
		errors.Is(err, auction.ErrBidExceedsBudget),
		errors.Is(err, auction.ErrAlreadyHighBidder),
		errors.Is(err, auction.ErrUnknownParticipant),
		errors.Is(err, auction.ErrRosterFull):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, auction.ErrAuctionNotActive),
		errors.Is(err, auction.ErrStateConflict),
		errors.Is(err, auction.ErrCricketerResolved):
		writeError(w, http.StatusConflict, err.Error())
	default:
		log.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

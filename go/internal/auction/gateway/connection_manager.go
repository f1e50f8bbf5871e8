package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// ConnectionManager fans auction events out to the WebSocket clients
// watching each game.
type ConnectionManager struct {
	mu    sync.RWMutex
	rooms map[uuid.UUID]map[*wsClient]struct{}

	upgrader    websocket.Upgrader
	config      ConnectionConfig
	broadcastCh chan BroadcastMessage
}

// wsClient is one subscriber socket. The socket is push-only: bids and
// admin actions go through the HTTP API.
type wsClient struct {
	id       string
	userID   string
	gameID   uuid.UUID
	conn     *websocket.Conn
	send     chan []byte
	mgr      *ConnectionManager
	joinedAt time.Time
}

// ConnectionConfig tunes socket timeouts and buffer sizes.
type ConnectionConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	CheckOrigin     func(r *http.Request) bool
}

// BroadcastMessage pairs an event with the game whose watchers get it.
type BroadcastMessage struct {
	GameID uuid.UUID
	Event  *AuctionEvent
}

// DefaultConnectionConfig returns sane defaults for a browser audience.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  1024,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		// Allow all origins in development, restrict in production.
		CheckOrigin: func(r *http.Request) bool { return true },
	}
}

// NewConnectionManager creates a manager with no rooms.
func NewConnectionManager(config ConnectionConfig) *ConnectionManager {
	return &ConnectionManager{
		rooms: make(map[uuid.UUID]map[*wsClient]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config:      config,
		broadcastCh: make(chan BroadcastMessage, 1000), // buffer for bid bursts
	}
}

// Start drains the broadcast channel until ctx is cancelled.
func (cm *ConnectionManager) Start(ctx context.Context) {
	log.Info().Msg("connection manager started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("connection manager shutting down")
			return
		case msg := <-cm.broadcastCh:
			cm.fanOut(msg)
		}
	}
}

// UpgradeConnection upgrades the request to a WebSocket and subscribes it
// to the given game's events.
func (cm *ConnectionManager) UpgradeConnection(w http.ResponseWriter, r *http.Request, userID string, gameID uuid.UUID) error {
	conn, err := cm.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket upgrade failed")
		return fmt.Errorf("upgrade connection: %w", err)
	}

	client := &wsClient{
		id:       uuid.New().String(),
		userID:   userID,
		gameID:   gameID,
		conn:     conn,
		send:     make(chan []byte, 256),
		mgr:      cm,
		joinedAt: time.Now(),
	}

	cm.subscribe(client)
	go client.writePump()
	go client.readPump()

	log.Info().
		Str("connection_id", client.id).
		Str("user_id", userID).
		Str("game_id", gameID.String()).
		Msg("websocket connected")
	return nil
}

func (cm *ConnectionManager) subscribe(c *wsClient) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	room := cm.rooms[c.gameID]
	if room == nil {
		room = make(map[*wsClient]struct{})
		cm.rooms[c.gameID] = room
	}
	room[c] = struct{}{}
}

// unsubscribe is idempotent; both pumps call it on the way out.
func (cm *ConnectionManager) unsubscribe(c *wsClient) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	room, ok := cm.rooms[c.gameID]
	if !ok {
		return
	}
	if _, ok := room[c]; !ok {
		return
	}
	delete(room, c)
	close(c.send)
	if len(room) == 0 {
		delete(cm.rooms, c.gameID)
	}

	log.Info().
		Str("connection_id", c.id).
		Str("user_id", c.userID).
		Str("game_id", c.gameID.String()).
		Msg("websocket disconnected")
}

// BroadcastToGame queues an event for every watcher of the game. Drops the
// event if the broadcast buffer is full rather than blocking the caller.
func (cm *ConnectionManager) BroadcastToGame(gameID uuid.UUID, event *AuctionEvent) {
	select {
	case cm.broadcastCh <- BroadcastMessage{GameID: gameID, Event: event}:
	default:
		log.Warn().Str("game_id", gameID.String()).Msg("broadcast channel full, dropping event")
	}
}

func (cm *ConnectionManager) fanOut(msg BroadcastMessage) {
	// Snapshot the room under the read lock; writes to slow sockets must
	// not hold it.
	cm.mu.RLock()
	room := cm.rooms[msg.GameID]
	targets := make([]*wsClient, 0, len(room))
	for c := range room {
		targets = append(targets, c)
	}
	cm.mu.RUnlock()

	if len(targets) == 0 {
		return
	}

	data, err := json.Marshal(msg.Event)
	if err != nil {
		log.Error().Err(err).Str("event_type", msg.Event.Type).Msg("marshal broadcast event")
		return
	}

	for _, c := range targets {
		select {
		case c.send <- data:
		default:
			// Slow or dead socket; cut it loose so the room keeps moving.
			log.Warn().
				Str("connection_id", c.id).
				Str("user_id", c.userID).
				Msg("send buffer full, closing connection")
			cm.unsubscribe(c)
			c.conn.Close()
		}
	}

	log.Debug().
		Str("event_type", msg.Event.Type).
		Str("game_id", msg.GameID.String()).
		Int("connections", len(targets)).
		Msg("event broadcast")
}

// GetConnectionStats reports watcher counts per game.
func (cm *ConnectionManager) GetConnectionStats() map[string]interface{} {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	total := 0
	perGame := make(map[string]int, len(cm.rooms))
	for gameID, room := range cm.rooms {
		perGame[gameID.String()] = len(room)
		total += len(room)
	}

	return map[string]interface{}{
		"total_connections": total,
		"active_games":      len(cm.rooms),
		"game_connections":  perGame,
	}
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(c.mgr.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		c.mgr.unsubscribe(c)
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.mgr.config.WriteTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Debug().Err(err).Str("connection_id", c.id).Msg("websocket write failed")
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.mgr.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *wsClient) readPump() {
	defer func() {
		c.mgr.unsubscribe(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.mgr.config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.mgr.config.ReadTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.mgr.config.ReadTimeout))
	})

	for {
		// The socket is push-only; inbound frames only feed the read
		// deadline and get logged.
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("connection_id", c.id).Msg("unexpected websocket close")
			}
			return
		}
		log.Debug().
			Str("connection_id", c.id).
			Str("user_id", c.userID).
			RawJSON("message", data).
			Msg("client message ignored")
		c.conn.SetReadDeadline(time.Now().Add(c.mgr.config.ReadTimeout))
	}
}

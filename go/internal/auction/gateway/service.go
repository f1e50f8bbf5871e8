package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
)

// Service is the auction gateway: it consumes published auction events,
// fans them out to WebSocket watchers and serves snapshots to clients
// that reconnect mid-auction.
type Service struct {
	connections *ConnectionManager
	sockets     *WebSocketHandler
	consumer    *EventConsumer
	state       *StateHandler
}

// Config bundles the gateway's tunables.
type Config struct {
	ConnectionConfig ConnectionConfig
	JetStreamConfig  JetStreamConsumerConfig
}

// DefaultConfig returns the stock gateway wiring.
func DefaultConfig() Config {
	return Config{
		ConnectionConfig: DefaultConnectionConfig(),
		JetStreamConfig:  DefaultJetStreamConsumerConfig(),
	}
}

// NewService wires the connection manager, JetStream consumer and state
// handler together.
func NewService(config Config, stateProvider StateProvider) (*Service, error) {
	connections := NewConnectionManager(config.ConnectionConfig)

	consumer, err := NewEventConsumer(connections, config.JetStreamConfig)
	if err != nil {
		return nil, fmt.Errorf("create event consumer: %w", err)
	}

	return &Service{
		connections: connections,
		sockets:     NewWebSocketHandler(connections),
		consumer:    consumer,
		state:       NewStateHandler(stateProvider),
	}, nil
}

// Start runs the gateway until ctx is cancelled, then shuts it down.
func (s *Service) Start(ctx context.Context) error {
	log.Info().Msg("starting auction gateway")

	go s.connections.Start(ctx)
	go func() {
		if err := s.consumer.Start(ctx); err != nil {
			log.Error().Err(err).Msg("event consumer failed")
		}
	}()

	<-ctx.Done()
	return s.Stop()
}

// Stop closes the event consumer. The connection manager exits with the
// context it was started under.
func (s *Service) Stop() error {
	if err := s.consumer.Stop(); err != nil {
		log.Error().Err(err).Msg("failed to stop event consumer")
	}
	log.Info().Msg("auction gateway stopped")
	return nil
}

// RegisterRoutes mounts the WebSocket and snapshot endpoints.
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	s.sockets.RegisterRoutes(mux)
	s.state.RegisterStateRoutes(mux)
}

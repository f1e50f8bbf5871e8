package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/nats-io/nats.go"

	"github.com/mcdev12/gully/go/internal/auction"
	"github.com/mcdev12/gully/go/internal/auction/gateway"
	"github.com/mcdev12/gully/go/internal/auction/outbox"
	"github.com/mcdev12/gully/go/internal/auctionstate"
	"github.com/mcdev12/gully/go/internal/cricketers"
	"github.com/mcdev12/gully/go/internal/games"
	"github.com/mcdev12/gully/go/internal/httpapi"
	"github.com/mcdev12/gully/go/internal/participants"
)

type Services struct {
	Games        *games.App
	Participants *participants.App
	Cricketers   *cricketers.App
	Engine       *auction.Engine
	Loader       *auction.Loader
	Handlers     *httpapi.Handlers
	OutboxWorker *outbox.Worker
	Gateway      *gateway.Service

	natsConn *nats.Conn
}

func setupServices(ctx context.Context, pool *pgxpool.Pool, rules auction.Rules) (*Services, error) {
	// Wire up dependency injection chain
	// Database layer → Repository layer → App layer → Engine / HTTP layer

	// Setup apps
	gamesRepo := games.NewRepository(pool)
	gamesApp := games.NewApp(gamesRepo)

	participantsRepo := participants.NewRepository(pool)
	participantsApp := participants.NewApp(participantsRepo, gamesRepo)

	cricketersRepo := cricketers.NewRepository(pool)
	cricketersApp := cricketers.NewApp(cricketersRepo)

	stateRepo := auctionstate.NewRepository(pool)

	// Outbox: engine publishes into the table, the worker relays to NATS
	outboxRepo := outbox.NewRepository(pool)
	broadcaster := outbox.NewBroadcaster(outboxRepo)

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	natsURL := getEnv("NATS_URL", nats.DefaultURL)
	nc, err := nats.Connect(natsURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	publisher, err := outbox.NewNATSPublisher(ctx, nc, outbox.DefaultNATSPublisherConfig(), slogger)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create NATS publisher: %w", err)
	}

	workerConfig := outbox.DefaultConfig()
	outboxWorker := outbox.NewWorker(pool, outboxRepo, publisher, workerConfig, slogger)

	// Auction engine
	clock := clockwork.NewRealClock()
	store := auction.NewStore()
	engine := auction.NewEngine(store, rules, clock, stateRepo, broadcaster)
	loader := auction.NewLoader(gamesRepo, participantsRepo, cricketersRepo, stateRepo, clock)

	// Gateway fans events back out over WebSocket
	gatewayConfig := gateway.DefaultConfig()
	gatewayConfig.JetStreamConfig.URL = natsURL
	stateProvider := gateway.NewEngineStateProvider(engine)
	gatewaySvc, err := gateway.NewService(gatewayConfig, stateProvider)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create auction gateway: %w", err)
	}

	handlers := httpapi.NewHandlers(engine, loader, gamesApp, participantsApp, cricketersApp)

	return &Services{
		Games:        gamesApp,
		Participants: participantsApp,
		Cricketers:   cricketersApp,
		Engine:       engine,
		Loader:       loader,
		Handlers:     handlers,
		OutboxWorker: outboxWorker,
		Gateway:      gatewaySvc,
		natsConn:     nc,
	}, nil
}

// Shutdown stops background workers and closes the NATS connection
func (s *Services) Shutdown() {
	s.Engine.Shutdown()
	if err := s.OutboxWorker.Stop(); err != nil {
		slog.Error("failed to stop outbox worker", "error", err)
	}
	if s.natsConn != nil {
		s.natsConn.Close()
	}
}

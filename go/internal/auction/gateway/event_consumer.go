package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"
)

// JetStreamConsumerConfig tunes the durable consumer feeding the gateway.
type JetStreamConsumerConfig struct {
	URL           string
	StreamName    string
	ConsumerName  string
	SubjectFilter string
	MaxDeliver    int
	AckWait       time.Duration
	MaxAckPending int
	MaxReconnects int
	ReconnectWait time.Duration
}

// DefaultJetStreamConsumerConfig returns the stock auction event wiring.
func DefaultJetStreamConsumerConfig() JetStreamConsumerConfig {
	return JetStreamConsumerConfig{
		URL:           nats.DefaultURL,
		StreamName:    "AUCTION_EVENTS",
		ConsumerName:  "auction-gateway",
		SubjectFilter: "auction.events.>",
		MaxDeliver:    5,
		AckWait:       30 * time.Second,
		MaxAckPending: 100,
		MaxReconnects: -1,
		ReconnectWait: 2 * time.Second,
	}
}

// EventConsumer pulls auction events off JetStream and hands them to the
// connection manager for fan-out.
type EventConsumer struct {
	cm       *ConnectionManager
	nc       *nats.Conn
	consumer jetstream.Consumer
	config   JetStreamConsumerConfig
}

// NewEventConsumer connects to NATS and binds the durable consumer.
func NewEventConsumer(cm *ConnectionManager, config JetStreamConsumerConfig) (*EventConsumer, error) {
	nc, err := nats.Connect(config.URL,
		nats.MaxReconnects(config.MaxReconnects),
		nats.ReconnectWait(config.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	consumer, err := bindConsumer(context.Background(), js, config)
	if err != nil {
		nc.Close()
		return nil, err
	}

	return &EventConsumer{cm: cm, nc: nc, consumer: consumer, config: config}, nil
}

// bindConsumer fetches the durable consumer, creating it on first run.
func bindConsumer(ctx context.Context, js jetstream.JetStream, config JetStreamConsumerConfig) (jetstream.Consumer, error) {
	stream, err := js.Stream(ctx, config.StreamName)
	if err != nil {
		return nil, fmt.Errorf("get stream %s: %w", config.StreamName, err)
	}

	if consumer, err := stream.Consumer(ctx, config.ConsumerName); err == nil {
		log.Info().
			Str("consumer", config.ConsumerName).
			Str("stream", config.StreamName).
			Msg("using existing JetStream consumer")
		return consumer, nil
	}

	// Every bid matters to watching clients, so deliver new messages in
	// order rather than last-per-subject.
	consumer, err := stream.CreateConsumer(ctx, jetstream.ConsumerConfig{
		Name:          config.ConsumerName,
		Durable:       config.ConsumerName,
		Description:   "Auction gateway WebSocket consumer",
		FilterSubject: config.SubjectFilter,
		DeliverPolicy: jetstream.DeliverNewPolicy,
		AckPolicy:     jetstream.AckExplicitPolicy,
		MaxDeliver:    config.MaxDeliver,
		AckWait:       config.AckWait,
		MaxAckPending: config.MaxAckPending,
		ReplayPolicy:  jetstream.ReplayInstantPolicy,
	})
	if err != nil {
		return nil, fmt.Errorf("create consumer: %w", err)
	}

	log.Info().
		Str("consumer", config.ConsumerName).
		Str("stream", config.StreamName).
		Msg("created JetStream consumer")
	return consumer, nil
}

// Start consumes events until ctx is cancelled.
func (ec *EventConsumer) Start(ctx context.Context) error {
	log.Info().
		Str("consumer", ec.config.ConsumerName).
		Str("stream", ec.config.StreamName).
		Msg("starting JetStream event consumer")

	consumeCtx, err := ec.consumer.Consume(func(msg jetstream.Msg) {
		if err := ec.handleMessage(msg); err != nil {
			log.Error().Err(err).Str("subject", msg.Subject()).Msg("failed to process message")
			if nakErr := msg.Nak(); nakErr != nil {
				log.Error().Err(nakErr).Msg("failed to NAK message")
			}
			return
		}
		if ackErr := msg.Ack(); ackErr != nil {
			log.Error().Err(ackErr).Msg("failed to ACK message")
		}
	})
	if err != nil {
		return fmt.Errorf("start consumer: %w", err)
	}

	<-ctx.Done()
	log.Info().Msg("event consumer shutting down")
	consumeCtx.Stop()
	return nil
}

// handleMessage validates one published envelope and broadcasts it.
func (ec *EventConsumer) handleMessage(msg jetstream.Msg) error {
	var envelope struct {
		EventID   string          `json:"eventId"`
		EventType string          `json:"eventType"`
		GameID    string          `json:"gameId"`
		Timestamp time.Time       `json:"timestamp"`
		Payload   json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(msg.Data(), &envelope); err != nil {
		return fmt.Errorf("unmarshal event envelope: %w", err)
	}

	gameID, err := uuid.Parse(envelope.GameID)
	if err != nil {
		return fmt.Errorf("parse game ID %q: %w", envelope.GameID, err)
	}
	if !knownEventTypes[envelope.EventType] {
		return fmt.Errorf("unknown event type: %s", envelope.EventType)
	}

	log.Debug().
		Str("event_id", envelope.EventID).
		Str("game_id", envelope.GameID).
		Str("event_type", envelope.EventType).
		Msg("forwarding auction event")

	ec.cm.BroadcastToGame(gameID, &AuctionEvent{
		ID:        envelope.EventID,
		GameID:    envelope.GameID,
		Type:      envelope.EventType,
		Timestamp: envelope.Timestamp,
		Data:      envelope.Payload,
	})
	return nil
}

// Stop closes the NATS connection.
func (ec *EventConsumer) Stop() error {
	log.Info().Msg("stopping event consumer")
	if ec.nc != nil {
		ec.nc.Close()
	}
	return nil
}

// GetConsumerInfo returns live consumer state for diagnostics.
func (ec *EventConsumer) GetConsumerInfo(ctx context.Context) (*jetstream.ConsumerInfo, error) {
	return ec.consumer.Info(ctx)
}

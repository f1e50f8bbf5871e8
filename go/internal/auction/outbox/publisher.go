package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// NATSPublisherConfig holds configuration for the JetStream publisher.
type NATSPublisherConfig struct {
	StreamName    string
	SubjectPrefix string // e.g. "auction.events"
}

func DefaultNATSPublisherConfig() NATSPublisherConfig {
	return NATSPublisherConfig{
		StreamName:    "AUCTION_EVENTS",
		SubjectPrefix: "auction.events",
	}
}

// NATSPublisher publishes outbox events to a NATS JetStream stream.
type NATSPublisher struct {
	js     jetstream.JetStream
	config NATSPublisherConfig
	logger *slog.Logger
}

// NewNATSPublisher creates the publisher and ensures the stream exists.
func NewNATSPublisher(ctx context.Context, nc *nats.Conn, cfg NATSPublisherConfig, logger *slog.Logger) (*NATSPublisher, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     cfg.StreamName,
		Subjects: []string{cfg.SubjectPrefix + ".>"},
	})
	if err != nil {
		return nil, fmt.Errorf("ensure stream %s: %w", cfg.StreamName, err)
	}

	return &NATSPublisher{js: js, config: cfg, logger: logger}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, event Event) error {
	subject := fmt.Sprintf("%s.%s", p.config.SubjectPrefix, subjectToken(event.EventType))

	envelope := map[string]interface{}{
		"eventId":   event.ID.String(),
		"eventType": event.EventType,
		"gameId":    event.GameID.String(),
		"timestamp": event.CreatedAt,
		"payload":   json.RawMessage(event.Payload),
	}

	messageBytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if _, err := p.js.Publish(ctx, subject, messageBytes); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}

	p.logger.Debug("published event",
		slog.String("subject", subject),
		slog.String("event_id", event.ID.String()))
	return nil
}

// subjectToken maps an event type like "auction:bid" to the subject token
// "bid"; colons are not welcome in NATS subjects.
func subjectToken(eventType string) string {
	token := strings.TrimPrefix(eventType, "auction:")
	return strings.ReplaceAll(token, ":", "_")
}

// MockPublisher is a simple in-memory publisher for development/testing.
type MockPublisher struct {
	logger *slog.Logger

	mu     sync.Mutex
	events []Event
}

func NewMockPublisher(logger *slog.Logger) *MockPublisher {
	return &MockPublisher{logger: logger}
}

func (p *MockPublisher) Publish(ctx context.Context, event Event) error {
	p.mu.Lock()
	p.events = append(p.events, event)
	p.mu.Unlock()
	p.logger.Info("publishing event",
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", event.EventType),
		slog.String("game_id", event.GameID.String()))
	return nil
}

// Events returns the events published so far.
func (p *MockPublisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}

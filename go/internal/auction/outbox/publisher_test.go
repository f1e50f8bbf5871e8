package outbox

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubjectToken(t *testing.T) {
	assert.Equal(t, "bid", subjectToken("auction:bid"))
	assert.Equal(t, "player_picked", subjectToken("auction:player_picked"))
	assert.Equal(t, "custom_thing", subjectToken("custom:thing"))
}

func TestMockPublisherRecordsEvents(t *testing.T) {
	pub := NewMockPublisher(slog.New(slog.NewTextHandler(io.Discard, nil)))

	event := Event{
		ID:        uuid.New(),
		GameID:    uuid.New(),
		EventType: "auction:bid",
		Payload:   json.RawMessage(`{"amount":"2.5"}`),
	}
	require.NoError(t, pub.Publish(context.Background(), event))

	got := pub.Events()
	require.Len(t, got, 1)
	assert.Equal(t, event.ID, got[0].ID)
	assert.Equal(t, "auction:bid", got[0].EventType)
}

package gateway

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/gully/go/internal/auction"
	"github.com/mcdev12/gully/go/internal/auction/events"
)

func TestKnownEventTypesCoverEngineEvents(t *testing.T) {
	for _, typ := range []string{
		events.TypeUpdate,
		events.TypeBid,
		events.TypePlayerPicked,
		events.TypePlayerSkipped,
		events.TypePaused,
		events.TypeResumed,
		events.TypeEnded,
	} {
		assert.True(t, knownEventTypes[typ], typ)
	}
	assert.False(t, knownEventTypes["auction:unheard_of"])
}

func TestParseEventPayload(t *testing.T) {
	bid := &AuctionEvent{
		Type: events.TypeBid,
		Data: json.RawMessage(`{"game_id":"g","participant_id":"p","amount":"2.5"}`),
	}
	parsed, err := ParseEventPayload(bid)
	require.NoError(t, err)
	payload, ok := parsed.(events.BidPlacedPayload)
	require.True(t, ok)
	assert.Equal(t, "p", payload.ParticipantID)
	assert.Equal(t, "2.5", payload.Amount.String())

	update := &AuctionEvent{
		Type: events.TypeUpdate,
		Data: json.RawMessage(`{"auction_status":"IN_PROGRESS","current_high_bid":"3"}`),
	}
	parsed, err = ParseEventPayload(update)
	require.NoError(t, err)
	snap, ok := parsed.(auction.Snapshot)
	require.True(t, ok)
	assert.Equal(t, "IN_PROGRESS", string(snap.Status))

	unknown := &AuctionEvent{Type: "auction:unheard_of", Data: json.RawMessage(`{}`)}
	parsed, err = ParseEventPayload(unknown)
	require.NoError(t, err)
	assert.Nil(t, parsed)
}

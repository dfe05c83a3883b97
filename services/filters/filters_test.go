package filters

import (
	game_constants "Recit/constants/game"
	models "Recit/models/postgres"
	"Recit/services/geo"
	"Recit/services/pubsub"
	"Recit/services/store/memstore"
	"Recit/services/views"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var seattle = geo.Bounds{North: 47.7, West: -122.4, South: 47.5, East: -122.2}

func gameAdded(lat, lng float64, start time.Time) pubsub.Event {
	return pubsub.Event{
		Topic:   pubsub.GameAdded,
		Payload: pubsub.GameAddedPayload{Game: views.Game{ID: 1, Latitude: lat, Longitude: lng, StartTime: start}},
	}
}

func TestGameAddedBounds(t *testing.T) {
	set := NewSet(memstore.New(), 15, seattle)
	start := time.Now().Add(time.Hour)

	tests := []struct {
		name   string
		bounds []float64
		want   bool
	}{
		{"inside viewport", []float64{47.70, -122.40, 47.50, -122.20}, true},
		{"south of the viewport", []float64{47.70, -122.40, 47.61, -122.20}, false},
		{"on the south edge", []float64{47.70, -122.40, 47.60, -122.20}, true},
		{"on the west edge", []float64{47.70, -122.33, 47.50, -122.20}, true},
		{"east of the viewport", []float64{47.70, -122.50, 47.50, -122.34}, false},
		{"default viewport", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Variables{Bounds: tt.bounds}
			assert.Equal(t, tt.want, set.Match(gameAdded(47.60, -122.33, start), v))
		})
	}
}

func TestGameAddedCursor(t *testing.T) {
	set := NewSet(memstore.New(), 15, seattle)
	cursor := time.Now().Add(24 * time.Hour)

	before := gameAdded(47.6, -122.3, cursor.Add(-time.Hour))
	after := gameAdded(47.6, -122.3, cursor.Add(time.Hour))

	full := Variables{Cursor: &cursor, Loaded: 15}
	assert.True(t, set.Match(before, full))
	assert.False(t, set.Match(after, full))

	// the first page is not full yet, everything in view is relevant
	partial := Variables{Cursor: &cursor, Loaded: 4}
	assert.True(t, set.Match(after, partial))

	assert.False(t, set.Match(after, Variables{Loaded: 15}))
}

func TestGameDeleted(t *testing.T) {
	set := NewSet(memstore.New(), 15, seattle)
	ev := pubsub.Event{Topic: pubsub.GameDeleted, Payload: pubsub.GameDeletedPayload{GameID: 7}}

	assert.True(t, set.Match(ev, Variables{LoadedIDs: []uint{3, 7}}))
	assert.False(t, set.Match(ev, Variables{LoadedIDs: []uint{3}}))
	assert.False(t, set.Match(ev, Variables{}))
}

func TestGameScopedTopics(t *testing.T) {
	set := NewSet(memstore.New(), 15, seattle)
	events := []pubsub.Event{
		{Topic: pubsub.ParticipantJoined, Payload: pubsub.ParticipantPayload{GameID: 4}},
		{Topic: pubsub.ParticipantLeft, Payload: pubsub.ParticipantPayload{GameID: 4, Count: 2}},
		{Topic: pubsub.MessageAdded, Payload: pubsub.MessagePayload{GameID: 4}},
		{Topic: pubsub.MessageUpdated, Payload: pubsub.MessagePayload{GameID: 4}},
		{Topic: pubsub.MessageDeleted, Payload: pubsub.MessagePayload{GameID: 4}},
	}
	for _, ev := range events {
		assert.True(t, set.Match(ev, Variables{GameID: 4}), ev.Topic)
		assert.False(t, set.Match(ev, Variables{GameID: 5}), ev.Topic)
		assert.False(t, set.Match(ev, Variables{}), ev.Topic)
	}
}

func TestMismatchedPayload(t *testing.T) {
	set := NewSet(memstore.New(), 15, seattle)
	ev := pubsub.Event{Topic: pubsub.MessageAdded, Payload: pubsub.GameDeletedPayload{GameID: 4}}
	assert.False(t, set.Match(ev, Variables{GameID: 4}))
}

func TestNotification(t *testing.T) {
	db := memstore.New()
	ctx := context.Background()
	actor := db.AddUser("actor")
	member := db.AddUser("member")
	invitee := db.AddUser("invitee")
	stranger := db.AddUser("stranger")

	for _, p := range []*models.Participant{
		{ConversationID: 9, UserID: actor.ID, Level: game_constants.PARTICIPANT_LEVEL_PLAYER},
		{ConversationID: 9, UserID: member.ID, Level: game_constants.PARTICIPANT_LEVEL_INTERESTED},
		{ConversationID: 9, UserID: invitee.ID, Level: game_constants.PARTICIPANT_LEVEL_INVITED, Invited: true},
	} {
		require.NoError(t, db.UpsertParticipant(ctx, p))
	}

	set := NewSet(db, 15, seattle)
	ev := pubsub.Event{Topic: pubsub.Notification, Payload: pubsub.NotificationPayload{ConversationID: 9, ActorID: actor.ID}}

	assert.True(t, set.Match(ev, Variables{UserID: member.ID}))
	assert.False(t, set.Match(ev, Variables{UserID: actor.ID}), "actor is not notified of its own action")
	assert.False(t, set.Match(ev, Variables{UserID: invitee.ID}), "invitees are not notified")
	assert.False(t, set.Match(ev, Variables{UserID: stranger.ID}), "lookup miss")
	assert.False(t, set.Match(ev, Variables{UserID: member.ID, ConversationID: 10}))
	assert.False(t, set.Match(ev, Variables{}))

	db.Fail = errors.New("connection refused")
	assert.False(t, set.Match(ev, Variables{UserID: member.ID}), "failed lookup")
}

func TestBoundsFallback(t *testing.T) {
	set := NewSet(memstore.New(), 15, seattle)
	assert.Equal(t, seattle, set.Bounds(Variables{}))
	// south above north is rejected
	assert.Equal(t, seattle, set.Bounds(Variables{Bounds: []float64{1, 0, 2, 1}}))
	assert.Equal(t, geo.Bounds{North: 2, West: 0, South: 1, East: 1}, set.Bounds(Variables{Bounds: []float64{2, 0, 1, 1}}))
}

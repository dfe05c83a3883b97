package games

import (
	game_constants "Recit/constants/game"
	models "Recit/models/postgres"
	"Recit/services/pubsub"
	"Recit/services/roster"
	"Recit/services/store"
	"Recit/services/store/memstore"
	"Recit/utils/apperrors"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type touches struct {
	mu        sync.Mutex
	convs     []uint
	forgotten map[uint][]uint
	err       error
}

func (tc *touches) TouchConversation(ctx context.Context, conversationID uint) error {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.convs = append(tc.convs, conversationID)
	return tc.err
}

func (tc *touches) ForgetConversation(ctx context.Context, conversationID uint, userIDs []uint) error {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if tc.forgotten == nil {
		tc.forgotten = map[uint][]uint{}
	}
	tc.forgotten[conversationID] = userIDs
	return tc.err
}

type serviceFixture struct {
	ctx     context.Context
	db      *memstore.Store
	events  *pubsub.Recorder
	touches *touches
	svc     *Service
	host    *models.User
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	db := memstore.New()
	events := &pubsub.Recorder{}
	tc := &touches{}
	return &serviceFixture{
		ctx:     context.Background(),
		db:      db,
		events:  events,
		touches: tc,
		svc:     NewService(db, roster.NewLedger(db, events), events, tc),
		host:    db.AddUser("host"),
	}
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
func floatPtr(f float64) *float64 {
	return &f
}
func timePtr(t time.Time) *time.Time { return &t }

func validInput() GameInput {
	start := time.Now().Add(24 * time.Hour)
	return GameInput{
		Title:         strPtr("Sunday volleyball"),
		StartTime:     timePtr(start),
		EndTime:       timePtr(start.Add(2 * time.Hour)),
		Latitude:      floatPtr(47.6),
		Longitude:     floatPtr(-122.33),
		Venue:         strPtr("Golden Gardens"),
		Category:      strPtr(game_constants.CATEGORY_SPORT),
		Sport:         strPtr("volleyball"),
		Spots:         intPtr(8),
		SpotsReserved: intPtr(2),
	}
}

func (f *serviceFixture) create(t *testing.T) uint {
	t.Helper()
	game, err := f.svc.CreateGame(f.ctx, f.host.ID, validInput())
	require.NoError(t, err)
	f.events.Reset()
	return game.ID
}

func TestCreateGameHasExactlyOneHost(t *testing.T) {
	f := newServiceFixture(t)

	game, err := f.svc.CreateGame(f.ctx, f.host.ID, validInput())
	require.NoError(t, err)

	hosts, err := f.db.FindPlayers(f.ctx, store.PlayerFilter{GameID: game.ID, Levels: []int{game_constants.PLAYER_LEVEL_HOST}})
	require.NoError(t, err)
	require.Len(t, hosts, 1)
	assert.Equal(t, f.host.ID, *hosts[0].UserID)

	assert.Equal(t, 1, game.Players)
	assert.Equal(t, 8-1-2, game.OpenSpots)
	assert.True(t, game.Public)

	added := f.events.Events(pubsub.GameAdded)
	require.Len(t, added, 1)
	assert.Equal(t, game.ID, added[0].Payload.(pubsub.GameAddedPayload).Game.ID)
	assert.Equal(t, []uint{game.ConversationID}, f.touches.convs)
}

func TestCreatePrivateGameIsNotAnnounced(t *testing.T) {
	f := newServiceFixture(t)
	in := validInput()
	in.Public = new(bool)

	_, err := f.svc.CreateGame(f.ctx, f.host.ID, in)
	require.NoError(t, err)
	assert.Empty(t, f.events.Events(pubsub.GameAdded))
}

func TestCreateGameRequiresLogin(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.CreateGame(f.ctx, 0, validInput())
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)

	_, err = f.svc.CreateGame(f.ctx, 4242, validInput())
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}

func TestCreateGameReportsEveryInvalidField(t *testing.T) {
	f := newServiceFixture(t)
	past := time.Now().Add(-time.Hour)
	in := GameInput{
		StartTime:     &past,
		EndTime:       timePtr(past.Add(-time.Hour)),
		Latitude:      floatPtr(120),
		Longitude:     floatPtr(0),
		Category:      strPtr("CHESS"),
		Spots:         intPtr(40),
		SpotsReserved: intPtr(39),
	}

	_, err := f.svc.CreateGame(f.ctx, f.host.ID, in)
	require.ErrorIs(t, err, apperrors.ErrValidation)

	var fields []string
	for _, fe := range apperrors.As(err).Fields {
		fields = append(fields, fe.Field)
	}
	assert.ElementsMatch(t, []string{"title", "category", "start_time", "end_time", "latitude", "spots", "spots_reserved"}, fields)
	assert.Empty(t, f.events.Events())
}

func TestReservationMustLeaveAnOpenSpotOnCreate(t *testing.T) {
	f := newServiceFixture(t)
	in := validInput()
	in.Spots, in.SpotsReserved = intPtr(4), intPtr(3)

	_, err := f.svc.CreateGame(f.ctx, f.host.ID, in)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestUpdateGame(t *testing.T) {
	f := newServiceFixture(t)
	id := f.create(t)
	stranger := f.db.AddUser("stranger")

	_, err := f.svc.UpdateGame(f.ctx, stranger.ID, id, GameInput{Title: strPtr("mine now")})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	game, err := f.svc.UpdateGame(f.ctx, f.host.ID, id, GameInput{Title: strPtr("Beach volleyball"), SpotsReserved: intPtr(5)})
	require.NoError(t, err)
	assert.Equal(t, "Beach volleyball", game.Title)
	assert.Equal(t, 5, game.SpotsReserved)
	assert.Equal(t, 2, game.OpenSpots)
	assert.Len(t, f.events.Events(pubsub.ParticipantJoined), 3)

	_, err = f.svc.UpdateGame(f.ctx, f.host.ID, id, GameInput{SpotsReserved: intPtr(7)})
	assert.ErrorIs(t, err, apperrors.ErrReservationExceedsCapacity)

	_, err = f.svc.UpdateGame(f.ctx, f.host.ID, id, GameInput{Title: strPtr("")})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = f.svc.UpdateGame(f.ctx, f.host.ID, 999, GameInput{Title: strPtr("x")})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestAdminCanEditAnyGame(t *testing.T) {
	f := newServiceFixture(t)
	id := f.create(t)
	admin := &models.User{Name: "admin", Phone: "+100", Admin: true}
	require.NoError(t, f.db.CreateUser(f.ctx, admin))

	_, err := f.svc.UpdateGame(f.ctx, admin.ID, id, GameInput{Venue: strPtr("Alki")})
	assert.NoError(t, err)
}

func TestDeleteGame(t *testing.T) {
	f := newServiceFixture(t)
	id := f.create(t)

	err := f.svc.DeleteGame(f.ctx, f.db.AddUser("stranger").ID, id)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	row, err := f.db.FindGame(f.ctx, id)
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteGame(f.ctx, f.host.ID, id))
	assert.Equal(t, []uint{f.host.ID}, f.touches.forgotten[row.ConversationID])
	deleted := f.events.Events(pubsub.GameDeleted)
	require.Len(t, deleted, 1)
	assert.Equal(t, id, deleted[0].Payload.(pubsub.GameDeletedPayload).GameID)

	_, err = f.db.FindGame(f.ctx, id)
	assert.ErrorIs(t, err, store.ErrNotFound)
	players, err := f.db.FindPlayers(f.ctx, store.PlayerFilter{GameID: id})
	require.NoError(t, err)
	assert.Empty(t, players)
}

func TestJoinAndLeaveThroughService(t *testing.T) {
	f := newServiceFixture(t)
	id := f.create(t)
	player := f.db.AddUser("player")

	_, err := f.svc.JoinGame(f.ctx, 0, id)
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)

	game, err := f.svc.JoinGame(f.ctx, player.ID, id)
	require.NoError(t, err)
	assert.Equal(t, 2, game.Players)

	_, err = f.svc.JoinGame(f.ctx, player.ID, id)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyJoined)

	game, err = f.svc.LeaveGame(f.ctx, player.ID, id)
	require.NoError(t, err)
	assert.Equal(t, 1, game.Players)

	_, err = f.svc.LeaveGame(f.ctx, f.host.ID, id)
	assert.ErrorIs(t, err, apperrors.ErrHostCannotLeave)

	assert.Len(t, f.touches.convs, 3, "create, join and leave")
}

func TestSubscribeThroughService(t *testing.T) {
	f := newServiceFixture(t)
	id := f.create(t)
	fan := f.db.AddUser("fan")

	_, err := f.svc.SubscribeGame(f.ctx, fan.ID, id)
	require.NoError(t, err)
	_, err = f.svc.SubscribeGame(f.ctx, fan.ID, id)
	assert.ErrorIs(t, err, apperrors.ErrAlreadySubscribed)
	_, err = f.svc.UnsubscribeGame(f.ctx, f.host.ID, id)
	assert.ErrorIs(t, err, apperrors.ErrCannotUnsubscribeAsPlayer)
	_, err = f.svc.UnsubscribeGame(f.ctx, fan.ID, id)
	assert.NoError(t, err)
}

func TestInviteToGame(t *testing.T) {
	f := newServiceFixture(t)
	id := f.create(t)
	guest := f.db.AddUser("guest")

	_, err := f.svc.InviteToGame(f.ctx, guest.ID, id, []uint{guest.ID})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, err = f.svc.InviteToGame(f.ctx, f.host.ID, id, nil)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	invited, err := f.svc.InviteToGame(f.ctx, f.host.ID, id, []uint{guest.ID})
	require.NoError(t, err)
	require.Len(t, invited, 1)
	assert.Equal(t, game_constants.PARTICIPANT_LEVEL_INVITED, invited[0].Level)

	game, err := f.svc.JoinGame(f.ctx, guest.ID, id)
	require.NoError(t, err)
	assert.Equal(t, 1, game.SpotsReserved)
}

func TestGetGame(t *testing.T) {
	f := newServiceFixture(t)
	id := f.create(t)

	detail, err := f.svc.GetGame(f.ctx, 0, id)
	require.NoError(t, err)
	assert.Len(t, detail.Players, 3, "host and two placeholders")

	in := validInput()
	in.Public = new(bool)
	private, err := f.svc.CreateGame(f.ctx, f.host.ID, in)
	require.NoError(t, err)

	_, err = f.svc.GetGame(f.ctx, 0, private.ID)
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
	_, err = f.svc.GetGame(f.ctx, f.db.AddUser("stranger").ID, private.ID)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	_, err = f.svc.GetGame(f.ctx, f.host.ID, private.ID)
	assert.NoError(t, err)
}

func TestMessages(t *testing.T) {
	f := newServiceFixture(t)
	id := f.create(t)
	player := f.db.AddUser("player")
	stranger := f.db.AddUser("stranger")
	_, err := f.svc.JoinGame(f.ctx, player.ID, id)
	require.NoError(t, err)
	f.events.Reset()

	_, err = f.svc.CreateMessage(f.ctx, stranger.ID, id, MessageInput{Content: "hi"})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, err = f.svc.CreateMessage(f.ctx, player.ID, id, MessageInput{Content: "   "})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = f.svc.CreateMessage(f.ctx, player.ID, id, MessageInput{Content: "everyone out", Type: game_constants.MESSAGE_TYPE_BROADCAST})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	message, err := f.svc.CreateMessage(f.ctx, player.ID, id, MessageInput{Content: "bringing the ball"})
	require.NoError(t, err)
	assert.Equal(t, "player", message.Author)
	assert.Len(t, f.events.Events(pubsub.MessageAdded), 1)
	notifications := f.events.Events(pubsub.Notification)
	require.Len(t, notifications, 1)
	assert.Equal(t, player.ID, notifications[0].Payload.(pubsub.NotificationPayload).ActorID)

	_, err = f.svc.UpdateMessage(f.ctx, f.host.ID, message.ID, "hijacked")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	updated, err := f.svc.UpdateMessage(f.ctx, player.ID, message.ID, "bringing two balls")
	require.NoError(t, err)
	assert.Equal(t, "bringing two balls", updated.Content)
	assert.Len(t, f.events.Events(pubsub.MessageUpdated), 1)

	// the host moderates its game
	require.NoError(t, f.svc.DeleteMessage(f.ctx, f.host.ID, message.ID))
	deleted := f.events.Events(pubsub.MessageDeleted)
	require.Len(t, deleted, 1)
	assert.Equal(t, id, deleted[0].Payload.(pubsub.MessagePayload).GameID)

	err = f.svc.DeleteMessage(f.ctx, f.host.ID, message.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSystemMessagesAreReadOnly(t *testing.T) {
	f := newServiceFixture(t)
	id := f.create(t)
	player := f.db.AddUser("player")
	_, err := f.svc.JoinGame(f.ctx, player.ID, id)
	require.NoError(t, err)

	joined := f.events.Events(pubsub.MessageAdded)[0].Payload.(pubsub.MessagePayload).Message
	_, err = f.svc.UpdateMessage(f.ctx, player.ID, joined.ID, "edited")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestStoreFailureIsUpstream(t *testing.T) {
	f := newServiceFixture(t)
	id := f.create(t)
	player := f.db.AddUser("player")
	f.db.Fail = errors.New("connection reset")

	_, err := f.svc.JoinGame(f.ctx, player.ID, id)
	assert.ErrorIs(t, err, apperrors.ErrUpstream)
}

func TestTouchFailureKeepsTheResult(t *testing.T) {
	f := newServiceFixture(t)
	f.touches.err = errors.New("redis down")

	game, err := f.svc.CreateGame(f.ctx, f.host.ID, validInput())
	require.NoError(t, err)
	assert.NotZero(t, game.ID)
}

func TestUpdateValidatesTheMergedGame(t *testing.T) {
	f := newServiceFixture(t)
	id := f.create(t)
	current, err := f.db.FindGame(f.ctx, id)
	require.NoError(t, err)

	// only the end moves, and lands before the stored start
	_, err = f.svc.UpdateGame(f.ctx, f.host.ID, id, GameInput{EndTime: timePtr(current.StartTime.Add(-time.Minute))})
	require.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Equal(t, []apperrors.FieldError{{Field: "end_time", Message: "must be after start_time"}}, apperrors.As(err).Fields)

	_, err = f.svc.UpdateGame(f.ctx, f.host.ID, id, GameInput{Category: strPtr("CHESS"), Spots: intPtr(33)})
	require.ErrorIs(t, err, apperrors.ErrValidation)
	var fields []string
	for _, fe := range apperrors.As(err).Fields {
		fields = append(fields, fe.Field)
	}
	assert.ElementsMatch(t, []string{"category", "spots"}, fields)

	game, err := f.svc.UpdateGame(f.ctx, f.host.ID, id, GameInput{Description: strPtr("bring knee pads")})
	require.NoError(t, err)
	assert.Equal(t, id, game.ID)
}

func TestMessageLengthIsBounded(t *testing.T) {
	f := newServiceFixture(t)
	id := f.create(t)

	long := strings.Repeat("a", 2001)
	_, err := f.svc.CreateMessage(f.ctx, f.host.ID, id, MessageInput{Content: long})
	require.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Equal(t, "content", apperrors.As(err).Fields[0].Field)

	message, err := f.svc.CreateMessage(f.ctx, f.host.ID, id, MessageInput{Content: long[:2000]})
	require.NoError(t, err)
	_, err = f.svc.UpdateMessage(f.ctx, f.host.ID, message.ID, long)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

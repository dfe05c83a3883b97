package sync

import (
	game_constants "Recit/constants/game"
	models "Recit/models/postgres"
	redis_models "Recit/models/redis"
	"Recit/services/store/memstore"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeActivity struct {
	recorded map[uint][]uint
	cleared  []uint
	gone     map[uint][]uint
	err      error
}

func (f *fakeActivity) RecordActivity(conversationID uint, userIDs []uint, at time.Time) error {
	if f.err != nil {
		return f.err
	}
	if f.recorded == nil {
		f.recorded = map[uint][]uint{}
	}
	f.recorded[conversationID] = append(f.recorded[conversationID], userIDs...)
	return nil
}

func (f *fakeActivity) RecentConversations(userID uint, limit int) ([]redis_models.ConversationActivity, error) {
	var out []redis_models.ConversationActivity
	for conv, users := range f.recorded {
		for _, u := range users {
			if u == userID {
				out = append(out, redis_models.ConversationActivity{ConversationID: conv})
			}
		}
	}
	return out, nil
}

func (f *fakeActivity) ClearActivity(userID, conversationID uint) error {
	f.cleared = append(f.cleared, conversationID)
	return nil
}

func (f *fakeActivity) ForgetConversation(conversationID uint, userIDs []uint) error {
	if f.err != nil {
		return f.err
	}
	if f.gone == nil {
		f.gone = map[uint][]uint{}
	}
	f.gone[conversationID] = append(f.gone[conversationID], userIDs...)
	return nil
}

func TestForgetConversation(t *testing.T) {
	activity := &fakeActivity{}
	sm := NewSyncManager(activity, memstore.New())

	require.NoError(t, sm.ForgetConversation(context.Background(), 7, []uint{1, 2}))
	assert.Equal(t, []uint{1, 2}, activity.gone[7])

	// nothing to do without participants
	require.NoError(t, sm.ForgetConversation(context.Background(), 8, nil))
	assert.NotContains(t, activity.gone, uint(8))

	activity.err = errors.New("redis down")
	assert.Error(t, sm.ForgetConversation(context.Background(), 9, []uint{1}))

	assert.NoError(t, NewSyncManager(nil, memstore.New()).ForgetConversation(context.Background(), 7, []uint{1}))
}

func TestTouchConversation(t *testing.T) {
	ctx := context.Background()
	db := memstore.New()
	host := db.AddUser("host")
	fan := db.AddUser("fan")
	game := &models.Game{Title: "Poker", Spots: 4, StartTime: time.Now().Add(time.Hour)}
	require.NoError(t, db.CreateGame(ctx, game, host.ID))
	require.NoError(t, db.UpsertParticipant(ctx, &models.Participant{
		ConversationID: game.ConversationID,
		UserID:         fan.ID,
		Level:          game_constants.PARTICIPANT_LEVEL_INTERESTED,
	}))

	activity := &fakeActivity{}
	sm := NewSyncManager(activity, db)
	at := time.Date(2026, time.October, 15, 18, 0, 0, 0, time.UTC)
	sm.now = func() time.Time { return at }

	require.NoError(t, sm.TouchConversation(ctx, game.ConversationID))
	assert.True(t, at.Equal(db.LastActivity(game.ConversationID)))
	assert.ElementsMatch(t, []uint{host.ID, fan.ID}, activity.recorded[game.ConversationID])

	recent, err := sm.RecentConversations(fan.ID, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, game.ConversationID, recent[0].ConversationID)

	require.NoError(t, sm.MarkSeen(fan.ID, game.ConversationID))
	assert.Equal(t, []uint{game.ConversationID}, activity.cleared)
}

func TestTouchConversationWithoutRedis(t *testing.T) {
	ctx := context.Background()
	db := memstore.New()
	sm := NewSyncManager(nil, db)

	require.NoError(t, sm.TouchConversation(ctx, 7))
	assert.False(t, db.LastActivity(7).IsZero())

	recent, err := sm.RecentConversations(1, 10)
	require.NoError(t, err)
	assert.Empty(t, recent)
	assert.NoError(t, sm.MarkSeen(1, 7))
}

func TestTouchConversationFailures(t *testing.T) {
	ctx := context.Background()
	db := memstore.New()

	sm := NewSyncManager(&fakeActivity{err: errors.New("redis down")}, db)
	assert.Error(t, sm.TouchConversation(ctx, 7))

	db.Fail = errors.New("postgres down")
	assert.ErrorIs(t, sm.TouchConversation(ctx, 7), db.Fail)
}

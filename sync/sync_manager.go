package sync

import (
	redis_models "Recit/models/redis"
	"Recit/services/store"
	"context"
	"fmt"
	"log"
	"time"
)

// ActivityRecorder keeps the per-user conversation badges, see
// services/redis
type ActivityRecorder interface {
	RecordActivity(conversationID uint, userIDs []uint, at time.Time) error
	RecentConversations(userID uint, limit int) ([]redis_models.ConversationActivity, error)
	ClearActivity(userID, conversationID uint) error
	ForgetConversation(conversationID uint, userIDs []uint) error
}

// SyncManager keeps the conversation activity in PostgreSQL and in the
// Redis badges of its participants in step
type SyncManager struct {
	store    store.Store
	activity ActivityRecorder
	now      func() time.Time
}

// NewSyncManager creates a new instance of the synchronization manager.
// activity may be nil when Redis is not configured
func NewSyncManager(activity ActivityRecorder, st store.Store) *SyncManager {
	return &SyncManager{
		store:    st,
		activity: activity,
		now:      time.Now,
	}
}

// TouchConversation marks the conversation as active now, then bumps it in
// the badges of every participant
func (sm *SyncManager) TouchConversation(ctx context.Context, conversationID uint) error {
	at := sm.now()
	if err := sm.store.TouchConversation(ctx, conversationID, at); err != nil {
		return fmt.Errorf("error touching conversation in PostgreSQL: %w", err)
	}
	if sm.activity == nil {
		return nil
	}

	participants, err := sm.store.FindParticipants(ctx, conversationID)
	if err != nil {
		return fmt.Errorf("error getting participants: %w", err)
	}
	userIDs := make([]uint, 0, len(participants))
	for _, p := range participants {
		userIDs = append(userIDs, p.UserID)
	}
	if err := sm.activity.RecordActivity(conversationID, userIDs, at); err != nil {
		return fmt.Errorf("error syncing activity to Redis: %w", err)
	}
	log.Printf("[SYNC] Conversation %d touched for %d participants", conversationID, len(userIDs))
	return nil
}

// RecentConversations lists the user's badges, freshest first
func (sm *SyncManager) RecentConversations(userID uint, limit int) ([]redis_models.ConversationActivity, error) {
	if sm.activity == nil {
		return []redis_models.ConversationActivity{}, nil
	}
	return sm.activity.RecentConversations(userID, limit)
}

// ForgetConversation drops a deleted conversation from the badges of its
// former participants
func (sm *SyncManager) ForgetConversation(ctx context.Context, conversationID uint, userIDs []uint) error {
	if sm.activity == nil || len(userIDs) == 0 {
		return nil
	}
	if err := sm.activity.ForgetConversation(conversationID, userIDs); err != nil {
		return fmt.Errorf("error forgetting conversation in Redis: %w", err)
	}
	return nil
}

// MarkSeen clears one badge
func (sm *SyncManager) MarkSeen(userID, conversationID uint) error {
	if sm.activity == nil {
		return nil
	}
	return sm.activity.ClearActivity(userID, conversationID)
}

package redis

import "time"

// ConversationActivity is one entry of a user's activity badges: the
// conversation and the last time something happened in it
type ConversationActivity struct {
	ConversationID uint      `json:"conversation_id"`
	LastActivity   time.Time `json:"last_activity"`
}

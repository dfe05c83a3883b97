package postgres

import (
	"time"
)

/*
 * 'Participant' is the membership of a user in a Conversation. There is at
 * most one row per (conversation, user)
 */
type Participant struct {
	ID             uint      `gorm:"primaryKey"`
	ConversationID uint      `gorm:"not null;uniqueIndex:idx_participants_conversation_user"`
	UserID         uint      `gorm:"not null;uniqueIndex:idx_participants_conversation_user"`
	Level          int       `gorm:"not null"`
	Invited        bool      `gorm:"default:false"`
	CreatedAt      time.Time `gorm:"default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time
}

package postgres

import (
	"time"
)

/*
 * 'Conversation' is the chat attached to a game. It is created and deleted
 * together with its Game. LastActivity is touched every time one of its
 * participants changes, so badges can be ordered by freshness
 */
type Conversation struct {
	ID           uint      `gorm:"primaryKey"`
	Title        string    `gorm:"size:50"`
	LastActivity time.Time `gorm:"default:CURRENT_TIMESTAMP;index:idx_conversations_activity"`
	CreatedAt    time.Time `gorm:"default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time

	// Relationships
	Participants []Participant `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE;" json:"-"`
	Messages     []Message     `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE;" json:"-"`
}

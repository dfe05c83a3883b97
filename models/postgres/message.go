package postgres

import (
	"time"

	"gorm.io/datatypes"
)

/*
 * 'Message' is a chat entry of a Conversation. System messages (type 4)
 * carry what happened in Meta, e.g. {"action":"joined","user_id":3}
 */
type Message struct {
	ID             uint           `gorm:"primaryKey"`
	Content        string         `gorm:"type:text;not null"`
	Author         string         `gorm:"size:50"`
	Type           int            `gorm:"not null;default:1"`
	UserID         *uint          `gorm:"index"`
	GameID         *uint          `gorm:"index:idx_messages_game_updated"`
	ConversationID uint           `gorm:"not null;index"`
	Meta           datatypes.JSON `gorm:"type:jsonb;default:'{}'"`
	CreatedAt      time.Time      `gorm:"default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time      `gorm:"index:idx_messages_game_updated"`
}

package postgres

import (
	"time"
)

/*
 * 'Game' defines a pickup game. It owns its Conversation and its roster of
 * Players. The amount of players and the open spots are never stored, they
 * are computed from the roster when the game is read
 */
type Game struct {
	ID             uint      `gorm:"primaryKey"`
	Title          string    `gorm:"size:50;not null"`
	StartTime      time.Time `gorm:"not null;index:idx_games_start_time"`
	EndTime        time.Time `gorm:"not null"`
	Latitude       float64   `gorm:"not null;index:idx_games_location"`
	Longitude      float64   `gorm:"not null;index:idx_games_location"`
	Venue          string    `gorm:"size:100"`
	Address        string    `gorm:"size:255"`
	Category       string    `gorm:"size:20;not null;index:idx_games_category"`
	Sport          string    `gorm:"size:30"`
	Spots          int       `gorm:"not null;default:2"`
	SpotsReserved  int       `gorm:"not null;default:0"`
	Description    string    `gorm:"type:text"`
	Public         bool      `gorm:"default:true;index:idx_games_public"`
	Image          string    `gorm:"size:255"`
	ConversationID uint      `gorm:"not null;uniqueIndex"`
	CreatedAt      time.Time `gorm:"default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time

	// Relationships
	Conversation Conversation `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE;" json:"-"`
	Players      []Player     `gorm:"foreignKey:GameID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

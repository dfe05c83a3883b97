package postgres

import (
	"time"
)

/*
 * 'Player' is one roster entry of a Game. A reserved spot is a Player with
 * level 3 (interested) and no user yet
 */
type Player struct {
	ID        uint      `gorm:"primaryKey"`
	GameID    uint      `gorm:"not null;index:idx_players_game_level"`
	UserID    *uint     `gorm:"index"`
	Level     int       `gorm:"not null;index:idx_players_game_level"`
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time
}

// IsReservedSlot tells whether the player is an unclaimed reserved spot
func (p *Player) IsReservedSlot() bool {
	return p.UserID == nil
}

package postgres

import (
	"time"
)

/*
 * 'User' contains the blueprint definition of a User. It is referenced by
 * Player, Participant and Message
 */
type User struct {
	ID           uint      `gorm:"primaryKey"`
	Name         string    `gorm:"size:50;not null"`
	Phone        string    `gorm:"size:20;not null;uniqueIndex"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	ProfilePic   string    `gorm:"size:255"`
	Admin        bool      `gorm:"default:false"`
	CreatedAt    time.Time `gorm:"default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time

	// Relationships
	Players      []Player      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;" json:"-"`
	Participants []Participant `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;" json:"-"`
}

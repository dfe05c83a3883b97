// Package views holds the JSON shapes sent to clients, both in HTTP
// responses and in real-time events.
package views

import (
	models "Recit/models/postgres"
	"Recit/services/store"
	"encoding/json"
	"time"
)

type Game struct {
	ID             uint      `json:"id"`
	Title          string    `json:"title"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	Venue          string    `json:"venue"`
	Address        string    `json:"address"`
	Category       string    `json:"category"`
	Sport          string    `json:"sport,omitempty"`
	Spots          int       `json:"spots"`
	SpotsReserved  int       `json:"spots_reserved"`
	Players        int       `json:"players"`
	OpenSpots      int       `json:"open_spots"`
	Description    string    `json:"description"`
	Public         bool      `json:"public"`
	Image          string    `json:"image,omitempty"`
	ConversationID uint      `json:"conversation_id"`
}

func NewGame(row store.GameRow) Game {
	return Game{
		ID:             row.ID,
		Title:          row.Title,
		StartTime:      row.StartTime,
		EndTime:        row.EndTime,
		Latitude:       row.Latitude,
		Longitude:      row.Longitude,
		Venue:          row.Venue,
		Address:        row.Address,
		Category:       row.Category,
		Sport:          row.Sport,
		Spots:          row.Spots,
		SpotsReserved:  row.SpotsReserved,
		Players:        row.Players,
		OpenSpots:      row.OpenSpots(),
		Description:    row.Description,
		Public:         row.Public,
		Image:          row.Image,
		ConversationID: row.ConversationID,
	}
}

type Player struct {
	ID     uint  `json:"id"`
	GameID uint  `json:"game_id"`
	UserID *uint `json:"user_id"`
	Level  int   `json:"level"`
}

func NewPlayer(p models.Player) Player {
	return Player{ID: p.ID, GameID: p.GameID, UserID: p.UserID, Level: p.Level}
}

type Message struct {
	ID             uint            `json:"id"`
	Content        string          `json:"content"`
	Author         string          `json:"author"`
	Type           int             `json:"type"`
	UserID         *uint           `json:"user_id,omitempty"`
	GameID         *uint           `json:"game_id,omitempty"`
	ConversationID uint            `json:"conversation_id"`
	Meta           json.RawMessage `json:"meta,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func NewMessage(m models.Message) Message {
	v := Message{
		ID:             m.ID,
		Content:        m.Content,
		Author:         m.Author,
		Type:           m.Type,
		UserID:         m.UserID,
		GameID:         m.GameID,
		ConversationID: m.ConversationID,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
	if len(m.Meta) > 0 {
		v.Meta = json.RawMessage(m.Meta)
	}
	return v
}

type User struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	ProfilePic string `json:"profile_pic,omitempty"`
}

func NewUser(u models.User) User {
	return User{ID: u.ID, Name: u.Name, ProfilePic: u.ProfilePic}
}

// Edge is one element of a cursor page.
type Edge[T any] struct {
	Cursor time.Time `json:"cursor"`
	Node   T         `json:"node"`
}

// Page is a cursor-paginated result.
type Page[T any] struct {
	TotalCount  int64     `json:"total_count"`
	Edges       []Edge[T] `json:"edges"`
	HasNextPage bool      `json:"has_next_page"`
}

// Package store is the data-access contract the services rely on. The
// Postgres implementation lives in gorm.go; memstore provides an in-memory
// one for tests.
package store

import (
	models "Recit/models/postgres"
	"Recit/services/geo"
	"Recit/utils/apperrors"
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by every Find* method when nothing matches.
var ErrNotFound = errors.New("record not found")

// AppError converts a store failure into the error surfaced to callers.
// Errors that are already typed pass through untouched.
func AppError(op, entity string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, ErrNotFound) {
		return apperrors.NotFound(entity)
	}
	return apperrors.Upstream(op, err)
}

// GameRow is a game together with its derived roster counts.
type GameRow struct {
	models.Game
	Players int `gorm:"column:players"`
}

// OpenSpots is never stored, only derived.
func (g GameRow) OpenSpots() int {
	return g.Spots - g.Players - g.SpotsReserved
}

// GameQuery filters the public games feed.
type GameQuery struct {
	After        time.Time
	Bounds       geo.Bounds
	Category     string
	Sport        string
	StartFrom    *time.Time // inclusive
	StartBefore  *time.Time // exclusive
	MinOpenSpots int
	Limit        int
}

// UserGamesQuery selects the games a user plays in.
type UserGamesQuery struct {
	UserID uint
	Cursor time.Time
	Past   bool
	Limit  int
}

// MessageQuery selects a page of messages of a game.
type MessageQuery struct {
	GameID    uint
	Before    time.Time
	MessageID uint
	Limit     int
}

// PlayerFilter selects roster rows. Zero values are ignored, except that
// Unclaimed restricts to rows without a user.
type PlayerFilter struct {
	GameID    uint
	UserID    uint
	Levels    []int
	Unclaimed bool
}

// GameFields carries the editable fields of a game; nil means unchanged.
type GameFields struct {
	Title         *string
	StartTime     *time.Time
	EndTime       *time.Time
	Latitude      *float64
	Longitude     *float64
	Venue         *string
	Address       *string
	Category      *string
	Sport         *string
	Spots         *int
	SpotsReserved *int
	Description   *string
	Public        *bool
	Image         *string
}

// Store is implemented by the persistent store.
type Store interface {
	FindGame(ctx context.Context, id uint) (*GameRow, error)
	FindGames(ctx context.Context, q GameQuery) ([]GameRow, int64, error)
	FindUserGames(ctx context.Context, q UserGamesQuery) ([]GameRow, error)
	// CreateGame creates the conversation, the game, the host player, the
	// host participant and the reserved placeholders in one transaction.
	CreateGame(ctx context.Context, game *models.Game, hostID uint) error
	UpdateGame(ctx context.Context, id uint, fields GameFields) (*models.Game, error)
	// DeleteGame removes the game with its conversation, roster,
	// participants and messages.
	DeleteGame(ctx context.Context, id uint) error

	FindPlayers(ctx context.Context, f PlayerFilter) ([]models.Player, error)
	CreatePlayer(ctx context.Context, p *models.Player) error
	UpdatePlayer(ctx context.Context, p *models.Player) error
	// DestroyPlayers deletes at most limit matching rows (all when limit
	// is 0) and returns how many were deleted.
	DestroyPlayers(ctx context.Context, f PlayerFilter, limit int) (int64, error)

	FindParticipant(ctx context.Context, conversationID, userID uint) (*models.Participant, error)
	FindParticipants(ctx context.Context, conversationID uint) ([]models.Participant, error)
	// UpsertParticipant inserts or updates the row keyed by
	// (conversation, user).
	UpsertParticipant(ctx context.Context, p *models.Participant) error
	DestroyParticipant(ctx context.Context, conversationID, userID uint) error
	TouchConversation(ctx context.Context, conversationID uint, at time.Time) error

	CreateMessage(ctx context.Context, m *models.Message) error
	FindMessage(ctx context.Context, id uint) (*models.Message, error)
	FindMessages(ctx context.Context, q MessageQuery) ([]models.Message, error)
	UpdateMessage(ctx context.Context, id uint, content string) (*models.Message, error)
	DeleteMessage(ctx context.Context, id uint) error

	FindUser(ctx context.Context, id uint) (*models.User, error)
	FindUserByPhone(ctx context.Context, phone string) (*models.User, error)
	CreateUser(ctx context.Context, u *models.User) error

	// WithGameLock runs fn inside a transaction holding the game row lock.
	// The Store handed to fn must be used for every call inside it.
	WithGameLock(ctx context.Context, gameID uint, fn func(tx Store) error) error
}

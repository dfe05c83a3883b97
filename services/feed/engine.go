// Package feed answers the paginated read queries: the public games around
// a viewport, the games of a user and the messages of a game.
package feed

import (
	game_constants "Recit/constants/game"
	"Recit/services/geo"
	"Recit/services/store"
	"Recit/services/views"
	"Recit/utils/apperrors"
	"context"
	"slices"
	"time"
)

type Config struct {
	GamesPageSize     int
	UserGamesPageSize int
	MessagesPageSize  int
	DefaultBounds     geo.Bounds
	Location          *time.Location
}

type Engine struct {
	store store.Store
	cfg   Config
	now   func() time.Time
}

func NewEngine(st store.Store, cfg Config) *Engine {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Engine{store: st, cfg: cfg, now: time.Now}
}

// SetClock replaces the clock queries are relative to.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// GamesArgs are the filters of the games feed. Bounds use the
// [north, west, south, east] format.
type GamesArgs struct {
	Cursor       *time.Time
	Category     string
	Sport        string
	StartDate    string
	Bounds       []float64
	MinOpenSpots int
}

func (e *Engine) ListGames(ctx context.Context, args GamesArgs) (*views.Page[views.Game], error) {
	now := e.now().In(e.cfg.Location)
	q := store.GameQuery{
		After:        now,
		Bounds:       e.cfg.DefaultBounds,
		Category:     args.Category,
		Sport:        args.Sport,
		MinOpenSpots: args.MinOpenSpots,
		Limit:        e.cfg.GamesPageSize,
	}

	var v apperrors.Validator
	if args.Cursor != nil {
		q.After = *args.Cursor
	}
	if len(args.Bounds) > 0 {
		bounds, err := geo.FromSlice(args.Bounds)
		if err != nil {
			v.Add("bounds", "%v", err)
		}
		q.Bounds = bounds
	}
	if args.Category != "" {
		v.Check(slices.Contains(game_constants.Categories, args.Category), "category", "unknown category %q", args.Category)
	}
	if args.StartDate != "" {
		interval, err := StartDateInterval(args.StartDate, now)
		if err != nil {
			v.Add("start_date", "%v", err)
		}
		q.StartFrom, q.StartBefore = interval.From, interval.Before
	}
	v.Check(args.MinOpenSpots >= 0, "min_open_spots", "cannot be negative")
	if err := v.Err(); err != nil {
		return nil, err
	}

	rows, total, err := e.store.FindGames(ctx, q)
	if err != nil {
		return nil, store.AppError("find games", "Game", err)
	}

	page := &views.Page[views.Game]{
		TotalCount:  total,
		Edges:       make([]views.Edge[views.Game], 0, len(rows)),
		HasNextPage: total > int64(e.cfg.GamesPageSize),
	}
	for _, row := range rows {
		page.Edges = append(page.Edges, views.Edge[views.Game]{Cursor: row.StartTime, Node: views.NewGame(row)})
	}
	return page, nil
}

// ListUserGames pages through the games the user plays in: upcoming ones
// after the cursor, or past ones before it, most recent first.
func (e *Engine) ListUserGames(ctx context.Context, userID uint, past bool, cursor *time.Time) (*views.Page[views.Game], error) {
	q := store.UserGamesQuery{
		UserID: userID,
		Cursor: e.now(),
		Past:   past,
		Limit:  e.cfg.UserGamesPageSize + 1,
	}
	if cursor != nil {
		q.Cursor = *cursor
	}

	rows, err := e.store.FindUserGames(ctx, q)
	if err != nil {
		return nil, store.AppError("find user games", "Game", err)
	}

	page := &views.Page[views.Game]{HasNextPage: len(rows) > e.cfg.UserGamesPageSize}
	if page.HasNextPage {
		rows = rows[:e.cfg.UserGamesPageSize]
	}
	page.TotalCount = int64(len(rows))
	page.Edges = make([]views.Edge[views.Game], 0, len(rows))
	for _, row := range rows {
		page.Edges = append(page.Edges, views.Edge[views.Game]{Cursor: row.StartTime, Node: views.NewGame(row)})
	}
	return page, nil
}

// ListMessages returns the messages of the game last updated before the
// cursor, newest first. messageID narrows the page to a single message.
// The chat of a private game is only readable by its participants.
func (e *Engine) ListMessages(ctx context.Context, actorID, gameID uint, cursor *time.Time, messageID uint) (*views.Page[views.Message], error) {
	game, err := e.store.FindGame(ctx, gameID)
	if err != nil {
		return nil, store.AppError("find game", "Game", err)
	}
	if err := store.AuthorizeViewer(ctx, e.store, actorID, game); err != nil {
		return nil, err
	}

	q := store.MessageQuery{
		GameID:    gameID,
		Before:    e.now(),
		MessageID: messageID,
		Limit:     e.cfg.MessagesPageSize + 1,
	}
	if cursor != nil {
		q.Before = *cursor
	}

	messages, err := e.store.FindMessages(ctx, q)
	if err != nil {
		return nil, store.AppError("find messages", "Message", err)
	}

	page := &views.Page[views.Message]{HasNextPage: len(messages) > e.cfg.MessagesPageSize}
	if page.HasNextPage {
		messages = messages[:e.cfg.MessagesPageSize]
	}
	page.TotalCount = int64(len(messages))
	page.Edges = make([]views.Edge[views.Message], 0, len(messages))
	for _, m := range messages {
		page.Edges = append(page.Edges, views.Edge[views.Message]{Cursor: m.UpdatedAt, Node: views.NewMessage(m)})
	}
	return page, nil
}

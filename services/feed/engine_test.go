package feed

import (
	game_constants "Recit/constants/game"
	models "Recit/models/postgres"
	"Recit/services/geo"
	"Recit/services/store/memstore"
	"Recit/utils/apperrors"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var seattle = geo.Bounds{North: 47.7, West: -122.4, South: 47.5, East: -122.2}

type feedFixture struct {
	ctx    context.Context
	db     *memstore.Store
	engine *Engine
	host   *models.User
	now    time.Time
}

func newFeedFixture(t *testing.T) *feedFixture {
	t.Helper()
	db := memstore.New()
	engine := NewEngine(db, Config{
		GamesPageSize:     15,
		UserGamesPageSize: 3,
		MessagesPageSize:  15,
		DefaultBounds:     seattle,
	})
	now := time.Now()
	engine.SetClock(func() time.Time { return now })
	return &feedFixture{ctx: context.Background(), db: db, engine: engine, host: db.AddUser("host"), now: now}
}

func (f *feedFixture) game(t *testing.T, start time.Time, mutate func(*models.Game)) *models.Game {
	t.Helper()
	game := &models.Game{
		Title:         "Board night",
		StartTime:     start,
		EndTime:       start.Add(2 * time.Hour),
		Latitude:      47.6,
		Longitude:     -122.33,
		Category:      game_constants.CATEGORY_BOARD,
		Spots:         6,
		SpotsReserved: 1,
		Public:        true,
	}
	if mutate != nil {
		mutate(game)
	}
	require.NoError(t, f.db.CreateGame(f.ctx, game, f.host.ID))
	return game
}

func TestListGamesRoundTrip(t *testing.T) {
	f := newFeedFixture(t)
	game := f.game(t, f.now.Add(48*time.Hour), nil)

	page, err := f.engine.ListGames(f.ctx, GamesArgs{Category: game_constants.CATEGORY_BOARD})
	require.NoError(t, err)

	require.Len(t, page.Edges, 1)
	assert.EqualValues(t, 1, page.TotalCount)
	assert.False(t, page.HasNextPage)
	node := page.Edges[0].Node
	assert.Equal(t, game.ID, node.ID)
	assert.Equal(t, 1, node.Players)
	assert.Equal(t, game.Spots-1-game.SpotsReserved, node.OpenSpots)
	assert.True(t, game.StartTime.Equal(page.Edges[0].Cursor))
}

func TestListGamesPagination(t *testing.T) {
	f := newFeedFixture(t)
	for i := 0; i < 20; i++ {
		f.game(t, f.now.Add(time.Duration(i+1)*time.Hour), nil)
	}

	page, err := f.engine.ListGames(f.ctx, GamesArgs{})
	require.NoError(t, err)
	assert.Len(t, page.Edges, 15)
	assert.EqualValues(t, 20, page.TotalCount)
	assert.True(t, page.HasNextPage)
	for i := 1; i < len(page.Edges); i++ {
		assert.True(t, page.Edges[i-1].Cursor.Before(page.Edges[i].Cursor), "ascending start time")
	}

	cursor := page.Edges[len(page.Edges)-1].Cursor
	next, err := f.engine.ListGames(f.ctx, GamesArgs{Cursor: &cursor})
	require.NoError(t, err)
	assert.Len(t, next.Edges, 5)
	assert.False(t, next.HasNextPage)
}

func TestListGamesFilters(t *testing.T) {
	f := newFeedFixture(t)
	start := f.now.Add(72 * time.Hour)
	f.game(t, start, nil)
	f.game(t, start, func(g *models.Game) { g.Category, g.Sport = game_constants.CATEGORY_SPORT, "soccer" })
	f.game(t, start, func(g *models.Game) { g.Latitude, g.Longitude = 40.7, -74.0 })
	f.game(t, start, func(g *models.Game) { g.Public = false })
	f.game(t, f.now.Add(-time.Hour), nil)
	f.game(t, start, func(g *models.Game) { g.Spots, g.SpotsReserved = 2, 0 })

	count := func(args GamesArgs) int64 {
		page, err := f.engine.ListGames(f.ctx, args)
		require.NoError(t, err)
		return page.TotalCount
	}

	assert.EqualValues(t, 3, count(GamesArgs{}), "public, upcoming, in the default viewport")
	assert.EqualValues(t, 1, count(GamesArgs{Category: game_constants.CATEGORY_SPORT, Sport: "soccer"}))
	assert.EqualValues(t, 1, count(GamesArgs{Bounds: []float64{41, -75, 40, -73}}))
	assert.EqualValues(t, 2, count(GamesArgs{MinOpenSpots: 2}))
	assert.EqualValues(t, 0, count(GamesArgs{MinOpenSpots: 5}))
}

func TestListGamesStartDate(t *testing.T) {
	f := newFeedFixture(t)
	f.game(t, f.now.Add(30*24*time.Hour), nil)

	page, err := f.engine.ListGames(f.ctx, GamesArgs{StartDate: game_constants.START_DATE_LATER})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.TotalCount)

	page, err = f.engine.ListGames(f.ctx, GamesArgs{StartDate: game_constants.START_DATE_TOMORROW})
	require.NoError(t, err)
	assert.EqualValues(t, 0, page.TotalCount)
}

func TestListGamesReportsEveryInvalidArgument(t *testing.T) {
	f := newFeedFixture(t)

	_, err := f.engine.ListGames(f.ctx, GamesArgs{
		Category:     "CHESS",
		StartDate:    "YESTERDAY",
		Bounds:       []float64{1, 2},
		MinOpenSpots: -1,
	})
	require.ErrorIs(t, err, apperrors.ErrValidation)

	var fields []string
	for _, fe := range apperrors.As(err).Fields {
		fields = append(fields, fe.Field)
	}
	assert.ElementsMatch(t, []string{"category", "start_date", "bounds", "min_open_spots"}, fields)
}

func TestListGamesStoreFailure(t *testing.T) {
	f := newFeedFixture(t)
	f.db.Fail = fmt.Errorf("connection refused")

	_, err := f.engine.ListGames(f.ctx, GamesArgs{})
	assert.ErrorIs(t, err, apperrors.ErrUpstream)
}

func TestListUserGames(t *testing.T) {
	f := newFeedFixture(t)
	for i := 1; i <= 4; i++ {
		f.game(t, f.now.Add(time.Duration(i)*time.Hour), nil)
		f.game(t, f.now.Add(-time.Duration(i)*time.Hour), nil)
	}
	other := f.db.AddUser("other")
	require.NoError(t, f.db.CreateGame(f.ctx, &models.Game{StartTime: f.now.Add(time.Hour), Spots: 2, Public: true}, other.ID))

	upcoming, err := f.engine.ListUserGames(f.ctx, f.host.ID, false, nil)
	require.NoError(t, err)
	require.Len(t, upcoming.Edges, 3)
	assert.True(t, upcoming.HasNextPage)
	assert.True(t, upcoming.Edges[0].Cursor.Before(upcoming.Edges[1].Cursor))

	past, err := f.engine.ListUserGames(f.ctx, f.host.ID, true, nil)
	require.NoError(t, err)
	require.Len(t, past.Edges, 3)
	assert.True(t, past.Edges[0].Cursor.After(past.Edges[1].Cursor), "most recent first")

	cursor := past.Edges[2].Cursor
	rest, err := f.engine.ListUserGames(f.ctx, f.host.ID, true, &cursor)
	require.NoError(t, err)
	assert.Len(t, rest.Edges, 1)
	assert.False(t, rest.HasNextPage)
}

func TestListMessages(t *testing.T) {
	f := newFeedFixture(t)
	game := f.game(t, f.now.Add(time.Hour), nil)
	for i := 0; i < 17; i++ {
		gameID := game.ID
		require.NoError(t, f.db.CreateMessage(f.ctx, &models.Message{
			Content:        fmt.Sprintf("message %d", i),
			Author:         "host",
			Type:           game_constants.MESSAGE_TYPE_MESSAGE,
			GameID:         &gameID,
			ConversationID: game.ConversationID,
		}))
	}
	f.engine.SetClock(func() time.Time { return time.Now().Add(time.Minute) })

	page, err := f.engine.ListMessages(f.ctx, 0, game.ID, nil, 0)
	require.NoError(t, err)
	require.Len(t, page.Edges, 15)
	assert.True(t, page.HasNextPage)
	assert.Equal(t, "message 16", page.Edges[0].Node.Content)

	cursor := page.Edges[14].Cursor
	rest, err := f.engine.ListMessages(f.ctx, 0, game.ID, &cursor, 0)
	require.NoError(t, err)
	require.Len(t, rest.Edges, 2)
	assert.Equal(t, "message 0", rest.Edges[1].Node.Content)

	one, err := f.engine.ListMessages(f.ctx, 0, game.ID, nil, page.Edges[3].Node.ID)
	require.NoError(t, err)
	require.Len(t, one.Edges, 1)

	_, err = f.engine.ListMessages(f.ctx, 0, 999, nil, 0)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestPrivateMessagesNeedAParticipant(t *testing.T) {
	f := newFeedFixture(t)
	game := f.game(t, f.now.Add(time.Hour), func(g *models.Game) { g.Public = false })
	gameID := game.ID
	require.NoError(t, f.db.CreateMessage(f.ctx, &models.Message{
		Content:        "secret address",
		Author:         "host",
		Type:           game_constants.MESSAGE_TYPE_MESSAGE,
		GameID:         &gameID,
		ConversationID: game.ConversationID,
	}))
	f.engine.SetClock(func() time.Time { return time.Now().Add(time.Minute) })

	_, err := f.engine.ListMessages(f.ctx, 0, game.ID, nil, 0)
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)

	stranger := f.db.AddUser("stranger")
	_, err = f.engine.ListMessages(f.ctx, stranger.ID, game.ID, nil, 0)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	admin := &models.User{Name: "admin", Phone: "+100", Admin: true}
	require.NoError(t, f.db.CreateUser(f.ctx, admin))
	page, err := f.engine.ListMessages(f.ctx, admin.ID, game.ID, nil, 0)
	require.NoError(t, err)
	assert.Len(t, page.Edges, 1)

	page, err = f.engine.ListMessages(f.ctx, f.host.ID, game.ID, nil, 0)
	require.NoError(t, err)
	require.Len(t, page.Edges, 1)
	assert.Equal(t, "secret address", page.Edges[0].Node.Content)
}

package store_test

import (
	"Recit/config"
	game_constants "Recit/constants/game"
	models "Recit/models/postgres"
	"Recit/services/geo"
	"Recit/services/store"
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGormStore(t *testing.T) *store.GormStore {
	t.Helper()
	if os.Getenv("POSTGRES_HOST") == "" {
		t.Skip("POSTGRES_HOST not set")
	}
	db, err := config.ConnectGORM()
	require.NoError(t, err)
	require.NoError(t, config.MigrateDatabase(db))
	return store.NewGormStore(db)
}

func TestGormGameLifecycle(t *testing.T) {
	st := newGormStore(t)
	ctx := context.Background()

	host := models.User{Name: "Host", Phone: fmt.Sprintf("t-%d", time.Now().UnixNano()), PasswordHash: "x"}
	require.NoError(t, st.CreateUser(ctx, &host))

	start := time.Now().Add(72 * time.Hour)
	game := models.Game{
		Title:         "Board night",
		StartTime:     start,
		EndTime:       start.Add(3 * time.Hour),
		Latitude:      47.61,
		Longitude:     -122.3,
		Category:      game_constants.CATEGORY_BOARD,
		Spots:         6,
		SpotsReserved: 2,
		Public:        true,
	}
	require.NoError(t, st.CreateGame(ctx, &game, host.ID))
	defer st.DeleteGame(ctx, game.ID)

	row, err := st.FindGame(ctx, game.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, row.Players)
	assert.Equal(t, 3, row.OpenSpots())

	rows, total, err := st.FindGames(ctx, store.GameQuery{
		After:  time.Now(),
		Bounds: geo.Bounds{North: 47.7, West: -122.4, South: 47.5, East: -122.2},
		Limit:  15,
	})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, total, int64(1))
	assert.NotEmpty(t, rows)

	err = st.WithGameLock(ctx, game.ID, func(tx store.Store) error {
		removed, err := tx.DestroyPlayers(ctx, store.PlayerFilter{GameID: game.ID, Unclaimed: true}, 1)
		assert.Equal(t, int64(1), removed)
		return err
	})
	require.NoError(t, err)

	slots, err := st.FindPlayers(ctx, store.PlayerFilter{GameID: game.ID, Unclaimed: true})
	require.NoError(t, err)
	assert.Len(t, slots, 1)

	require.NoError(t, st.DeleteGame(ctx, game.ID))
	_, err = st.FindGame(ctx, game.ID)
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

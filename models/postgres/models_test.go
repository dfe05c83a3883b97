package postgres_test

import (
	"Recit/config"
	"Recit/models/postgres"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Helper function to clean up after tests
func cleanupDB(t *testing.T, db *gorm.DB) {
	// Delete records in reverse order of dependencies
	assert.NoError(t, db.Exec("DELETE FROM messages").Error)
	assert.NoError(t, db.Exec("DELETE FROM participants").Error)
	assert.NoError(t, db.Exec("DELETE FROM players").Error)
	assert.NoError(t, db.Exec("DELETE FROM games").Error)
	assert.NoError(t, db.Exec("DELETE FROM conversations").Error)
	assert.NoError(t, db.Exec("DELETE FROM users").Error)
}

func TestIsReservedSlot(t *testing.T) {
	id := uint(3)
	assert.True(t, (&postgres.Player{Level: 3}).IsReservedSlot())
	assert.False(t, (&postgres.Player{Level: 2, UserID: &id}).IsReservedSlot())
}

func TestGameCascade(t *testing.T) {
	if os.Getenv("POSTGRES_HOST") == "" {
		t.Skip("POSTGRES_HOST not set")
	}
	db, err := config.ConnectGORM()
	require.NoError(t, err)
	require.NoError(t, config.MigrateDatabase(db))
	defer cleanupDB(t, db)

	user := postgres.User{Name: "Ada", Phone: "test-555-0100", PasswordHash: "hashedpassword"}
	require.NoError(t, db.Create(&user).Error)

	conversation := postgres.Conversation{Title: "Volleyball"}
	require.NoError(t, db.Create(&conversation).Error)

	start := time.Now().Add(24 * time.Hour)
	game := postgres.Game{
		Title:          "Volleyball",
		StartTime:      start,
		EndTime:        start.Add(time.Hour),
		Latitude:       47.6,
		Longitude:      -122.33,
		Category:       "SPORT",
		Spots:          6,
		ConversationID: conversation.ID,
	}
	require.NoError(t, db.Omit("Conversation", "Players").Create(&game).Error)
	require.NoError(t, db.Create(&postgres.Player{GameID: game.ID, UserID: &user.ID, Level: 1}).Error)
	require.NoError(t, db.Create(&postgres.Participant{ConversationID: conversation.ID, UserID: user.ID, Level: 1}).Error)

	gameID := game.ID
	msg := postgres.Message{
		Content:        "joined",
		Type:           4,
		UserID:         &user.ID,
		GameID:         &gameID,
		ConversationID: conversation.ID,
		Meta:           datatypes.JSON(`{"action":"joined"}`),
	}
	require.NoError(t, db.Create(&msg).Error)

	var found postgres.Game
	require.NoError(t, db.Preload("Players").First(&found, game.ID).Error)
	assert.Len(t, found.Players, 1)

	require.NoError(t, db.Delete(&postgres.Conversation{}, conversation.ID).Error)

	var count int64
	db.Model(&postgres.Game{}).Where("id = ?", game.ID).Count(&count)
	assert.Zero(t, count)
	db.Model(&postgres.Message{}).Where("conversation_id = ?", conversation.ID).Count(&count)
	assert.Zero(t, count)
}

package store

import (
	game_constants "Recit/constants/game"
	models "Recit/models/postgres"
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Only hosts and joined players take a spot; reserved placeholders are
// accounted through games.spots_reserved.
var playersCount = fmt.Sprintf("COUNT(CASE WHEN players.level IN (%d, %d) THEN 1 END)",
	game_constants.PLAYER_LEVEL_HOST, game_constants.PLAYER_LEVEL_JOINED)

// GormStore implements Store on top of PostgreSQL.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *GormStore) gamesWithPlayers(ctx context.Context) *gorm.DB {
	return s.conn(ctx).Model(&models.Game{}).
		Select("games.*, " + playersCount + " AS players").
		Joins("LEFT JOIN players ON players.game_id = games.id").
		Group("games.id")
}

func (s *GormStore) FindGame(ctx context.Context, id uint) (*GameRow, error) {
	var row GameRow
	result := s.gamesWithPlayers(ctx).Where("games.id = ?", id).Scan(&row)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return &row, nil
}

func (s *GormStore) FindGames(ctx context.Context, q GameQuery) ([]GameRow, int64, error) {
	base := s.gamesWithPlayers(ctx).
		Where("games.public = ?", true).
		Where("games.start_time > ?", q.After).
		Where("point(games.longitude, games.latitude) <@ ?::polygon", q.Bounds.PolygonLiteral())

	if q.Category != "" {
		base = base.Where("games.category = ?", q.Category)
	}
	if q.Sport != "" {
		base = base.Where("games.sport = ?", q.Sport)
	}
	if q.StartFrom != nil {
		base = base.Where("games.start_time >= ?", *q.StartFrom)
	}
	if q.StartBefore != nil {
		base = base.Where("games.start_time < ?", *q.StartBefore)
	}
	if q.MinOpenSpots > 0 {
		base = base.Having("games.spots - "+playersCount+" - games.spots_reserved >= ?", q.MinOpenSpots)
	}
	base = base.Session(&gorm.Session{})

	var total int64
	if err := s.conn(ctx).Table("(?) AS matching", base).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("error counting games: %w", err)
	}

	var rows []GameRow
	if err := base.Order("games.start_time ASC").Limit(q.Limit).Scan(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("error listing games: %w", err)
	}
	return rows, total, nil
}

func (s *GormStore) FindUserGames(ctx context.Context, q UserGamesQuery) ([]GameRow, error) {
	playing := s.conn(ctx).Model(&models.Player{}).
		Select("game_id").
		Where("user_id = ? AND level IN ?", q.UserID,
			[]int{game_constants.PLAYER_LEVEL_HOST, game_constants.PLAYER_LEVEL_JOINED})

	query := s.gamesWithPlayers(ctx).Where("games.id IN (?)", playing)
	if q.Past {
		query = query.Where("games.start_time < ?", q.Cursor).Order("games.start_time DESC")
	} else {
		query = query.Where("games.start_time > ?", q.Cursor).Order("games.start_time ASC")
	}

	var rows []GameRow
	if err := query.Limit(q.Limit).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("error listing user games: %w", err)
	}
	return rows, nil
}

func (s *GormStore) CreateGame(ctx context.Context, game *models.Game, hostID uint) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		conversation := models.Conversation{Title: game.Title, LastActivity: time.Now()}
		if err := tx.Create(&conversation).Error; err != nil {
			return fmt.Errorf("error creating conversation: %w", err)
		}

		game.ConversationID = conversation.ID
		if err := tx.Omit(clause.Associations).Create(game).Error; err != nil {
			return fmt.Errorf("error creating game: %w", err)
		}

		host := models.Player{GameID: game.ID, UserID: &hostID, Level: game_constants.PLAYER_LEVEL_HOST}
		if err := tx.Create(&host).Error; err != nil {
			return fmt.Errorf("error creating host player: %w", err)
		}

		participant := models.Participant{
			ConversationID: conversation.ID,
			UserID:         hostID,
			Level:          game_constants.PARTICIPANT_LEVEL_PLAYER,
		}
		if err := tx.Create(&participant).Error; err != nil {
			return fmt.Errorf("error creating host participant: %w", err)
		}

		if game.SpotsReserved > 0 {
			slots := make([]models.Player, game.SpotsReserved)
			for i := range slots {
				slots[i] = models.Player{GameID: game.ID, Level: game_constants.PLAYER_LEVEL_INTERESTED}
			}
			if err := tx.Create(&slots).Error; err != nil {
				return fmt.Errorf("error creating reserved spots: %w", err)
			}
		}
		return nil
	})
}

func (s *GormStore) UpdateGame(ctx context.Context, id uint, fields GameFields) (*models.Game, error) {
	updates := map[string]interface{}{}
	if fields.Title != nil {
		updates["title"] = *fields.Title
	}
	if fields.StartTime != nil {
		updates["start_time"] = *fields.StartTime
	}
	if fields.EndTime != nil {
		updates["end_time"] = *fields.EndTime
	}
	if fields.Latitude != nil {
		updates["latitude"] = *fields.Latitude
	}
	if fields.Longitude != nil {
		updates["longitude"] = *fields.Longitude
	}
	if fields.Venue != nil {
		updates["venue"] = *fields.Venue
	}
	if fields.Address != nil {
		updates["address"] = *fields.Address
	}
	if fields.Category != nil {
		updates["category"] = *fields.Category
	}
	if fields.Sport != nil {
		updates["sport"] = *fields.Sport
	}
	if fields.Spots != nil {
		updates["spots"] = *fields.Spots
	}
	if fields.SpotsReserved != nil {
		updates["spots_reserved"] = *fields.SpotsReserved
	}
	if fields.Description != nil {
		updates["description"] = *fields.Description
	}
	if fields.Public != nil {
		updates["public"] = *fields.Public
	}
	if fields.Image != nil {
		updates["image"] = *fields.Image
	}

	if len(updates) > 0 {
		result := s.conn(ctx).Model(&models.Game{}).Where("id = ?", id).Updates(updates)
		if result.Error != nil {
			return nil, fmt.Errorf("error updating game: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil, ErrNotFound
		}
	}

	var game models.Game
	if err := s.conn(ctx).Where("id = ?", id).First(&game).Error; err != nil {
		return nil, translate(err)
	}
	return &game, nil
}

func (s *GormStore) DeleteGame(ctx context.Context, id uint) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var game models.Game
		if err := tx.Where("id = ?", id).First(&game).Error; err != nil {
			return translate(err)
		}
		if err := tx.Where("conversation_id = ?", game.ConversationID).Delete(&models.Message{}).Error; err != nil {
			return fmt.Errorf("error deleting messages: %w", err)
		}
		if err := tx.Where("conversation_id = ?", game.ConversationID).Delete(&models.Participant{}).Error; err != nil {
			return fmt.Errorf("error deleting participants: %w", err)
		}
		if err := tx.Where("game_id = ?", game.ID).Delete(&models.Player{}).Error; err != nil {
			return fmt.Errorf("error deleting players: %w", err)
		}
		if err := tx.Delete(&game).Error; err != nil {
			return fmt.Errorf("error deleting game: %w", err)
		}
		if err := tx.Delete(&models.Conversation{}, game.ConversationID).Error; err != nil {
			return fmt.Errorf("error deleting conversation: %w", err)
		}
		return nil
	})
}

func playerScope(db *gorm.DB, f PlayerFilter) *gorm.DB {
	db = db.Model(&models.Player{})
	if f.GameID != 0 {
		db = db.Where("game_id = ?", f.GameID)
	}
	if f.UserID != 0 {
		db = db.Where("user_id = ?", f.UserID)
	}
	if len(f.Levels) > 0 {
		db = db.Where("level IN ?", f.Levels)
	}
	if f.Unclaimed {
		db = db.Where("user_id IS NULL")
	}
	return db
}

func (s *GormStore) FindPlayers(ctx context.Context, f PlayerFilter) ([]models.Player, error) {
	var players []models.Player
	if err := playerScope(s.conn(ctx), f).Order("id ASC").Find(&players).Error; err != nil {
		return nil, fmt.Errorf("error finding players: %w", err)
	}
	return players, nil
}

func (s *GormStore) CreatePlayer(ctx context.Context, p *models.Player) error {
	return s.conn(ctx).Create(p).Error
}

func (s *GormStore) UpdatePlayer(ctx context.Context, p *models.Player) error {
	result := s.conn(ctx).Model(&models.Player{}).Where("id = ?", p.ID).
		Updates(map[string]interface{}{"user_id": p.UserID, "level": p.Level})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) DestroyPlayers(ctx context.Context, f PlayerFilter, limit int) (int64, error) {
	db := s.conn(ctx)
	ids := playerScope(db, f).Select("id").Order("id DESC")
	if limit > 0 {
		ids = ids.Limit(limit)
	}
	result := db.Where("id IN (?)", ids).Delete(&models.Player{})
	if result.Error != nil {
		return 0, fmt.Errorf("error destroying players: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (s *GormStore) FindParticipant(ctx context.Context, conversationID, userID uint) (*models.Participant, error) {
	var p models.Participant
	err := s.conn(ctx).Where("conversation_id = ? AND user_id = ?", conversationID, userID).First(&p).Error
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *GormStore) FindParticipants(ctx context.Context, conversationID uint) ([]models.Participant, error) {
	var participants []models.Participant
	if err := s.conn(ctx).Where("conversation_id = ?", conversationID).Find(&participants).Error; err != nil {
		return nil, fmt.Errorf("error finding participants: %w", err)
	}
	return participants, nil
}

func (s *GormStore) UpsertParticipant(ctx context.Context, p *models.Participant) error {
	return s.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "conversation_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"level", "invited", "updated_at"}),
	}).Create(p).Error
}

func (s *GormStore) DestroyParticipant(ctx context.Context, conversationID, userID uint) error {
	result := s.conn(ctx).Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Delete(&models.Participant{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) TouchConversation(ctx context.Context, conversationID uint, at time.Time) error {
	return s.conn(ctx).Model(&models.Conversation{}).
		Where("id = ?", conversationID).
		Update("last_activity", at).Error
}

func (s *GormStore) CreateMessage(ctx context.Context, m *models.Message) error {
	return s.conn(ctx).Create(m).Error
}

func (s *GormStore) FindMessage(ctx context.Context, id uint) (*models.Message, error) {
	var m models.Message
	if err := s.conn(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

func (s *GormStore) FindMessages(ctx context.Context, q MessageQuery) ([]models.Message, error) {
	query := s.conn(ctx).Where("game_id = ? AND updated_at < ?", q.GameID, q.Before)
	if q.MessageID != 0 {
		query = query.Where("id = ?", q.MessageID)
	}
	var messages []models.Message
	if err := query.Order("updated_at DESC").Limit(q.Limit).Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("error listing messages: %w", err)
	}
	return messages, nil
}

func (s *GormStore) UpdateMessage(ctx context.Context, id uint, content string) (*models.Message, error) {
	result := s.conn(ctx).Model(&models.Message{}).Where("id = ?", id).Update("content", content)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.FindMessage(ctx, id)
}

func (s *GormStore) DeleteMessage(ctx context.Context, id uint) error {
	result := s.conn(ctx).Delete(&models.Message{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) FindUser(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := s.conn(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *GormStore) FindUserByPhone(ctx context.Context, phone string) (*models.User, error) {
	var u models.User
	if err := s.conn(ctx).Where("phone = ?", phone).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *GormStore) CreateUser(ctx context.Context, u *models.User) error {
	return s.conn(ctx).Create(u).Error
}

// WithGameLock runs fn in a transaction holding SELECT ... FOR UPDATE on the
// game row, so concurrent roster changes of the same game are serialized.
func (s *GormStore) WithGameLock(ctx context.Context, gameID uint, fn func(tx Store) error) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var game models.Game
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			Where("id = ?", gameID).
			Take(&game).Error
		if err != nil {
			return translate(err)
		}
		return fn(&GormStore{db: tx})
	})
}

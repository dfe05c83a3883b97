// Package roster owns the spots of a game and the levels of its players
// and participants. Every mutation runs under a per-game lock, and its
// events are published once the store transaction has committed.
package roster

import (
	game_constants "Recit/constants/game"
	models "Recit/models/postgres"
	"Recit/services/pubsub"
	"Recit/services/store"
	"Recit/services/views"
	"Recit/utils/apperrors"
	"context"
	"encoding/json"
	"errors"
	"log"

	"gorm.io/datatypes"
)

type Ledger struct {
	store store.Store
	bus   pubsub.Publisher
	locks *gameLocks
}

func NewLedger(st store.Store, bus pubsub.Publisher) *Ledger {
	return &Ledger{store: st, bus: bus, locks: newGameLocks()}
}

// Change is the committed result of a roster mutation.
type Change struct {
	Game        store.GameRow
	Player      *models.Player
	Participant *models.Participant
	Message     *models.Message
	// Participants lists the rows an invitation created or updated
	Participants []models.Participant
	Events       []pubsub.Event
}

func (c *Change) emit(topic pubsub.Topic, payload interface{}) {
	c.Events = append(c.Events, pubsub.Event{Topic: topic, Payload: payload})
}

// withGame runs fn with the game locked, then publishes what fn emitted.
func (l *Ledger) withGame(ctx context.Context, gameID uint, fn func(tx store.Store, game *store.GameRow, change *Change) error) (*Change, error) {
	unlock := l.locks.lock(gameID)
	defer unlock()

	change := &Change{}
	err := l.store.WithGameLock(ctx, gameID, func(tx store.Store) error {
		game, err := tx.FindGame(ctx, gameID)
		if err != nil {
			return store.AppError("find game", "Game", err)
		}
		if err := fn(tx, game, change); err != nil {
			return err
		}
		fresh, err := tx.FindGame(ctx, gameID)
		if err != nil {
			return store.AppError("find game", "Game", err)
		}
		change.Game = *fresh
		return nil
	})
	if err != nil {
		return nil, store.AppError("lock game", "Game", err)
	}

	for _, ev := range change.Events {
		l.bus.Publish(ev.Topic, ev.Payload)
	}
	return change, nil
}

func (l *Ledger) findParticipant(ctx context.Context, tx store.Store, conversationID, userID uint) (*models.Participant, error) {
	p, err := tx.FindParticipant(ctx, conversationID, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, store.AppError("find participant", "Participant", err)
	}
	return p, nil
}

func levelOf(p *models.Participant) int {
	if p == nil {
		return participantLevelNone
	}
	return p.Level
}

func holdsInvitation(p *models.Participant) bool {
	return p != nil && (p.Invited || p.Level == game_constants.PARTICIPANT_LEVEL_INVITED)
}

func isSeated(p models.Player) bool {
	return p.Level == game_constants.PLAYER_LEVEL_HOST || p.Level == game_constants.PLAYER_LEVEL_JOINED
}

// Join seats the user in the game. Invitees claim a reserved spot when one
// is left, everyone else takes an open spot.
func (l *Ledger) Join(ctx context.Context, gameID, userID uint) (*Change, error) {
	return l.withGame(ctx, gameID, func(tx store.Store, game *store.GameRow, change *Change) error {
		user, err := tx.FindUser(ctx, userID)
		if err != nil {
			return store.AppError("find user", "User", err)
		}

		rows, err := tx.FindPlayers(ctx, store.PlayerFilter{GameID: gameID, UserID: userID})
		if err != nil {
			return store.AppError("find players", "Player", err)
		}
		for _, row := range rows {
			if isSeated(row) {
				return apperrors.ErrAlreadyJoined
			}
		}

		participant, err := l.findParticipant(ctx, tx, game.ConversationID, userID)
		if err != nil {
			return err
		}

		var slots []models.Player
		if holdsInvitation(participant) {
			slots, err = tx.FindPlayers(ctx, store.PlayerFilter{
				GameID:    gameID,
				Levels:    []int{game_constants.PLAYER_LEVEL_INTERESTED},
				Unclaimed: true,
			})
			if err != nil {
				return store.AppError("find reserved spots", "Player", err)
			}
		}

		transition := decideJoin(joinState{
			level:           levelOf(participant),
			hasReservedSlot: len(slots) > 0,
			hasOpenSpot:     game.OpenSpots() > 0,
		})
		log.Printf("[JOIN] User %d on game %d: %s", userID, gameID, transition.action)

		uid := userID
		var player models.Player
		switch transition.action {
		case actionClaimReserved:
			player = slots[0]
			player.UserID = &uid
			player.Level = game_constants.PLAYER_LEVEL_JOINED
			if err := tx.UpdatePlayer(ctx, &player); err != nil {
				return store.AppError("claim reserved spot", "Player", err)
			}
			reserved := game.SpotsReserved - 1
			if _, err := tx.UpdateGame(ctx, gameID, store.GameFields{SpotsReserved: &reserved}); err != nil {
				return store.AppError("update reserved spots", "Game", err)
			}
		case actionCreatePlayer:
			player = models.Player{GameID: gameID, UserID: &uid, Level: game_constants.PLAYER_LEVEL_JOINED}
			if err := tx.CreatePlayer(ctx, &player); err != nil {
				return store.AppError("create player", "Player", err)
			}
		default:
			return apperrors.ErrGameFull
		}

		next := &models.Participant{
			ConversationID: game.ConversationID,
			UserID:         userID,
			Level:          transition.nextLevel,
			Invited:        holdsInvitation(participant),
		}
		if err := tx.UpsertParticipant(ctx, next); err != nil {
			return store.AppError("upsert participant", "Participant", err)
		}

		message, err := systemMessage(ctx, tx, game, user, game_constants.JOINED_CONTENT, map[string]interface{}{
			"action":   game_constants.JOINED_CONTENT,
			"user_id":  userID,
			"reserved": transition.action == actionClaimReserved,
		})
		if err != nil {
			return err
		}

		change.Player, change.Participant, change.Message = &player, next, message
		userView, playerView := views.NewUser(*user), views.NewPlayer(player)
		change.emit(pubsub.ParticipantJoined, pubsub.ParticipantPayload{
			GameID: gameID,
			UserID: &uid,
			User:   &userView,
			Player: &playerView,
			Count:  1,
		})
		emitMessage(change, game, userID, *message)
		return nil
	})
}

// Leave removes the user from the roster and the conversation.
func (l *Ledger) Leave(ctx context.Context, gameID, userID uint) (*Change, error) {
	return l.withGame(ctx, gameID, func(tx store.Store, game *store.GameRow, change *Change) error {
		rows, err := tx.FindPlayers(ctx, store.PlayerFilter{GameID: gameID, UserID: userID})
		if err != nil {
			return store.AppError("find players", "Player", err)
		}
		if len(rows) == 0 {
			return apperrors.ErrNotAPlayer
		}
		for _, row := range rows {
			if row.Level == game_constants.PLAYER_LEVEL_HOST {
				return apperrors.ErrHostCannotLeave
			}
		}

		user, err := tx.FindUser(ctx, userID)
		if err != nil {
			return store.AppError("find user", "User", err)
		}
		removed, err := tx.DestroyPlayers(ctx, store.PlayerFilter{GameID: gameID, UserID: userID}, 0)
		if err != nil {
			return store.AppError("destroy player", "Player", err)
		}
		if err := tx.DestroyParticipant(ctx, game.ConversationID, userID); err != nil && !errors.Is(err, store.ErrNotFound) {
			return store.AppError("destroy participant", "Participant", err)
		}

		message, err := systemMessage(ctx, tx, game, user, game_constants.LEFT_CONTENT, map[string]interface{}{
			"action":  game_constants.LEFT_CONTENT,
			"user_id": userID,
		})
		if err != nil {
			return err
		}

		uid := userID
		userView := views.NewUser(*user)
		playerView := views.NewPlayer(rows[0])
		change.Player, change.Message = &rows[0], message
		change.emit(pubsub.ParticipantLeft, pubsub.ParticipantPayload{
			GameID: gameID,
			UserID: &uid,
			User:   &userView,
			Player: &playerView,
			Count:  int(removed),
		})
		emitMessage(change, game, userID, *message)
		return nil
	})
}

// Subscribe makes the user follow the game's conversation without taking
// a spot.
func (l *Ledger) Subscribe(ctx context.Context, gameID, userID uint) (*Change, error) {
	return l.withGame(ctx, gameID, func(tx store.Store, game *store.GameRow, change *Change) error {
		if _, err := tx.FindUser(ctx, userID); err != nil {
			return store.AppError("find user", "User", err)
		}
		participant, err := l.findParticipant(ctx, tx, game.ConversationID, userID)
		if err != nil {
			return err
		}
		if subscribeTable[levelOf(participant)] != actionSubscribe {
			return apperrors.ErrAlreadySubscribed
		}

		next := &models.Participant{
			ConversationID: game.ConversationID,
			UserID:         userID,
			Level:          game_constants.PARTICIPANT_LEVEL_INTERESTED,
			Invited:        holdsInvitation(participant),
		}
		if err := tx.UpsertParticipant(ctx, next); err != nil {
			return store.AppError("upsert participant", "Participant", err)
		}
		change.Participant = next
		return nil
	})
}

func (l *Ledger) Unsubscribe(ctx context.Context, gameID, userID uint) (*Change, error) {
	return l.withGame(ctx, gameID, func(tx store.Store, game *store.GameRow, change *Change) error {
		participant, err := l.findParticipant(ctx, tx, game.ConversationID, userID)
		if err != nil {
			return err
		}
		switch unsubscribeTable[levelOf(participant)] {
		case actionUnsubscribe:
		case actionRejectPlayer:
			return apperrors.ErrCannotUnsubscribeAsPlayer
		default:
			return apperrors.ErrNotSubscribed
		}

		if err := tx.DestroyParticipant(ctx, game.ConversationID, userID); err != nil {
			return store.AppError("destroy participant", "Participant", err)
		}
		change.Participant = participant
		return nil
	})
}

// Invite adds the users to the conversation as invitees, so they can claim
// a reserved spot when joining. Users already playing are skipped.
func (l *Ledger) Invite(ctx context.Context, gameID, actorID uint, userIDs []uint) (*Change, error) {
	return l.withGame(ctx, gameID, func(tx store.Store, game *store.GameRow, change *Change) error {
		actor, err := tx.FindUser(ctx, actorID)
		if err != nil {
			return store.AppError("find user", "User", err)
		}

		var invited []uint
		for _, userID := range userIDs {
			if _, err := tx.FindUser(ctx, userID); err != nil {
				return store.AppError("find user", "User", err)
			}
			participant, err := l.findParticipant(ctx, tx, game.ConversationID, userID)
			if err != nil {
				return err
			}
			level := game_constants.PARTICIPANT_LEVEL_INVITED
			switch levelOf(participant) {
			case game_constants.PARTICIPANT_LEVEL_PLAYER:
				continue
			case game_constants.PARTICIPANT_LEVEL_INTERESTED:
				level = game_constants.PARTICIPANT_LEVEL_INTERESTED
			}

			next := &models.Participant{
				ConversationID: game.ConversationID,
				UserID:         userID,
				Level:          level,
				Invited:        true,
			}
			if err := tx.UpsertParticipant(ctx, next); err != nil {
				return store.AppError("upsert participant", "Participant", err)
			}
			change.Participants = append(change.Participants, *next)
			invited = append(invited, userID)
		}
		if len(invited) == 0 {
			return nil
		}

		message, err := newMessage(ctx, tx, game, actor, game_constants.MESSAGE_TYPE_GAME_INVITE, game_constants.INVITED_CONTENT, map[string]interface{}{
			"action":   game_constants.INVITED_CONTENT,
			"user_ids": invited,
		})
		if err != nil {
			return err
		}
		change.Message = message
		emitMessage(change, game, actorID, *message)
		return nil
	})
}

func systemMessage(ctx context.Context, tx store.Store, game *store.GameRow, user *models.User, content string, meta map[string]interface{}) (*models.Message, error) {
	return newMessage(ctx, tx, game, user, game_constants.MESSAGE_TYPE_NOTIFICATION, content, meta)
}

func newMessage(ctx context.Context, tx store.Store, game *store.GameRow, user *models.User, kind int, content string, meta map[string]interface{}) (*models.Message, error) {
	raw, err := json.Marshal(meta)
	if err != nil {
		return nil, apperrors.As(err)
	}
	gameID, userID := game.ID, user.ID
	message := &models.Message{
		Content:        content,
		Author:         user.Name,
		Type:           kind,
		UserID:         &userID,
		GameID:         &gameID,
		ConversationID: game.ConversationID,
		Meta:           datatypes.JSON(raw),
	}
	if err := tx.CreateMessage(ctx, message); err != nil {
		return nil, store.AppError("create message", "Message", err)
	}
	return message, nil
}

func emitMessage(change *Change, game *store.GameRow, actorID uint, message models.Message) {
	view := views.NewMessage(message)
	change.emit(pubsub.MessageAdded, pubsub.MessagePayload{
		GameID:         game.ID,
		ConversationID: game.ConversationID,
		Message:        view,
	})
	change.emit(pubsub.Notification, pubsub.NotificationPayload{
		ConversationID: game.ConversationID,
		GameID:         game.ID,
		ActorID:        actorID,
		Message:        view,
	})
}

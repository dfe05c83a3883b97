package games

import (
	game_constants "Recit/constants/game"
	models "Recit/models/postgres"
	"Recit/services/pubsub"
	"Recit/services/store"
	"Recit/services/views"
	"Recit/utils/apperrors"
	"context"
	"strings"
)

// MessageInput is a chat message posted to a game.
type MessageInput struct {
	Content string `json:"content" validate:"required,max=2000"`
	Type    int    `json:"type" validate:"omitempty,oneof=1 2 3 4 5"`
}

func validateMessage(in MessageInput) error {
	var v apperrors.Validator
	v.Collect(validate.Struct(in))
	return v.Err()
}

// CreateMessage posts to the conversation of the game. Only participants
// may post, and only the host may broadcast.
func (s *Service) CreateMessage(ctx context.Context, actorID, gameID uint, in MessageInput) (*views.Message, error) {
	ctx = context.WithoutCancel(ctx)
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	game, err := s.store.FindGame(ctx, gameID)
	if err != nil {
		return nil, store.AppError("find game", "Game", err)
	}

	in.Content = strings.TrimSpace(in.Content)
	if in.Type == 0 {
		in.Type = game_constants.MESSAGE_TYPE_MESSAGE
	}
	if err := validateMessage(in); err != nil {
		return nil, err
	}
	switch in.Type {
	case game_constants.MESSAGE_TYPE_MESSAGE, game_constants.MESSAGE_TYPE_COMMENT:
		if err := s.authorizeParticipant(ctx, actor.ID, game); err != nil {
			return nil, err
		}
	case game_constants.MESSAGE_TYPE_BROADCAST:
		if err := s.authorizeHost(ctx, actor, gameID, "broadcast"); err != nil {
			return nil, err
		}
	default:
		return nil, apperrors.Validation([]apperrors.FieldError{{Field: "type", Message: "cannot post this message type"}})
	}

	gid, uid := game.ID, actor.ID
	message := &models.Message{
		Content:        in.Content,
		Author:         actor.Name,
		Type:           in.Type,
		UserID:         &uid,
		GameID:         &gid,
		ConversationID: game.ConversationID,
	}
	if err := s.store.CreateMessage(ctx, message); err != nil {
		return nil, store.AppError("create message", "Message", err)
	}

	view := views.NewMessage(*message)
	s.bus.Publish(pubsub.MessageAdded, pubsub.MessagePayload{GameID: gid, ConversationID: game.ConversationID, Message: view})
	s.bus.Publish(pubsub.Notification, pubsub.NotificationPayload{
		ConversationID: game.ConversationID,
		GameID:         gid,
		ActorID:        actor.ID,
		Message:        view,
	})
	s.touch(ctx, game.ConversationID)
	return &view, nil
}

// editableMessage loads a message the actor may change: its own, or any
// when the actor is an admin. System messages are never editable.
func (s *Service) editableMessage(ctx context.Context, actor *models.User, messageID uint, allowHost bool) (*models.Message, error) {
	message, err := s.store.FindMessage(ctx, messageID)
	if err != nil {
		return nil, store.AppError("find message", "Message", err)
	}
	if message.Type == game_constants.MESSAGE_TYPE_NOTIFICATION {
		return nil, apperrors.Unauthorized("system messages cannot be changed")
	}
	if actor.Admin || (message.UserID != nil && *message.UserID == actor.ID) {
		return message, nil
	}
	if allowHost && message.GameID != nil {
		host, err := s.isHost(ctx, *message.GameID, actor.ID)
		if err != nil {
			return nil, err
		}
		if host {
			return message, nil
		}
	}
	return nil, apperrors.Unauthorized("you cannot change this message")
}

func (s *Service) UpdateMessage(ctx context.Context, actorID, messageID uint, content string) (*views.Message, error) {
	ctx = context.WithoutCancel(ctx)
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if err := validateMessage(MessageInput{Content: content}); err != nil {
		return nil, err
	}
	if _, err := s.editableMessage(ctx, actor, messageID, false); err != nil {
		return nil, err
	}

	updated, err := s.store.UpdateMessage(ctx, messageID, content)
	if err != nil {
		return nil, store.AppError("update message", "Message", err)
	}

	view := views.NewMessage(*updated)
	s.bus.Publish(pubsub.MessageUpdated, pubsub.MessagePayload{
		GameID:         gameOf(updated),
		ConversationID: updated.ConversationID,
		Message:        view,
	})
	s.touch(ctx, updated.ConversationID)
	return &view, nil
}

// DeleteMessage removes a message. The host of the game may delete any
// message posted to it.
func (s *Service) DeleteMessage(ctx context.Context, actorID, messageID uint) error {
	ctx = context.WithoutCancel(ctx)
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return err
	}
	message, err := s.editableMessage(ctx, actor, messageID, true)
	if err != nil {
		return err
	}

	if err := s.store.DeleteMessage(ctx, messageID); err != nil {
		return store.AppError("delete message", "Message", err)
	}

	s.bus.Publish(pubsub.MessageDeleted, pubsub.MessagePayload{
		GameID:         gameOf(message),
		ConversationID: message.ConversationID,
		Message:        views.NewMessage(*message),
	})
	s.touch(ctx, message.ConversationID)
	return nil
}

func gameOf(m *models.Message) uint {
	if m.GameID == nil {
		return 0
	}
	return *m.GameID
}

package store

import (
	models "Recit/models/postgres"
	"Recit/utils/apperrors"
	"context"
	"errors"
)

// Actor resolves the user behind actorID; 0 means nobody is logged in.
func Actor(ctx context.Context, st Store, actorID uint) (*models.User, error) {
	if actorID == 0 {
		return nil, apperrors.Unauthenticated()
	}
	user, err := st.FindUser(ctx, actorID)
	if errors.Is(err, ErrNotFound) {
		return nil, apperrors.Unauthenticated()
	}
	if err != nil {
		return nil, AppError("find user", "User", err)
	}
	return user, nil
}

// AuthorizeParticipant lets admins and the participants of the game's
// conversation through.
func AuthorizeParticipant(ctx context.Context, st Store, actorID uint, game *GameRow) error {
	actor, err := Actor(ctx, st, actorID)
	if err != nil {
		return err
	}
	if actor.Admin {
		return nil
	}
	_, err = st.FindParticipant(ctx, game.ConversationID, actor.ID)
	if errors.Is(err, ErrNotFound) {
		return apperrors.Unauthorized("you are not a participant of this game")
	}
	if err != nil {
		return AppError("find participant", "Participant", err)
	}
	return nil
}

// AuthorizeViewer lets anyone see a public game. Private games, their
// roster and their chat are only shown to participants and admins.
func AuthorizeViewer(ctx context.Context, st Store, actorID uint, game *GameRow) error {
	if game.Public {
		return nil
	}
	return AuthorizeParticipant(ctx, st, actorID, game)
}

// Package games coordinates every game mutation: it authenticates and
// authorizes the actor, validates the input, applies the change through
// the store or the roster ledger, and publishes what happened once the
// change is committed.
package games

import (
	game_constants "Recit/constants/game"
	models "Recit/models/postgres"
	"Recit/services/pubsub"
	"Recit/services/roster"
	"Recit/services/store"
	"Recit/services/views"
	"Recit/utils/apperrors"
	"context"
	"log"
	"time"
)

// ActivityToucher is the post-commit step run whenever the participants or
// the messages of a conversation change, or the conversation goes away.
type ActivityToucher interface {
	TouchConversation(ctx context.Context, conversationID uint) error
	ForgetConversation(ctx context.Context, conversationID uint, userIDs []uint) error
}

type Service struct {
	store    store.Store
	ledger   *roster.Ledger
	bus      pubsub.Publisher
	activity ActivityToucher
	now      func() time.Time
}

func NewService(st store.Store, ledger *roster.Ledger, bus pubsub.Publisher, activity ActivityToucher) *Service {
	return &Service{store: st, ledger: ledger, bus: bus, activity: activity, now: time.Now}
}

// GameDetail is a game together with its roster.
type GameDetail struct {
	Game    views.Game     `json:"game"`
	Players []views.Player `json:"players"`
}

// actor resolves the authenticated user; 0 means nobody is logged in.
func (s *Service) actor(ctx context.Context, actorID uint) (*models.User, error) {
	return store.Actor(ctx, s.store, actorID)
}

func (s *Service) isHost(ctx context.Context, gameID, userID uint) (bool, error) {
	hosts, err := s.store.FindPlayers(ctx, store.PlayerFilter{
		GameID: gameID,
		UserID: userID,
		Levels: []int{game_constants.PLAYER_LEVEL_HOST},
	})
	if err != nil {
		return false, store.AppError("find host", "Player", err)
	}
	return len(hosts) > 0, nil
}

// authorizeHost lets the host of the game or an admin through.
func (s *Service) authorizeHost(ctx context.Context, actor *models.User, gameID uint, action string) error {
	if actor.Admin {
		return nil
	}
	host, err := s.isHost(ctx, gameID, actor.ID)
	if err != nil {
		return err
	}
	if !host {
		return apperrors.Unauthorized("only the host can " + action)
	}
	return nil
}

// touch runs the post-commit activity step. The mutation is already
// committed, so a failure here is logged and not returned.
func (s *Service) touch(ctx context.Context, conversationID uint) {
	if s.activity == nil {
		return
	}
	if err := s.activity.TouchConversation(ctx, conversationID); err != nil {
		log.Printf("[ACTIVITY-ERROR] Could not touch conversation %d: %v", conversationID, err)
	}
}

func (s *Service) CreateGame(ctx context.Context, actorID uint, in GameInput) (*views.Game, error) {
	ctx = context.WithoutCancel(ctx)
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	game := in.apply(models.Game{Public: true})
	if err := validateGame(game, s.now(), checks{futureStart: true, reservation: true}); err != nil {
		return nil, err
	}

	if err := s.store.CreateGame(ctx, &game, actor.ID); err != nil {
		return nil, store.AppError("create game", "Game", err)
	}
	row, err := s.store.FindGame(ctx, game.ID)
	if err != nil {
		return nil, store.AppError("find game", "Game", err)
	}
	log.Printf("[GAME-SUCCESS] User %d created game %d", actor.ID, game.ID)

	view := views.NewGame(*row)
	if view.Public {
		s.bus.Publish(pubsub.GameAdded, pubsub.GameAddedPayload{Game: view})
	}
	s.touch(ctx, row.ConversationID)
	return &view, nil
}

func (s *Service) UpdateGame(ctx context.Context, actorID, gameID uint, in GameInput) (*views.Game, error) {
	ctx = context.WithoutCancel(ctx)
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.FindGame(ctx, gameID); err != nil {
		return nil, store.AppError("find game", "Game", err)
	}
	if err := s.authorizeHost(ctx, actor, gameID, "edit the game"); err != nil {
		return nil, err
	}

	now := s.now()
	change, err := s.ledger.Update(ctx, gameID, in.fields(), func(current store.GameRow) error {
		merged := in.apply(current.Game)
		startMoved := in.StartTime != nil && !in.StartTime.Equal(current.StartTime)
		return validateGame(merged, now, checks{futureStart: startMoved})
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[GAME-SUCCESS] User %d updated game %d", actor.ID, gameID)

	s.touch(ctx, change.Game.ConversationID)
	view := views.NewGame(change.Game)
	return &view, nil
}

func (s *Service) DeleteGame(ctx context.Context, actorID, gameID uint) error {
	ctx = context.WithoutCancel(ctx)
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return err
	}
	row, err := s.store.FindGame(ctx, gameID)
	if err != nil {
		return store.AppError("find game", "Game", err)
	}
	if err := s.authorizeHost(ctx, actor, gameID, "delete the game"); err != nil {
		return err
	}
	participants, err := s.store.FindParticipants(ctx, row.ConversationID)
	if err != nil {
		return store.AppError("find participants", "Participant", err)
	}

	if err := s.store.DeleteGame(ctx, gameID); err != nil {
		return store.AppError("delete game", "Game", err)
	}
	log.Printf("[GAME-SUCCESS] User %d deleted game %d", actor.ID, gameID)

	s.bus.Publish(pubsub.GameDeleted, pubsub.GameDeletedPayload{GameID: gameID})

	if s.activity != nil {
		userIDs := make([]uint, 0, len(participants))
		for _, p := range participants {
			userIDs = append(userIDs, p.UserID)
		}
		if err := s.activity.ForgetConversation(ctx, row.ConversationID, userIDs); err != nil {
			log.Printf("[ACTIVITY-ERROR] Could not forget conversation %d: %v", row.ConversationID, err)
		}
	}
	return nil
}

// GetGame returns a game with its roster. Private games are only shown to
// their participants and to admins.
func (s *Service) GetGame(ctx context.Context, actorID, gameID uint) (*GameDetail, error) {
	row, err := s.store.FindGame(ctx, gameID)
	if err != nil {
		return nil, store.AppError("find game", "Game", err)
	}
	if err := store.AuthorizeViewer(ctx, s.store, actorID, row); err != nil {
		return nil, err
	}

	players, err := s.store.FindPlayers(ctx, store.PlayerFilter{GameID: gameID})
	if err != nil {
		return nil, store.AppError("find players", "Player", err)
	}
	detail := &GameDetail{Game: views.NewGame(*row), Players: make([]views.Player, 0, len(players))}
	for _, p := range players {
		detail.Players = append(detail.Players, views.NewPlayer(p))
	}
	return detail, nil
}

func (s *Service) authorizeParticipant(ctx context.Context, actorID uint, game *store.GameRow) error {
	return store.AuthorizeParticipant(ctx, s.store, actorID, game)
}

type rosterOp func(ctx context.Context, gameID, userID uint) (*roster.Change, error)

func (s *Service) applyRoster(ctx context.Context, actorID, gameID uint, op rosterOp) (*views.Game, error) {
	ctx = context.WithoutCancel(ctx)
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	change, err := op(ctx, gameID, actor.ID)
	if err != nil {
		return nil, err
	}
	s.touch(ctx, change.Game.ConversationID)
	view := views.NewGame(change.Game)
	return &view, nil
}

func (s *Service) JoinGame(ctx context.Context, actorID, gameID uint) (*views.Game, error) {
	return s.applyRoster(ctx, actorID, gameID, s.ledger.Join)
}

func (s *Service) LeaveGame(ctx context.Context, actorID, gameID uint) (*views.Game, error) {
	return s.applyRoster(ctx, actorID, gameID, s.ledger.Leave)
}

func (s *Service) SubscribeGame(ctx context.Context, actorID, gameID uint) (*views.Game, error) {
	return s.applyRoster(ctx, actorID, gameID, s.ledger.Subscribe)
}

func (s *Service) UnsubscribeGame(ctx context.Context, actorID, gameID uint) (*views.Game, error) {
	return s.applyRoster(ctx, actorID, gameID, s.ledger.Unsubscribe)
}

// InviteToGame lets the host invite users, who may then claim a reserved
// spot.
func (s *Service) InviteToGame(ctx context.Context, actorID, gameID uint, userIDs []uint) ([]models.Participant, error) {
	ctx = context.WithoutCancel(ctx)
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if len(userIDs) == 0 {
		return nil, apperrors.Validation([]apperrors.FieldError{{Field: "user_ids", Message: "is required"}})
	}
	if _, err := s.store.FindGame(ctx, gameID); err != nil {
		return nil, store.AppError("find game", "Game", err)
	}
	if err := s.authorizeHost(ctx, actor, gameID, "invite players"); err != nil {
		return nil, err
	}

	change, err := s.ledger.Invite(ctx, gameID, actor.ID, userIDs)
	if err != nil {
		return nil, err
	}
	s.touch(ctx, change.Game.ConversationID)
	return change.Participants, nil
}

package roster

import (
	game_constants "Recit/constants/game"
	models "Recit/models/postgres"
	"Recit/services/pubsub"
	"Recit/services/store"
	"Recit/services/views"
	"Recit/utils/apperrors"
	"context"
	"log"
)

// Update applies fields to the game under its lock. prepare sees the
// current game first and may reject the update. A change of the reserved
// spots creates or destroys the matching placeholders.
func (l *Ledger) Update(ctx context.Context, gameID uint, fields store.GameFields, prepare func(current store.GameRow) error) (*Change, error) {
	return l.withGame(ctx, gameID, func(tx store.Store, game *store.GameRow, change *Change) error {
		if prepare != nil {
			if err := prepare(*game); err != nil {
				return err
			}
		}

		spots, reserved := game.Spots, game.SpotsReserved
		if fields.Spots != nil {
			spots = *fields.Spots
		}
		if fields.SpotsReserved != nil {
			reserved = *fields.SpotsReserved
		}
		if err := checkCapacity(*game, spots, reserved); err != nil {
			return err
		}

		if _, err := tx.UpdateGame(ctx, gameID, fields); err != nil {
			return store.AppError("update game", "Game", err)
		}
		events, err := l.ReconcileReservedSpots(ctx, tx, gameID, game.SpotsReserved, reserved)
		if err != nil {
			return err
		}
		change.Events = append(change.Events, events...)
		return nil
	})
}

// checkCapacity rejects spot counts that would leave the game without an
// open spot or with fewer spots than seated players.
func checkCapacity(game store.GameRow, spots, reserved int) error {
	if reserved < 0 {
		var v apperrors.Validator
		v.Add("spots_reserved", "cannot be negative")
		return v.Err()
	}
	open := spots - game.Players - reserved
	if reserved > spots-game_constants.MinUnreservedSpots || (reserved > game.SpotsReserved && open < 1) {
		return apperrors.ErrReservationExceedsCapacity
	}
	if open < 0 {
		var v apperrors.Validator
		v.Add("spots", "cannot be lower than the %d players plus %d reserved spots", game.Players, reserved)
		return v.Err()
	}
	return nil
}

// ReconcileReservedSpots makes the unclaimed placeholders of the game match
// newReserved. It must run inside the game's transaction; the returned
// events are to be published after commit.
func (l *Ledger) ReconcileReservedSpots(ctx context.Context, tx store.Store, gameID uint, oldReserved, newReserved int) ([]pubsub.Event, error) {
	var events []pubsub.Event
	switch {
	case newReserved > oldReserved:
		for i := 0; i < newReserved-oldReserved; i++ {
			slot := models.Player{GameID: gameID, Level: game_constants.PLAYER_LEVEL_INTERESTED}
			if err := tx.CreatePlayer(ctx, &slot); err != nil {
				return nil, store.AppError("create reserved spot", "Player", err)
			}
			view := views.NewPlayer(slot)
			events = append(events, pubsub.Event{
				Topic:   pubsub.ParticipantJoined,
				Payload: pubsub.ParticipantPayload{GameID: gameID, Player: &view, Reserved: true, Count: 1},
			})
		}
	case newReserved < oldReserved:
		delta := oldReserved - newReserved
		unclaimed := store.PlayerFilter{
			GameID:    gameID,
			Levels:    []int{game_constants.PLAYER_LEVEL_INTERESTED},
			Unclaimed: true,
		}
		slots, err := tx.FindPlayers(ctx, unclaimed)
		if err != nil {
			return nil, store.AppError("find reserved spots", "Player", err)
		}
		if len(slots) < delta {
			return nil, apperrors.ErrClaimedSpotsCannotBeRemoved
		}
		removed, err := tx.DestroyPlayers(ctx, unclaimed, delta)
		if err != nil {
			return nil, store.AppError("destroy reserved spots", "Player", err)
		}
		events = append(events, pubsub.Event{
			Topic:   pubsub.ParticipantLeft,
			Payload: pubsub.ParticipantPayload{GameID: gameID, Reserved: true, Count: int(removed)},
		})
	}
	if len(events) > 0 {
		log.Printf("[RESERVE] Game %d reserved spots %d -> %d", gameID, oldReserved, newReserved)
	}
	return events, nil
}

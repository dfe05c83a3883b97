package games

import (
	game_constants "Recit/constants/game"
	models "Recit/models/postgres"
	"Recit/services/store"
	"Recit/utils/apperrors"
	"strings"
	"time"
)

// GameInput carries the fields of a create or an update. On update, nil
// fields are left untouched.
type GameInput struct {
	Title         *string    `json:"title" validate:"required,min=1,max=50"`
	StartTime     *time.Time `json:"start_time" validate:"required"`
	EndTime       *time.Time `json:"end_time" validate:"required,gtfield=StartTime"`
	Latitude      *float64   `json:"latitude" validate:"required,latitude"`
	Longitude     *float64   `json:"longitude" validate:"required,longitude"`
	Venue         *string    `json:"venue" validate:"omitempty,max=100"`
	Address       *string    `json:"address" validate:"omitempty,max=200"`
	Category      *string    `json:"category" validate:"required,oneof=SPORT BOARD CARD VIDEO"`
	Sport         *string    `json:"sport" validate:"omitempty,max=50"`
	Spots         *int       `json:"spots" validate:"required,min=2,max=32"`
	SpotsReserved *int       `json:"spots_reserved" validate:"omitempty,min=0"`
	Description   *string    `json:"description" validate:"omitempty,max=1000"`
	Public        *bool      `json:"public"`
	Image         *string    `json:"image" validate:"omitempty,max=500"`
}

func (in GameInput) fields() store.GameFields {
	return store.GameFields{
		Title:         in.Title,
		StartTime:     in.StartTime,
		EndTime:       in.EndTime,
		Latitude:      in.Latitude,
		Longitude:     in.Longitude,
		Venue:         in.Venue,
		Address:       in.Address,
		Category:      in.Category,
		Sport:         in.Sport,
		Spots:         in.Spots,
		SpotsReserved: in.SpotsReserved,
		Description:   in.Description,
		Public:        in.Public,
		Image:         in.Image,
	}
}

// apply returns game with the non-nil fields of in set.
func (in GameInput) apply(game models.Game) models.Game {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&game.Title, in.Title)
	set(&game.Venue, in.Venue)
	set(&game.Address, in.Address)
	set(&game.Category, in.Category)
	set(&game.Sport, in.Sport)
	set(&game.Description, in.Description)
	set(&game.Image, in.Image)
	if in.StartTime != nil {
		game.StartTime = *in.StartTime
	}
	if in.EndTime != nil {
		game.EndTime = *in.EndTime
	}
	if in.Latitude != nil {
		game.Latitude = *in.Latitude
	}
	if in.Longitude != nil {
		game.Longitude = *in.Longitude
	}
	if in.Spots != nil {
		game.Spots = *in.Spots
	}
	if in.SpotsReserved != nil {
		game.SpotsReserved = *in.SpotsReserved
	}
	if in.Public != nil {
		game.Public = *in.Public
	}
	return game
}

// draft is the complete input a game would be created or saved from, the
// shape the validator rules are written against.
func draft(game models.Game) GameInput {
	in := GameInput{
		Title:         &game.Title,
		Latitude:      &game.Latitude,
		Longitude:     &game.Longitude,
		Venue:         &game.Venue,
		Address:       &game.Address,
		Category:      &game.Category,
		Sport:         &game.Sport,
		Spots:         &game.Spots,
		SpotsReserved: &game.SpotsReserved,
		Description:   &game.Description,
		Public:        &game.Public,
		Image:         &game.Image,
	}
	if !game.StartTime.IsZero() {
		in.StartTime = &game.StartTime
	}
	if !game.EndTime.IsZero() {
		in.EndTime = &game.EndTime
	}
	return in
}

var validate = apperrors.NewValidate()

type checks struct {
	futureStart bool
	// on updates the reservation is checked against the roster instead
	reservation bool
}

// validateGame collects every violation of game.
func validateGame(game models.Game, now time.Time, c checks) error {
	var v apperrors.Validator
	v.Collect(validate.Struct(draft(game)))

	if c.futureStart && !game.StartTime.IsZero() && !game.StartTime.After(now) {
		v.Add("start_time", "must be in the future")
	}
	if c.reservation && game.SpotsReserved > game.Spots-game_constants.MinUnreservedSpots {
		v.Add("spots_reserved", "must be between 0 and %d", max(game.Spots-game_constants.MinUnreservedSpots, 0))
	}
	return v.Err()
}

package apperrors

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type signup struct {
	Name  string     `json:"name" validate:"min=1,max=5"`
	Kind  string     `json:"kind" validate:"oneof=SPORT BOARD"`
	Seats int        `json:"seats" validate:"min=2"`
	From  time.Time  `json:"from"`
	To    *time.Time `json:"to" validate:"required,gtfield=From"`
	Lat   float64    `json:"lat" validate:"latitude"`
}

func TestCollectUsesJSONNames(t *testing.T) {
	now := time.Now()
	before := now.Add(-time.Hour)
	var v Validator
	v.Collect(NewValidate().Struct(signup{Name: "", Kind: "CHESS", Seats: 1, From: now, To: &before, Lat: 91}))

	err := v.Err()
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, []FieldError{
		{Field: "name", Message: "is required"},
		{Field: "kind", Message: "must be one of SPORT, BOARD"},
		{Field: "seats", Message: "must be at least 2"},
		{Field: "to", Message: "must be after from"},
		{Field: "lat", Message: "is not a valid latitude"},
	}, As(err).Fields)
}

func TestCollectPassesCleanStructs(t *testing.T) {
	later := time.Now().Add(time.Hour)
	var v Validator
	v.Collect(NewValidate().Struct(signup{Name: "ok", Kind: "BOARD", Seats: 2, From: time.Now(), To: &later}))
	v.Collect(nil)
	assert.NoError(t, v.Err())

	v.Collect(errors.New("validator: (nil *apperrors.signup)"))
	assert.Equal(t, "input", As(v.Err()).Fields[0].Field)
}

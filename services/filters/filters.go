// Package filters decides, per topic, whether a published event concerns a
// subscriber given the variables it subscribed with.
package filters

import (
	game_constants "Recit/constants/game"
	models "Recit/models/postgres"
	"Recit/services/geo"
	"Recit/services/pubsub"
	"Recit/services/store"
	"context"
	"errors"
	"log"
	"time"
)

// Variables are the query variables a client subscribed with. UserID comes
// from the authenticated connection, never from the client payload.
type Variables struct {
	UserID         uint       `json:"-"`
	GameID         uint       `json:"game_id,omitempty"`
	ConversationID uint       `json:"conversation_id,omitempty"`
	Bounds         []float64  `json:"bounds,omitempty"`
	Cursor         *time.Time `json:"cursor,omitempty"`
	Loaded         int        `json:"loaded"`
	LoadedIDs      []uint     `json:"loaded_ids,omitempty"`
}

// ParticipantFinder is the single store read a filter may need.
type ParticipantFinder interface {
	FindParticipant(ctx context.Context, conversationID, userID uint) (*models.Participant, error)
}

type Set struct {
	participants  ParticipantFinder
	pageSize      int
	defaultBounds geo.Bounds
	lookupTimeout time.Duration
}

func NewSet(participants ParticipantFinder, pageSize int, defaultBounds geo.Bounds) *Set {
	return &Set{
		participants:  participants,
		pageSize:      pageSize,
		defaultBounds: defaultBounds,
		lookupTimeout: 2 * time.Second,
	}
}

// Bounds returns the viewport of v, or the default one when v has none or
// an invalid one.
func (s *Set) Bounds(v Variables) geo.Bounds {
	if len(v.Bounds) == 0 {
		return s.defaultBounds
	}
	b, err := geo.FromSlice(v.Bounds)
	if err != nil {
		return s.defaultBounds
	}
	return b
}

// Match routes ev to the predicate of its topic.
func (s *Set) Match(ev pubsub.Event, v Variables) bool {
	switch ev.Topic {
	case pubsub.GameAdded:
		return s.GameAdded(ev.Payload, v)
	case pubsub.GameDeleted:
		return GameDeleted(ev.Payload, v)
	case pubsub.ParticipantJoined, pubsub.ParticipantLeft:
		return ParticipantChanged(ev.Payload, v)
	case pubsub.MessageAdded, pubsub.MessageUpdated, pubsub.MessageDeleted:
		return MessageChanged(ev.Payload, v)
	case pubsub.Notification:
		return s.Notification(ev.Payload, v)
	}
	return false
}

// GameAdded passes when the game lies in the viewport and would show up in
// what the subscriber has loaded: before its cursor, or anywhere while the
// first page is not full yet.
func (s *Set) GameAdded(payload interface{}, v Variables) bool {
	p, ok := payload.(pubsub.GameAddedPayload)
	if !ok {
		return false
	}
	if !s.Bounds(v).Contains(p.Game.Latitude, p.Game.Longitude) {
		return false
	}
	if v.Loaded < s.pageSize {
		return true
	}
	return v.Cursor != nil && p.Game.StartTime.Before(*v.Cursor)
}

func GameDeleted(payload interface{}, v Variables) bool {
	p, ok := payload.(pubsub.GameDeletedPayload)
	if !ok {
		return false
	}
	for _, id := range v.LoadedIDs {
		if id == p.GameID {
			return true
		}
	}
	return false
}

func ParticipantChanged(payload interface{}, v Variables) bool {
	p, ok := payload.(pubsub.ParticipantPayload)
	return ok && v.GameID != 0 && p.GameID == v.GameID
}

func MessageChanged(payload interface{}, v Variables) bool {
	p, ok := payload.(pubsub.MessagePayload)
	return ok && v.GameID != 0 && p.GameID == v.GameID
}

// Notification passes when someone else acted in a conversation the
// subscriber takes part in. Invitees are not notified until they subscribe
// or join. A failed lookup is a miss.
func (s *Set) Notification(payload interface{}, v Variables) bool {
	p, ok := payload.(pubsub.NotificationPayload)
	if !ok || v.UserID == 0 || p.ActorID == v.UserID {
		return false
	}
	if v.ConversationID != 0 && v.ConversationID != p.ConversationID {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.lookupTimeout)
	defer cancel()
	participant, err := s.participants.FindParticipant(ctx, p.ConversationID, v.UserID)
	if err != nil || participant == nil {
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			log.Printf("[FILTER-ERROR] Participant lookup for user %d in conversation %d: %v", v.UserID, p.ConversationID, err)
		}
		return false
	}
	return participant.Level != game_constants.PARTICIPANT_LEVEL_INVITED
}

package pubsub

import "Recit/services/views"

type Topic string

const (
	GameAdded         Topic = "GAME_ADDED"
	GameDeleted       Topic = "GAME_DELETED"
	ParticipantJoined Topic = "PARTICIPANT_JOINED"
	ParticipantLeft   Topic = "PARTICIPANT_LEFT"
	MessageAdded      Topic = "MESSAGE_ADDED"
	MessageUpdated    Topic = "MESSAGE_UPDATED"
	MessageDeleted    Topic = "MESSAGE_DELETED"
	Notification      Topic = "NOTIFICATION"
)

// Topics lists every topic the bus knows about.
var Topics = []Topic{
	GameAdded, GameDeleted,
	ParticipantJoined, ParticipantLeft,
	MessageAdded, MessageUpdated, MessageDeleted,
	Notification,
}

func (t Topic) Valid() bool {
	for _, known := range Topics {
		if t == known {
			return true
		}
	}
	return false
}

// Event is what subscribers receive.
type Event struct {
	Topic   Topic       `json:"topic"`
	Payload interface{} `json:"payload"`
}

type GameAddedPayload struct {
	Game views.Game `json:"game"`
}

type GameDeletedPayload struct {
	GameID uint `json:"game_id"`
}

// ParticipantPayload is published on ParticipantJoined/ParticipantLeft.
// Reserved placeholders have no user and Reserved set; Count is the number
// of roster rows affected.
type ParticipantPayload struct {
	GameID   uint          `json:"game_id"`
	UserID   *uint         `json:"user_id,omitempty"`
	User     *views.User   `json:"user,omitempty"`
	Player   *views.Player `json:"player,omitempty"`
	Reserved bool          `json:"reserved"`
	Count    int           `json:"count"`
}

type MessagePayload struct {
	GameID         uint          `json:"game_id"`
	ConversationID uint          `json:"conversation_id"`
	Message        views.Message `json:"message"`
}

type NotificationPayload struct {
	ConversationID uint          `json:"conversation_id"`
	GameID         uint          `json:"game_id"`
	ActorID        uint          `json:"actor_id"`
	Message        views.Message `json:"message"`
}

package subscriptions

import "Recit/services/pubsub"

// Stream is what a client subscribes to; each stream covers one or more
// bus topics.
type Stream string

const (
	StreamGameAdded          Stream = "game-added"
	StreamGameDeleted        Stream = "game-deleted"
	StreamParticipantChanged Stream = "participant-changed"
	StreamMessageChanged     Stream = "message-changed"
	StreamNotification       Stream = "notification"
)

var streamTopics = map[Stream][]pubsub.Topic{
	StreamGameAdded:          {pubsub.GameAdded},
	StreamGameDeleted:        {pubsub.GameDeleted},
	StreamParticipantChanged: {pubsub.ParticipantJoined, pubsub.ParticipantLeft},
	StreamMessageChanged:     {pubsub.MessageAdded, pubsub.MessageUpdated, pubsub.MessageDeleted},
	StreamNotification:       {pubsub.Notification},
}

// Topics returns the topics of the stream, nil when it is unknown.
func (s Stream) Topics() []pubsub.Topic {
	return streamTopics[s]
}

// Package subscriptions turns client subscriptions into bus subscriptions.
// Both real-time transports (socket.io and plain websockets) open one
// Session per connection and close it on disconnect.
package subscriptions

import (
	"Recit/services/filters"
	"Recit/services/geo"
	"Recit/services/pubsub"
	"Recit/services/store"
	"Recit/utils/apperrors"
	"context"
	"log"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Broker is the part of the bus subscriptions need.
type Broker interface {
	Subscribe(topic pubsub.Topic, filter pubsub.Filter, deliver pubsub.Handler) (string, error)
	Unsubscribe(id string) bool
}

// Delivery is what a transport sends to its client for a matching event.
type Delivery struct {
	Subscription string       `json:"subscription"`
	Stream       Stream       `json:"stream"`
	Topic        pubsub.Topic `json:"topic"`
	Payload      interface{}  `json:"payload"`
}

// Sink writes a delivery to the client. It is called from bus goroutines.
type Sink func(Delivery)

type Manager struct {
	broker  Broker
	filters *filters.Set
	// games authorizes the streams scoped to one game
	games  store.Store
	active atomic.Int64
}

func NewManager(broker Broker, set *filters.Set, games store.Store) *Manager {
	return &Manager{broker: broker, filters: set, games: games}
}

// Active returns how many client subscriptions are open.
func (m *Manager) Active() int64 {
	return m.active.Load()
}

type subscription struct {
	id     string
	stream Stream
	busIDs []string
	vars   atomic.Pointer[filters.Variables]
}

type Session struct {
	manager *Manager
	userID  uint
	sink    Sink

	mu     sync.Mutex
	subs   map[string]*subscription
	closed bool
}

// NewSession opens a session for a connection. userID is 0 for anonymous
// connections.
func (m *Manager) NewSession(userID uint, sink Sink) *Session {
	return &Session{
		manager: m,
		userID:  userID,
		sink:    sink,
		subs:    make(map[string]*subscription),
	}
}

func (s *Session) UserID() uint { return s.userID }

func (s *Session) validate(stream Stream, vars filters.Variables) error {
	if stream.Topics() == nil {
		return apperrors.Validation([]apperrors.FieldError{{Field: "stream", Message: "unknown stream " + string(stream)}})
	}
	var v apperrors.Validator
	switch stream {
	case StreamParticipantChanged, StreamMessageChanged:
		if vars.GameID == 0 {
			v.Add("game_id", "is required")
		} else if err := s.authorizeGame(vars.GameID); err != nil {
			return err
		}
	case StreamNotification:
		if s.userID == 0 {
			return apperrors.Unauthenticated()
		}
	}
	if len(vars.Bounds) > 0 {
		if _, err := geo.FromSlice(vars.Bounds); err != nil {
			v.Add("bounds", "%v", err)
		}
	}
	return v.Err()
}

// authorizeGame applies the same visibility as reading the game: private
// games are followed by their participants only.
func (s *Session) authorizeGame(gameID uint) error {
	ctx := context.Background()
	game, err := s.manager.games.FindGame(ctx, gameID)
	if err != nil {
		return store.AppError("find game", "Game", err)
	}
	return store.AuthorizeViewer(ctx, s.manager.games, s.userID, game)
}

// Subscribe registers the stream with the given variables and returns the
// subscription id.
func (s *Session) Subscribe(stream Stream, vars filters.Variables) (string, error) {
	vars.UserID = s.userID
	if err := s.validate(stream, vars); err != nil {
		return "", err
	}

	sub := &subscription{id: uuid.NewString(), stream: stream}
	sub.vars.Store(&vars)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", apperrors.Unauthorized("connection closed")
	}

	for _, topic := range stream.Topics() {
		busID, err := s.manager.broker.Subscribe(topic, s.filter(sub), s.deliver(sub))
		if err != nil {
			s.release(sub)
			return "", apperrors.Upstream("subscribe", err)
		}
		sub.busIDs = append(sub.busIDs, busID)
	}
	s.subs[sub.id] = sub
	s.manager.active.Add(1)
	log.Printf("[SUBSCRIBE] User %d subscribed to %s as %s", s.userID, stream, sub.id)
	return sub.id, nil
}

func (s *Session) filter(sub *subscription) pubsub.Filter {
	return func(ev pubsub.Event) bool {
		return s.manager.filters.Match(ev, *sub.vars.Load())
	}
}

func (s *Session) deliver(sub *subscription) pubsub.Handler {
	return func(ev pubsub.Event) {
		s.sink(Delivery{Subscription: sub.id, Stream: sub.stream, Topic: ev.Topic, Payload: ev.Payload})
	}
}

// Update swaps the variables of a live subscription, e.g. when the client
// pans its map or loads another page.
func (s *Session) Update(id string, vars filters.Variables) error {
	s.mu.Lock()
	sub, ok := s.subs[id]
	s.mu.Unlock()
	if !ok {
		return apperrors.NotFound("Subscription")
	}

	vars.UserID = s.userID
	if err := s.validate(sub.stream, vars); err != nil {
		return err
	}
	sub.vars.Store(&vars)
	return nil
}

func (s *Session) Unsubscribe(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.subs[id]
	if !ok {
		return apperrors.NotFound("Subscription")
	}
	s.release(sub)
	delete(s.subs, id)
	s.manager.active.Add(-1)
	return nil
}

func (s *Session) release(sub *subscription) {
	for _, busID := range sub.busIDs {
		s.manager.broker.Unsubscribe(busID)
	}
	sub.busIDs = nil
}

// Close drops every subscription of the session. Later subscribes fail.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for id, sub := range s.subs {
		s.release(sub)
		delete(s.subs, id)
		s.manager.active.Add(-1)
	}
	log.Printf("[SUBSCRIBE] Session of user %d closed", s.userID)
}

// Count returns how many subscriptions the session holds.
func (s *Session) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

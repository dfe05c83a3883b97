// Package pubsub is the in-process event bus. Publishing never blocks:
// each subscriber owns a bounded queue drained by its own goroutine, where
// its filter is evaluated before delivery. A full queue drops the event for
// that subscriber only.
package pubsub

import (
	"errors"
	"log"
	"sync"

	"github.com/google/uuid"
)

var ErrBusClosed = errors.New("event bus is closed")

// Filter decides whether an event is relevant to a subscriber.
type Filter func(Event) bool

// Handler receives the events that passed the filter.
type Handler func(Event)

type subscriber struct {
	id      string
	topic   Topic
	filter  Filter
	deliver Handler
	queue   chan Event
}

type Bus struct {
	mu        sync.RWMutex
	byTopic   map[Topic]map[string]*subscriber
	byID      map[string]*subscriber
	queueSize int
	closed    bool
	wg        sync.WaitGroup
}

func NewBus(queueSize int) *Bus {
	if queueSize <= 0 {
		queueSize = 1
	}
	return &Bus{
		byTopic:   make(map[Topic]map[string]*subscriber),
		byID:      make(map[string]*subscriber),
		queueSize: queueSize,
	}
}

// Subscribe registers deliver for topic. A nil filter accepts everything.
func (b *Bus) Subscribe(topic Topic, filter Filter, deliver Handler) (string, error) {
	if !topic.Valid() {
		return "", errors.New("unknown topic " + string(topic))
	}
	if deliver == nil {
		return "", errors.New("nil handler")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return "", ErrBusClosed
	}

	sub := &subscriber{
		id:      uuid.NewString(),
		topic:   topic,
		filter:  filter,
		deliver: deliver,
		queue:   make(chan Event, b.queueSize),
	}
	if b.byTopic[topic] == nil {
		b.byTopic[topic] = make(map[string]*subscriber)
	}
	b.byTopic[topic][sub.id] = sub
	b.byID[sub.id] = sub

	b.wg.Add(1)
	go b.run(sub)
	return sub.id, nil
}

func (b *Bus) run(sub *subscriber) {
	defer b.wg.Done()
	for ev := range sub.queue {
		b.dispatch(sub, ev)
	}
}

func (b *Bus) dispatch(sub *subscriber, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[BUS-ERROR] Subscriber %s panicked on %s: %v", sub.id, ev.Topic, r)
		}
	}()
	if sub.filter != nil && !sub.filter(ev) {
		return
	}
	sub.deliver(ev)
}

// Unsubscribe removes the subscription; it reports whether it existed.
func (b *Bus) Unsubscribe(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	sub, ok := b.byID[id]
	if !ok {
		return false
	}
	delete(b.byID, id)
	delete(b.byTopic[sub.topic], id)
	if len(b.byTopic[sub.topic]) == 0 {
		delete(b.byTopic, sub.topic)
	}
	close(sub.queue)
	return true
}

// Publish hands the event to every subscriber of the topic without waiting
// for delivery.
func (b *Bus) Publish(topic Topic, payload interface{}) {
	ev := Event{Topic: topic, Payload: payload}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, sub := range b.byTopic[topic] {
		select {
		case sub.queue <- ev:
		default:
			log.Printf("[BUS-DROP] Queue full for subscriber %s, dropping %s", sub.id, topic)
		}
	}
}

// SubscriberCount returns how many subscriptions the topic has.
func (b *Bus) SubscriberCount(topic Topic) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.byTopic[topic])
}

// Close stops every subscriber and waits for queued events to drain.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	for id, sub := range b.byID {
		close(sub.queue)
		delete(b.byID, id)
	}
	b.byTopic = make(map[Topic]map[string]*subscriber)
	b.mu.Unlock()

	b.wg.Wait()
	log.Println("[BUS] Event bus closed")
}

// Publisher is what producers depend on.
type Publisher interface {
	Publish(topic Topic, payload interface{})
}

var _ Publisher = (*Bus)(nil)

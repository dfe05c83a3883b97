package pubsub

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type collector struct {
	mu     sync.Mutex
	events []Event
}

func (c *collector) handle(ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

func (c *collector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func TestPublishDeliversToMatchingSubscribers(t *testing.T) {
	bus := NewBus(8)
	defer bus.Close()

	var all, even collector
	_, err := bus.Subscribe(GameDeleted, nil, all.handle)
	require.NoError(t, err)
	_, err = bus.Subscribe(GameDeleted, func(ev Event) bool {
		return ev.Payload.(GameDeletedPayload).GameID%2 == 0
	}, even.handle)
	require.NoError(t, err)

	for id := uint(1); id <= 4; id++ {
		bus.Publish(GameDeleted, GameDeletedPayload{GameID: id})
	}

	assert.Eventually(t, func() bool { return all.count() == 4 && even.count() == 2 }, time.Second, 5*time.Millisecond)
}

func TestPublishOnlyReachesTopicSubscribers(t *testing.T) {
	bus := NewBus(8)
	defer bus.Close()

	var c collector
	_, err := bus.Subscribe(MessageAdded, nil, c.handle)
	require.NoError(t, err)

	bus.Publish(MessageDeleted, MessagePayload{GameID: 1})
	bus.Publish(MessageAdded, MessagePayload{GameID: 1})

	assert.Eventually(t, func() bool { return c.count() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, MessageAdded, c.events[0].Topic)
}

func TestPublishDoesNotBlockOnSlowSubscriber(t *testing.T) {
	bus := NewBus(1)
	defer bus.Close()

	release := make(chan struct{})
	_, err := bus.Subscribe(Notification, nil, func(Event) { <-release })
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			bus.Publish(Notification, NotificationPayload{ActorID: uint(i)})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
	close(release)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := NewBus(8)
	defer bus.Close()

	var c collector
	id, err := bus.Subscribe(GameAdded, nil, c.handle)
	require.NoError(t, err)
	assert.Equal(t, 1, bus.SubscriberCount(GameAdded))

	assert.True(t, bus.Unsubscribe(id))
	assert.False(t, bus.Unsubscribe(id))
	assert.Equal(t, 0, bus.SubscriberCount(GameAdded))

	bus.Publish(GameAdded, GameAddedPayload{})
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, c.count())
}

func TestPanickingSubscriberKeepsRunning(t *testing.T) {
	bus := NewBus(8)
	defer bus.Close()

	var c collector
	_, err := bus.Subscribe(GameDeleted, nil, func(ev Event) {
		if ev.Payload.(GameDeletedPayload).GameID == 1 {
			panic("boom")
		}
		c.handle(ev)
	})
	require.NoError(t, err)

	bus.Publish(GameDeleted, GameDeletedPayload{GameID: 1})
	bus.Publish(GameDeleted, GameDeletedPayload{GameID: 2})

	assert.Eventually(t, func() bool { return c.count() == 1 }, time.Second, 5*time.Millisecond)
}

func TestSubscribeValidation(t *testing.T) {
	bus := NewBus(8)

	_, err := bus.Subscribe(Topic("NOPE"), nil, func(Event) {})
	assert.Error(t, err)

	_, err = bus.Subscribe(GameAdded, nil, nil)
	assert.Error(t, err)

	bus.Close()
	_, err = bus.Subscribe(GameAdded, nil, func(Event) {})
	assert.ErrorIs(t, err, ErrBusClosed)

	// publishing after close is a no-op
	bus.Publish(GameAdded, GameAddedPayload{})
}

func TestRecorder(t *testing.T) {
	var r Recorder
	r.Publish(GameAdded, GameAddedPayload{})
	r.Publish(GameDeleted, GameDeletedPayload{GameID: 3})

	assert.Len(t, r.Events(), 2)
	assert.Len(t, r.Events(GameDeleted), 1)
	r.Reset()
	assert.Empty(t, r.Events())
}

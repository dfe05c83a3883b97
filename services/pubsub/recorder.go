package pubsub

import "sync"

// Recorder is a Publisher that keeps every published event in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(topic Topic, payload interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Topic: topic, Payload: payload})
}

// Events returns the recorded events, optionally restricted to topics.
func (r *Recorder) Events(topics ...Topic) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, ev := range r.events {
		if len(topics) == 0 {
			out = append(out, ev)
			continue
		}
		for _, t := range topics {
			if ev.Topic == t {
				out = append(out, ev)
				break
			}
		}
	}
	return out
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// Package eventstest records published events for tests.
package eventstest

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"vibermm/internal/events"

	"github.com/google/uuid"
)

// Recorder is an events.Publisher that keeps everything it is given.
// Setting Err makes Publish fail.
type Recorder struct {
	mu     sync.Mutex
	Err    error
	events []events.Event
}

func (r *Recorder) Publish(_ context.Context, topic string, payload any) (events.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return events.Event{}, r.Err
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return events.Event{}, err
	}
	ev := events.Event{ID: uuid.NewString(), Topic: topic, Time: time.Now().UTC(), Payload: raw}
	r.events = append(r.events, ev)
	return ev, nil
}

func (r *Recorder) Close() {}

// Events returns the events published so far.
func (r *Recorder) Events() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.Event(nil), r.events...)
}

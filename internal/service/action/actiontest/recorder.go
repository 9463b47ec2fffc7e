// Package actiontest provides an in-memory action backend for tests.
package actiontest

import (
	"context"
	"sync"

	"github.com/oshokin/bedtime/internal/service/action"
)

// Recorder keeps every call in memory. Set the error fields to make calls fail.
type Recorder struct {
	// NotifyErr is returned by Notify.
	NotifyErr error
	// PlaybackErr is returned by StartPlayback.
	PlaybackErr error

	mu        sync.Mutex
	events    []action.Event
	playbacks int
	calls     []string
}

// Notify records the event.
func (r *Recorder) Notify(_ context.Context, event action.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, event)
	r.calls = append(r.calls, "notify:"+string(event.Kind))

	return r.NotifyErr
}

// StartPlayback records the call.
func (r *Recorder) StartPlayback(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.playbacks++
	r.calls = append(r.calls, "playback")

	return r.PlaybackErr
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []action.Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]action.Event(nil), r.events...)
}

// Count returns how many events of kind were recorded.
func (r *Recorder) Count(kind action.Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0

	for _, e := range r.events {
		if e.Kind == kind {
			n++
		}
	}

	return n
}

// Playbacks returns how many times playback was started.
func (r *Recorder) Playbacks() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.playbacks
}

// Calls returns the call order, e.g. ["playback", "notify:bedtime"].
func (r *Recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]string(nil), r.calls...)
}

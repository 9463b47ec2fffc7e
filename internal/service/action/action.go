package action

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Kind names the moment an event is fired for.
type Kind string

const (
	// KindWarning is sent once shortly before bed time.
	KindWarning Kind = "warning"
	// KindBedtime is sent on entering the asleep window.
	KindBedtime Kind = "bedtime"
	// KindTest marks a dry run of the bed time sequence.
	KindTest Kind = "test"
)

// Event is a single notification handed to a Notifier.
type Event struct {
	// ID identifies the trigger cycle in logs.
	ID string
	// Kind is what the event announces.
	Kind Kind
	// At is when the event was created.
	At time.Time
}

// NewEvent creates an event of the given kind stamped with a fresh id.
func NewEvent(kind Kind, at time.Time) Event {
	return Event{
		ID:   uuid.NewString(),
		Kind: kind,
		At:   at,
	}
}

// Notifier delivers events, typically to the machine that must shut down.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// Player starts music playback on some device.
type Player interface {
	StartPlayback(ctx context.Context) error
}

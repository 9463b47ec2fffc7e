package action

import (
	"context"

	"github.com/oshokin/bedtime/internal/logger"
)

// Nop logs what would happen and does nothing else.
type Nop struct{}

// Notify logs the event.
func (Nop) Notify(ctx context.Context, event Event) error {
	logger.InfoKV(ctx, "Notify backend disabled", "kind", event.Kind, "event_id", event.ID)

	return nil
}

// StartPlayback logs the call.
func (Nop) StartPlayback(ctx context.Context) error {
	logger.Info(ctx, "Playback backend disabled")

	return nil
}

// DryRun wraps real backends and only reports which of them would run.
type DryRun struct {
	// Notifier is the backend that would be notified.
	Notifier Notifier
	// Player is the backend that would start playback.
	Player Player
}

// Notify logs the event and the backend it would reach.
func (d DryRun) Notify(ctx context.Context, event Event) error {
	logger.InfoKV(ctx, "Dry run: would notify",
		"kind", event.Kind, "event_id", event.ID, "backend", backendName(d.Notifier))

	return nil
}

// StartPlayback logs the backend it would start.
func (d DryRun) StartPlayback(ctx context.Context) error {
	logger.InfoKV(ctx, "Dry run: would start playback", "backend", backendName(d.Player))

	return nil
}

func backendName(v any) string {
	switch v.(type) {
	case *ShellNotifier, *ShellPlayer:
		return "shell"
	case *LocalNotifier:
		return "local"
	case *MPDPlayer:
		return "mpd"
	default:
		return "none"
	}
}

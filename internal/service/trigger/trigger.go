package trigger

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oshokin/bedtime/internal/logger"
	"github.com/oshokin/bedtime/internal/service/action"
)

// FlagStore is the persisted triggered flag.
type FlagStore interface {
	Triggered(ctx context.Context) bool
	SetTriggered(ctx context.Context, v bool) error
}

// Trigger fires the bed time actions at most once per asleep window.
type Trigger struct {
	// store holds the triggered flag.
	store FlagStore
	// notifier receives warning and bed time events.
	notifier action.Notifier
	// player starts playback on bed time.
	player action.Player
	// now is the clock used to stamp events.
	now func() time.Time
	// mu serializes flag check-and-set between the loop and control commands.
	mu sync.Mutex
	// warned is set once the warning of the current cycle went out.
	warned atomic.Bool
}

// New creates a Trigger. A nil clock means time.Now.
func New(store FlagStore, notifier action.Notifier, player action.Player, now func() time.Time) *Trigger {
	if now == nil {
		now = time.Now
	}

	return &Trigger{
		store:    store,
		notifier: notifier,
		player:   player,
		now:      now,
	}
}

// OnEnterAsleep runs the bed time sequence unless the flag is already set.
// The flag is persisted before any side effect, so a crash mid-sequence skips
// the actions on restart instead of repeating them. Action failures are
// logged and never clear the flag. It reports whether the actions ran.
func (t *Trigger) OnEnterAsleep(ctx context.Context) bool {
	t.mu.Lock()

	if t.store.Triggered(ctx) {
		t.mu.Unlock()

		return false
	}

	if err := t.store.SetTriggered(ctx, true); err != nil {
		t.mu.Unlock()
		logger.ErrorKV(ctx, "Failed to persist triggered flag, skipping bed time actions", "error", err)

		return false
	}

	t.mu.Unlock()

	event := action.NewEvent(action.KindBedtime, t.now())
	ctx = logger.WithKV(ctx, "event_id", event.ID)

	logger.Info(ctx, "Triggering bed time actions")

	t.fire(ctx, t.player, t.notifier, event)

	return true
}

// OnEnterAwake clears the flag and re-arms the warning for the next cycle.
func (t *Trigger) OnEnterAwake(ctx context.Context) {
	t.warned.Store(false)

	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.store.Triggered(ctx) {
		return
	}

	if err := t.store.SetTriggered(ctx, false); err != nil {
		logger.ErrorKV(ctx, "Failed to clear triggered flag", "error", err)

		return
	}

	logger.Info(ctx, "Awake window entered, triggered flag cleared")
}

// OnWarning sends the pre-bed warning once per cycle and reports whether it
// was sent by this call. The persisted flag is not touched.
func (t *Trigger) OnWarning(ctx context.Context) bool {
	if !t.warned.CompareAndSwap(false, true) {
		return false
	}

	event := action.NewEvent(action.KindWarning, t.now())

	logger.InfoKV(ctx, "Sending bed time warning", "event_id", event.ID)

	if err := t.notifier.Notify(ctx, event); err != nil {
		logger.ErrorKV(ctx, "Warning notify failed", "event_id", event.ID, "error", err)
	}

	return true
}

// Reset forces the flag to false and re-arms the warning.
func (t *Trigger) Reset(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.store.SetTriggered(ctx, false); err != nil {
		return err
	}

	t.warned.Store(false)
	logger.Info(ctx, "Triggered flag reset")

	return nil
}

// DryRun walks the bed time sequence against dry-run backends. The flag is
// left untouched and no external action runs.
func (t *Trigger) DryRun(ctx context.Context) {
	dry := action.DryRun{Notifier: t.notifier, Player: t.player}
	event := action.NewEvent(action.KindTest, t.now())
	ctx = logger.WithKV(ctx, "event_id", event.ID, "dry_run", true)

	logger.InfoKV(ctx, "Dry run: would set triggered flag", "currently", t.store.Triggered(ctx))

	t.fire(ctx, dry, dry, event)
}

// Triggered reports the persisted flag.
func (t *Trigger) Triggered(ctx context.Context) bool {
	return t.store.Triggered(ctx)
}

// fire runs playback then notify. Errors are logged, not retried.
func (t *Trigger) fire(ctx context.Context, player action.Player, notifier action.Notifier, event action.Event) {
	if err := player.StartPlayback(ctx); err != nil {
		logger.ErrorKV(ctx, "Playback failed", "error", err)
	}

	if err := notifier.Notify(ctx, event); err != nil {
		logger.ErrorKV(ctx, "Bed time notify failed", "error", err)
	}
}

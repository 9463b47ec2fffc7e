package daemon

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/oshokin/bedtime/internal/api/control"
	"github.com/oshokin/bedtime/internal/domain/schedule"
	"github.com/oshokin/bedtime/internal/logger"
	"github.com/oshokin/bedtime/internal/service/trigger"
)

// Daemon evaluates the window once per tick and applies transitions.
// It also answers control commands through control.Service.
type Daemon struct {
	// window is the daily schedule.
	window schedule.Window
	// tick is the evaluation period.
	tick time.Duration
	// trigger owns the flag and the actions.
	trigger *trigger.Trigger
	// now is the clock.
	now func() time.Time

	// seen is false until the first tick; the first tick always counts as
	// a transition. Only the loop goroutine touches seen and asleep.
	seen bool
	// asleep is the phase observed on the previous tick.
	asleep bool
}

// New creates a daemon. A nil clock means time.Now.
func New(window schedule.Window, tick time.Duration, trig *trigger.Trigger, now func() time.Time) *Daemon {
	if now == nil {
		now = time.Now
	}

	return &Daemon{
		window:  window,
		tick:    tick,
		trigger: trig,
		now:     now,
	}
}

// Status evaluates the window at the current time.
func (d *Daemon) Status(context.Context) schedule.Evaluation {
	return d.window.Evaluate(d.now())
}

// Reset forces the triggered flag to false.
func (d *Daemon) Reset(ctx context.Context) error {
	return d.trigger.Reset(ctx)
}

// Test dry-runs the bed time sequence.
func (d *Daemon) Test(ctx context.Context) {
	d.trigger.DryRun(ctx)
}

// Tick evaluates the window once and applies the resulting transition.
func (d *Daemon) Tick(ctx context.Context) schedule.Evaluation {
	ev := d.window.Evaluate(d.now())
	entered := !d.seen || d.asleep != ev.Asleep()

	if ev.Asleep() {
		if entered {
			logger.Info(ctx, "Asleep window entered")
		}

		d.trigger.OnEnterAsleep(ctx)
	} else {
		if entered {
			d.trigger.OnEnterAwake(ctx)
		}

		if ev.Phase == schedule.PhaseWarning {
			d.trigger.OnWarning(ctx)
		}
	}

	d.seen = true
	d.asleep = ev.Asleep()

	return ev
}

// Run serves srv and ticks until ctx is canceled or srv receives stop.
func (d *Daemon) Run(ctx context.Context, srv *control.Server) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.Serve(gctx)
	})

	g.Go(func() error {
		return d.loop(gctx, srv.Stopped())
	})

	return g.Wait()
}

func (d *Daemon) loop(ctx context.Context, stopped <-chan struct{}) error {
	ticker := time.NewTicker(d.tick)
	defer ticker.Stop()

	d.Tick(ctx)

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Context canceled, exiting")

			return nil
		case <-stopped:
			logger.Info(ctx, "Stop requested, exiting")

			return nil
		case <-ticker.C:
			d.Tick(ctx)
		}
	}
}

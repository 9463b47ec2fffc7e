package schedule

import (
	"time"
)

// Phase is the evaluated position of a moment relative to the asleep window.
type Phase int

const (
	// PhaseAwake is outside the asleep window and outside the warning lead.
	PhaseAwake Phase = iota
	// PhaseWarning is awake but within the warning lead before bed time.
	PhaseWarning
	// PhaseAsleep is inside the asleep window, boundaries included.
	PhaseAsleep
)

// String returns the status label used on the control channel.
func (p Phase) String() string {
	switch p {
	case PhaseAsleep:
		return "ASLEEP"
	case PhaseWarning:
		return "WARNING"
	default:
		return "AWAKE"
	}
}

// Window describes the daily asleep window and the warning lead before it.
type Window struct {
	// Bed is when the asleep window opens.
	Bed ClockTime
	// Wake is when the asleep window closes.
	Wake ClockTime
	// WarningLead is how long before Bed the warning fires.
	WarningLead time.Duration
}

// Evaluation is the result of placing one moment against the window.
type Evaluation struct {
	// Phase is the window phase for the moment.
	Phase Phase
	// UntilBed is the time left until bed time. Zero when asleep.
	UntilBed time.Duration
}

// Asleep reports whether the phase is inside the asleep window.
func (e Evaluation) Asleep() bool {
	return e.Phase == PhaseAsleep
}

// IsAsleep reports whether now falls in the asleep window.
// Both Bed and Wake belong to the window. When Bed is after Wake the window
// wraps midnight.
func (w Window) IsAsleep(now ClockTime) bool {
	if w.Bed > w.Wake {
		return now >= w.Bed || now <= w.Wake
	}

	return now >= w.Bed && now <= w.Wake
}

// TimeUntilBed returns the time from now to the next bed time, in [0, Day).
// Only meaningful while awake.
func (w Window) TimeUntilBed(now ClockTime) time.Duration {
	d := time.Duration(w.Bed - now)
	if d < 0 {
		d += Day
	}

	return d
}

// ShouldWarn reports whether now is awake and within the warning lead.
func (w Window) ShouldWarn(now ClockTime) bool {
	return !w.IsAsleep(now) && w.TimeUntilBed(now) < w.WarningLead
}

// Evaluate places now against the window.
func (w Window) Evaluate(now time.Time) Evaluation {
	clock := ClockOf(now)

	if w.IsAsleep(clock) {
		return Evaluation{Phase: PhaseAsleep}
	}

	phase := PhaseAwake
	if w.ShouldWarn(clock) {
		phase = PhaseWarning
	}

	return Evaluation{
		Phase:    phase,
		UntilBed: w.TimeUntilBed(clock),
	}
}

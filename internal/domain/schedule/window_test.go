package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func defaultWindow() Window {
	return Window{
		Bed:         NewClockTime(22, 0, 0),
		Wake:        NewClockTime(5, 0, 0),
		WarningLead: 20 * time.Minute,
	}
}

func at(hour, minute int) time.Time {
	return time.Date(2026, time.March, 14, hour, minute, 0, 0, time.Local)
}

// TestWindow_IsAsleep_Boundaries checks inclusive bed and wake boundaries of a wrapping window.
func TestWindow_IsAsleep_Boundaries(t *testing.T) {
	t.Parallel()

	w := defaultWindow()

	require.True(t, w.IsAsleep(NewClockTime(22, 0, 0)))
	require.True(t, w.IsAsleep(NewClockTime(5, 0, 0)))
	require.True(t, w.IsAsleep(NewClockTime(0, 0, 0)))
	require.True(t, w.IsAsleep(NewClockTime(23, 59, 59)))
	require.False(t, w.IsAsleep(NewClockTime(5, 0, 1)))
	require.False(t, w.IsAsleep(NewClockTime(21, 59, 59)))
	require.False(t, w.IsAsleep(NewClockTime(12, 0, 0)))
}

// TestWindow_IsAsleep_Sweep walks the whole day minute by minute.
func TestWindow_IsAsleep_Sweep(t *testing.T) {
	t.Parallel()

	w := defaultWindow()

	for m := 0; m < 24*60; m++ {
		now := ClockTime(time.Duration(m) * time.Minute)
		want := now >= w.Bed || now <= w.Wake
		require.Equal(t, want, w.IsAsleep(now), now.String())
	}
}

// TestWindow_NonWrapping covers a window that does not cross midnight.
func TestWindow_NonWrapping(t *testing.T) {
	t.Parallel()

	w := Window{
		Bed:         NewClockTime(1, 0, 0),
		Wake:        NewClockTime(7, 0, 0),
		WarningLead: 20 * time.Minute,
	}

	require.True(t, w.IsAsleep(NewClockTime(1, 0, 0)))
	require.True(t, w.IsAsleep(NewClockTime(7, 0, 0)))
	require.False(t, w.IsAsleep(NewClockTime(23, 0, 0)))
	require.Equal(t, 2*time.Hour, w.TimeUntilBed(NewClockTime(23, 0, 0)))
	require.False(t, w.ShouldWarn(NewClockTime(23, 0, 0)))
	require.True(t, w.ShouldWarn(NewClockTime(0, 50, 0)))
}

// TestWindow_Evaluate_Scenarios mirrors the documented 22:00/05:00 scenarios.
func TestWindow_Evaluate_Scenarios(t *testing.T) {
	t.Parallel()

	w := defaultWindow()

	ev := w.Evaluate(at(23, 30))
	require.Equal(t, PhaseAsleep, ev.Phase)
	require.True(t, ev.Asleep())

	ev = w.Evaluate(at(6, 0))
	require.Equal(t, PhaseAwake, ev.Phase)
	require.Equal(t, 16*time.Hour, ev.UntilBed)

	ev = w.Evaluate(at(21, 50))
	require.Equal(t, PhaseWarning, ev.Phase)
	require.Equal(t, 10*time.Minute, ev.UntilBed)
	require.True(t, w.ShouldWarn(NewClockTime(21, 50, 0)))

	// Exactly at the lead is not yet a warning.
	require.False(t, w.ShouldWarn(NewClockTime(21, 40, 0)))
}

// TestParseClockTime validates accepted and rejected layouts.
func TestParseClockTime(t *testing.T) {
	t.Parallel()

	c, err := ParseClockTime("22:00")
	require.NoError(t, err)
	require.Equal(t, NewClockTime(22, 0, 0), c)

	c, err = ParseClockTime("05:30:15")
	require.NoError(t, err)
	require.Equal(t, "05:30:15", c.String())

	_, err = ParseClockTime("25:00")
	require.ErrorIs(t, err, ErrInvalidClockTime)

	_, err = ParseClockTime("noon")
	require.ErrorIs(t, err, ErrInvalidClockTime)
}

// TestFormatRemaining checks the HH:MM:SS.cc layout.
func TestFormatRemaining(t *testing.T) {
	t.Parallel()

	require.Equal(t, "16:00:00.00", FormatRemaining(16*time.Hour))
	require.Equal(t, "01:02:03.45",
		FormatRemaining(time.Hour+2*time.Minute+3*time.Second+456*time.Millisecond))
	require.Equal(t, "00:00:00.00", FormatRemaining(-time.Second))
}

// TestClockOf keeps sub-second precision.
func TestClockOf(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.January, 2, 21, 59, 59, int(500*time.Millisecond), time.Local)
	require.Equal(t, NewClockTime(21, 59, 59)+ClockTime(500*time.Millisecond), ClockOf(now))
}

package schedule

import (
	"errors"
	"fmt"
	"time"
)

// Day is the length of one wall-clock day.
const Day = 24 * time.Hour

// ClockTime is a local time of day stored as the offset since midnight.
type ClockTime time.Duration

// ErrInvalidClockTime is returned for malformed or out-of-range time-of-day strings.
var ErrInvalidClockTime = errors.New("invalid time of day")

// NewClockTime builds a ClockTime from its components.
func NewClockTime(hour, minute, second int) ClockTime {
	return ClockTime(time.Duration(hour)*time.Hour +
		time.Duration(minute)*time.Minute +
		time.Duration(second)*time.Second)
}

// ParseClockTime accepts "HH:MM" or "HH:MM:SS".
func ParseClockTime(s string) (ClockTime, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		t, err := time.Parse(layout, s)
		if err == nil {
			return NewClockTime(t.Hour(), t.Minute(), t.Second()), nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrInvalidClockTime, s)
}

// ClockOf extracts the wall-clock time of day from t, keeping sub-second
// precision. Built from the clock fields so DST days do not shift it.
func ClockOf(t time.Time) ClockTime {
	return NewClockTime(t.Hour(), t.Minute(), t.Second()) + ClockTime(t.Nanosecond())
}

// Duration returns the offset since midnight.
func (c ClockTime) Duration() time.Duration {
	return time.Duration(c)
}

// String renders the value as HH:MM:SS.
func (c ClockTime) String() string {
	d := time.Duration(c)

	return fmt.Sprintf("%02d:%02d:%02d",
		int(d/time.Hour), int(d%time.Hour/time.Minute), int(d%time.Minute/time.Second))
}

// MarshalText implements encoding.TextMarshaler.
func (c ClockTime) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *ClockTime) UnmarshalText(text []byte) error {
	parsed, err := ParseClockTime(string(text))
	if err != nil {
		return err
	}

	*c = parsed

	return nil
}

// FormatRemaining renders d as HH:MM:SS.cc (hundredths of a second).
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	return fmt.Sprintf("%02d:%02d:%02d.%02d",
		int64(d/time.Hour),
		int64(d%time.Hour/time.Minute),
		int64(d%time.Minute/time.Second),
		int64(d%time.Second/(10*time.Millisecond)))
}

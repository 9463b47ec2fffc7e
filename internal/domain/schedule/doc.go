// Package schedule holds the bed/wake window model: time-of-day values and
// the pure functions deciding whether a moment falls in the asleep window,
// how long is left until bed time, and whether a pre-bed warning is due.
package schedule

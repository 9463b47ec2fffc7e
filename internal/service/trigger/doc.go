// Package trigger performs the one-shot bed time sequence and keeps the
// persisted triggered flag in step with the window transitions.
package trigger

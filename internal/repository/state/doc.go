// Package state persists the daemon's triggered flag.
//
// A Store wraps a small key/value backend (SQLite or a JSON file) and exposes
// the single boolean the daemon cares about. Writes are durable before they
// return, reads never fail the caller.
package state

// Package daemon runs the bedtime daemon: it claims the control socket,
// opens the state store, then drives the window evaluation on a fixed tick
// while the control server answers clients on its own goroutine.
package daemon

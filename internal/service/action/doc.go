// Package action implements the side effects the daemon fires around bed
// time: notifying a (usually remote) host and starting music playback.
//
// Backends are picked from configuration: shell commands, a local power off,
// an MPD client, or nothing at all. A dry-run wrapper and an in-memory
// recorder exist for the test command and for tests.
package action

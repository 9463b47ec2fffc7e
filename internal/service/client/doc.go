// Package client sends one control command to a running bedtime daemon and
// prints the response exactly as received.
package client

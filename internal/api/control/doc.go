// Package control implements the daemon's control channel: a unix socket
// carrying one newline-terminated text command and one text response per
// connection.
//
// Server answers commands against a Service, Client sends them.
package control

package control

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"
)

// Network is the control channel transport.
const Network = "unix"

var (
	// ErrNotRunning is returned when no control socket exists.
	ErrNotRunning = errors.New("daemon is not running")
	// errSocketRequired is returned when a client has no socket path.
	errSocketRequired = errors.New("socket path must be provided")
)

// Client sends single commands to the daemon.
type Client struct {
	// socketPath is the control socket location.
	socketPath string
	// timeout bounds dialing and the whole exchange.
	timeout time.Duration
}

// Option configures client behaviour.
type Option func(*Client)

// WithTimeout sets the dial and exchange timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// NewClient creates a client for the socket at socketPath.
func NewClient(socketPath string, opts ...Option) (*Client, error) {
	if socketPath == "" {
		return nil, errSocketRequired
	}

	c := &Client{
		socketPath: socketPath,
		timeout:    defaultIOTimeout,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Send writes command and returns the full response.
func (c *Client) Send(ctx context.Context, command string) (string, error) {
	if _, err := os.Stat(c.socketPath); errors.Is(err, os.ErrNotExist) {
		return "", ErrNotRunning
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	conn, err := c.dial(ctx)
	if err != nil {
		return "", fmt.Errorf("connect to daemon: %w", err)
	}

	defer func() {
		_ = conn.Close()
	}()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	if _, err = io.WriteString(conn, command+"\n"); err != nil {
		return "", fmt.Errorf("send command: %w", err)
	}

	response, err := io.ReadAll(conn)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	return string(response), nil
}

// Alive reports whether something accepts connections on the socket.
func (c *Client) Alive(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	conn, err := c.dial(ctx)
	if err != nil {
		return false
	}

	_ = conn.Close()

	return true
}

func (c *Client) dial(ctx context.Context) (net.Conn, error) {
	var d net.Dialer

	return d.DialContext(ctx, Network, c.socketPath)
}

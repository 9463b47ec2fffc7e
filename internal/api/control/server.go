package control

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/oshokin/bedtime/internal/logger"
)

const (
	// maxCommandLength caps a buffered command line; longer input is invalid.
	maxCommandLength = 256
	// defaultIOTimeout bounds reading the command and writing the response.
	defaultIOTimeout = 5 * time.Second
)

// Server answers control connections one at a time.
type Server struct {
	// listener is the bound control socket.
	listener net.Listener
	// service answers the commands.
	service Service
	// ioTimeout bounds a single exchange.
	ioTimeout time.Duration
	// stopped is closed once a stop command has been answered.
	stopped chan struct{}
	// stopOnce guards closing stopped.
	stopOnce sync.Once
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithIOTimeout bounds reading the command and writing the response.
func WithIOTimeout(timeout time.Duration) ServerOption {
	return func(s *Server) {
		if timeout > 0 {
			s.ioTimeout = timeout
		}
	}
}

// NewServer wires the service to an already bound listener.
func NewServer(listener net.Listener, service Service, opts ...ServerOption) *Server {
	s := &Server{
		listener:  listener,
		service:   service,
		ioTimeout: defaultIOTimeout,
		stopped:   make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Stopped is closed after a client asked the daemon to stop.
func (s *Server) Stopped() <-chan struct{} {
	return s.stopped
}

// Serve accepts connections until ctx is canceled or a stop command arrives.
// The listener is closed on return, which also unlinks the socket file.
func (s *Server) Serve(ctx context.Context) error {
	done := make(chan struct{})

	defer func() {
		close(done)

		_ = s.listener.Close()
	}()

	// Accept blocks, so closing the listener is what unblocks it on cancel.
	go func() {
		select {
		case <-ctx.Done():
			_ = s.listener.Close()
		case <-done:
		}
	}()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				return nil
			}

			logger.ErrorKV(ctx, "Accept failed", "error", err)

			select {
			case <-ctx.Done():
				return nil
			case <-time.After(100 * time.Millisecond):
			}

			continue
		}

		if s.handle(ctx, conn) {
			s.stopOnce.Do(func() {
				close(s.stopped)
			})

			return nil
		}
	}
}

// handle runs one AWAIT_LINE, DISPATCH, RESPOND, CLOSE exchange and reports
// whether the command was stop. A peer gone before finishing its line is
// dropped without a response.
func (s *Server) handle(ctx context.Context, conn net.Conn) bool {
	defer func() {
		_ = conn.Close()
	}()

	_ = conn.SetDeadline(time.Now().Add(s.ioTimeout))

	logger.DebugKV(ctx, "Found connection")

	reader := bufio.NewReaderSize(conn, maxCommandLength)

	line, err := reader.ReadSlice('\n')
	switch {
	case err == nil:
	case errors.Is(err, bufio.ErrBufferFull):
		// Consume the rest of the line so closing does not reset the peer.
		if err = discardLine(reader); err != nil {
			logger.DebugKV(ctx, "Dropping connection with an oversized command", "error", err)

			return false
		}

		_, _ = io.WriteString(conn, ResponseInvalidCommand)

		return false
	default:
		logger.DebugKV(ctx, "Dropping connection without a full command line", "error", err)

		return false
	}

	response, stop := Dispatch(ctx, s.service, string(line))

	if _, err = io.WriteString(conn, response); err != nil {
		logger.DebugKV(ctx, "Failed to write response", "error", err)
	}

	return stop
}

// discardLine skips input up to and including the next newline.
func discardLine(reader *bufio.Reader) error {
	for {
		_, err := reader.ReadSlice('\n')
		if !errors.Is(err, bufio.ErrBufferFull) {
			return err
		}
	}
}

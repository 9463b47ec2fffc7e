package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/oshokin/bedtime/internal/api/control"
	"github.com/oshokin/bedtime/internal/config"
	"github.com/oshokin/bedtime/internal/logger"
)

// Options configures a single control exchange.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string
	// SocketPath overrides the control socket from config when specified.
	SocketPath string
	// Command is sent verbatim, e.g. "status".
	Command string
	// Out receives the response. Nil means stdout.
	Out io.Writer
	// ErrOut receives failure messages. Nil means stderr.
	ErrOut io.Writer
}

const (
	// MessageNotRunning is printed when no control socket exists.
	MessageNotRunning = "Error: Daemon is not running."
	// MessageConnectFailed prefixes dial and exchange failures.
	MessageConnectFailed = "Failed to connect to daemon"
)

// Run sends opts.Command and prints the daemon's answer. Every failure is
// printed to ErrOut and returned so the caller can exit non-zero.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "bedtime-client")

	out, errOut := opts.Out, opts.ErrOut
	if out == nil {
		out = os.Stdout
	}

	if errOut == nil {
		errOut = os.Stderr
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		_, _ = fmt.Fprintln(errOut, "Error:", err)

		return err
	}

	socketPath := cfg.SocketPath
	if opts.SocketPath != "" {
		socketPath = opts.SocketPath
	}

	c, err := control.NewClient(socketPath, control.WithTimeout(cfg.Timeout))
	if err != nil {
		_, _ = fmt.Fprintln(errOut, "Error:", err)

		return err
	}

	logger.DebugKV(ctx, "Sending command", "socket", socketPath, "command", opts.Command)

	response, err := c.Send(ctx, opts.Command)
	switch {
	case err == nil:
	case errors.Is(err, control.ErrNotRunning):
		_, _ = fmt.Fprintln(errOut, MessageNotRunning)

		return err
	default:
		_, _ = fmt.Fprintln(errOut, MessageConnectFailed, err)

		return err
	}

	if _, err = io.WriteString(out, response); err != nil {
		return fmt.Errorf("print response: %w", err)
	}

	return nil
}

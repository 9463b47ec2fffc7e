package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/oshokin/bedtime/internal/api/control"
	"github.com/oshokin/bedtime/internal/config"
	"github.com/oshokin/bedtime/internal/logger"
	"github.com/oshokin/bedtime/internal/repository/state"
	"github.com/oshokin/bedtime/internal/service/action"
	"github.com/oshokin/bedtime/internal/service/trigger"
)

// Options controls the daemon process and configuration.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// SocketPath overrides the control socket from config.
	SocketPath string
	// StatePath overrides the state location from config.
	StatePath string
	// LogLevel overrides the log level from config.
	LogLevel string
	// Notifier replaces the configured notify backend when set.
	Notifier action.Notifier
	// Player replaces the configured playback backend when set.
	Player action.Player
	// Now replaces the wall clock when set.
	Now func() time.Time
}

// ErrAlreadyRunning is returned when another daemon owns the control socket.
var ErrAlreadyRunning = errors.New("daemon already running")

// Run starts the daemon and blocks until a stop command or ctx cancellation.
// It refuses to start while another daemon answers on the control socket,
// and removes the socket and pid file on the way out.
//
//nolint:funlen,cyclop // Startup is a linear sequence of fallible steps.
func Run(ctx context.Context, opts *Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	applyOverrides(cfg, opts)

	level, ok := logger.ParseLogLevel(cfg.LogLevel)
	if !ok {
		return fmt.Errorf("unknown log level %q", cfg.LogLevel)
	}

	closeLog := logger.Setup(level, logger.FileOptions{Path: cfg.LogFile})
	defer closeLog()

	// Set context with logger name for tracking.
	ctx = logger.WithName(logger.ToContext(ctx, logger.Logger()), "bedtime-daemon")

	if err = cfg.LoadEnv(); err != nil {
		return err
	}

	notifier, player, err := action.FromConfig(cfg)
	if err != nil {
		return fmt.Errorf("build actions: %w", err)
	}

	if opts.Notifier != nil {
		notifier = opts.Notifier
	}

	if opts.Player != nil {
		player = opts.Player
	}

	window, err := cfg.Window()
	if err != nil {
		return err
	}

	logger.Info(ctx, "Enabling...")

	pidPath := pidFilePath(cfg.SocketPath)

	if err = checkPIDFile(ctx, pidPath); err != nil {
		return err
	}

	if err = releaseStaleSocket(ctx, cfg.SocketPath, cfg.Timeout); err != nil {
		return err
	}

	store, err := state.Open(ctx, cfg.StateBackend, cfg.StatePath)
	if err != nil {
		return fmt.Errorf("open state: %w", err)
	}

	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			logger.ErrorKV(ctx, "Failed to close state", "error", closeErr)
		}
	}()

	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, control.Network, cfg.SocketPath)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.SocketPath, err)
	}

	defer func() {
		_ = lis.Close()

		if rmErr := os.Remove(cfg.SocketPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			logger.ErrorKV(ctx, "Failed to remove socket", "socket", cfg.SocketPath, "error", rmErr)
		}
	}()

	if err = writePIDFile(pidPath); err != nil {
		return err
	}

	defer func() {
		if rmErr := removePIDFile(pidPath); rmErr != nil {
			logger.ErrorKV(ctx, "Failed to remove pid file", "error", rmErr)
		}
	}()

	trig := trigger.New(store, notifier, player, opts.Now)
	d := New(window, cfg.TickInterval, trig, opts.Now)
	srv := control.NewServer(lis, d, control.WithIOTimeout(cfg.Timeout))

	logger.InfoKV(ctx, "Enjoy!",
		"socket", cfg.SocketPath,
		"state", cfg.StatePath,
		"bed_time", window.Bed.String(),
		"wake_time", window.Wake.String(),
		"warning_lead", window.WarningLead.String(),
		"tick", cfg.TickInterval.String())

	if err = d.Run(ctx, srv); err != nil {
		return fmt.Errorf("run daemon: %w", err)
	}

	logger.Info(ctx, "Daemon stopped.")

	return nil
}

// releaseStaleSocket returns ErrAlreadyRunning when a daemon answers on path,
// and removes the socket file when nothing does.
func releaseStaleSocket(ctx context.Context, path string, timeout time.Duration) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}

		return fmt.Errorf("stat socket: %w", err)
	}

	client, err := control.NewClient(path, control.WithTimeout(timeout))
	if err != nil {
		return err
	}

	if client.Alive(ctx) {
		return ErrAlreadyRunning
	}

	logger.WarnKV(ctx, "Resetting socket", "socket", path)

	if err = os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove stale socket: %w", err)
	}

	return nil
}

func applyOverrides(cfg *config.Config, opts *Options) {
	if opts.SocketPath != "" {
		cfg.SocketPath = opts.SocketPath
	}

	if opts.StatePath != "" {
		cfg.StatePath = opts.StatePath
	}

	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}
}

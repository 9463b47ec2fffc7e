package action

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/oshokin/bedtime/internal/logger"
)

// windowsShutdownTimeout is the delay in seconds for Windows shutdown command.
const windowsShutdownTimeout = "0"

// ErrUnsupportedOS indicates the current OS is not supported for shutdown.
var ErrUnsupportedOS = errors.New("unsupported operating system")

// LocalNotifier powers off the machine the daemon runs on at bed time.
// Warnings are only logged.
type LocalNotifier struct {
	// goos overrides runtime.GOOS in tests.
	goos string
	// start launches the prepared command. Defaults to (*exec.Cmd).Start.
	start func(*exec.Cmd) error
}

// NewLocalNotifier returns a notifier that shuts this host down.
func NewLocalNotifier() *LocalNotifier {
	return &LocalNotifier{
		goos:  runtime.GOOS,
		start: (*exec.Cmd).Start,
	}
}

// Notify issues the OS shutdown command for bed time events:
// - Linux/macOS: `shutdown -h now`
// - Windows:     `shutdown.exe -s -f -t 0`
// The command is started and not waited for; the OS takes over the rest.
func (l *LocalNotifier) Notify(ctx context.Context, event Event) error {
	if event.Kind != KindBedtime {
		logger.InfoKV(ctx, "Bed time is near", "event_id", event.ID)

		return nil
	}

	cmd, err := shutdownCommand(ctx, l.goos)
	if err != nil {
		return err
	}

	return l.start(cmd)
}

func shutdownCommand(ctx context.Context, goos string) (*exec.Cmd, error) {
	switch goos {
	case "linux", "darwin", "freebsd", "openbsd", "netbsd":
		return exec.CommandContext(ctx, "shutdown", "-h", "now"), nil
	case "windows":
		return exec.CommandContext(ctx, "shutdown.exe", "-s", "-f", "-t", windowsShutdownTimeout), nil
	default:
		return nil, fmt.Errorf("shutdown on %s: %w", goos, ErrUnsupportedOS)
	}
}

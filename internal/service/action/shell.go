package action

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/oshokin/bedtime/internal/logger"
)

// errEmptyCommand is returned when a shell backend has nothing to run.
var errEmptyCommand = errors.New("empty command")

// ShellNotifier runs a shell command per event kind, e.g.
// `ssh user@host "sudo shutdown now"` for bed time.
type ShellNotifier struct {
	// BedtimeCommand runs for KindBedtime.
	BedtimeCommand string
	// WarningCommand runs for KindWarning. Empty skips the warning.
	WarningCommand string
	// Timeout bounds a single command. Zero means no limit.
	Timeout time.Duration
}

// Notify runs the command for the event kind and waits for it to finish.
func (s *ShellNotifier) Notify(ctx context.Context, event Event) error {
	command := s.BedtimeCommand
	if event.Kind == KindWarning {
		command = s.WarningCommand
	}

	if command == "" {
		logger.DebugKV(ctx, "No command for event", "kind", event.Kind, "event_id", event.ID)

		return nil
	}

	return runShell(ctx, command, s.Timeout)
}

// ShellPlayer starts playback with a shell command.
type ShellPlayer struct {
	// Command is run via "sh -c".
	Command string
	// Timeout bounds the command. Zero means no limit.
	Timeout time.Duration
}

// StartPlayback runs the configured command.
func (s *ShellPlayer) StartPlayback(ctx context.Context) error {
	return runShell(ctx, s.Command, s.Timeout)
}

// runShell executes command with "sh -c", logs its output and returns an
// error for non-zero exits.
func runShell(ctx context.Context, command string, timeout time.Duration) error {
	if strings.TrimSpace(command) == "" {
		return errEmptyCommand
	}

	if timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Children of sh may outlive it and hold the output pipes open.
	cmd.WaitDelay = time.Second

	err := cmd.Run()

	if out := strings.TrimSpace(stdout.String()); out != "" {
		logger.InfoKV(ctx, "Command output", "command", command, "stdout", out)
	}

	if errOut := strings.TrimSpace(stderr.String()); errOut != "" {
		logger.WarnKV(ctx, "Command error output", "command", command, "stderr", errOut)
	}

	if err != nil {
		return fmt.Errorf("run %q: %w", command, err)
	}

	return nil
}

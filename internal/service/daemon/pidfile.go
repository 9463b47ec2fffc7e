package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/oshokin/bedtime/internal/config"
	"github.com/oshokin/bedtime/internal/logger"
)

// pidFilePath returns the pid file kept next to the control socket.
func pidFilePath(socketPath string) string {
	return socketPath + ".pid"
}

// checkPIDFile fails with ErrAlreadyRunning when the pid file names a live
// process running the same executable as this one. This catches a daemon
// whose socket file was deleted from under it. Stale pid files are removed.
func checkPIDFile(ctx context.Context, path string) error {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}

		return fmt.Errorf("read pid file: %w", err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(contents)))
	if err != nil || pid <= 0 {
		logger.WarnKV(ctx, "Removing malformed pid file", "path", path)

		return removePIDFile(path)
	}

	if pid == os.Getpid() {
		return nil
	}

	process, err := ps.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("find process %d: %w", pid, err)
	}

	if process != nil && process.Executable() == ownExecutable() {
		return fmt.Errorf("%w (pid %d)", ErrAlreadyRunning, pid)
	}

	logger.InfoKV(ctx, "Removing stale pid file", "path", path, "pid", pid)

	return removePIDFile(path)
}

// ownExecutable returns this process's executable name as go-ps reports it,
// so both sides of the comparison are truncated the same way.
func ownExecutable() string {
	self, err := ps.FindProcess(os.Getpid())
	if err != nil || self == nil {
		return ""
	}

	return self.Executable()
}

func writePIDFile(path string) error {
	data := []byte(strconv.Itoa(os.Getpid()) + "\n")

	if err := os.WriteFile(path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}

	return nil
}

func removePIDFile(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove pid file: %w", err)
	}

	return nil
}

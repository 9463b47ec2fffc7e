package action

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/bedtime/internal/config"
)

// countingBackend counts calls that reach it.
type countingBackend struct {
	calls atomic.Int32
}

func (c *countingBackend) Notify(context.Context, Event) error {
	c.calls.Add(1)

	return nil
}

func (c *countingBackend) StartPlayback(context.Context) error {
	c.calls.Add(1)

	return nil
}

// TestNewEvent stamps distinct ids.
func TestNewEvent(t *testing.T) {
	t.Parallel()

	now := time.Now()
	a := NewEvent(KindBedtime, now)
	b := NewEvent(KindBedtime, now)

	require.NotEmpty(t, a.ID)
	require.NotEqual(t, a.ID, b.ID)
	require.Equal(t, KindBedtime, a.Kind)
	require.Equal(t, now, a.At)
}

// TestShellNotifier_RunsCommandPerKind checks the right command runs for each kind.
func TestShellNotifier_RunsCommandPerKind(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	bedMarker := filepath.Join(dir, "bed")
	warnMarker := filepath.Join(dir, "warn")

	n := &ShellNotifier{
		BedtimeCommand: "touch " + bedMarker,
		WarningCommand: "touch " + warnMarker,
		Timeout:        5 * time.Second,
	}

	require.NoError(t, n.Notify(context.Background(), NewEvent(KindWarning, time.Now())))

	_, err := os.Stat(warnMarker)
	require.NoError(t, err)

	_, err = os.Stat(bedMarker)
	require.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, n.Notify(context.Background(), NewEvent(KindBedtime, time.Now())))

	_, err = os.Stat(bedMarker)
	require.NoError(t, err)
}

// TestShellNotifier_EmptyWarningIsSkipped ensures no command means no error.
func TestShellNotifier_EmptyWarningIsSkipped(t *testing.T) {
	t.Parallel()

	n := &ShellNotifier{BedtimeCommand: "true"}
	require.NoError(t, n.Notify(context.Background(), NewEvent(KindWarning, time.Now())))
}

// TestShellPlayer_Failures covers non-zero exits, empty commands and timeouts.
func TestShellPlayer_Failures(t *testing.T) {
	t.Parallel()

	require.Error(t, (&ShellPlayer{Command: "exit 3"}).StartPlayback(context.Background()))
	require.ErrorIs(t, (&ShellPlayer{Command: "  "}).StartPlayback(context.Background()), errEmptyCommand)

	start := time.Now()
	err := (&ShellPlayer{Command: "sleep 5", Timeout: 100 * time.Millisecond}).StartPlayback(context.Background())
	require.Error(t, err)
	require.Less(t, time.Since(start), 4*time.Second)
}

// TestLocalNotifier builds the shutdown command per OS without running it.
func TestLocalNotifier(t *testing.T) {
	t.Parallel()

	var started []string

	n := &LocalNotifier{
		goos: "linux",
		start: func(cmd *exec.Cmd) error {
			started = append(started, cmd.Args...)

			return nil
		},
	}

	require.NoError(t, n.Notify(context.Background(), NewEvent(KindWarning, time.Now())))
	require.Empty(t, started)

	require.NoError(t, n.Notify(context.Background(), NewEvent(KindBedtime, time.Now())))
	require.Equal(t, []string{"shutdown", "-h", "now"}, started)

	n.goos = "plan9"
	err := n.Notify(context.Background(), NewEvent(KindBedtime, time.Now()))
	require.ErrorIs(t, err, ErrUnsupportedOS)

	cmd, err := shutdownCommand(context.Background(), "windows")
	require.NoError(t, err)
	require.Equal(t, []string{"shutdown.exe", "-s", "-f", "-t", "0"}, cmd.Args)
}

// TestMPDPlayer_DialFailure reports an error when nothing listens.
func TestMPDPlayer_DialFailure(t *testing.T) {
	t.Parallel()

	p := &MPDPlayer{
		Network:  "unix",
		Address:  filepath.Join(t.TempDir(), "mpd.sock"),
		Playlist: "sleep",
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.Error(t, p.StartPlayback(ctx))
}

// TestDryRun never reaches the wrapped backends.
func TestDryRun(t *testing.T) {
	t.Parallel()

	b := new(countingBackend)
	d := DryRun{Notifier: b, Player: b}

	require.NoError(t, d.StartPlayback(context.Background()))
	require.NoError(t, d.Notify(context.Background(), NewEvent(KindBedtime, time.Now())))
	require.Zero(t, b.calls.Load())
}

// TestFromConfig maps backend names to implementations.
func TestFromConfig(t *testing.T) {
	t.Parallel()

	cfg := config.Default()

	n, p, err := FromConfig(cfg)
	require.NoError(t, err)
	require.IsType(t, Nop{}, n)
	require.IsType(t, Nop{}, p)

	cfg.Notify = config.NotifyConfig{Backend: config.BackendShell, BedtimeCommand: "true"}
	cfg.Playback = config.PlaybackConfig{Backend: config.BackendMPD, Playlist: "sleep"}

	n, p, err = FromConfig(cfg)
	require.NoError(t, err)
	require.IsType(t, &ShellNotifier{}, n)
	require.IsType(t, &MPDPlayer{}, p)

	cfg.Notify.Backend = config.BackendLocal
	cfg.Playback = config.PlaybackConfig{Backend: config.BackendShell, Command: "true"}

	n, p, err = FromConfig(cfg)
	require.NoError(t, err)
	require.IsType(t, &LocalNotifier{}, n)
	require.IsType(t, &ShellPlayer{}, p)

	cfg.Playback.Backend = "cassette"
	_, _, err = FromConfig(cfg)
	require.Error(t, err)
}

package client

import (
	"bytes"
	"context"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/bedtime/internal/api/control"
	"github.com/oshokin/bedtime/internal/config"
	"github.com/oshokin/bedtime/internal/domain/schedule"
)

// asleepService always reports the asleep phase.
type asleepService struct{}

func (asleepService) Status(context.Context) schedule.Evaluation {
	return schedule.Evaluation{Phase: schedule.PhaseAsleep}
}

func (asleepService) Reset(context.Context) error { return nil }

func (asleepService) Test(context.Context) {}

// writeConfig stores a config pointing at a socket inside a fresh directory.
func writeConfig(t *testing.T) (cfgPath, socketPath string) {
	t.Helper()

	dir, err := os.MkdirTemp("", "bc")
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = os.RemoveAll(dir)
	})

	cfg := config.Default()
	cfg.SocketPath = filepath.Join(dir, "c.sock")
	cfg.Timeout = 2 * time.Second

	cfgPath = filepath.Join(dir, "settings.yaml")
	require.NoError(t, config.Save(cfgPath, cfg))

	return cfgPath, cfg.SocketPath
}

// TestRun_NotRunning prints the not running message without a socket.
func TestRun_NotRunning(t *testing.T) {
	t.Parallel()

	cfgPath, _ := writeConfig(t)

	var out, errOut bytes.Buffer

	err := Run(context.Background(), &Options{
		ConfigPath: cfgPath,
		Command:    "status",
		Out:        &out,
		ErrOut:     &errOut,
	})
	require.ErrorIs(t, err, control.ErrNotRunning)
	require.Empty(t, out.String())
	require.Equal(t, MessageNotRunning+"\n", errOut.String())
}

// TestRun_ConnectFailed reports a socket file nobody listens on.
func TestRun_ConnectFailed(t *testing.T) {
	t.Parallel()

	cfgPath, socketPath := writeConfig(t)
	require.NoError(t, os.WriteFile(socketPath, nil, 0o600))

	var errOut bytes.Buffer

	err := Run(context.Background(), &Options{
		ConfigPath: cfgPath,
		Command:    "status",
		Out:        new(bytes.Buffer),
		ErrOut:     &errOut,
	})
	require.Error(t, err)
	require.Contains(t, errOut.String(), MessageConnectFailed)
}

// TestRun_PrintsResponseVerbatim relays the daemon answer unchanged.
func TestRun_PrintsResponseVerbatim(t *testing.T) {
	t.Parallel()

	cfgPath, socketPath := writeConfig(t)

	lis, err := net.Listen(control.Network, socketPath)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := control.NewServer(lis, asleepService{})

	go func() {
		_ = srv.Serve(ctx)
	}()

	var out bytes.Buffer

	require.NoError(t, Run(ctx, &Options{
		ConfigPath: cfgPath,
		Command:    "status",
		Out:        &out,
		ErrOut:     new(bytes.Buffer),
	}))
	require.Equal(t, "\nStatus: ASLEEP\nTime for bed.", out.String())

	out.Reset()

	require.NoError(t, Run(ctx, &Options{
		ConfigPath: cfgPath,
		SocketPath: socketPath,
		Command:    "bogus",
		Out:        &out,
	}))
	require.Equal(t, control.ResponseInvalidCommand, out.String())
}

// TestRun_BadConfigIsPrinted reports an unreadable settings file on ErrOut.
func TestRun_BadConfigIsPrinted(t *testing.T) {
	t.Parallel()

	cfgPath := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("bed_time: [not, a, time\n"), 0o600))

	var errOut bytes.Buffer

	err := Run(context.Background(), &Options{
		ConfigPath: cfgPath,
		Command:    "status",
		Out:        new(bytes.Buffer),
		ErrOut:     &errOut,
	})
	require.Error(t, err)
	require.True(t, strings.HasPrefix(errOut.String(), "Error: "))
	require.Contains(t, errOut.String(), "unmarshal settings")

	errOut.Reset()

	err = Run(context.Background(), &Options{
		ConfigPath: filepath.Join(t.TempDir(), "missing.yaml"),
		Command:    "status",
		ErrOut:     &errOut,
	})
	require.Error(t, err)
	require.Contains(t, errOut.String(), "read settings")
}

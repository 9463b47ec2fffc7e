package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/bedtime/internal/domain/schedule"
)

// TestValidate_Defaults checks that an empty config is filled with defaults.
func TestValidate_Defaults(t *testing.T) {
	t.Parallel()

	cfg := new(Config)
	require.NoError(t, Validate(cfg))

	require.Equal(t, DefaultBedTime, cfg.BedTime)
	require.Equal(t, DefaultWakeTime, cfg.WakeTime)
	require.Equal(t, DefaultWarningLead, cfg.WarningLead)
	require.Equal(t, DefaultTickInterval, cfg.TickInterval)
	require.Equal(t, DefaultSocketPath, cfg.SocketPath)
	require.Equal(t, DefaultStatePath, cfg.StatePath)
	require.Equal(t, StateBackendSQLite, cfg.StateBackend)
	require.Equal(t, BackendNone, cfg.Notify.Backend)
	require.Equal(t, BackendNone, cfg.Playback.Backend)

	w, err := cfg.Window()
	require.NoError(t, err)
	require.Equal(t, schedule.NewClockTime(22, 0, 0), w.Bed)
	require.Equal(t, schedule.NewClockTime(5, 0, 0), w.Wake)
}

// TestValidate_Rejects covers the invalid settings.
func TestValidate_Rejects(t *testing.T) {
	t.Parallel()

	cases := map[string]*Config{
		"bad bed time":     {BedTime: "26:00"},
		"empty window":     {BedTime: "05:00", WakeTime: "05:00"},
		"bad state":        {StateBackend: "redis"},
		"bad notify":       {Notify: NotifyConfig{Backend: "carrier-pigeon"}},
		"shell no command": {Notify: NotifyConfig{Backend: BackendShell}},
		"mpd no playlist":  {Playback: PlaybackConfig{Backend: BackendMPD}},
		"bad playback":     {Playback: PlaybackConfig{Backend: "vinyl"}},
	}

	for name, cfg := range cases {
		require.Error(t, Validate(cfg), name)
	}

	require.Error(t, Validate(nil))
}

// TestValidate_MPDDefaults ensures MPD dial defaults are applied.
func TestValidate_MPDDefaults(t *testing.T) {
	t.Parallel()

	cfg := &Config{Playback: PlaybackConfig{Backend: BackendMPD, Playlist: "sleep"}}
	require.NoError(t, Validate(cfg))
	require.Equal(t, DefaultMPDNetwork, cfg.Playback.Network)
	require.Equal(t, DefaultMPDAddress, cfg.Playback.Address)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")

	cfg := &Config{
		BedTime:     "23:15",
		WakeTime:    "06:30",
		WarningLead: 10 * time.Minute,
		SocketPath:  "/tmp/x.sock",
		Notify: NotifyConfig{
			Backend:        BackendShell,
			BedtimeCommand: `ssh host "sudo shutdown now"`,
		},
	}

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.BedTime, loaded.BedTime)
	require.Equal(t, cfg.WakeTime, loaded.WakeTime)
	require.Equal(t, cfg.WarningLead, loaded.WarningLead)
	require.Equal(t, cfg.SocketPath, loaded.SocketPath)
	require.Equal(t, cfg.Notify, loaded.Notify)

	_, err = os.Stat(path)
	require.NoError(t, err)
}

// TestLoad_MissingExplicitFile fails when a non-default path is missing.
func TestLoad_MissingExplicitFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

// TestLoadEnv exports the dotenv file and expands only MPD settings.
func TestLoadEnv(t *testing.T) {
	envPath := filepath.Join(t.TempDir(), "bedtime.env")
	require.NoError(t, os.WriteFile(envPath, []byte("BEDTIME_TEST_HOST=user@10.0.0.5\nBEDTIME_TEST_MPD_PASS=hunter2\n"), 0o600))

	t.Cleanup(func() {
		_ = os.Unsetenv("BEDTIME_TEST_HOST")
		_ = os.Unsetenv("BEDTIME_TEST_MPD_PASS")
	})

	command := `ssh ${BEDTIME_TEST_HOST} "sudo shutdown now"`
	cfg := &Config{
		EnvFile: envPath,
		Notify: NotifyConfig{
			Backend:        BackendShell,
			BedtimeCommand: command,
		},
		Playback: PlaybackConfig{
			Backend:  BackendMPD,
			Password: "${BEDTIME_TEST_MPD_PASS}",
			Playlist: "night-${BEDTIME_TEST_UNSET_VAR}",
		},
	}

	require.NoError(t, cfg.LoadEnv())
	require.Equal(t, command, cfg.Notify.BedtimeCommand)
	require.Equal(t, "user@10.0.0.5", os.Getenv("BEDTIME_TEST_HOST"))
	require.Equal(t, "hunter2", cfg.Playback.Password)
	require.Equal(t, "night-${BEDTIME_TEST_UNSET_VAR}", cfg.Playback.Playlist)

	missing := &Config{EnvFile: filepath.Join(t.TempDir(), "missing.env")}
	require.Error(t, missing.LoadEnv())
}

// TestExpandEnv_KeepsShellSyntax leaves shell commands and bare $ untouched.
func TestExpandEnv_KeepsShellSyntax(t *testing.T) {
	t.Setenv("BEDTIME_TEST_ADDR", "mpd.lan:6600")

	kill := `ssh host "ps aux | awk '{print $2}' | xargs kill"`
	cfg := &Config{
		Notify: NotifyConfig{
			BedtimeCommand: kill,
			WarningCommand: `notify-send "$USER" "${BEDTIME_TEST_ADDR}"`,
		},
		Playback: PlaybackConfig{
			Command:  `mpc play $1`,
			Address:  "${BEDTIME_TEST_ADDR}",
			Password: "pa$$word",
		},
	}

	cfg.ExpandEnv()

	require.Equal(t, kill, cfg.Notify.BedtimeCommand)
	require.Contains(t, cfg.Notify.BedtimeCommand, "$2")
	require.Equal(t, `notify-send "$USER" "${BEDTIME_TEST_ADDR}"`, cfg.Notify.WarningCommand)
	require.Equal(t, `mpc play $1`, cfg.Playback.Command)
	require.Equal(t, "mpd.lan:6600", cfg.Playback.Address)
	require.Equal(t, "pa$$word", cfg.Playback.Password)
}

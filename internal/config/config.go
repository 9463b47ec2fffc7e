package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/bedtime/internal/domain/schedule"
)

// Config holds the daemon schedule, control channel and action settings.
type Config struct {
	// BedTime opens the asleep window, "HH:MM" or "HH:MM:SS" local time.
	BedTime string `yaml:"bed_time"`
	// WakeTime closes the asleep window.
	WakeTime string `yaml:"wake_time"`
	// WarningLead is how long before bed time the warning is sent.
	WarningLead time.Duration `yaml:"warning_lead"`
	// TickInterval is the period of the daemon clock check.
	TickInterval time.Duration `yaml:"tick_interval"`
	// SocketPath is the unix socket of the control channel.
	SocketPath string `yaml:"socket_path"`
	// StatePath is where the triggered flag is persisted.
	StatePath string `yaml:"state_path"`
	// StateBackend selects the store implementation: "sqlite" or "file".
	StateBackend string `yaml:"state_backend"`
	// Timeout bounds client dial and read on the control channel.
	Timeout time.Duration `yaml:"timeout"`
	// ActionTimeout bounds each external action run by the daemon.
	ActionTimeout time.Duration `yaml:"action_timeout"`
	// LogLevel is the minimum level written by the daemon.
	LogLevel string `yaml:"log_level"`
	// LogFile redirects daemon logs into a rotating file when set.
	LogFile string `yaml:"log_file"`
	// EnvFile is a dotenv file loaded before actions are built.
	EnvFile string `yaml:"env_file"`
	// Notify configures the remote notify action.
	Notify NotifyConfig `yaml:"notify"`
	// Playback configures the optional playback action.
	Playback PlaybackConfig `yaml:"playback"`
}

// NotifyConfig selects and configures the notify backend.
type NotifyConfig struct {
	// Backend is one of "none", "shell" or "local".
	Backend string `yaml:"backend"`
	// BedtimeCommand runs via "sh -c" on entering the asleep window.
	BedtimeCommand string `yaml:"bedtime_command"`
	// WarningCommand runs via "sh -c" when the pre-bed warning fires.
	WarningCommand string `yaml:"warning_command"`
}

// PlaybackConfig selects and configures the playback backend.
type PlaybackConfig struct {
	// Backend is one of "none", "shell" or "mpd".
	Backend string `yaml:"backend"`
	// Command runs via "sh -c" for the shell backend.
	Command string `yaml:"command"`
	// Network is the MPD dial network, "tcp" or "unix".
	Network string `yaml:"network"`
	// Address is the MPD host:port or socket path.
	Address string `yaml:"address"`
	// Password authenticates against MPD when set.
	Password string `yaml:"password"`
	// Playlist is the stored MPD playlist to load.
	Playlist string `yaml:"playlist"`
	// Shuffle enables random mode before playing.
	Shuffle bool `yaml:"shuffle"`
}

const (
	// DefaultConfigFilename is the default filename for daemon settings.
	DefaultConfigFilename = "bedtime-settings.yaml"
	// DefaultSocketPath is the default control channel location.
	DefaultSocketPath = "/tmp/bedtime.sock"
	// DefaultStatePath is the default location of the persisted flag.
	DefaultStatePath = "/tmp/bedtime.db"
	// DefaultBedTime opens the asleep window.
	DefaultBedTime = "22:00"
	// DefaultWakeTime closes the asleep window.
	DefaultWakeTime = "05:00"
	// DefaultWarningLead is the warning lead before bed time.
	DefaultWarningLead = 20 * time.Minute
	// DefaultTickInterval is the daemon clock check period.
	DefaultTickInterval = time.Second
	// DefaultTimeout bounds control channel client operations.
	DefaultTimeout = 5 * time.Second
	// DefaultActionTimeout bounds a single external action.
	DefaultActionTimeout = 2 * time.Minute
	// DefaultEnvFile is loaded when present and EnvFile is empty.
	DefaultEnvFile = ".env"
	// DefaultFilePermissions is the default file permission for written files.
	DefaultFilePermissions = 0o600
	// DefaultMPDNetwork is the MPD dial network.
	DefaultMPDNetwork = "tcp"
	// DefaultMPDAddress is the MPD dial address.
	DefaultMPDAddress = "localhost:6600"
)

// State store backends.
const (
	StateBackendSQLite = "sqlite"
	StateBackendFile   = "file"
)

// Action backends.
const (
	BackendNone  = "none"
	BackendShell = "shell"
	BackendLocal = "local"
	BackendMPD   = "mpd"
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errEmptyWindow is returned when bed and wake time are equal.
	errEmptyWindow = errors.New("bed time and wake time must differ")
	// errUnknownBackend is returned for unsupported backend names.
	errUnknownBackend = errors.New("unknown backend")
	// errCommandRequired is returned when a shell backend has no command.
	errCommandRequired = errors.New("command must be provided for shell backend")
	// errPlaylistRequired is returned when the mpd backend has no playlist.
	errPlaylistRequired = errors.New("playlist must be provided for mpd backend")
)

// Default returns a validated configuration with every default applied.
func Default() *Config {
	cfg := new(Config)

	// Defaults always validate.
	_ = Validate(cfg)

	return cfg
}

// Load reads configuration from the provided path and validates it.
// A missing file at the default path yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && path == DefaultConfigFilename {
			return Default(), nil
		}

		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes cfg to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate fills defaults and checks the schedule and backend settings.
//
//nolint:cyclop // A flat list of field checks reads best as one function.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.BedTime == "" {
		cfg.BedTime = DefaultBedTime
	}

	if cfg.WakeTime == "" {
		cfg.WakeTime = DefaultWakeTime
	}

	if cfg.WarningLead <= 0 {
		cfg.WarningLead = DefaultWarningLead
	}

	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultTickInterval
	}

	if cfg.SocketPath == "" {
		cfg.SocketPath = DefaultSocketPath
	}

	if cfg.StatePath == "" {
		cfg.StatePath = DefaultStatePath
	}

	if cfg.StateBackend == "" {
		cfg.StateBackend = StateBackendSQLite
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	if cfg.ActionTimeout <= 0 {
		cfg.ActionTimeout = DefaultActionTimeout
	}

	if _, err := cfg.Window(); err != nil {
		return err
	}

	switch cfg.StateBackend {
	case StateBackendSQLite, StateBackendFile:
	default:
		return fmt.Errorf("state backend %q: %w", cfg.StateBackend, errUnknownBackend)
	}

	if err := validateNotify(&cfg.Notify); err != nil {
		return err
	}

	return validatePlayback(&cfg.Playback)
}

// Window parses the schedule into a schedule.Window.
func (c *Config) Window() (schedule.Window, error) {
	bed, err := schedule.ParseClockTime(c.BedTime)
	if err != nil {
		return schedule.Window{}, fmt.Errorf("bed time: %w", err)
	}

	wake, err := schedule.ParseClockTime(c.WakeTime)
	if err != nil {
		return schedule.Window{}, fmt.Errorf("wake time: %w", err)
	}

	if bed == wake {
		return schedule.Window{}, errEmptyWindow
	}

	return schedule.Window{
		Bed:         bed,
		Wake:        wake,
		WarningLead: c.WarningLead,
	}, nil
}

func validateNotify(n *NotifyConfig) error {
	if n.Backend == "" {
		n.Backend = BackendNone
	}

	switch n.Backend {
	case BackendNone, BackendLocal:
		return nil
	case BackendShell:
		if n.BedtimeCommand == "" {
			return fmt.Errorf("notify: %w", errCommandRequired)
		}

		return nil
	default:
		return fmt.Errorf("notify backend %q: %w", n.Backend, errUnknownBackend)
	}
}

func validatePlayback(p *PlaybackConfig) error {
	if p.Backend == "" {
		p.Backend = BackendNone
	}

	switch p.Backend {
	case BackendNone:
		return nil
	case BackendShell:
		if p.Command == "" {
			return fmt.Errorf("playback: %w", errCommandRequired)
		}

		return nil
	case BackendMPD:
		if p.Network == "" {
			p.Network = DefaultMPDNetwork
		}

		if p.Address == "" {
			p.Address = DefaultMPDAddress
		}

		if p.Playlist == "" {
			return errPlaylistRequired
		}

		return nil
	default:
		return fmt.Errorf("playback backend %q: %w", p.Backend, errUnknownBackend)
	}
}

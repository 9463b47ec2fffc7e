package action

import (
	"errors"
	"fmt"

	"github.com/oshokin/bedtime/internal/config"
)

// errUnknownBackend is returned for backends the factory does not know.
var errUnknownBackend = errors.New("unknown action backend")

// FromConfig builds the notifier and player selected by cfg.
func FromConfig(cfg *config.Config) (Notifier, Player, error) {
	var (
		notifier Notifier
		player   Player
	)

	switch cfg.Notify.Backend {
	case config.BackendNone, "":
		notifier = Nop{}
	case config.BackendShell:
		notifier = &ShellNotifier{
			BedtimeCommand: cfg.Notify.BedtimeCommand,
			WarningCommand: cfg.Notify.WarningCommand,
			Timeout:        cfg.ActionTimeout,
		}
	case config.BackendLocal:
		notifier = NewLocalNotifier()
	default:
		return nil, nil, fmt.Errorf("notify %q: %w", cfg.Notify.Backend, errUnknownBackend)
	}

	switch cfg.Playback.Backend {
	case config.BackendNone, "":
		player = Nop{}
	case config.BackendShell:
		player = &ShellPlayer{
			Command: cfg.Playback.Command,
			Timeout: cfg.ActionTimeout,
		}
	case config.BackendMPD:
		player = &MPDPlayer{
			Network:  cfg.Playback.Network,
			Address:  cfg.Playback.Address,
			Password: cfg.Playback.Password,
			Playlist: cfg.Playback.Playlist,
			Shuffle:  cfg.Playback.Shuffle,
			Timeout:  cfg.ActionTimeout,
		}
	default:
		return nil, nil, fmt.Errorf("playback %q: %w", cfg.Playback.Backend, errUnknownBackend)
	}

	return notifier, player, nil
}

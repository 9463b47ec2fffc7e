package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/bedtime/internal/config"
	"github.com/oshokin/bedtime/internal/service/client"
	"github.com/oshokin/bedtime/internal/service/daemon"
	"github.com/oshokin/bedtime/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// socketPath overrides the control socket from config.
	socketPath string
	// statePath overrides the state location from config.
	statePath string
	// logLevel overrides the log level from config.
	logLevel string

	// rootCmd represents the base command.
	rootCmd = &cobra.Command{
		Use:   "bedtime",
		Short: "Enforce a nightly bed time.",
		Long: `Runs a daemon that fires a bed time sequence once per night.

Between bed time and wake time the daemon starts playback and notifies the
target machine exactly once, even across restarts. A warning goes out shortly
before bed time. The remaining subcommands talk to a running daemon over its
unix control socket.`,
		SilenceUsage: true,
	}

	// startCmd runs the daemon in the foreground.
	startCmd = &cobra.Command{
		Use:   "start",
		Short: "Run the daemon in the foreground.",
		Long: `Starts the daemon and blocks until it receives the stop command, SIGINT or SIGTERM.

Refuses to start while another daemon answers on the control socket.
A stale socket file left by a crashed daemon is removed.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return daemon.Run(ctx, &daemon.Options{
				ConfigPath: configPath,
				SocketPath: socketPath,
				StatePath:  statePath,
				LogLevel:   logLevel,
			})
		},
	}
)

// controlCommand builds a subcommand that sends name to the daemon.
func controlCommand(name, short string) *cobra.Command {
	return &cobra.Command{
		Use:           name,
		Short:         short,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		RunE: func(c *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return client.Run(ctx, &client.Options{
				ConfigPath: configPath,
				SocketPath: socketPath,
				Command:    name,
				Out:        c.OutOrStdout(),
				ErrOut:     c.ErrOrStderr(),
			})
		},
	}
}

// Execute runs the bedtime CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().StringVarP(&socketPath, "socket", "s", "", "control socket path (overrides config)")

	startCmd.Flags().StringVar(&statePath, "state", "", "state store path (overrides config)")
	startCmd.Flags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(
		startCmd,
		controlCommand("status", "Print whether it is time for bed and how long is left."),
		controlCommand("stop", "Stop the running daemon."),
		controlCommand("reset", "Clear the triggered flag so the sequence can fire again."),
		controlCommand("test", "Dry run the bed time sequence without side effects."),
	)
}

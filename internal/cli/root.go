// Package cli provides the command-line interface for parley.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/raphaelgruber/parley/internal/config"
	"github.com/raphaelgruber/parley/internal/gateway"
	"github.com/raphaelgruber/parley/internal/metrics"
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose   bool
	serverURL string

	// Global config, logger and gateway client
	cfg       config.Config
	logger    *slog.Logger
	logDone   func() error
	gwClient  *gateway.Client
	collector *metrics.Collector
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "parley",
	Short: "Terminal client for the chat service",
	Long: `Parley is a terminal client for a conversational chat service.

The service owns all sessions and message histories; parley lists
sessions, shows histories, sends messages (the service answers with an
AI reply), and can roll back or delete messages and sessions. Run
'parley chat' for the interactive interface, or use the subcommands for
one-shot operations.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		cfg = config.Load()
		if serverURL != "" {
			cfg.ServerURL = serverURL
		}
		if verbose {
			cfg.LogLevel = slog.LevelDebug
		}

		// The chat TUI owns the terminal; logging to stderr there
		// would tear the alternate screen.
		if cmd.Name() == "chat" {
			logger, logDone = config.SetupFileLogger(cfg.LogFile, cfg.LogLevel)
		} else {
			logger, logDone = config.SetupLogger(cfg.LogFile, cfg.LogLevel)
		}

		gwClient = gateway.New(cfg.ServerURL, cfg.Timeout)
		if verbose {
			collector = metrics.NewCollector()
			gwClient.SetMetrics(collector)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if collector != nil {
			snap := collector.Snapshot()
			for _, op := range snap.Operations {
				logger.Debug("request stats",
					"op", op.Op,
					"count", op.Count,
					"errors", op.Errors,
					"avg_ms", op.AvgTimeMs,
					"min_ms", op.MinTimeMs,
					"max_ms", op.MaxTimeMs,
				)
			}
		}
		if logDone != nil {
			if err := logDone(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
			}
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "chat service base URL (overrides config)")

	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(rollbackCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(themesCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(chatCmd)
}

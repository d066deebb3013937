// Package cli assembles the dap-core command-line surface around the
// spawn/initialize/launch/run lifecycle requests/ and handlers/ expose
// (SPEC_FULL.md §4).
package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/kory-oss/dap-core/internal/dlog"
)

var logLevel string

// Execute builds and runs the root command.
func Execute() error {
	root := &cobra.Command{
		Use:           "dap-core",
		Short:         "Drive a Debug Adapter Protocol adapter from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	root.AddCommand(newRunCommand())
	return root.Execute()
}

func resolveLogger() *slog.Logger {
	var lvl slog.Level
	switch logLevel {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return dlog.New(os.Stderr, lvl)
}

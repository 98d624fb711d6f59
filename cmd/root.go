// Package cmd implements the folio command line interface.
//
// Commands:
//   - serve: run the HTTP API server
//   - ingest: index a PDF into a notebook
//   - ask: answer a question against a notebook
//   - version: show build information
package cmd

import (
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/folio-rag/folio/internal/log"
)

var (
	logLevel string
	logJSON  bool
)

var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "Folio - notebook-scoped document Q&A",
	Long: `Folio indexes PDF documents into notebooks and answers questions
about them, grounded in the retrieved passages and nothing else.

Run 'folio serve' to expose the HTTP API, or use 'folio ingest' and
'folio ask' for one-shot pipeline runs.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "minimum log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "emit logs as JSON")
}

// newLogger builds the process logger from the persistent flags.
func newLogger() log.Logger {
	var level slog.Level
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	return log.New(log.Config{Level: level, JSON: logJSON})
}

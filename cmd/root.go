// Package cmd is pgdelta's CLI front-end: option parsing, file I/O,
// logging setup, and terminal coloring. Spec §1 marks all of this out of
// scope for the core; this package is the external collaborator that
// wires loader/introspect input adapters to the differ/sqlgen/report
// core and prints the result.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/pgdelta/pgdelta/internal/logger"
)

var debug bool

var RootCmd = &cobra.Command{
	Use:   "pgdelta",
	Short: "Compare PostgreSQL schemas and generate migration SQL",
	Long: `pgdelta compares two PostgreSQL schemas, each supplied as CREATE TABLE
DDL files or a live database connection, and emits a human-readable diff
report plus an executable forward-migration SQL script.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogger()
	},
}

func init() {
	RootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	RootCmd.AddCommand(diffCmd)
	RootCmd.AddCommand(migrateCmd)
}

func setupLogger() {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logger.SetGlobal(slog.New(handler), debug)
}

// Execute runs the root command, printing any error to stderr and exiting
// nonzero, per spec §7's "user-visible failure behavior".
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

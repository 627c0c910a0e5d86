// Package cli implements the steward command-line interface. Verbs operate
// directly on the local SQLite metastore; serve exposes the same service
// over HTTP.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "steward",
		Short:         "Lineage-driven metadata recommendation and propagation",
		Long:          "Recommends and propagates column descriptions, glossary term mappings, and classification tags across lineage-connected datasets.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
	}

	rootCmd.PersistentFlags().String("db", "", "path to the SQLite metastore (overrides META_DB_PATH)")
	rootCmd.PersistentFlags().String("hints", "", "path to a relationship-hints YAML file (overrides HINTS_PATH)")
	rootCmd.PersistentFlags().StringP("output", "o", "text", "output format (text, json)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newScanCmd(),
		newRecommendCmd(),
		newTermsCmd(),
		newPushCmd(),
		newChainCmd(),
		newTagsCmd(),
		newSummaryCmd(),
		newReviewsCmd(),
		newLoadCmd(),
		newServeCmd(),
	)
	return rootCmd
}

// getOutputFormat returns the effective output format from the root
// command's persistent flags.
func getOutputFormat(cmd *cobra.Command) string {
	v, _ := cmd.Root().PersistentFlags().GetString("output")
	return v
}

func validateOutputFormat(output string) error {
	if output != "" && output != "text" && output != "json" {
		return fmt.Errorf("unsupported output format %q: use 'text' or 'json'", output)
	}
	return nil
}

func newLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

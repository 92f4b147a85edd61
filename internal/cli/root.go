package cli

import (
	"context"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/pagedeck/pagedeck/pkg/buildinfo"
)

// Execute runs the pagedeck CLI and returns an error if any command fails.
// This is the main entry point for the CLI application.
//
// The function sets up the root command with all subcommands (page, edit,
// serve), configures logging based on the --verbose flag, and executes the
// command tree with the given context.
//
// Logging:
//   - Default: info level (logs to stderr)
//   - With --verbose (-v): debug level
//
// The logger is attached to the context and accessible to all commands via
// loggerFromContext.
func Execute(ctx context.Context) error {
	var verbose bool

	root := &cobra.Command{
		Use:          "pagedeck",
		Short:        "PageDeck is a block-based page editor",
		Long:         `PageDeck composes pages out of typed content blocks (text, code, tables, diagrams, media) arranged on a two-column grid, with tag filtering and drag-style reordering.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().String("config", "", "path to TOML config file")
	root.PersistentFlags().String("data", "", "data directory (overrides config)")

	root.AddCommand(newPageCmd())
	root.AddCommand(newEditCmd())
	root.AddCommand(newServeCmd())

	return root.ExecuteContext(ctx)
}

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	Config   string // YAML config file, optional
	Database string // overrides storage.path
	APIURL   string // overrides api.base_url
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the storefront CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "storefront",
		Short: "storefront - catalog, cart and checkout client",
		Long: `A command-line client for the storefront commerce API.

Browse the catalog, keep a cart that survives between runs, and check out.
The cart and a journal of checkout attempts are stored locally.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "path to YAML config file")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "local storage path (overrides storage.path)")
	cmd.PersistentFlags().StringVar(&opts.APIURL, "api", "", "commerce API base URL (overrides api.base_url)")

	// Add subcommands
	cmd.AddCommand(NewProductsCommand(opts))
	cmd.AddCommand(NewCategoriesCommand(opts))
	cmd.AddCommand(NewCartCommand(opts))
	cmd.AddCommand(NewCheckoutCommand(opts))
	cmd.AddCommand(NewOrdersCommand(opts))

	return cmd
}

// Execute runs the root command with os.Args and returns the process exit code.
func Execute(ctx context.Context) int {
	err := NewRootCommand().ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}
	// Commands report their own errors; anything else (bad flags, unknown
	// command) still needs a line on stderr.
	if !isReported(err) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	slog.Debug("command failed", "error", err)
	return GetExitCode(err)
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

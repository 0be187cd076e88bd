// Package cmd provides the CLI commands for storekb.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/storekb/internal/config"
	skerrors "github.com/Aman-CERP/storekb/internal/errors"
	"github.com/Aman-CERP/storekb/internal/logging"
	"github.com/Aman-CERP/storekb/pkg/version"
)

// globalOptions holds the persistent flags shared by every subcommand.
type globalOptions struct {
	debug  bool
	dir    string // directory holding .storekb.yaml
	corpus string // overrides knowledge.dir
}

// NewRootCmd creates the root command for the storekb CLI.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}
	var loggingCleanup func()

	cmd := &cobra.Command{
		Use:   "storekb",
		Short: "Knowledge base search and order lookup for store support agents",
		Long: `storekb indexes a folder of store documents (FAQ, shipping and return
policies, product notes) and answers questions against it, in English or
Chinese. It runs as an MCP server so a support agent can search the knowledge
base and, when Shopify credentials are configured, look up customer orders.

Run 'storekb serve' from an MCP client, or 'storekb search' to try a query.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if !opts.debug {
				return nil
			}
			cleanup, err := logging.SetupDefault(logging.DebugConfig())
			if err != nil {
				return fmt.Errorf("failed to setup debug logging: %w", err)
			}
			loggingCleanup = cleanup
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if loggingCleanup != nil {
				slog.Debug("debug_logging_stopped")
				loggingCleanup()
				loggingCleanup = nil
			}
			return nil
		},
	}

	cmd.SetVersionTemplate("storekb version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging to ~/.storekb/logs/")
	cmd.PersistentFlags().StringVar(&opts.dir, "dir", ".", "Directory containing .storekb.yaml")
	cmd.PersistentFlags().StringVar(&opts.corpus, "corpus", "", "Knowledge base directory (overrides knowledge.dir)")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newSearchCmd(opts))
	cmd.AddCommand(newIndexCmd(opts))
	cmd.AddCommand(newStatusCmd(opts))
	cmd.AddCommand(newOrdersCmd(opts))
	cmd.AddCommand(newConfigCmd(opts))
	cmd.AddCommand(newLogsCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command, printing any error to stderr.
func Execute() error {
	err := NewRootCmd().Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, skerrors.FormatForCLI(err))
	}
	return err
}

// loadConfig loads configuration for the --dir directory and applies the
// --corpus override.
func (o *globalOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.dir)
	if err != nil {
		return nil, skerrors.New(skerrors.ErrCodeConfigInvalid, err.Error(), err).
			WithSuggestion("Run 'storekb config show' to inspect the merged configuration")
	}
	if o.corpus != "" {
		cfg.Knowledge.Dir = o.corpus
	}
	return cfg, nil
}

// setupFileLogging routes slog to the rotating log file without touching the
// terminal, unless --debug already configured logging.
func (o *globalOptions) setupFileLogging(level string) func() {
	if o.debug {
		return func() {}
	}
	cleanup, err := logging.SetupDefault(logging.ServerConfig(level))
	if err != nil {
		// Logging is not critical for the CLI
		return func() {}
	}
	return cleanup
}

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/storekb/internal/index"
	"github.com/Aman-CERP/storekb/internal/ui"
)

func newIndexCmd(g *globalOptions) *cobra.Command {
	var noTUI bool

	cmd := &cobra.Command{
		Use:   "index [corpus-dir]",
		Short: "Build the knowledge base and report what was indexed",
		Long: `Load every allow-listed document, chunk it and build the term index,
showing progress as it goes. The index lives in memory; this command checks
that a corpus loads cleanly and lists documents that could not be read.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if len(args) > 0 {
				g.corpus = args[0]
			}
			return runIndex(ctx, cmd, g, noTUI)
		},
	}

	cmd.Flags().BoolVar(&noTUI, "no-tui", false, "Disable TUI mode, use plain text output")

	return cmd
}

func runIndex(ctx context.Context, cmd *cobra.Command, g *globalOptions, noTUI bool) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	cleanup := g.setupFileLogging(cfg.Server.LogLevel)
	defer cleanup()

	if info, err := os.Stat(cfg.Knowledge.Dir); err != nil || !info.IsDir() {
		return fmt.Errorf("knowledge base directory not found: %s", cfg.Knowledge.Dir)
	}

	renderer := ui.NewRenderer(ui.NewConfig(cmd.OutOrStdout(),
		ui.WithForcePlain(noTUI),
		ui.WithCorpusDir(cfg.Knowledge.Dir)))
	if err := renderer.Start(ctx); err != nil {
		slog.Warn("failed to start progress renderer", slog.String("error", err.Error()))
	}
	defer func() { _ = renderer.Stop() }()

	kb, err := index.Open(ctx, cfg, renderer)
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	slog.Info("cli_index_completed",
		slog.String("corpus", kb.Dir()),
		slog.Int("documents", kb.Build.Documents),
		slog.Int("chunks", kb.Build.Chunks))
	return nil
}

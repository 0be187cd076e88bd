package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/storekb/internal/index"
	"github.com/Aman-CERP/storekb/internal/search"
)

// searchOptions holds CLI flags for search.
type searchOptions struct {
	topK    int
	format  string // "text", "json"
	preview int
}

func newSearchCmd(g *globalOptions) *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the knowledge base",
		Long: `Build the knowledge base and print the chunks that best match a query.

Chinese queries are expanded with English hint terms before ranking.

Examples:
  storekb search "how long does shipping take"
  storekb search 退款政策 --top-k 5
  storekb search "return policy" --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd.Context(), cmd, g, strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().IntVarP(&opts.topK, "top-k", "k", 0, "Maximum number of results, at least 1 (default from config)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")
	cmd.Flags().IntVar(&opts.preview, "preview", 0, "Characters of chunk text shown per result (default from config)")

	return cmd
}

func runSearch(ctx context.Context, cmd *cobra.Command, g *globalOptions, query string, opts searchOptions) error {
	if opts.format != "text" && opts.format != "json" {
		return fmt.Errorf("unknown format %q (use text or json)", opts.format)
	}

	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	cleanup := g.setupFileLogging(cfg.Server.LogLevel)
	defer cleanup()

	kb, err := index.Open(ctx, cfg, nil)
	if err != nil {
		return fmt.Errorf("failed to build knowledge base: %w", err)
	}

	// An explicit --top-k below 1 is raised to 1 by the engine
	topK := cfg.Knowledge.DefaultTopK
	if cmd.Flags().Changed("top-k") {
		topK = opts.topK
	}
	results := kb.Engine.Search(query, topK)
	slog.Info("cli_search_completed",
		slog.String("query", query),
		slog.Int("top_k", topK),
		slog.Int("results", len(results)))

	if opts.format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	preview := opts.preview
	if preview < 1 {
		preview = cfg.Knowledge.PreviewChars
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), search.FormatResults(results, preview))
	return err
}

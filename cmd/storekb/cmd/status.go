package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/storekb/internal/index"
	"github.com/Aman-CERP/storekb/internal/ui"
)

func newStatusCmd(g *globalOptions) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show knowledge base statistics",
		Long: `Build the knowledge base and display:
  - Number of documents, unreadable documents and chunks
  - Vocabulary size and build time
  - Extension allow-list and file size limit
  - Whether Shopify order lookup is configured`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			cleanup := g.setupFileLogging(cfg.Server.LogLevel)
			defer cleanup()

			kb, err := index.Open(cmd.Context(), cfg, nil)
			if err != nil {
				return fmt.Errorf("failed to build knowledge base: %w", err)
			}

			renderer := ui.NewStatusRenderer(cmd.OutOrStdout(), ui.DetectNoColor() || !ui.IsTTY(cmd.OutOrStdout()))
			info := kb.Status(cfg.Shopify.Configured())
			if jsonOutput {
				return renderer.RenderJSON(info)
			}
			return renderer.Render(info)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

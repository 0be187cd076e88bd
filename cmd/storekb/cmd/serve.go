package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/Aman-CERP/storekb/internal/config"
	"github.com/Aman-CERP/storekb/internal/index"
	"github.com/Aman-CERP/storekb/internal/mcp"
	"github.com/Aman-CERP/storekb/internal/shopify"
)

func newServeCmd(opts *globalOptions) *cobra.Command {
	var (
		transport string
		logLevel  string
		allowTTY  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Build the knowledge base and serve it over the Model Context Protocol.

stdout carries JSON-RPC only; logs go to ~/.storekb/logs/server.log.
Order lookup tools are registered when SHOPIFY_STORE_NAME and
SHOPIFY_ACCESS_TOKEN (or the shopify section of the config) are set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if !allowTTY {
				if err := verifyStdinForMCP(); err != nil {
					return err
				}
			}

			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("transport") {
				cfg.Server.Transport = transport
			}
			if cmd.Flags().Changed("log-level") {
				cfg.Server.LogLevel = logLevel
			}

			cleanup := opts.setupFileLogging(cfg.Server.LogLevel)
			defer cleanup()

			return runServe(ctx, cfg)
		},
	}

	cmd.Flags().StringVar(&transport, "transport", "stdio", "Transport: stdio")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	cmd.Flags().BoolVar(&allowTTY, "allow-tty", false, "Serve even when stdin is a terminal")

	return cmd
}

// runServe builds the knowledge base and serves it until ctx is cancelled.
func runServe(ctx context.Context, cfg *config.Config) error {
	srv, err := newMCPServer(ctx, cfg)
	if err != nil {
		return err
	}
	return srv.Serve(ctx, cfg.Server.Transport)
}

// newMCPServer builds the knowledge base and wires the MCP server, including
// the order tools when Shopify is configured.
func newMCPServer(ctx context.Context, cfg *config.Config) (*mcp.Server, error) {
	kb, err := index.Open(ctx, cfg, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build knowledge base: %w", err)
	}

	opts := []mcp.Option{mcp.WithDocuments(kb.Dir(), kb.Sources())}
	if cfg.Shopify.Configured() {
		client, err := shopify.NewClientFromConfig(cfg.Shopify)
		if err != nil {
			return nil, err
		}
		opts = append(opts, mcp.WithOrderTools(shopify.NewTools(client)))
		slog.Info("shopify_configured", slog.String("store", client.StoreName()))
	}

	return mcp.NewServer(kb.Engine, kb.Status(cfg.Shopify.Configured()), cfg, opts...)
}

// verifyStdinForMCP rejects an interactive terminal on stdin: MCP clients
// talk over a pipe, and a human typing at the server only sees it hang.
func verifyStdinForMCP() error {
	fd := os.Stdin.Fd()
	if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		return fmt.Errorf("stdin is a terminal: 'storekb serve' expects an MCP client on a pipe (use --allow-tty to override)")
	}
	return nil
}

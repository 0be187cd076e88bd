package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	skerrors "github.com/Aman-CERP/storekb/internal/errors"
	"github.com/Aman-CERP/storekb/internal/shopify"
)

func newOrdersCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Look up Shopify orders",
		Long: `Look up orders with the same tools the MCP server exposes.

Requires SHOPIFY_STORE_NAME and SHOPIFY_ACCESS_TOKEN, or the shopify section
of the configuration.`,
		Example: `  storekb orders number 1001
  storekb orders id 450789469
  storekb orders email ana@example.com -n 3
  storekb orders recent`,
	}

	var emailLimit, recentLimit int

	cmd.AddCommand(&cobra.Command{
		Use:   "number <order-number>",
		Short: "Look up an order by its number, such as 1001 or #1001",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrderTool(cmd, g, func(ctx context.Context, t *shopify.Tools) (string, error) {
				return t.GetOrderByNumber(ctx, args[0])
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "id <order-id>",
		Short: "Look up an order by its numeric ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrderTool(cmd, g, func(ctx context.Context, t *shopify.Tools) (string, error) {
				return t.GetOrderByID(ctx, args[0])
			})
		},
	})

	emailCmd := &cobra.Command{
		Use:   "email <address>",
		Short: "List a customer's orders",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrderTool(cmd, g, func(ctx context.Context, t *shopify.Tools) (string, error) {
				return t.SearchOrdersByEmail(ctx, args[0], emailLimit)
			})
		},
	}
	emailCmd.Flags().IntVarP(&emailLimit, "limit", "n", shopify.DefaultToolLimit, "Maximum number of orders")
	cmd.AddCommand(emailCmd)

	recentCmd := &cobra.Command{
		Use:   "recent",
		Short: "List the most recent orders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOrderTool(cmd, g, func(ctx context.Context, t *shopify.Tools) (string, error) {
				return t.GetRecentOrders(ctx, recentLimit)
			})
		},
	}
	recentCmd.Flags().IntVarP(&recentLimit, "limit", "n", shopify.DefaultToolLimit, "Maximum number of orders")
	cmd.AddCommand(recentCmd)

	return cmd
}

// runOrderTool builds a Shopify client from configuration and prints the
// result of one order tool.
func runOrderTool(cmd *cobra.Command, g *globalOptions, fn func(context.Context, *shopify.Tools) (string, error)) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	cleanup := g.setupFileLogging(cfg.Server.LogLevel)
	defer cleanup()

	if !cfg.Shopify.Configured() {
		return skerrors.New(skerrors.ErrCodeCredentialsMissing, "Shopify is not configured", nil).
			WithSuggestion("Set SHOPIFY_STORE_NAME and SHOPIFY_ACCESS_TOKEN")
	}

	client, err := shopify.NewClientFromConfig(cfg.Shopify)
	if err != nil {
		return err
	}

	text, err := fn(cmd.Context(), shopify.NewTools(client))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
	return err
}

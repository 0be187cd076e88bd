package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/storekb/configs"
	"github.com/Aman-CERP/storekb/internal/config"
	"github.com/Aman-CERP/storekb/internal/output"
)

func newConfigCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `Manage storekb configuration.

Configuration precedence (lowest to highest):
  1. Hardcoded defaults
  2. User config (~/.config/storekb/config.yaml)
  3. Project config (.storekb.yaml)
  4. Environment variables (STOREKB_*, SHOPIFY_STORE_NAME, SHOPIFY_ACCESS_TOKEN)`,
		Example: `  # Create user config from template
  storekb config init

  # Show effective configuration (access token masked)
  storekb config show

  # Undo the last 'config init --force'
  storekb config backups
  storekb config restore <backup-file>`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd(g))
	cmd.AddCommand(newConfigPathCmd())
	cmd.AddCommand(newConfigBackupsCmd())
	cmd.AddCommand(newConfigRestoreCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create user configuration file",
		Long: `Create the user configuration file from the annotated template at
~/.config/storekb/config.yaml (or $XDG_CONFIG_HOME/storekb/config.yaml).

With --force an existing file is backed up before it is replaced.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigInit(cmd, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Replace an existing configuration (a backup is kept)")

	return cmd
}

func runConfigInit(cmd *cobra.Command, force bool) error {
	out := output.New(cmd.OutOrStdout())
	configPath := config.GetUserConfigPath()

	var backupPath string
	if config.UserConfigExists() {
		if !force {
			out.Warning("User configuration already exists")
			out.Statusf("📁", "Location: %s", configPath)
			out.Status("💡", "Use --force to replace it with the template (a backup is kept)")
			return nil
		}
		var err error
		if backupPath, err = config.BackupFile(configPath); err != nil {
			return fmt.Errorf("failed to backup config: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(configPath, []byte(configs.ConfigTemplate), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	out.Success("Created user configuration")
	out.Statusf("📁", "Location: %s", configPath)
	if backupPath != "" {
		out.Statusf("💾", "Backup: %s", backupPath)
	}
	out.Newline()
	out.Status("📋", "Next steps:")
	out.Status("", "  1. Set knowledge.dir to your documents folder")
	out.Status("", "  2. Export SHOPIFY_STORE_NAME and SHOPIFY_ACCESS_TOKEN for order lookup")
	out.Status("", "  3. Run 'storekb config show' to verify")
	out.Status("", "  4. Register the server with your MCP client:")
	out.Code(mcpClientSnippet)
	return nil
}

const mcpClientSnippet = `{
  "mcpServers": {
    "storekb": {"command": "storekb", "args": ["serve"]}
  }
}`

func newConfigShowCmd(g *globalOptions) *cobra.Command {
	var (
		jsonOutput bool
		source     string
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		Long: `Show the configuration after merging all sources. The Shopify access
token is masked.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var cfg *config.Config
			switch source {
			case "merged":
				var err error
				if cfg, err = g.loadConfig(); err != nil {
					return err
				}
			case "defaults":
				cfg = config.NewConfig()
			default:
				return fmt.Errorf("unknown source %q (use merged or defaults)", source)
			}
			return printConfig(cmd, cfg.Redacted(), jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().StringVar(&source, "source", "merged", "Config source: merged, defaults")

	return cmd
}

func printConfig(cmd *cobra.Command, cfg *config.Config, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print user config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), config.GetUserConfigPath())
			return err
		},
	}
}

func newConfigBackupsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backups",
		Short: "List user config backups, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			backups, err := config.ListBackups(config.GetUserConfigPath())
			if err != nil {
				return err
			}
			out := output.New(cmd.OutOrStdout())
			if len(backups) == 0 {
				out.Status("💡", "No backups found")
				return nil
			}
			for _, b := range backups {
				out.Text(b)
			}
			return nil
		},
	}
}

func newConfigRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <backup-file>",
		Short: "Restore the user config from a backup",
		Long:  `Replace the user config with a backup. The current file is backed up first.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath := config.GetUserConfigPath()
			if err := config.RestoreFile(configPath, args[0]); err != nil {
				return err
			}
			out := output.New(cmd.OutOrStdout())
			out.Successf("Restored %s", configPath)
			return nil
		},
	}
}

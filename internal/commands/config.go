package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/diogo/vestry/internal/config"
)

// NewConfigCmd creates the config command and its subcommands
func NewConfigCmd(deps *Dependencies, o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the configuration",
		Long: `Show the effective configuration (defaults, then the config file, then
VESTRY_* environment variables) or write a starter config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(deps, o)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(deps, o)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath(o)
			if err != nil {
				return err
			}
			fmt.Fprintln(deps.Stdout, path)
			return nil
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath(o)
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
				return fmt.Errorf("failed to create config directory: %w", err)
			}
			if err := config.SaveConfigTo(path, config.DefaultConfig()); err != nil {
				return err
			}
			fmt.Fprintf(deps.Stdout, "✓ Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	cmd.AddCommand(initCmd)

	return cmd
}

func configPath(o *rootOptions) (string, error) {
	if o.configPath != "" {
		return o.configPath, nil
	}
	return config.GetConfigPath()
}

// showConfig prints the effective config with secrets masked
func showConfig(deps *Dependencies, o *rootOptions) error {
	cfg, err := loadConfig(o)
	if err != nil {
		return err
	}
	cfg.APIKey = mask(cfg.APIKey)
	cfg.Relay.GatewayAPIKey = mask(cfg.Relay.GatewayAPIKey)

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	fmt.Fprintln(deps.Stdout, string(data))
	return nil
}

// mask hides all but the last four characters of a secret
func mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 4 {
		return "****"
	}
	return "****" + secret[len(secret)-4:]
}

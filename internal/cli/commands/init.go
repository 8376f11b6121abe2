package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hirehub/console/internal/cli/config"
	"github.com/hirehub/console/internal/storage"
)

// NewInitCmd creates the init command
func NewInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init <api-url> [alias]",
		Short: "Add a HireHub API to console.json in the current directory",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			currentDir, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get current directory: %w", err)
			}

			alias := ""
			if len(args) > 1 {
				alias = args[1]
			}
			return runInit(cmd.OutOrStdout(), currentDir, args[0], alias)
		},
	}
}

func runInit(out io.Writer, dir, apiURL, alias string) error {
	if _, err := storage.Origin(apiURL); err != nil {
		return err
	}

	configPath := filepath.Join(dir, config.ConfigFileName)

	cfg := &config.Config{}
	if _, err := os.Stat(configPath); err == nil {
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load existing config: %w", err)
		}
		fmt.Fprintf(out, "Found existing %s\n", config.ConfigFileName)
	}

	if !cfg.Add(apiURL, alias) {
		fmt.Fprintf(out, "%s is already listed in %s\n", apiURL, config.ConfigFileName)
		return nil
	}

	if err := config.Save(configPath, cfg); err != nil {
		return err
	}

	added := cfg.Origins[len(cfg.Origins)-1]
	fmt.Fprintf(out, "✓ Added %s to %s\n", added.Label(), configPath)
	fmt.Fprintln(out, "\nNext: console login --email <you@example.com>")
	return nil
}

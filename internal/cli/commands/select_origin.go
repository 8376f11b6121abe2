package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/hirehub/console/internal/cli/config"
	"github.com/hirehub/console/internal/cli/originselect"
	"github.com/hirehub/console/internal/cli/userconfig"
)

// NewSelectOriginCmd creates the select-origin command
func NewSelectOriginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "select-origin [url-or-alias]",
		Short: "Select the API origin to use for commands",
		Long: `Select the API origin to use for commands.

If no param is provided, an interactive prompt will be shown.

Examples:
  $ console select-origin                               # Interactive selection
  $ console select-origin https://api.example.com/api  # Select by URL
  $ console select-origin production                    # Select by alias`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var urlOrAlias string
			if len(args) > 0 {
				urlOrAlias = args[0]
			}
			return runSelectOrigin(cmd.OutOrStdout(), urlOrAlias)
		},
	}

	return cmd
}

func runSelectOrigin(out io.Writer, urlOrAlias string) error {
	cfg, err := config.LoadFromCurrentDir()
	if err != nil {
		return fmt.Errorf("failed to load config: %w\nRun 'console init <api-url>' to create a configuration file", err)
	}

	var origin *config.Origin
	if urlOrAlias != "" {
		origin, err = cfg.Find(urlOrAlias)
	} else {
		origin, err = originselect.PromptOriginSelection(cfg)
	}
	if err != nil {
		return err
	}

	if err := userconfig.SelectOrigin(cfg.Path, origin.URL); err != nil {
		return fmt.Errorf("failed to save selected origin: %w", err)
	}

	fmt.Fprintf(out, "Selected origin: %s\n", origin.Label())
	return nil
}

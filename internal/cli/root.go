package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hirehub/console/internal/cli/commands"
)

var version = "dev" // Will be set during build

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	opts := &commands.Options{}

	rootCmd := &cobra.Command{
		Use:   "console",
		Short: "HireHub Console - administer a HireHub deployment",
		Long: `HireHub Console CLI - log in to a HireHub API and manage users and jobs.

The session is stored per API origin, shared with the console web server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.Origin, "origin", "", "API URL or alias from console.json")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "console version %s\n", version)
		},
	})

	rootCmd.AddCommand(commands.NewInitCmd())
	rootCmd.AddCommand(commands.NewLoginCmd(opts))
	rootCmd.AddCommand(commands.NewLogoutCmd(opts))
	rootCmd.AddCommand(commands.NewStatusCmd(opts))
	rootCmd.AddCommand(commands.NewRefreshCmd(opts))
	rootCmd.AddCommand(commands.NewUsersCmd(opts))
	rootCmd.AddCommand(commands.NewJobsCmd(opts))
	rootCmd.AddCommand(commands.NewSelectOriginCmd())
	rootCmd.AddCommand(commands.NewDashCmd(opts))

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

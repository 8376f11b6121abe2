package commands

import (
	"fmt"
	"io"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"
)

// NewDashCmd creates the dash command
func NewDashCmd(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dash",
		Short: "Open the console web server in a browser",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			return runDash(cmd.OutOrStdout(), cfg.ConsoleURL(), openBrowser)
		},
	}

	return cmd
}

func runDash(out io.Writer, dashboardURL string, open func(string) error) error {
	fmt.Fprintf(out, "Opening console at %s\n", dashboardURL)

	if err := open(dashboardURL); err != nil {
		return fmt.Errorf("failed to open browser: %w\nPlease visit: %s", err, dashboardURL)
	}

	return nil
}

// openBrowser opens the URL in the default browser
func openBrowser(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}

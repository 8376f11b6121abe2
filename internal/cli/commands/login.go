package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/hirehub/console/internal/console"
)

// NewLoginCmd creates the login command
func NewLoginCmd(opts *Options) *cobra.Command {
	var email, password string
	var admin bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with the HireHub API",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, secret, err := resolveCredentials(email, password)
			if err != nil {
				return err
			}

			c, err := openConsole(opts)
			if err != nil {
				return err
			}
			defer c.Close()

			return runLogin(cmd.Context(), c, cmd.OutOrStdout(), user, secret, admin)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (or set CONSOLE_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set CONSOLE_PASSWORD, will prompt if not provided)")
	cmd.Flags().BoolVar(&admin, "admin", false, "Log in through the administrator endpoint")

	return cmd
}

// resolveCredentials fills in missing values from the environment and, for the
// password, an interactive prompt
func resolveCredentials(email, password string) (string, string, error) {
	// Check for environment variables (useful for CI/CD)
	if email == "" {
		email = os.Getenv("CONSOLE_EMAIL")
	}
	if password == "" {
		password = os.Getenv("CONSOLE_PASSWORD")
	}

	if email == "" {
		return "", "", fmt.Errorf("email is required (use --email flag or CONSOLE_EMAIL env var)")
	}

	if password == "" {
		// Check if stdin is a terminal (not piped)
		if !term.IsTerminal(int(syscall.Stdin)) {
			return "", "", fmt.Errorf("password is required in non-interactive mode (use --password flag or CONSOLE_PASSWORD env var)")
		}

		fmt.Fprint(os.Stderr, "Password: ")
		bytePassword, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", "", fmt.Errorf("failed to read password: %w", err)
		}
		password = string(bytePassword)
	}

	return email, password, nil
}

func runLogin(ctx context.Context, c *console.Console, out io.Writer, email, password string, admin bool) error {
	fmt.Fprintf(out, "Logging in to %s...\n", c.API.BaseURL())

	login := c.Session.Login
	if admin {
		login = c.Session.LoginAdmin
	}

	result := login(ctx, email, password)
	if !result.Success {
		return fmt.Errorf("login failed: %s", result.Error)
	}

	state := c.Session.Snapshot()
	fmt.Fprintln(out, "✓ Login successful!")
	fmt.Fprintf(out, "  User: %s (id %s)\n", state.UserEmail, state.UserID)
	if state.IsAdmin {
		fmt.Fprintln(out, "  Role: Admin")
	}

	return nil
}

package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/hirehub/console/internal/console"
)

// NewLogoutCmd creates the logout command
func NewLogoutCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and forget stored tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openConsole(opts)
			if err != nil {
				return err
			}
			defer c.Close()

			return runLogout(cmd.Context(), c, cmd.OutOrStdout())
		},
	}
}

func runLogout(ctx context.Context, c *console.Console, out io.Writer) error {
	c.Session.Logout(ctx)
	fmt.Fprintf(out, "Logged out of %s\n", c.Origin)
	return nil
}

// NewStatusCmd creates the status command
func NewStatusCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Verify the stored session and show who is logged in",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openConsole(opts)
			if err != nil {
				return err
			}
			defer c.Close()

			return runStatus(cmd.Context(), c, cmd.OutOrStdout())
		},
	}
}

func runStatus(ctx context.Context, c *console.Console, out io.Writer) error {
	c.Session.Verify(ctx)
	state := c.Session.Snapshot()

	fmt.Fprintf(out, "Origin: %s\n", c.Origin)
	if !state.IsAuthenticated {
		fmt.Fprintln(out, "Status: not logged in")
		return nil
	}

	fmt.Fprintln(out, "Status: logged in")
	fmt.Fprintf(out, "  User: %s\n", state.UserEmail)
	if state.UserID != "" {
		fmt.Fprintf(out, "  ID:   %s\n", state.UserID)
	}
	if state.IsAdmin {
		fmt.Fprintln(out, "  Role: Admin")
	}
	if state.ExpiresAt != nil {
		fmt.Fprintf(out, "  Token expires: %s (in %s)\n",
			state.ExpiresAt.Local().Format(time.RFC3339),
			time.Until(*state.ExpiresAt).Round(time.Second))
	}
	return nil
}

// NewRefreshCmd creates the refresh command
func NewRefreshCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Exchange the refresh token for a new token pair",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openConsole(opts)
			if err != nil {
				return err
			}
			defer c.Close()

			return runRefresh(cmd.Context(), c, cmd.OutOrStdout())
		},
	}
}

func runRefresh(ctx context.Context, c *console.Console, out io.Writer) error {
	if err := requireSession(c); err != nil {
		return err
	}

	if !c.Session.RefreshToken(ctx) {
		return fmt.Errorf("token refresh failed; the session has been cleared. Please run 'console login' again")
	}

	fmt.Fprintln(out, "✓ Tokens refreshed")
	if expiresAt := c.Session.Snapshot().ExpiresAt; expiresAt != nil {
		fmt.Fprintf(out, "  Expires: %s\n", expiresAt.Local().Format(time.RFC3339))
	}
	return nil
}

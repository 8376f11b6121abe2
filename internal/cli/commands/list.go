package commands

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/hirehub/console/internal/console"
)

// NewUsersCmd creates the users command and its role subcommands
func NewUsersCmd(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List registered users",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openConsole(opts)
			if err != nil {
				return err
			}
			defer c.Close()

			return runUsers(cmd.Context(), c, cmd.OutOrStdout())
		},
	}

	cmd.AddCommand(newSetAdminCmd(opts, "grant", "Grant admin capability to a user", true))
	cmd.AddCommand(newSetAdminCmd(opts, "revoke", "Revoke admin capability from a user", false))

	return cmd
}

func newSetAdminCmd(opts *Options, use, short string, grant bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <user-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openConsole(opts)
			if err != nil {
				return err
			}
			defer c.Close()

			return runSetAdmin(cmd.Context(), c, cmd.OutOrStdout(), args[0], grant)
		},
	}
}

func runUsers(ctx context.Context, c *console.Console, out io.Writer) error {
	if err := requireSession(c); err != nil {
		return err
	}

	users, err := c.API.ListUsers(ctx)
	if err != nil {
		return commandError(err)
	}

	if len(users) == 0 {
		fmt.Fprintln(out, "No users found.")
		return nil
	}

	fmt.Fprintf(out, "Users on %s:\n\n", c.Origin)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tEMAIL\tROLE\tSTATUS\tLAST SEEN")
	fmt.Fprintln(w, "──\t─────\t────\t──────\t─────────")

	for _, user := range users {
		role := "user"
		if user.IsAdmin {
			role = "admin"
		}
		status := "offline"
		if user.IsOnline {
			status = "online"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			user.ID,
			user.Email,
			role,
			status,
			formatTime(user.LastSeen),
		)
	}

	return w.Flush()
}

func runSetAdmin(ctx context.Context, c *console.Console, out io.Writer, userID string, grant bool) error {
	if err := requireSession(c); err != nil {
		return err
	}

	if grant {
		if err := c.API.MakeAdmin(ctx, userID); err != nil {
			return commandError(err)
		}
		fmt.Fprintf(out, "✓ User %s is now an admin\n", userID)
		return nil
	}

	if err := c.API.RemoveAdmin(ctx, userID); err != nil {
		return commandError(err)
	}
	fmt.Fprintf(out, "✓ User %s is no longer an admin\n", userID)
	return nil
}

// NewJobsCmd creates the jobs command and its analytics subcommand
func NewJobsCmd(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "List all job postings",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openConsole(opts)
			if err != nil {
				return err
			}
			defer c.Close()

			return runJobs(cmd.Context(), c, cmd.OutOrStdout())
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "analytics <job-id>",
		Short: "Show clicks, applications, and conversion rate for a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openConsole(opts)
			if err != nil {
				return err
			}
			defer c.Close()

			return runJobAnalytics(cmd.Context(), c, cmd.OutOrStdout(), args[0])
		},
	})

	return cmd
}

func runJobs(ctx context.Context, c *console.Console, out io.Writer) error {
	if err := requireSession(c); err != nil {
		return err
	}

	jobs, err := c.API.ListAdminJobs(ctx)
	if err != nil {
		return commandError(err)
	}

	if len(jobs) == 0 {
		fmt.Fprintln(out, "No jobs found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tCOMPANY\tSTATUS\tCLICKS\tAPPLICATIONS")
	fmt.Fprintln(w, "──\t─────\t───────\t──────\t──────\t────────────")

	for _, job := range jobs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\n",
			job.ID,
			job.Title,
			job.CompanyName,
			job.Status,
			job.TotalClicks,
			job.TotalApplications,
		)
	}

	return w.Flush()
}

func runJobAnalytics(ctx context.Context, c *console.Console, out io.Writer, jobID string) error {
	if err := requireSession(c); err != nil {
		return err
	}

	analytics, err := c.API.JobAnalytics(ctx, jobID)
	if err != nil {
		return commandError(err)
	}

	fmt.Fprintf(out, "Job %s analytics:\n\n", jobID)
	fmt.Fprintf(out, "  Total clicks:       %d\n", analytics.TotalClicks)
	fmt.Fprintf(out, "  Total applications: %d\n", analytics.TotalApplications)
	fmt.Fprintf(out, "  Conversion rate:    %.1f%%\n", analytics.ConversionRate())

	if len(analytics.StatusBreakdown) == 0 {
		return nil
	}

	fmt.Fprintln(out)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STATUS\tCOUNT")
	fmt.Fprintln(w, "──────\t─────")
	for _, status := range analytics.StatusBreakdown {
		fmt.Fprintf(w, "%s\t%d\n", status.Status, status.Count)
	}
	return w.Flush()
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// DashboardStats returns the counters shown on the dashboard
func (c *Client) DashboardStats(ctx context.Context) (*StatsResponse, error) {
	var resp StatsResponse
	if err := c.get(ctx, "/dashboard/stats", &resp, &resp.StatusResponse); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListUsers returns all registered users
func (c *Client) ListUsers(ctx context.Context) ([]UserSummary, error) {
	var resp UsersResponse
	if err := c.get(ctx, "/dashboard/users", &resp, &resp.StatusResponse); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

// ListAdminJobs returns every job posting, including drafts and closed ones
func (c *Client) ListAdminJobs(ctx context.Context) ([]Job, error) {
	var resp JobsResponse
	if err := c.get(ctx, "/jobs/admin/all", &resp, &resp.StatusResponse); err != nil {
		return nil, err
	}
	return resp.Jobs, nil
}

// JobAnalytics returns click and application totals and trends for one job
func (c *Client) JobAnalytics(ctx context.Context, jobID string) (*JobAnalytics, error) {
	var resp JobAnalyticsResponse
	if err := c.get(ctx, "/jobs/"+url.PathEscape(jobID)+"/analytics", &resp, &resp.StatusResponse); err != nil {
		return nil, err
	}
	return &resp.Analytics, nil
}

// ListModules returns uploaded content
func (c *Client) ListModules(ctx context.Context) ([]Module, error) {
	var resp ModulesResponse
	if err := c.get(ctx, "/modules", &resp, &resp.StatusResponse); err != nil {
		return nil, err
	}
	return resp.Modules, nil
}

// get performs an authenticated GET and turns {success:false} into an *Error
func (c *Client) get(ctx context.Context, path string, out any, status *StatusResponse) error {
	if err := c.do(ctx, call{
		method: http.MethodGet,
		path:   path,
		auth:   true,
	}, out); err != nil {
		return err
	}

	if !status.Success {
		return &Error{
			Status:  http.StatusOK,
			Message: firstNonEmpty(status.Error, status.Message, fmt.Sprintf("GET %s failed", path)),
		}
	}
	return nil
}

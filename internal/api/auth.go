package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// AdminLogin authenticates against the admin endpoint
func (c *Client) AdminLogin(ctx context.Context, email, password string) (*AuthResponse, error) {
	return c.login(ctx, "/auth/admin/login", email, password)
}

// Login authenticates a regular user
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	return c.login(ctx, "/auth/login", email, password)
}

func (c *Client) login(ctx context.Context, path, email, password string) (*AuthResponse, error) {
	var resp AuthResponse
	err := c.do(ctx, call{
		method: http.MethodPost,
		path:   path,
		body:   LoginRequest{Email: email, Password: password},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout tells the service to end the current session
func (c *Client) Logout(ctx context.Context) error {
	var resp StatusResponse
	return c.do(ctx, call{
		method:    http.MethodPost,
		path:      "/auth/logout",
		body:      struct{}{},
		auth:      true,
		lifecycle: true,
	}, &resp)
}

// Verify checks the current access token and returns the identity it carries
func (c *Client) Verify(ctx context.Context) (*AuthResponse, error) {
	var resp AuthResponse
	err := c.do(ctx, call{
		method:    http.MethodGet,
		path:      "/auth/verify",
		auth:      true,
		lifecycle: true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Refresh exchanges refreshToken for a new token pair
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	var resp AuthResponse
	err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/auth/refresh",
		body:   RefreshRequest{RefreshToken: refreshToken},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateStatus is the presence heartbeat
func (c *Client) UpdateStatus(ctx context.Context) error {
	var resp StatusResponse
	if err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/auth/update-status",
		body:   struct{}{},
		auth:   true,
	}, &resp); err != nil {
		return err
	}

	if !resp.Success {
		return fmt.Errorf("status update rejected: %s", firstNonEmpty(resp.Error, resp.Message, "unknown error"))
	}
	return nil
}

// CurrentUser returns the identity behind the current access token
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var resp AuthResponse
	if err := c.do(ctx, call{
		method: http.MethodGet,
		path:   "/auth/current-user",
		auth:   true,
	}, &resp); err != nil {
		return nil, err
	}

	if !resp.Success || resp.User == nil {
		return nil, fmt.Errorf("failed to get current user: %s", firstNonEmpty(resp.Error, resp.Message, "no user returned"))
	}
	return resp.User, nil
}

// MakeAdmin grants admin capability to a user
func (c *Client) MakeAdmin(ctx context.Context, userID string) error {
	return c.setAdmin(ctx, "/auth/make-admin/", userID)
}

// RemoveAdmin revokes admin capability from a user
func (c *Client) RemoveAdmin(ctx context.Context, userID string) error {
	return c.setAdmin(ctx, "/auth/remove-admin/", userID)
}

func (c *Client) setAdmin(ctx context.Context, prefix, userID string) error {
	var resp StatusResponse
	if err := c.do(ctx, call{
		method: http.MethodPost,
		path:   prefix + url.PathEscape(userID),
		body:   struct{}{},
		auth:   true,
	}, &resp); err != nil {
		return err
	}

	if !resp.Success {
		return fmt.Errorf("failed to update admin role: %s", firstNonEmpty(resp.Error, resp.Message, "unknown error"))
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

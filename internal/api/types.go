package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// ID is a resource identifier that the service may encode as a JSON number
// or a JSON string
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid id %s: %w", string(data), err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string {
	return string(id)
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest represents the token refresh request body
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Tokens is the access/refresh token pair issued by the service
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// User is the identity returned by login and verify
type User struct {
	ID      ID     `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	IsAdmin bool   `json:"is_admin"`
}

// AuthResponse is the envelope shared by login, verify, and refresh
type AuthResponse struct {
	Success bool    `json:"success"`
	Error   string  `json:"error,omitempty"`
	Message string  `json:"message,omitempty"`
	Tokens  *Tokens `json:"tokens,omitempty"`
	User    *User   `json:"user,omitempty"`
}

// StatusResponse is the bare {success} envelope
type StatusResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// Stats holds the dashboard counters computed by the service
type Stats struct {
	TotalUsers         int `json:"totalUsers"`
	RecentUsers        int `json:"recentUsers"`
	OnlineUsers        int `json:"onlineUsers"`
	OfflineUsers       int `json:"offlineUsers"`
	TotalMessages      int `json:"totalMessages"`
	RecentMessages     int `json:"recentMessages"`
	TotalConversations int `json:"totalConversations"`
}

// StatsResponse is returned by GET /dashboard/stats
type StatsResponse struct {
	StatusResponse
	Stats  Stats           `json:"stats"`
	Charts json.RawMessage `json:"charts,omitempty"`
}

// UserSummary is one row of the users listing
type UserSummary struct {
	ID        ID         `json:"id"`
	Email     string     `json:"email"`
	IsAdmin   bool       `json:"is_admin"`
	IsOnline  bool       `json:"is_online"`
	LastSeen  *time.Time `json:"last_seen,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// UsersResponse is returned by GET /dashboard/users
type UsersResponse struct {
	StatusResponse
	Users []UserSummary `json:"users"`
}

// Job is one job posting
type Job struct {
	ID                ID     `json:"id"`
	Title             string `json:"title"`
	CompanyName       string `json:"company_name"`
	Location          string `json:"location"`
	JobType           string `json:"job_type"`
	SalaryRange       string `json:"salary_range"`
	Status            string `json:"status"`
	TotalClicks       int    `json:"total_clicks"`
	TotalApplications int    `json:"total_applications"`
}

// JobsResponse is returned by GET /jobs/admin/all
type JobsResponse struct {
	StatusResponse
	Jobs []Job `json:"jobs"`
}

// ClicksPoint is one day of the clicks trend
type ClicksPoint struct {
	Date   string `json:"date"`
	Clicks int    `json:"clicks"`
}

// ApplicationsPoint is one day of the applications trend
type ApplicationsPoint struct {
	Date         string `json:"date"`
	Applications int    `json:"applications"`
}

// StatusCount is the number of applications in one status
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// JobAnalytics holds the engagement numbers for one job posting
type JobAnalytics struct {
	TotalClicks       int                 `json:"totalClicks"`
	TotalApplications int                 `json:"totalApplications"`
	ClicksTrend       []ClicksPoint       `json:"clicksTrend"`
	ApplicationsTrend []ApplicationsPoint `json:"applicationsTrend"`
	StatusBreakdown   []StatusCount       `json:"statusBreakdown"`
}

// ConversionRate is applications per click as a percentage, or 0 when the
// job has never been clicked
func (a JobAnalytics) ConversionRate() float64 {
	if a.TotalClicks <= 0 {
		return 0
	}
	return float64(a.TotalApplications) / float64(a.TotalClicks) * 100
}

// JobAnalyticsResponse is returned by GET /jobs/{id}/analytics
type JobAnalyticsResponse struct {
	StatusResponse
	Analytics JobAnalytics `json:"analytics"`
}

// Module is one uploaded content item
type Module struct {
	ID        ID         `json:"id"`
	Title     string     `json:"title"`
	FileName  string     `json:"file_name"`
	FileType  string     `json:"file_type"`
	FileSize  int64      `json:"file_size"`
	PublicURL string     `json:"public_url"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// ModulesResponse is returned by GET /modules
type ModulesResponse struct {
	StatusResponse
	Modules []Module `json:"modules"`
}

package server

import (
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/hirehub/console/internal/api"
	"github.com/hirehub/console/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"formatTime": formatTime,
	"humanBytes": humanBytes,
}

func loadTemplates() (*template.Template, error) {
	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return tmpl, nil
}

// pageData is shared by every screen
type pageData struct {
	Title   string
	Active  string
	State   session.State
	Error   string
	Version string
}

type loginData struct {
	pageData
	Email string
	Admin bool
}

type dashboardData struct {
	pageData
	Stats *api.Stats
}

type usersData struct {
	pageData
	Users []api.UserSummary
}

type jobsData struct {
	pageData
	Jobs []api.Job
}

type jobAnalyticsData struct {
	pageData
	Jobs       []api.Job
	SelectedID string
	Selected   *api.Job
	Analytics  *api.JobAnalytics
}

type modulesData struct {
	pageData
	Modules []api.Module
}

type settingsData struct {
	pageData
	Origin      string
	APIBaseURL  string
	CurrentUser *api.User
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}

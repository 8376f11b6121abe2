package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hirehub/console/internal/api"
	"github.com/hirehub/console/internal/gate"
)

// remoteError turns a failed API call into either a redirect (the session was
// invalidated) or an inline message. It reports whether the response has
// already been written.
func (s *Server) remoteError(c *gin.Context, err error, action string) (string, bool) {
	if err == nil {
		return "", false
	}

	if errors.Is(err, api.ErrUnauthorized) {
		c.Redirect(http.StatusSeeOther, gate.LoginPath)
		return "", true
	}

	s.logger.Warn().
		Err(err).
		Str("request_id", c.GetString(requestIDKey)).
		Msg("Failed to " + action)

	if msg := api.Message(err); msg != "" {
		return msg, false
	}
	if errors.Is(err, api.ErrTransport) {
		return "Connection error. Please try again.", false
	}
	return "Failed to " + action, false
}

func (s *Server) dashboard(c *gin.Context) {
	resp, err := s.console.API.DashboardStats(c.Request.Context())
	msg, done := s.remoteError(c, err, "load dashboard statistics")
	if done {
		return
	}

	data := dashboardData{pageData: s.page(c, "Dashboard", msg)}
	if resp != nil {
		data.Stats = &resp.Stats
	}
	c.HTML(http.StatusOK, "dashboard.html", data)
}

func (s *Server) users(c *gin.Context) {
	users, err := s.console.API.ListUsers(c.Request.Context())
	msg, done := s.remoteError(c, err, "load users")
	if done {
		return
	}

	c.HTML(http.StatusOK, "users.html", usersData{
		pageData: s.page(c, "Users", msg),
		Users:    users,
	})
}

// setUserAdmin grants or revokes admin capability. The service decides
// whether the caller may do so.
func (s *Server) setUserAdmin(c *gin.Context) {
	id := c.Param("id")
	ctx := c.Request.Context()

	var err error
	switch c.PostForm("action") {
	case "grant":
		err = s.console.API.MakeAdmin(ctx, id)
	case "revoke":
		err = s.console.API.RemoveAdmin(ctx, id)
	default:
		c.HTML(http.StatusBadRequest, "users.html", usersData{
			pageData: s.page(c, "Users", "Unknown action"),
		})
		return
	}

	msg, done := s.remoteError(c, err, "update admin role")
	if done {
		return
	}
	if msg != "" {
		users, listErr := s.console.API.ListUsers(ctx)
		if _, done := s.remoteError(c, listErr, "load users"); done {
			return
		}
		c.HTML(http.StatusOK, "users.html", usersData{
			pageData: s.page(c, "Users", msg),
			Users:    users,
		})
		return
	}

	s.logger.Info().
		Str("user_id", id).
		Str("action", c.PostForm("action")).
		Msg("Admin role updated")

	c.Redirect(http.StatusSeeOther, "/users")
}

func (s *Server) jobs(c *gin.Context) {
	jobs, err := s.console.API.ListAdminJobs(c.Request.Context())
	msg, done := s.remoteError(c, err, "load jobs")
	if done {
		return
	}

	c.HTML(http.StatusOK, "jobs.html", jobsData{
		pageData: s.page(c, "Jobs", msg),
		Jobs:     jobs,
	})
}

// noJobsMessage is shown on the analytics screen before any job exists
const noJobsMessage = "No jobs found. Please create a job inquiry first."

// jobAnalytics shows the engagement numbers of the job picked with ?job=,
// defaulting to the first listed job
func (s *Server) jobAnalytics(c *gin.Context) {
	ctx := c.Request.Context()

	jobs, err := s.console.API.ListAdminJobs(ctx)
	msg, done := s.remoteError(c, err, "load jobs")
	if done {
		return
	}

	data := jobAnalyticsData{Jobs: jobs}
	if msg == "" && len(jobs) == 0 {
		msg = noJobsMessage
	}
	if msg != "" {
		data.pageData = s.page(c, "Job Analytics", msg)
		c.HTML(http.StatusOK, "job_analytics.html", data)
		return
	}

	data.SelectedID = c.Query("job")
	if data.SelectedID == "" {
		data.SelectedID = jobs[0].ID.String()
	}
	for i := range jobs {
		if jobs[i].ID.String() == data.SelectedID {
			data.Selected = &jobs[i]
			break
		}
	}

	analytics, err := s.console.API.JobAnalytics(ctx, data.SelectedID)
	msg, done = s.remoteError(c, err, "load analytics")
	if done {
		return
	}

	data.pageData = s.page(c, "Job Analytics", msg)
	data.Analytics = analytics
	c.HTML(http.StatusOK, "job_analytics.html", data)
}

func (s *Server) modules(c *gin.Context) {
	modules, err := s.console.API.ListModules(c.Request.Context())
	msg, done := s.remoteError(c, err, "load modules")
	if done {
		return
	}

	c.HTML(http.StatusOK, "modules.html", modulesData{
		pageData: s.page(c, "Modules", msg),
		Modules:  modules,
	})
}

func (s *Server) settings(c *gin.Context) {
	user, err := s.console.API.CurrentUser(c.Request.Context())
	msg, done := s.remoteError(c, err, "load current user")
	if done {
		return
	}

	c.HTML(http.StatusOK, "settings.html", settingsData{
		pageData:    s.page(c, "Settings", msg),
		Origin:      s.console.Origin,
		APIBaseURL:  s.console.API.BaseURL(),
		CurrentUser: user,
	})
}

package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hirehub/console/internal/gate"
)

// LoginForm is the login form body
type LoginForm struct {
	Email    string `form:"email"`
	Password string `form:"password"`
	Admin    string `form:"admin"`
}

func (s *Server) showLogin(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", loginData{
		pageData: s.page(c, "Login", ""),
	})
}

// login authenticates against the service. Credential rejections re-render
// the form with the session's last error.
func (s *Server) login(c *gin.Context) {
	var form LoginForm
	if err := c.ShouldBind(&form); err != nil {
		c.HTML(http.StatusBadRequest, "login.html", loginData{
			pageData: s.page(c, "Login", "Invalid login form"),
		})
		return
	}

	email := strings.TrimSpace(form.Email)
	admin := form.Admin == "on" || form.Admin == "true"

	ctx := c.Request.Context()
	login := s.session.Login
	if admin {
		login = s.session.LoginAdmin
	}
	result := login(ctx, email, form.Password)

	if !result.Success {
		s.logger.Info().
			Str("email", email).
			Bool("admin", admin).
			Str("error", result.Error).
			Msg("Login rejected")

		page := s.page(c, "Login", "")
		page.State = s.session.Snapshot()
		page.Error = page.State.LastError

		c.HTML(http.StatusOK, "login.html", loginData{
			pageData: page,
			Email:    email,
			Admin:    admin,
		})
		return
	}

	c.Redirect(http.StatusSeeOther, gate.DefaultPath)
}

func (s *Server) logout(c *gin.Context) {
	s.session.Logout(c.Request.Context())
	s.heartbeat.Stop()
	c.Redirect(http.StatusSeeOther, gate.LoginPath)
}

// sessionState exposes the session without its tokens
func (s *Server) sessionState(c *gin.Context) {
	c.JSON(http.StatusOK, s.session.Snapshot())
}

// page builds the shared template data from the snapshot the gate decided on
func (s *Server) page(c *gin.Context, title, errMsg string) pageData {
	return pageData{
		Title:   title,
		Active:  strings.ToLower(title),
		State:   stateFrom(c),
		Error:   errMsg,
		Version: s.version,
	}
}

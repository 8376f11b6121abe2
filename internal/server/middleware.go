package server

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"

	"github.com/hirehub/console/internal/gate"
	"github.com/hirehub/console/internal/session"
	"github.com/hirehub/console/internal/storage"
)

const (
	requestIDHeader = "X-Request-Id"
	requestIDKey    = "request_id"
	stateKey        = "session_state"
)

// requestIDMiddleware tags every request with a ULID, reusing an incoming one
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = ulid.Make().String()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// loggingMiddleware creates a custom logging middleware using zerolog
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start)

		s.logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Str("request_id", c.GetString(requestIDKey)).
			Msg("HTTP request")
	}
}

// sameOriginMiddleware rejects state-changing requests a browser sent from
// another site. It runs whatever the CORS settings are: every screen acts
// with the console's own stored token, so an allowed CORS origin is still a
// foreign site here. Requests carrying neither Sec-Fetch-Site nor Origin
// come from non-browser clients and pass.
func (s *Server) sameOriginMiddleware() gin.HandlerFunc {
	// An unparsable public URL leaves only the request's own host acceptable
	consoleOrigin, _ := storage.Origin(s.console.Config.ConsoleURL())

	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		if !sameOrigin(c.Request, consoleOrigin) {
			s.logger.Warn().
				Str("method", c.Request.Method).
				Str("path", c.Request.URL.Path).
				Str("origin", c.GetHeader("Origin")).
				Str("fetch_site", c.GetHeader("Sec-Fetch-Site")).
				Str("request_id", c.GetString(requestIDKey)).
				Msg("Rejected cross-origin request")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Cross-origin request rejected"})
			return
		}

		c.Next()
	}
}

func sameOrigin(r *http.Request, consoleOrigin string) bool {
	switch r.Header.Get("Sec-Fetch-Site") {
	case "same-origin", "none":
		return true
	case "":
	default:
		return false
	}

	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if consoleOrigin != "" && strings.EqualFold(origin, consoleOrigin) {
		return true
	}

	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

// gateMiddleware applies the route gate to the current session state. The
// snapshot it decided on is stored for the handler so one request never
// observes two different states.
func (s *Server) gateMiddleware(protected bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		state := s.session.Snapshot()

		decision := gate.Decide(
			gate.Status{IsAuthenticated: state.IsAuthenticated, IsLoading: state.IsLoading},
			gate.Route{Path: c.FullPath(), Protected: protected},
		)

		switch decision.Outcome {
		case gate.Loading:
			c.Header("Refresh", "1")
			c.Header("Cache-Control", "no-store")
			c.HTML(http.StatusOK, "loading.html", pageData{Title: "Loading"})
			c.Abort()
			return

		case gate.Redirect:
			c.Redirect(http.StatusSeeOther, decision.Location)
			c.Abort()
			return
		}

		if protected {
			s.heartbeat.Start()
		}

		c.Set(stateKey, state)
		c.Next()
	}
}

func stateFrom(c *gin.Context) session.State {
	if v, ok := c.Get(stateKey); ok {
		if state, ok := v.(session.State); ok {
			return state
		}
	}
	return session.State{}
}

func (s *Server) redirectToDefault(c *gin.Context) {
	c.Redirect(http.StatusSeeOther, gate.DefaultPath)
}

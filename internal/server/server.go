// Package server is the console's web front end. Every screen is rendered
// server-side from data fetched through the shared API client; the gate
// middleware decides per request whether a screen renders, redirects, or
// shows the loading placeholder.
package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/hirehub/console/internal/console"
	"github.com/hirehub/console/internal/heartbeat"
	"github.com/hirehub/console/internal/session"
)

// Server represents the HTTP server
type Server struct {
	router    *gin.Engine
	console   *console.Console
	session   *session.Store
	heartbeat *heartbeat.Heartbeat
	logger    zerolog.Logger
	version   string

	verifyOnce  sync.Once
	verified    chan struct{}
	unsubscribe func()
}

// New creates a new server instance and starts verifying the stored session
// in the background
func New(c *console.Console, zlog zerolog.Logger, version string) (*Server, error) {
	s := &Server{
		console:   c,
		session:   c.Session,
		heartbeat: heartbeat.New(c.API, c.Config.Heartbeat.Interval, zlog),
		logger:    zlog,
		version:   version,
		verified:  make(chan struct{}),
	}

	s.unsubscribe = s.session.Subscribe(func(state session.State) {
		if !state.IsAuthenticated {
			// The beat itself may be what ended the session, so never wait on it
			s.heartbeat.Cancel()
		}
	})

	if err := s.setupRouter(); err != nil {
		return nil, err
	}

	s.verify()

	return s, nil
}

// verify runs the startup verification exactly once
func (s *Server) verify() {
	s.verifyOnce.Do(func() {
		go func() {
			defer close(s.verified)
			ctx, cancel := context.WithTimeout(context.Background(), s.console.Config.API.Timeout)
			defer cancel()
			s.session.Verify(ctx)
		}()
	})
}

// Verified is closed once startup verification has finished
func (s *Server) Verified() <-chan struct{} {
	return s.verified
}

// Handler exposes the router
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRouter configures the Gin router with routes and middleware
func (s *Server) setupRouter() error {
	gin.SetMode(gin.ReleaseMode)

	s.router = gin.New()

	tmpl, err := loadTemplates()
	if err != nil {
		return err
	}
	s.router.SetHTMLTemplate(tmpl)

	// Add middleware
	s.router.Use(gin.Recovery())
	s.router.Use(requestIDMiddleware())
	s.router.Use(s.loggingMiddleware())
	s.router.Use(s.sameOriginMiddleware())

	if origins := s.console.Config.Server.CORSAllowedOrigins; len(origins) > 0 {
		s.router.Use(cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     []string{"GET", "POST", "HEAD", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type"},
			ExposeHeaders:    []string{"Content-Length", requestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Public endpoints
	s.router.GET("/health", s.healthCheck)
	s.router.GET("/api/session", s.sessionState)

	s.router.GET("/login", s.gateMiddleware(false), s.showLogin)
	s.router.POST("/login", s.gateMiddleware(false), s.login)
	s.router.POST("/logout", s.logout)

	// Protected screens
	screens := s.router.Group("/")
	screens.Use(s.gateMiddleware(true))
	{
		screens.GET("/dashboard", s.dashboard)
		screens.GET("/users", s.users)
		screens.POST("/users/:id/admin", s.setUserAdmin)
		screens.GET("/jobs", s.jobs)
		screens.GET("/jobs/analytics", s.jobAnalytics)
		screens.GET("/modules", s.modules)
		screens.GET("/settings", s.settings)
	}

	s.router.GET("/", s.redirectToDefault)
	s.router.NoRoute(s.redirectToDefault)

	return nil
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "online",
		"timestamp": time.Now().UTC(),
		"service":   "hirehub-console",
		"version":   s.version,
		"origin":    s.console.Origin,
	})
}

// Start starts the HTTP server and blocks until SIGINT or SIGTERM
func (s *Server) Start() error {
	addr := s.console.Config.Server.ListenAddr

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      2 * s.console.Config.API.Timeout,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info().
			Str("addr", addr).
			Str("api", s.console.API.BaseURL()).
			Msg("Starting console server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	// Wait for shutdown signal
	select {
	case <-sigChan:
		s.logger.Info().Msg("Received shutdown signal, shutting down gracefully...")
	case err := <-errChan:
		s.logger.Error().Err(err).Msg("HTTP server error")
		s.shutdown()
		return err
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error().Err(err).Msg("Error shutting down HTTP server")
		s.shutdown()
		return err
	}

	s.shutdown()
	s.logger.Info().Msg("Server shutdown complete")
	return nil
}

// shutdown stops background work and releases storage
func (s *Server) shutdown() {
	s.unsubscribe()
	s.heartbeat.Stop()

	if err := s.console.Close(); err != nil {
		s.logger.Error().Err(err).Msg("Error closing storage")
	}
}

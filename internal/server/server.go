// Package server exposes the research pipeline over a messaging webhook and
// serves the public dashboard of checked videos.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/ppiankov/factcompanion/internal/model"
	"github.com/ppiankov/factcompanion/internal/store"
)

const serviceName = "Caregiver's Fact-Check Companion"

// Researcher runs one research request
type Researcher interface {
	Research(ctx context.Context, rawURL string) (*model.ResearchResult, error)
}

// QueryLog is the anonymized log behind the webhook and dashboard
type QueryLog interface {
	LogResult(ctx context.Context, result *model.ResearchResult) (string, error)
	Recent(ctx context.Context, limit int) ([]store.QueryRecord, error)
	Stats(ctx context.Context) (*store.Stats, error)
}

// Options configures a Server
type Options struct {
	Debug        bool            // Append error detail to apology replies
	DashboardURL string          // Advertised in the welcome message when set
	Services     map[string]bool // Reported by /health
}

// Server handles webhook, dashboard and JSON API routes
type Server struct {
	research Researcher
	queries  QueryLog // nil when logging is disabled
	opts     Options
	engine   *gin.Engine
	dash     *dashboard
}

// New creates a server. queries may be nil.
func New(research Researcher, queries QueryLog, opts Options) (*Server, error) {
	dash, err := newDashboard()
	if err != nil {
		return nil, err
	}

	engine := gin.New()
	engine.Use(gin.Logger(), gin.Recovery())
	engine.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type"},
		ExposeHeaders:   []string{"Content-Length"},
		MaxAge:          12 * time.Hour,
	}))

	s := &Server{
		research: research,
		queries:  queries,
		opts:     opts,
		engine:   engine,
		dash:     dash,
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.engine.GET("/", s.handleRoot)
	s.engine.GET("/health", s.handleHealth)
	s.engine.GET("/dashboard", s.handleDashboard)

	api := s.engine.Group("/api")
	{
		api.POST("/webhook", s.handleWebhook)
		api.GET("/webhook", s.handleWebhookVerify)
		api.GET("/queries", s.handleQueries)
		api.GET("/stats", s.handleStats)
	}
}

// Handler returns the HTTP handler for the server
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server: listening", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":   serviceName,
		"status": "running",
		"endpoints": gin.H{
			"webhook":   "/api/webhook",
			"health":    "/health",
			"dashboard": "/dashboard",
		},
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	services := make(map[string]bool, len(s.opts.Services)+1)
	for name, ok := range s.opts.Services {
		services[name] = ok
	}
	services["query_log"] = s.queries != nil

	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"services": services,
	})
}

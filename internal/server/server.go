// Package server exposes the HTTP API: auth, chat, task CRUD and metrics.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/FanchonSora/V-Assistant/internal/auth"
	"github.com/FanchonSora/V-Assistant/internal/dialogue"
	"github.com/FanchonSora/V-Assistant/internal/logging"
	"github.com/FanchonSora/V-Assistant/internal/task"
)

// Config holds HTTP server settings.
type Config struct {
	Addr           string
	AllowedOrigins []string
	Debug          bool
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

// Deps are the services the API is built on.
type Deps struct {
	Auth     *auth.Service
	Tasks    *task.Service
	Dialogue *dialogue.Engine
	// Metrics, when set, is served at /metrics.
	Metrics prometheus.Gatherer
	Logger  logging.Logger
}

// Server is the HTTP API server.
type Server struct {
	engine     *gin.Engine
	httpServer *http.Server
	deps       Deps
	logger     logging.Logger
}

// New builds the server and registers all routes.
func New(cfg Config, deps Deps) *Server {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 30 * time.Second
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	engine.Use(cors.New(corsConfig))

	s := &Server{
		engine: engine,
		deps:   deps,
		logger: logging.OrNop(deps.Logger),
	}
	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      engine,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.engine.GET("/api/health", s.handleHealth)
	if s.deps.Metrics != nil {
		s.engine.GET("/metrics", gin.WrapH(
			promhttp.HandlerFor(s.deps.Metrics, promhttp.HandlerOpts{})))
	}

	api := s.engine.Group("/api")
	api.POST("/auth/register", s.handleRegister)
	api.POST("/auth/login", s.handleLogin)

	authed := api.Group("")
	authed.Use(s.requireAuth())
	authed.GET("/users/me", s.handleMe)
	authed.POST("/chat", s.handleChat)
	authed.POST("/dsl/parse", s.handleParse)

	tasks := authed.Group("/tasks")
	tasks.GET("", s.handleListTasks)
	tasks.GET("/range", s.handleListRange)
	tasks.POST("", s.handleCreateTask)
	tasks.GET("/:id", s.handleGetTask)
	tasks.PATCH("/:id", s.handleUpdateTask)
	tasks.DELETE("/:id", s.handleDeleteTask)
}

// Handler returns the underlying HTTP handler. Tests drive it directly.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("HTTP server shutting down...")
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

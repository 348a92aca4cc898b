// Package rest exposes the todo service over HTTP using gin. It owns request
// decoding, the authentication middleware, cookie handling and the mapping
// of service errors to status codes.
package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/gotodo/internal/logging"
	"github.com/dmitrijs2005/gotodo/internal/server/config"
	"github.com/dmitrijs2005/gotodo/internal/server/metrics"
	"github.com/dmitrijs2005/gotodo/internal/server/services"
)

type Server struct {
	address         string
	router          *gin.Engine
	users           *services.UserService
	todos           *services.TodoService
	metrics         *metrics.Metrics
	logger          logging.Logger
	secureCookie    bool
	cookieMaxAge    int
	shutdownTimeout time.Duration
}

func NewServer(cfg *config.Config, l logging.Logger, us *services.UserService, ts *services.TodoService, m *metrics.Metrics) *Server {
	gin.SetMode(ginMode(cfg.Mode))

	s := &Server{
		address:         cfg.HTTPAddr,
		router:          gin.New(),
		users:           us,
		todos:           ts,
		metrics:         m,
		logger:          l.With("module", "rest_server"),
		secureCookie:    cfg.IsProduction(),
		cookieMaxAge:    int(cfg.TokenValidityDuration / time.Second),
		shutdownTimeout: cfg.ShutdownTimeout,
	}

	s.router.Use(gin.Recovery())
	s.router.Use(s.requestLogger())
	if len(cfg.CORSAllowedOrigins) > 0 {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
		corsConfig.AllowCredentials = true
		corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", authHeaderName}
		corsConfig.ExposeHeaders = []string{authHeaderName}
		s.router.Use(cors.New(corsConfig))
	}

	s.registerRoutes()
	return s
}

func ginMode(mode string) string {
	switch mode {
	case config.ModeProduction:
		return gin.ReleaseMode
	case config.ModeTest:
		return gin.TestMode
	default:
		return gin.DebugMode
	}
}

func (s *Server) registerRoutes() {
	s.router.GET("/healthz", s.handleHealthz)
	s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	s.router.POST("/users", s.handleSignup)
	s.router.POST("/users/login", s.handleLogin)

	me := s.router.Group("/users/me", s.authenticate())
	{
		me.GET("", s.handleMe)
		me.DELETE("/logout", s.handleLogout)
		me.PATCH("/update", s.handleUpdateDescription)
		me.POST("/friends", s.handleAddFriend)
	}

	read := s.authenticate()
	if s.todos.PublicReads() {
		read = s.optionalAuthenticate()
	}
	s.router.GET("/todos", read, s.handleListTodos)
	s.router.GET("/todos/:id", read, s.handleGetTodo)

	write := s.router.Group("/todos", s.authenticate())
	{
		write.POST("", s.handleCreateTodo)
		write.PATCH("/:id", s.handleUpdateTodo)
		write.DELETE("/:id", s.handleDeleteTodo)
	}
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves HTTP until ctx is cancelled, then drains in-flight requests for
// at most the configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", s.address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Stopping HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}

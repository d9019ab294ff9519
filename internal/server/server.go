// Package server serves the ranked chart and table over HTTP with gin.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"mostviewed/internal/config"
	"mostviewed/internal/logger"
	"mostviewed/internal/models"
	"mostviewed/internal/render"
)

const (
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 30 * time.Second
	defaultIdleTimeout     = 60 * time.Second
	defaultShutdownTimeout = 5 * time.Second
)

// RowSource reads the stored articles. Every call opens its own handle.
type RowSource interface {
	Ranked(ctx context.Context, excluded []string) ([]models.RankedArticle, error)
	Markdown(ctx context.Context, title string) (string, error)
}

// Server is the single-page display. It never writes to the store.
type Server struct {
	source   RowSource
	logger   *logger.Logger
	router   *gin.Engine
	options  render.Options
	reserved []string
	notices  []models.Notice
	addr     string
}

// New builds the router. notices are shown on every page render.
func New(cfg *config.Config, source RowSource, log *logger.Logger, notices []models.Notice) *Server {
	if log == nil {
		log = logger.NewNop()
	}

	if cfg.Server.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		source:   source,
		logger:   log,
		options:  render.OptionsFromConfig(cfg),
		reserved: cfg.Fetch.ReservedTitles,
		notices:  notices,
		addr:     cfg.Server.Addr,
	}

	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())
	s.setupRoutes(router)
	s.router = router

	return s
}

// Handler returns the gin engine.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on the configured address until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.addr,
		Handler:      s.router,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
		IdleTimeout:  defaultIdleTimeout,
	}

	errCh := make(chan error, 1)

	go func() {
		s.logger.Info(fmt.Sprintf("🌐 Serving display on %s", s.addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
		defer cancel()

		s.logger.Info("🛑 Shutting down display server")

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}

		return nil
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		s.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

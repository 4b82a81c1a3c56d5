// Package api serves bookmark libraries over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/xaenox/bookmark-lens/internal/analyzer"
	"github.com/xaenox/bookmark-lens/internal/archive"
	"github.com/xaenox/bookmark-lens/internal/metrics"
	"github.com/xaenox/bookmark-lens/internal/storage"
)

type Options struct {
	Storage         storage.Storage
	Importer        *archive.Importer
	Analyzers       analyzer.Factory
	DefaultProvider string
	MaxUploadBytes  int64
	Metrics         *metrics.Recorder
	Logger          *zap.Logger
}

type Server struct {
	echo            *echo.Echo
	store           storage.Storage
	importer        *archive.Importer
	analyzers       analyzer.Factory
	defaultProvider string
	maxUploadBytes  int64
	logger          *zap.Logger
}

func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	importer := opts.Importer
	if importer == nil {
		importer = archive.NewImporter(logger, archive.WithMetrics(opts.Metrics))
	}

	s := &Server{
		echo:            echo.New(),
		store:           opts.Storage,
		importer:        importer,
		analyzers:       opts.Analyzers,
		defaultProvider: opts.DefaultProvider,
		maxUploadBytes:  opts.MaxUploadBytes,
		logger:          logger,
	}
	s.echo.HideBanner = true
	s.echo.HidePort = true

	s.echo.Use(middleware.Recover())
	s.echo.Use(requestLogger(logger))

	s.echo.GET("/healthz", s.health)
	if opts.Metrics != nil {
		s.echo.GET("/metrics", echo.WrapHandler(opts.Metrics.Handler()))
	}

	v1 := s.echo.Group("/api/v1/libraries/:library")
	v1.POST("/import", s.importBookmarks)
	v1.GET("/bookmarks", s.listBookmarks)
	v1.GET("/authors", s.listAuthors)
	v1.POST("/analyze", s.analyze)
	v1.GET("/analysis", s.latestAnalysis)
	v1.GET("/analyses", s.listAnalyses)
	v1.DELETE("", s.clearLibrary)

	return s
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("addr", addr))
		errCh <- s.echo.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("Stopping HTTP server")
		return s.echo.Shutdown(shutdownCtx)
	}
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

func requestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				// let the error handler set the final status before logging
				c.Error(err)
			}

			req := c.Request()
			logger.Info("Handled request",
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.Int("status", c.Response().Status),
				zap.Int64("bytes", c.Response().Size),
				zap.Duration("elapsed", time.Since(start)))
			return nil
		}
	}
}

// Package server exposes the pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"yashubustudio/hccmapper/hcc"
)

// Pipeline is the part of hcc.Service the handlers use.
type Pipeline interface {
	Extract(ctx context.Context, text string) ([]hcc.CandidateTerm, error)
	ClassifyTerms(ctx context.Context, terms []hcc.CandidateTerm) ([]hcc.ClassifiedResult, error)
	Process(ctx context.Context, documentName, text string) (*hcc.Report, error)
	Codebook() *hcc.Codebook
}

// Server wraps an echo instance bound to a pipeline.
type Server struct {
	echo   *echo.Echo
	cfg    hcc.ServerConfig
	logger zerolog.Logger
}

// New builds the router and middleware chain.
func New(p Pipeline, cfg hcc.ServerConfig, logger zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(logger)

	e.Use(Recovery(logger))
	e.Use(RequestID())
	e.Use(Logger(logger))
	if cfg.BodyLimit != "" {
		e.Use(echomw.BodyLimit(cfg.BodyLimit))
	}
	e.Use(RequestTimeout(cfg.RequestTimeout()))

	h := &handler{pipeline: p}
	e.GET("/healthz", h.health)
	api := e.Group("/api/v1")
	api.POST("/extract", h.extract)
	api.POST("/process", h.process)
	api.POST("/classify", h.classify)

	return &Server{echo: e, cfg: cfg, logger: logger}
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler { return s.echo }

// Start listens on cfg.Addr until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.cfg.Addr).Msg("http server listening")
		if err := s.echo.Start(s.cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info().Msg("http server shutting down")
	return s.echo.Shutdown(shutdownCtx)
}

// errorHandler renders every error as {"error": message}.
func errorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code := http.StatusInternalServerError
		msg := err.Error()
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if m, ok := he.Message.(string); ok {
				msg = m
			} else {
				msg = http.StatusText(code)
			}
		}
		if werr := c.JSON(code, errorResponse{Error: msg}); werr != nil {
			logger.Error().Err(werr).Msg("write error response")
		}
	}
}

// Package server exposes the moderation pipeline over HTTP.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"trust-lab/moderation"
	"trust-lab/repositories"
)

// Server wires echo routes to the moderation service.
type Server struct {
	echo      *echo.Echo
	service   *moderation.Service
	comments  repositories.ICommentRepository
	validate  *validator.Validate
	log       *slog.Logger
	statsFunc func() any
}

// New builds the HTTP server. statsFunc returns the payload for
// GET /healthz; nil disables the stats section.
func New(service *moderation.Service, comments repositories.ICommentRepository, statsFunc func() any, log *slog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	s := &Server{
		echo:      e,
		service:   service,
		comments:  comments,
		validate:  validator.New(),
		log:       log,
		statsFunc: statsFunc,
	}

	e.GET("/healthz", s.Health)
	e.POST("/api/comments", s.PostComment)
	e.GET("/api/comments", s.GetComments)
	e.POST("/api/contact", s.PostContact)
	e.POST("/api/moderate", s.Moderate)

	return s
}

// Echo exposes the underlying router for tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

func (s *Server) Start(addr string) error {
	s.log.Info("http server listening", "addr", addr)
	if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.echo.Shutdown(shutdownCtx)
}

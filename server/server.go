// Package server exposes the recommendation pipeline over HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/cellarius/sommelier/internal/profile"
	"github.com/cellarius/sommelier/metrics"
	"github.com/cellarius/sommelier/recommend"
)

// Server is the HTTP front of the sommelier service.
type Server struct {
	e           *echo.Echo
	profile     *profile.Profile
	registry    *recommend.Registry
	recommender *recommend.Recommender
	exporter    *metrics.Exporter
}

// NewServer wires the echo instance and routes.
func NewServer(p *profile.Profile, registry *recommend.Registry, recommender *recommend.Recommender, exporter *metrics.Exporter) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(requestLogger())

	s := &Server{
		e:           e,
		profile:     p,
		registry:    registry,
		recommender: recommender,
		exporter:    exporter,
	}

	e.GET("/healthz", s.health)
	if exporter != nil {
		e.GET("/metrics", echo.WrapHandler(exporter.Handler()))
	}

	v1 := e.Group("/api/v1")
	v1.POST("/restaurants/:restaurant/recommendations", s.recommendations)

	return s
}

// Start blocks serving HTTP until the listener fails or Shutdown is called.
func (s *Server) Start(_ context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.profile.Addr, s.profile.Port)
	slog.Info("server listening", "addr", addr, "mode", s.profile.Mode)
	return s.e.Start(addr)
}

// Shutdown drains in-flight requests before stopping.
func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := s.e.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown server gracefully", "error", err)
	}
	slog.Info("server stopped")
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"version": s.profile.Version,
	})
}

func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			slog.Info("http request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency)
			return nil
		},
	})
}

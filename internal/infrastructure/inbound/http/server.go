package delivery_http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"tweetbot-service/internal/domain/ports/input/pipeline"
	post_service "tweetbot-service/internal/domain/ports/input/post"
	ports "tweetbot-service/internal/domain/ports/output"
)

const bodyLimit = "2M"

// Server is the admin HTTP API for managing the post queue and triggering
// pipeline runs by hand.
type Server struct {
	echo    *echo.Echo
	address string
	port    int
	log     ports.Logger
}

func NewServer(
	address string,
	port int,
	posts post_service.Service,
	pipeline pipeline.Pipeline,
	log ports.Logger,
	registerer prometheus.Registerer,
	gatherer prometheus.Gatherer,
) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(log)

	metricsMiddleware, err := echoprometheus.MiddlewareConfig{
		Subsystem:  "tweetbot_http",
		Registerer: registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}.ToMiddleware()
	if err != nil {
		return nil, fmt.Errorf("http metrics middleware: %w", err)
	}

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}
			log.Debug("HTTP request handled", attrs...)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(metricsMiddleware)
	e.Use(middleware.BodyLimit(bodyLimit))

	h := NewHandler(posts, pipeline, log)
	e.GET("/healthz", h.Healthz)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))

	api := e.Group("/api/v1")
	api.POST("/posts", h.CreatePost)
	api.POST("/posts/import", h.ImportPosts)
	api.GET("/posts", h.ListPosts)
	api.GET("/posts/:id", h.GetPost)
	api.DELETE("/posts/:id", h.DeletePost)
	api.POST("/pipeline/run", h.RunPipeline)

	return &Server{
		echo:    e,
		address: address,
		port:    port,
		log:     log,
	}, nil
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Run() error {
	address := fmt.Sprintf("%s:%d", s.address, s.port)
	s.log.Info("Starting HTTP server", slog.Int("port", s.port))
	if err := s.echo.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

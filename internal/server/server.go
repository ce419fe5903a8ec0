package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/alnah/go-folio/internal/assets"
	"github.com/alnah/go-folio/internal/content"
	"github.com/alnah/go-folio/internal/logging"
)

// DefaultShutdownTimeout bounds graceful shutdown in Run.
const DefaultShutdownTimeout = 10 * time.Second

// Server serves the content library and the contact endpoint.
type Server struct {
	echo        *echo.Echo
	library     *content.Library
	unavailable map[content.Kind]*content.ResolveError

	limiter   Limiter
	comments  CommentStore
	notifier  Notifier
	metrics   *Metrics
	assets    assets.AssetLoader
	sanitizer *Sanitizer

	logger       logging.Logger
	contactLog   logging.Logger
	allowOrigins []string
	now          func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithLimiter replaces the in-memory contact limiter.
func WithLimiter(l Limiter) Option {
	return func(s *Server) {
		if l != nil {
			s.limiter = l
		}
	}
}

// WithCommentStore replaces the in-memory comment store.
func WithCommentStore(cs CommentStore) Option {
	return func(s *Server) {
		if cs != nil {
			s.comments = cs
		}
	}
}

// WithNotifier enables owner notifications.
func WithNotifier(n Notifier) Option {
	return func(s *Server) {
		s.notifier = n
	}
}

// WithMetrics replaces the default registry, for example to share it with
// repository reload hooks.
func WithMetrics(m *Metrics) Option {
	return func(s *Server) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithAssets sets where stylesheets are loaded from.
func WithAssets(loader assets.AssetLoader) Option {
	return func(s *Server) {
		if loader != nil {
			s.assets = loader
		}
	}
}

// WithLoggers takes the server and contact loggers from p.
func WithLoggers(p logging.Provider) Option {
	return func(s *Server) {
		s.logger = logging.Named(p, logging.ServerLogger)
		s.contactLog = logging.Named(p, logging.ContactLogger)
	}
}

// WithAllowOrigins enables CORS for the given origins.
func WithAllowOrigins(origins ...string) Option {
	return func(s *Server) {
		s.allowOrigins = origins
	}
}

// WithUnavailable marks a kind whose content directory could not be
// resolved; its routes answer 500 with the attempted paths.
func WithUnavailable(errs ...*content.ResolveError) Option {
	return func(s *Server) {
		for _, e := range errs {
			if e != nil {
				s.unavailable[e.Kind] = e
			}
		}
	}
}

// WithNow sets the clock used for timestamps.
func WithNow(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// New builds the echo instance and registers every route.
func New(library *content.Library, opts ...Option) *Server {
	s := &Server{
		library:     library,
		unavailable: make(map[content.Kind]*content.ResolveError),
		limiter:     NewMemoryLimiter(DefaultRateWindow, DefaultRateMax),
		comments:    NewMemoryCommentStore(),
		metrics:     NewMetrics(),
		assets:      assets.NewEmbeddedLoader(),
		sanitizer:   NewSanitizer(),
		logger:      logging.NoOp(),
		contactLog:  logging.NoOp(),
		now:         time.Now,
	}
	if s.library == nil {
		s.library = content.NewLibrary()
	}
	for _, opt := range opts {
		opt(s)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = newErrorHandler(s.logger)
	e.Use(s.metrics.Middleware())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	if len(s.allowOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: s.allowOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderContentType},
		}))
	}
	e.Use(middleware.BodyLimit("64K"))

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))
	e.GET("/assets/styles/:name", s.handleStyle)

	api := e.Group("/api")
	s.registerContentRoutes(api)
	api.POST("/contact", s.handleContact)
	api.GET("/comments", s.handleListComments)

	s.echo = e
	return s
}

// Handler returns the HTTP handler, for tests and custom listeners.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Metrics returns the server's metrics.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Run serves on addr until ctx is done, then shuts down within timeout.
func (s *Server) Run(ctx context.Context, addr string, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = DefaultShutdownTimeout
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- s.echo.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	s.logger.Info("shutting down", "timeout", timeout)
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

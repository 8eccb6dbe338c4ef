// Package server exposes the conversions over HTTP.
//
// Routes:
//
//	POST /api/svg-to-png   JSON {svg, width?, height?, scale?} -> image/png
//	GET  /api/svg-to-png   same parameters in the query string
//	POST /api/dimensions   JSON {svg} -> JSON {width, height}
//	GET  /api/dimensions   svg in the query string
//	GET  /healthz          liveness probe
//
// A scale other than 1 selects a scaled conversion; otherwise width and
// height (0 meaning unset) select an explicit size. Errors are returned as
// JSON {"error": message, "code": code}.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/benoitkugler/svg2png/internal/cache"
	"github.com/benoitkugler/svg2png/svgpng"
)

// Config holds the HTTP settings of a Server.
type Config struct {
	Addr          string
	MaxBodyBytes  int64
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	ShutdownGrace time.Duration
	CacheControl  string // sent with successful responses, if not empty
	CachePrefix   string
	CacheTTL      time.Duration
}

// Server serves the conversion API.
type Server struct {
	cfg    Config
	conv   *svgpng.Converter
	cache  cache.Cache
	logger *log.Logger
}

// New returns a server using `conv` for the conversions.
// A nil cache disables response caching.
func New(cfg Config, conv *svgpng.Converter, c cache.Cache, logger *log.Logger) *Server {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Server{cfg: cfg, conv: conv, cache: c, logger: logger}
}

// Handler returns the router of the API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(s.limitBody)
		r.Get("/svg-to-png", s.handleConvert)
		r.Post("/svg-to-png", s.handleConvert)
		r.Get("/dimensions", s.handleDimensions)
		r.Post("/dimensions", s.handleDimensions)
	})
	return r
}

// ListenAndServe listens on the configured address and serves until
// ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then waits
// for the pending requests, at most ShutdownGrace.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}
	s.logger.Infof("Listening on %s", ln.Addr())

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down")
	grace := s.cfg.ShutdownGrace
	if grace <= 0 {
		grace = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Package server exposes layout passes and mode transitions over HTTP.
//
// # Routes
//
//	GET  /healthz
//	POST /v1/layout                                   run a pass, optionally in a session
//	POST /v1/sessions                                 create a mode session
//	GET  /v1/sessions/{id}/modes                      list recorded modes
//	POST /v1/sessions/{id}/items/{item}/{event}       apply expand|spread|collapse|cycle
//	POST /v1/sessions/{id}/reset                      clear every pin
//	DELETE /v1/sessions/{id}                          drop a session
//
// Errors are JSON objects {code, message}. INVALID_* codes map to 400,
// NOT_FOUND to 404 and everything else to 500.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/tracklayout/pkg/observability"
	"github.com/matzehuels/tracklayout/pkg/pipeline"
	"github.com/matzehuels/tracklayout/pkg/session"
)

// DefaultMaxBodyBytes bounds request bodies when Options leaves it zero.
const DefaultMaxBodyBytes = 8 << 20

const shutdownTimeout = 10 * time.Second

// Options configures a Server.
type Options struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	MaxBodyBytes int64

	// Pipeline holds the layout and render defaults for every request.
	Pipeline pipeline.Options
}

// Server serves the HTTP API.
type Server struct {
	runner   *pipeline.Runner
	sessions *session.Manager
	opts     Options
	logger   *log.Logger
	router   chi.Router
}

// New creates a server. A nil logger discards output.
func New(runner *pipeline.Runner, sessions *session.Manager, opts Options, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	s := &Server{
		runner:   runner,
		sessions: sessions,
		opts:     opts,
		logger:   logger,
	}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/layout", s.handleLayout)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.handleCreateSession)
			r.Route("/{id}", func(r chi.Router) {
				r.Delete("/", s.handleDeleteSession)
				r.Get("/modes", s.handleModes)
				r.Post("/reset", s.handleReset)
				r.Post("/items/{item}/{event}", s.handleEvent)
			})
		})
	})
	return r
}

// observe reports every request to the HTTP hooks and the logger.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, route)
		hooks.OnResponse(r.Context(), r.Method, route, status, time.Since(start))
		s.logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"request_id", middleware.GetReqID(r.Context()),
			"elapsed", time.Since(start))
	})
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.opts.Addr,
		Handler:      s.router,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.opts.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

// Package server exposes parsed reports over HTTP.
//
// The API mirrors the report viewer frontend: an upload endpoint that parses
// a report and returns one SVG per chunk, and query endpoints that answer
// from the latest (or a selected) session.
//
// Session selection: the X-Session-ID header or the session query
// parameter picks a session; without either the latest upload is used.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/depscope/pkg/pipeline"
	"github.com/matzehuels/depscope/pkg/session"
)

// SessionHeader carries the session ID on requests and upload responses.
const SessionHeader = "X-Session-ID"

// Pipeline is the ingestion and rendering backend. *pipeline.Runner
// implements it.
type Pipeline interface {
	Ingest(ctx context.Context, source string, data []byte, opts pipeline.Options) (*pipeline.Result, error)
	Render(ctx context.Context, snap *session.Snapshot, opts pipeline.RenderOptions) ([][]byte, error)
	RenderFocus(ctx context.Context, snap *session.Snapshot, title string, opts pipeline.RenderOptions) ([]byte, error)
	RenderTitles(ctx context.Context, snap *session.Snapshot, opts pipeline.RenderOptions) ([]byte, error)
}

// Options configures the server.
type Options struct {
	AllowedOrigins    []string
	MaxUploadBytes    int64
	AutocompleteLimit int
	RenderTimeout     time.Duration
	Detailed          bool

	// Parse is applied to every upload.
	Parse pipeline.Options
}

// DefaultOptions returns the settings used by the reference frontend.
func DefaultOptions() Options {
	return Options{
		AllowedOrigins:    []string{"http://localhost:3000"},
		MaxUploadBytes:    64 << 20,
		AutocompleteLimit: 10,
		RenderTimeout:     pipeline.DefaultRenderTimeout,
	}
}

// Server serves the HTTP API.
type Server struct {
	pipeline Pipeline
	sessions *session.Manager
	opts     Options
	logger   *log.Logger
	router   chi.Router
}

// New creates a server. Zero option fields take DefaultOptions values.
func New(p Pipeline, sessions *session.Manager, opts Options, logger *log.Logger) *Server {
	def := DefaultOptions()
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = def.AllowedOrigins
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = def.MaxUploadBytes
	}
	if opts.AutocompleteLimit <= 0 {
		opts.AutocompleteLimit = def.AutocompleteLimit
	}
	if opts.RenderTimeout <= 0 {
		opts.RenderTimeout = def.RenderTimeout
	}
	if logger == nil {
		logger = log.Default()
	}

	s := &Server{pipeline: p, sessions: sessions, opts: opts, logger: logger}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(corsHandler(s.opts.AllowedOrigins))

	r.Get("/healthz", s.handleHealth)
	r.Post("/generate", s.handleGenerate)

	r.Route("/api", func(r chi.Router) {
		r.Get("/session", s.handleSession)
		r.Delete("/session", s.handleDeleteSession)
		r.Get("/title-nodes", s.handleTitleNodes)
		r.Get("/graph", s.handleGraph)
		r.Get("/search", s.handleSearch)
		r.Get("/autocomplete", s.handleAutocomplete)
		r.Get("/children", s.handleChildren)
		r.Get("/circular-dependencies", s.handleCircular)
		r.Get("/title-nodes-for-dependency", s.handleTitlesForDependency)
		r.Get("/titles", s.handleTitles)
		r.Get("/coordinates", s.handleCoordinate)
	})
	return r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
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
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

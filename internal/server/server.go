// Package server exposes the block document engine over HTTP.
//
// The API is the persistence collaborator boundary: pages are read and
// written whole (the block array is always replaced in full, never
// patched), and the block-level routes apply one engine operation per
// request before committing the resulting array back through the store.
// Authentication is out of scope; the server assumes the session was
// resolved upstream.
package server

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pagedeck/pagedeck/pkg/block"
	"github.com/pagedeck/pagedeck/pkg/cache"
	"github.com/pagedeck/pagedeck/pkg/engine"
	"github.com/pagedeck/pagedeck/pkg/render"
	"github.com/pagedeck/pagedeck/pkg/store"
)

// Server handles the PageDeck HTTP API.
type Server struct {
	store    store.Store
	cache    cache.Cache
	engine   *engine.Engine
	registry *block.Registry
	renderer *render.Renderer
	logger   *log.Logger
	cacheTTL time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithCache sets the artifact cache for rendered HTML. Defaults to no
// caching.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(s *Server) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

// WithRegistry overrides the block type registry. Defaults to the built-in
// registry.
func WithRegistry(reg *block.Registry) Option {
	return func(s *Server) { s.registry = reg }
}

// New creates a server over the given store. A nil logger discards output.
func New(st store.Store, logger *log.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Server{
		store:    st,
		cache:    cache.NewNullCache(),
		registry: block.Default(),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.engine = engine.New(s.registry)
	s.renderer = render.NewRenderer(s.registry, logger).
		WithDiagrams(render.NewGraphviz(s.cache, s.cacheTTL))
	return s
}

// Router builds the chi route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/pages", func(r chi.Router) {
		r.Get("/", s.handleListPages)
		r.Post("/", s.handleCreatePage)

		r.Route("/{pageID}", func(r chi.Router) {
			r.Get("/", s.handleGetPage)
			r.Put("/", s.handleReplacePage)
			r.Delete("/", s.handleDeletePage)

			r.Get("/columns", s.handleColumns)
			r.Get("/html", s.handleHTML)
			r.Post("/reorder", s.handleReorder)

			r.Route("/blocks", func(r chi.Router) {
				r.Post("/", s.handleInsertBlock)
				r.Patch("/{blockID}", s.handlePatchBlock)
				r.Delete("/{blockID}", s.handleDeleteBlock)
			})
		})
	})

	return r
}

// ListenAndServe runs the server until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// requestLogger logs one line per request with status and duration.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Millisecond),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

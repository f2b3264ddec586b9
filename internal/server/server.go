// Package server exposes asset management and page rendering over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	imagegen "github.com/feBittar/image-gen-nextjs-sub003"
	"github.com/feBittar/image-gen-nextjs-sub003/internal/assets"
)

// Renderer generates template pages. *imagegen.GeneratorPool and
// *imagegen.Generator both satisfy it.
type Renderer interface {
	Generate(ctx context.Context, input imagegen.Input) (*imagegen.Result, error)
}

// Compile-time interface implementation checks.
var (
	_ Renderer = (*imagegen.GeneratorPool)(nil)
	_ Renderer = (*imagegen.Generator)(nil)
)

// Defaults applied to zero Options fields.
const (
	DefaultRequestTimeout  = 60 * time.Second
	DefaultReadTimeout     = 15 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultMaxBodySize     = 1 << 20 // JSON render requests
)

// Options configures a Server.
type Options struct {
	CORSOrigins     []string      // Empty allows any origin
	BaseURL         string        // Default base for /render/content
	RequestTimeout  time.Duration // Per-request handler deadline
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration // 0 = RequestTimeout plus a margin
	ShutdownTimeout time.Duration
	MaxBodySize     int64 // Limit for JSON bodies
}

func (o Options) withDefaults() Options {
	if len(o.CORSOrigins) == 0 {
		o.CORSOrigins = []string{"*"}
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = DefaultRequestTimeout
	}
	if o.ReadTimeout <= 0 {
		o.ReadTimeout = DefaultReadTimeout
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = o.RequestTimeout + 5*time.Second
	}
	if o.ShutdownTimeout <= 0 {
		o.ShutdownTimeout = DefaultShutdownTimeout
	}
	if o.MaxBodySize <= 0 {
		o.MaxBodySize = DefaultMaxBodySize
	}
	return o
}

// Server routes HTTP requests to the asset directory and the renderer.
type Server struct {
	dir      *assets.Directory
	renderer Renderer
	logger   *zap.Logger
	opts     Options
	router   chi.Router
}

// New creates a Server. renderer may be nil, in which case the render
// endpoints answer 503.
func New(dir *assets.Directory, renderer Renderer, logger *zap.Logger, opts Options) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		dir:      dir,
		renderer: renderer,
		logger:   logger,
		opts:     opts.withDefaults(),
	}
	s.router = s.buildRouter()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.opts.RequestTimeout))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/assets/{kind}", func(r chi.Router) {
		r.Get("/", s.handleListAssets)
		r.Post("/", s.handleUploadAsset)
		r.Delete("/{filename}", s.handleDeleteAsset)
	})

	r.Route("/render", func(r chi.Router) {
		r.Post("/content", s.handleRenderContent)
		r.Post("/page", s.handleRenderPage)
	})

	// Uploaded assets are served where Record.URL points
	for _, kind := range assets.Kinds() {
		prefix := "/" + string(kind) + "/"
		fs := http.StripPrefix(prefix, http.FileServer(assetFS{dir: http.Dir(s.dir.Path(kind)), kind: kind}))
		r.Handle(prefix+"*", fs)
	}

	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
// Returns nil after a clean shutdown.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener. It takes ownership of ln.
// Request contexts carry ctx's values but not its cancellation, so requests
// in flight when ctx is cancelled finish within the shutdown timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: s.opts.ReadTimeout,
		ReadTimeout:       s.opts.ReadTimeout,
		WriteTimeout:      s.opts.WriteTimeout,
		IdleTimeout:       2 * s.opts.WriteTimeout,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

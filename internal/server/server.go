// Package server exposes the filter pipeline over HTTP.
//
// Routes:
//
//	GET  /             index page (static_dir/index.html, or the embedded page)
//	GET  /static/...   files under static_dir
//	POST /api/filter   multipart "file" + "filter_name" -> filtered image
//	GET  /api/filters  {"filters": [...]} sorted catalog names
//	GET  /healthz      "ok"
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/gogpu/pixfilter"
	"github.com/gogpu/pixfilter/internal/config"
	"github.com/gogpu/pixfilter/internal/ctxlog"
	"github.com/gogpu/pixfilter/internal/pipeline"
)

//go:embed web/index.html
var webFS embed.FS

// multipartMemory is the part of a multipart form kept in memory; the rest
// spills to temporary files.
const multipartMemory = 8 << 20

// Server serves filter requests. Create it with New.
type Server struct {
	cfg     config.ServerConfig
	catalog *pixfilter.Catalog
	applier pipeline.Applier
	logger  *slog.Logger
	reqID   atomic.Uint64
}

// New creates a server. A nil applier selects pixfilter.Apply.
func New(cfg config.ServerConfig, cat *pixfilter.Catalog, applier pipeline.Applier) *Server {
	if cat == nil {
		cat = pixfilter.DefaultCatalog()
	}
	if applier == nil {
		applier = pipeline.ApplyFunc(pixfilter.Apply)
	}
	return &Server{
		cfg:     cfg,
		catalog: cat,
		applier: applier,
		logger:  pixfilter.Logger().With("component", "server"),
	}
}

// Handler returns the HTTP handler with all routes registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /api/filter", s.handleFilter)
	mux.HandleFunc("GET /api/filters", s.handleFilters)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	if s.cfg.StaticDir != "" {
		mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(s.cfg.StaticDir))))
	}
	return s.withRequestLogger(mux)
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully
// within the configured shutdown timeout.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelError),
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", ln.Addr().String(), "filters", s.catalog.Len())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

// withRequestLogger attaches a request-scoped logger to every request.
func (s *Server) withRequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		logger := s.logger.With(
			"request_id", s.reqID.Add(1),
			"method", r.Method,
			"path", r.URL.Path,
		)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctxlog.WithLogger(r.Context(), logger)))
		logger.Debug("request done", "status", rec.status, "elapsed", time.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.cfg.StaticDir != "" {
		page := filepath.Join(s.cfg.StaticDir, "index.html")
		if _, err := os.Stat(page); err == nil {
			http.ServeFile(w, r, page)
			return
		}
	}
	http.ServeFileFS(w, r, webFS, "web/index.html")
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

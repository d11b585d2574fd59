// Package server exposes the analyzer over HTTP so that editors and build
// tools can type statements without spawning the CLI for each one.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/michaelhaar/type-safe-sql-query/internal/state"
	"github.com/michaelhaar/type-safe-sql-query/internal/watch"
	"github.com/michaelhaar/type-safe-sql-query/pkg/analyzer"
	"github.com/michaelhaar/type-safe-sql-query/pkg/schema"
)

// Server is the analysis HTTP server.
type Server struct {
	analyzer   *analyzer.Analyzer
	store      *state.SQLiteStore
	schema     atomic.Pointer[schema.Schema]
	schemaFile string
	port       int
	watch      bool
	logger     *slog.Logger
	notifier   *notifier
	version    string
}

// Config holds configuration for the server.
type Config struct {
	Analyzer *analyzer.Analyzer
	Schema   *schema.Schema
	// SchemaFile is reloaded on change when Watch is set.
	SchemaFile string
	// Store, when set, exposes run history.
	Store   *state.SQLiteStore
	Port    int
	Watch   bool
	Logger  *slog.Logger
	Version string
}

// NewServer creates a server instance.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Schema == nil {
		return nil, analyzer.ErrNoSchema
	}
	if cfg.Watch && cfg.SchemaFile == "" {
		return nil, errors.New("watch requires a schema file")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Analyzer == nil {
		cfg.Analyzer = analyzer.New(analyzer.WithLogger(cfg.Logger))
	}

	s := &Server{
		analyzer:   cfg.Analyzer,
		store:      cfg.Store,
		schemaFile: cfg.SchemaFile,
		port:       cfg.Port,
		watch:      cfg.Watch,
		logger:     cfg.Logger,
		notifier:   newNotifier(),
		version:    cfg.Version,
	}
	s.schema.Store(cfg.Schema)
	return s, nil
}

// Schema returns the schema statements are currently analyzed against.
func (s *Server) Schema() *schema.Schema {
	return s.schema.Load()
}

// SetSchema replaces the schema and notifies event subscribers.
func (s *Server) SetSchema(sc *schema.Schema) {
	s.schema.Store(sc)
	s.notifier.Broadcast(sc.FingerprintHex())
}

// ReloadSchema reads the schema file again. On failure the previous schema
// stays in effect.
func (s *Server) ReloadSchema() error {
	sc, err := schema.LoadFile(s.schemaFile)
	if err != nil {
		return err
	}
	s.SetSchema(sc)
	s.logger.Info("schema reloaded", "file", s.schemaFile, "tables", sc.Len(), "fingerprint", sc.FingerprintHex())
	return nil
}

// Handler returns the HTTP handler with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.Recoverer,
		requestLogger(s.logger),
	)
	s.routes(r)
	return r
}

// Serve starts the server and blocks until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting server", "addr", fmt.Sprintf("http://localhost:%d", s.port))

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.watch {
		w, err := watch.New([]string{s.schemaFile}, watch.DefaultDebounce, s.logger)
		if err != nil {
			return err
		}
		eg.Go(func() error {
			return w.Run(egctx, func([]string) {
				if err := s.ReloadSchema(); err != nil {
					s.logger.Error("schema reload failed", "error", err)
				}
			})
		})
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

// Package server exposes the document pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/gardar/hybridparse/pkg/pipeline"
	"github.com/gardar/hybridparse/pkg/searchable"
)

// multipartOverhead is allowed on top of the maximum file size for form
// boundaries and headers.
const multipartOverhead = 1 << 20

type Options struct {
	Logger      *logrus.Logger
	MaxFileSize int64
	Searchable  searchable.Config
}

type Server struct {
	proc   *pipeline.Processor
	opts   Options
	logger *logrus.Logger
	router chi.Router
}

func New(proc *pipeline.Processor, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = pipeline.DefaultMaxFileSize
	}
	if opts.Searchable.LayerName == "" {
		opts.Searchable = searchable.DefaultConfig()
	}
	if opts.Searchable.Logger == nil {
		opts.Searchable.Logger = opts.Logger
	}

	s := &Server{proc: proc, opts: opts, logger: opts.Logger}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Post("/upload", s.handleUpload)
	r.Get("/analytics/summary", s.handleAnalytics)

	r.Route("/documents", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGet)
			r.Delete("/", s.handleDelete)
			r.Post("/reparse", s.handleReparse)
			r.Get("/markdown", s.handleMarkdown)
			r.Get("/hocr", s.handleHOCR)
			r.Get("/searchable.pdf", s.handleSearchablePDF)
		})
	})
	return r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down and
// waits for background parses to finish.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("HTTP server listening")
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

	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.proc.Wait()
	return err
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"bytes":      ww.BytesWritten(),
			"duration":   time.Since(start).String(),
			"request_id": middleware.GetReqID(r.Context()),
		}).Debug("HTTP request")
	})
}

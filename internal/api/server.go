// Package api exposes the question-answering pipeline over HTTP.
//
// Endpoints:
//
//	GET  /health  liveness probe
//	POST /ask     answer a question from the FAQ corpus
//
// Errors are returned as {"detail": "..."}; internal failure details are
// logged, never sent to clients.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"faqrag/internal/domain"
)

const (
	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	ShutdownTimeout = 10 * time.Second

	// ReadHeaderTimeout bounds header reads to block Slowloris-style
	// clients.
	ReadHeaderTimeout = 10 * time.Second

	ReadTimeout = 30 * time.Second

	// WriteTimeout leaves room for a slow generation call.
	WriteTimeout = 60 * time.Second

	IdleTimeout = 120 * time.Second
)

// Answerer is the slice of the core the HTTP layer consumes.
type Answerer interface {
	Answer(ctx context.Context, question string, topK int) (domain.AnswerResult, error)
}

// Server routes HTTP requests to the core.
type Server struct {
	mux  *http.ServeMux
	core Answerer
}

// NewServer creates a server with all routes registered.
func NewServer(core Answerer) *Server {
	s := &Server{mux: http.NewServeMux(), core: core}
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("POST /ask", s.handleAsk)
	return s
}

// Handler returns the HTTP handler with middleware applied.
// Middleware order: recovery → logging → handler.
func (s *Server) Handler() http.Handler {
	return chain(s.mux, recoveryMiddleware, loggingMiddleware)
}

// Run starts the HTTP server and blocks until the context is cancelled,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: ReadHeaderTimeout,
		ReadTimeout:       ReadTimeout,
		WriteTimeout:      WriteTimeout,
		IdleTimeout:       IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting HTTP server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

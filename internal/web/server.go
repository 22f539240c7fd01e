// Package web provides the HTTP API for generating tour itineraries and
// email drafts.
package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/cors"
	"golang.org/x/sync/errgroup"

	"github.com/evcraddock/resa/internal/auth"
	"github.com/evcraddock/resa/internal/contacts"
	"github.com/evcraddock/resa/internal/logging"
)

// DefaultMaxBodyBytes caps the size of a tour document.
const DefaultMaxBodyBytes = 1 << 20

// Config holds server settings.
type Config struct {
	Port        int
	CORSOrigins []string
	// APIKeys, when set, are required as Bearer tokens on /api/ routes.
	APIKeys      []string
	MaxBodyBytes int64
}

// Server is the API HTTP server.
type Server struct {
	cfg      Config
	contacts contacts.Finder
	mux      *http.ServeMux
	handler  http.Handler
}

// NewServer creates an API server. finder fills missing listing-agent
// details before generation and may be nil.
func NewServer(cfg Config, finder contacts.Finder) *Server {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}

	s := &Server{
		cfg:      cfg,
		contacts: finder,
		mux:      http.NewServeMux(),
	}

	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/generate", s.handleGenerate)
	s.mux.HandleFunc("/api/itinerary.pdf", s.handleItineraryPDF)

	h := auth.RequireAPIKey(cfg.APIKeys, s.mux)
	if len(cfg.CORSOrigins) > 0 {
		h = cors.New(cors.Options{
			AllowedOrigins: cfg.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type", logging.RequestIDHeader},
			ExposedHeaders: []string{logging.RequestIDHeader},
		}).Handler(h)
	}
	s.handler = logging.RequestLogger(h)

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// ListenAndServe starts the HTTP server and shuts it down gracefully when
// ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("starting server", "addr", "http://localhost"+srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listening on %s: %w", srv.Addr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		slog.Info("shutting down server")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

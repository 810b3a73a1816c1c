// Package ui provides the web console for a relay: the template
// playground and the status pages.
package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/relayui/internal/preview"
	"github.com/leapstack-labs/relayui/internal/relay"
	"github.com/leapstack-labs/relayui/internal/ui/router"
)

// sweepInterval is how often idle preview sessions are collected.
const sweepInterval = time.Minute

// Server is the web console server.
type Server struct {
	client       *relay.Client
	registry     *preview.Registry
	sessionStore *sessions.CookieStore
	port         int
	timeout      time.Duration
	dev          bool
	logger       *slog.Logger
}

// Config holds configuration for the UI server.
type Config struct {
	Client        *relay.Client
	Port          int
	SessionSecret string
	SessionTTL    time.Duration
	Debounce      time.Duration
	Timeout       time.Duration
	// Initial is the input every new playground starts with. Zero means
	// preview.DefaultInput.
	Initial preview.InputState
	Logger  *slog.Logger
	Dev     bool
}

// NewServer creates a new UI server instance.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.MaxAge(86400 * 30)
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.SameSite = http.SameSiteLaxMode

	s := &Server{
		client:       cfg.Client,
		sessionStore: sessionStore,
		port:         cfg.Port,
		timeout:      cfg.Timeout,
		dev:          cfg.Dev,
		logger:       logger,
	}

	s.registry = preview.NewRegistry(func(id string, sel preview.ViewSelection) *preview.Session {
		return preview.NewSession(context.Background(), preview.SessionConfig{
			ID:          id,
			Backend:     cfg.Client,
			CatalogPath: cfg.Client.Paths().Templates,
			Pipeline: preview.Config{
				Debounce: cfg.Debounce,
				Timeout:  cfg.Timeout,
				Initial:  cfg.Initial,
				Logger:   logger.With("session", id),
			},
			Selection: sel,
		})
	}, cfg.SessionTTL, logger)

	return s
}

// Registry returns the live preview sessions.
func (s *Server) Registry() *preview.Registry {
	return s.registry
}

// Handler builds the router with every route mounted.
func (s *Server) Handler() (http.Handler, error) {
	r := chi.NewMux()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	err := router.SetupRoutes(r, router.Deps{
		Fetcher:      s.client,
		Paths:        s.client.Paths(),
		Timeout:      s.timeout,
		Sessions:     s.registry,
		SessionStore: s.sessionStore,
		Logger:       s.logger,
		IsDev:        s.dev,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to setup routes: %w", err)
	}
	return r, nil
}

// Serve listens on the configured port and blocks until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener serves on ln until ctx is cancelled, then shuts down and
// closes every preview session.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	handler, err := s.Handler()
	if err != nil {
		_ = ln.Close()
		return err
	}

	s.logger.Info("starting UI server", "addr", "http://"+ln.Addr().String())

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		return s.registry.Run(egctx, sweepInterval)
	})

	eg.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down UI server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// Package server owns the HTTP listener and the process lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matiasleandrokruk/bookcompanion/internal/infra/config"
)

// Config holds HTTP server configuration.
type Config struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DefaultConfig returns default HTTP server configuration. The write
// timeout covers a full chapter pass or a slow chat answer.
func DefaultConfig() Config {
	return Config{
		Host:            "0.0.0.0",
		Port:            3001,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    2 * time.Minute,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

// ConfigFrom takes the listener address from the application config.
func ConfigFrom(cfg config.Config) Config {
	c := DefaultConfig()
	c.Host = cfg.Host
	c.Port = cfg.Port
	return c
}

// Server wraps the HTTP server and the application it serves.
type Server struct {
	config Config
	app    *App
	http   *http.Server
}

// NewServer creates a new HTTP server for app.
func NewServer(app *App, cfg Config) *Server {
	httpServer := &http.Server{
		Addr:         config.Config{Host: cfg.Host, Port: cfg.Port}.Addr(),
		Handler:      app.Router(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &Server{
		config: cfg,
		app:    app,
		http:   httpServer,
	}
}

// Addr is the configured listen address.
func (s *Server) Addr() string { return s.http.Addr }

// Run serves HTTP and runs the background consumers until ctx is done,
// then shuts down gracefully and closes the app.
func (s *Server) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.app.Log.Info("starting HTTP server", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		s.app.RunBackground(gctx)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Shutdown stops accepting requests, waits for in-flight ones and closes
// the app.
func (s *Server) Shutdown(ctx context.Context) error {
	s.app.Log.Info("shutting down server")

	httpErr := s.http.Shutdown(ctx)
	if err := errors.Join(httpErr, s.app.Close()); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.app.Log.Info("server shutdown complete")
	return nil
}

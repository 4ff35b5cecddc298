// ABOUTME: Server orchestrator wiring store, auth, rooms, and transports
// ABOUTME: Owns startup order and graceful shutdown of the HTTP listener

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/2389/ripple/internal/auth"
	"github.com/2389/ripple/internal/config"
	"github.com/2389/ripple/internal/conversation"
	"github.com/2389/ripple/internal/events"
	"github.com/2389/ripple/internal/identity"
	"github.com/2389/ripple/internal/room"
	"github.com/2389/ripple/internal/session"
	"github.com/2389/ripple/internal/store"
	"github.com/2389/ripple/internal/ws"
)

// shutdownTimeout bounds how long in-flight requests may run during shutdown.
const shutdownTimeout = 10 * time.Second

// Server assembles the chat server components and runs the HTTP listener
// that carries both the REST auth endpoints and the websocket.
type Server struct {
	config     *config.Config
	store      store.Store
	registry   *session.Registry
	httpServer *http.Server
	logger     *slog.Logger
}

// New builds a fully wired server from configuration.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	s, err := initStore(cfg)
	if err != nil {
		return nil, err
	}

	verifier := auth.NewJWTVerifier([]byte(cfg.Auth.JWTSecret))
	registry := session.NewRegistry(logger)
	rooms := room.NewManager(s, logger)

	conversations := conversation.NewService(s, registry, rooms, logger)
	messages := conversation.NewMessageService(s, rooms, logger)
	identities := identity.NewService(s, verifier, cfg.Auth.TokenTTL, logger)

	dispatcher := events.NewDispatcher(logger)
	ws.RegisterHandlers(dispatcher, conversations, messages, identities, logger)

	mux := http.NewServeMux()
	identity.NewHandler(identities, logger).Register(mux)
	mux.Handle("/ws", ws.NewServer(verifier, registry, rooms, dispatcher, cfg.Limits.SessionBuffer, logger))
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return &Server{
		config:   cfg,
		store:    s,
		registry: registry,
		httpServer: &http.Server{
			Addr:    cfg.Server.HTTPAddr,
			Handler: mux,
		},
		logger: logger.With("component", "server"),
	}, nil
}

// initStore opens the SQLite store, honoring the RIPPLE_DB_PATH override.
func initStore(cfg *config.Config) (store.Store, error) {
	dbPath := cfg.Database.Path
	if envPath := os.Getenv("RIPPLE_DB_PATH"); envPath != "" {
		dbPath = envPath
	}

	s, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("initializing store: %w", err)
	}
	return s, nil
}

// Run starts the HTTP listener and blocks until the context is canceled or
// the listener fails. Shutdown drains in-flight requests before closing the
// store.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		s.store.Close()
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", "active_sessions", s.registry.Len())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("http shutdown failed", "error", err)
	}

	if err := s.store.Close(); err != nil {
		s.logger.Error("store close failed", "error", err)
	}

	s.logger.Info("shutdown complete")
	return nil
}

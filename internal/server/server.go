package server

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/playrank/authd/internal/api"
	"github.com/playrank/authd/internal/auth"
	"github.com/playrank/authd/internal/config"
	"github.com/playrank/authd/internal/score"
	"github.com/playrank/authd/internal/session"
	"github.com/playrank/authd/internal/storage"
)

type Server struct {
	cfg        atomic.Value
	httpServer *http.Server
}

// New assembles the HTTP surface. Every route is mounted both bare and under
// /api; the two prefixes are aliases for the same handlers, never duplicated
// logic.
func New(cfg *config.Config, logger *slog.Logger, users storage.UserStore, sessions session.Store, ledger *score.Ledger) *Server {
	s := &Server{}
	s.cfg.Store(cfg)

	cookieOpts := func() session.CookieOptions {
		return session.CookieOptions{Secure: s.cfg.Load().(*config.Config).Session.CookieSecure}
	}

	authHandler := api.NewAuthHandler(users, sessions, cookieOpts, logger)
	gate := auth.Middleware(sessions)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", api.HealthHandler)

	handleAliases(mux, http.HandlerFunc(authHandler.Login), "/auth/login")
	handleAliases(mux, http.HandlerFunc(authHandler.Signup), "/auth/signup")
	handleAliases(mux, http.HandlerFunc(authHandler.Logout), "/auth/logout")
	handleAliases(mux, gate(api.NewMeHandler()), "/session/me")
	handleAliases(mux, gate(api.NewScoreHandler(ledger, logger)), "/score")

	handler := api.CORS(api.RequestLogger(logger)(mux))

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeoutSeconds) * time.Second,
	}

	s.httpServer = server
	return s
}

// handleAliases registers one handler under a path and its /api twin.
func handleAliases(mux *http.ServeMux, h http.Handler, path string) {
	mux.Handle(path, h)
	mux.Handle("/api"+path, h)
}

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// UpdateConfig swaps in a reloaded config. Handlers that consult the config
// (cookie flags) observe the new value on their next request; listener
// timeouts stay as started.
func (s *Server) UpdateConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	s.cfg.Store(cfg)
}

// Handler exposes the assembled route tree for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

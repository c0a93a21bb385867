// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taibuivan/aulagate/internal/navigation"
	"github.com/taibuivan/aulagate/internal/platform/apperr"
	"github.com/taibuivan/aulagate/internal/platform/config"
	"github.com/taibuivan/aulagate/internal/platform/constants"
	"github.com/taibuivan/aulagate/internal/platform/middleware"
	"github.com/taibuivan/aulagate/internal/platform/respond"
	"github.com/taibuivan/aulagate/internal/session"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all HTTP handler sets.
type Handlers struct {
	// Liveness is the /health handler; always returns 200 if process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler; returns 200 when the session store answers.
	Readiness http.HandlerFunc

	// Metrics exposes the Prometheus registry.
	Metrics http.Handler

	// Session handles login, logout and password reset.
	Session *session.Handler

	// Navigation exposes guard decisions and the route table.
	Navigation *navigation.Handler

	// Pages serves every application page through the navigator.
	Pages http.HandlerFunc

	// Assets serves the single-page app's static files. Optional.
	Assets http.Handler
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
//
// Probes and metrics sit outside the client session middleware, so scrapers
// never mint client cookies. options configure every client's session service.
func NewServer(ctx context.Context, cfg *config.Config, log *slog.Logger, sessions session.Provider, h Handlers, options ...session.Option) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(ctx))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.CORS(cfg))

	// Unknown endpoints answer with the JSON error envelope. Mounted routers
	// inherit this handler.
	r.NotFound(func(writer http.ResponseWriter, request *http.Request) {
		respond.Error(writer, request, apperr.NotFound("Endpoint"))
	})

	// # Infrastructure Endpoints
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)
	if h.Metrics != nil {
		r.Handle("/metrics", h.Metrics)
	}
	if h.Assets != nil {
		r.Handle("/assets/*", h.Assets)
	}

	// # Client Surface
	// Everything below knows which browser client is asking.
	cookie := middleware.ClientCookie{
		Name:   cfg.ClientCookieName,
		MaxAge: cfg.SessionIdleTTL,
		Secure: cfg.IsProduction(),
	}

	r.Group(func(client chi.Router) {
		client.Use(middleware.ClientSession(sessions, cookie, options...))

		client.Route("/api/v1", func(api chi.Router) {
			api.Mount("/session", h.Session.Routes())
			api.Mount("/navigation", h.Navigation.Routes())
		})

		client.Get("/*", h.Pages)
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// Handler returns the root router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server_starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

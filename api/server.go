// Package api exposes the indexed mailboxes over HTTP: search, category
// updates, reply suggestions, account states and the websocket event
// stream. The API is unauthenticated, it is meant to sit behind a local
// reverse proxy.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Jayant-ux/Rich-Onebox-for-Emails/index"
	"github.com/Jayant-ux/Rich-Onebox-for-Emails/lib"
	"github.com/Jayant-ux/Rich-Onebox-for-Emails/syncer"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// StateReporter exposes the lifecycle state of every synchronized
// account.
type StateReporter interface {
	States() map[string]syncer.State
}

type Config struct {
	Listen string
	Sink   index.Sink
	Engine StateReporter
	// WebSocket upgrade handler, nil disables /ws
	WebSocket http.HandlerFunc
	Logger    lib.Logger
}

type Server struct {
	config     Config
	log        lib.Logger
	router     chi.Router
	httpServer *http.Server
}

func NewServer(config Config) *Server {
	logger := config.Logger
	if logger == nil {
		logger = &lib.NoLog{}
	}
	server := &Server{
		config: config,
		log:    logger,
	}
	server.setupRoutes()
	server.httpServer = &http.Server{
		Addr:         config.Listen,
		Handler:      server.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return server
}

func (s *Server) setupRoutes() {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)

	router.Get("/healthz", s.handleHealth)

	router.Route("/api/v1", func(router chi.Router) {
		router.Use(middleware.Timeout(30 * time.Second))
		router.Get("/messages", s.handleSearch)
		router.Put("/messages/{id}/category", s.handleSetCategory)
		router.Post("/messages/{id}/categorize", s.handleCategorize)
		router.Post("/messages/{id}/suggest", s.handleSuggestReply)
		router.Get("/accounts", s.handleAccounts)
	})

	if s.config.WebSocket != nil {
		// no timeout middleware here, the connection is long-lived
		router.Get("/ws", s.config.WebSocket)
	}
	s.router = router
}

// Handler returns the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the HTTP server until Shutdown is called. A clean shutdown
// returns nil.
func (s *Server) Start() error {
	s.log.Printf("http server listening on %s", s.config.Listen)
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

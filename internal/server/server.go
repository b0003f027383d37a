package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/michaelbrown/codepad/internal/execution"
	"github.com/michaelbrown/codepad/internal/judge"
	"github.com/michaelbrown/codepad/internal/logging"
	"github.com/michaelbrown/codepad/internal/storage"
)

// LanguageLister reports the languages the remote judge supports.
type LanguageLister interface {
	Languages(ctx context.Context) ([]judge.Language, error)
}

// Server is the HTTP server for the codepad API.
type Server struct {
	runner  execution.Runner
	catalog *execution.Catalog
	judges  LanguageLister
	store   storage.Store
	runs    *RunManager
	log     *zap.Logger
	router  chi.Router
	http    *http.Server
}

// New creates a new Server. judges may be nil when no judge is configured.
func New(runner execution.Runner, catalog *execution.Catalog, judges LanguageLister, store storage.Store, log *zap.Logger) *Server {
	log = logging.OrNop(log)
	if catalog == nil {
		catalog = execution.DefaultCatalog()
	}
	s := &Server{
		runner:  runner,
		catalog: catalog,
		judges:  judges,
		store:   store,
		runs:    NewRunManager(),
		log:     log,
		router:  chi.NewRouter(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := s.router

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Route("/api", func(r chi.Router) {
		r.Use(jsonContentType)

		// Languages
		r.Get("/languages", s.handleLanguages)
		r.Get("/judge/languages", s.handleJudgeLanguages)

		// Execution
		r.Post("/run", s.handleRun)

		// WebSocket (no JSON content-type)
		r.Get("/run/ws", s.handleRunSocket)

		// Preview
		r.Post("/preview", s.handlePreview)
		r.Get("/projects/{id}/preview", s.handleProjectPreview)
		r.Get("/projects/{id}/frame", s.handleProjectFrame)
		r.Get("/projects/{id}/archive", s.handleProjectArchive)
	})
}

// ServeHTTP lets the server be mounted or driven by httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// jsonContentType sets Content-Type to application/json for API routes.
// Handlers that return documents or archives override it.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// Start begins listening on the given port.
func (s *Server) Start(port int) error {
	addr := fmt.Sprintf(":%d", port)
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.log.Info("codepad server starting", zap.String("url", "http://localhost"+addr))
	return s.http.ListenAndServe()
}

// Shutdown cancels in-flight runs and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down server", zap.Int("in_flight_runs", s.runs.Len()))
	s.runs.CancelAll()

	if s.http == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return s.http.Shutdown(shutdownCtx)
}

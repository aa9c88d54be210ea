// Package api exposes the HTTP and WebSocket surface for ratings,
// simulations and historical validations.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/bracket-oracle/internal/models"
	"github.com/yourusername/bracket-oracle/internal/rating"
	"github.com/yourusername/bracket-oracle/internal/service"
	"github.com/yourusername/bracket-oracle/internal/validation"
)

// TeamProvider is the slice of the team service the API consumes
type TeamProvider interface {
	TopTeams(ctx context.Context, limit int) ([]*models.Team, error)
	GetTeam(ctx context.Context, name string) (*models.Team, error)
	RebuildRatings(ctx context.Context) ([]rating.Entry, error)
}

// SimulationRunner is the slice of the simulation service the API consumes
type SimulationRunner interface {
	RunSimulation(ctx context.Context, req service.SimulationRequest, progress service.ProgressFunc) (*models.Simulation, error)
	GetSimulation(ctx context.Context, id uuid.UUID) (*models.Simulation, error)
	ListRecent(ctx context.Context, limit int) ([]*models.Simulation, error)
	DeleteSimulation(ctx context.Context, id uuid.UUID) error
}

// ValidationRunner is the slice of the validation service the API consumes
type ValidationRunner interface {
	ValidateEvents(ctx context.Context, events []validation.Event) (*validation.BatchResult, error)
}

// Server is the HTTP API server
type Server struct {
	router     *mux.Router
	httpServer *http.Server
	teams      TeamProvider
	sims       SimulationRunner
	validator  ValidationRunner
	cache      *ResultsCache
	logger     *logrus.Logger
}

// NewServer creates the API server and registers its routes
func NewServer(port int, teams TeamProvider, sims SimulationRunner, validator ValidationRunner, cacheTTL time.Duration, logger *logrus.Logger) *Server {
	s := &Server{
		router:    mux.NewRouter(),
		teams:     teams,
		sims:      sims,
		validator: validator,
		cache:     NewResultsCache(cacheTTL),
		logger:    logger,
	}
	s.routes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) routes() {
	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.Use(s.loggingMiddleware)

	api.HandleFunc("/teams", s.handleListTeams).Methods(http.MethodGet)
	api.HandleFunc("/teams/{name}", s.handleGetTeam).Methods(http.MethodGet)
	api.HandleFunc("/ratings/rebuild", s.handleRebuildRatings).Methods(http.MethodPost)

	api.HandleFunc("/simulations", s.handleRunSimulation).Methods(http.MethodPost)
	api.HandleFunc("/simulations", s.handleListSimulations).Methods(http.MethodGet)
	api.HandleFunc("/simulations/{id}", s.handleGetSimulation).Methods(http.MethodGet)
	api.HandleFunc("/simulations/{id}", s.handleDeleteSimulation).Methods(http.MethodDelete)

	api.HandleFunc("/validations", s.handleRunValidation).Methods(http.MethodPost)

	// WebSocket endpoint streams trial progress while a simulation runs
	s.router.HandleFunc("/ws/simulate", s.handleSimulationStream)
}

// Router exposes the handler tree, mainly for tests
func (s *Server) Router() http.Handler {
	return s.router
}

// Start begins serving requests. Blocks until the server stops.
func (s *Server) Start() error {
	s.logger.WithField("addr", s.httpServer.Addr).Info("API server starting")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("API server shutting down")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start),
		}).Debug("Request handled")
	})
}

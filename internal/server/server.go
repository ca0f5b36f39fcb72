package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/meltforce/nextrep/internal/catalog"
	"github.com/meltforce/nextrep/internal/history"
	"github.com/meltforce/nextrep/internal/storage"
	"github.com/meltforce/nextrep/internal/workout"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store    *storage.DB
	catalog  *catalog.Manager
	sessions *workout.Manager
	history  *history.Aggregator
	live     *liveRegistry
	log      *slog.Logger
	apiKey   string
	router   chi.Router
}

// New creates a new Server with all routes configured. An empty apiKey
// leaves the API open (tsnet deployments gate access at the network layer).
func New(store *storage.DB, cat *catalog.Manager, sessions *workout.Manager, hist *history.Aggregator, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		store:    store,
		catalog:  cat,
		sessions: sessions,
		history:  hist,
		live:     newLiveRegistry(),
		log:      log,
		apiKey:   apiKey,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(Metrics)
	s.router.Use(CORS)

	s.router.Route("/api/v1", func(r chi.Router) {
		if s.apiKey != "" {
			r.Use(APIKeyAuth(s.apiKey))
		}

		r.Get("/exercises", s.handleListExercises)
		r.Post("/exercises", s.handleAddExercise)
		r.Get("/exercises/{id}", s.handleGetExercise)
		r.Delete("/exercises/{id}", s.handleDeleteExercise)
		r.Get("/exercises/{id}/history", s.handleExerciseHistory)

		r.Get("/sessions", s.handleListSessions)
		r.Post("/sessions", s.handleCreateSession)
		r.Get("/sessions/pending", s.handleGetPending)
		r.Post("/sessions/pending", s.handleStagePending)
		r.Get("/sessions/{id}", s.handleGetSession)
		r.Delete("/sessions/{id}", s.handleDeleteSession)

		r.Post("/workouts", s.handleStartWorkout)
		r.Get("/workouts/{id}", s.handleGetWorkout)
		r.Patch("/workouts/{id}/exercises/{exerciseID}/sets/{index}", s.handleUpdateSet)
		r.Post("/workouts/{id}/exercises/{exerciseID}/sets", s.handleAddSet)
		r.Post("/workouts/{id}/finish", s.handleFinishWorkout)

		r.Get("/history/recent", s.handleRecentRuns)
	})

	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", promhttp.Handler())
}

// Mount attaches an extra handler under the given pattern (used for the MCP
// endpoint).
func (s *Server) Mount(pattern string, h http.Handler) {
	s.router.Mount(pattern, h)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Health(); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

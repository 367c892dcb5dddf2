package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/meltforce/liftlog/internal/service"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	svc    *service.Service
	log    *slog.Logger
	apiKey string
	router chi.Router
}

// New creates a new Server with all routes configured.
func New(svc *service.Service, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		svc:    svc,
		log:    log,
		apiKey: apiKey,
		router: chi.NewRouter(),
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
	s.router.Use(CORS)

	s.router.Route("/api/v1", func(r chi.Router) {
		// Reads
		r.Get("/days/{date}", s.handleGetDay)
		r.Get("/session", s.handleGetSession)
		r.Get("/templates", s.handleListTemplates)
		r.Get("/foods", s.handleListFoods)
		r.Get("/timer", s.handleGetTimer)
		r.Get("/stats/volume", s.handleWeeklyVolume)
		r.Get("/stats/muscles", s.handleMuscleDistribution)
		r.Get("/stats/records", s.handlePersonalRecords)

		// Mutations (API key required)
		r.Group(func(r chi.Router) {
			r.Use(APIKeyAuth(s.apiKey))

			r.Post("/session/workout", s.handleStartWorkout)
			r.Post("/session/template", s.handleStartTemplate)
			r.Post("/session/from-template/{id}", s.handleStartFromTemplate)
			r.Post("/session/exercises", s.handleAddExercise)
			r.Delete("/session/exercises/{index}", s.handleRemoveExercise)
			r.Post("/session/exercises/{index}/sets", s.handleAddSet)
			r.Patch("/session/exercises/{index}/sets/{setIndex}", s.handleUpdateSet)
			r.Delete("/session/exercises/{index}/sets/{setIndex}", s.handleRemoveSet)
			r.Post("/session/finish", s.handleFinishWorkout)
			r.Post("/session/cancel", s.handleCancelWorkout)

			r.Post("/days/{date}/meals", s.handleAddMeal)
			r.Delete("/days/{date}/meals/{id}", s.handleRemoveMeal)
			r.Post("/days/{date}/activities", s.handleLogActivity)

			r.Post("/templates", s.handleCreateTemplate)
			r.Put("/templates/{id}", s.handleUpdateTemplate)
			r.Delete("/templates/{id}", s.handleDeleteTemplate)

			r.Post("/foods", s.handleCreateFood)

			r.Post("/timer/start", s.handleStartTimer)
			r.Post("/timer/tick", s.handleTickTimer)
			r.Post("/timer/add", s.handleAddTimer)
			r.Post("/timer/stop", s.handleStopTimer)
		})
	})
}

// SetCoach mounts the AI-coach MCP handler at /mcp.
func (s *Server) SetCoach(h http.Handler) {
	s.router.Mount("/mcp", h)
}

package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/stats"
)

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Sessions().Templates())
}

func (s *Server) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	var t models.WorkoutTemplate
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if err := s.svc.CreateTemplate(r.Context(), t); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.svc.Sessions().Templates())
}

func (s *Server) handleUpdateTemplate(w http.ResponseWriter, r *http.Request) {
	var t models.WorkoutTemplate
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	t.ID = chi.URLParam(r, "id")
	if err := s.svc.UpdateTemplate(r.Context(), t); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteTemplate(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleListFoods(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Sessions().Foods())
}

func (s *Server) handleCreateFood(w http.ResponseWriter, r *http.Request) {
	var f models.Food
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if err := s.svc.CreateFood(r.Context(), f); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

// --- Rest timer ---

func (s *Server) handleGetTimer(w http.ResponseWriter, r *http.Request) {
	state, ok := s.svc.Timer().State()
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"running": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"running": true, "timer": state})
}

func (s *Server) handleStartTimer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ExerciseID string `json:"exercise_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, s.svc.Timer().Start(req.ExerciseID))
}

func (s *Server) handleTickTimer(w http.ResponseWriter, r *http.Request) {
	state, ok := s.svc.Timer().Tick()
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"running": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"running": true, "timer": state})
}

func (s *Server) handleAddTimer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Delta int `json:"delta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	state, ok := s.svc.Timer().Add(req.Delta)
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"running": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"running": true, "timer": state})
}

func (s *Server) handleStopTimer(w http.ResponseWriter, r *http.Request) {
	s.svc.Timer().Stop()
	writeJSON(w, http.StatusOK, map[string]any{"running": false})
}

// --- Stats ---

func (s *Server) handleWeeklyVolume(w http.ResponseWriter, r *http.Request) {
	workouts := s.svc.Sessions().AllWorkouts()
	writeJSON(w, http.StatusOK, stats.WeeklyVolumes(workouts, time.Now()))
}

func (s *Server) handleMuscleDistribution(w http.ResponseWriter, r *http.Request) {
	workouts := s.svc.Sessions().AllWorkouts()
	writeJSON(w, http.StatusOK, stats.MuscleDistribution(workouts))
}

func (s *Server) handlePersonalRecords(w http.ResponseWriter, r *http.Request) {
	workouts := s.svc.Sessions().AllWorkouts()
	writeJSON(w, http.StatusOK, stats.PersonalRecords(workouts))
}

package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/service"
	"github.com/meltforce/liftlog/internal/session"
	"github.com/meltforce/liftlog/internal/storage"
)

func (s *Server) handleGetDay(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	day, err := s.svc.LoadDay(r.Context(), date)
	if err != nil {
		s.log.Error("load day", "date", date, "error", err)
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, day)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	active, kind, ok := s.svc.Sessions().Active()
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"active": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"active":  true,
		"kind":    kind,
		"workout": active,
	})
}

func (s *Server) handleStartWorkout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if err := s.svc.StartWorkout(req.Name); err != nil {
		writeErr(w, err)
		return
	}
	s.respondSession(w)
}

func (s *Server) handleStartTemplate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if err := s.svc.StartTemplate(req.Name, req.Description); err != nil {
		writeErr(w, err)
		return
	}
	s.respondSession(w)
}

func (s *Server) handleStartFromTemplate(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.StartWorkoutFromTemplate(chi.URLParam(r, "id")); err != nil {
		writeErr(w, err)
		return
	}
	s.respondSession(w)
}

func (s *Server) handleAddExercise(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ExerciseID   string `json:"exercise_id"`
		ExerciseName string `json:"exercise_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if err := s.svc.AddExercise(req.ExerciseID, req.ExerciseName); err != nil {
		writeErr(w, err)
		return
	}
	s.respondSession(w)
}

func (s *Server) handleRemoveExercise(w http.ResponseWriter, r *http.Request) {
	index, err := pathIndex(r, "index")
	if err != nil {
		writeErr(w, err)
		return
	}
	if err := s.svc.RemoveExercise(index); err != nil {
		writeErr(w, err)
		return
	}
	s.respondSession(w)
}

func (s *Server) handleAddSet(w http.ResponseWriter, r *http.Request) {
	index, err := pathIndex(r, "index")
	if err != nil {
		writeErr(w, err)
		return
	}
	set, err := s.svc.AddSet(index)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, set)
}

func (s *Server) handleUpdateSet(w http.ResponseWriter, r *http.Request) {
	index, err := pathIndex(r, "index")
	if err != nil {
		writeErr(w, err)
		return
	}
	setIndex, err := pathIndex(r, "setIndex")
	if err != nil {
		writeErr(w, err)
		return
	}
	var patch session.SetPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if err := s.svc.UpdateSet(index, setIndex, patch); err != nil {
		writeErr(w, err)
		return
	}
	s.respondSession(w)
}

func (s *Server) handleRemoveSet(w http.ResponseWriter, r *http.Request) {
	index, err := pathIndex(r, "index")
	if err != nil {
		writeErr(w, err)
		return
	}
	setIndex, err := pathIndex(r, "setIndex")
	if err != nil {
		writeErr(w, err)
		return
	}
	if err := s.svc.RemoveSet(index, setIndex); err != nil {
		writeErr(w, err)
		return
	}
	s.respondSession(w)
}

func (s *Server) handleFinishWorkout(w http.ResponseWriter, r *http.Request) {
	result, err := s.svc.FinishWorkout(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleCancelWorkout(w http.ResponseWriter, r *http.Request) {
	s.svc.CancelWorkout()
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

func (s *Server) handleAddMeal(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	var req struct {
		FoodID   string          `json:"food_id"`
		Grams    float64         `json:"grams"`
		MealType models.MealType `json:"meal_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	entry, err := s.svc.AddMeal(r.Context(), date, req.FoodID, req.Grams, req.MealType)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleRemoveMeal(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	id := chi.URLParam(r, "id")
	if err := s.svc.RemoveMeal(r.Context(), date, id); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.svc.Sessions().Day(date))
}

func (s *Server) handleLogActivity(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	var req struct {
		Name     string                 `json:"name"`
		Activity models.ActivitySession `json:"activity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	workout, err := s.svc.LogActivity(r.Context(), date, req.Name, req.Activity)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, workout)
}

func (s *Server) respondSession(w http.ResponseWriter) {
	active, kind, ok := s.svc.Sessions().Active()
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"active": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"active":  true,
		"kind":    kind,
		"workout": active,
	})
}

func pathIndex(r *http.Request, name string) (int, error) {
	index, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		return 0, session.ErrValidation
	}
	return index, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeErr maps the error taxonomy to HTTP statuses.
func writeErr(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, session.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, session.ErrNoActiveSession),
		errors.Is(err, session.ErrSessionActive),
		errors.Is(err, storage.ErrNameCollision):
		status = http.StatusConflict
	case errors.Is(err, service.ErrSyncFailed):
		status = http.StatusBadGateway
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

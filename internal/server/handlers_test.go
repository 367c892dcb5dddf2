package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/service"
	"github.com/meltforce/liftlog/internal/session"
	"github.com/meltforce/liftlog/internal/storage"
)

// nopRemote is a RemoteStore that accepts every write and returns empty
// reads. Handler tests exercise routing, decoding and status mapping; the
// write-through mechanics are covered in the service package.
type nopRemote struct{}

func (nopRemote) LoadDay(context.Context, int, string) (storage.DaySnapshot, error) {
	return storage.DaySnapshot{}, nil
}
func (nopRemote) LoadTemplates(context.Context, int) ([]models.WorkoutTemplate, error) {
	return nil, nil
}
func (nopRemote) SaveMeal(context.Context, int, string, models.MealEntry) error    { return nil }
func (nopRemote) DeleteMeal(context.Context, int, string) error                    { return nil }
func (nopRemote) SaveWorkout(context.Context, int, models.Workout) error           { return nil }
func (nopRemote) SaveTemplate(context.Context, int, models.WorkoutTemplate) error  { return nil }
func (nopRemote) UpdateTemplate(context.Context, int, models.WorkoutTemplate) error { return nil }
func (nopRemote) DeleteTemplate(context.Context, int, string) error                { return nil }
func (nopRemote) ListFoods(context.Context, int) ([]models.Food, error)            { return nil, nil }
func (nopRemote) SaveFood(context.Context, int, models.Food) error                 { return nil }
func (nopRemote) DeleteFood(context.Context, int, string) error                    { return nil }

const testKey = "test-key"

func newTestServer(t *testing.T) *Server {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.New(session.NewStore(), session.NewRestTimerEngine(90), nopRemote{}, nil, service.Config{}, log)
	t.Cleanup(svc.Close)
	return New(svc, testKey, log)
}

func doJSON(t *testing.T, srv *Server, method, path string, body any, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if authed {
		req.Header.Set("X-API-Key", testKey)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

// TestMutationRequiresAPIKey verifies that mutating routes reject requests
// without the key while read routes stay open.
func TestMutationRequiresAPIKey(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/session/workout", map[string]string{"name": "Push"}, false)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated mutation = %d, want 401", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/session", nil, false)
	if rec.Code != http.StatusOK {
		t.Errorf("unauthenticated read = %d, want 200", rec.Code)
	}
}

// TestSessionFlow drives a full workout through the HTTP surface: start,
// add exercise, add set, patch set, finish.
func TestSessionFlow(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/session/workout", map[string]string{"name": "Push"}, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("start = %d: %s", rec.Code, rec.Body)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/session/exercises",
		map[string]string{"exercise_id": "press-banca", "exercise_name": "Press de banca"}, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("add exercise = %d: %s", rec.Code, rec.Body)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/session/exercises/0/sets", nil, true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add set = %d: %s", rec.Code, rec.Body)
	}
	var set models.WorkoutSet
	if err := json.Unmarshal(rec.Body.Bytes(), &set); err != nil {
		t.Fatal(err)
	}
	if set.ID == "" {
		t.Error("created set has no id")
	}

	rec = doJSON(t, srv, http.MethodPatch, "/api/v1/session/exercises/0/sets/0",
		map[string]any{"reps": 10, "weight": 80.0, "completed": true}, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("patch set = %d: %s", rec.Code, rec.Body)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/session/finish", nil, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("finish = %d: %s", rec.Code, rec.Body)
	}

	// Session endpoint reports idle again
	rec = doJSON(t, srv, http.MethodGet, "/api/v1/session", nil, false)
	var state struct {
		Active bool `json:"active"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &state); err != nil {
		t.Fatal(err)
	}
	if state.Active {
		t.Error("session still active after finish")
	}
}

// TestErrorStatusMapping verifies the error taxonomy makes it to HTTP: 409
// for conflicts, 400 for validation, 404 for unknowns.
func TestErrorStatusMapping(t *testing.T) {
	srv := newTestServer(t)

	// Finish with nothing active: 409
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/session/finish", nil, true)
	if rec.Code != http.StatusConflict {
		t.Errorf("finish with no session = %d, want 409", rec.Code)
	}

	// Empty workout name: 400
	rec = doJSON(t, srv, http.MethodPost, "/api/v1/session/workout", map[string]string{"name": " "}, true)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("blank name = %d, want 400", rec.Code)
	}

	// Double start: 409
	doJSON(t, srv, http.MethodPost, "/api/v1/session/workout", map[string]string{"name": "Push"}, true)
	rec = doJSON(t, srv, http.MethodPost, "/api/v1/session/workout", map[string]string{"name": "Pull"}, true)
	if rec.Code != http.StatusConflict {
		t.Errorf("double start = %d, want 409", rec.Code)
	}

	// Unknown template: 404
	rec = doJSON(t, srv, http.MethodPost, "/api/v1/session/from-template/nope", nil, true)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown template = %d, want 404", rec.Code)
	}

	// Non-numeric index: 400
	rec = doJSON(t, srv, http.MethodPost, "/api/v1/session/exercises/abc/sets", nil, true)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad index = %d, want 400", rec.Code)
	}
}

// TestMealRoutes verifies adding and removing a meal through the HTTP
// surface, including macro snapshotting in the response.
func TestMealRoutes(t *testing.T) {
	srv := newTestServer(t)
	srv.svc.Sessions().SetFoods([]models.Food{
		{ID: "f1", Name: "Arroz", Calories: 130, Protein: 2.7, Carbs: 28, Fat: 0.3},
	})

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/days/2024-04-01/meals",
		map[string]any{"food_id": "f1", "grams": 200.0, "meal_type": "comida"}, true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add meal = %d: %s", rec.Code, rec.Body)
	}
	var entry models.MealEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &entry); err != nil {
		t.Fatal(err)
	}
	if entry.Calories != 260 {
		t.Errorf("calories = %.1f, want 260", entry.Calories)
	}

	rec = doJSON(t, srv, http.MethodDelete, "/api/v1/days/2024-04-01/meals/"+entry.ID, nil, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("remove meal = %d: %s", rec.Code, rec.Body)
	}

	// Unknown food: 404
	rec = doJSON(t, srv, http.MethodPost, "/api/v1/days/2024-04-01/meals",
		map[string]any{"food_id": "missing", "grams": 100.0, "meal_type": "comida"}, true)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown food = %d, want 404", rec.Code)
	}
}

// TestActivityRoute verifies logging a free-form activity.
func TestActivityRoute(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/days/2024-04-01/activities",
		map[string]any{
			"name":     "Carrera",
			"activity": map[string]any{"kind": "correr", "duration_min": 40, "distance_km": 8.5},
		}, true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("log activity = %d: %s", rec.Code, rec.Body)
	}
	var w models.Workout
	if err := json.Unmarshal(rec.Body.Bytes(), &w); err != nil {
		t.Fatal(err)
	}
	if w.Type != models.TypeActivity || w.Activity == nil {
		t.Errorf("workout = %+v, want activity type", w)
	}
}

// TestTimerRoutes verifies the timer lifecycle over HTTP.
func TestTimerRoutes(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/timer/start",
		map[string]string{"exercise_id": "press-banca"}, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("start timer = %d: %s", rec.Code, rec.Body)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/timer/add", map[string]int{"delta": 30}, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("add time = %d: %s", rec.Code, rec.Body)
	}
	var state struct {
		Running bool                  `json:"running"`
		Timer   models.RestTimerState `json:"timer"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &state); err != nil {
		t.Fatal(err)
	}
	if !state.Running || state.Timer.RemainingSeconds != 120 {
		t.Errorf("timer state = %+v, want running with 120s remaining", state)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/timer/stop", nil, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("stop timer = %d", rec.Code)
	}
	rec = doJSON(t, srv, http.MethodGet, "/api/v1/timer", nil, false)
	var idle struct {
		Running bool `json:"running"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &idle); err != nil {
		t.Fatal(err)
	}
	if idle.Running {
		t.Error("timer still running after stop")
	}
}

// TestTemplateAndStatsRoutes verifies template creation plus the stats
// endpoints over a committed workout.
func TestTemplateAndStatsRoutes(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/templates", models.WorkoutTemplate{Name: "Empuje"}, true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create template = %d: %s", rec.Code, rec.Body)
	}
	rec = doJSON(t, srv, http.MethodPost, "/api/v1/templates", models.WorkoutTemplate{Name: "empuje"}, true)
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate template = %d, want 409", rec.Code)
	}

	// Commit one workout so the stats have input
	doJSON(t, srv, http.MethodPost, "/api/v1/session/workout", map[string]string{"name": "Push"}, true)
	doJSON(t, srv, http.MethodPost, "/api/v1/session/exercises",
		map[string]string{"exercise_id": "press-banca", "exercise_name": "Press de banca"}, true)
	doJSON(t, srv, http.MethodPost, "/api/v1/session/exercises/0/sets", nil, true)
	doJSON(t, srv, http.MethodPatch, "/api/v1/session/exercises/0/sets/0",
		map[string]any{"reps": 10, "weight": 80.0, "completed": true}, true)
	doJSON(t, srv, http.MethodPost, "/api/v1/session/finish", nil, true)

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/stats/records", nil, false)
	if rec.Code != http.StatusOK {
		t.Fatalf("records = %d", rec.Code)
	}
	var records []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Errorf("records = %+v, want one entry", records)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/stats/muscles", nil, false)
	if rec.Code != http.StatusOK {
		t.Fatalf("muscles = %d", rec.Code)
	}
	rec = doJSON(t, srv, http.MethodGet, "/api/v1/stats/volume", nil, false)
	if rec.Code != http.StatusOK {
		t.Fatalf("volume = %d", rec.Code)
	}
}

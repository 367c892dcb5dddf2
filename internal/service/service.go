// Package service coordinates the in-memory session store with the remote
// persistence collaborator: load-on-start hydration, per-mutation
// write-through, optimistic rollback on name collisions, and the debounced
// template auto-sync.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/session"
	"github.com/meltforce/liftlog/internal/storage"
)

// ErrSyncFailed wraps remote write failures. The local mutation is retained;
// only name collisions trigger a rollback (see CreateTemplate/CreateFood).
var ErrSyncFailed = errors.New("remote sync failed")

// RemoteStore abstracts the persistence collaborator. *storage.DB satisfies
// it for production; tests use an in-memory fake.
type RemoteStore interface {
	LoadDay(ctx context.Context, userID int, date string) (storage.DaySnapshot, error)
	LoadTemplates(ctx context.Context, userID int) ([]models.WorkoutTemplate, error)
	SaveMeal(ctx context.Context, userID int, date string, e models.MealEntry) error
	DeleteMeal(ctx context.Context, userID int, id string) error
	SaveWorkout(ctx context.Context, userID int, w models.Workout) error
	SaveTemplate(ctx context.Context, userID int, t models.WorkoutTemplate) error
	UpdateTemplate(ctx context.Context, userID int, t models.WorkoutTemplate) error
	DeleteTemplate(ctx context.Context, userID int, id string) error
	ListFoods(ctx context.Context, userID int) ([]models.Food, error)
	SaveFood(ctx context.Context, userID int, f models.Food) error
	DeleteFood(ctx context.Context, userID int, id string) error
}

// Compile-time check: *storage.DB satisfies RemoteStore.
var _ RemoteStore = (*storage.DB)(nil)

// Config carries service tunables.
type Config struct {
	UserID int
	// TemplateSyncDebounce is the quiescence window for mirroring a
	// template-linked workout back into its template.
	TemplateSyncDebounce time.Duration
	// RemoteTimeout bounds the background write fired by the debounce timer.
	RemoteTimeout time.Duration
}

// Service ties the session store, the rest timer, the remote store and the
// crash-recovery snapshot together.
type Service struct {
	sessions *session.Store
	timer    *session.RestTimerEngine
	remote   RemoteStore
	snapshot *session.SnapshotDB // nil disables snapshots
	log      *slog.Logger
	cfg      Config

	mu        sync.Mutex
	syncTimer *time.Timer
	closed    bool
}

// New creates a Service. snapshot may be nil.
func New(sessions *session.Store, timer *session.RestTimerEngine, remote RemoteStore, snapshot *session.SnapshotDB, cfg Config, log *slog.Logger) *Service {
	if cfg.UserID == 0 {
		cfg.UserID = 1
	}
	if cfg.TemplateSyncDebounce == 0 {
		cfg.TemplateSyncDebounce = time.Second
	}
	if cfg.RemoteTimeout == 0 {
		cfg.RemoteTimeout = 10 * time.Second
	}
	return &Service{
		sessions: sessions,
		timer:    timer,
		remote:   remote,
		snapshot: snapshot,
		log:      log,
		cfg:      cfg,
	}
}

// Sessions exposes the underlying store for read access.
func (s *Service) Sessions() *session.Store { return s.sessions }

// Timer exposes the rest timer engine.
func (s *Service) Timer() *session.RestTimerEngine { return s.timer }

// Close cancels any pending template sync. Pending edits are not flushed;
// the next mount reloads from the remote store.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.syncTimer != nil {
		s.syncTimer.Stop()
		s.syncTimer = nil
	}
}

// --- Hydration ---

// LoadDay fetches the day from the remote store and hydrates the session
// store for it.
func (s *Service) LoadDay(ctx context.Context, date string) (models.DayLog, error) {
	snap, err := s.remote.LoadDay(ctx, s.cfg.UserID, date)
	if err != nil {
		return models.DayLog{}, fmt.Errorf("loading day %s: %w", date, err)
	}
	s.sessions.HydrateDay(date, snap.Meals, snap.Workout)
	return s.sessions.Day(date), nil
}

// LoadCatalogs fetches templates and foods and hydrates the session store.
func (s *Service) LoadCatalogs(ctx context.Context) error {
	templates, err := s.remote.LoadTemplates(ctx, s.cfg.UserID)
	if err != nil {
		return fmt.Errorf("loading templates: %w", err)
	}
	s.sessions.SetTemplates(templates)

	foods, err := s.remote.ListFoods(ctx, s.cfg.UserID)
	if err != nil {
		return fmt.Errorf("loading foods: %w", err)
	}
	s.sessions.SetFoods(foods)
	return nil
}

// RestoreSnapshot puts a surviving crash-recovery snapshot back into the
// active slot. No-op without a snapshot DB or a saved session.
func (s *Service) RestoreSnapshot() error {
	if s.snapshot == nil {
		return nil
	}
	w, kind, ok, err := s.snapshot.Load()
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if err := s.sessions.RestoreSession(w, kind); err != nil {
		return err
	}
	s.log.Info("restored session snapshot", "workout", w.Name, "kind", string(kind))
	return nil
}

// --- Active session ---

// StartWorkout opens a new workout authoring session.
func (s *Service) StartWorkout(name string) error {
	if err := s.sessions.StartWorkout(name); err != nil {
		return err
	}
	s.noteSessionEdit()
	return nil
}

// StartTemplate opens a new template authoring session.
func (s *Service) StartTemplate(name, description string) error {
	if err := s.sessions.StartTemplate(name, description); err != nil {
		return err
	}
	s.noteSessionEdit()
	return nil
}

// StartWorkoutFromTemplate seeds a workout from the template with the given
// id.
func (s *Service) StartWorkoutFromTemplate(templateID string) error {
	t, ok := s.sessions.TemplateByID(templateID)
	if !ok {
		return fmt.Errorf("%w: template %s", session.ErrNotFound, templateID)
	}
	if err := s.sessions.StartWorkoutFromTemplate(t); err != nil {
		return err
	}
	s.noteSessionEdit()
	return nil
}

// AddExercise appends an exercise to the active session.
func (s *Service) AddExercise(exerciseID, exerciseName string) error {
	if err := s.sessions.AddExercise(exerciseID, exerciseName); err != nil {
		return err
	}
	s.noteSessionEdit()
	return nil
}

// AddSet appends a set to the exercise at the given index.
func (s *Service) AddSet(exIndex int) (models.WorkoutSet, error) {
	set, err := s.sessions.AddSet(exIndex)
	if err != nil {
		return models.WorkoutSet{}, err
	}
	s.noteSessionEdit()
	return set, nil
}

// UpdateSet applies a partial update to a set.
func (s *Service) UpdateSet(exIndex, setIndex int, patch session.SetPatch) error {
	if err := s.sessions.UpdateSet(exIndex, setIndex, patch); err != nil {
		return err
	}
	s.noteSessionEdit()
	return nil
}

// RemoveSet removes a set by position.
func (s *Service) RemoveSet(exIndex, setIndex int) error {
	if err := s.sessions.RemoveSet(exIndex, setIndex); err != nil {
		return err
	}
	s.noteSessionEdit()
	return nil
}

// RemoveExercise removes an exercise by position.
func (s *Service) RemoveExercise(exIndex int) error {
	if err := s.sessions.RemoveExercise(exIndex); err != nil {
		return err
	}
	s.noteSessionEdit()
	return nil
}

// FinishWorkout commits the active session. A finished workout is written
// through to the remote store in full; a finished template is added to the
// template list and written through, rolling back the local add if the
// remote reports a name collision.
func (s *Service) FinishWorkout(ctx context.Context) (session.FinishResult, error) {
	// Pre-check template name collisions before the slot is cleared so the
	// authoring work is not lost on a rejected name.
	if active, kind, ok := s.sessions.Active(); ok && kind == session.KindTemplate {
		if s.sessions.TemplateNameExists(active.Name) {
			return session.FinishResult{}, fmt.Errorf("template %q: %w", active.Name, storage.ErrNameCollision)
		}
	}

	result, err := s.sessions.FinishWorkout()
	if err != nil {
		return session.FinishResult{}, err
	}
	s.cancelTemplateSync()
	s.clearSnapshot()

	switch {
	case result.Workout != nil:
		if err := s.remote.SaveWorkout(ctx, s.cfg.UserID, *result.Workout); err != nil {
			s.log.Error("workout write-through failed", "workout", result.Workout.ID, "error", err)
			return result, fmt.Errorf("%w: %v", ErrSyncFailed, err)
		}
	case result.Template != nil:
		s.sessions.AddTemplate(*result.Template)
		if err := s.remote.SaveTemplate(ctx, s.cfg.UserID, *result.Template); err != nil {
			if errors.Is(err, storage.ErrNameCollision) {
				_ = s.sessions.DeleteTemplate(result.Template.ID)
				return result, err
			}
			s.log.Error("template write-through failed", "template", result.Template.ID, "error", err)
			return result, fmt.Errorf("%w: %v", ErrSyncFailed, err)
		}
	}
	return result, nil
}

// CancelWorkout discards the active session. Idempotent.
func (s *Service) CancelWorkout() {
	s.sessions.CancelWorkout()
	s.cancelTemplateSync()
	s.clearSnapshot()
}

// --- Meals ---

// AddMeal resolves the food by id, snapshots its macros for the given grams
// and writes the entry through.
func (s *Service) AddMeal(ctx context.Context, date, foodID string, grams float64, mealType models.MealType) (models.MealEntry, error) {
	var food models.Food
	found := false
	for _, f := range s.sessions.Foods() {
		if f.ID == foodID {
			food, found = f, true
			break
		}
	}
	if !found {
		return models.MealEntry{}, fmt.Errorf("%w: food %s", session.ErrNotFound, foodID)
	}

	entry := models.NewMealEntry(uuid.NewString(), food, grams, mealType)
	if err := s.sessions.AddMealEntry(date, entry); err != nil {
		return models.MealEntry{}, err
	}
	if err := s.remote.SaveMeal(ctx, s.cfg.UserID, date, entry); err != nil {
		s.log.Error("meal write-through failed", "meal", entry.ID, "error", err)
		return entry, fmt.Errorf("%w: %v", ErrSyncFailed, err)
	}
	return entry, nil
}

// RemoveMeal removes a meal entry locally and writes the delete through.
func (s *Service) RemoveMeal(ctx context.Context, date, id string) error {
	if err := s.sessions.RemoveMealEntry(date, id); err != nil {
		return err
	}
	if err := s.remote.DeleteMeal(ctx, s.cfg.UserID, id); err != nil {
		s.log.Error("meal delete write-through failed", "meal", id, "error", err)
		return fmt.Errorf("%w: %v", ErrSyncFailed, err)
	}
	return nil
}

// --- Activities ---

// LogActivity records a free-form activity workout and writes it through.
func (s *Service) LogActivity(ctx context.Context, date, name string, act models.ActivitySession) (models.Workout, error) {
	w, err := s.sessions.LogActivity(date, name, act)
	if err != nil {
		return models.Workout{}, err
	}
	if err := s.remote.SaveWorkout(ctx, s.cfg.UserID, w); err != nil {
		s.log.Error("activity write-through failed", "workout", w.ID, "error", err)
		return w, fmt.Errorf("%w: %v", ErrSyncFailed, err)
	}
	return w, nil
}

// --- Templates ---

// CreateTemplate adds a template. Collisions are rejected locally before the
// remote write; if the remote still reports one, the optimistic local add is
// rolled back.
func (s *Service) CreateTemplate(ctx context.Context, t models.WorkoutTemplate) error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: empty template name", session.ErrValidation)
	}
	if s.sessions.TemplateNameExists(t.Name) {
		return fmt.Errorf("template %q: %w", t.Name, storage.ErrNameCollision)
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}

	s.sessions.AddTemplate(t)
	if err := s.remote.SaveTemplate(ctx, s.cfg.UserID, t); err != nil {
		if errors.Is(err, storage.ErrNameCollision) {
			_ = s.sessions.DeleteTemplate(t.ID)
			return err
		}
		s.log.Error("template write-through failed", "template", t.ID, "error", err)
		return fmt.Errorf("%w: %v", ErrSyncFailed, err)
	}
	return nil
}

// UpdateTemplate replaces a template by id and writes it through.
func (s *Service) UpdateTemplate(ctx context.Context, t models.WorkoutTemplate) error {
	if err := s.sessions.UpdateTemplate(t); err != nil {
		return err
	}
	if err := s.remote.UpdateTemplate(ctx, s.cfg.UserID, t); err != nil {
		s.log.Error("template update write-through failed", "template", t.ID, "error", err)
		return fmt.Errorf("%w: %v", ErrSyncFailed, err)
	}
	return nil
}

// DeleteTemplate removes a template and writes the delete through.
func (s *Service) DeleteTemplate(ctx context.Context, id string) error {
	if err := s.sessions.DeleteTemplate(id); err != nil {
		return err
	}
	if err := s.remote.DeleteTemplate(ctx, s.cfg.UserID, id); err != nil {
		s.log.Error("template delete write-through failed", "template", id, "error", err)
		return fmt.Errorf("%w: %v", ErrSyncFailed, err)
	}
	return nil
}

// --- Foods ---

// CreateFood adds a custom food with the same collision discipline as
// templates: local pre-check, optimistic add, rollback on remote collision.
func (s *Service) CreateFood(ctx context.Context, f models.Food) error {
	if strings.TrimSpace(f.Name) == "" {
		return fmt.Errorf("%w: empty food name", session.ErrValidation)
	}
	if f.Calories < 0 || f.Protein < 0 || f.Carbs < 0 || f.Fat < 0 {
		return fmt.Errorf("%w: negative macros", session.ErrValidation)
	}
	if s.sessions.FoodNameExists(f.Name) {
		return fmt.Errorf("food %q: %w", f.Name, storage.ErrNameCollision)
	}
	if f.ID == "" {
		f.ID = uuid.NewString()
	}

	s.sessions.AddFood(f)
	if err := s.remote.SaveFood(ctx, s.cfg.UserID, f); err != nil {
		if errors.Is(err, storage.ErrNameCollision) {
			_ = s.sessions.DeleteFood(f.ID)
			return err
		}
		s.log.Error("food write-through failed", "food", f.ID, "error", err)
		return fmt.Errorf("%w: %v", ErrSyncFailed, err)
	}
	return nil
}

// --- Template auto-sync and snapshots ---

// noteSessionEdit runs after every local session mutation: it saves the
// crash-recovery snapshot and, when the active workout is linked to a
// template, arms (or re-arms) the coalescing sync timer so a burst of edits
// becomes a single remote write after the quiescence window.
func (s *Service) noteSessionEdit() {
	active, kind, ok := s.sessions.Active()
	if !ok {
		s.clearSnapshot()
		return
	}

	if s.snapshot != nil {
		if err := s.snapshot.Save(active, kind); err != nil {
			s.log.Warn("session snapshot save failed", "error", err)
		}
	}

	if kind != session.KindWorkout || active.ActiveTemplateID == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.syncTimer != nil {
		s.syncTimer.Stop()
	}
	s.syncTimer = time.AfterFunc(s.cfg.TemplateSyncDebounce, s.flushTemplateSync)
}

// flushTemplateSync mirrors the active workout's exercises into its linked
// template and writes the template through. Fired by the debounce timer.
func (s *Service) flushTemplateSync() {
	s.mu.Lock()
	s.syncTimer = nil
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return
	}

	active, kind, ok := s.sessions.Active()
	if !ok || kind != session.KindWorkout || active.ActiveTemplateID == "" {
		return
	}
	t, found := s.sessions.TemplateByID(active.ActiveTemplateID)
	if !found {
		return
	}

	t.Exercises = mirrorExercises(active.Exercises)
	if err := s.sessions.UpdateTemplate(t); err != nil {
		s.log.Warn("template auto-sync local update failed", "template", t.ID, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.RemoteTimeout)
	defer cancel()
	if err := s.remote.UpdateTemplate(ctx, s.cfg.UserID, t); err != nil {
		s.log.Warn("template auto-sync write failed", "template", t.ID, "error", err)
	}
}

// cancelTemplateSync stops a pending coalesced write without firing it.
func (s *Service) cancelTemplateSync() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.syncTimer != nil {
		s.syncTimer.Stop()
		s.syncTimer = nil
	}
}

func (s *Service) clearSnapshot() {
	if s.snapshot == nil {
		return
	}
	if err := s.snapshot.Clear(); err != nil {
		s.log.Warn("session snapshot clear failed", "error", err)
	}
}

// mirrorExercises converts workout exercises into template shape, dropping
// completion state.
func mirrorExercises(exercises []models.WorkoutExercise) []models.TemplateExercise {
	out := make([]models.TemplateExercise, len(exercises))
	for i, ex := range exercises {
		sets := make([]models.TemplateSet, len(ex.Sets))
		for j, set := range ex.Sets {
			sets[j] = models.TemplateSet{ID: set.ID, Reps: set.Reps, Weight: set.Weight}
		}
		out[i] = models.TemplateExercise{
			ID:           ex.ID,
			ExerciseID:   ex.ExerciseID,
			ExerciseName: ex.ExerciseName,
			Sets:         sets,
		}
	}
	return out
}

package session

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/liftlog/internal/models"
)

// Kind is what the active slot is authoring: a workout being logged or a
// template being built.
type Kind string

const (
	KindWorkout  Kind = "workout"
	KindTemplate Kind = "template"
)

// Store holds the in-memory tracking state: the single active authoring
// session, the day-indexed log of meals and workouts, the reusable template
// list and the food catalog. All mutations are synchronous and in-memory;
// persistence is the caller's concern (see the service package).
//
// Store is an explicit handle, not a global, so tests can run independent
// instances in parallel. It is safe for concurrent use.
type Store struct {
	mu sync.Mutex

	now func() time.Time

	active *models.Workout
	kind   Kind
	// templateDescription rides along while kind == KindTemplate; the
	// workout shell's Name field doubles as the template name.
	templateDescription string

	dayLogs   map[string]*models.DayLog
	templates []models.WorkoutTemplate
	foods     []models.Food
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		now:     time.Now,
		dayLogs: make(map[string]*models.DayLog),
	}
}

func newID() string { return uuid.NewString() }

// --- Active session lifecycle ---

// StartWorkout opens a new strength workout in the active slot, dated today.
// Fails with ErrSessionActive if a session is already being authored.
func (s *Store) StartWorkout(name string) error {
	return s.start(name, "", KindWorkout)
}

// StartTemplate opens a new template-authoring session in the active slot.
func (s *Store) StartTemplate(name, description string) error {
	return s.start(name, description, KindTemplate)
}

func (s *Store) start(name, description string, kind Kind) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active != nil {
		return ErrSessionActive
	}

	s.active = &models.Workout{
		ID:        newID(),
		Date:      s.now().Format("2006-01-02"),
		Name:      name,
		Type:      models.TypeExercises,
		Exercises: []models.WorkoutExercise{},
	}
	s.kind = kind
	s.templateDescription = description
	return nil
}

// StartWorkoutFromTemplate opens a workout seeded from t. Exercises and sets
// are deep-copied with fresh identities so editing the instance never mutates
// the template, every set starts uncompleted, and the session is linked to
// the template for auto-sync.
func (s *Store) StartWorkoutFromTemplate(t models.WorkoutTemplate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active != nil {
		return ErrSessionActive
	}

	exercises := make([]models.WorkoutExercise, len(t.Exercises))
	for i, te := range t.Exercises {
		sets := make([]models.WorkoutSet, len(te.Sets))
		for j, ts := range te.Sets {
			sets[j] = models.WorkoutSet{
				ID:     newID(),
				Reps:   ts.Reps,
				Weight: ts.Weight,
			}
		}
		exercises[i] = models.WorkoutExercise{
			ID:           newID(),
			ExerciseID:   te.ExerciseID,
			ExerciseName: te.ExerciseName,
			Sets:         sets,
		}
	}

	s.active = &models.Workout{
		ID:               newID(),
		Date:             s.now().Format("2006-01-02"),
		Name:             t.Name,
		Type:             models.TypeExercises,
		Exercises:        exercises,
		ActiveTemplateID: t.ID,
	}
	s.kind = KindWorkout
	return nil
}

// AddExercise appends an exercise with an empty set list to the active
// session.
func (s *Store) AddExercise(exerciseID, exerciseName string) error {
	exerciseName = strings.TrimSpace(exerciseName)
	if exerciseName == "" {
		return fmt.Errorf("%w: empty exercise name", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return ErrNoActiveSession
	}

	s.active.Exercises = append(s.active.Exercises, models.WorkoutExercise{
		ID:           newID(),
		ExerciseID:   exerciseID,
		ExerciseName: exerciseName,
		Sets:         []models.WorkoutSet{},
	})
	return nil
}

// AddSet appends a set to the exercise at index, pre-filling reps and weight
// from the previous set in that exercise (zero when it is the first).
func (s *Store) AddSet(exIndex int) (models.WorkoutSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return models.WorkoutSet{}, ErrNoActiveSession
	}
	if exIndex < 0 || exIndex >= len(s.active.Exercises) {
		return models.WorkoutSet{}, fmt.Errorf("%w: exercise index %d", ErrNotFound, exIndex)
	}

	ex := &s.active.Exercises[exIndex]
	set := models.WorkoutSet{ID: newID()}
	if n := len(ex.Sets); n > 0 {
		set.Reps = ex.Sets[n-1].Reps
		set.Weight = ex.Sets[n-1].Weight
	}
	ex.Sets = append(ex.Sets, set)
	return set, nil
}

// SetPatch carries the fields of a set update. Nil fields are preserved.
type SetPatch struct {
	Reps      *int     `json:"reps,omitempty"`
	Weight    *float64 `json:"weight,omitempty"`
	Completed *bool    `json:"completed,omitempty"`
}

// UpdateSet shallow-merges patch into the target set. Negative reps or
// weight are rejected with ErrValidation.
func (s *Store) UpdateSet(exIndex, setIndex int, patch SetPatch) error {
	if patch.Reps != nil && *patch.Reps < 0 {
		return fmt.Errorf("%w: negative reps", ErrValidation)
	}
	if patch.Weight != nil && *patch.Weight < 0 {
		return fmt.Errorf("%w: negative weight", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return ErrNoActiveSession
	}
	if exIndex < 0 || exIndex >= len(s.active.Exercises) {
		return fmt.Errorf("%w: exercise index %d", ErrNotFound, exIndex)
	}
	ex := &s.active.Exercises[exIndex]
	if setIndex < 0 || setIndex >= len(ex.Sets) {
		return fmt.Errorf("%w: set index %d", ErrNotFound, setIndex)
	}

	set := &ex.Sets[setIndex]
	if patch.Reps != nil {
		set.Reps = *patch.Reps
	}
	if patch.Weight != nil {
		set.Weight = *patch.Weight
	}
	if patch.Completed != nil {
		set.Completed = *patch.Completed
	}
	return nil
}

// RemoveSet removes the set at setIndex from the exercise at exIndex.
func (s *Store) RemoveSet(exIndex, setIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return ErrNoActiveSession
	}
	if exIndex < 0 || exIndex >= len(s.active.Exercises) {
		return fmt.Errorf("%w: exercise index %d", ErrNotFound, exIndex)
	}
	ex := &s.active.Exercises[exIndex]
	if setIndex < 0 || setIndex >= len(ex.Sets) {
		return fmt.Errorf("%w: set index %d", ErrNotFound, setIndex)
	}
	ex.Sets = append(ex.Sets[:setIndex], ex.Sets[setIndex+1:]...)
	return nil
}

// RemoveExercise removes the exercise at index by position.
func (s *Store) RemoveExercise(exIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return ErrNoActiveSession
	}
	if exIndex < 0 || exIndex >= len(s.active.Exercises) {
		return fmt.Errorf("%w: exercise index %d", ErrNotFound, exIndex)
	}
	s.active.Exercises = append(s.active.Exercises[:exIndex], s.active.Exercises[exIndex+1:]...)
	return nil
}

// FinishResult is the outcome of FinishWorkout: exactly one of the fields is
// set, depending on what the active slot was authoring.
type FinishResult struct {
	Workout  *models.Workout
	Template *models.WorkoutTemplate
}

// FinishWorkout commits the active session. A workout session is appended to
// its day's log (the DayLog is created lazily); a template session is turned
// into a WorkoutTemplate and returned without touching day logs. In both
// cases the active slot returns to empty. Finishing with an empty slot is a
// typed failure and leaves day logs unchanged.
func (s *Store) FinishWorkout() (FinishResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return FinishResult{}, ErrNoActiveSession
	}

	w := s.active
	kind := s.kind
	s.active = nil
	s.kind = ""

	if kind == KindTemplate {
		t := &models.WorkoutTemplate{
			ID:          w.ID,
			Name:        w.Name,
			Description: s.templateDescription,
			Exercises:   toTemplateExercises(w.Exercises),
		}
		s.templateDescription = ""
		return FinishResult{Template: t}, nil
	}

	log := s.dayLogLocked(w.Date)
	log.Workouts = append(log.Workouts, *w)
	return FinishResult{Workout: copyWorkout(w)}, nil
}

// CancelWorkout clears the active slot unconditionally, discarding any
// uncommitted edits. Calling it with an empty slot is a no-op, which makes
// it idempotent.
func (s *Store) CancelWorkout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = nil
	s.kind = ""
	s.templateDescription = ""
}

// Active returns a deep copy of the active session and its kind. The bool is
// false when the slot is empty.
func (s *Store) Active() (*models.Workout, Kind, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return nil, "", false
	}
	return copyWorkout(s.active), s.kind, true
}

// RestoreSession places a previously snapshotted session back into the
// active slot. Used on startup for crash recovery.
func (s *Store) RestoreSession(w *models.Workout, kind Kind) error {
	if w == nil {
		return fmt.Errorf("%w: nil workout", ErrValidation)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active != nil {
		return ErrSessionActive
	}
	s.active = copyWorkout(w)
	s.kind = kind
	return nil
}

// --- Activities ---

// LogActivity appends a free-form activity workout directly to the day's
// log. Activities are not authored through the active slot; the exercises
// and activity branches stay mutually exclusive by construction.
func (s *Store) LogActivity(date, name string, act models.ActivitySession) (models.Workout, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Workout{}, fmt.Errorf("%w: empty name", ErrValidation)
	}
	if act.DurationMin < 0 || act.DistanceKm < 0 {
		return models.Workout{}, fmt.Errorf("%w: negative activity values", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	w := models.Workout{
		ID:          newID(),
		Date:        date,
		Name:        name,
		Type:        models.TypeActivity,
		Activity:    &act,
		DurationMin: act.DurationMin,
	}
	log := s.dayLogLocked(date)
	log.Workouts = append(log.Workouts, w)
	return w, nil
}

// --- Meals ---

// AddMealEntry appends a meal entry to the day's log, creating the DayLog
// lazily.
func (s *Store) AddMealEntry(date string, e models.MealEntry) error {
	if date == "" {
		return fmt.Errorf("%w: empty date", ErrValidation)
	}
	if e.Grams <= 0 {
		return fmt.Errorf("%w: grams must be positive", ErrValidation)
	}
	if !models.ValidMealType(e.MealType) {
		return fmt.Errorf("%w: unknown meal type %q", ErrValidation, e.MealType)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	log := s.dayLogLocked(date)
	log.Meals = append(log.Meals, e)
	return nil
}

// RemoveMealEntry removes the entry with the given id from the day's meals.
// The DayLog record itself is kept even when it ends up empty.
func (s *Store) RemoveMealEntry(date, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	log, ok := s.dayLogs[date]
	if !ok {
		return fmt.Errorf("%w: no log for %s", ErrNotFound, date)
	}
	for i, m := range log.Meals {
		if m.ID == id {
			log.Meals = append(log.Meals[:i], log.Meals[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: meal %s", ErrNotFound, id)
}

// Day returns a deep copy of the day's log, or an empty log with the date
// set when nothing has been recorded yet.
func (s *Store) Day(date string) models.DayLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	log, ok := s.dayLogs[date]
	if !ok {
		return models.DayLog{Date: date}
	}
	return copyDayLog(log)
}

// AllWorkouts returns a copy of every committed workout across all days.
// Input for the stats package.
func (s *Store) AllWorkouts() []models.Workout {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Workout
	for _, log := range s.dayLogs {
		for i := range log.Workouts {
			out = append(out, *copyWorkout(&log.Workouts[i]))
		}
	}
	return out
}

// HydrateDay replaces the day's log with data loaded from the remote store.
func (s *Store) HydrateDay(date string, meals []models.MealEntry, workout *models.Workout) {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := &models.DayLog{Date: date, Meals: append([]models.MealEntry(nil), meals...)}
	if workout != nil {
		log.Workouts = []models.Workout{*copyWorkout(workout)}
	}
	s.dayLogs[date] = log
}

// --- Templates ---

// AddTemplate appends t to the template list. Name uniqueness is a caller
// precondition (see service.CreateTemplate); the store does not enforce it.
func (s *Store) AddTemplate(t models.WorkoutTemplate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates = append(s.templates, copyTemplate(t))
}

// UpdateTemplate replaces the template with the same ID.
func (s *Store) UpdateTemplate(t models.WorkoutTemplate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.templates {
		if s.templates[i].ID == t.ID {
			s.templates[i] = copyTemplate(t)
			return nil
		}
	}
	return fmt.Errorf("%w: template %s", ErrNotFound, t.ID)
}

// DeleteTemplate removes the template with the given id.
func (s *Store) DeleteTemplate(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.templates {
		if s.templates[i].ID == id {
			s.templates = append(s.templates[:i], s.templates[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: template %s", ErrNotFound, id)
}

// Templates returns a deep copy of the template list.
func (s *Store) Templates() []models.WorkoutTemplate {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.WorkoutTemplate, len(s.templates))
	for i, t := range s.templates {
		out[i] = copyTemplate(t)
	}
	return out
}

// TemplateByID looks up a template by id.
func (s *Store) TemplateByID(id string) (models.WorkoutTemplate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.templates {
		if t.ID == id {
			return copyTemplate(t), true
		}
	}
	return models.WorkoutTemplate{}, false
}

// TemplateNameExists reports whether a template with the given name exists,
// compared case-insensitively after trimming.
func (s *Store) TemplateNameExists(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.templates {
		if strings.ToLower(strings.TrimSpace(t.Name)) == name {
			return true
		}
	}
	return false
}

// SetTemplates replaces the template list with data loaded from the remote
// store.
func (s *Store) SetTemplates(templates []models.WorkoutTemplate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates = make([]models.WorkoutTemplate, len(templates))
	for i, t := range templates {
		s.templates[i] = copyTemplate(t)
	}
}

// --- Foods ---

// AddFood appends a food to the catalog. Name uniqueness is a caller
// precondition, matching templates.
func (s *Store) AddFood(f models.Food) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.foods = append(s.foods, f)
}

// DeleteFood removes the food with the given id. Used by the service to roll
// back an optimistic add when the remote insert reports a collision.
func (s *Store) DeleteFood(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.foods {
		if s.foods[i].ID == id {
			s.foods = append(s.foods[:i], s.foods[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: food %s", ErrNotFound, id)
}

// Foods returns a copy of the food catalog.
func (s *Store) Foods() []models.Food {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Food(nil), s.foods...)
}

// FoodByName looks up a food by name, case-insensitively after trimming.
func (s *Store) FoodByName(name string) (models.Food, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.foods {
		if strings.ToLower(strings.TrimSpace(f.Name)) == name {
			return f, true
		}
	}
	return models.Food{}, false
}

// FoodNameExists reports whether a food with the given name exists.
func (s *Store) FoodNameExists(name string) bool {
	_, ok := s.FoodByName(name)
	return ok
}

// SetFoods replaces the food catalog with data loaded from the remote store.
func (s *Store) SetFoods(foods []models.Food) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.foods = append([]models.Food(nil), foods...)
}

// --- internals ---

func (s *Store) dayLogLocked(date string) *models.DayLog {
	log, ok := s.dayLogs[date]
	if !ok {
		log = &models.DayLog{Date: date}
		s.dayLogs[date] = log
	}
	return log
}

func toTemplateExercises(exercises []models.WorkoutExercise) []models.TemplateExercise {
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

func copyWorkout(w *models.Workout) *models.Workout {
	out := *w
	out.Exercises = make([]models.WorkoutExercise, len(w.Exercises))
	for i, ex := range w.Exercises {
		out.Exercises[i] = ex
		out.Exercises[i].Sets = append([]models.WorkoutSet(nil), ex.Sets...)
	}
	if w.Activity != nil {
		act := *w.Activity
		out.Activity = &act
	}
	return &out
}

func copyTemplate(t models.WorkoutTemplate) models.WorkoutTemplate {
	out := t
	out.Exercises = make([]models.TemplateExercise, len(t.Exercises))
	for i, ex := range t.Exercises {
		out.Exercises[i] = ex
		out.Exercises[i].Sets = append([]models.TemplateSet(nil), ex.Sets...)
	}
	return out
}

func copyDayLog(log *models.DayLog) models.DayLog {
	out := models.DayLog{Date: log.Date, Meals: append([]models.MealEntry(nil), log.Meals...)}
	out.Workouts = make([]models.Workout, len(log.Workouts))
	for i := range log.Workouts {
		out.Workouts[i] = *copyWorkout(&log.Workouts[i])
	}
	return out
}

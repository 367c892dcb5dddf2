package session

import (
	"sync"

	"github.com/meltforce/liftlog/internal/models"
)

// RestTimerEngine is the between-sets countdown. It has no timing authority
// of its own: an external 1-second tick source drives it through Tick, which
// keeps it testable without wall-clock waits. Reaching zero flips IsActive
// off but keeps the record around so a "finished" state is observable until
// the user stops it.
type RestTimerEngine struct {
	mu             sync.Mutex
	timer          *models.RestTimerState
	defaultSeconds int
}

// NewRestTimerEngine creates an idle engine whose Start uses the given
// default duration.
func NewRestTimerEngine(defaultSeconds int) *RestTimerEngine {
	return &RestTimerEngine{defaultSeconds: defaultSeconds}
}

// Start begins a countdown for the given exercise, replacing any running or
// finished timer.
func (e *RestTimerEngine) Start(exerciseID string) models.RestTimerState {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.timer = &models.RestTimerState{
		IsActive:         true,
		RemainingSeconds: e.defaultSeconds,
		TargetSeconds:    e.defaultSeconds,
		ExerciseID:       exerciseID,
	}
	return *e.timer
}

// Tick decrements the remaining seconds by one, floored at zero. The timer
// deactivates exactly when it reaches zero. Ticking while idle or finished
// is a no-op.
func (e *RestTimerEngine) Tick() (models.RestTimerState, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.timer == nil {
		return models.RestTimerState{}, false
	}
	if e.timer.IsActive && e.timer.RemainingSeconds > 0 {
		e.timer.RemainingSeconds--
		if e.timer.RemainingSeconds == 0 {
			e.timer.IsActive = false
		}
	}
	return *e.timer, true
}

// Add applies delta to both the remaining and target seconds, floored at
// zero. Moving both together preserves the remaining/target progress ratio
// so a progress bar does not jump backward when time is added.
func (e *RestTimerEngine) Add(delta int) (models.RestTimerState, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.timer == nil {
		return models.RestTimerState{}, false
	}
	e.timer.RemainingSeconds += delta
	e.timer.TargetSeconds += delta
	if e.timer.RemainingSeconds < 0 {
		e.timer.RemainingSeconds = 0
	}
	if e.timer.TargetSeconds < 0 {
		e.timer.TargetSeconds = 0
	}
	if e.timer.RemainingSeconds == 0 {
		e.timer.IsActive = false
	}
	return *e.timer, true
}

// Stop clears the timer back to idle. This is the single transition for both
// "skip" and "stop": the two never differed in behavior, so they share one
// operation.
func (e *RestTimerEngine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.timer = nil
}

// State returns a copy of the current record. The bool is false while idle.
func (e *RestTimerEngine) State() (models.RestTimerState, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.timer == nil {
		return models.RestTimerState{}, false
	}
	return *e.timer, true
}

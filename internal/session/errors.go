package session

import "errors"

var (
	// ErrNoActiveSession is returned when a mutation requires an authoring
	// session and the active slot is empty.
	ErrNoActiveSession = errors.New("no active session")

	// ErrSessionActive is returned when starting a session while another is
	// still in the active slot. The caller must finish or cancel first.
	ErrSessionActive = errors.New("a session is already active")

	// ErrValidation is returned for out-of-range input (negative reps,
	// weight or grams, empty names).
	ErrValidation = errors.New("invalid input")

	// ErrNotFound is returned when an index or id does not resolve.
	ErrNotFound = errors.New("not found")
)

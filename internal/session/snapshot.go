package session

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/meltforce/liftlog/internal/models"
)

// SnapshotDB persists the active authoring session to a local SQLite file so
// a crash mid-workout does not lose uncommitted edits. There is at most one
// row: the current snapshot.
type SnapshotDB struct {
	db *sql.DB
}

// OpenSnapshotDB opens (or creates) the snapshot database at dir/session.db.
func OpenSnapshotDB(dir string) (*SnapshotDB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating snapshot dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "session.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS active_session (
		id       INTEGER PRIMARY KEY CHECK (id = 1),
		kind     TEXT NOT NULL,
		payload  TEXT NOT NULL,
		saved_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating snapshot table: %w", err)
	}

	return &SnapshotDB{db: db}, nil
}

// Save overwrites the snapshot with the given session.
func (s *SnapshotDB) Save(w *models.Workout, kind Kind) error {
	payload, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("encoding session snapshot: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO active_session (id, kind, payload, saved_at)
		 VALUES (1, ?, ?, CURRENT_TIMESTAMP)`,
		string(kind), string(payload),
	)
	if err != nil {
		return fmt.Errorf("saving session snapshot: %w", err)
	}
	return nil
}

// Load returns the saved session, if any.
func (s *SnapshotDB) Load() (*models.Workout, Kind, bool, error) {
	var kind, payload string
	err := s.db.QueryRow(`SELECT kind, payload FROM active_session WHERE id = 1`).
		Scan(&kind, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", false, nil
	}
	if err != nil {
		return nil, "", false, fmt.Errorf("loading session snapshot: %w", err)
	}

	var w models.Workout
	if err := json.Unmarshal([]byte(payload), &w); err != nil {
		return nil, "", false, fmt.Errorf("decoding session snapshot: %w", err)
	}
	return &w, Kind(kind), true, nil
}

// Clear removes the snapshot. Called after finish or cancel.
func (s *SnapshotDB) Clear() error {
	_, err := s.db.Exec(`DELETE FROM active_session WHERE id = 1`)
	return err
}

// Close closes the snapshot database.
func (s *SnapshotDB) Close() error {
	return s.db.Close()
}

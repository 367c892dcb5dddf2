package storage

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

// TestIsUniqueViolation verifies the Postgres unique_violation detection,
// including wrapped errors, since SaveTemplate and SaveFood depend on it to
// translate collisions into ErrNameCollision.
func TestIsUniqueViolation(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505"}
	if !isUniqueViolation(unique) {
		t.Error("unique_violation not detected")
	}
	if !isUniqueViolation(fmt.Errorf("inserting template: %w", unique)) {
		t.Error("wrapped unique_violation not detected")
	}
	if isUniqueViolation(&pgconn.PgError{Code: "23503"}) {
		t.Error("foreign_key_violation misdetected as unique")
	}
	if isUniqueViolation(errors.New("connection refused")) {
		t.Error("plain error misdetected")
	}
}

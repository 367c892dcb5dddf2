package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/meltforce/liftlog/internal/models"
)

// SaveWorkout inserts a finished workout with its exercises and sets in one
// transaction. This runs once at finish time; in-authoring edits are never
// written incrementally.
func (db *DB) SaveWorkout(ctx context.Context, userID int, w models.Workout) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning workout tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var activityKind *string
	var activityDuration *int
	var activityDistance *float64
	if w.Activity != nil {
		activityKind = &w.Activity.Kind
		activityDuration = &w.Activity.DurationMin
		activityDistance = &w.Activity.DistanceKm
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO workouts (id, user_id, date, name, type, duration_min,
		 activity_kind, activity_duration_min, activity_distance_km)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		w.ID, userID, w.Date, w.Name, string(w.Type), w.DurationMin,
		activityKind, activityDuration, activityDistance)
	if err != nil {
		return fmt.Errorf("inserting workout: %w", err)
	}

	for i, ex := range w.Exercises {
		_, err = tx.Exec(ctx,
			`INSERT INTO workout_exercises (id, workout_id, exercise_id, exercise_name, order_index)
			 VALUES ($1,$2,$3,$4,$5)`,
			ex.ID, w.ID, ex.ExerciseID, ex.ExerciseName, i)
		if err != nil {
			return fmt.Errorf("inserting workout exercise: %w", err)
		}
		for j, set := range ex.Sets {
			_, err = tx.Exec(ctx,
				`INSERT INTO workout_sets (id, exercise_row_id, reps, weight, completed, order_index)
				 VALUES ($1,$2,$3,$4,$5,$6)`,
				set.ID, ex.ID, set.Reps, set.Weight, set.Completed, j)
			if err != nil {
				return fmt.Errorf("inserting workout set: %w", err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing workout tx: %w", err)
	}
	return nil
}

// queryWorkout retrieves the most recent workout for one day, reassembling
// the exercise and set rows into the nested shape ordered by order_index.
// Returns nil when the day has no workout.
func (db *DB) queryWorkout(ctx context.Context, userID int, date string) (*models.Workout, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT id, date, name, type, duration_min,
		 activity_kind, activity_duration_min, activity_distance_km
		 FROM workouts
		 WHERE user_id = $1 AND date = $2
		 ORDER BY created_at DESC
		 LIMIT 1`,
		userID, date)

	var w models.Workout
	var typ string
	var activityKind *string
	var activityDuration *int
	var activityDistance *float64
	err := row.Scan(&w.ID, &w.Date, &w.Name, &typ, &w.DurationMin,
		&activityKind, &activityDuration, &activityDistance)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying workout: %w", err)
	}
	w.Type = models.WorkoutType(typ)
	if activityKind != nil {
		w.Activity = &models.ActivitySession{Kind: *activityKind}
		if activityDuration != nil {
			w.Activity.DurationMin = *activityDuration
		}
		if activityDistance != nil {
			w.Activity.DistanceKm = *activityDistance
		}
	}

	exRows, err := db.Pool.Query(ctx,
		`SELECT id, exercise_id, exercise_name
		 FROM workout_exercises
		 WHERE workout_id = $1
		 ORDER BY order_index ASC`,
		w.ID)
	if err != nil {
		return nil, fmt.Errorf("querying workout exercises: %w", err)
	}
	defer exRows.Close()

	for exRows.Next() {
		var ex models.WorkoutExercise
		if err := exRows.Scan(&ex.ID, &ex.ExerciseID, &ex.ExerciseName); err != nil {
			return nil, fmt.Errorf("scanning workout exercise: %w", err)
		}
		w.Exercises = append(w.Exercises, ex)
	}
	if err := exRows.Err(); err != nil {
		return nil, err
	}

	for i := range w.Exercises {
		sets, err := db.querySets(ctx, w.Exercises[i].ID)
		if err != nil {
			return nil, err
		}
		w.Exercises[i].Sets = sets
	}

	return &w, nil
}

func (db *DB) querySets(ctx context.Context, exerciseRowID string) ([]models.WorkoutSet, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, reps, weight, completed
		 FROM workout_sets
		 WHERE exercise_row_id = $1
		 ORDER BY order_index ASC`,
		exerciseRowID)
	if err != nil {
		return nil, fmt.Errorf("querying workout sets: %w", err)
	}
	defer rows.Close()

	var result []models.WorkoutSet
	for rows.Next() {
		var s models.WorkoutSet
		if err := rows.Scan(&s.ID, &s.Reps, &s.Weight, &s.Completed); err != nil {
			return nil, fmt.Errorf("scanning workout set: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

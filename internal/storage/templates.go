package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/meltforce/liftlog/internal/models"
)

// LoadTemplates retrieves all templates with their exercises and sets,
// ordered by order_index.
func (db *DB) LoadTemplates(ctx context.Context, userID int) ([]models.WorkoutTemplate, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, name, description FROM templates
		 WHERE user_id = $1
		 ORDER BY created_at ASC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying templates: %w", err)
	}
	defer rows.Close()

	var result []models.WorkoutTemplate
	for rows.Next() {
		var t models.WorkoutTemplate
		if err := rows.Scan(&t.ID, &t.Name, &t.Description); err != nil {
			return nil, fmt.Errorf("scanning template: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		exercises, err := db.queryTemplateExercises(ctx, result[i].ID)
		if err != nil {
			return nil, err
		}
		result[i].Exercises = exercises
	}
	return result, nil
}

func (db *DB) queryTemplateExercises(ctx context.Context, templateID string) ([]models.TemplateExercise, error) {
	exRows, err := db.Pool.Query(ctx,
		`SELECT id, exercise_id, exercise_name
		 FROM template_exercises
		 WHERE template_id = $1
		 ORDER BY order_index ASC`,
		templateID)
	if err != nil {
		return nil, fmt.Errorf("querying template exercises: %w", err)
	}
	defer exRows.Close()

	var exercises []models.TemplateExercise
	for exRows.Next() {
		var ex models.TemplateExercise
		if err := exRows.Scan(&ex.ID, &ex.ExerciseID, &ex.ExerciseName); err != nil {
			return nil, fmt.Errorf("scanning template exercise: %w", err)
		}
		exercises = append(exercises, ex)
	}
	if err := exRows.Err(); err != nil {
		return nil, err
	}

	for i := range exercises {
		setRows, err := db.Pool.Query(ctx,
			`SELECT id, reps, weight
			 FROM template_sets
			 WHERE template_exercise_id = $1
			 ORDER BY order_index ASC`,
			exercises[i].ID)
		if err != nil {
			return nil, fmt.Errorf("querying template sets: %w", err)
		}
		var sets []models.TemplateSet
		for setRows.Next() {
			var s models.TemplateSet
			if err := setRows.Scan(&s.ID, &s.Reps, &s.Weight); err != nil {
				setRows.Close()
				return nil, fmt.Errorf("scanning template set: %w", err)
			}
			sets = append(sets, s)
		}
		err = setRows.Err()
		setRows.Close()
		if err != nil {
			return nil, err
		}
		exercises[i].Sets = sets
	}
	return exercises, nil
}

// SaveTemplate inserts a new template with its children. A duplicate name
// (unique per user, case-insensitive) returns ErrNameCollision.
func (db *DB) SaveTemplate(ctx context.Context, userID int, t models.WorkoutTemplate) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning template tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO templates (id, user_id, name, description) VALUES ($1,$2,$3,$4)`,
		t.ID, userID, t.Name, t.Description)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("template %q: %w", t.Name, ErrNameCollision)
		}
		return fmt.Errorf("inserting template: %w", err)
	}

	if err := insertTemplateChildren(ctx, tx, t); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing template tx: %w", err)
	}
	return nil
}

// UpdateTemplate upserts a template by id. Children are deleted and
// reinserted rather than diffed; the whole operation is one transaction.
func (db *DB) UpdateTemplate(ctx context.Context, userID int, t models.WorkoutTemplate) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning template tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`UPDATE templates SET name = $1, description = $2 WHERE id = $3 AND user_id = $4`,
		t.Name, t.Description, t.ID, userID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("template %q: %w", t.Name, ErrNameCollision)
		}
		return fmt.Errorf("updating template: %w", err)
	}

	// template_sets rows go with their parents via ON DELETE CASCADE.
	_, err = tx.Exec(ctx,
		`DELETE FROM template_exercises WHERE template_id = $1`, t.ID)
	if err != nil {
		return fmt.Errorf("clearing template exercises: %w", err)
	}

	if err := insertTemplateChildren(ctx, tx, t); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing template tx: %w", err)
	}
	return nil
}

// DeleteTemplate removes a template and, via cascade, its children.
func (db *DB) DeleteTemplate(ctx context.Context, userID int, id string) error {
	_, err := db.Pool.Exec(ctx,
		`DELETE FROM templates WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting template: %w", err)
	}
	return nil
}

func insertTemplateChildren(ctx context.Context, tx pgx.Tx, t models.WorkoutTemplate) error {
	for i, ex := range t.Exercises {
		_, err := tx.Exec(ctx,
			`INSERT INTO template_exercises (id, template_id, exercise_id, exercise_name, order_index)
			 VALUES ($1,$2,$3,$4,$5)`,
			ex.ID, t.ID, ex.ExerciseID, ex.ExerciseName, i)
		if err != nil {
			return fmt.Errorf("inserting template exercise: %w", err)
		}
		for j, set := range ex.Sets {
			_, err := tx.Exec(ctx,
				`INSERT INTO template_sets (id, template_exercise_id, reps, weight, order_index)
				 VALUES ($1,$2,$3,$4,$5)`,
				set.ID, ex.ID, set.Reps, set.Weight, j)
			if err != nil {
				return fmt.Errorf("inserting template set: %w", err)
			}
		}
	}
	return nil
}

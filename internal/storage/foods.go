package storage

import (
	"context"
	"fmt"

	"github.com/meltforce/liftlog/internal/models"
)

// ListFoods retrieves the food catalog.
func (db *DB) ListFoods(ctx context.Context, userID int) ([]models.Food, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, name, calories, protein, carbs, fat
		 FROM foods
		 WHERE user_id = $1
		 ORDER BY name ASC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying foods: %w", err)
	}
	defer rows.Close()

	var result []models.Food
	for rows.Next() {
		var f models.Food
		if err := rows.Scan(&f.ID, &f.Name, &f.Calories, &f.Protein, &f.Carbs, &f.Fat); err != nil {
			return nil, fmt.Errorf("scanning food: %w", err)
		}
		result = append(result, f)
	}
	return result, rows.Err()
}

// SaveFood inserts a custom food. A duplicate name (unique per user,
// case-insensitive) returns ErrNameCollision so the caller can roll back its
// optimistic local add.
func (db *DB) SaveFood(ctx context.Context, userID int, f models.Food) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO foods (id, user_id, name, calories, protein, carbs, fat)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		f.ID, userID, f.Name, f.Calories, f.Protein, f.Carbs, f.Fat)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("food %q: %w", f.Name, ErrNameCollision)
		}
		return fmt.Errorf("inserting food: %w", err)
	}
	return nil
}

// DeleteFood removes a food by id. Meal entries keep their snapshotted
// macros; nothing cascades.
func (db *DB) DeleteFood(ctx context.Context, userID int, id string) error {
	_, err := db.Pool.Exec(ctx,
		`DELETE FROM foods WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting food: %w", err)
	}
	return nil
}

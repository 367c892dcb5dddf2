package storage

import (
	"context"
	"fmt"

	"github.com/meltforce/liftlog/internal/models"
)

// SaveMeal inserts one meal entry for the given day.
func (db *DB) SaveMeal(ctx context.Context, userID int, date string, e models.MealEntry) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO meals (id, user_id, date, food_id, food_name, grams,
		 calories, protein, carbs, fat, meal_type)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		e.ID, userID, date, e.FoodID, e.FoodName, e.Grams,
		e.Calories, e.Protein, e.Carbs, e.Fat, string(e.MealType))
	if err != nil {
		return fmt.Errorf("inserting meal: %w", err)
	}
	return nil
}

// DeleteMeal removes a meal entry by id.
func (db *DB) DeleteMeal(ctx context.Context, userID int, id string) error {
	_, err := db.Pool.Exec(ctx,
		`DELETE FROM meals WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting meal: %w", err)
	}
	return nil
}

// queryMeals retrieves the meals logged for one day, in insertion order.
func (db *DB) queryMeals(ctx context.Context, userID int, date string) ([]models.MealEntry, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, food_id, food_name, grams, calories, protein, carbs, fat, meal_type
		 FROM meals
		 WHERE user_id = $1 AND date = $2
		 ORDER BY created_at ASC`,
		userID, date)
	if err != nil {
		return nil, fmt.Errorf("querying meals: %w", err)
	}
	defer rows.Close()

	var result []models.MealEntry
	for rows.Next() {
		var m models.MealEntry
		var mealType string
		if err := rows.Scan(&m.ID, &m.FoodID, &m.FoodName, &m.Grams,
			&m.Calories, &m.Protein, &m.Carbs, &m.Fat, &mealType); err != nil {
			return nil, fmt.Errorf("scanning meal: %w", err)
		}
		m.MealType = models.MealType(mealType)
		result = append(result, m)
	}
	return result, rows.Err()
}

package storage

import (
	"context"

	"github.com/meltforce/liftlog/internal/models"
)

// DaySnapshot is what the remote store returns for one day: meals in
// insertion order and the day's workout, if any, reassembled into the nested
// entity shapes.
type DaySnapshot struct {
	Meals   []models.MealEntry `json:"meals"`
	Workout *models.Workout    `json:"workout"`
}

// LoadDay retrieves everything persisted for one day.
func (db *DB) LoadDay(ctx context.Context, userID int, date string) (DaySnapshot, error) {
	meals, err := db.queryMeals(ctx, userID, date)
	if err != nil {
		return DaySnapshot{}, err
	}
	workout, err := db.queryWorkout(ctx, userID, date)
	if err != nil {
		return DaySnapshot{}, err
	}
	return DaySnapshot{Meals: meals, Workout: workout}, nil
}

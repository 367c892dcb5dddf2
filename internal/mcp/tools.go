package mcp

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/session"
	"github.com/meltforce/liftlog/internal/stats"
)

// --- Tool definitions ---

var toolLogMeal = mcp.NewTool("log_meal",
	mcp.WithDescription("Log a meal entry. The food must exist in the catalog; macros are computed from its per-100g values and the given grams."),
	mcp.WithString("food", mcp.Required(), mcp.Description("Food name as it appears in the catalog (case-insensitive)")),
	mcp.WithNumber("grams", mcp.Required(), mcp.Description("Portion size in grams, must be positive")),
	mcp.WithString("meal_type", mcp.Required(), mcp.Description("Meal slot"), mcp.Enum("desayuno", "almuerzo", "comida", "merienda", "cena", "snack")),
	mcp.WithString("date", mcp.Description("Date (YYYY-MM-DD). Defaults to today.")),
)

var toolLogWorkoutSet = mcp.NewTool("log_workout_set",
	mcp.WithDescription("Record one completed set in the active workout session. The exercise is appended to the session if not present. Fails when no session is active."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise name, e.g. 'Press de banca'")),
	mcp.WithNumber("reps", mcp.Required(), mcp.Description("Repetitions performed")),
	mcp.WithNumber("weight", mcp.Required(), mcp.Description("Weight in kg (0 for bodyweight)")),
)

// --- Tool handlers ---

func (h *handlers) logMeal(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	foodName, err := req.RequireString("food")
	if err != nil {
		return mcp.NewToolResultError("food parameter is required"), nil
	}
	grams, err := req.RequireFloat("grams")
	if err != nil {
		return mcp.NewToolResultError("grams parameter is required"), nil
	}
	mealType, err := req.RequireString("meal_type")
	if err != nil {
		return mcp.NewToolResultError("meal_type parameter is required"), nil
	}

	date := req.GetString("date", "")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	food, ok := h.svc.Sessions().FoodByName(foodName)
	if !ok {
		return mcp.NewToolResultError("unknown food: " + foodName), nil
	}

	entry, err := h.svc.AddMeal(ctx, date, food.ID, grams, models.MealType(mealType))
	if err != nil {
		h.log.Error("mcp log_meal", "error", err)
		return mcp.NewToolResultError("logging meal failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(entry)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) logWorkoutSet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercise, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}
	reps, err := req.RequireInt("reps")
	if err != nil {
		return mcp.NewToolResultError("reps parameter is required"), nil
	}
	weight, err := req.RequireFloat("weight")
	if err != nil {
		return mcp.NewToolResultError("weight parameter is required"), nil
	}

	active, kind, ok := h.svc.Sessions().Active()
	if !ok || kind != session.KindWorkout {
		return mcp.NewToolResultError("no active workout session; the user must start one first"), nil
	}

	exIndex := -1
	for i, ex := range active.Exercises {
		if ex.ExerciseName == exercise {
			exIndex = i
			break
		}
	}
	if exIndex == -1 {
		if err := h.svc.AddExercise("", exercise); err != nil {
			h.log.Error("mcp log_workout_set add exercise", "error", err)
			return mcp.NewToolResultError("adding exercise failed: " + err.Error()), nil
		}
		exIndex = len(active.Exercises)
	}

	if _, err := h.svc.AddSet(exIndex); err != nil {
		h.log.Error("mcp log_workout_set add set", "error", err)
		return mcp.NewToolResultError("adding set failed: " + err.Error()), nil
	}

	updated, _, _ := h.svc.Sessions().Active()
	setIndex := len(updated.Exercises[exIndex].Sets) - 1
	completed := true
	patch := session.SetPatch{Reps: &reps, Weight: &weight, Completed: &completed}
	if err := h.svc.UpdateSet(exIndex, setIndex, patch); err != nil {
		h.log.Error("mcp log_workout_set update", "error", err)
		return mcp.NewToolResultError("recording set failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]any{
		"exercise": exercise,
		"reps":     reps,
		"weight":   weight,
		"set":      setIndex + 1,
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

// --- Resource handlers ---

func (h *handlers) dailySummary(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	today := time.Now().Format("2006-01-02")
	day := h.svc.Sessions().Day(today)
	workouts := h.svc.Sessions().AllWorkouts()

	return jsonContents(req.Params.URI, map[string]any{
		"date":                today,
		"meals":               day.Meals,
		"workouts":            day.Workouts,
		"weekly_volume":       stats.WeeklyVolumes(workouts, time.Now()),
		"muscle_distribution": stats.MuscleDistribution(workouts),
		"personal_records":    stats.PersonalRecords(workouts),
	})
}

package models

// WorkoutType distinguishes strength sessions from free-form activities.
// A workout of type "ejercicios" carries Exercises; type "actividad" carries
// Activity instead. The two are never both populated.
type WorkoutType string

const (
	TypeExercises WorkoutType = "ejercicios"
	TypeActivity  WorkoutType = "actividad"
)

// MealType is the meal slot a MealEntry belongs to.
type MealType string

const (
	MealBreakfast MealType = "desayuno"
	MealBrunch    MealType = "almuerzo"
	MealLunch     MealType = "comida"
	MealSnackPM   MealType = "merienda"
	MealDinner    MealType = "cena"
	MealSnack     MealType = "snack"
)

// ValidMealType reports whether t is one of the known meal slots.
func ValidMealType(t MealType) bool {
	switch t {
	case MealBreakfast, MealBrunch, MealLunch, MealSnackPM, MealDinner, MealSnack:
		return true
	}
	return false
}

// WorkoutSet is a single logged set. Owned by exactly one WorkoutExercise.
type WorkoutSet struct {
	ID        string  `json:"id"`
	Reps      int     `json:"reps"`
	Weight    float64 `json:"weight"`
	Completed bool    `json:"completed"`
}

// WorkoutExercise is an exercise within a workout with its ordered sets.
type WorkoutExercise struct {
	ID           string       `json:"id"`
	ExerciseID   string       `json:"exercise_id"`
	ExerciseName string       `json:"exercise_name"`
	Sets         []WorkoutSet `json:"sets"`
}

// ActivitySession describes a free-form activity (run, hike, swim) logged
// instead of a set/rep breakdown.
type ActivitySession struct {
	Kind        string  `json:"kind"`
	DurationMin int     `json:"duration_min"`
	DistanceKm  float64 `json:"distance_km,omitempty"`
}

// Workout is a logged (or in-authoring) training session for a single day.
type Workout struct {
	ID               string            `json:"id"`
	Date             string            `json:"date"` // YYYY-MM-DD
	Name             string            `json:"name"`
	Type             WorkoutType       `json:"type"`
	Exercises        []WorkoutExercise `json:"exercises,omitempty"`
	Activity         *ActivitySession  `json:"activity,omitempty"`
	DurationMin      int               `json:"duration_min,omitempty"`
	ActiveTemplateID string            `json:"active_template_id,omitempty"`
}

// TemplateSet mirrors WorkoutSet without completion state.
type TemplateSet struct {
	ID     string  `json:"id"`
	Reps   int     `json:"reps"`
	Weight float64 `json:"weight"`
}

// TemplateExercise is an exercise within a reusable template.
type TemplateExercise struct {
	ID           string        `json:"id"`
	ExerciseID   string        `json:"exercise_id"`
	ExerciseName string        `json:"exercise_name"`
	Sets         []TemplateSet `json:"sets"`
}

// WorkoutTemplate is a reusable, date-independent seed for new workouts.
type WorkoutTemplate struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Exercises   []TemplateExercise `json:"exercises"`
}

// Food is a per-100g nutritional reference from which meal entries are built.
type Food struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// MealEntry is a logged portion of a food. Macros are snapshotted at creation
// time from the food reference scaled by grams/100; later edits to the food
// do not propagate back.
type MealEntry struct {
	ID       string   `json:"id"`
	FoodID   string   `json:"food_id"`
	FoodName string   `json:"food_name"`
	Grams    float64  `json:"grams"`
	Calories float64  `json:"calories"`
	Protein  float64  `json:"protein"`
	Carbs    float64  `json:"carbs"`
	Fat      float64  `json:"fat"`
	MealType MealType `json:"meal_type"`
}

// NewMealEntry builds a MealEntry for grams of the given food, snapshotting
// the scaled macros.
func NewMealEntry(id string, food Food, grams float64, mealType MealType) MealEntry {
	factor := grams / 100
	return MealEntry{
		ID:       id,
		FoodID:   food.ID,
		FoodName: food.Name,
		Grams:    grams,
		Calories: food.Calories * factor,
		Protein:  food.Protein * factor,
		Carbs:    food.Carbs * factor,
		Fat:      food.Fat * factor,
		MealType: mealType,
	}
}

// DayLog collects everything logged for one calendar day. Created lazily on
// first entry and never deleted, only emptied.
type DayLog struct {
	Date     string      `json:"date"`
	Meals    []MealEntry `json:"meals"`
	Workouts []Workout   `json:"workouts"`
}

// RestTimerState is the singleton rest-timer record. Absent (nil) means no
// timer is running; IsActive=false with RemainingSeconds=0 is the observable
// "finished" state that persists until explicitly stopped.
type RestTimerState struct {
	IsActive         bool   `json:"is_active"`
	RemainingSeconds int    `json:"remaining_seconds"`
	TargetSeconds    int    `json:"target_seconds"`
	ExerciseID       string `json:"exercise_id"`
}

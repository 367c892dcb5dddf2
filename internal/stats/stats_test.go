package stats

import (
	"math"
	"testing"
	"time"

	"github.com/meltforce/liftlog/internal/models"
)

func workout(date string, sets ...models.WorkoutSet) models.Workout {
	return models.Workout{
		ID:   "w-" + date,
		Date: date,
		Name: "Push",
		Type: models.TypeExercises,
		Exercises: []models.WorkoutExercise{
			{ID: "ex1", ExerciseID: "press-banca", ExerciseName: "Press de banca", Sets: sets},
		},
	}
}

// TestEstimate1RM verifies the Epley formula against hand-computed values.
func TestEstimate1RM(t *testing.T) {
	tests := []struct {
		weight float64
		reps   int
		want   float64
	}{
		{80, 10, 106.666666},
		{100, 1, 103.333333},
		{60, 30, 120},
		{0, 10, 0},
	}
	for _, tt := range tests {
		got := Estimate1RM(tt.weight, tt.reps)
		if math.Abs(got-tt.want) > 0.001 {
			t.Errorf("Estimate1RM(%.0f, %d) = %f, want %f", tt.weight, tt.reps, got, tt.want)
		}
	}
}

// TestWeeklyVolumes verifies Monday-start bucketing, the 8-week window, the
// completed-sets-only rule, and chronological ordering.
func TestWeeklyVolumes(t *testing.T) {
	// Thursday 2024-03-14; the week's Monday is 2024-03-11.
	now := time.Date(2024, 3, 14, 10, 0, 0, 0, time.UTC)

	workouts := []models.Workout{
		// Same ISO week as now, two days apart: one bucket
		workout("2024-03-11", models.WorkoutSet{ID: "s1", Reps: 10, Weight: 80, Completed: true}),
		workout("2024-03-13",
			models.WorkoutSet{ID: "s2", Reps: 5, Weight: 100, Completed: true},
			models.WorkoutSet{ID: "s3", Reps: 10, Weight: 80, Completed: false}, // not completed
		),
		// Sunday 2024-03-10 belongs to the previous Monday-start week
		workout("2024-03-10", models.WorkoutSet{ID: "s4", Reps: 8, Weight: 60, Completed: true}),
		// Older than the 8-week window
		workout("2023-12-01", models.WorkoutSet{ID: "s5", Reps: 10, Weight: 200, Completed: true}),
	}

	got := WeeklyVolumes(workouts, now)
	if len(got) != 2 {
		t.Fatalf("got %d weeks, want 2: %+v", len(got), got)
	}
	if got[0].Week != "2024-03-04" || got[0].Volume != 480 {
		t.Errorf("week 0 = %+v, want 2024-03-04 volume 480", got[0])
	}
	if got[1].Week != "2024-03-11" || got[1].Volume != 1300 {
		t.Errorf("week 1 = %+v, want 2024-03-11 volume 1300", got[1])
	}
}

// TestWeeklyVolumesWindowEdge verifies that a workout exactly eight Mondays
// back is still included while one day earlier is not.
func TestWeeklyVolumesWindowEdge(t *testing.T) {
	now := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC) // a Monday
	inside := workout("2024-01-22", models.WorkoutSet{ID: "s1", Reps: 1, Weight: 100, Completed: true})
	outside := workout("2024-01-21", models.WorkoutSet{ID: "s2", Reps: 1, Weight: 100, Completed: true})

	got := WeeklyVolumes([]models.Workout{inside, outside}, now)
	if len(got) != 1 || got[0].Week != "2024-01-22" {
		t.Errorf("got %+v, want only the 2024-01-22 week", got)
	}
}

// TestMuscleDistributionEmpty verifies the empty-history case.
func TestMuscleDistributionEmpty(t *testing.T) {
	if got := MuscleDistribution(nil); len(got) != 0 {
		t.Errorf("got %+v, want empty", got)
	}
}

// TestMuscleDistribution verifies per-set counting, the resolution chain
// (id, exact name, substring, fallback) and the descending/name ordering.
func TestMuscleDistribution(t *testing.T) {
	workouts := []models.Workout{
		{
			Date: "2024-03-01",
			Exercises: []models.WorkoutExercise{
				// Resolved by id
				{ExerciseID: "press-banca", ExerciseName: "whatever", Sets: []models.WorkoutSet{
					{Completed: true}, {Completed: true}, {Completed: false},
				}},
				// Resolved by exact name
				{ExerciseID: "custom-1", ExerciseName: "Sentadilla", Sets: []models.WorkoutSet{
					{Completed: true},
				}},
				// Resolved by substring
				{ExerciseID: "custom-2", ExerciseName: "Curl martillo", Sets: []models.WorkoutSet{
					{Completed: true}, {Completed: true},
				}},
				// Falls through to otros
				{ExerciseID: "custom-3", ExerciseName: "Plancha", Sets: []models.WorkoutSet{
					{Completed: true},
				}},
			},
		},
	}

	got := MuscleDistribution(workouts)
	want := []MuscleCount{
		{Muscle: "brazos", Sets: 2},
		{Muscle: "pecho", Sets: 2},
		{Muscle: "otros", Sets: 1},
		{Muscle: "piernas", Sets: 1},
	}
	if len(got) != len(want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

// TestPersonalRecords verifies strictly-greater overwrite semantics, the
// skip rules, and the top-5 cut.
func TestPersonalRecords(t *testing.T) {
	workouts := []models.Workout{
		workout("2024-01-01", models.WorkoutSet{ID: "s1", Reps: 10, Weight: 80, Completed: true}),  // 1RM 106.67
		workout("2024-02-01", models.WorkoutSet{ID: "s2", Reps: 10, Weight: 80, Completed: true}),  // tie, first kept
		workout("2024-03-01", models.WorkoutSet{ID: "s3", Reps: 5, Weight: 100, Completed: true}),  // 1RM 116.67, wins
		workout("2024-04-01", models.WorkoutSet{ID: "s4", Reps: 12, Weight: 120, Completed: false}), // ignored
	}

	got := PersonalRecords(workouts)
	if len(got) != 1 {
		t.Fatalf("got %d records, want 1: %+v", len(got), got)
	}
	r := got[0]
	if r.ExerciseName != "Press de banca" || r.Weight != 100 || r.Reps != 5 || r.Date != "2024-03-01" {
		t.Errorf("record = %+v, want the 100x5 set from 2024-03-01", r)
	}
	if math.Abs(r.Estimated1RM-116.666666) > 0.001 {
		t.Errorf("estimated 1RM = %f", r.Estimated1RM)
	}
}

// TestPersonalRecordsTieKeepsFirst verifies that a later set with an equal
// estimate does not replace the earlier record.
func TestPersonalRecordsTieKeepsFirst(t *testing.T) {
	workouts := []models.Workout{
		workout("2024-01-01", models.WorkoutSet{ID: "s1", Reps: 10, Weight: 80, Completed: true}),
		workout("2024-06-01", models.WorkoutSet{ID: "s2", Reps: 10, Weight: 80, Completed: true}),
	}
	got := PersonalRecords(workouts)
	if len(got) != 1 || got[0].Date != "2024-01-01" {
		t.Errorf("got %+v, want the 2024-01-01 record kept on tie", got)
	}
}

// TestPersonalRecordsTopFive verifies the result is capped at five exercises
// ordered by estimated one-rep max.
func TestPersonalRecordsTopFive(t *testing.T) {
	var workouts []models.Workout
	names := []string{"A", "B", "C", "D", "E", "F", "G"}
	for i, name := range names {
		workouts = append(workouts, models.Workout{
			Date: "2024-01-01",
			Exercises: []models.WorkoutExercise{
				{ExerciseID: name, ExerciseName: name, Sets: []models.WorkoutSet{
					{ID: name, Reps: 5, Weight: float64(50 + 10*i), Completed: true},
				}},
			},
		})
	}

	got := PersonalRecords(workouts)
	if len(got) != 5 {
		t.Fatalf("got %d records, want 5", len(got))
	}
	if got[0].ExerciseName != "G" || got[4].ExerciseName != "C" {
		t.Errorf("ordering = %+v, want G first and C fifth", got)
	}
}

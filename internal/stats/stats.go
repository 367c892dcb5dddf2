// Package stats computes read-only projections over the historical workout
// log. Everything here is a pure function of its input slice; there is no
// stored state and no incremental update path.
package stats

import (
	"sort"
	"strings"
	"time"

	"github.com/meltforce/liftlog/internal/models"
)

// WeeklyVolume is the total lifted volume (weight × reps over completed
// sets) for one ISO week, labeled by the week's Monday.
type WeeklyVolume struct {
	Week   string  `json:"week"` // YYYY-MM-DD of the Monday
	Volume float64 `json:"volume"`
}

// WeeklyVolumes buckets the last eight weeks of workouts by ISO week (weeks
// start on Monday) and sums weight×reps over sets that were completed with
// positive weight and reps. Results are chronological.
func WeeklyVolumes(workouts []models.Workout, now time.Time) []WeeklyVolume {
	cutoff := startOfWeek(now).AddDate(0, 0, -7*7)

	byWeek := make(map[string]float64)
	for _, w := range workouts {
		date, err := time.Parse("2006-01-02", w.Date)
		if err != nil || date.Before(cutoff) {
			continue
		}
		week := startOfWeek(date).Format("2006-01-02")
		for _, ex := range w.Exercises {
			for _, set := range ex.Sets {
				if set.Completed && set.Weight > 0 && set.Reps > 0 {
					byWeek[week] += set.Weight * float64(set.Reps)
				}
			}
		}
	}

	out := make([]WeeklyVolume, 0, len(byWeek))
	for week, vol := range byWeek {
		out = append(out, WeeklyVolume{Week: week, Volume: vol})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Week < out[j].Week })
	return out
}

// startOfWeek returns midnight of the Monday of t's week.
func startOfWeek(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := (int(day.Weekday()) + 6) % 7 // Monday=0 ... Sunday=6
	return day.AddDate(0, 0, -offset)
}

// MuscleCount is the number of completed sets attributed to one muscle
// group.
type MuscleCount struct {
	Muscle string `json:"muscle"`
	Sets   int    `json:"sets"`
}

// muscleByExerciseID resolves known catalog exercises by id.
var muscleByExerciseID = map[string]string{
	"press-banca":        "pecho",
	"press-inclinado":    "pecho",
	"aperturas":          "pecho",
	"remo-barra":         "espalda",
	"jalon-pecho":        "espalda",
	"dominadas":          "espalda",
	"sentadilla":         "piernas",
	"prensa":             "piernas",
	"peso-muerto":        "piernas",
	"press-militar":      "hombros",
	"elevaciones-laterales": "hombros",
	"curl-biceps":        "brazos",
	"extension-triceps":  "brazos",
}

// muscleByExerciseName resolves exact (lowercased) names.
var muscleByExerciseName = map[string]string{
	"press de banca":   "pecho",
	"press inclinado":  "pecho",
	"remo con barra":   "espalda",
	"jalón al pecho":   "espalda",
	"dominadas":        "espalda",
	"sentadilla":       "piernas",
	"prensa":           "piernas",
	"peso muerto":      "piernas",
	"press militar":    "hombros",
	"curl de bíceps":   "brazos",
}

// muscleSubstrings is the fallback heuristic, checked in order.
var muscleSubstrings = []struct {
	fragment string
	muscle   string
}{
	{"press militar", "hombros"},
	{"press", "pecho"},
	{"remo", "espalda"},
	{"jalón", "espalda"},
	{"jalon", "espalda"},
	{"dominada", "espalda"},
	{"sentadilla", "piernas"},
	{"prensa", "piernas"},
	{"zancada", "piernas"},
	{"curl", "brazos"},
	{"tríceps", "brazos"},
	{"triceps", "brazos"},
	{"elevacion", "hombros"},
	{"elevación", "hombros"},
}

// resolveMuscle maps an exercise to a muscle group: exact id lookup, then
// exact name lookup, then name substring heuristics, then "otros".
func resolveMuscle(exerciseID, exerciseName string) string {
	if m, ok := muscleByExerciseID[exerciseID]; ok {
		return m
	}
	name := strings.ToLower(strings.TrimSpace(exerciseName))
	if m, ok := muscleByExerciseName[name]; ok {
		return m
	}
	for _, h := range muscleSubstrings {
		if strings.Contains(name, h.fragment) {
			return h.muscle
		}
	}
	return "otros"
}

// MuscleDistribution counts one unit per completed set per muscle group over
// the full workout history. The result is sorted by count descending, with
// name as the tiebreak so output is deterministic.
func MuscleDistribution(workouts []models.Workout) []MuscleCount {
	counts := make(map[string]int)
	for _, w := range workouts {
		for _, ex := range w.Exercises {
			muscle := resolveMuscle(ex.ExerciseID, ex.ExerciseName)
			for _, set := range ex.Sets {
				if set.Completed {
					counts[muscle]++
				}
			}
		}
	}

	out := make([]MuscleCount, 0, len(counts))
	for muscle, sets := range counts {
		out = append(out, MuscleCount{Muscle: muscle, Sets: sets})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Sets != out[j].Sets {
			return out[i].Sets > out[j].Sets
		}
		return out[i].Muscle < out[j].Muscle
	})
	return out
}

// PersonalRecord is the best set ever observed for one exercise, ranked by
// estimated one-rep max.
type PersonalRecord struct {
	ExerciseName string  `json:"exercise_name"`
	Weight       float64 `json:"weight"`
	Reps         int     `json:"reps"`
	Estimated1RM float64 `json:"estimated_1rm"`
	Date         string  `json:"date"`
}

// Estimate1RM applies the Epley formula: weight × (1 + reps/30).
func Estimate1RM(weight float64, reps int) float64 {
	return weight * (1 + float64(reps)/30)
}

// PersonalRecords returns the top five exercises by estimated one-rep max.
// Only completed sets with positive weight and reps count; for each exercise
// name, the record is overwritten only on a strictly greater estimate, so
// ties keep the first observation.
func PersonalRecords(workouts []models.Workout) []PersonalRecord {
	best := make(map[string]PersonalRecord)
	var order []string

	for _, w := range workouts {
		for _, ex := range w.Exercises {
			for _, set := range ex.Sets {
				if !set.Completed || set.Weight <= 0 || set.Reps <= 0 {
					continue
				}
				est := Estimate1RM(set.Weight, set.Reps)
				prev, seen := best[ex.ExerciseName]
				if !seen {
					order = append(order, ex.ExerciseName)
				}
				if !seen || est > prev.Estimated1RM {
					best[ex.ExerciseName] = PersonalRecord{
						ExerciseName: ex.ExerciseName,
						Weight:       set.Weight,
						Reps:         set.Reps,
						Estimated1RM: est,
						Date:         w.Date,
					}
				}
			}
		}
	}

	out := make([]PersonalRecord, 0, len(order))
	for _, name := range order {
		out = append(out, best[name])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Estimated1RM > out[j].Estimated1RM
	})
	if len(out) > 5 {
		out = out[:5]
	}
	return out
}

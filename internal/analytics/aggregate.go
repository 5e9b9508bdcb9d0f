package analytics

import "time"

// ExerciseStats holds the extrema of one exercise within a window.
type ExerciseStats struct {
	ExerciseID int     `json:"exercise_id"`
	MaxWeight  float64 `json:"max_weight"`
	// RepsAtMax is the highest rep count performed at MaxWeight.
	RepsAtMax int       `json:"reps_at_max"`
	MinWeight float64   `json:"min_weight"`
	BestDate  time.Time `json:"best_date"`
	SetCount  int       `json:"set_count"`
}

// TraineeStats holds the work done by one trainee within a window.
type TraineeStats struct {
	TraineeID         int                   `json:"trainee_id"`
	CompletedWorkouts int                   `json:"completed_workouts"`
	DistinctExercises int                   `json:"distinct_exercises"`
	TotalVolume       float64               `json:"total_volume"`
	Exercises         map[int]ExerciseStats `json:"exercises"`
}

// MaxWeight returns the heaviest weight lifted for the exercise or 0 when it was not performed.
func (s *TraineeStats) MaxWeight(exerciseID int) float64 {
	if s == nil {
		return 0
	}
	return s.Exercises[exerciseID].MaxWeight
}

// Summary is the result of aggregating workout logs over a window.
type Summary struct {
	Window Window `json:"window"`
	// Trainees is keyed by trainee ID.
	Trainees map[int]*TraineeStats `json:"trainees"`
	// Exercises is keyed by exercise ID and spans all trainees.
	Exercises map[int]ExerciseStats `json:"exercises"`
}

// Trainee returns the stats for a trainee, or nil when the trainee did no work in the window.
func (s Summary) Trainee(traineeID int) *TraineeStats {
	return s.Trainees[traineeID]
}

// Aggregate groups completed logs inside window by trainee and exercise.
//
// Incomplete logs represent resumable drafts and never count as work done.
func Aggregate(logs []WorkoutLog, window Window) Summary {
	summary := Summary{
		Window:    window,
		Trainees:  make(map[int]*TraineeStats),
		Exercises: make(map[int]ExerciseStats),
	}

	for _, log := range logs {
		if !log.Completed || !window.Contains(log.Date) {
			continue
		}

		stats, ok := summary.Trainees[log.TraineeID]
		if !ok {
			stats = &TraineeStats{
				TraineeID:         log.TraineeID,
				CompletedWorkouts: 0,
				DistinctExercises: 0,
				TotalVolume:       0,
				Exercises:         make(map[int]ExerciseStats),
			}
			summary.Trainees[log.TraineeID] = stats
		}
		stats.CompletedWorkouts++

		for _, set := range log.Sets {
			if set.Date.IsZero() {
				set.Date = log.Date
			}
			stats.TotalVolume += set.Volume()
			stats.Exercises[set.ExerciseID] = mergeSet(stats.Exercises[set.ExerciseID], set)
			summary.Exercises[set.ExerciseID] = mergeSet(summary.Exercises[set.ExerciseID], set)
		}
		stats.DistinctExercises = len(stats.Exercises)
	}

	return summary
}

// mergeSet folds set into the running extrema. A zero SetCount marks an empty accumulator.
func mergeSet(acc ExerciseStats, set SetEntry) ExerciseStats {
	if acc.SetCount == 0 {
		return ExerciseStats{
			ExerciseID: set.ExerciseID,
			MaxWeight:  set.WeightKg,
			RepsAtMax:  set.Reps,
			MinWeight:  set.WeightKg,
			BestDate:   set.Date,
			SetCount:   1,
		}
	}

	acc.SetCount++
	if set.WeightKg < acc.MinWeight {
		acc.MinWeight = set.WeightKg
	}
	best := SetEntry{ExerciseID: acc.ExerciseID, WeightKg: acc.MaxWeight, Reps: acc.RepsAtMax, RIR: nil, Date: acc.BestDate}
	if BetterSet(set, best) {
		acc.MaxWeight = set.WeightKg
		acc.RepsAtMax = set.Reps
		acc.BestDate = set.Date
	}
	return acc
}

// BetterSet reports whether a beats b: heavier weight wins, then more reps.
func BetterSet(a, b SetEntry) bool {
	if a.WeightKg != b.WeightKg {
		return a.WeightKg > b.WeightKg
	}
	return a.Reps > b.Reps
}

// BestSet returns the heaviest set, breaking weight ties by reps. The earliest set wins a full tie.
func BestSet(sets []SetEntry) (SetEntry, bool) {
	if len(sets) == 0 {
		return SetEntry{}, false
	}
	best := sets[0]
	for _, set := range sets[1:] {
		if BetterSet(set, best) {
			best = set
		}
	}
	return best, true
}

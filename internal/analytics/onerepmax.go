package analytics

import (
	"math"
	"slices"
	"time"
)

// Brzycki coefficients.
const (
	brzyckiIntercept = 1.0278
	brzyckiSlope     = 0.0278
)

// EstimateOneRepMax estimates the single-rep maximum with the Brzycki formula.
//
// Invalid input yields 0, which callers treat as unknown.
func EstimateOneRepMax(weight float64, reps int) float64 {
	if weight <= 0 || reps <= 0 || math.IsNaN(weight) || math.IsInf(weight, 0) {
		return 0
	}
	if reps == 1 {
		return weight
	}
	denominator := brzyckiIntercept - brzyckiSlope*float64(reps)
	if denominator <= 0 {
		// The formula diverges from 37 reps onwards.
		return 0
	}
	return weight / denominator
}

// OneRepMaxSeries returns the best estimated 1RM per workout date for an exercise in ascending date order.
func OneRepMaxSeries(logs []WorkoutLog, traineeID, exerciseID int, window Window) []OneRepMaxPoint {
	best := make(map[time.Time]float64)
	for _, log := range logs {
		if log.TraineeID != traineeID || !log.Completed || !window.Contains(log.Date) {
			continue
		}
		for _, set := range log.Sets {
			if set.ExerciseID != exerciseID {
				continue
			}
			estimate := EstimateOneRepMax(set.WeightKg, set.Reps)
			if estimate <= 0 {
				continue
			}
			day := midnight(log.Date)
			if estimate > best[day] {
				best[day] = estimate
			}
		}
	}

	series := make([]OneRepMaxPoint, 0, len(best))
	for day, oneRM := range best {
		series = append(series, OneRepMaxPoint{Date: day, OneRM: oneRM})
	}
	slices.SortFunc(series, func(a, b OneRepMaxPoint) int {
		return a.Date.Compare(b.Date)
	})
	return series
}

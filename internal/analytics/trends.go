package analytics

import (
	"slices"
	"time"

	"github.com/myrjola/coachstats/internal/ptr"
)

// Delta compares a metric between the current and previous period.
type Delta struct {
	Current  float64 `json:"current"`
	Previous float64 `json:"previous"`
	Change   float64 `json:"change"`
	// PercentChange is nil when there is no previous value to compare against.
	PercentChange *float64 `json:"percent_change,omitempty"`
}

// Compare builds the period-over-period delta.
func Compare(current, previous float64) Delta {
	d := Delta{Current: current, Previous: previous, Change: current - previous, PercentChange: nil}
	if previous != 0 {
		d.PercentChange = ptr.Ref(d.Change / previous * 100) //nolint:mnd // percent
	}
	return d
}

// WeightTrend summarises body-weight readings within a window.
type WeightTrend struct {
	Earliest BodyWeightEntry `json:"earliest"`
	Latest   BodyWeightEntry `json:"latest"`
	// Change is Latest minus Earliest in kg.
	Change  float64 `json:"change"`
	Entries int     `json:"entries"`
}

// BodyWeightTrend returns the trend of a trainee's readings inside window. The entries may be in any order.
func BodyWeightTrend(entries []BodyWeightEntry, traineeID int, window Window) (WeightTrend, bool) {
	var inWindow []BodyWeightEntry
	for _, e := range entries {
		if e.TraineeID == traineeID && window.Contains(e.Date) {
			inWindow = append(inWindow, e)
		}
	}
	if len(inWindow) == 0 {
		return WeightTrend{}, false
	}
	slices.SortStableFunc(inWindow, func(a, b BodyWeightEntry) int {
		return a.Date.Compare(b.Date)
	})
	earliest, latest := inWindow[0], inWindow[len(inWindow)-1]
	return WeightTrend{
		Earliest: earliest,
		Latest:   latest,
		Change:   latest.WeightKg - earliest.WeightKg,
		Entries:  len(inWindow),
	}, true
}

// AddToNutritionLog accumulates m onto the day's running totals.
func AddToNutritionLog(entry NutritionLogEntry, m Macros) NutritionLogEntry {
	entry.TotalProtein += m.Protein
	entry.TotalCarbs += m.Carbs
	entry.TotalFat += m.Fat
	entry.TotalCalories += m.Calories
	return entry
}

// NutritionAverages returns the average daily macros of a trainee inside window and the number of logged days.
func NutritionAverages(entries []NutritionLogEntry, traineeID int, window Window) (Macros, int) {
	days := make(map[time.Time]Macros)
	for _, e := range entries {
		if e.TraineeID != traineeID || !window.Contains(e.Date) {
			continue
		}
		day := midnight(e.Date)
		days[day] = days[day].Add(Macros{
			Protein:  e.TotalProtein,
			Carbs:    e.TotalCarbs,
			Fat:      e.TotalFat,
			Calories: e.TotalCalories,
		})
	}
	if len(days) == 0 {
		return Macros{}, 0
	}

	var total Macros
	for _, m := range days {
		total = total.Add(m)
	}
	n := float64(len(days))
	return Macros{
		Protein:  total.Protein / n,
		Carbs:    total.Carbs / n,
		Fat:      total.Fat / n,
		Calories: total.Calories / n,
	}, len(days)
}

// Package analytics derives training and nutrition metrics from raw logs.
//
// Every function in this package is pure. Callers load the logs, pass them in together with the reference
// time, and render or persist the results themselves.
package analytics

import (
	"slices"
	"time"
)

// SetEntry is a single logged set.
type SetEntry struct {
	ExerciseID int       `json:"exercise_id"`
	WeightKg   float64   `json:"weight_kg"`
	Reps       int       `json:"reps"`
	RIR        *int      `json:"rir,omitempty"`
	Date       time.Time `json:"date"`
}

// Volume is weight multiplied by reps.
func (s SetEntry) Volume() float64 {
	return s.WeightKg * float64(s.Reps)
}

// WorkoutLog is a finished (or abandoned) training session of a trainee.
type WorkoutLog struct {
	ID        int        `json:"id"`
	TraineeID int        `json:"trainee_id"`
	RoutineID int        `json:"routine_id"`
	Date      time.Time  `json:"date"`
	Completed bool       `json:"completed"`
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Sets      []SetEntry `json:"sets"`
}

// BodyWeightEntry is one body-weight submission.
type BodyWeightEntry struct {
	TraineeID int       `json:"trainee_id"`
	Date      time.Time `json:"date"`
	WeightKg  float64   `json:"weight_kg"`
}

// FoodCategory partitions the food catalog. Swaps are only defined within a category.
type FoodCategory string

const (
	FoodCategoryProtein   FoodCategory = "protein"
	FoodCategoryCarbs     FoodCategory = "carbs"
	FoodCategoryBread     FoodCategory = "bread"
	FoodCategoryFat       FoodCategory = "fat"
	FoodCategoryFruit     FoodCategory = "fruit"
	FoodCategoryVegetable FoodCategory = "vegetable"
	FoodCategoryDairy     FoodCategory = "dairy"
)

// FoodCategories lists the known categories.
func FoodCategories() []FoodCategory {
	return []FoodCategory{
		FoodCategoryProtein, FoodCategoryCarbs, FoodCategoryBread, FoodCategoryFat,
		FoodCategoryFruit, FoodCategoryVegetable, FoodCategoryDairy,
	}
}

// Valid reports whether c is a known category.
func (c FoodCategory) Valid() bool {
	return slices.Contains(FoodCategories(), c)
}

// FoodItem is a catalog entry with macronutrients per 100 grams.
type FoodItem struct {
	ID             int          `json:"id"`
	Name           string       `json:"name"`
	Category       FoodCategory `json:"category"`
	ProteinPer100g float64      `json:"protein_per_100g"`
	CarbsPer100g   float64      `json:"carbs_per_100g"`
	FatPer100g     float64      `json:"fat_per_100g"`
}

// NutritionLogEntry holds a trainee's running macro totals for one day.
type NutritionLogEntry struct {
	TraineeID     int       `json:"trainee_id"`
	Date          time.Time `json:"date"`
	TotalProtein  float64   `json:"total_protein"`
	TotalCarbs    float64   `json:"total_carbs"`
	TotalFat      float64   `json:"total_fat"`
	TotalCalories float64   `json:"total_calories"`
}

// PersonalRecordEvent reports that a trainee lifted more than in the previous period.
//
// NewWeight > PreviousWeight > 0 always holds.
type PersonalRecordEvent struct {
	TraineeID      int       `json:"trainee_id"`
	ExerciseID     int       `json:"exercise_id"`
	NewWeight      float64   `json:"new_weight"`
	PreviousWeight float64   `json:"previous_weight"`
	Date           time.Time `json:"date"`
}

// ComplianceResult is the ratio of completed to targeted workouts.
type ComplianceResult struct {
	Completed int `json:"completed"`
	Target    int `json:"target"`
	// Percent is clamped to [0, 100].
	Percent int `json:"percent"`
}

// OneRepMaxPoint is one entry of a strength trend series.
type OneRepMaxPoint struct {
	Date  time.Time `json:"date"`
	OneRM float64   `json:"one_rm"`
}

package coaching

import (
	"time"

	"github.com/myrjola/coachstats/internal/analytics"
	"github.com/myrjola/coachstats/internal/errors"
)

// ErrNotFound is returned when a trainee, food, routine or draft does not exist.
var ErrNotFound = errors.NewSentinel("not found")

// ErrInvalidInput is returned when a caller passes values that can never be stored.
var ErrInvalidInput = errors.NewSentinel("invalid input")

// Trainee is a coached person.
type Trainee struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	// WeeklyTarget is the number of planned workouts per week of the active program, 0 without one.
	WeeklyTarget int       `json:"weekly_target"`
	HasProgram   bool      `json:"has_program"`
	Created      time.Time `json:"created"`
}

// Exercise is a catalog exercise.
type Exercise struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Routine is a named, ordered list of exercises.
type Routine struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	ExerciseIDs []int  `json:"exercise_ids"`
}

// Dashboard is the per-trainee view over a period.
type Dashboard struct {
	Trainee Trainee                `json:"trainee"`
	Filter  analytics.Filter       `json:"filter"`
	Window  analytics.Window       `json:"window"`
	Stats   analytics.TraineeStats `json:"stats"`
	// Compliance counts completed workouts against the weekly target.
	Compliance analytics.ComplianceResult      `json:"compliance"`
	Records    []analytics.PersonalRecordEvent `json:"records"`
	// Workouts and Volume compare against the previous window. They are nil for the all filter.
	Workouts *analytics.Delta `json:"workouts,omitempty"`
	Volume   *analytics.Delta `json:"volume,omitempty"`
	// BodyWeight is nil when the trainee logged no body weight in the window.
	BodyWeight *analytics.WeightTrend `json:"body_weight,omitempty"`
	Nutrition  NutritionSummary       `json:"nutrition"`
	// ExerciseNames resolves the exercise IDs in Stats and Records.
	ExerciseNames map[int]string `json:"exercise_names"`
}

// NutritionSummary holds average daily intake over the logged days of a window.
type NutritionSummary struct {
	Average    analytics.Macros `json:"average"`
	LoggedDays int              `json:"logged_days"`
}

// StrengthTrend is the estimated one-rep max of an exercise over time.
type StrengthTrend struct {
	TraineeID int                        `json:"trainee_id"`
	Exercise  Exercise                   `json:"exercise"`
	Window    analytics.Window           `json:"window"`
	Points    []analytics.OneRepMaxPoint `json:"points"`
}

// Leaderboard ranks every trainee over a period.
type Leaderboard struct {
	Filter  analytics.Filter             `json:"filter"`
	Window  analytics.Window             `json:"window"`
	Entries []analytics.LeaderboardEntry `json:"entries"`
	// Names resolves the trainee IDs in Entries.
	Names map[int]string `json:"names"`
}

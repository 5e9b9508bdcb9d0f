package analytics_test

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/myrjola/coachstats/internal/analytics"
)

func TestEstimateOneRepMax(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		weight float64
		reps   int
		want   float64
	}{
		{"100kg x 5", 100, 5, 112.5},
		{"80kg x 10", 80, 10, 106.70},
		{"single rep is the weight", 142.5, 1, 142.5},
		{"zero weight", 0, 5, 0},
		{"negative weight", -20, 5, 0},
		{"zero reps", 100, 0, 0},
		{"negative reps", 100, -3, 0},
		{"formula diverges", 100, 37, 0},
		{"far beyond divergence", 100, 500, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := analytics.EstimateOneRepMax(tt.weight, tt.reps)
			if math.Abs(got-tt.want) > 0.05 {
				t.Errorf("EstimateOneRepMax(%v, %v) = %v, want %v", tt.weight, tt.reps, got, tt.want)
			}
		})
	}
}

func TestEstimateOneRepMax_NonFiniteWeight(t *testing.T) {
	t.Parallel()
	for _, w := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if got := analytics.EstimateOneRepMax(w, 5); got != 0 {
			t.Errorf("EstimateOneRepMax(%v, 5) = %v, want 0", w, got)
		}
	}
}

func TestEstimateOneRepMax_SingleRepIsExact(t *testing.T) {
	t.Parallel()
	for _, w := range []float64{0.5, 20, 61.25, 100, 317.5} {
		if got := analytics.EstimateOneRepMax(w, 1); got != w {
			t.Errorf("EstimateOneRepMax(%v, 1) = %v, want exactly %v", w, got, w)
		}
	}
}

func TestOneRepMaxSeries(t *testing.T) {
	t.Parallel()
	logs := []analytics.WorkoutLog{
		workout(2, 7, day(13), true, set(squat, 100, 1), set(squat, 90, 5)),
		workout(1, 7, day(11), true, set(squat, 100, 5), set(benchPress, 80, 5)),
		workout(3, 7, day(12), false, set(squat, 150, 1)),
		workout(4, 8, day(12), true, set(squat, 200, 1)),
		workout(5, 7, day(12), true, set(squat, 0, 5)),
	}

	got := analytics.OneRepMaxSeries(logs, 7, squat, analytics.Window{})
	want := []analytics.OneRepMaxPoint{
		{Date: time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), OneRM: 112.5},
		{Date: time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC), OneRM: 101.26},
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 0.05)); diff != "" {
		t.Errorf("OneRepMaxSeries() mismatch (-want +got):\n%s", diff)
	}
}

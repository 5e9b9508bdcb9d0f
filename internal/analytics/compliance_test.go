package analytics_test

import (
	"math"
	"testing"

	"github.com/myrjola/coachstats/internal/analytics"
)

func TestCompliance(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		completed int
		target    int
		want      analytics.ComplianceResult
	}{
		{"on target", 5, 5, analytics.ComplianceResult{Completed: 5, Target: 5, Percent: 100}},
		{"over target is clamped", 6, 5, analytics.ComplianceResult{Completed: 6, Target: 5, Percent: 100}},
		{"rounds half up", 1, 8, analytics.ComplianceResult{Completed: 1, Target: 8, Percent: 13}},
		{"two of three", 2, 3, analytics.ComplianceResult{Completed: 2, Target: 3, Percent: 67}},
		{"nothing done", 0, 5, analytics.ComplianceResult{Completed: 0, Target: 5, Percent: 0}},
		{"zero target", 3, 0, analytics.ComplianceResult{Completed: 3, Target: 0, Percent: 0}},
		{"negative target", 3, -1, analytics.ComplianceResult{Completed: 3, Target: -1, Percent: 0}},
		{"negative completed", -2, 5, analytics.ComplianceResult{Completed: -2, Target: 5, Percent: 0}},
		{"completed beyond int range of percent", math.MaxInt, 1,
			analytics.ComplianceResult{Completed: math.MaxInt, Target: 1, Percent: 100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := analytics.Compliance(tt.completed, tt.target); got != tt.want {
				t.Errorf("Compliance(%d, %d) = %+v, want %+v", tt.completed, tt.target, got, tt.want)
			}
		})
	}
}

func TestTargetOrDefault(t *testing.T) {
	t.Parallel()
	if got := analytics.TargetOrDefault(3, true); got != 3 {
		t.Errorf("TargetOrDefault(3, true) = %d, want 3", got)
	}
	if got := analytics.TargetOrDefault(3, false); got != analytics.DefaultWeeklyTarget {
		t.Errorf("TargetOrDefault(3, false) = %d, want %d", got, analytics.DefaultWeeklyTarget)
	}
}

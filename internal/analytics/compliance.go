package analytics

import "math"

// DefaultWeeklyTarget applies to trainees without an active program.
const DefaultWeeklyTarget = 5

// TargetOrDefault returns the program target, or DefaultWeeklyTarget when the trainee has no active program.
func TargetOrDefault(target int, hasProgram bool) int {
	if !hasProgram {
		return DefaultWeeklyTarget
	}
	return target
}

// Compliance computes the completion percentage. The target is used as supplied, so callers reporting on periods
// longer than a week decide themselves whether to rescale a weekly target.
func Compliance(completed, target int) ComplianceResult {
	result := ComplianceResult{Completed: completed, Target: target, Percent: 0}
	if target <= 0 {
		return result
	}
	ratio := float64(completed) / float64(target) * 100       //nolint:mnd // percent
	result.Percent = int(math.Round(max(0, min(ratio, 100)))) //nolint:mnd // percent
	return result
}

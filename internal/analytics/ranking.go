package analytics

import (
	"cmp"
	"slices"
)

// Leaderboard score weights.
const (
	complianceWeight = 0.5
	workoutWeight    = 10
	recordWeight     = 20
)

// RankingInput is the per-trainee input of a leaderboard.
type RankingInput struct {
	TraineeID    int `json:"trainee_id"`
	Compliance   int `json:"compliance"`
	WorkoutCount int `json:"workout_count"`
	PRCount      int `json:"pr_count"`
}

// LeaderboardEntry is a ranked trainee.
type LeaderboardEntry struct {
	Position     int     `json:"position"`
	TraineeID    int     `json:"trainee_id"`
	Score        float64 `json:"score"`
	Compliance   int     `json:"compliance"`
	WorkoutCount int     `json:"workout_count"`
	PRCount      int     `json:"pr_count"`
}

// CohortMember identifies a trainee in a leaderboard along with their program target.
type CohortMember struct {
	TraineeID    int  `json:"trainee_id"`
	WeeklyTarget int  `json:"weekly_target"`
	HasProgram   bool `json:"has_program"`
}

// Score combines compliance percent, workout count and PR count linearly.
func Score(compliance, workoutCount, prCount int) float64 {
	return float64(compliance)*complianceWeight + float64(workoutCount)*workoutWeight + float64(prCount)*recordWeight
}

// Rank scores and orders inputs. Ties are broken by trainee ID so the order is stable between requests.
func Rank(inputs []RankingInput) []LeaderboardEntry {
	entries := make([]LeaderboardEntry, 0, len(inputs))
	for _, in := range inputs {
		entries = append(entries, LeaderboardEntry{
			Position:     0,
			TraineeID:    in.TraineeID,
			Score:        Score(in.Compliance, in.WorkoutCount, in.PRCount),
			Compliance:   in.Compliance,
			WorkoutCount: in.WorkoutCount,
			PRCount:      in.PRCount,
		})
	}
	slices.SortFunc(entries, func(a, b LeaderboardEntry) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.TraineeID, b.TraineeID)
	})
	for i := range entries {
		entries[i].Position = i + 1
	}
	return entries
}

// BuildLeaderboard ranks a cohort over window from scratch.
func BuildLeaderboard(logs []WorkoutLog, cohort []CohortMember, window Window) []LeaderboardEntry {
	summary := Aggregate(logs, window)

	traineeIDs := make([]int, 0, len(cohort))
	for _, member := range cohort {
		traineeIDs = append(traineeIDs, member.TraineeID)
	}
	prCounts := make(map[int]int)
	for _, event := range DetectCohortRecords(logs, traineeIDs, window) {
		prCounts[event.TraineeID]++
	}

	inputs := make([]RankingInput, 0, len(cohort))
	for _, member := range cohort {
		var workouts int
		if stats := summary.Trainee(member.TraineeID); stats != nil {
			workouts = stats.CompletedWorkouts
		}
		inputs = append(inputs, RankingInputFor(member, workouts, prCounts[member.TraineeID]))
	}
	return Rank(inputs)
}

// RankingInputFor measures a member who completed workouts and set prCount records against their target.
func RankingInputFor(member CohortMember, workouts, prCount int) RankingInput {
	target := TargetOrDefault(member.WeeklyTarget, member.HasProgram)
	return RankingInput{
		TraineeID:    member.TraineeID,
		Compliance:   Compliance(workouts, target).Percent,
		WorkoutCount: workouts,
		PRCount:      prCount,
	}
}

package analytics_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/myrjola/coachstats/internal/analytics"
)

func TestScore(t *testing.T) {
	t.Parallel()
	if got, want := analytics.Score(80, 4, 2), 80*0.5+4*10+2*20.0; got != want {
		t.Errorf("Score(80, 4, 2) = %v, want %v", got, want)
	}
	if got := analytics.Score(0, 0, 0); got != 0 {
		t.Errorf("Score(0, 0, 0) = %v, want 0", got)
	}
}

func TestRank(t *testing.T) {
	t.Parallel()
	got := analytics.Rank([]analytics.RankingInput{
		{TraineeID: 3, Compliance: 40, WorkoutCount: 2, PRCount: 0},
		{TraineeID: 1, Compliance: 100, WorkoutCount: 5, PRCount: 1},
		{TraineeID: 2, Compliance: 40, WorkoutCount: 2, PRCount: 0},
	})
	want := []analytics.LeaderboardEntry{
		{Position: 1, TraineeID: 1, Score: 120, Compliance: 100, WorkoutCount: 5, PRCount: 1},
		{Position: 2, TraineeID: 2, Score: 40, Compliance: 40, WorkoutCount: 2, PRCount: 0},
		{Position: 3, TraineeID: 3, Score: 40, Compliance: 40, WorkoutCount: 2, PRCount: 0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Rank() mismatch (-want +got):\n%s", diff)
	}

	if got := analytics.Rank(nil); len(got) != 0 {
		t.Errorf("Rank(nil) = %v, want empty", got)
	}
}

func TestBuildLeaderboard(t *testing.T) {
	t.Parallel()
	window := analytics.Window{Start: day(11), End: day(18)}
	logs := []analytics.WorkoutLog{
		workout(1, 7, day(5), true, set(benchPress, 80, 5)),
		workout(2, 7, day(12), true, set(benchPress, 85, 3)),
		workout(3, 7, day(14), true, set(squat, 100, 5)),
		workout(4, 8, day(13), true, set(squat, 60, 5)),
		workout(5, 8, day(15), false, set(squat, 60, 5)),
	}
	cohort := []analytics.CohortMember{
		{TraineeID: 7, WeeklyTarget: 4, HasProgram: true},
		{TraineeID: 8, WeeklyTarget: 0, HasProgram: false},
		{TraineeID: 9, WeeklyTarget: 3, HasProgram: true},
	}

	got := analytics.BuildLeaderboard(logs, cohort, window)
	want := []analytics.LeaderboardEntry{
		// 2/4 = 50% compliance, 2 workouts, 1 PR.
		{Position: 1, TraineeID: 7, Score: 25 + 20 + 20, Compliance: 50, WorkoutCount: 2, PRCount: 1},
		// 1/5 = 20% compliance against the default target.
		{Position: 2, TraineeID: 8, Score: 10 + 10, Compliance: 20, WorkoutCount: 1, PRCount: 0},
		{Position: 3, TraineeID: 9, Score: 0, Compliance: 0, WorkoutCount: 0, PRCount: 0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("BuildLeaderboard() mismatch (-want +got):\n%s", diff)
	}
}

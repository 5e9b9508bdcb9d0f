package coaching_test

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/myrjola/coachstats/internal/analytics"
	"github.com/myrjola/coachstats/internal/coaching"
	"github.com/myrjola/coachstats/internal/memo"
	"github.com/myrjola/coachstats/internal/ptr"
	"github.com/myrjola/coachstats/internal/sqlite"
	"github.com/myrjola/coachstats/internal/testhelpers"
)

// Exercise and routine IDs from the fixtures.
const (
	benchPress  = 1
	backSquat   = 2
	barbellRow  = 5
	fullBodyA   = 1
	unknownFood = 9999
)

// now is a Friday. The week filter starts on Monday 2024-03-11.
var now = time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

func at(day int) time.Time {
	return time.Date(2024, time.March, day, 10, 0, 0, 0, time.UTC)
}

func midnight(day int) time.Time {
	return time.Date(2024, time.March, day, 0, 0, 0, 0, time.UTC)
}

func newService(t *testing.T) (*coaching.Service, *sqlite.Database) {
	t.Helper()
	logger := testhelpers.NewLogger(testhelpers.NewWriter(t))
	db, err := sqlite.NewDatabase(t.Context(), ":memory:", logger)
	if err != nil {
		t.Fatalf("NewDatabase() error = %v", err)
	}
	t.Cleanup(func() {
		if err = db.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	svc := coaching.NewService(db, logger, memo.New(16, time.Minute, logger), analytics.NewPeriodResolver())
	return svc, db
}

func mustCreateTrainee(t *testing.T, svc *coaching.Service, name string) int {
	t.Helper()
	id, err := svc.CreateTrainee(t.Context(), name)
	if err != nil {
		t.Fatalf("CreateTrainee() error = %v", err)
	}
	return id
}

func mustLogWorkout(t *testing.T, svc *coaching.Service, traineeID int, date time.Time, completed bool,
	sets ...analytics.SetEntry) {
	t.Helper()
	log := analytics.WorkoutLog{
		ID:        0,
		TraineeID: traineeID,
		RoutineID: 0,
		Date:      date,
		Completed: completed,
		StartTime: nil,
		EndTime:   nil,
		Sets:      sets,
	}
	if _, err := svc.LogWorkout(t.Context(), log); err != nil {
		t.Fatalf("LogWorkout() error = %v", err)
	}
}

func set(exerciseID int, weight float64, reps int) analytics.SetEntry {
	return analytics.SetEntry{ExerciseID: exerciseID, WeightKg: weight, Reps: reps, RIR: nil, Date: time.Time{}}
}

func foodByName(t *testing.T, svc *coaching.Service, name string) analytics.FoodItem {
	t.Helper()
	foods, err := svc.Foods(t.Context(), "")
	if err != nil {
		t.Fatalf("Foods() error = %v", err)
	}
	for _, f := range foods {
		if f.Name == name {
			return f
		}
	}
	t.Fatalf("food %q not in catalog", name)
	return analytics.FoodItem{}
}

// seedTrainee logs a training week that beats the previous week's bench press.
func seedTrainee(t *testing.T, svc *coaching.Service) int {
	t.Helper()
	id := mustCreateTrainee(t, svc, "Aino")
	if err := svc.SetProgram(t.Context(), id, 3); err != nil {
		t.Fatalf("SetProgram() error = %v", err)
	}
	mustLogWorkout(t, svc, id, at(8), true, set(benchPress, 95, 5))
	mustLogWorkout(t, svc, id, at(12), true, set(benchPress, 100, 5), set(backSquat, 140, 3))
	mustLogWorkout(t, svc, id, at(13), true, set(benchPress, 105, 3))
	mustLogWorkout(t, svc, id, at(14), false, set(benchPress, 200, 1))
	return id
}

func TestService_Dashboard(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	svc, _ := newService(t)
	id := seedTrainee(t, svc)

	for _, entry := range []analytics.BodyWeightEntry{
		{TraineeID: id, Date: at(11), WeightKg: 80},
		{TraineeID: id, Date: at(14), WeightKg: 79.5},
		{TraineeID: id, Date: at(1), WeightKg: 82},
	} {
		if err := svc.AddBodyWeight(ctx, entry); err != nil {
			t.Fatalf("AddBodyWeight() error = %v", err)
		}
	}
	chicken := foodByName(t, svc, "Chicken breast")
	rice := foodByName(t, svc, "White rice, cooked")
	for _, add := range []struct {
		food  analytics.FoodItem
		grams float64
		day   time.Time
	}{
		{food: chicken, grams: 200, day: at(12)},
		{food: chicken, grams: 100, day: at(13)},
		{food: rice, grams: 100, day: at(13)},
	} {
		if _, err := svc.AddNutrition(ctx, id, add.food.ID, add.grams, add.day); err != nil {
			t.Fatalf("AddNutrition() error = %v", err)
		}
	}

	got, err := svc.Dashboard(ctx, id, analytics.FilterWeek, now)
	if err != nil {
		t.Fatalf("Dashboard() error = %v", err)
	}

	if got.Stats.CompletedWorkouts != 2 || got.Stats.DistinctExercises != 2 || got.Stats.TotalVolume != 1235 {
		t.Errorf("Stats = %+v, want 2 workouts, 2 exercises and volume 1235", got.Stats)
	}
	if diff := cmp.Diff(analytics.ComplianceResult{Completed: 2, Target: 3, Percent: 67}, got.Compliance); diff != "" {
		t.Errorf("Compliance mismatch (-want +got):\n%s", diff)
	}
	wantRecords := []analytics.PersonalRecordEvent{
		{TraineeID: id, ExerciseID: benchPress, NewWeight: 105, PreviousWeight: 95, Date: at(13)},
	}
	if diff := cmp.Diff(wantRecords, got.Records); diff != "" {
		t.Errorf("Records mismatch (-want +got):\n%s", diff)
	}
	wantWorkouts := &analytics.Delta{Current: 2, Previous: 1, Change: 1, PercentChange: ptr.Ref(100.0)}
	if diff := cmp.Diff(wantWorkouts, got.Workouts); diff != "" {
		t.Errorf("Workouts mismatch (-want +got):\n%s", diff)
	}
	if got.Volume == nil || got.Volume.Previous != 475 || got.Volume.Change != 760 {
		t.Errorf("Volume = %+v, want previous 475 and change 760", got.Volume)
	}
	if got.BodyWeight == nil || got.BodyWeight.Entries != 2 || got.BodyWeight.Change != -0.5 {
		t.Errorf("BodyWeight = %+v, want 2 entries and change -0.5", got.BodyWeight)
	}
	wantNutrition := coaching.NutritionSummary{
		Average: analytics.Macros{
			Protein:  (62 + 31 + 2.7) / 2,
			Carbs:    28.0 / 2,
			Fat:      (7.2 + 3.6 + 0.3) / 2,
			Calories: ((62+31+2.7)*4 + 28*4 + (7.2+3.6+0.3)*9) / 2,
		},
		LoggedDays: 2,
	}
	if diff := cmp.Diff(wantNutrition, got.Nutrition, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("Nutrition mismatch (-want +got):\n%s", diff)
	}
	if got.ExerciseNames[benchPress] != "Bench Press" {
		t.Errorf("ExerciseNames[%d] = %q, want Bench Press", benchPress, got.ExerciseNames[benchPress])
	}

	again, err := svc.Dashboard(ctx, id, analytics.FilterWeek, now)
	if err != nil {
		t.Fatalf("Dashboard() error = %v", err)
	}
	if diff := cmp.Diff(got, again); diff != "" {
		t.Errorf("memoized Dashboard() mismatch (-want +got):\n%s", diff)
	}
	if hits := svc.CacheStats().Hits; hits != 1 {
		t.Errorf("CacheStats().Hits = %d, want 1", hits)
	}

	mustLogWorkout(t, svc, id, at(15), true, set(barbellRow, 60, 8))
	changed, err := svc.Dashboard(ctx, id, analytics.FilterWeek, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("Dashboard() error = %v", err)
	}
	if changed.Stats.CompletedWorkouts != 3 {
		t.Errorf("CompletedWorkouts after logging = %d, want 3", changed.Stats.CompletedWorkouts)
	}
}

func TestService_Dashboard_AllTime(t *testing.T) {
	t.Parallel()
	svc, _ := newService(t)
	id := seedTrainee(t, svc)

	got, err := svc.Dashboard(t.Context(), id, analytics.FilterAll, now)
	if err != nil {
		t.Fatalf("Dashboard() error = %v", err)
	}
	if got.Stats.CompletedWorkouts != 3 {
		t.Errorf("CompletedWorkouts = %d, want 3", got.Stats.CompletedWorkouts)
	}
	if len(got.Records) != 0 || got.Workouts != nil || got.Volume != nil {
		t.Errorf("all-time dashboard has comparisons: records %v, workouts %v, volume %v",
			got.Records, got.Workouts, got.Volume)
	}
	// Without a program the default target applies.
	if err = svc.SetProgram(t.Context(), id, 0); err != nil {
		t.Fatalf("SetProgram() error = %v", err)
	}
	got, err = svc.Dashboard(t.Context(), id, analytics.FilterAll, now)
	if err != nil {
		t.Fatalf("Dashboard() error = %v", err)
	}
	if got.Compliance.Target != analytics.DefaultWeeklyTarget || got.Compliance.Percent != 60 {
		t.Errorf("Compliance = %+v, want default target and 60%%", got.Compliance)
	}
}

func TestService_Dashboard_Errors(t *testing.T) {
	t.Parallel()
	svc, _ := newService(t)
	id := mustCreateTrainee(t, svc, "Bea")

	if _, err := svc.Dashboard(t.Context(), id, analytics.Filter("fortnight"), now); !errors.Is(err,
		analytics.ErrUnknownFilter) {
		t.Errorf("Dashboard() error = %v, want ErrUnknownFilter", err)
	}
	if _, err := svc.Dashboard(t.Context(), id+1, analytics.FilterWeek, now); !errors.Is(err, coaching.ErrNotFound) {
		t.Errorf("Dashboard() error = %v, want ErrNotFound", err)
	}

	got, err := svc.Dashboard(t.Context(), id, analytics.FilterToday, now)
	if err != nil {
		t.Fatalf("Dashboard() error = %v", err)
	}
	if got.Stats.CompletedWorkouts != 0 || got.BodyWeight != nil || got.Nutrition.LoggedDays != 0 {
		t.Errorf("Dashboard() of an idle trainee = %+v, want empty", got)
	}
}

func TestService_Dashboard_NutritionWestOfUTC(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	svc, _ := newService(t)
	id := mustCreateTrainee(t, svc, "Aino")
	chicken := foodByName(t, svc, "Chicken breast")

	edt := time.FixedZone("EDT", -4*60*60)
	localNow := time.Date(2024, time.March, 15, 10, 0, 0, 0, edt)
	for _, day := range []int{1, 15} {
		date := time.Date(2024, time.March, day, 0, 0, 0, 0, edt)
		if _, err := svc.AddNutrition(ctx, id, chicken.ID, 100, date); err != nil {
			t.Fatalf("AddNutrition() error = %v", err)
		}
	}

	tests := []struct {
		filter analytics.Filter
		want   int
	}{
		{filter: analytics.FilterToday, want: 1},
		{filter: analytics.FilterMonth, want: 2},
	}
	for _, tt := range tests {
		got, err := svc.Dashboard(ctx, id, tt.filter, localNow)
		if err != nil {
			t.Fatalf("Dashboard() error = %v", err)
		}
		if got.Nutrition.LoggedDays != tt.want {
			t.Errorf("Dashboard(%s).Nutrition.LoggedDays = %d, want %d", tt.filter, got.Nutrition.LoggedDays, tt.want)
		}
	}
}

func TestService_Leaderboard_SharesWorkWithDashboard(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	svc, _ := newService(t)
	id := seedTrainee(t, svc)

	if _, err := svc.Leaderboard(ctx, analytics.FilterWeek, now); err != nil {
		t.Fatalf("Leaderboard() error = %v", err)
	}
	got, err := svc.Dashboard(ctx, id, analytics.FilterWeek, now)
	if err != nil {
		t.Fatalf("Dashboard() error = %v", err)
	}
	if hits := svc.CacheStats().Hits; hits != 1 {
		t.Errorf("CacheStats().Hits = %d, want 1", hits)
	}
	if got.Stats.CompletedWorkouts != 2 || len(got.Records) != 1 {
		t.Errorf("Dashboard() = %+v, want 2 workouts and 1 record", got.Stats)
	}
}

func TestService_Leaderboard(t *testing.T) {
	t.Parallel()
	svc, _ := newService(t)
	aino := seedTrainee(t, svc)
	bea := mustCreateTrainee(t, svc, "Bea")
	mustLogWorkout(t, svc, bea, at(14), true, set(backSquat, 80, 5))
	cai := mustCreateTrainee(t, svc, "Cai")

	got, err := svc.Leaderboard(t.Context(), analytics.FilterWeek, now)
	if err != nil {
		t.Fatalf("Leaderboard() error = %v", err)
	}
	want := []analytics.LeaderboardEntry{
		{Position: 1, TraineeID: aino, Score: 73.5, Compliance: 67, WorkoutCount: 2, PRCount: 1},
		{Position: 2, TraineeID: bea, Score: 20, Compliance: 20, WorkoutCount: 1, PRCount: 0},
		{Position: 3, TraineeID: cai, Score: 0, Compliance: 0, WorkoutCount: 0, PRCount: 0},
	}
	if diff := cmp.Diff(want, got.Entries); diff != "" {
		t.Errorf("Leaderboard() mismatch (-want +got):\n%s", diff)
	}
	if got.Names[bea] != "Bea" {
		t.Errorf("Names[%d] = %q, want Bea", bea, got.Names[bea])
	}
}

func TestService_StrengthTrend(t *testing.T) {
	t.Parallel()
	svc, _ := newService(t)
	id := seedTrainee(t, svc)

	got, err := svc.StrengthTrend(t.Context(), id, benchPress, analytics.FilterAll, now)
	if err != nil {
		t.Fatalf("StrengthTrend() error = %v", err)
	}
	want := []analytics.OneRepMaxPoint{
		{Date: midnight(8), OneRM: analytics.EstimateOneRepMax(95, 5)},
		{Date: midnight(12), OneRM: analytics.EstimateOneRepMax(100, 5)},
		{Date: midnight(13), OneRM: analytics.EstimateOneRepMax(105, 3)},
	}
	if diff := cmp.Diff(want, got.Points); diff != "" {
		t.Errorf("StrengthTrend() mismatch (-want +got):\n%s", diff)
	}
	if got.Exercise.Name != "Bench Press" {
		t.Errorf("Exercise = %+v, want Bench Press", got.Exercise)
	}

	if _, err = svc.StrengthTrend(t.Context(), id, 999, analytics.FilterAll, now); !errors.Is(err,
		coaching.ErrNotFound) {
		t.Errorf("StrengthTrend() error = %v, want ErrNotFound", err)
	}
}

func TestService_AddNutrition_Accumulates(t *testing.T) {
	t.Parallel()
	svc, _ := newService(t)
	id := mustCreateTrainee(t, svc, "Aino")
	chicken := foodByName(t, svc, "Chicken breast")

	var got analytics.NutritionLogEntry
	for range 2 {
		var err error
		if got, err = svc.AddNutrition(t.Context(), id, chicken.ID, 200, at(12)); err != nil {
			t.Fatalf("AddNutrition() error = %v", err)
		}
	}
	want := analytics.NutritionLogEntry{
		TraineeID:     id,
		Date:          midnight(12),
		TotalProtein:  124,
		TotalCarbs:    0,
		TotalFat:      14.4,
		TotalCalories: 625.6,
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("AddNutrition() mismatch (-want +got):\n%s", diff)
	}

	if _, err := svc.AddNutrition(t.Context(), id, unknownFood, 100, at(12)); !errors.Is(err, coaching.ErrNotFound) {
		t.Errorf("AddNutrition() error = %v, want ErrNotFound", err)
	}
	if _, err := svc.AddNutrition(t.Context(), id, chicken.ID, 0, at(12)); !errors.Is(err, coaching.ErrInvalidInput) {
		t.Errorf("AddNutrition() error = %v, want ErrInvalidInput", err)
	}
}

func TestService_SwapFood(t *testing.T) {
	t.Parallel()
	svc, _ := newService(t)
	chicken := foodByName(t, svc, "Chicken breast")
	turkey := foodByName(t, svc, "Turkey breast")
	rice := foodByName(t, svc, "White rice, cooked")

	got, err := svc.SwapFood(t.Context(), chicken.ID, turkey.ID, 100)
	if err != nil {
		t.Fatalf("SwapFood() error = %v", err)
	}
	if diff := cmp.Diff(100*31.0/29, got.TargetAmount, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("TargetAmount mismatch (-want +got):\n%s", diff)
	}

	if _, err = svc.SwapFood(t.Context(), chicken.ID, rice.ID, 100); !errors.Is(err, analytics.ErrCategoryMismatch) {
		t.Errorf("SwapFood() error = %v, want ErrCategoryMismatch", err)
	}
	if _, err = svc.SwapFood(t.Context(), chicken.ID, unknownFood, 100); !errors.Is(err, coaching.ErrNotFound) {
		t.Errorf("SwapFood() error = %v, want ErrNotFound", err)
	}

	suggestions, err := svc.SwapSuggestions(t.Context(), chicken.ID, 150)
	if err != nil {
		t.Fatalf("SwapSuggestions() error = %v", err)
	}
	if len(suggestions) == 0 {
		t.Fatal("SwapSuggestions() is empty")
	}
	for i, s := range suggestions {
		if s.Target.Category != analytics.FoodCategoryProtein || s.Target.ID == chicken.ID {
			t.Errorf("suggestion %d = %s (%s), want another protein", i, s.Target.Name, s.Target.Category)
		}
		if i > 0 && s.MatchScore > suggestions[i-1].MatchScore {
			t.Errorf("suggestions not ordered by score at %d", i)
		}
	}
}

func TestService_Drafts(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	svc, db := newService(t)
	id := mustCreateTrainee(t, svc, "Aino")
	empty := analytics.DraftEntry{Weight: "", Reps: "", RIR: "", IsComplete: false}

	got, err := svc.LoadDraft(ctx, id, fullBodyA)
	if err != nil {
		t.Fatalf("LoadDraft() error = %v", err)
	}
	if diff := cmp.Diff(analytics.Draft{backSquat: empty, benchPress: empty, barbellRow: empty}, got); diff != "" {
		t.Errorf("LoadDraft() without a draft mismatch (-want +got):\n%s", diff)
	}

	// A draft stored before sets were collapsed into a single entry.
	legacy := `{"1": {"sets": [{"weight": 80, "reps": 8}, {"weight": 90, "reps": 5}], "isComplete": true},
		"2": "garbage"}`
	if _, err = db.ReadWrite.ExecContext(ctx,
		`INSERT INTO workout_drafts (trainee_id, routine_id, payload) VALUES (?, ?, ?)`,
		id, fullBodyA, legacy); err != nil {
		t.Fatalf("insert legacy draft: %v", err)
	}
	got, err = svc.LoadDraft(ctx, id, fullBodyA)
	if err != nil {
		t.Fatalf("LoadDraft() error = %v", err)
	}
	want := analytics.Draft{
		benchPress: {Weight: "90", Reps: "5", RIR: "", IsComplete: true},
		backSquat:  empty,
		barbellRow: empty,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("LoadDraft() legacy mismatch (-want +got):\n%s", diff)
	}

	want[backSquat] = analytics.DraftEntry{Weight: "120", Reps: "5", RIR: "2", IsComplete: false}
	if err = svc.SaveDraft(ctx, id, fullBodyA, want); err != nil {
		t.Fatalf("SaveDraft() error = %v", err)
	}
	got, err = svc.LoadDraft(ctx, id, fullBodyA)
	if err != nil {
		t.Fatalf("LoadDraft() error = %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("LoadDraft() after save mismatch (-want +got):\n%s", diff)
	}

	log := analytics.WorkoutLog{
		ID:        0,
		TraineeID: id,
		RoutineID: fullBodyA,
		Date:      at(12),
		Completed: true,
		StartTime: nil,
		EndTime:   nil,
		Sets:      []analytics.SetEntry{set(backSquat, 120, 5)},
	}
	if _, err = svc.LogWorkout(ctx, log); err != nil {
		t.Fatalf("LogWorkout() error = %v", err)
	}
	got, err = svc.LoadDraft(ctx, id, fullBodyA)
	if err != nil {
		t.Fatalf("LoadDraft() error = %v", err)
	}
	if diff := cmp.Diff(analytics.Draft{backSquat: empty, benchPress: empty, barbellRow: empty}, got); diff != "" {
		t.Errorf("LoadDraft() after logging mismatch (-want +got):\n%s", diff)
	}

	if _, err = svc.LoadDraft(ctx, id, 999); !errors.Is(err, coaching.ErrNotFound) {
		t.Errorf("LoadDraft() error = %v, want ErrNotFound", err)
	}
}

func TestService_LogWorkout_Invalid(t *testing.T) {
	t.Parallel()
	svc, _ := newService(t)
	id := mustCreateTrainee(t, svc, "Aino")

	tests := []struct {
		name string
		log  analytics.WorkoutLog
		want error
	}{
		{
			name: "negative weight",
			log: analytics.WorkoutLog{ID: 0, TraineeID: id, RoutineID: 0, Date: at(12), Completed: true,
				StartTime: nil, EndTime: nil, Sets: []analytics.SetEntry{set(benchPress, -1, 5)}},
			want: coaching.ErrInvalidInput,
		},
		{
			name: "missing date",
			log: analytics.WorkoutLog{ID: 0, TraineeID: id, RoutineID: 0, Date: time.Time{}, Completed: true,
				StartTime: nil, EndTime: nil, Sets: nil},
			want: coaching.ErrInvalidInput,
		},
		{
			name: "unknown trainee",
			log: analytics.WorkoutLog{ID: 0, TraineeID: id + 1, RoutineID: 0, Date: at(12), Completed: true,
				StartTime: nil, EndTime: nil, Sets: nil},
			want: coaching.ErrNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.LogWorkout(t.Context(), tt.log); !errors.Is(err, tt.want) {
				t.Errorf("LogWorkout() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestService_ImportCatalog(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	svc, _ := newService(t)

	doc := `foods:
  - name: Apple
    category: fruit
    protein: 0.4
    carbs: 13
    fat: 0.2
  - name: Blueberries
    category: fruit
    protein: 0.7
    carbs: 14
    fat: 0.3
`
	n, err := svc.ImportCatalog(ctx, strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ImportCatalog() error = %v", err)
	}
	if n != 2 {
		t.Errorf("ImportCatalog() = %d, want 2", n)
	}
	fruit, err := svc.Foods(ctx, analytics.FoodCategoryFruit)
	if err != nil {
		t.Fatalf("Foods() error = %v", err)
	}
	var names []string
	for _, f := range fruit {
		names = append(names, f.Name)
		if f.Name == "Apple" && f.ProteinPer100g != 0.4 {
			t.Errorf("Apple protein = %v, want updated 0.4", f.ProteinPer100g)
		}
	}
	if diff := cmp.Diff([]string{"Apple", "Banana", "Blueberries"}, names); diff != "" {
		t.Errorf("fruit mismatch (-want +got):\n%s", diff)
	}

	if _, err = svc.ImportCatalog(ctx, strings.NewReader("foods:\n  - name: Candy\n    category: sweets\n")); err == nil {
		t.Error("ImportCatalog() error = nil, want validation error")
	}

	var exported strings.Builder
	if err = svc.ExportCatalog(ctx, &exported); err != nil {
		t.Fatalf("ExportCatalog() error = %v", err)
	}
	if !strings.Contains(exported.String(), "name: Blueberries") {
		t.Errorf("ExportCatalog() = %q, want Blueberries", exported.String())
	}
}

func TestService_Export(t *testing.T) {
	t.Parallel()
	svc, _ := newService(t)
	id := seedTrainee(t, svc)
	dir := t.TempDir()

	path, err := svc.Export(t.Context(), id, dir)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if _, err = os.Stat(path); err != nil {
		t.Errorf("exported database missing: %v", err)
	}
	if _, err = svc.Export(t.Context(), id+1, dir); !errors.Is(err, coaching.ErrNotFound) {
		t.Errorf("Export() error = %v, want ErrNotFound", err)
	}
}

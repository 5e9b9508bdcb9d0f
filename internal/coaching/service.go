// Package coaching loads training and nutrition logs from the database, runs the analytics engine over them and
// persists what trainees submit.
package coaching

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/myrjola/coachstats/internal/analytics"
	"github.com/myrjola/coachstats/internal/catalog"
	"github.com/myrjola/coachstats/internal/errors"
	"github.com/myrjola/coachstats/internal/memo"
	"github.com/myrjola/coachstats/internal/sqlite"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentLoads bounds the per-trainee queries of a cohort.
const maxConcurrentLoads = 4

// Service handles the coaching use cases.
type Service struct {
	db       *sqlite.Database
	repo     *repository
	logger   *slog.Logger
	cache    *memo.Cache
	resolver analytics.PeriodResolver
}

// NewService creates a coaching service. A nil cache disables memoization.
func NewService(
	db *sqlite.Database,
	logger *slog.Logger,
	cache *memo.Cache,
	resolver analytics.PeriodResolver,
) *Service {
	factory := newRepositoryFactory(db, logger)
	return &Service{
		db:       db,
		repo:     factory.newRepository(),
		logger:   logger,
		cache:    cache,
		resolver: resolver,
	}
}

// CreateTrainee registers a trainee and returns the ID.
func (s *Service) CreateTrainee(ctx context.Context, name string) (int, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("%w: trainee name is empty", ErrInvalidInput)
	}
	id, err := s.repo.trainees.Create(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("create trainee: %w", err)
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "trainee created", slog.Int("trainee_id", id))
	return id, nil
}

// Trainee retrieves a trainee.
func (s *Service) Trainee(ctx context.Context, id int) (Trainee, error) {
	trainee, err := s.repo.trainees.Get(ctx, id)
	if err != nil {
		return Trainee{}, fmt.Errorf("get trainee %d: %w", id, err)
	}
	return trainee, nil
}

// Trainees lists every trainee.
func (s *Service) Trainees(ctx context.Context) ([]Trainee, error) {
	trainees, err := s.repo.trainees.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list trainees: %w", err)
	}
	return trainees, nil
}

// SetProgram sets the weekly workout target of the trainee's program. A non-positive target ends the program.
func (s *Service) SetProgram(ctx context.Context, traineeID, weeklyTarget int) error {
	if err := s.repo.trainees.SetProgram(ctx, traineeID, weeklyTarget); err != nil {
		return fmt.Errorf("set program of trainee %d: %w", traineeID, err)
	}
	return nil
}

// Exercises lists the exercise catalog.
func (s *Service) Exercises(ctx context.Context) ([]Exercise, error) {
	exercises, err := s.repo.workouts.Exercises(ctx)
	if err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}
	return exercises, nil
}

// Foods lists the food catalog. An empty category lists every food.
func (s *Service) Foods(ctx context.Context, category analytics.FoodCategory) ([]analytics.FoodItem, error) {
	foods, err := s.repo.foods.List(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("list foods: %w", err)
	}
	return foods, nil
}

// LogWorkout stores a workout. Logging a completed workout of a routine discards the routine's draft.
func (s *Service) LogWorkout(ctx context.Context, log analytics.WorkoutLog) (int, error) {
	if log.Date.IsZero() {
		return 0, fmt.Errorf("%w: workout date is missing", ErrInvalidInput)
	}
	for _, set := range log.Sets {
		if set.WeightKg < 0 || set.Reps < 0 || (set.RIR != nil && *set.RIR < 0) {
			return 0, fmt.Errorf("%w: negative set values for exercise %d", ErrInvalidInput, set.ExerciseID)
		}
	}
	if _, err := s.repo.trainees.Get(ctx, log.TraineeID); err != nil {
		return 0, fmt.Errorf("get trainee %d: %w", log.TraineeID, err)
	}

	id, err := s.repo.workouts.Create(ctx, log)
	if err != nil {
		return 0, errors.Wrap(err, "create workout log", slog.Int("trainee_id", log.TraineeID))
	}
	if log.Completed && log.RoutineID != 0 {
		if err = s.repo.drafts.Delete(ctx, log.TraineeID, log.RoutineID); err != nil {
			return 0, fmt.Errorf("discard draft: %w", err)
		}
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "workout logged",
		slog.Int("trainee_id", log.TraineeID),
		slog.Int("workout_log_id", id),
		slog.Int("sets", len(log.Sets)),
		slog.Bool("completed", log.Completed))
	return id, nil
}

// AddBodyWeight stores a body-weight reading.
func (s *Service) AddBodyWeight(ctx context.Context, entry analytics.BodyWeightEntry) error {
	if entry.WeightKg <= 0 {
		return fmt.Errorf("%w: body weight must be positive", ErrInvalidInput)
	}
	if err := s.repo.bodyWeight.Add(ctx, entry); err != nil {
		return errors.Wrap(err, "add body weight", slog.Int("trainee_id", entry.TraineeID))
	}
	return nil
}

// AddNutrition adds grams of a food to the trainee's log of the day and returns the day's totals.
func (s *Service) AddNutrition(
	ctx context.Context,
	traineeID, foodID int,
	grams float64,
	day time.Time,
) (analytics.NutritionLogEntry, error) {
	if grams <= 0 {
		return analytics.NutritionLogEntry{}, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	food, err := s.repo.foods.Get(ctx, foodID)
	if err != nil {
		return analytics.NutritionLogEntry{}, fmt.Errorf("get food %d: %w", foodID, err)
	}
	entry, err := s.repo.nutrition.Add(ctx, traineeID, day, analytics.MacrosFor(food, grams))
	if err != nil {
		return analytics.NutritionLogEntry{}, errors.Wrap(err, "add nutrition",
			slog.Int("trainee_id", traineeID), slog.Int("food_id", foodID))
	}
	return entry, nil
}

// window resolves filter and returns it together with the lower bound of the data needed to compare against the
// previous window.
func (s *Service) window(filter analytics.Filter, now time.Time) (analytics.Window, time.Time, error) {
	window, err := s.resolver.Resolve(filter, now)
	if err != nil {
		return analytics.Window{}, time.Time{}, fmt.Errorf("resolve period: %w", err)
	}
	since := window.Start
	if previous, ok := window.Previous(); ok {
		since = previous.Start
	}
	return window, since, nil
}

// traineeWork is what a trainee did in a window and the comparison against the window before it. Dashboards and
// leaderboards over the same period share it through the memo cache.
type traineeWork struct {
	Stats            analytics.TraineeStats          `json:"stats"`
	Records          []analytics.PersonalRecordEvent `json:"records"`
	PreviousWorkouts int                             `json:"previous_workouts"`
	PreviousVolume   float64                         `json:"previous_volume"`
}

func computeWork(logs []analytics.WorkoutLog, traineeID int, window analytics.Window) traineeWork {
	work := traineeWork{
		Stats: analytics.TraineeStats{
			TraineeID:         traineeID,
			CompletedWorkouts: 0,
			DistinctExercises: 0,
			TotalVolume:       0,
			Exercises:         map[int]analytics.ExerciseStats{},
		},
		Records:          analytics.DetectRecords(logs, traineeID, window),
		PreviousWorkouts: 0,
		PreviousVolume:   0,
	}
	if current := analytics.Aggregate(logs, window).Trainee(traineeID); current != nil {
		work.Stats = *current
	}
	if previous, ok := window.Previous(); ok {
		if prev := analytics.Aggregate(logs, previous).Trainee(traineeID); prev != nil {
			work.PreviousWorkouts, work.PreviousVolume = prev.CompletedWorkouts, prev.TotalVolume
		}
	}
	return work
}

// work returns the memoized traineeWork for logs, which must cover the window and the one before it.
func (s *Service) work(
	ctx context.Context,
	traineeID int,
	filter analytics.Filter,
	window analytics.Window,
	logs []analytics.WorkoutLog,
) (traineeWork, error) {
	digest, err := memo.Digest(logs, window)
	if err != nil {
		return traineeWork{}, fmt.Errorf("digest workout logs: %w", err)
	}
	key := memo.Key{Namespace: "work", TraineeID: traineeID, Period: string(filter), Inputs: digest}
	return memo.Do(ctx, s.cache, key, func() (traineeWork, error) {
		return computeWork(logs, traineeID, window), nil
	})
}

// Dashboard summarises a trainee's training and nutrition in the period ending at now.
func (s *Service) Dashboard(
	ctx context.Context,
	traineeID int,
	filter analytics.Filter,
	now time.Time,
) (Dashboard, error) {
	window, since, err := s.window(filter, now)
	if err != nil {
		return Dashboard{}, err
	}
	trainee, err := s.repo.trainees.Get(ctx, traineeID)
	if err != nil {
		return Dashboard{}, fmt.Errorf("get trainee %d: %w", traineeID, err)
	}
	logs, err := s.repo.workouts.List(ctx, traineeID, since)
	if err != nil {
		return Dashboard{}, fmt.Errorf("list workout logs: %w", err)
	}
	bodyWeight, err := s.repo.bodyWeight.List(ctx, traineeID, window.Start)
	if err != nil {
		return Dashboard{}, fmt.Errorf("list body weight: %w", err)
	}
	nutrition, err := s.repo.nutrition.List(ctx, traineeID, window.Start, now.Location())
	if err != nil {
		return Dashboard{}, fmt.Errorf("list nutrition: %w", err)
	}
	exercises, err := s.repo.workouts.Exercises(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("list exercises: %w", err)
	}
	work, err := s.work(ctx, traineeID, filter, window, logs)
	if err != nil {
		return Dashboard{}, err
	}

	d := Dashboard{
		Trainee: trainee,
		Filter:  filter,
		Window:  window,
		Stats:   work.Stats,
		Compliance: analytics.Compliance(work.Stats.CompletedWorkouts,
			analytics.TargetOrDefault(trainee.WeeklyTarget, trainee.HasProgram)),
		Records:       work.Records,
		Workouts:      nil,
		Volume:        nil,
		BodyWeight:    nil,
		Nutrition:     NutritionSummary{Average: analytics.Macros{}, LoggedDays: 0},
		ExerciseNames: make(map[int]string, len(exercises)),
	}
	if !window.Unbounded() {
		workouts := analytics.Compare(float64(work.Stats.CompletedWorkouts), float64(work.PreviousWorkouts))
		volume := analytics.Compare(work.Stats.TotalVolume, work.PreviousVolume)
		d.Workouts, d.Volume = &workouts, &volume
	}
	if trend, ok := analytics.BodyWeightTrend(bodyWeight, traineeID, window); ok {
		d.BodyWeight = &trend
	}
	d.Nutrition.Average, d.Nutrition.LoggedDays = analytics.NutritionAverages(nutrition, traineeID, window)
	for _, e := range exercises {
		d.ExerciseNames[e.ID] = e.Name
	}
	return d, nil
}

// Leaderboard ranks every trainee over the period ending at now.
func (s *Service) Leaderboard(ctx context.Context, filter analytics.Filter, now time.Time) (Leaderboard, error) {
	window, since, err := s.window(filter, now)
	if err != nil {
		return Leaderboard{}, err
	}
	cohort, names, err := s.repo.trainees.Cohort(ctx)
	if err != nil {
		return Leaderboard{}, fmt.Errorf("list cohort: %w", err)
	}

	inputs := make([]analytics.RankingInput, len(cohort))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLoads)
	for i, member := range cohort {
		g.Go(func() error {
			logs, loadErr := s.repo.workouts.List(gctx, member.TraineeID, since)
			if loadErr != nil {
				return fmt.Errorf("list workout logs of trainee %d: %w", member.TraineeID, loadErr)
			}
			work, workErr := s.work(gctx, member.TraineeID, filter, window, logs)
			if workErr != nil {
				return workErr
			}
			inputs[i] = analytics.RankingInputFor(member, work.Stats.CompletedWorkouts, len(work.Records))
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return Leaderboard{}, err //nolint:wrapcheck // wrapped inside the group.
	}

	entries := analytics.Rank(inputs)
	s.logger.LogAttrs(ctx, slog.LevelDebug, "leaderboard built",
		slog.String("filter", string(filter)),
		slog.Int("trainees", len(cohort)))
	return Leaderboard{Filter: filter, Window: window, Entries: entries, Names: names}, nil
}

// StrengthTrend returns the estimated one-rep max of an exercise per workout in the period ending at now.
func (s *Service) StrengthTrend(
	ctx context.Context,
	traineeID, exerciseID int,
	filter analytics.Filter,
	now time.Time,
) (StrengthTrend, error) {
	window, err := s.resolver.Resolve(filter, now)
	if err != nil {
		return StrengthTrend{}, fmt.Errorf("resolve period: %w", err)
	}
	if _, err = s.repo.trainees.Get(ctx, traineeID); err != nil {
		return StrengthTrend{}, fmt.Errorf("get trainee %d: %w", traineeID, err)
	}
	exercises, err := s.repo.workouts.Exercises(ctx)
	if err != nil {
		return StrengthTrend{}, fmt.Errorf("list exercises: %w", err)
	}
	trend := StrengthTrend{TraineeID: traineeID, Exercise: Exercise{}, Window: window, Points: nil}
	found := false
	for _, e := range exercises {
		if e.ID == exerciseID {
			trend.Exercise, found = e, true
		}
	}
	if !found {
		return StrengthTrend{}, fmt.Errorf("get exercise %d: %w", exerciseID, ErrNotFound)
	}

	logs, err := s.repo.workouts.List(ctx, traineeID, window.Start)
	if err != nil {
		return StrengthTrend{}, fmt.Errorf("list workout logs: %w", err)
	}
	digest, err := memo.Digest(logs, window)
	if err != nil {
		return StrengthTrend{}, fmt.Errorf("digest trend inputs: %w", err)
	}
	key := memo.Key{
		Namespace: "trend:" + strconv.Itoa(exerciseID),
		TraineeID: traineeID,
		Period:    string(filter),
		Inputs:    digest,
	}
	trend.Points, err = memo.Do(ctx, s.cache, key, func() ([]analytics.OneRepMaxPoint, error) {
		return analytics.OneRepMaxSeries(logs, traineeID, exerciseID, window), nil
	})
	if err != nil {
		return StrengthTrend{}, err
	}
	return trend, nil
}

// SwapFood computes how much of the target food replaces grams of the source food.
func (s *Service) SwapFood(ctx context.Context, sourceID, targetID int, grams float64) (analytics.SwapResult, error) {
	source, err := s.repo.foods.Get(ctx, sourceID)
	if err != nil {
		return analytics.SwapResult{}, fmt.Errorf("get food %d: %w", sourceID, err)
	}
	target, err := s.repo.foods.Get(ctx, targetID)
	if err != nil {
		return analytics.SwapResult{}, fmt.Errorf("get food %d: %w", targetID, err)
	}
	result, err := analytics.Swap(source, target, grams)
	if err != nil {
		return analytics.SwapResult{}, errors.Wrap(err, "swap food",
			slog.Int("source_id", sourceID), slog.Int("target_id", targetID))
	}
	return result, nil
}

// SwapSuggestions lists replacements for grams of a food from its category, best match first.
func (s *Service) SwapSuggestions(ctx context.Context, sourceID int, grams float64) ([]analytics.SwapResult, error) {
	source, err := s.repo.foods.Get(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("get food %d: %w", sourceID, err)
	}
	foods, err := s.repo.foods.List(ctx, source.Category)
	if err != nil {
		return nil, fmt.Errorf("list foods: %w", err)
	}
	return analytics.SwapCandidates(source, grams, foods), nil
}

// LoadDraft returns the trainee's in-progress input for a routine, holding exactly the routine's exercises.
// Stored drafts of older shapes are migrated and unreadable ones come back empty.
func (s *Service) LoadDraft(ctx context.Context, traineeID, routineID int) (analytics.Draft, error) {
	routine, err := s.repo.workouts.Routine(ctx, routineID)
	if err != nil {
		return nil, fmt.Errorf("get routine %d: %w", routineID, err)
	}
	payload, err := s.repo.drafts.Get(ctx, traineeID, routineID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("get draft: %w", err)
	}
	return analytics.MigrateDraft(payload, routine.ExerciseIDs), nil
}

// SaveDraft stores the trainee's in-progress input for a routine in the current shape.
func (s *Service) SaveDraft(ctx context.Context, traineeID, routineID int, draft analytics.Draft) error {
	if _, err := s.repo.workouts.Routine(ctx, routineID); err != nil {
		return fmt.Errorf("get routine %d: %w", routineID, err)
	}
	payload, err := analytics.EncodeDraft(draft)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	if err = s.repo.drafts.Save(ctx, traineeID, routineID, payload); err != nil {
		return errors.Wrap(err, "save draft", slog.Int("trainee_id", traineeID), slog.Int("routine_id", routineID))
	}
	return nil
}

// ImportCatalog reads a YAML food catalog and upserts every food by name. It returns the number of foods.
func (s *Service) ImportCatalog(ctx context.Context, r io.Reader) (int, error) {
	foods, err := catalog.Parse(r)
	if err != nil {
		return 0, fmt.Errorf("parse catalog: %w", err)
	}
	if err = s.repo.foods.Upsert(ctx, foods); err != nil {
		return 0, fmt.Errorf("upsert foods: %w", err)
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "catalog imported", slog.Int("foods", len(foods)))
	return len(foods), nil
}

// ExportCatalog writes the food catalog as YAML.
func (s *Service) ExportCatalog(ctx context.Context, w io.Writer) error {
	foods, err := s.repo.foods.List(ctx, "")
	if err != nil {
		return fmt.Errorf("list foods: %w", err)
	}
	if err = catalog.Encode(w, foods); err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	return nil
}

// Export writes everything belonging to the trainee into a standalone database under dir and returns its path.
func (s *Service) Export(ctx context.Context, traineeID int, dir string) (string, error) {
	if _, err := s.repo.trainees.Get(ctx, traineeID); err != nil {
		return "", fmt.Errorf("get trainee %d: %w", traineeID, err)
	}
	path, err := s.db.ExportTrainee(ctx, traineeID, dir)
	if err != nil {
		return "", errors.Wrap(err, "export trainee", slog.Int("trainee_id", traineeID), slog.String("dir", dir))
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "trainee exported",
		slog.Int("trainee_id", traineeID), slog.String("path", path))
	return path, nil
}

// CacheStats reports memoization effectiveness.
func (s *Service) CacheStats() memo.Stats {
	if s.cache == nil {
		return memo.Stats{}
	}
	return s.cache.Stats()
}

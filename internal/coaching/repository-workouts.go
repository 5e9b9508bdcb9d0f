package coaching

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/myrjola/coachstats/internal/analytics"
	"github.com/myrjola/coachstats/internal/ptr"
	"github.com/myrjola/coachstats/internal/sqlite"
)

type sqliteWorkoutRepository struct {
	baseRepository
}

func newSQLiteWorkoutRepository(db *sqlite.Database, logger *slog.Logger) *sqliteWorkoutRepository {
	return &sqliteWorkoutRepository{baseRepository: newBaseRepository(db, logger)}
}

// Create stores a workout log with its sets in one transaction and returns the log ID.
func (r *sqliteWorkoutRepository) Create(ctx context.Context, log analytics.WorkoutLog) (int, error) {
	var id int
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		var routineID sql.NullInt64
		if log.RoutineID != 0 {
			routineID = sql.NullInt64{Int64: int64(log.RoutineID), Valid: true}
		}
		if err := tx.QueryRowContext(ctx, `
			INSERT INTO workout_logs (trainee_id, routine_id, date, completed)
			VALUES (?, ?, ?, ?)
			RETURNING id`,
			log.TraineeID, routineID, formatTimestamp(log.Date), log.Completed).Scan(&id); err != nil {
			return fmt.Errorf("insert workout log: %w", err)
		}

		for _, set := range log.Sets {
			date := set.Date
			if date.IsZero() {
				date = log.Date
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO set_entries (workout_log_id, exercise_id, weight_kg, reps, rir, date)
				VALUES (?, ?, ?, ?, ?, ?)`,
				id, set.ExerciseID, set.WeightKg, set.Reps, set.RIR, formatTimestamp(date)); err != nil {
				return fmt.Errorf("insert set entry: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err //nolint:wrapcheck // already wrapped inside the transaction.
	}
	return id, nil
}

// List retrieves the trainee's workout logs dated at or after since, oldest first. A zero since lists every log.
func (r *sqliteWorkoutRepository) List(
	ctx context.Context,
	traineeID int,
	since time.Time,
) (_ []analytics.WorkoutLog, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT w.id, w.routine_id, w.date, w.completed,
		       s.exercise_id, s.weight_kg, s.reps, s.rir, s.date
		FROM workout_logs w
		LEFT JOIN set_entries s ON s.workout_log_id = w.id
		WHERE w.trainee_id = ? AND w.date >= ?
		ORDER BY w.date, w.id, s.id`,
		traineeID, sinceBound(since))
	if err != nil {
		return nil, fmt.Errorf("query workout logs: %w", err)
	}
	defer closeRows(rows, &err)

	var logs []analytics.WorkoutLog
	for rows.Next() {
		var (
			logID      int
			routineID  sql.NullInt64
			logDate    string
			completed  bool
			exerciseID sql.NullInt64
			weightKg   sql.NullFloat64
			reps       sql.NullInt64
			rir        sql.Null[int]
			setDate    sql.NullString
		)
		if err = rows.Scan(&logID, &routineID, &logDate, &completed,
			&exerciseID, &weightKg, &reps, &rir, &setDate); err != nil {
			return nil, fmt.Errorf("scan workout row: %w", err)
		}

		if len(logs) == 0 || logs[len(logs)-1].ID != logID {
			var date time.Time
			if date, err = parseTimestamp(logDate); err != nil {
				return nil, err
			}
			logs = append(logs, analytics.WorkoutLog{
				ID:        logID,
				TraineeID: traineeID,
				RoutineID: int(routineID.Int64),
				Date:      date,
				Completed: completed,
				StartTime: nil,
				EndTime:   nil,
				Sets:      nil,
			})
		}
		if !exerciseID.Valid {
			continue
		}

		set := analytics.SetEntry{
			ExerciseID: int(exerciseID.Int64),
			WeightKg:   weightKg.Float64,
			Reps:       int(reps.Int64),
			RIR:        ptr.FromNull(rir),
			Date:       time.Time{},
		}
		if set.Date, err = parseTimestamp(setDate.String); err != nil {
			return nil, err
		}
		current := &logs[len(logs)-1]
		current.Sets = append(current.Sets, set)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return logs, nil
}

// Exercises lists the exercise catalog ordered by ID.
func (r *sqliteWorkoutRepository) Exercises(ctx context.Context) (_ []Exercise, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `SELECT id, name FROM exercises ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query exercises: %w", err)
	}
	defer closeRows(rows, &err)

	var exercises []Exercise
	for rows.Next() {
		var e Exercise
		if err = rows.Scan(&e.ID, &e.Name); err != nil {
			return nil, fmt.Errorf("scan exercise: %w", err)
		}
		exercises = append(exercises, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return exercises, nil
}

// Routine retrieves a routine with its exercises in position order.
func (r *sqliteWorkoutRepository) Routine(ctx context.Context, id int) (_ Routine, err error) {
	routine := Routine{ID: id, Name: "", ExerciseIDs: nil}
	if err = r.db.ReadOnly.QueryRowContext(ctx, `SELECT name FROM routines WHERE id = ?`, id).
		Scan(&routine.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Routine{}, ErrNotFound
		}
		return Routine{}, fmt.Errorf("query routine: %w", err)
	}

	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT exercise_id FROM routine_exercises WHERE routine_id = ? ORDER BY position, exercise_id`, id)
	if err != nil {
		return Routine{}, fmt.Errorf("query routine exercises: %w", err)
	}
	defer closeRows(rows, &err)

	for rows.Next() {
		var exerciseID int
		if err = rows.Scan(&exerciseID); err != nil {
			return Routine{}, fmt.Errorf("scan routine exercise: %w", err)
		}
		routine.ExerciseIDs = append(routine.ExerciseIDs, exerciseID)
	}
	if err = rows.Err(); err != nil {
		return Routine{}, fmt.Errorf("rows error: %w", err)
	}
	return routine, nil
}

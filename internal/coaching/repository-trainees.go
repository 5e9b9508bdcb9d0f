package coaching

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/myrjola/coachstats/internal/analytics"
	"github.com/myrjola/coachstats/internal/sqlite"
)

type sqliteTraineeRepository struct {
	baseRepository
}

func newSQLiteTraineeRepository(db *sqlite.Database, logger *slog.Logger) *sqliteTraineeRepository {
	return &sqliteTraineeRepository{baseRepository: newBaseRepository(db, logger)}
}

const traineeColumns = `t.id, t.name, t.created, COALESCE(p.weekly_target, 0), COALESCE(p.active, 0)`

// Create inserts a trainee and returns its ID.
func (r *sqliteTraineeRepository) Create(ctx context.Context, name string) (int, error) {
	var id int
	if err := r.db.ReadWrite.QueryRowContext(ctx, `INSERT INTO trainees (name) VALUES (?) RETURNING id`,
		name).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert trainee: %w", err)
	}
	return id, nil
}

// Get retrieves a trainee together with the active program.
func (r *sqliteTraineeRepository) Get(ctx context.Context, id int) (Trainee, error) {
	row := r.db.ReadOnly.QueryRowContext(ctx, `SELECT `+traineeColumns+`
		FROM trainees t
		LEFT JOIN programs p ON p.trainee_id = t.id AND p.active = 1
		WHERE t.id = ?`, id)
	trainee, err := scanTrainee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Trainee{}, ErrNotFound
	}
	if err != nil {
		return Trainee{}, fmt.Errorf("query trainee: %w", err)
	}
	return trainee, nil
}

// List retrieves all trainees ordered by ID.
func (r *sqliteTraineeRepository) List(ctx context.Context) (_ []Trainee, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `SELECT `+traineeColumns+`
		FROM trainees t
		LEFT JOIN programs p ON p.trainee_id = t.id AND p.active = 1
		ORDER BY t.id`)
	if err != nil {
		return nil, fmt.Errorf("query trainees: %w", err)
	}
	defer closeRows(rows, &err)

	var trainees []Trainee
	for rows.Next() {
		var trainee Trainee
		if trainee, err = scanTrainee(rows); err != nil {
			return nil, fmt.Errorf("scan trainee: %w", err)
		}
		trainees = append(trainees, trainee)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return trainees, nil
}

// SetProgram replaces the trainee's program. A non-positive target deactivates it.
func (r *sqliteTraineeRepository) SetProgram(ctx context.Context, traineeID, weeklyTarget int) error {
	var (
		result sql.Result
		err    error
	)
	if weeklyTarget <= 0 {
		result, err = r.db.ReadWrite.ExecContext(ctx, `UPDATE programs SET active = 0 WHERE trainee_id = ?`,
			traineeID)
	} else {
		result, err = r.db.ReadWrite.ExecContext(ctx, `
			INSERT INTO programs (trainee_id, weekly_target, active)
			SELECT id, ?, 1 FROM trainees WHERE id = ?
			ON CONFLICT (trainee_id) DO UPDATE SET
				weekly_target = excluded.weekly_target,
				active = 1`,
			weeklyTarget, traineeID)
	}
	if err != nil {
		return fmt.Errorf("save program: %w", err)
	}
	if weeklyTarget <= 0 {
		return nil
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Cohort lists every trainee as a leaderboard member.
func (r *sqliteTraineeRepository) Cohort(ctx context.Context) ([]analytics.CohortMember, map[int]string, error) {
	trainees, err := r.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	cohort := make([]analytics.CohortMember, 0, len(trainees))
	names := make(map[int]string, len(trainees))
	for _, t := range trainees {
		cohort = append(cohort, analytics.CohortMember{
			TraineeID:    t.ID,
			WeeklyTarget: t.WeeklyTarget,
			HasProgram:   t.HasProgram,
		})
		names[t.ID] = t.Name
	}
	return cohort, names, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrainee(row rowScanner) (Trainee, error) {
	var (
		trainee Trainee
		created string
	)
	if err := row.Scan(&trainee.ID, &trainee.Name, &created, &trainee.WeeklyTarget, &trainee.HasProgram); err != nil {
		return Trainee{}, err //nolint:wrapcheck // wrapped by the callers.
	}
	var err error
	if trainee.Created, err = parseTimestamp(created); err != nil {
		return Trainee{}, err
	}
	return trainee, nil
}

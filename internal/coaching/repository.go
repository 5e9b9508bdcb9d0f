package coaching

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/myrjola/coachstats/internal/sqlite"
)

const (
	timestampFormat = "2006-01-02T15:04:05.000Z"
	dateFormat      = time.DateOnly
)

// baseRepository holds what every aggregate repository needs.
type baseRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func newBaseRepository(db *sqlite.Database, logger *slog.Logger) baseRepository {
	return baseRepository{db: db, logger: logger}
}

// repository groups the aggregate repositories of the service.
type repository struct {
	trainees   *sqliteTraineeRepository
	workouts   *sqliteWorkoutRepository
	bodyWeight *sqliteBodyWeightRepository
	nutrition  *sqliteNutritionRepository
	foods      *sqliteFoodRepository
	drafts     *sqliteDraftRepository
}

type repositoryFactory struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func newRepositoryFactory(db *sqlite.Database, logger *slog.Logger) *repositoryFactory {
	return &repositoryFactory{db: db, logger: logger}
}

func (f *repositoryFactory) newRepository() *repository {
	return &repository{
		trainees:   newSQLiteTraineeRepository(f.db, f.logger),
		workouts:   newSQLiteWorkoutRepository(f.db, f.logger),
		bodyWeight: newSQLiteBodyWeightRepository(f.db, f.logger),
		nutrition:  newSQLiteNutritionRepository(f.db, f.logger),
		foods:      newSQLiteFoodRepository(f.db, f.logger),
		drafts:     newSQLiteDraftRepository(f.db, f.logger),
	}
}

// closeRows joins the error of closing rows into err.
func closeRows(rows *sql.Rows, err *error) {
	if closeErr := rows.Close(); closeErr != nil {
		*err = errors.Join(*err, fmt.Errorf("close rows: %w", closeErr))
	}
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampFormat)
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(timestampFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

func formatDate(t time.Time) string {
	return t.Format(dateFormat)
}

// parseDateIn parses a stored calendar date as midnight in loc.
func parseDateIn(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(dateFormat, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// sinceBound returns the lower bound for range queries. The zero time matches every timestamp.
func sinceBound(since time.Time) string {
	if since.IsZero() {
		return ""
	}
	return formatTimestamp(since)
}

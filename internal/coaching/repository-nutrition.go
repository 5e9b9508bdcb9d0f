package coaching

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/myrjola/coachstats/internal/analytics"
	"github.com/myrjola/coachstats/internal/sqlite"
)

type sqliteNutritionRepository struct {
	baseRepository
}

func newSQLiteNutritionRepository(db *sqlite.Database, logger *slog.Logger) *sqliteNutritionRepository {
	return &sqliteNutritionRepository{baseRepository: newBaseRepository(db, logger)}
}

// Add accumulates m onto the trainee's totals of the day and returns the updated entry. The day is the calendar date
// of day in its own location.
func (r *sqliteNutritionRepository) Add(
	ctx context.Context,
	traineeID int,
	day time.Time,
	m analytics.Macros,
) (analytics.NutritionLogEntry, error) {
	entry := analytics.NutritionLogEntry{
		TraineeID:     traineeID,
		Date:          time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location()),
		TotalProtein:  0,
		TotalCarbs:    0,
		TotalFat:      0,
		TotalCalories: 0,
	}
	err := r.db.ReadWrite.QueryRowContext(ctx, `
		INSERT INTO nutrition_logs (trainee_id, date, total_protein, total_carbs, total_fat, total_calories)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (trainee_id, date) DO UPDATE SET
			total_protein = total_protein + excluded.total_protein,
			total_carbs = total_carbs + excluded.total_carbs,
			total_fat = total_fat + excluded.total_fat,
			total_calories = total_calories + excluded.total_calories
		RETURNING total_protein, total_carbs, total_fat, total_calories`,
		traineeID, formatDate(entry.Date), m.Protein, m.Carbs, m.Fat, m.Calories).
		Scan(&entry.TotalProtein, &entry.TotalCarbs, &entry.TotalFat, &entry.TotalCalories)
	if err != nil {
		return analytics.NutritionLogEntry{}, fmt.Errorf("upsert nutrition log: %w", err)
	}
	return entry, nil
}

// List retrieves the trainee's daily totals dated at or after the calendar date of since, oldest first. Entries are
// dated at midnight in loc.
func (r *sqliteNutritionRepository) List(
	ctx context.Context,
	traineeID int,
	since time.Time,
	loc *time.Location,
) (_ []analytics.NutritionLogEntry, err error) {
	bound := ""
	if !since.IsZero() {
		bound = formatDate(since.In(loc))
	}
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT date, total_protein, total_carbs, total_fat, total_calories
		FROM nutrition_logs
		WHERE trainee_id = ? AND date >= ?
		ORDER BY date`,
		traineeID, bound)
	if err != nil {
		return nil, fmt.Errorf("query nutrition logs: %w", err)
	}
	defer closeRows(rows, &err)

	var entries []analytics.NutritionLogEntry
	for rows.Next() {
		var (
			date  string
			entry = analytics.NutritionLogEntry{TraineeID: traineeID} //nolint:exhaustruct // totals are scanned.
		)
		if err = rows.Scan(&date, &entry.TotalProtein, &entry.TotalCarbs, &entry.TotalFat,
			&entry.TotalCalories); err != nil {
			return nil, fmt.Errorf("scan nutrition log: %w", err)
		}
		if entry.Date, err = parseDateIn(date, loc); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return entries, nil
}

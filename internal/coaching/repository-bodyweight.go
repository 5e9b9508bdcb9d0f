package coaching

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/myrjola/coachstats/internal/analytics"
	"github.com/myrjola/coachstats/internal/sqlite"
)

type sqliteBodyWeightRepository struct {
	baseRepository
}

func newSQLiteBodyWeightRepository(db *sqlite.Database, logger *slog.Logger) *sqliteBodyWeightRepository {
	return &sqliteBodyWeightRepository{baseRepository: newBaseRepository(db, logger)}
}

// Add stores a reading. A second reading at the same instant replaces the first.
func (r *sqliteBodyWeightRepository) Add(ctx context.Context, entry analytics.BodyWeightEntry) error {
	if _, err := r.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO body_weight_entries (trainee_id, date, weight_kg)
		VALUES (?, ?, ?)
		ON CONFLICT (trainee_id, date) DO UPDATE SET weight_kg = excluded.weight_kg`,
		entry.TraineeID, formatTimestamp(entry.Date), entry.WeightKg); err != nil {
		return fmt.Errorf("insert body weight: %w", err)
	}
	return nil
}

// List retrieves the trainee's readings dated at or after since, oldest first.
func (r *sqliteBodyWeightRepository) List(
	ctx context.Context,
	traineeID int,
	since time.Time,
) (_ []analytics.BodyWeightEntry, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT date, weight_kg FROM body_weight_entries
		WHERE trainee_id = ? AND date >= ?
		ORDER BY date`,
		traineeID, sinceBound(since))
	if err != nil {
		return nil, fmt.Errorf("query body weight: %w", err)
	}
	defer closeRows(rows, &err)

	var entries []analytics.BodyWeightEntry
	for rows.Next() {
		var (
			date  string
			entry = analytics.BodyWeightEntry{TraineeID: traineeID, Date: time.Time{}, WeightKg: 0}
		)
		if err = rows.Scan(&date, &entry.WeightKg); err != nil {
			return nil, fmt.Errorf("scan body weight: %w", err)
		}
		if entry.Date, err = parseTimestamp(date); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return entries, nil
}

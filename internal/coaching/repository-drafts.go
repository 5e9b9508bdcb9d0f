package coaching

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/myrjola/coachstats/internal/sqlite"
)

type sqliteDraftRepository struct {
	baseRepository
}

func newSQLiteDraftRepository(db *sqlite.Database, logger *slog.Logger) *sqliteDraftRepository {
	return &sqliteDraftRepository{baseRepository: newBaseRepository(db, logger)}
}

// Get returns the stored payload of the draft. The payload may be of any stored vintage.
func (r *sqliteDraftRepository) Get(ctx context.Context, traineeID, routineID int) ([]byte, error) {
	var payload string
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT payload FROM workout_drafts WHERE trainee_id = ? AND routine_id = ?`,
		traineeID, routineID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query draft: %w", err)
	}
	return []byte(payload), nil
}

// Save replaces the stored payload of the draft.
func (r *sqliteDraftRepository) Save(ctx context.Context, traineeID, routineID int, payload []byte) error {
	if _, err := r.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO workout_drafts (trainee_id, routine_id, payload)
		VALUES (?, ?, ?)
		ON CONFLICT (trainee_id, routine_id) DO UPDATE SET payload = excluded.payload`,
		traineeID, routineID, string(payload)); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

// Delete discards the draft, typically after the workout was logged.
func (r *sqliteDraftRepository) Delete(ctx context.Context, traineeID, routineID int) error {
	if _, err := r.db.ReadWrite.ExecContext(ctx, `
		DELETE FROM workout_drafts WHERE trainee_id = ? AND routine_id = ?`,
		traineeID, routineID); err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}

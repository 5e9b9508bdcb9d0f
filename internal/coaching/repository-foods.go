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

type sqliteFoodRepository struct {
	baseRepository
}

func newSQLiteFoodRepository(db *sqlite.Database, logger *slog.Logger) *sqliteFoodRepository {
	return &sqliteFoodRepository{baseRepository: newBaseRepository(db, logger)}
}

const foodColumns = `id, name, category, protein_per_100g, carbs_per_100g, fat_per_100g`

// Get retrieves a food by ID.
func (r *sqliteFoodRepository) Get(ctx context.Context, id int) (analytics.FoodItem, error) {
	food, err := scanFood(r.db.ReadOnly.QueryRowContext(ctx, `SELECT `+foodColumns+` FROM foods WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return analytics.FoodItem{}, ErrNotFound
	}
	if err != nil {
		return analytics.FoodItem{}, fmt.Errorf("query food: %w", err)
	}
	return food, nil
}

// List retrieves the catalog ordered by category and name. An empty category lists every food.
func (r *sqliteFoodRepository) List(
	ctx context.Context,
	category analytics.FoodCategory,
) (_ []analytics.FoodItem, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `SELECT `+foodColumns+` FROM foods
		WHERE ? = '' OR category = ?
		ORDER BY category, name`,
		string(category), string(category))
	if err != nil {
		return nil, fmt.Errorf("query foods: %w", err)
	}
	defer closeRows(rows, &err)

	var foods []analytics.FoodItem
	for rows.Next() {
		var food analytics.FoodItem
		if food, err = scanFood(rows); err != nil {
			return nil, fmt.Errorf("scan food: %w", err)
		}
		foods = append(foods, food)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return foods, nil
}

// Upsert inserts the foods or updates those with the same name in one transaction.
func (r *sqliteFoodRepository) Upsert(ctx context.Context, foods []analytics.FoodItem) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error { //nolint:wrapcheck // wrapped inside the transaction.
		for _, food := range foods {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO foods (name, category, protein_per_100g, carbs_per_100g, fat_per_100g)
				VALUES (?, ?, ?, ?, ?)
				ON CONFLICT (name) DO UPDATE SET
					category = excluded.category,
					protein_per_100g = excluded.protein_per_100g,
					carbs_per_100g = excluded.carbs_per_100g,
					fat_per_100g = excluded.fat_per_100g`,
				food.Name, string(food.Category), food.ProteinPer100g, food.CarbsPer100g, food.FatPer100g); err != nil {
				return fmt.Errorf("upsert food %q: %w", food.Name, err)
			}
		}
		return nil
	})
}

func scanFood(row rowScanner) (analytics.FoodItem, error) {
	var (
		food     analytics.FoodItem
		category string
	)
	if err := row.Scan(&food.ID, &food.Name, &category, &food.ProteinPer100g, &food.CarbsPer100g,
		&food.FatPer100g); err != nil {
		return analytics.FoodItem{}, err //nolint:wrapcheck // wrapped by the callers.
	}
	food.Category = analytics.FoodCategory(category)
	return food, nil
}

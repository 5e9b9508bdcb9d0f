package sqlite

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"syscall"
	"time"
)

// migrateTo makes the live schema match schemaDefinition.
//
// The migration is declarative. The target schema is created in an attached in-memory database and diffed against
// the live one:
//
//   - views are dropped up front and recreated at the end, because table rebuilds invalidate them,
//   - tables missing from the target are dropped and new ones created,
//   - changed tables are rebuilt with the 12-step procedure https://www.sqlite.org/lang_altertable.html#otheralter,
//   - triggers and indexes are synchronised.
//
// Inspired by https://david.rothlis.net/declarative-schema-migration-for-sqlite/
func (db *Database) migrateTo(ctx context.Context, schemaDefinition string) error {
	start := time.Now()

	detach, err := db.attachSchemaTarget(ctx, schemaDefinition)
	if err != nil {
		return fmt.Errorf("attach schema target: %w", err)
	}
	defer detach()

	// Step 1: Disable foreign key validation temporarily.
	if _, err = db.ReadWrite.ExecContext(ctx, "PRAGMA foreign_keys = OFF"); err != nil {
		return fmt.Errorf("disable foreign key validation: %w", err)
	}
	// Step 12: Re-enable foreign key validation. Continuing without it risks silent corruption.
	defer func() {
		if _, fkErr := db.ReadWrite.ExecContext(ctx, "PRAGMA foreign_keys = ON"); fkErr != nil {
			db.logger.LogAttrs(ctx, slog.LevelError, "exit to avoid data corruption",
				slog.Any("error", fmt.Errorf("re-enable foreign key validation: %w", fkErr)))
			if killErr := syscall.Kill(syscall.Getpid(), syscall.SIGINT); killErr != nil {
				os.Exit(1)
			}
		}
	}()

	// Step 2: Start transaction.
	tx, err := db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer db.rollback(ctx, tx)

	if err = db.dropLiveViews(ctx, tx); err != nil {
		return fmt.Errorf("drop views: %w", err)
	}

	// Steps 3-7.
	if err = db.migrateTables(ctx, tx); err != nil {
		return fmt.Errorf("migrate tables: %w", err)
	}

	// Step 8: Recreate indexes and triggers.
	for _, typ := range []schemaType{schemaTypeTrigger, schemaTypeIndex} {
		if err = db.migrateSchema(ctx, tx, typ); err != nil {
			return fmt.Errorf("migrate %ss: %w", typ, err)
		}
	}

	// Step 9: Recreate views.
	if err = db.migrateSchema(ctx, tx, schemaTypeView); err != nil {
		return fmt.Errorf("migrate views: %w", err)
	}

	// Step 10: Check foreign key constraints.
	if _, err = tx.ExecContext(ctx, "PRAGMA foreign_key_check"); err != nil {
		return fmt.Errorf("foreign key check: %w", err)
	}

	// Step 11: Commit.
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	db.logger.LogAttrs(ctx, slog.LevelInfo, "migrated database", slog.Duration("duration", time.Since(start)))
	return nil
}

// attachSchemaTarget attaches an in-memory database initialised with schemaDefinition as "schemaTarget". The
// returned function detaches it.
func (db *Database) attachSchemaTarget(ctx context.Context, schemaDefinition string) (func(), error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", rand.Text())
	target, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open schema target: %w", err)
	}
	// The shared cache keeps the in-memory database alive while it is attached.
	defer func() {
		if closeErr := target.Close(); closeErr != nil {
			db.logger.LogAttrs(ctx, slog.LevelError, "failed to close schema target",
				slog.Any("error", closeErr))
		}
	}()
	if _, err = target.ExecContext(ctx, schemaDefinition); err != nil {
		return nil, fmt.Errorf("create schema target: %w", err)
	}
	if _, err = db.ReadWrite.ExecContext(ctx, "ATTACH DATABASE ? AS schemaTarget", dsn); err != nil {
		return nil, fmt.Errorf("attach: %w", err)
	}
	return func() {
		if _, detachErr := db.ReadWrite.ExecContext(ctx, "DETACH DATABASE schemaTarget"); detachErr != nil {
			db.logger.LogAttrs(ctx, slog.LevelError, "failed to detach schema target", slog.Any("error", detachErr))
		}
	}, nil
}

func (db *Database) rollback(ctx context.Context, tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		db.logger.LogAttrs(ctx, slog.LevelError, "failed to rollback transaction",
			slog.Any("error", fmt.Errorf("rollback: %w", err)))
	}
}

// internalObjects filters out SQLite and Litestream bookkeeping.
const internalObjects = `%[1]s.name NOT LIKE 'sqlite_%%' AND %[1]s.name NOT LIKE '_litestream_%%'`

func (db *Database) migrateTables(ctx context.Context, tx *sql.Tx) error {
	deleted, err := queryStrings(ctx, tx, fmt.Sprintf(`SELECT live.name
FROM sqlite_schema AS live
         LEFT JOIN schemaTarget.sqlite_schema AS target ON live.name = target.name AND live.type = target.type
WHERE live.type = 'table'
  AND target.type IS NULL
  AND `+internalObjects, "live"))
	if err != nil {
		return fmt.Errorf("query deleted tables: %w", err)
	}
	for _, table := range deleted {
		if err = db.exec(ctx, tx, "dropping table", "DROP TABLE "+table); err != nil {
			return err
		}
	}

	created, err := queryStrings(ctx, tx, fmt.Sprintf(`SELECT target.sql
FROM schemaTarget.sqlite_schema AS target
         LEFT JOIN sqlite_schema AS live ON live.name = target.name AND live.type = target.type
WHERE target.type = 'table'
  AND live.type IS NULL
  AND `+internalObjects, "target"))
	if err != nil {
		return fmt.Errorf("query new tables: %w", err)
	}
	for _, createSQL := range created {
		if err = db.exec(ctx, tx, "creating table", createSQL); err != nil {
			return err
		}
	}

	// Renaming a table adds double quotes around its name, which the diff ignores.
	changed, err := queryChanged(ctx, tx, fmt.Sprintf(`SELECT live.name, live.sql, target.sql
FROM sqlite_schema AS live
         JOIN schemaTarget.sqlite_schema AS target ON live.name = target.name AND live.type = target.type
WHERE live.type = 'table'
  AND REPLACE(live.sql, '"', '') <> REPLACE(target.sql, '"', '')
  AND `+internalObjects, "live"))
	if err != nil {
		return fmt.Errorf("query changed tables: %w", err)
	}
	for _, table := range changed {
		if err = db.rebuildTable(ctx, tx, table); err != nil {
			return fmt.Errorf("rebuild table %s: %w", table.name, err)
		}
	}
	return nil
}

// rebuildTable performs steps 4 to 7 of the 12-step procedure for one table.
func (db *Database) rebuildTable(ctx context.Context, tx *sql.Tx, table changedSchema) error {
	db.logger.LogAttrs(ctx, slog.LevelInfo, "migrating table",
		slog.String("table", table.name),
		slog.String("live_sql", table.liveSQL),
		slog.String("new_sql", table.newSQL))

	tempName := table.name + "_migration_temp"
	if err := db.exec(ctx, tx, "creating table under temporary name",
		strings.Replace(table.newSQL, table.name, tempName, 1)); err != nil {
		return err
	}

	// Quoted so that columns named after SQLite keywords survive.
	columns, err := queryStrings(ctx, tx, `SELECT '"' || target.name || '"'
FROM PRAGMA_TABLE_INFO(:table_name) AS live
         JOIN PRAGMA_TABLE_INFO(:table_name, 'schemaTarget') AS target ON target.name = live.name`,
		sql.Named("table_name", table.name))
	if err != nil {
		return fmt.Errorf("query common columns: %w", err)
	}
	common := strings.Join(columns, ", ")

	steps := []struct{ msg, query string }{
		{"copying data", fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s", tempName, common, common, table.name)},
		{"dropping old table", "DROP TABLE " + table.name},
		{"renaming new table", fmt.Sprintf("ALTER TABLE %s RENAME TO %s", tempName, table.name)},
	}
	for _, step := range steps {
		if err = db.exec(ctx, tx, step.msg, step.query); err != nil {
			return err
		}
	}
	return nil
}

func (db *Database) dropLiveViews(ctx context.Context, tx *sql.Tx) error {
	views, err := queryStrings(ctx, tx, `SELECT name FROM sqlite_schema WHERE type = 'view'`)
	if err != nil {
		return fmt.Errorf("query views: %w", err)
	}
	for _, view := range views {
		if err = db.exec(ctx, tx, "dropping view", "DROP VIEW "+view); err != nil {
			return err
		}
	}
	return nil
}

type schemaType string

const (
	schemaTypeTrigger schemaType = "trigger"
	schemaTypeIndex   schemaType = "index"
	schemaTypeView    schemaType = "view"
)

// migrateSchema synchronises all schema objects of typ with the target.
func (db *Database) migrateSchema(ctx context.Context, tx *sql.Tx, typ schemaType) error {
	keyword := strings.ToUpper(string(typ))

	deleted, err := queryStrings(ctx, tx, `SELECT live.name
FROM sqlite_schema AS live
         LEFT JOIN schemaTarget.sqlite_schema AS target ON live.name = target.name AND live.type = target.type
WHERE live.type = ?
  AND target.type IS NULL
  AND live.name NOT LIKE 'sqlite_%'`, typ)
	if err != nil {
		return fmt.Errorf("query deleted: %w", err)
	}
	for _, name := range deleted {
		if err = db.exec(ctx, tx, "dropping "+string(typ), fmt.Sprintf("DROP %s %s", keyword, name)); err != nil {
			return err
		}
	}

	// Auto-indexes have no SQL and are skipped.
	created, err := queryStrings(ctx, tx, `SELECT target.sql
FROM schemaTarget.sqlite_schema AS target
         LEFT JOIN sqlite_schema AS live ON live.name = target.name AND live.type = target.type
WHERE target.type = ?
  AND live.type IS NULL
  AND target.sql IS NOT NULL
  AND target.name NOT LIKE 'sqlite_%'`, typ)
	if err != nil {
		return fmt.Errorf("query created: %w", err)
	}
	for _, createSQL := range created {
		if err = db.exec(ctx, tx, "creating "+string(typ), createSQL); err != nil {
			return err
		}
	}

	changed, err := queryChanged(ctx, tx, `SELECT live.name, live.sql, target.sql
FROM sqlite_schema AS live
         JOIN schemaTarget.sqlite_schema AS target ON live.name = target.name AND live.type = target.type
WHERE live.type = ?
  AND live.name NOT LIKE 'sqlite_%'
  AND live.sql <> target.sql`, typ)
	if err != nil {
		return fmt.Errorf("query changed: %w", err)
	}
	for _, c := range changed {
		if err = db.exec(ctx, tx, "dropping changed "+string(typ), fmt.Sprintf("DROP %s %s", keyword, c.name)); err != nil {
			return err
		}
		if err = db.exec(ctx, tx, "recreating changed "+string(typ), c.newSQL); err != nil {
			return err
		}
	}
	return nil
}

// exec logs and executes a migration statement.
func (db *Database) exec(ctx context.Context, tx *sql.Tx, msg string, query string) error {
	db.logger.LogAttrs(ctx, slog.LevelInfo, msg, slog.String("query", query))
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("%s: %w", msg, err)
	}
	return nil
}

// queryStrings returns the single string column of query.
func queryStrings(ctx context.Context, tx *sql.Tx, query string, args ...any) (_ []string, err error) {
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()
	var results []string
	for rows.Next() {
		var s string
		if err = rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		results = append(results, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return results, nil
}

type changedSchema struct {
	name    string
	liveSQL string
	newSQL  string
}

func queryChanged(ctx context.Context, tx *sql.Tx, query string, args ...any) (_ []changedSchema, err error) {
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()
	var results []changedSchema
	for rows.Next() {
		var c changedSchema
		if err = rows.Scan(&c.name, &c.liveSQL, &c.newSQL); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		results = append(results, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return results, nil
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strings"
)

const traineesTableName = "trainees"

// ErrNoTraineesTable is returned when exporting from a database without the trainees table.
var ErrNoTraineesTable = errors.New("trainees table does not exist")

// ExportTrainee copies every row belonging to a trainee into a new SQLite file under basePath and returns its path.
//
// Tables are discovered through foreign keys leading to trainees.id, directly or through other trainee tables.
// Tables they reference, such as exercises, are copied in full so that the export is self-contained.
func (db *Database) ExportTrainee(ctx context.Context, traineeID int, basePath string) (_ string, err error) {
	exportPath := filepath.Join(basePath, fmt.Sprintf("trainee-%d.sqlite3", traineeID))

	// Readers are opened read-only and may not attach a writable database, so the export holds the writer.
	conn, err := db.ReadWrite.Conn(ctx)
	if err != nil {
		return "", fmt.Errorf("get db connection: %w", err)
	}
	defer func() {
		if closeErr := conn.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close db connection: %w", closeErr))
		}
	}()

	// Lookup tables are copied before the tables referencing them, but trainee tables may reference each other
	// in any order.
	if err = setForeignKeys(ctx, conn, false); err != nil {
		return "", err
	}
	defer func() {
		err = errors.Join(err, setForeignKeys(ctx, conn, true))
	}()

	exportURL := fmt.Sprintf("file:%s?mode=rwc", exportPath)
	if _, err = conn.ExecContext(ctx, `ATTACH DATABASE ? AS export`, exportURL); err != nil {
		return "", fmt.Errorf("attach export database: %w", err)
	}
	defer func() {
		if _, detachErr := conn.ExecContext(ctx, `DETACH DATABASE export`); detachErr != nil {
			err = errors.Join(err, fmt.Errorf("detach export database: %w", detachErr))
		}
	}()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer db.rollback(ctx, tx)

	tables, err := discoverTraineeTables(ctx, tx)
	if err != nil {
		return "", fmt.Errorf("discover trainee tables: %w", err)
	}
	for _, table := range tables {
		if err = copyTable(ctx, tx, table, traineeID); err != nil {
			return "", fmt.Errorf("copy table %s: %w", table.name, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return "", fmt.Errorf("commit export: %w", err)
	}
	return exportPath, nil
}

func setForeignKeys(ctx context.Context, conn *sql.Conn, enabled bool) error {
	value := "OFF"
	if enabled {
		value = "ON"
	}
	if _, err := conn.ExecContext(ctx, "PRAGMA foreign_keys = "+value); err != nil {
		return fmt.Errorf("set foreign_keys %s: %w", value, err)
	}
	return nil
}

// exportTable is a table to export. An empty filter copies every row.
type exportTable struct {
	name   string
	filter string
}

// foreignKey is one, possibly composite, foreign key constraint.
type foreignKey struct {
	parent string
	from   []string
	to     []string
}

// discoverTraineeTables returns the tables to export. Referenced lookup tables come first.
func discoverTraineeTables(ctx context.Context, tx *sql.Tx) ([]exportTable, error) {
	names, err := queryStrings(ctx, tx, `SELECT name FROM sqlite_schema
WHERE type = 'table' AND name NOT LIKE 'sqlite_%' AND name NOT LIKE '_litestream_%'`)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	if !slices.Contains(names, traineesTableName) {
		return nil, ErrNoTraineesTable
	}

	keys := make(map[string][]foreignKey, len(names))
	for _, name := range names {
		if keys[name], err = queryForeignKeys(ctx, tx, name); err != nil {
			return nil, fmt.Errorf("query foreign keys of %s: %w", name, err)
		}
	}

	// Grow the set of trainee tables until no table references a known one.
	filters := map[string]string{traineesTableName: "id = :trainee_id"}
	for changed := true; changed; {
		changed = false
		for _, name := range names {
			if _, ok := filters[name]; ok {
				continue
			}
			for _, fk := range keys[name] {
				parentFilter, ok := filters[fk.parent]
				if !ok {
					continue
				}
				filters[name] = referenceFilter(fk, parentFilter)
				changed = true
				break
			}
		}
	}

	// Lookup tables referenced by exported tables, transitively.
	lookups := map[string]bool{}
	queue := slices.Collect(maps.Keys(filters))
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		for _, fk := range keys[name] {
			if _, ok := filters[fk.parent]; ok || lookups[fk.parent] {
				continue
			}
			lookups[fk.parent] = true
			queue = append(queue, fk.parent)
		}
	}

	var tables []exportTable
	for _, name := range names {
		if lookups[name] {
			tables = append(tables, exportTable{name: name, filter: ""})
		}
	}
	for _, name := range names {
		if filter, ok := filters[name]; ok {
			tables = append(tables, exportTable{name: name, filter: filter})
		}
	}
	return tables, nil
}

// referenceFilter selects the rows whose foreign key points at a parent row matching parentFilter.
func referenceFilter(fk foreignKey, parentFilter string) string {
	if fk.parent == traineesTableName && len(fk.to) == 1 && fk.to[0] == "id" {
		return quote(fk.from[0]) + " = :trainee_id"
	}
	from := quoteAll(fk.from)
	to := quoteAll(fk.to)
	if len(fk.from) > 1 {
		from = "(" + from + ")"
	}
	return fmt.Sprintf("%s IN (SELECT %s FROM main.%s WHERE %s)", from, to, quote(fk.parent), parentFilter)
}

func queryForeignKeys(ctx context.Context, tx *sql.Tx, table string) (_ []foreignKey, err error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT id, "table", "from", "to" FROM pragma_foreign_key_list(?) ORDER BY id, seq`, table)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var (
		keys   []foreignKey
		lastID = -1
	)
	for rows.Next() {
		var (
			id       int
			parent   string
			from     string
			toColumn sql.NullString
		)
		if err = rows.Scan(&id, &parent, &from, &toColumn); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		if id != lastID {
			keys = append(keys, foreignKey{parent: parent, from: nil, to: nil})
			lastID = id
		}
		fk := &keys[len(keys)-1]
		fk.from = append(fk.from, from)
		fk.to = append(fk.to, toColumn.String)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	// A reference without explicit columns targets the parent's primary key.
	for i, fk := range keys {
		if slices.Contains(fk.to, "") {
			if keys[i].to, err = queryStrings(ctx, tx,
				`SELECT name FROM pragma_table_info(?) WHERE pk > 0 ORDER BY pk`, fk.parent); err != nil {
				return nil, fmt.Errorf("query primary key of %s: %w", fk.parent, err)
			}
		}
	}
	return keys, nil
}

func copyTable(ctx context.Context, tx *sql.Tx, table exportTable, traineeID int) error {
	var createSQL string
	if err := tx.QueryRowContext(ctx, `SELECT sql FROM main.sqlite_schema WHERE type = 'table' AND name = ?`,
		table.name).Scan(&createSQL); err != nil {
		return fmt.Errorf("query schema: %w", err)
	}
	// The name may have been quoted by a rename, so everything up to the column list is replaced.
	columns := strings.Index(createSQL, "(")
	if columns < 0 {
		return fmt.Errorf("unexpected table definition %q", createSQL)
	}
	if _, err := tx.ExecContext(ctx, "CREATE TABLE export."+quote(table.name)+" "+createSQL[columns:]); err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	query := fmt.Sprintf("INSERT INTO export.%[1]s SELECT * FROM main.%[1]s", quote(table.name))
	var args []any
	if table.filter != "" {
		query += " WHERE " + table.filter
		args = append(args, sql.Named("trainee_id", traineeID))
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("copy rows: %w", err)
	}
	return nil
}

func quote(identifier string) string {
	return `"` + strings.ReplaceAll(identifier, `"`, `""`) + `"`
}

func quoteAll(identifiers []string) string {
	quoted := make([]string, len(identifiers))
	for i, id := range identifiers {
		quoted[i] = quote(id)
	}
	return strings.Join(quoted, ", ")
}

package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"strings"

	// SQLite driver (pure Go, no CGO required)
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS sources (
		name TEXT PRIMARY KEY,
		title TEXT NOT NULL DEFAULT '',
		dimens TEXT NOT NULL,
		writable INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS columns (
		source TEXT NOT NULL REFERENCES sources(name) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		type TEXT NOT NULL,
		count INTEGER NOT NULL DEFAULT 1,
		label TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (source, position)
	);
`

func openSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening catalog database: %w", err)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

// InitSQLite creates the catalog tables in the database at path, creating
// the file if needed. Existing tables are left alone.
func InitSQLite(ctx context.Context, path string) error {
	db, err := openSQLite(path)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("creating catalog schema: %w", err)
	}
	return nil
}

// LoadSQLite reads every source from a catalog database, in name order.
// The database must already exist.
func LoadSQLite(ctx context.Context, path string) ([]Source, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("catalog database: %w", err)
	}
	db, err := openSQLite(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	return load(ctx, db)
}

// load reads the sources and columns tables of any catalog database.
func load(ctx context.Context, db *sql.DB) ([]Source, error) {
	specs, err := querySources(ctx, db)
	if err != nil {
		return nil, err
	}
	if err := queryColumns(ctx, db, specs); err != nil {
		return nil, err
	}

	sources := make([]Source, 0, len(specs))
	for _, sp := range specs {
		src, err := sp.Source()
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return sources, nil
}

func querySources(ctx context.Context, db *sql.DB) ([]*SourceSpec, error) {
	rows, err := db.QueryContext(ctx, `SELECT name, title, dimens, writable FROM sources ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("querying sources: %w", err)
	}
	defer rows.Close()

	var specs []*SourceSpec
	for rows.Next() {
		var sp SourceSpec
		var dimens string
		if err := rows.Scan(&sp.Name, &sp.Title, &dimens, &sp.Writable); err != nil {
			return nil, fmt.Errorf("scanning source: %w", err)
		}
		if sp.Dimens, err = parseDimens(dimens); err != nil {
			return nil, invalid(sp.Name, err.Error())
		}
		specs = append(specs, &sp)
	}
	return specs, rows.Err()
}

func queryColumns(ctx context.Context, db *sql.DB, specs []*SourceSpec) error {
	byName := make(map[string]*SourceSpec, len(specs))
	for _, sp := range specs {
		byName[sp.Name] = sp
	}

	rows, err := db.QueryContext(ctx, `SELECT source, type, count, label FROM columns ORDER BY source, position`)
	if err != nil {
		return fmt.Errorf("querying columns: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var source string
		var c ColumnSpec
		if err := rows.Scan(&source, &c.Type, &c.Count, &c.Label); err != nil {
			return fmt.Errorf("scanning column: %w", err)
		}
		if sp, ok := byName[source]; ok {
			sp.Columns = append(sp.Columns, c)
		}
	}
	return rows.Err()
}

// StoreSQLite writes sources into a catalog database in one transaction,
// replacing sources of the same name. The tables are created if missing.
func StoreSQLite(ctx context.Context, path string, sources []Source) error {
	db, err := openSQLite(path)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("creating catalog schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, src := range sources {
		sp := src.Spec()
		if _, err := tx.ExecContext(ctx, `DELETE FROM columns WHERE source = ?`, sp.Name); err != nil {
			return fmt.Errorf("replacing %s: %w", sp.Name, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM sources WHERE name = ?`, sp.Name); err != nil {
			return fmt.Errorf("replacing %s: %w", sp.Name, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO sources (name, title, dimens, writable) VALUES (?, ?, ?, ?)`,
			sp.Name, sp.Title, formatDimens(sp.Dimens), sp.Writable); err != nil {
			return fmt.Errorf("storing %s: %w", sp.Name, err)
		}
		for i, c := range sp.Columns {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO columns (source, position, type, count, label) VALUES (?, ?, ?, ?, ?)`,
				sp.Name, i, c.Type, c.Count, c.Label); err != nil {
				return fmt.Errorf("storing %s column %d: %w", sp.Name, i, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing catalog: %w", err)
	}
	return nil
}

// dimens are stored as comma-separated extents, e.g. "70000,28,28"
func formatDimens(dimens []int64) string {
	parts := make([]string, len(dimens))
	for i, d := range dimens {
		parts[i] = strconv.FormatInt(d, 10)
	}
	return strings.Join(parts, ",")
}

func parseDimens(s string) ([]int64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var dimens []int64
	for _, part := range strings.Split(s, ",") {
		d, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad dimension %q", part)
		}
		dimens = append(dimens, d)
	}
	return dimens, nil
}

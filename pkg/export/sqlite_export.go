package export

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	_ "modernc.org/sqlite"
)

// Entry kinds stored in the entries table.
const (
	kindFunction    = "function"
	kindFailureMode = "failure_mode"
)

// encodeSQLite builds a database file in a scratch directory and returns
// its bytes.
func encodeSQLite(ctx context.Context, records []Record, opts Options) ([]byte, error) {
	dir, err := os.MkdirTemp("", "dfmea-sqlite-*")
	if err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(dir)

	dbPath := filepath.Join(dir, FormatSQLite.DefaultFilename())
	if err := WriteSQLite(ctx, dbPath, records, opts); err != nil {
		return nil, err
	}
	return os.ReadFile(dbPath)
}

// WriteSQLite writes records to a new SQLite database at dbPath, replacing
// any existing file.
func WriteSQLite(ctx context.Context, dbPath string, records []Record, opts Options) error {
	opts = opts.withDefaults()

	if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing database: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	dbClosed := false
	defer func() {
		if !dbClosed {
			db.Close()
		}
	}()

	if err := CreateSchema(db); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if err := insertRecords(ctx, db, records); err != nil {
		return fmt.Errorf("insert components: %w", err)
	}
	if err := insertMeta(ctx, db, records, opts); err != nil {
		return fmt.Errorf("insert meta: %w", err)
	}
	if _, err := db.ExecContext(ctx, "VACUUM"); err != nil {
		return fmt.Errorf("vacuum: %w", err)
	}

	if err := db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	dbClosed = true
	return nil
}

func insertRecords(ctx context.Context, db *sql.DB, records []Record) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	compStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO components (id, path, name, depth, parent_id)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer compStmt.Close()

	entryStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entries (component_id, kind, position, label)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer entryStmt.Close()

	relStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO relations (component_id, label, value)
		VALUES (?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer relStmt.Close()

	// ancestors[d] is the id of the most recent component at depth d.
	var ancestors []int64
	for i, rec := range records {
		id := int64(i + 1)
		if rec.Depth < len(ancestors) {
			ancestors = ancestors[:rec.Depth]
		}
		var parent sql.NullInt64
		if len(ancestors) > 0 {
			parent = sql.NullInt64{Int64: ancestors[len(ancestors)-1], Valid: true}
		}
		ancestors = append(ancestors, id)

		if _, err := compStmt.ExecContext(ctx, id, rec.Name, rec.Component, rec.Depth, parent); err != nil {
			return fmt.Errorf("component %q: %w", rec.Name, err)
		}
		for pos, label := range rec.Functions {
			if _, err := entryStmt.ExecContext(ctx, id, kindFunction, pos, label); err != nil {
				return fmt.Errorf("function %q: %w", label, err)
			}
		}
		for pos, label := range rec.FailureModes {
			if _, err := entryStmt.ExecContext(ctx, id, kindFailureMode, pos, label); err != nil {
				return fmt.Errorf("failure mode %q: %w", label, err)
			}
		}

		labels := make([]string, 0, len(rec.Matrix))
		for label := range rec.Matrix {
			labels = append(labels, label)
		}
		sort.Strings(labels)
		for _, label := range labels {
			v := 0
			if rec.Matrix[label] {
				v = 1
			}
			if _, err := relStmt.ExecContext(ctx, id, label, v); err != nil {
				return fmt.Errorf("relation %q: %w", label, err)
			}
		}
	}

	return tx.Commit()
}

func insertMeta(ctx context.Context, db *sql.DB, records []Record, opts Options) error {
	meta := map[string]string{
		"schema_version":  strconv.Itoa(SchemaVersion),
		"title":           opts.Title,
		"generated_at":    opts.Now().UTC().Format(time.RFC3339),
		"component_count": strconv.Itoa(len(records)),
		"root_count":      strconv.Itoa(len(rootGroups(records))),
	}
	for k, v := range meta {
		if _, err := db.ExecContext(ctx, `INSERT INTO meta (key, value) VALUES (?, ?)`, k, v); err != nil {
			return err
		}
	}
	return nil
}

package export

import (
	"database/sql"
	"fmt"
)

// SchemaVersion is stored in the meta table.
const SchemaVersion = 1

// CreateSchema creates all tables and indexes in the database.
func CreateSchema(db *sql.DB) error {
	if err := createCoreTables(db); err != nil {
		return fmt.Errorf("create core tables: %w", err)
	}
	if err := createIndexes(db); err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	if err := createMetaTable(db); err != nil {
		return fmt.Errorf("create meta table: %w", err)
	}
	return nil
}

func createCoreTables(db *sql.DB) error {
	// One row per flattened component, in export order.
	componentsSQL := `
		CREATE TABLE IF NOT EXISTS components (
			id INTEGER PRIMARY KEY,
			path TEXT NOT NULL,
			name TEXT NOT NULL,
			depth INTEGER NOT NULL,
			parent_id INTEGER,
			FOREIGN KEY (parent_id) REFERENCES components(id)
		)
	`
	if _, err := db.Exec(componentsSQL); err != nil {
		return fmt.Errorf("create components table: %w", err)
	}

	// Functions and failure modes, kind is 'function' or 'failure_mode'.
	entriesSQL := `
		CREATE TABLE IF NOT EXISTS entries (
			component_id INTEGER NOT NULL,
			kind TEXT NOT NULL,
			position INTEGER NOT NULL,
			label TEXT NOT NULL,
			PRIMARY KEY (component_id, kind, position),
			FOREIGN KEY (component_id) REFERENCES components(id)
		)
	`
	if _, err := db.Exec(entriesSQL); err != nil {
		return fmt.Errorf("create entries table: %w", err)
	}

	relationsSQL := `
		CREATE TABLE IF NOT EXISTS relations (
			component_id INTEGER NOT NULL,
			label TEXT NOT NULL,
			value INTEGER NOT NULL,
			PRIMARY KEY (component_id, label),
			FOREIGN KEY (component_id) REFERENCES components(id)
		)
	`
	if _, err := db.Exec(relationsSQL); err != nil {
		return fmt.Errorf("create relations table: %w", err)
	}
	return nil
}

func createIndexes(db *sql.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_components_parent ON components(parent_id)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_label ON entries(label)`,
		`CREATE INDEX IF NOT EXISTS idx_relations_label ON relations(label)`,
	}
	for _, stmt := range indexes {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("%s: %w", stmt, err)
		}
	}
	return nil
}

func createMetaTable(db *sql.DB) error {
	metaSQL := `
		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT
		)
	`
	if _, err := db.Exec(metaSQL); err != nil {
		return fmt.Errorf("create meta table: %w", err)
	}
	return nil
}

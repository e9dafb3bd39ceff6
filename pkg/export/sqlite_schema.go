// Package export writes an instruction collection out as a content pack:
// a markdown handbook, a JSON resource or a SQLite database that the
// sqlite data source can load back.
//
// This file implements SQLite schema creation for content packs.
package export

import (
	"database/sql"
	"fmt"
)

// Schema version for tracking migrations
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

// createCoreTables creates the instructions and steps tables.
func createCoreTables(db *sql.DB) error {
	// position is the load order; the reader sorts on it
	instructionsSQL := `
		CREATE TABLE IF NOT EXISTS instructions (
			position INTEGER PRIMARY KEY,
			category TEXT,
			title TEXT NOT NULL,
			background TEXT
		)
	`
	if _, err := db.Exec(instructionsSQL); err != nil {
		return fmt.Errorf("create instructions table: %w", err)
	}

	stepsSQL := `
		CREATE TABLE IF NOT EXISTS steps (
			instruction_position INTEGER NOT NULL REFERENCES instructions(position),
			step_index INTEGER NOT NULL,
			text TEXT NOT NULL,
			PRIMARY KEY (instruction_position, step_index)
		)
	`
	if _, err := db.Exec(stepsSQL); err != nil {
		return fmt.Errorf("create steps table: %w", err)
	}

	return nil
}

// createIndexes creates lookup indexes.
func createIndexes(db *sql.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_instructions_category ON instructions(category)`,
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}

// createMetaTable creates the export metadata table.
func createMetaTable(db *sql.DB) error {
	metaSQL := `
		CREATE TABLE IF NOT EXISTS pack_meta (
			key TEXT PRIMARY KEY,
			value TEXT
		)
	`
	if _, err := db.Exec(metaSQL); err != nil {
		return fmt.Errorf("create pack_meta table: %w", err)
	}

	return nil
}

// OptimizeDatabase compacts the pack. Call this as the final step before
// closing the database.
func OptimizeDatabase(db *sql.DB) error {
	optimizations := []string{
		// Single file mode (no WAL journal)
		`PRAGMA journal_mode=DELETE`,
		`ANALYZE`,
		`PRAGMA optimize`,
	}
	for _, stmt := range optimizations {
		// Some pragmas may fail depending on state, continue
		_, _ = db.Exec(stmt)
	}

	// VACUUM must be last and outside transaction
	if _, err := db.Exec(`VACUUM`); err != nil {
		return fmt.Errorf("vacuum: %w", err)
	}
	return nil
}

// InsertMetaValue inserts or updates a metadata key-value pair.
func InsertMetaValue(db *sql.DB, key, value string) error {
	_, err := db.Exec(`INSERT OR REPLACE INTO pack_meta (key, value) VALUES (?, ?)`, key, value)
	return err
}

// ReadMeta returns every metadata pair of a pack.
func ReadMeta(db *sql.DB) (map[string]string, error) {
	rows, err := db.Query(`SELECT key, value FROM pack_meta`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	meta := make(map[string]string)
	for rows.Next() {
		var key string
		var value sql.NullString
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		meta[key] = value.String
	}
	return meta, rows.Err()
}

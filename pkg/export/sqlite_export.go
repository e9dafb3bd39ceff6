package export

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/techtips/pkg/catalog"
	"github.com/vanderheijden86/techtips/pkg/metrics"
	"github.com/vanderheijden86/techtips/pkg/model"
	"github.com/vanderheijden86/techtips/pkg/version"
)

// PackConfig controls pack metadata.
type PackConfig struct {
	Title    string    // Stored as the "title" meta key when set
	Optimize bool      // VACUUM and ANALYZE after writing
	Now      time.Time // Generation timestamp; zero means time.Now
}

// DefaultPackConfig returns the configuration used by --export-sqlite.
func DefaultPackConfig() PackConfig {
	return PackConfig{Title: "techtips", Optimize: true}
}

// SQLiteExporter writes instructions to a SQLite content pack.
type SQLiteExporter struct {
	Instructions []model.Instruction
	Config       PackConfig
}

// NewSQLiteExporter creates an exporter for items, in load order.
func NewSQLiteExporter(items []model.Instruction) *SQLiteExporter {
	return &SQLiteExporter{
		Instructions: items,
		Config:       DefaultPackConfig(),
	}
}

// Export writes the pack to path, replacing any existing file.
func (e *SQLiteExporter) Export(path string) error {
	defer metrics.Timer(metrics.PackExport)()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing database: %w", err)
	}

	db, err := sql.Open("sqlite", path)
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
	if err := e.insertInstructions(db); err != nil {
		return fmt.Errorf("insert instructions: %w", err)
	}
	if err := e.insertMeta(db); err != nil {
		return fmt.Errorf("insert meta: %w", err)
	}
	if e.Config.Optimize {
		if err := OptimizeDatabase(db); err != nil {
			return fmt.Errorf("optimize database: %w", err)
		}
	}

	dbClosed = true
	if err := db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

// insertInstructions writes every record and its steps in one transaction.
func (e *SQLiteExporter) insertInstructions(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	insInstruction, err := tx.Prepare(`
		INSERT INTO instructions (position, category, title, background)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer insInstruction.Close()

	insStep, err := tx.Prepare(`
		INSERT INTO steps (instruction_position, step_index, text)
		VALUES (?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer insStep.Close()

	for pos, in := range e.Instructions {
		var category *string
		if in.HasCategory() {
			c := in.Category
			category = &c
		}
		if _, err := insInstruction.Exec(pos, category, in.Title, in.Background); err != nil {
			return fmt.Errorf("insert instruction %q: %w", in.Title, err)
		}
		for i, step := range in.Steps {
			if _, err := insStep.Exec(pos, i, step); err != nil {
				return fmt.Errorf("insert step %d of %q: %w", i, in.Title, err)
			}
		}
	}

	return tx.Commit()
}

// insertMeta inserts pack metadata.
func (e *SQLiteExporter) insertMeta(db *sql.DB) error {
	now := e.Config.Now
	if now.IsZero() {
		now = time.Now()
	}
	meta := map[string]string{
		"generator":         "techtips " + version.Version,
		"generated_at":      now.UTC().Format(time.RFC3339),
		"instruction_count": strconv.Itoa(len(e.Instructions)),
		"category_count":    strconv.Itoa(len(catalog.Categories(e.Instructions))),
		"schema_version":    strconv.Itoa(SchemaVersion),
	}
	if e.Config.Title != "" {
		meta["title"] = e.Config.Title
	}

	for key, value := range meta {
		if err := InsertMetaValue(db, key, value); err != nil {
			return fmt.Errorf("insert meta %s: %w", key, err)
		}
	}
	return nil
}

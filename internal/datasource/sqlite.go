package datasource

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/techtips/pkg/debug"
	"github.com/vanderheijden86/techtips/pkg/loader"
	"github.com/vanderheijden86/techtips/pkg/model"
)

// SQLiteReader provides read access to a techtips content pack.
//
// A pack has two tables:
//
//	instructions(position INTEGER PRIMARY KEY, category TEXT, title TEXT, background TEXT)
//	steps(instruction_position INTEGER, step_index INTEGER, text TEXT)
//
// Rows are read ordered by position and step_index, so the order written by
// the exporter is the order loaded.
type SQLiteReader struct {
	db   *sql.DB
	path string
}

// NewSQLiteReader opens a SQLite content pack for reading
func NewSQLiteReader(source DataSource) (*SQLiteReader, error) {
	if source.Type != SourceTypeSQLite {
		return nil, fmt.Errorf("source is not SQLite: %s", source.Type)
	}

	dsn := fmt.Sprintf("file:%s?mode=ro", source.Path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}
	// Non-fatal; the pragma only affects read performance
	_, _ = db.Exec("PRAGMA temp_store = MEMORY")

	return &SQLiteReader{
		db:   db,
		path: source.Path,
	}, nil
}

// Close closes the database connection
func (r *SQLiteReader) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// LoadInstructions reads every instruction with its steps. A database without
// the pack tables is a decode failure; individual bad rows are skipped with a
// warning through opts.
func (r *SQLiteReader) LoadInstructions(opts loader.ParseOptions) ([]model.Instruction, error) {
	rows, err := r.db.Query(`
		SELECT position, category, title, background
		FROM instructions
		ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", loader.ErrDecodeFailure, r.path, err)
	}
	defer rows.Close()

	warn := opts.WarningHandler
	if warn == nil {
		warn = func(msg string) { debug.Log("sqlite warning: %s", msg) }
	}

	var records []model.Instruction
	byPosition := make(map[int64]int)
	for rows.Next() {
		var position int64
		var category, title, background sql.NullString
		if err := rows.Scan(&position, &category, &title, &background); err != nil {
			warn(fmt.Sprintf("skipping unreadable instruction row: %v", err))
			continue
		}
		byPosition[position] = len(records)
		records = append(records, model.Instruction{
			Category:   category.String,
			Title:      title.String,
			Background: background.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating instructions: %w", err)
	}

	if err := r.loadSteps(records, byPosition, warn); err != nil {
		return nil, err
	}

	return loader.Prepare(records, opts), nil
}

func (r *SQLiteReader) loadSteps(records []model.Instruction, byPosition map[int64]int, warn func(string)) error {
	rows, err := r.db.Query(`
		SELECT instruction_position, step_index, text
		FROM steps
		ORDER BY instruction_position, step_index
	`)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", loader.ErrDecodeFailure, r.path, err)
	}
	defer rows.Close()

	for rows.Next() {
		var position, index int64
		var text sql.NullString
		if err := rows.Scan(&position, &index, &text); err != nil {
			warn(fmt.Sprintf("skipping unreadable step row: %v", err))
			continue
		}
		i, ok := byPosition[position]
		if !ok {
			warn(fmt.Sprintf("skipping step %d of unknown instruction %d", index, position))
			continue
		}
		records[i].Steps = append(records[i].Steps, text.String)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating steps: %w", err)
	}
	return nil
}

// CountInstructions returns the number of instruction rows
func (r *SQLiteReader) CountInstructions() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM instructions").Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

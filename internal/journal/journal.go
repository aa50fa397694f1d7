// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package journal records fix runs and the blocks they changed in a local
// SQLite database. The journal is an audit trail: it is never replayed
// against Notion.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/notion-math/internal/fix"
	"github.com/pdiddy/notion-math/internal/notion"
)

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Journal manages the journal SQLite database.
type Journal struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Open opens or creates the journal database at path, creating parent
// directories and the schema as needed.
func Open(path string) (*Journal, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating journal directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}

	j := &Journal{db: db, path: path, now: time.Now}
	if err := j.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return j, nil
}

// Close releases the database connection.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Path returns the database file path.
func (j *Journal) Path() string { return j.path }

func (j *Journal) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			page_id TEXT NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			dry_run INTEGER NOT NULL DEFAULT 0,
			scanned INTEGER NOT NULL DEFAULT 0,
			textual INTEGER NOT NULL DEFAULT 0,
			changed INTEGER NOT NULL DEFAULT 0,
			skipped INTEGER NOT NULL DEFAULT 0,
			equations INTEGER NOT NULL DEFAULT 0,
			error TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS changes (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id),
			block_id TEXT NOT NULL,
			block_type TEXT NOT NULL,
			depth INTEGER NOT NULL,
			before_text TEXT NOT NULL,
			after_text TEXT NOT NULL,
			before_json TEXT NOT NULL,
			recorded_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_changes_run_id ON changes(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_changes_block_id ON changes(block_id)`,
	}

	for _, stmt := range statements {
		if _, err := j.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Run is an open journal entry for one fix run. It implements
// fix.Recorder.
type Run struct {
	j  *Journal
	ID string
}

// BeginRun inserts a run row and returns a handle for recording changes.
func (j *Journal) BeginRun(ctx context.Context, pageID string, dryRun bool) (*Run, error) {
	id := uuid.New().String()
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO runs (id, page_id, started_at, dry_run) VALUES (?, ?, ?, ?)`,
		id, pageID, j.timestamp(), dryRun,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting run: %w", err)
	}
	return &Run{j: j, ID: id}, nil
}

// RecordChange stores one changed block.
func (r *Run) RecordChange(ctx context.Context, c fix.Change) error {
	before, err := json.Marshal(c.Before)
	if err != nil {
		return fmt.Errorf("encoding rich text: %w", err)
	}
	_, err = r.j.db.ExecContext(ctx,
		`INSERT INTO changes (run_id, block_id, block_type, depth, before_text, after_text, before_json, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, c.BlockID, string(c.BlockType), c.Depth,
		notion.PlainText(c.Before), renderAfter(c.After), string(before), r.j.timestamp(),
	)
	if err != nil {
		return fmt.Errorf("inserting change: %w", err)
	}
	return nil
}

// Finish stores the summary and, when runErr is non-nil, its message.
func (r *Run) Finish(ctx context.Context, s fix.Summary, runErr error) error {
	var errText sql.NullString
	if runErr != nil {
		errText = sql.NullString{String: runErr.Error(), Valid: true}
	}
	_, err := r.j.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, scanned = ?, textual = ?, changed = ?, skipped = ?, equations = ?, error = ?
		 WHERE id = ?`,
		r.j.timestamp(), s.Scanned, s.Textual, s.Changed, s.Skipped, s.Equations, errText, r.ID,
	)
	if err != nil {
		return fmt.Errorf("finishing run: %w", err)
	}
	return nil
}

func (j *Journal) timestamp() string {
	return j.now().UTC().Format(timeLayout)
}

// renderAfter shows equations with their dollar signs restored so the
// before and after columns read alike.
func renderAfter(segments []notion.RichText) string {
	var out []byte
	for _, s := range segments {
		if s.Type == notion.RichTextEquation {
			out = append(out, '$')
			out = append(out, s.Content()...)
			out = append(out, '$')
			continue
		}
		out = append(out, s.Content()...)
	}
	return string(out)
}

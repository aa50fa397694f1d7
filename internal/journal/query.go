// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package journal

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

const defaultLimit = 20

// QueryOptions filters journal listings.
type QueryOptions struct {
	// PageID restricts runs to one page.
	PageID string

	// RunID restricts changes to one run.
	RunID string

	// Limit caps the number of runs returned. Zero uses the default (20).
	Limit int
}

// RunRecord is one row of the runs table.
type RunRecord struct {
	ID         string    `json:"id" yaml:"id"`
	PageID     string    `json:"page_id" yaml:"page_id"`
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitempty" yaml:"finished_at,omitempty"`
	DryRun     bool      `json:"dry_run" yaml:"dry_run"`
	Scanned    int       `json:"scanned" yaml:"scanned"`
	Textual    int       `json:"textual" yaml:"textual"`
	Changed    int       `json:"changed" yaml:"changed"`
	Skipped    int       `json:"skipped" yaml:"skipped"`
	Equations  int       `json:"equations" yaml:"equations"`
	Error      string    `json:"error,omitempty" yaml:"error,omitempty"`
}

// Finished reports whether the run recorded its summary.
func (r RunRecord) Finished() bool { return !r.FinishedAt.IsZero() }

// ChangeRecord is one row of the changes table.
type ChangeRecord struct {
	RunID      string    `json:"run_id" yaml:"run_id"`
	BlockID    string    `json:"block_id" yaml:"block_id"`
	BlockType  string    `json:"block_type" yaml:"block_type"`
	Depth      int       `json:"depth" yaml:"depth"`
	Before     string    `json:"before" yaml:"before"`
	After      string    `json:"after" yaml:"after"`
	BeforeJSON string    `json:"-" yaml:"-"`
	RecordedAt time.Time `json:"recorded_at" yaml:"recorded_at"`
}

// Runs lists runs, most recent first.
func (j *Journal) Runs(ctx context.Context, opts QueryOptions) ([]RunRecord, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(
		`SELECT id, page_id, started_at, finished_at, dry_run,
			scanned, textual, changed, skipped, equations, error
		FROM runs WHERE 1=1`)
	if opts.PageID != "" {
		qb.WriteString(` AND page_id = ?`)
		args = append(args, opts.PageID)
	}
	if opts.RunID != "" {
		qb.WriteString(` AND id = ?`)
		args = append(args, opts.RunID)
	}
	qb.WriteString(` ORDER BY started_at DESC, rowid DESC LIMIT ?`)
	args = append(args, limit)

	rows, err := j.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var (
			r                 RunRecord
			started           string
			finished, errText sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.PageID, &started, &finished, &r.DryRun,
			&r.Scanned, &r.Textual, &r.Changed, &r.Skipped, &r.Equations, &errText); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.StartedAt = parseTime(started)
		if finished.Valid {
			r.FinishedAt = parseTime(finished.String)
		}
		r.Error = errText.String
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Changes lists the blocks changed by a run in the order they were
// recorded. Without a RunID it lists changes from every run.
func (j *Journal) Changes(ctx context.Context, opts QueryOptions) ([]ChangeRecord, error) {
	query := `SELECT run_id, block_id, block_type, depth, before_text, after_text, before_json, recorded_at
		FROM changes`
	var args []any
	if opts.RunID != "" {
		query += ` WHERE run_id = ?`
		args = append(args, opts.RunID)
	}
	query += ` ORDER BY rowid`

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying changes: %w", err)
	}
	defer rows.Close()

	var changes []ChangeRecord
	for rows.Next() {
		var (
			c        ChangeRecord
			recorded string
		)
		if err := rows.Scan(&c.RunID, &c.BlockID, &c.BlockType, &c.Depth,
			&c.Before, &c.After, &c.BeforeJSON, &recorded); err != nil {
			return nil, fmt.Errorf("scanning change: %w", err)
		}
		c.RecordedAt = parseTime(recorded)
		changes = append(changes, c)
	}
	return changes, rows.Err()
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

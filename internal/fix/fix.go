// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fix walks a Notion page and rewrites inline $...$ math in every
// textual block into equation segments, one block at a time.
package fix

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/notion-math/internal/mathtext"
	"github.com/pdiddy/notion-math/internal/notion"
	"github.com/pdiddy/notion-math/pkg/types"
)

// API is the part of the Notion client the fixer needs.
type API interface {
	notion.ChildLister
	UpdateRichText(ctx context.Context, blockID string, blockType notion.BlockType, segments []notion.RichText) error
}

// Change describes one block whose rich text was (or, in a dry run, would
// be) replaced.
type Change struct {
	BlockID   string
	BlockType notion.BlockType
	Depth     int
	Before    []notion.RichText
	After     []notion.RichText
	DryRun    bool
}

// Recorder receives every change after it has been applied. A journal
// implements it; nil disables recording.
type Recorder interface {
	RecordChange(ctx context.Context, c Change) error
}

// Summary holds counts from a fix run.
type Summary struct {
	Scanned   int // blocks yielded by the walk
	Textual   int // blocks handed to the rewriter
	Changed   int // blocks updated, or that would be in a dry run
	Skipped   int // non-textual, archived or trashed blocks
	Equations int // equation segments created
}

// Fixer runs the sequential fetch, rewrite, update loop.
type Fixer struct {
	api      API
	cfg      types.FixConfig
	rewriter *mathtext.Rewriter
	recorder Recorder
	log      logrus.FieldLogger
}

// New returns a Fixer. rec may be nil; log defaults to the standard logger.
func New(api API, cfg types.FixConfig, rec Recorder, log logrus.FieldLogger) *Fixer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Fixer{
		api:      api,
		cfg:      cfg,
		rewriter: mathtext.New(mathtext.Options{NormalizeUnicode: cfg.NormalizeUnicode}),
		recorder: rec,
		log:      log,
	}
}

// Run processes every block below pageID. The first listing, update or
// recording failure aborts the run; blocks updated before it stay
// updated. The returned summary reflects the work done up to that point.
func (f *Fixer) Run(ctx context.Context, pageID string) (Summary, error) {
	var summary Summary

	for block, err := range notion.Walk(ctx, f.api, pageID, f.cfg.Recursive) {
		if err != nil {
			return summary, err
		}
		if summary.Scanned > 0 {
			if err := f.pause(ctx); err != nil {
				return summary, err
			}
		}
		summary.Scanned++

		entry := f.log.WithFields(logrus.Fields{
			"block": block.ID,
			"type":  block.Type,
			"depth": block.Depth,
		})

		if !block.IsTextual() || block.Archived || block.InTrash {
			entry.Debug("skipping block")
			summary.Skipped++
			continue
		}
		summary.Textual++

		after, changed := f.rewriter.Rewrite(block.RichText)
		if !changed {
			continue
		}

		if !f.cfg.DryRun {
			if err := f.api.UpdateRichText(ctx, block.ID, block.Type, after); err != nil {
				return summary, err
			}
		}

		added := countEquations(after) - countEquations(block.RichText)
		summary.Changed++
		summary.Equations += added

		if f.recorder != nil {
			c := Change{
				BlockID:   block.ID,
				BlockType: block.Type,
				Depth:     block.Depth,
				Before:    block.RichText,
				After:     after,
				DryRun:    f.cfg.DryRun,
			}
			if err := f.recorder.RecordChange(ctx, c); err != nil {
				return summary, fmt.Errorf("recording change to %s: %w", block.ID, err)
			}
		}

		entry = entry.WithField("equations", added)
		if f.cfg.DryRun {
			entry.Info("would update block")
		} else {
			entry.Info("updated block")
		}
	}

	return summary, nil
}

// pause waits BlockDelay between consecutive blocks to stay well under
// Notion's rate limit.
func (f *Fixer) pause(ctx context.Context) error {
	if f.cfg.BlockDelay <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(f.cfg.BlockDelay):
		return nil
	}
}

func countEquations(segments []notion.RichText) int {
	n := 0
	for _, s := range segments {
		if s.Type == notion.RichTextEquation {
			n++
		}
	}
	return n
}

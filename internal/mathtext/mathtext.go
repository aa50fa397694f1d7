// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mathtext rewrites inline $...$ spans in Notion rich text into
// native equation segments.
//
// A math span is the shortest non-empty run of text between two dollar
// signs with no newline inside. An unmatched dollar sign stays literal, and
// there is no escaping: \$ is an ordinary backslash followed by a delimiter.
// Block-level $$...$$ math is not recognised.
package mathtext

import (
	"regexp"
	"strings"

	"github.com/pdiddy/notion-math/internal/notion"
)

// mathPattern matches one inline span. The character class excludes both
// delimiters and newlines, so the match is the shortest possible pair.
var mathPattern = regexp.MustCompile(`\$([^$\n]+)\$`)

// Options tunes the rewrite.
type Options struct {
	// NormalizeUnicode replaces unicode math symbols in extracted
	// expressions with LaTeX commands (see Normalize).
	NormalizeUnicode bool
}

// Rewriter converts math spans inside text segments.
type Rewriter struct {
	opts Options
}

// New returns a Rewriter with the given options.
func New(opts Options) *Rewriter {
	return &Rewriter{opts: opts}
}

// Rewrite returns segments with every math span in a text segment
// replaced by an equation segment, and reports whether anything changed.
// Plain runs keep the annotations and link of the segment they came from;
// equation segments use default styling. Non-text segments pass through.
// When nothing matches the input slice itself is returned.
func (rw *Rewriter) Rewrite(segments []notion.RichText) ([]notion.RichText, bool) {
	var out []notion.RichText
	for i, seg := range segments {
		parts, ok := rw.split(seg)
		if !ok {
			if out != nil {
				out = append(out, seg)
			}
			continue
		}
		if out == nil {
			out = make([]notion.RichText, 0, len(segments)+len(parts))
			out = append(out, segments[:i]...)
		}
		out = append(out, parts...)
	}
	if out == nil {
		return segments, false
	}
	return out, true
}

// Rewrite is a convenience wrapper around New(Options{}).Rewrite.
func Rewrite(segments []notion.RichText) ([]notion.RichText, bool) {
	return New(Options{}).Rewrite(segments)
}

// HasMath reports whether any text segment contains a math span.
func HasMath(segments []notion.RichText) bool {
	for _, seg := range segments {
		if seg.Type != notion.RichTextText || seg.Text == nil {
			continue
		}
		if len(spans(seg.Text.Content)) > 0 {
			return true
		}
	}
	return false
}

// split breaks one text segment into text and equation parts. It returns
// false when the segment is not text or holds no math span.
func (rw *Rewriter) split(seg notion.RichText) ([]notion.RichText, bool) {
	if seg.Type != notion.RichTextText || seg.Text == nil {
		return nil, false
	}
	content := seg.Text.Content
	matches := spans(content)
	if len(matches) == 0 {
		return nil, false
	}

	var parts []notion.RichText
	prev := 0
	for _, m := range matches {
		if m[0] > prev {
			parts = append(parts, textRun(seg, content[prev:m[0]]))
		}
		expr := content[m[2]:m[3]]
		if rw.opts.NormalizeUnicode {
			expr = Normalize(expr)
		}
		parts = append(parts, notion.NewEquation(expr))
		prev = m[1]
	}
	if prev < len(content) {
		parts = append(parts, textRun(seg, content[prev:]))
	}
	return parts, true
}

// spans returns the submatch indices of every math span in s. A span whose
// interior is only whitespace is not math and is dropped, leaving its
// dollar signs as literal text.
func spans(s string) [][]int {
	if strings.IndexByte(s, '$') < 0 {
		return nil
	}
	all := mathPattern.FindAllStringSubmatchIndex(s, -1)
	kept := all[:0]
	for _, m := range all {
		if strings.TrimSpace(s[m[2]:m[3]]) != "" {
			kept = append(kept, m)
		}
	}
	return kept
}

// textRun copies the styling of seg onto a new text segment holding run.
func textRun(seg notion.RichText, run string) notion.RichText {
	var ann *notion.Annotations
	if seg.Annotations != nil {
		a := *seg.Annotations
		ann = &a
	}
	var link *notion.Link
	if seg.Text.Link != nil {
		l := *seg.Text.Link
		link = &l
	}
	rt := notion.NewText(run, ann, link)
	rt.Href = seg.Href
	return rt
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package notion

import (
	"context"
	"iter"
)

// ChildLister lists one page of a block's children. *Client implements it.
type ChildLister interface {
	ListChildren(ctx context.Context, blockID, cursor string) (ChildrenPage, error)
}

// frame is one level of the traversal: a parent block and the page of its
// children currently being consumed.
type frame struct {
	parent  string
	depth   int
	cursor  string
	fetched bool
	blocks  []Block
	next    int
}

// Walk returns a lazy depth-first sequence over the blocks below rootID.
// A block is yielded before its children. Pages are fetched only when the
// consumer reaches them, so at most one page per nesting level is held in
// memory. Each range over the sequence restarts from the root.
//
// When recursive is false only the direct children of rootID are yielded.
// The first listing error is yielded once and ends the sequence.
func Walk(ctx context.Context, api ChildLister, rootID string, recursive bool) iter.Seq2[Block, error] {
	return func(yield func(Block, error) bool) {
		stack := []*frame{{parent: rootID}}
		for len(stack) > 0 {
			f := stack[len(stack)-1]

			if f.next == len(f.blocks) {
				if f.fetched && f.cursor == "" {
					stack = stack[:len(stack)-1]
					continue
				}
				if err := ctx.Err(); err != nil {
					yield(Block{}, err)
					return
				}
				page, err := api.ListChildren(ctx, f.parent, f.cursor)
				if err != nil {
					yield(Block{}, err)
					return
				}
				f.fetched = true
				f.blocks, f.next = page.Results, 0
				f.cursor = ""
				if page.HasMore {
					f.cursor = page.NextCursor
				}
				continue
			}

			b := f.blocks[f.next]
			f.next++
			b.Depth = f.depth
			if !yield(b, nil) {
				return
			}
			if recursive && b.HasChildren {
				stack = append(stack, &frame{parent: b.ID, depth: f.depth + 1})
			}
		}
	}
}

// Walk is shorthand for Walk(ctx, c, rootID, recursive).
func (c *Client) Walk(ctx context.Context, rootID string, recursive bool) iter.Seq2[Block, error] {
	return Walk(ctx, c, rootID, recursive)
}

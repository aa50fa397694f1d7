// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package notion

import (
	"encoding/json"
	"fmt"
)

// BlockType is the Notion block type tag (e.g. "paragraph", "code").
type BlockType string

// textualTypes lists the block types whose rich_text can be rewritten.
var textualTypes = map[BlockType]bool{
	"paragraph":          true,
	"heading_1":          true,
	"heading_2":          true,
	"heading_3":          true,
	"bulleted_list_item": true,
	"numbered_list_item": true,
	"to_do":              true,
	"toggle":             true,
	"quote":              true,
	"callout":            true,
}

// IsTextual reports whether blocks of type t carry editable rich text.
// Equation, code, media, tables, columns, child pages and every type not
// listed are skipped.
func (t BlockType) IsTextual() bool { return textualTypes[t] }

// Block is a Notion content unit. RichText is populated only for textual
// block types.
type Block struct {
	ID          string     `json:"id"`
	Type        BlockType  `json:"type"`
	HasChildren bool       `json:"has_children"`
	Archived    bool       `json:"archived"`
	InTrash     bool       `json:"in_trash"`
	RichText    []RichText `json:"-"`

	// Depth is the nesting level below the walked root, starting at 0.
	Depth int `json:"-"`
}

// IsTextual reports whether the block carries editable rich text.
func (b Block) IsTextual() bool { return b.Type.IsTextual() }

// UnmarshalJSON decodes the common block fields and, for textual types,
// the rich_text array nested under the type key.
func (b *Block) UnmarshalJSON(data []byte) error {
	type header struct {
		ID          string    `json:"id"`
		Type        BlockType `json:"type"`
		HasChildren bool      `json:"has_children"`
		Archived    bool      `json:"archived"`
		InTrash     bool      `json:"in_trash"`
	}
	var h header
	if err := json.Unmarshal(data, &h); err != nil {
		return err
	}
	*b = Block{
		ID:          h.ID,
		Type:        h.Type,
		HasChildren: h.HasChildren,
		Archived:    h.Archived,
		InTrash:     h.InTrash,
	}
	if !h.Type.IsTextual() {
		return nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	payload, ok := fields[string(h.Type)]
	if !ok {
		return nil
	}
	var content struct {
		RichText []RichText `json:"rich_text"`
	}
	if err := json.Unmarshal(payload, &content); err != nil {
		return fmt.Errorf("decoding %s payload of block %s: %w", h.Type, h.ID, err)
	}
	b.RichText = content.RichText
	return nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package notion

import "encoding/json"

// RichTextType discriminates the variants of a rich-text segment.
type RichTextType string

const (
	RichTextText     RichTextType = "text"
	RichTextEquation RichTextType = "equation"
	RichTextMention  RichTextType = "mention"
)

// Annotations holds the styling flags Notion attaches to every segment.
type Annotations struct {
	Bold          bool   `json:"bold"`
	Italic        bool   `json:"italic"`
	Strikethrough bool   `json:"strikethrough"`
	Underline     bool   `json:"underline"`
	Code          bool   `json:"code"`
	Color         string `json:"color,omitempty"`
}

// Link is the optional hyperlink of a text segment.
type Link struct {
	URL string `json:"url"`
}

// Text is the payload of a "text" segment.
type Text struct {
	Content string `json:"content"`
	Link    *Link  `json:"link,omitempty"`
}

// Equation is the payload of an "equation" segment. Expression is raw
// LaTeX without the surrounding dollar signs.
type Equation struct {
	Expression string `json:"expression"`
}

// RichText is one styled span of a block's content. Exactly one of Text,
// Equation or Mention is set, matching Type. Mention and any variant this
// package does not model are kept as raw JSON so they round-trip unchanged.
type RichText struct {
	Type        RichTextType    `json:"type"`
	Text        *Text           `json:"text,omitempty"`
	Equation    *Equation       `json:"equation,omitempty"`
	Mention     json.RawMessage `json:"mention,omitempty"`
	Annotations *Annotations    `json:"annotations,omitempty"`
	PlainText   string          `json:"plain_text,omitempty"`
	Href        *string         `json:"href,omitempty"`

	// raw holds the original object for variants not modeled above.
	raw json.RawMessage
}

type richTextAlias RichText

// UnmarshalJSON decodes a segment, keeping the original bytes of unknown
// variants.
func (r *RichText) UnmarshalJSON(data []byte) error {
	var a richTextAlias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*r = RichText(a)
	switch r.Type {
	case RichTextText, RichTextEquation, RichTextMention:
	default:
		r.raw = append(json.RawMessage(nil), data...)
	}
	return nil
}

// MarshalJSON encodes the segment. Unknown variants are written back
// byte-for-byte.
func (r RichText) MarshalJSON() ([]byte, error) {
	if r.raw != nil {
		return r.raw, nil
	}
	return json.Marshal(richTextAlias(r))
}

// NewText returns a text segment carrying the given annotations and link.
func NewText(content string, ann *Annotations, link *Link) RichText {
	return RichText{
		Type:        RichTextText,
		Text:        &Text{Content: content, Link: link},
		Annotations: ann,
		PlainText:   content,
	}
}

// NewEquation returns an equation segment with default styling.
func NewEquation(expr string) RichText {
	return RichText{
		Type:      RichTextEquation,
		Equation:  &Equation{Expression: expr},
		PlainText: expr,
	}
}

// Content returns the display text of the segment: the text content for
// text segments, the expression for equations, and PlainText otherwise.
func (r RichText) Content() string {
	switch {
	case r.Type == RichTextText && r.Text != nil:
		return r.Text.Content
	case r.Type == RichTextEquation && r.Equation != nil:
		return r.Equation.Expression
	}
	return r.PlainText
}

// PlainText concatenates the display text of all segments.
func PlainText(segments []RichText) string {
	var n int
	for _, s := range segments {
		n += len(s.Content())
	}
	buf := make([]byte, 0, n)
	for _, s := range segments {
		buf = append(buf, s.Content()...)
	}
	return string(buf)
}

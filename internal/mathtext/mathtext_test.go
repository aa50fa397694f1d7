// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mathtext

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/notion-math/internal/notion"
)

func text(s string) notion.RichText { return notion.NewText(s, nil, nil) }

func eq(s string) notion.RichText { return notion.NewEquation(s) }

// shape renders segments as "T:content" / "E:expr" for compact assertions.
func shape(segs []notion.RichText) []string {
	out := make([]string, len(segs))
	for i, s := range segs {
		switch s.Type {
		case notion.RichTextText:
			out[i] = "T:" + s.Text.Content
		case notion.RichTextEquation:
			out[i] = "E:" + s.Equation.Expression
		default:
			out[i] = string(s.Type)
		}
	}
	return out
}

func TestRewrite(t *testing.T) {
	tests := []struct {
		name    string
		in      []notion.RichText
		want    []string
		changed bool
	}{
		{
			name: "no dollar is identity",
			in:   []notion.RichText{text("plain prose")},
			want: []string{"T:plain prose"},
		},
		{
			name: "unmatched dollar stays literal",
			in:   []notion.RichText{text("cost is $5 today")},
			want: []string{"T:cost is $5 today"},
		},
		{
			name:    "prefix expr suffix",
			in:      []notion.RichText{text("let $x^2$ be even")},
			want:    []string{"T:let ", "E:x^2", "T: be even"},
			changed: true,
		},
		{
			name:    "leading span drops empty prefix",
			in:      []notion.RichText{text(`$h_2(n) \ge h_1(n)$ is the heuristic`)},
			want:    []string{`E:h_2(n) \ge h_1(n)`, "T: is the heuristic"},
			changed: true,
		},
		{
			name:    "trailing span drops empty suffix",
			in:      []notion.RichText{text("area is $\\pi r^2$")},
			want:    []string{"T:area is ", `E:\pi r^2`},
			changed: true,
		},
		{
			name:    "adjacent spans",
			in:      []notion.RichText{text("$a$$b$")},
			want:    []string{"E:a", "E:b"},
			changed: true,
		},
		{
			name:    "multiple spans with text between",
			in:      []notion.RichText{text("$a$ and $b$ or $c$")},
			want:    []string{"E:a", "T: and ", "E:b", "T: or ", "E:c"},
			changed: true,
		},
		{
			name:    "odd dollar count leaves the last literal",
			in:      []notion.RichText{text("$a$ costs $3")},
			want:    []string{"E:a", "T: costs $3"},
			changed: true,
		},
		{
			name: "newline breaks a span",
			in:   []notion.RichText{text("$a\nb$")},
			want: []string{"T:$a\nb$"},
		},
		{
			name: "empty pair is not math",
			in:   []notion.RichText{text("price $$ here")},
			want: []string{"T:price $$ here"},
		},
		{
			name: "whitespace-only pair is not math",
			in:   []notion.RichText{text("between $ $ dollars")},
			want: []string{"T:between $ $ dollars"},
		},
		{
			name:    "escaped dollar is not special",
			in:      []notion.RichText{text(`a \$b$ c`)},
			want:    []string{`T:a \`, "E:b", "T: c"},
			changed: true,
		},
		{
			name:    "existing equation passes through",
			in:      []notion.RichText{eq("y"), text(" then $z$")},
			want:    []string{"E:y", "T: then ", "E:z"},
			changed: true,
		},
		{
			name:    "segments after a rewritten one are kept",
			in:      []notion.RichText{text("$a$"), text(" tail")},
			want:    []string{"E:a", "T: tail"},
			changed: true,
		},
		{
			name: "empty input",
			in:   nil,
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := Rewrite(tt.in)
			assert.Equal(t, tt.changed, changed)
			assert.Equal(t, tt.want, shape(got))
		})
	}
}

func TestRewrite_IdentityReturnsInput(t *testing.T) {
	in := []notion.RichText{text("nothing here"), eq("x")}
	got, changed := Rewrite(in)
	require.False(t, changed)
	assert.Same(t, &in[0], &got[0])
}

func TestRewrite_Idempotent(t *testing.T) {
	inputs := []string{
		"$a$$b$",
		"cost is $5 today",
		"$a$ costs $3 and $4",
		"x $ $y$ z",
		"$a\n$b$ c$",
		`$h_2(n) \ge h_1(n)$ is the heuristic`,
	}
	for _, s := range inputs {
		t.Run(s, func(t *testing.T) {
			once, _ := Rewrite([]notion.RichText{text(s)})
			twice, changed := Rewrite(once)
			assert.False(t, changed)
			assert.Equal(t, shape(once), shape(twice))
		})
	}
}

func TestRewrite_PreservesAnnotationsOnTextRuns(t *testing.T) {
	bold := &notion.Annotations{Bold: true, Color: "red"}
	href := "https://example.com"
	in := []notion.RichText{notion.NewText("see $x$ here", bold, &notion.Link{URL: href})}
	in[0].Href = &href

	got, changed := Rewrite(in)
	require.True(t, changed)
	require.Len(t, got, 3)

	for _, i := range []int{0, 2} {
		require.NotNil(t, got[i].Annotations)
		assert.True(t, got[i].Annotations.Bold)
		assert.Equal(t, "red", got[i].Annotations.Color)
		require.NotNil(t, got[i].Text.Link)
		assert.Equal(t, href, got[i].Text.Link.URL)
		assert.Equal(t, got[i].Text.Content, got[i].PlainText)
	}
	assert.Nil(t, got[1].Annotations, "equation uses default styling")

	// The runs must not alias the input's annotations.
	got[0].Annotations.Italic = true
	assert.False(t, bold.Italic)
}

func TestRewrite_MentionPassesThrough(t *testing.T) {
	var mention notion.RichText
	require.NoError(t, json.Unmarshal([]byte(`{"type":"mention","mention":{"type":"user","user":{"id":"u1"}},"plain_text":"@Ada"}`), &mention))

	in := []notion.RichText{mention, text(" wrote $E=mc^2$")}
	got, changed := Rewrite(in)
	require.True(t, changed)
	assert.Equal(t, []string{"mention", "T: wrote ", "E:E=mc^2"}, shape(got))
	assert.JSONEq(t, `{"type":"user","user":{"id":"u1"}}`, string(got[0].Mention))
}

func TestRewriter_NormalizeUnicode(t *testing.T) {
	rw := New(Options{NormalizeUnicode: true})
	got, changed := rw.Rewrite([]notion.RichText{text("so $a ≥ b$ and x ≥ y")})
	require.True(t, changed)
	assert.Equal(t, []string{"T:so ", `E:a \geq b`, "T: and x ≥ y"}, shape(got))
}

func TestHasMath(t *testing.T) {
	assert.True(t, HasMath([]notion.RichText{text("a $b$")}))
	assert.False(t, HasMath([]notion.RichText{text("a $b")}))
	assert.False(t, HasMath([]notion.RichText{eq("b")}))
	assert.False(t, HasMath(nil))
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"x", "x"},
		{"a ≥ b", `a \geq b`},
		{"a≤b", `a\leq b`},
		{"x→∞", `x\to\infty`},
		{"√", `\sqrt{}`},
		{"√x", `\sqrt{}x`},
		{"a⋅b•c", `a\cdot b\cdot c`},
		{"n∈ℕ", `n\inℕ`},
		{"2×3", `2\times3`},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

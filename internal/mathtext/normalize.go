// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mathtext

import "strings"

// unicodeToLaTeX maps symbols that commonly leak into hand-typed math to
// their LaTeX commands.
var unicodeToLaTeX = []string{
	"≥", `\geq`,
	"≤", `\leq`,
	"≠", `\ne`,
	"±", `\pm`,
	"×", `\times`,
	"÷", `\div`,
	"√", `\sqrt{}`,
	"→", `\to`,
	"⇒", `\Rightarrow`,
	"⇔", `\Leftrightarrow`,
	"∞", `\infty`,
	"≈", `\approx`,
	"∑", `\sum`,
	"∫", `\int`,
	"∈", `\in`,
	"∉", `\notin`,
	"∧", `\land`,
	"∨", `\lor`,
	"⋅", `\cdot`,
	"•", `\cdot`,
}

var commands = func() map[rune]string {
	m := make(map[rune]string, len(unicodeToLaTeX)/2)
	for i := 0; i < len(unicodeToLaTeX); i += 2 {
		m[[]rune(unicodeToLaTeX[i])[0]] = unicodeToLaTeX[i+1]
	}
	return m
}()

// Normalize replaces unicode math symbols in expr with LaTeX commands.
// A command followed directly by a letter would merge with it ("\geqx"),
// so Normalize inserts a space in that case.
func Normalize(expr string) string {
	if isASCII(expr) {
		return expr
	}
	var b strings.Builder
	pendingCommand := false
	for _, r := range expr {
		if cmd, ok := commands[r]; ok {
			b.WriteString(cmd)
			pendingCommand = !strings.HasSuffix(cmd, "}")
			continue
		}
		if pendingCommand && isLetter(r) {
			b.WriteByte(' ')
		}
		pendingCommand = false
		b.WriteRune(r)
	}
	return b.String()
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

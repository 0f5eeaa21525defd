// Package render turns search matches into terminal text.
package render

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/gopak/dcs-cli/internal/dcs"
)

var (
	pathColors = text.Colors{text.FgYellow}
	dupColors  = text.Colors{text.FgHiBlack}
)

// Formatter renders chunks. The zero value prints plain context without line numbers.
type Formatter struct {
	LineNumbers   bool
	FilenamesOnly bool
	Color         bool
}

// Header is the "path: ..." line.
func (f Formatter) Header(c dcs.Chunk) string {
	return f.paint(pathColors, "path: "+c.Path)
}

// Body is the five context lines. It depends only on the chunk text, its line
// number and LineNumbers, so equal content always yields an equal body.
func (f Formatter) Body(c dcs.Chunk) string {
	var b strings.Builder
	lines := [...]string{c.CtxP2, c.CtxP1, c.Context, c.CtxN1, c.CtxN2}
	for i, l := range lines {
		switch {
		case !f.LineNumbers:
			b.WriteString(l)
		case i == 2:
			fmt.Fprintf(&b, "%7d %s", c.Line, l)
		default:
			b.WriteString("        ")
			b.WriteString(l)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Render is the full block for one chunk.
func (f Formatter) Render(c dcs.Chunk) string {
	out := f.Header(c) + "\n"
	if f.FilenamesOnly {
		return out
	}
	return out + f.Body(c)
}

// Also is the secondary line for a duplicate found at another path. With
// colour on, the part shared with primary is painted in the duplicate colour.
func (f Formatter) Also(primary, secondary string) string {
	if !f.Color {
		return "also: " + secondary
	}
	r := []rune(secondary)
	split := len(r) - CommonSuffixLen(primary, secondary)
	return "also: " + f.paint(pathColors, string(r[:split])) + f.paint(dupColors, string(r[split:]))
}

func (f Formatter) paint(c text.Colors, s string) string {
	if !f.Color || s == "" {
		return s
	}
	return c.Sprint(s)
}

// CommonSuffixLen is the length in runes of the longest common suffix of a and b.
func CommonSuffixLen(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	n := 0
	for n < len(ra) && n < len(rb) && ra[len(ra)-1-n] == rb[len(rb)-1-n] {
		n++
	}
	return n
}

// Package dedupe groups matches whose rendered context is identical, so the
// same code shipped in several packages is printed once.
package dedupe

import (
	"io"
	"strings"

	"github.com/Laisky/errors/v2"

	"github.com/gopak/dcs-cli/internal/dcs"
	"github.com/gopak/dcs-cli/internal/render"
)

// Group is every buffered chunk sharing one rendered body, in arrival order.
type Group struct {
	Body   string
	Chunks []dcs.Chunk
}

// Buffer collects the chunks of one query. It is not safe for concurrent use.
type Buffer struct {
	formatter render.Formatter
	order     []string
	groups    map[string]*Group
	n         int
}

func NewBuffer(f render.Formatter) *Buffer {
	return &Buffer{formatter: f, groups: map[string]*Group{}}
}

func (b *Buffer) Add(c dcs.Chunk) {
	key := b.formatter.Body(c)
	g, ok := b.groups[key]
	if !ok {
		g = &Group{Body: key}
		b.groups[key] = g
		b.order = append(b.order, key)
	}
	g.Chunks = append(g.Chunks, c)
	b.n++
}

// Len is the number of chunks added.
func (b *Buffer) Len() int { return b.n }

// Groups returns the groups ordered by when their body was first seen.
func (b *Buffer) Groups() []Group {
	out := make([]Group, 0, len(b.order))
	for _, k := range b.order {
		out = append(out, *b.groups[k])
	}
	return out
}

// Render writes every group: the first chunk in full, one "also:" line per
// other member, then a blank line.
func (b *Buffer) Render(w io.Writer) error {
	var sb strings.Builder
	for _, g := range b.Groups() {
		sb.Reset()
		first := g.Chunks[0]
		sb.WriteString(b.formatter.Render(first))
		for _, c := range g.Chunks[1:] {
			sb.WriteString(b.formatter.Also(first.Path, c.Path))
			sb.WriteByte('\n')
		}
		sb.WriteByte('\n')
		if _, err := io.WriteString(w, sb.String()); err != nil {
			return errors.Wrap(err, "write group")
		}
	}
	return nil
}

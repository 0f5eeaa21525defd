package dedupe

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gopak/dcs-cli/internal/dcs"
	"github.com/gopak/dcs-cli/internal/render"
)

func chunk(path string, line int, body string) dcs.Chunk {
	return dcs.Chunk{Package: path, Path: path, Line: line, CtxP2: "", CtxP1: "{", Context: body, CtxN1: "}", CtxN2: ""}
}

func TestGroups(t *testing.T) {
	a := chunk("pkg1/2.0/foo.c", 10, "X")
	b := chunk("pkg2/3.1/foo.c", 10, "X")
	c := chunk("pkg3/1.0/bar.c", 4, "Y")

	buf := NewBuffer(render.Formatter{})
	buf.Add(a)
	buf.Add(c)
	buf.Add(b)

	groups := buf.Groups()
	require.Len(t, groups, 2)
	require.Equal(t, []dcs.Chunk{a, b}, groups[0].Chunks)
	require.Equal(t, []dcs.Chunk{c}, groups[1].Chunks)
	require.Equal(t, 3, buf.Len())
}

func TestGroups_LineNumbersSplitGroups(t *testing.T) {
	a := chunk("pkg1/foo.c", 10, "X")
	b := chunk("pkg2/foo.c", 11, "X")

	plain := NewBuffer(render.Formatter{})
	numbered := NewBuffer(render.Formatter{LineNumbers: true})
	for _, c := range []dcs.Chunk{a, b} {
		plain.Add(c)
		numbered.Add(c)
	}
	require.Len(t, plain.Groups(), 1)
	require.Len(t, numbered.Groups(), 2)
}

func TestGroups_FilenamesOnlyStillGroupsByContent(t *testing.T) {
	buf := NewBuffer(render.Formatter{FilenamesOnly: true})
	buf.Add(chunk("a.c", 1, "X"))
	buf.Add(chunk("b.c", 1, "Y"))
	require.Len(t, buf.Groups(), 2)
}

func TestRender(t *testing.T) {
	buf := NewBuffer(render.Formatter{})
	buf.Add(chunk("pkg1/2.0/foo.c", 10, "X"))
	buf.Add(chunk("pkg3/1.0/bar.c", 4, "Y"))
	buf.Add(chunk("pkg2/3.1/foo.c", 10, "X"))
	buf.Add(chunk("pkg9/foo.c", 10, "X"))

	var out bytes.Buffer
	require.NoError(t, buf.Render(&out))
	want := "path: pkg1/2.0/foo.c\n\n{\nX\n}\n\n" +
		"also: pkg2/3.1/foo.c\n" +
		"also: pkg9/foo.c\n" +
		"\n" +
		"path: pkg3/1.0/bar.c\n\n{\nY\n}\n\n" +
		"\n"
	require.Equal(t, want, out.String())
}

func TestRender_Empty(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, NewBuffer(render.Formatter{}).Render(&out))
	require.Empty(t, out.String())
}

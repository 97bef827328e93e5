package ascii_test

import (
	"strings"
	"testing"

	"github.com/inkboard/diagram/ascii"
	"github.com/inkboard/diagram/flow"
	"github.com/teleivo/assertive/assert"
	"github.com/teleivo/assertive/require"
)

func renderASCII(t *testing.T, src string, opts ascii.Options) string {
	t.Helper()
	g, err := flow.Parse(src)
	require.NoError(t, err, "Parse(%q)", src)
	out, err := ascii.Render(g, opts)
	require.NoError(t, err, "Render(%q)", src)
	return out
}

func TestRenderUnicodeBoxes(t *testing.T) {
	got := renderASCII(t, "graph LR\nA[Start] --> B[End]", ascii.Options{})

	assert.True(t, strings.Contains(got, "Start"), "node A label")
	assert.True(t, strings.Contains(got, "End"), "node B label")
	assert.True(t, strings.Contains(got, "┌"), "unicode box corner")
	assert.True(t, strings.Contains(got, "►"), "unicode arrowhead")
}

func TestRenderASCIIMode(t *testing.T) {
	got := renderASCII(t, "graph LR\nA --> B", ascii.Options{UseASCII: true})

	assert.True(t, strings.Contains(got, "+"), "ascii box corner")
	assert.True(t, strings.Contains(got, ">"), "ascii arrowhead")
	assert.False(t, strings.Contains(got, "┌"), "no box-drawing glyphs in ascii mode")
}

func TestRenderEdgeStyles(t *testing.T) {
	dotted := renderASCII(t, "graph LR\nA -.-> B", ascii.Options{})
	assert.True(t, strings.Contains(dotted, "·"), "dotted horizontal stroke")

	thick := renderASCII(t, "graph LR\nA ==> B", ascii.Options{})
	assert.True(t, strings.Contains(thick, "═"), "thick horizontal stroke")
}

func TestRenderDiagonalFree(t *testing.T) {
	sources := []string{
		"graph LR\nA --> B\nA --> C\nB --> D\nC --> D",
		"graph TD\nA --> B\nB --> C\nC --> A",
		"graph LR\nA[One] --> B[Two]\nB --> B",
		"graph TD\nA & B --> C\nC --> D\nD --> A",
	}
	for _, src := range sources {
		got := renderASCII(t, src, ascii.Options{})
		violations := ascii.CheckDiagonalFree(got, nil)
		assert.EqualValues(t, len(violations), 0, "no diagonals for %q", src)
	}
}

func TestRenderLabelInteriorsMayContainDiagonals(t *testing.T) {
	g, err := flow.Parse("graph LR\nA[a/b] --> B")
	require.NoError(t, err, "Parse")
	out, err := ascii.Render(g, ascii.Options{})
	require.NoError(t, err, "a diagonal inside a label must not fail the render")
	assert.True(t, strings.Contains(out, "a/b"), "label kept verbatim")
}

func TestCheckDiagonalFreeReportsPosition(t *testing.T) {
	violations := ascii.CheckDiagonalFree("ab\ncd/e", nil)
	require.EqualValues(t, len(violations), 1, "one violation")
	assert.EqualValues(t, violations[0].Line, 1, "line")
	assert.EqualValues(t, violations[0].Col, 2, "column")
	assert.EqualValues(t, violations[0].Char, '/', "character")
}

func TestRenderFanOutSharesJunction(t *testing.T) {
	got := renderASCII(t, "graph TD\nA --> B\nA --> C", ascii.Options{})

	// Both edges leave A through the same attachment cell and share the
	// downward run; the split shows up as a junction glyph.
	junctions := strings.Count(got, "├") + strings.Count(got, "┤") +
		strings.Count(got, "┬") + strings.Count(got, "┴") + strings.Count(got, "┼")
	assert.True(t, junctions >= 1, "fan-out should produce a junction glyph")
	assert.EqualValues(t, strings.Count(got, "▼"), 2, "each branch keeps its own arrowhead")
}

func TestRenderDeterminism(t *testing.T) {
	src := "graph LR\nA --> B\nA --> C\nB --> D\nC --> D"
	a := renderASCII(t, src, ascii.Options{})
	b := renderASCII(t, src, ascii.Options{})
	assert.EqualValues(t, a, b, "byte-identical output")
}

func TestRenderSelfLoop(t *testing.T) {
	got := renderASCII(t, "graph LR\nA --> A", ascii.Options{})
	assert.True(t, strings.Contains(got, "▲"), "self loop re-enters through the bottom border")
}

package flow_test

import (
	"strings"
	"testing"

	"github.com/inkboard/diagram/flow"
	"github.com/inkboard/diagram/theme"
	"github.com/teleivo/assertive/assert"
	"github.com/teleivo/assertive/require"
)

func renderFlow(t *testing.T, src string) string {
	t.Helper()
	g, err := flow.Parse(src)
	require.NoError(t, err, "Parse(%q)", src)
	out, err := flow.Render(g, flow.Options{Colors: theme.Default(), Font: "Inter"})
	require.NoError(t, err, "Render(%q)", src)
	return out
}

func TestRenderBasicGraph(t *testing.T) {
	got := renderFlow(t, "graph TD\n  A[Start] --> B[End]")

	assert.True(t, strings.Contains(got, ">Start</text>"), "node A label")
	assert.True(t, strings.Contains(got, ">End</text>"), "node B label")
	assert.True(t, strings.Contains(got, `marker-end="url(#arrowhead)"`), "arrowhead marker")
	assert.True(t, strings.Contains(got, "--bg:#FFFFFF"), "default background variable")
	assert.True(t, strings.HasPrefix(got, "<svg "), "document starts with <svg")
	assert.True(t, strings.HasSuffix(got, "</svg>"), "document ends with </svg>")
}

func TestRenderDeterminism(t *testing.T) {
	src := `graph TD
A[One] --> B{Two}
B -->|yes| C((Three))
B -->|no| D[(Four)]
subgraph grp [Group]
  C --> E
end`
	g1, err := flow.Parse(src)
	require.NoError(t, err, "Parse")
	g2, err := flow.Parse(src)
	require.NoError(t, err, "Parse")
	a, err := flow.Render(g1, flow.Options{Colors: theme.Default(), Font: "Inter"})
	require.NoError(t, err, "Render")
	b, err := flow.Render(g2, flow.Options{Colors: theme.Default(), Font: "Inter"})
	require.NoError(t, err, "Render")
	assert.EqualValues(t, a, b, "byte-identical output for the same input")
}

func TestRenderShapeRecipes(t *testing.T) {
	tests := map[string]struct {
		node string
		want []string
	}{
		"Subroutine":   {node: "A[[Sub]]", want: []string{"<line ", "<line "}},
		"DoubleCircle": {node: "A(((Core)))", want: []string{"<circle ", "<circle "}},
		"Hexagon":      {node: "A{{Hex}}", want: []string{"<polygon "}},
		"Cylinder":     {node: "A[(DB)]", want: []string{"<ellipse "}},
		"Diamond":      {node: "A{Choice}", want: []string{"<polygon "}},
		"Trapezoid":    {node: `A[/Trap\]`, want: []string{"<polygon "}},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			got := renderFlow(t, "graph TD\n"+test.node)
			for _, want := range test.want {
				assert.True(t, strings.Count(got, want) >= len(test.want), "shape recipe should contain %q", want)
			}
		})
	}
}

func TestRenderEdgeStyles(t *testing.T) {
	dotted := renderFlow(t, "graph TD\nA -.-> B")
	assert.True(t, strings.Contains(dotted, `stroke-dasharray="4 4"`), "dotted edge dasharray")

	thick := renderFlow(t, "graph TD\nA ==> B")
	assert.True(t, strings.Contains(thick, `stroke-width="2.5"`), "thick edge stroke width")

	open := renderFlow(t, "graph TD\nA --- B")
	assert.False(t, strings.Contains(open, "marker-end"), "open link has no arrowhead")

	bidi := renderFlow(t, "graph TD\nA <--> B")
	assert.True(t, strings.Contains(bidi, `marker-start="url(#arrowhead-start)"`), "bidirectional start marker")
	assert.True(t, strings.Contains(bidi, `marker-end="url(#arrowhead)"`), "bidirectional end marker")
}

func TestRenderSelfLoop(t *testing.T) {
	got := renderFlow(t, "graph TD\nA -->|again| A")

	assert.True(t, strings.Contains(got, "<polyline "), "self loop renders a polyline")
	assert.True(t, strings.Contains(got, ">again</text>"), "self loop keeps its label")
}

func TestRenderEmptySubgraph(t *testing.T) {
	got := renderFlow(t, "graph TD\nsubgraph S [Empty Frame]\nend\nA --> S")

	assert.True(t, strings.Contains(got, ">Empty Frame</text>"), "frame label")
	assert.True(t, strings.Contains(got, "<polyline "), "edge to the frame is routed")
}

func TestRenderCompositeStateDedup(t *testing.T) {
	src := `stateDiagram-v2
  [*] --> Idle
  Idle --> Processing : submit
  state Processing { parse --> validate }
  Processing --> Complete : done`
	got := renderFlow(t, src)

	assert.EqualValues(t, strings.Count(got, ">Processing</text>"), 1, "composite state label occurs exactly once")
	assert.True(t, strings.Contains(got, ">parse</text>"), "interior state label")
	assert.True(t, strings.Contains(got, ">submit</text>"), "transition label")
}

func TestRenderEmptyDiagram(t *testing.T) {
	got := renderFlow(t, "")

	assert.True(t, strings.Contains(got, "<svg "), "still a valid svg document")
	assert.True(t, strings.Contains(got, "</svg>"), "closed svg document")
}

func TestRenderThemeVariablesOnRoot(t *testing.T) {
	g, err := flow.Parse("graph TD\nA --> B")
	require.NoError(t, err, "Parse")
	got, err := flow.Render(g, flow.Options{
		Colors: theme.Colors{Bg: "#18181B", Fg: "#FAFAFA"},
		Font:   "Inter",
	})
	require.NoError(t, err, "Render")

	assert.True(t, strings.Contains(got, `style="--bg:#18181B;--fg:#FAFAFA`), "user variables lead the style attribute")
	assert.True(t, strings.Contains(got, "--_node-fill:color-mix"), "derived variables present")
}

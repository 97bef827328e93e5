package diagram_test

import (
	"strconv"
	"strings"
	"testing"

	"github.com/inkboard/diagram"
	"github.com/inkboard/diagram/diagramerr"
	"github.com/inkboard/diagram/internal/gfx"
	"github.com/teleivo/assertive/assert"
	"github.com/teleivo/assertive/require"
)

func render(t *testing.T, src string, opts diagram.RenderOptions) string {
	t.Helper()
	out, err := diagram.Render(src, opts)
	require.NoError(t, err, "Render(%q)", src)
	return out
}

func TestDetect(t *testing.T) {
	tests := map[string]struct {
		in   string
		want diagram.Family
	}{
		"Sequence":        {in: "sequenceDiagram\nA->>B: hi", want: diagram.FamilySequence},
		"SequenceCase":    {in: "SEQUENCEDIAGRAM\n", want: diagram.FamilySequence},
		"Class":           {in: "classDiagram\nA --> B", want: diagram.FamilyClass},
		"ER":              {in: "erDiagram\nA ||--|| B : x", want: diagram.FamilyER},
		"Graph":           {in: "graph TD\nA --> B", want: diagram.FamilyFlow},
		"Flowchart":       {in: "flowchart LR\nA --> B", want: diagram.FamilyFlow},
		"State":           {in: "stateDiagram-v2\n[*] --> A", want: diagram.FamilyFlow},
		"Unknown":         {in: "whatever\nA --> B", want: diagram.FamilyFlow},
		"CommentsSkipped": {in: "%% a comment\n\nsequenceDiagram", want: diagram.FamilySequence},
		"Empty":           {in: "", want: diagram.FamilyFlow},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.EqualValues(t, diagram.Detect(test.in), test.want, "Detect(%q)", test.in)
		})
	}
}

// End to end: a minimal two-node flowchart.
func TestScenarioBasicFlow(t *testing.T) {
	got := render(t, "graph TD\n  A[Start] --> B[End]", diagram.RenderOptions{})

	assert.EqualValues(t, strings.Count(got, ">Start</text>"), 1, "Start appears exactly once")
	assert.EqualValues(t, strings.Count(got, ">End</text>"), 1, "End appears exactly once")
	assert.True(t, strings.Contains(got, `marker-end="url(#arrowhead)"`), "arrowhead marker")
	assert.True(t, strings.Contains(got, "--bg:#FFFFFF"), "default bg variable")
}

// Explicit colours lead the style attribute.
func TestScenarioThemeColours(t *testing.T) {
	got := render(t, "graph TD\n  A --> B", diagram.RenderOptions{Bg: "#18181B", Fg: "#FAFAFA"})
	assert.True(t, strings.Contains(got, `style="--bg:#18181B;--fg:#FAFAFA`), "user variables lead the style attribute")
}

// ER with crow's-foot markers.
func TestScenarioER(t *testing.T) {
	got := render(t, "erDiagram\n  CUSTOMER ||--o{ ORDER : places", diagram.RenderOptions{})

	assert.True(t, strings.Contains(got, ">CUSTOMER</text>"), "entity1 label")
	assert.True(t, strings.Contains(got, ">ORDER</text>"), "entity2 label")
	assert.True(t, strings.Contains(got, ">places</text>"), "relationship label")
	assert.True(t, strings.Contains(got, "<polyline"), "relationship polyline")
	assert.True(t, strings.Count(got, "<line ") >= 3, "divider plus crow's-foot lines")
}

// Composite state dedup.
func TestScenarioStateDiagram(t *testing.T) {
	src := "stateDiagram-v2\n  [*] --> Idle\n  Idle --> Processing : submit\n  state Processing { parse --> validate }\n  Processing --> Complete : done"
	got := render(t, src, diagram.RenderOptions{})

	assert.EqualValues(t, strings.Count(got, ">Processing</text>"), 1, "Processing occurs exactly once")
	assert.True(t, strings.Contains(got, ">parse</text>"), "interior state")
	assert.True(t, strings.Contains(got, ">submit</text>"), "transition label")
}

// Sequence with a note and dashed return.
func TestScenarioSequence(t *testing.T) {
	got := render(t, "sequenceDiagram\n  A->>B: Hello\n  Note right of B: Think\n  B-->>A: Hi", diagram.RenderOptions{})

	assert.True(t, strings.Contains(got, "stroke-dasharray"), "dashed strokes present")
	assert.True(t, strings.Contains(got, ">Think</text>"), "note text")
}

// Hexagon and cylinder recipes.
func TestScenarioShapes(t *testing.T) {
	got := render(t, "graph TD\n  A{{Decision}} --> B[(Database)]", diagram.RenderOptions{})

	assert.True(t, strings.Contains(got, "<polygon"), "hexagon polygon")
	assert.True(t, strings.Contains(got, "<ellipse"), "cylinder cap ellipse")
}

func TestDeterminismAcrossFamilies(t *testing.T) {
	sources := []string{
		"graph TD\nA[One] -->|go| B{Two}\nB -.-> C((Three))\nsubgraph S [Grp]\nC --> D\nend",
		"sequenceDiagram\nA->>B: hi\nB-->>A: yo\nNote over A,B: both",
		"classDiagram\nclass A {\n+int x\n+f() int\n}\nA <|-- B : extends",
		"erDiagram\nCUSTOMER ||--o{ ORDER : places",
	}
	for _, src := range sources {
		a := render(t, src, diagram.RenderOptions{})
		b := render(t, src, diagram.RenderOptions{})
		assert.EqualValues(t, a, b, "byte-identical output for %q", src)
	}
}

func TestWellFormedness(t *testing.T) {
	sources := []string{
		"graph TD\nA --> B",
		"sequenceDiagram\nA->>B: hi",
		"classDiagram\nA --> B",
		"erDiagram\nA ||--|| B : x",
		"",
	}
	for _, src := range sources {
		got := render(t, src, diagram.RenderOptions{})

		assert.True(t, strings.HasPrefix(got, "<svg "), "starts with <svg for %q", src)
		assert.True(t, strings.HasSuffix(got, "</svg>"), "ends with </svg> for %q", src)
		for _, tag := range []string{"rect", "polygon", "circle", "polyline", "text"} {
			opens := strings.Count(got, "<"+tag+" ")
			closes := strings.Count(got, "</"+tag+">")
			assert.True(t, opens >= closes, "balanced %s tags for %q", tag, src)
		}

		w := intAttr(t, got, "width")
		h := intAttr(t, got, "height")
		assert.True(t, w > 0, "positive width for %q", src)
		assert.True(t, h > 0, "positive height for %q", src)
	}
}

func TestEdgeStyleEncoding(t *testing.T) {
	dotted := render(t, "graph TD\nA -.-> B", diagram.RenderOptions{})
	assert.True(t, strings.Contains(dotted, `stroke-dasharray="4 4"`), "dotted dasharray")

	thick := render(t, "graph TD\nA ==> B", diagram.RenderOptions{})
	assert.True(t, strings.Contains(thick, `stroke-width="2.5"`), "thick stroke")

	open := render(t, "graph TD\nA --- B", diagram.RenderOptions{})
	assert.False(t, strings.Contains(open, "marker-end"), "no arrowhead on open link")
}

// The label anchor lies on the polyline and away
// from its endpoints.
func TestLabelOnPathInvariant(t *testing.T) {
	got := render(t, "graph TD\nA -->|route| B", diagram.RenderOptions{})

	route := firstPolyline(t, got)
	anchor := labelAnchor(t, got, ">route</text>")

	assert.True(t, gfx.DistancePointToPolyline(anchor, route) <= 2, "anchor within 2px of the polyline")
	assert.True(t, gfx.Distance(anchor, route[0]) >= 5, "anchor at least 5px from the start")
	assert.True(t, gfx.Distance(anchor, route[len(route)-1]) >= 5, "anchor at least 5px from the end")
}

// Distinct edge labels keep their anchors apart.
func TestPairwiseLabelSeparation(t *testing.T) {
	src := "graph TD\nA -->|one| C\nB -->|two| C\nA -->|three| D\nB -->|four| D"
	got := render(t, src, diagram.RenderOptions{})

	var anchors []gfx.Point
	for _, label := range []string{">one</text>", ">two</text>", ">three</text>", ">four</text>"} {
		anchors = append(anchors, labelAnchor(t, got, label))
	}
	for i := range anchors {
		for j := i + 1; j < len(anchors); j++ {
			assert.True(t, gfx.Distance(anchors[i], anchors[j]) >= 10,
				"labels %d and %d at least 10px apart", i, j)
		}
	}
}

func TestSelfLoopKeepsLabel(t *testing.T) {
	got := render(t, "graph TD\nA -->|again| A", diagram.RenderOptions{})
	assert.True(t, strings.Contains(got, "<polyline "), "self loop polyline")
	assert.True(t, strings.Contains(got, ">again</text>"), "self loop label")
}

func TestEmptySubgraphRenders(t *testing.T) {
	got := render(t, "graph TD\nsubgraph S [Hollow]\nend\nA --> S", diagram.RenderOptions{})
	assert.True(t, strings.Contains(got, ">Hollow</text>"), "frame label")
}

func TestFatalErrorsCarryKind(t *testing.T) {
	_, err := diagram.Render("graph TD\nsubgraph S\nsubgraph S\nend\nend", diagram.RenderOptions{})
	require.True(t, err != nil, "cyclic containment should fail")
	assert.True(t, diagramerr.As(err, diagramerr.ParseErrorKind), "error kind is ParseError")
	assert.True(t, strings.Contains(err.Error(), "ParseError"), "message carries the kind discriminator")
}

func TestRenderASCIIDispatch(t *testing.T) {
	out, err := diagram.RenderASCII("graph LR\nA --> B", diagram.AsciiOptions{})
	require.NoError(t, err, "RenderASCII")
	assert.True(t, strings.Contains(out, "A"), "node label present")

	_, err = diagram.RenderASCII("sequenceDiagram\nA->>B: hi", diagram.AsciiOptions{})
	assert.True(t, err != nil, "non-flow families are rejected")
}

func TestTextEscaping(t *testing.T) {
	got := render(t, `graph TD`+"\n"+`A[a < b & "c"] --> B`, diagram.RenderOptions{})

	assert.False(t, strings.Contains(got, `a < b`), "raw angle bracket must not survive")
	assert.True(t, strings.Contains(got, "a &lt; b &amp; &quot;c&quot;"), "entities used instead")
}

// intAttr extracts the first occurrence of an integer attribute from the
// <svg> root tag.
func intAttr(t *testing.T, svg, name string) int {
	t.Helper()
	root := svg[:strings.Index(svg, ">")]
	marker := name + `="`
	i := strings.Index(root, marker)
	require.True(t, i >= 0, "attribute %s present", name)
	rest := root[i+len(marker):]
	v, err := strconv.Atoi(rest[:strings.Index(rest, `"`)])
	require.NoError(t, err, "attribute %s is an integer", name)
	return v
}

// firstPolyline parses the points of the first <polyline> in the output.
func firstPolyline(t *testing.T, svg string) gfx.Polyline {
	t.Helper()
	i := strings.Index(svg, `<polyline points="`)
	require.True(t, i >= 0, "a polyline is present")
	rest := svg[i+len(`<polyline points="`):]
	raw := rest[:strings.Index(rest, `"`)]

	var route gfx.Polyline
	for _, pair := range strings.Fields(raw) {
		parts := strings.Split(pair, ",")
		require.EqualValues(t, len(parts), 2, "point format")
		x, err := strconv.ParseFloat(parts[0], 64)
		require.NoError(t, err, "x coordinate")
		y, err := strconv.ParseFloat(parts[1], 64)
		require.NoError(t, err, "y coordinate")
		route = append(route, gfx.Point{X: x, Y: y})
	}
	return route
}

// labelAnchor finds the (x, y) of the <text> element ending with the
// given suffix.
func labelAnchor(t *testing.T, svg, labelSuffix string) gfx.Point {
	t.Helper()
	end := strings.Index(svg, labelSuffix)
	require.True(t, end >= 0, "label %q present", labelSuffix)
	start := strings.LastIndex(svg[:end], "<text ")
	require.True(t, start >= 0, "text element for %q", labelSuffix)
	tag := svg[start:end]

	x := floatAttr(t, tag, "x")
	y := floatAttr(t, tag, "y")
	return gfx.Point{X: x, Y: y}
}

func floatAttr(t *testing.T, tag, name string) float64 {
	t.Helper()
	marker := name + `="`
	i := strings.Index(tag, marker)
	require.True(t, i >= 0, "attribute %s present", name)
	rest := tag[i+len(marker):]
	v, err := strconv.ParseFloat(rest[:strings.Index(rest, `"`)], 64)
	require.NoError(t, err, "attribute %s parses", name)
	return v
}

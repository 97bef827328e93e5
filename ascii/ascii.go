// Package ascii renders a parsed flow graph onto a plain-text character
// canvas: grid-packed boxes, Manhattan-routed edges, bundled fan-in and
// fan-out runs, and a diagonal-free output guarantee.
package ascii

import (
	"github.com/inkboard/diagram/diagramerr"
	"github.com/inkboard/diagram/flow"
	"github.com/inkboard/diagram/layout"
)

// Options configures the ASCII renderer.
type Options struct {
	UseASCII         bool // ASCII charset instead of Unicode box drawing
	PaddingX         int
	PaddingY         int
	BoxBorderPadding int
	Direction        layout.Direction
}

func (o Options) withDefaults() Options {
	if o.PaddingX == 0 {
		o.PaddingX = 5
	}
	if o.PaddingY == 0 {
		o.PaddingY = 5
	}
	if o.BoxBorderPadding == 0 {
		o.BoxBorderPadding = 1
	}
	return o
}

// Render draws g as a character canvas and validates the diagonal-free
// invariant before returning. A detected diagonal outside a node label
// is an internal invariant violation and fails the render.
func Render(g *flow.Graph, opts Options) (string, error) {
	opts = opts.withDefaults()
	// The source's own direction keyword applies unless the caller
	// explicitly overrode it with a horizontal direction.
	dir := opts.Direction
	if dir == layout.TB {
		dir = layout.DirectionFromString(g.Direction)
	}
	opts.Direction = dir

	gr := buildGrid(g, opts)
	c := newCanvas(gr.w, gr.h, opts.UseASCII)

	var labelSpans []Span
	for _, id := range g.NodeOrder {
		b := gr.boxes[id]
		labelSpans = append(labelSpans, c.drawBox(b.x, b.y, b.w, b.h, g.Nodes[id].Label))
	}

	blocked := func(x, y int) bool {
		for _, b := range gr.boxes {
			if b.contains(x, y) {
				return true
			}
		}
		return false
	}
	// Attachment cells are reserved: an edge may only pass through its
	// own endpoints' cells, so transit routes bend one cell early and
	// bundle junctions stay visible next to the arrowhead.
	attach := map[point]bool{}
	for _, b := range gr.boxes {
		attach[b.midLeft()] = true
		attach[b.midRight()] = true
		attach[b.midTop()] = true
		attach[b.midBottom()] = true
	}

	leftToRight := opts.Direction == layout.LR || opts.Direction == layout.RL
	for _, e := range g.Edges {
		drawEdge(c, gr, e, blocked, attach, leftToRight)
	}

	out := c.String()
	if violations := CheckDiagonalFree(out, labelSpans); len(violations) > 0 {
		v := violations[0]
		return "", diagramerr.Invariant("diagonal glyph %q at line %d col %d", v.Char, v.Line, v.Col)
	}
	return out, nil
}

func strokeFor(style flow.EdgeStyle) Stroke {
	switch style {
	case flow.EdgeDotted:
		return StrokeDotted
	case flow.EdgeThick:
		return StrokeThick
	default:
		return StrokeSolid
	}
}

// drawEdge routes one edge and stamps its arrowheads. Edges sharing an
// endpoint start (or end) at the same attachment cell one step outside
// the node border — the bundle junction — so their shared run is drawn
// once and the split resolves to a T-junction glyph.
func drawEdge(c *canvas, gr *grid, e flow.Edge, blocked func(x, y int) bool, attach map[point]bool, leftToRight bool) {
	sb, ok1 := gr.boxes[e.Source]
	tb, ok2 := gr.boxes[e.Target]
	if !ok1 || !ok2 {
		return
	}
	stroke := strokeFor(e.Style)

	if e.Source == e.Target {
		drawSelfLoop(c, sb, stroke, e.HasArrowEnd)
		return
	}

	// Edges between layers attach along the layer axis (columns for LR/RL,
	// rows otherwise), so every edge leaving one node by layer uses the
	// same attachment cell.
	byCol := tb.col != sb.col && (leftToRight || tb.row == sb.row)
	var start, goal point
	var startSide, goalSide side
	switch {
	case byCol && tb.col > sb.col:
		start, startSide = sb.midRight(), sideRight
		goal, goalSide = tb.midLeft(), sideLeft
	case byCol:
		start, startSide = sb.midLeft(), sideLeft
		goal, goalSide = tb.midRight(), sideRight
	case tb.row > sb.row:
		start, startSide = sb.midBottom(), sideBottom
		goal, goalSide = tb.midTop(), sideTop
	default:
		start, startSide = sb.midTop(), sideTop
		goal, goalSide = tb.midBottom(), sideBottom
	}

	blockedForEdge := func(x, y int) bool {
		p := point{x, y}
		if attach[p] && p != start && p != goal {
			return true
		}
		return blocked(x, y)
	}
	path := routeManhattan(start, goal, c.w, c.h, outwardDir(startSide), blockedForEdge)
	if path == nil {
		return
	}
	c.connectPath(path, stroke)

	if e.HasArrowEnd {
		c.setChar(goal.x, goal.y, arrowInto(goalSide, c.ascii))
	}
	if e.HasArrowStart {
		c.setChar(start.x, start.y, arrowInto(startSide, c.ascii))
	}
}

// drawSelfLoop renders A --> A as a right-and-under loop back into the
// box's bottom border.
func drawSelfLoop(c *canvas, b *placedBox, stroke Stroke, arrow bool) {
	ym := b.y + b.h/2
	below := b.y + b.h
	xm := b.x + b.w/2
	path := []point{
		{b.x + b.w, ym},
		{b.x + b.w + 2, ym},
		{b.x + b.w + 2, below},
		{xm, below},
	}
	c.connectPath(path, stroke)
	if arrow {
		c.setChar(xm, below, arrowInto(sideBottom, c.ascii))
	}
}

// side names which box border an attachment cell sits against.
type side int

const (
	sideLeft side = iota
	sideRight
	sideTop
	sideBottom
)

// outwardDir maps an attachment side to the router's direction index
// pointing away from the box.
func outwardDir(s side) int {
	switch s {
	case sideRight:
		return 0
	case sideLeft:
		return 1
	case sideBottom:
		return 2
	default:
		return 3
	}
}

// arrowInto returns the arrowhead glyph pointing into a box across the
// given border side.
func arrowInto(s side, ascii bool) rune {
	if ascii {
		switch s {
		case sideLeft:
			return '>'
		case sideRight:
			return '<'
		case sideTop:
			return 'v'
		default:
			return '^'
		}
	}
	switch s {
	case sideLeft:
		return '►'
	case sideRight:
		return '◄'
	case sideTop:
		return '▼'
	default:
		return '▲'
	}
}

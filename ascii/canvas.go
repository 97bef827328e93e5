package ascii

import "strings"

// Stroke is the per-edge character treatment.
type Stroke int

const (
	StrokeSolid Stroke = iota
	StrokeDotted
	StrokeThick
)

// Connection-direction bits for a routed cell. The glyph for a cell is
// resolved from the union of every segment that passed through it, which
// is what turns two edges sharing a run into a single drawn bundle with
// T-junction glyphs where they split.
const (
	connUp = 1 << iota
	connDown
	connLeft
	connRight
)

// cell is one character position. An explicit char (box border, label
// text, arrowhead) wins over the connection mask.
type cell struct {
	char   rune
	mask   uint8
	stroke Stroke
}

// canvas is the column-major character grid, indexed canvas[x][y].
type canvas struct {
	cells [][]cell
	w, h  int
	ascii bool
}

func newCanvas(w, h int, useASCII bool) *canvas {
	cells := make([][]cell, w)
	for x := range cells {
		cells[x] = make([]cell, h)
	}
	return &canvas{cells: cells, w: w, h: h, ascii: useASCII}
}

func (c *canvas) in(x, y int) bool {
	return x >= 0 && x < c.w && y >= 0 && y < c.h
}

// setChar places an explicit glyph, overriding any connection mask.
func (c *canvas) setChar(x, y int, r rune) {
	if c.in(x, y) {
		c.cells[x][y].char = r
	}
}

// connect adds direction bits to a routed cell.
func (c *canvas) connect(x, y int, mask uint8, stroke Stroke) {
	if !c.in(x, y) {
		return
	}
	c.cells[x][y].mask |= mask
	c.cells[x][y].stroke = stroke
}

// connectPath marks every cell along a path of axis-aligned waypoints,
// adding the direction bits each step implies. Long segments are walked
// cell by cell. Overlapping paths union their bits, which is how shared
// bundle runs and junction glyphs fall out of plain drawing.
func (c *canvas) connectPath(path []point, stroke Stroke) {
	for i := 1; i < len(path); i++ {
		a, b := path[i-1], path[i]
		dx, dy := sign(b.x-a.x), sign(b.y-a.y)
		if dx != 0 && dy != 0 {
			continue // not axis-aligned: refuse rather than draw a diagonal
		}
		for cur := a; cur != b; {
			next := point{cur.x + dx, cur.y + dy}
			c.connect(cur.x, cur.y, dirBit(dx, dy), stroke)
			c.connect(next.x, next.y, dirBit(-dx, -dy), stroke)
			cur = next
		}
	}
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

func dirBit(dx, dy int) uint8 {
	switch {
	case dx > 0:
		return connRight
	case dx < 0:
		return connLeft
	case dy > 0:
		return connDown
	default:
		return connUp
	}
}

// glyphFor resolves a connection mask to a drawing character. Every
// resolvable glyph is axis-aligned: the diagonal-free invariant holds by
// construction because no mask maps to a slanted character.
func (c *canvas) glyphFor(mask uint8, stroke Stroke) rune {
	if c.ascii {
		switch mask {
		case connLeft | connRight:
			return strokeHChar(stroke, true)
		case connUp | connDown:
			return strokeVChar(stroke, true)
		case 0:
			return ' '
		default:
			return '+'
		}
	}

	switch mask {
	case connLeft | connRight:
		return strokeHChar(stroke, false)
	case connUp | connDown:
		return strokeVChar(stroke, false)
	case connUp | connRight:
		return '└'
	case connUp | connLeft:
		return '┘'
	case connDown | connRight:
		return '┌'
	case connDown | connLeft:
		return '┐'
	case connUp | connDown | connRight:
		return '├'
	case connUp | connDown | connLeft:
		return '┤'
	case connLeft | connRight | connDown:
		return '┬'
	case connLeft | connRight | connUp:
		return '┴'
	case connUp | connDown | connLeft | connRight:
		return '┼'
	case connUp:
		return strokeVChar(stroke, false)
	case connDown:
		return strokeVChar(stroke, false)
	case connLeft:
		return strokeHChar(stroke, false)
	case connRight:
		return strokeHChar(stroke, false)
	default:
		return ' '
	}
}

func strokeHChar(s Stroke, ascii bool) rune {
	switch s {
	case StrokeDotted:
		return '·'
	case StrokeThick:
		if ascii {
			return '='
		}
		return '═'
	default:
		if ascii {
			return '-'
		}
		return '─'
	}
}

func strokeVChar(s Stroke, ascii bool) rune {
	switch s {
	case StrokeDotted:
		return ':'
	case StrokeThick:
		if ascii {
			return '|'
		}
		return '║'
	default:
		if ascii {
			return '|'
		}
		return '│'
	}
}

// drawBox draws a node's border and centred label. The interior span of
// the label is reported back so the diagonal validator can exclude it.
func (c *canvas) drawBox(x, y, w, h int, label string) Span {
	tl, tr, bl, br, hc, vc := '┌', '┐', '└', '┘', '─', '│'
	if c.ascii {
		tl, tr, bl, br, hc, vc = '+', '+', '+', '+', '-', '|'
	}

	c.setChar(x, y, tl)
	c.setChar(x+w-1, y, tr)
	c.setChar(x, y+h-1, bl)
	c.setChar(x+w-1, y+h-1, br)
	for i := 1; i < w-1; i++ {
		c.setChar(x+i, y, hc)
		c.setChar(x+i, y+h-1, hc)
	}
	for j := 1; j < h-1; j++ {
		c.setChar(x, y+j, vc)
		c.setChar(x+w-1, y+j, vc)
	}

	labelY := y + h/2
	labelX := x + (w-len(label))/2
	for i, r := range label {
		c.setChar(labelX+i, labelY, r)
	}
	return Span{X: x + 1, Y: y + 1, W: w - 2, H: h - 2}
}

// String renders the finished grid, trimming trailing blanks per line.
func (c *canvas) String() string {
	var b strings.Builder
	for y := 0; y < c.h; y++ {
		line := make([]rune, c.w)
		for x := 0; x < c.w; x++ {
			cl := c.cells[x][y]
			switch {
			case cl.char != 0:
				line[x] = cl.char
			case cl.mask != 0:
				line[x] = c.glyphFor(cl.mask, cl.stroke)
			default:
				line[x] = ' '
			}
		}
		b.WriteString(strings.TrimRight(string(line), " "))
		b.WriteByte('\n')
	}
	return b.String()
}

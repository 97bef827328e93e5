package ascii

import (
	"github.com/inkboard/diagram/flow"
	"github.com/inkboard/diagram/layout"
)

// placedBox is a node's character-grid rectangle.
type placedBox struct {
	id         string
	x, y, w, h int
	col, row   int
}

// grid is the packed character layout: every node box positioned, plus
// the overall canvas extent.
type grid struct {
	boxes map[string]*placedBox
	w, h  int
}

// buildGrid assigns every node a logical (column, row) by topological
// layering and packs columns/rows to the largest box in each.
func buildGrid(g *flow.Graph, opts Options) *grid {
	edgeSpecs := make([]layout.EdgeSpec, 0, len(g.Edges))
	for _, e := range g.Edges {
		edgeSpecs = append(edgeSpecs, layout.EdgeSpec{From: e.Source, To: e.Target})
	}
	byLayer := layout.Layering(g.NodeOrder, edgeSpecs)

	gr := &grid{boxes: map[string]*placedBox{}}

	leftToRight := opts.Direction == layout.LR || opts.Direction == layout.RL
	var nCols, nRows int
	for l, layer := range byLayer {
		for i, id := range layer {
			b := &placedBox{id: id}
			if leftToRight {
				b.col, b.row = l, i
			} else {
				b.col, b.row = i, l
			}
			b.w, b.h = boxSize(g.Nodes[id], opts)
			gr.boxes[id] = b
			if b.col+1 > nCols {
				nCols = b.col + 1
			}
			if b.row+1 > nRows {
				nRows = b.row + 1
			}
		}
	}

	colWidth := make([]int, nCols)
	rowHeight := make([]int, nRows)
	for _, b := range gr.boxes {
		if b.w > colWidth[b.col] {
			colWidth[b.col] = b.w
		}
		if b.h > rowHeight[b.row] {
			rowHeight[b.row] = b.h
		}
	}

	xOff := make([]int, nCols)
	x := opts.PaddingX
	for c := 0; c < nCols; c++ {
		xOff[c] = x
		x += colWidth[c] + opts.PaddingX
	}
	yOff := make([]int, nRows)
	y := opts.PaddingY
	for r := 0; r < nRows; r++ {
		yOff[r] = y
		y += rowHeight[r] + opts.PaddingY
	}

	for _, b := range gr.boxes {
		b.x = xOff[b.col] + (colWidth[b.col]-b.w)/2
		b.y = yOff[b.row] + (rowHeight[b.row]-b.h)/2
	}

	gr.w = x
	gr.h = y
	if gr.w < 1 {
		gr.w = 1
	}
	if gr.h < 1 {
		gr.h = 1
	}
	return gr
}

// boxSize computes a node's character box: label plus border padding on
// each side plus the border itself.
func boxSize(n *flow.Node, opts Options) (w, h int) {
	w = len([]rune(n.Label)) + 2*opts.BoxBorderPadding + 2
	h = 3 + 2*(opts.BoxBorderPadding-1)
	if h < 3 {
		h = 3
	}
	return w, h
}

// midRight, midLeft, midTop, midBottom are the attachment cells just
// outside a box border.
func (b *placedBox) midRight() point  { return point{b.x + b.w, b.y + b.h/2} }
func (b *placedBox) midLeft() point   { return point{b.x - 1, b.y + b.h/2} }
func (b *placedBox) midTop() point    { return point{b.x + b.w/2, b.y - 1} }
func (b *placedBox) midBottom() point { return point{b.x + b.w/2, b.y + b.h} }

// contains reports whether a cell lies inside the box, border included.
func (b *placedBox) contains(x, y int) bool {
	return x >= b.x && x < b.x+b.w && y >= b.y && y < b.y+b.h
}

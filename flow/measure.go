package flow

import (
	"github.com/inkboard/diagram/internal/metrics"
	"github.com/inkboard/diagram/layout"
)

const (
	fontSize   = 14
	lineHeight = 20
	padX       = 14
	padY       = 10
	minWidth   = 40
	minHeight  = 36

	// statePointRadius is the radius of a [*] pseudostate dot.
	statePointRadius = 7
)

// measureNode sizes one node box before layout: boxes are always
// sized from measured label widths, never after placement.
func measureNode(n *Node) layout.NodeSpec {
	if n.Shape == ShapeStatePoint {
		return layout.NodeSpec{ID: n.ID, Width: 2 * statePointRadius, Height: 2 * statePointRadius}
	}

	labelW, labelH := metrics.MeasureLines(n.Label, fontSize, lineHeight, false)
	w := labelW + 2*padX
	h := labelH + 2*padY
	if w < minWidth {
		w = minWidth
	}
	if h < minHeight {
		h = minHeight
	}

	switch n.Shape {
	case ShapeDiamond:
		// A diamond's usable interior is half its bounding box, so the box
		// grows to keep the label inside the rhombus.
		w = labelW*1.8 + 2*padX
		h = labelH + 4*padY
	case ShapeHexagon:
		w += h // room for the two pointed ends
	case ShapeCircle, ShapeDoubleCircle:
		d := w
		if h > d {
			d = h
		}
		if n.Shape == ShapeDoubleCircle {
			d += 8
		}
		w, h = d, d
	case ShapeCylinder:
		h += 16 // top and bottom cap ellipses
	case ShapeTrapezoid, ShapeTrapezoidAlt:
		w += 24 // slanted sides eat into the interior
	case ShapeAsymmetric:
		w += 10
	}

	return layout.NodeSpec{ID: n.ID, Width: w, Height: h}
}

// measureEdgeLabel reports an edge label's box so the solver can reserve
// space for it.
func measureEdgeLabel(e Edge) (w, h float64) {
	if e.Label == "" {
		return 0, 0
	}
	lw, lh := metrics.MeasureLines(e.Label, fontSize-2, lineHeight-4, false)
	return lw + 8, lh + 6
}

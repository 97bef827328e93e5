// Package layout implements the layered-graph solver shared by the flow,
// class, and ER families (and, via composite states, the state-diagram
// flavour of flow): assign a topological layer to every node, order nodes
// within a layer to reduce edge crossings, and route edges orthogonally
// with bends at layer boundaries. Solve runs as three internal stages —
// layer, order, place — each reading only the previous stage's output.
package layout

import (
	"sort"

	"github.com/inkboard/diagram/internal/gfx"
)

// Direction is the layer-growth direction of a diagram.
type Direction int

const (
	TB Direction = iota
	BT
	LR
	RL
)

// DirectionFromString maps the flowchart direction keywords to a
// Direction, defaulting to TB for an empty or unrecognised string.
func DirectionFromString(s string) Direction {
	switch s {
	case "TD", "TB":
		return TB
	case "BT":
		return BT
	case "LR":
		return LR
	case "RL":
		return RL
	default:
		return TB
	}
}

// NodeSpec is a box to be placed, sized before layout by the text-metrics
// component.
type NodeSpec struct {
	ID            string
	Width, Height float64
}

// EdgeSpec is a connection to be routed between two node IDs. LabelWidth
// and LabelHeight let the solver reserve space for the label even though
// the concrete anchor is computed by the renderer's arc-length fallback.
type EdgeSpec struct {
	From, To                string
	LabelWidth, LabelHeight float64
}

// Options configures spacing. Zero fields fall back to flowchart-style
// defaults; the class and ER callers pass their own wider values.
type Options struct {
	Direction    Direction
	Padding      float64
	NodeSpacing  float64
	LayerSpacing float64
}

// PositionedNode is a NodeSpec with an assigned top-left coordinate.
type PositionedNode struct {
	ID            string
	X, Y          float64
	Width, Height float64
}

func (n PositionedNode) Rect() gfx.Rect {
	return gfx.Rect{X: n.X, Y: n.Y, W: n.Width, H: n.Height}
}

// PositionedEdge is an EdgeSpec with a routed polyline attached to its
// endpoints' box perimeters (the attachment-discipline invariant).
type PositionedEdge struct {
	From, To string
	Route    gfx.Polyline
}

// Result is the full solved layout: every node's position and every
// edge's route, plus the overall canvas size including padding.
type Result struct {
	Nodes  map[string]PositionedNode
	Edges  []PositionedEdge
	Width  float64
	Height float64
}

// Solve assigns layers, orders nodes within a layer, places coordinates,
// and routes edges orthogonally. Disconnected nodes are placed in layer 0
// (or wherever their own longest path from a source would put them).
func Solve(nodes []NodeSpec, edges []EdgeSpec, opts Options) Result {
	if opts.NodeSpacing == 0 {
		opts.NodeSpacing = 24
	}
	if opts.LayerSpacing == 0 {
		opts.LayerSpacing = 40
	}
	if opts.Padding == 0 {
		opts.Padding = 40
	}

	byID := make(map[string]NodeSpec, len(nodes))
	order := make([]string, 0, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
		order = append(order, n.ID)
	}

	adj, radj := buildAdjacency(order, edges)
	layers := assignLayers(order, adj, radj)
	layerOf := map[string]int{}
	maxLayer := 0
	for id, l := range layers {
		layerOf[id] = l
		if l > maxLayer {
			maxLayer = l
		}
	}

	ordered := orderWithinLayers(order, layerOf, maxLayer, adj, radj)

	return place(byID, ordered, layerOf, edges, opts)
}

// Layering exposes the layer-assignment and crossing-reduction stages on
// their own, for engines that place nodes on an integer grid instead of
// continuous coordinates (the ASCII renderer's grid packer).
func Layering(order []string, edges []EdgeSpec) [][]string {
	adj, radj := buildAdjacency(order, edges)
	layers := assignLayers(order, adj, radj)
	layerOf := map[string]int{}
	maxLayer := 0
	for id, l := range layers {
		layerOf[id] = l
		if l > maxLayer {
			maxLayer = l
		}
	}
	return orderWithinLayers(order, layerOf, maxLayer, adj, radj)
}

func buildAdjacency(order []string, edges []EdgeSpec) (adj, radj map[string][]string) {
	adj = make(map[string][]string, len(order))
	radj = make(map[string][]string, len(order))
	for _, id := range order {
		adj[id] = nil
		radj[id] = nil
	}
	for _, e := range edges {
		if _, ok := adj[e.From]; !ok {
			continue
		}
		if _, ok := adj[e.To]; !ok {
			continue
		}
		adj[e.From] = append(adj[e.From], e.To)
		radj[e.To] = append(radj[e.To], e.From)
	}
	return adj, radj
}

// assignLayers computes the longest path from any source (a node with no
// incoming edge) to each node, breaking cycles by skipping back edges
// discovered via DFS colour marks so a cyclic flowchart still lays out
// instead of looping forever.
func assignLayers(order []string, adj, radj map[string][]string) map[string]int {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(order))
	layer := make(map[string]int, len(order))
	back := map[[2]string]bool{}
	for _, id := range order {
		color[id] = white
	}

	var visit func(id string)
	visit = func(id string) {
		color[id] = gray
		for _, next := range adj[id] {
			if color[next] == gray {
				back[[2]string{id, next}] = true
				continue // back edge: breaks the cycle for layering purposes
			}
			if color[next] == white {
				visit(next)
			}
			if layer[next] <= layer[id] {
				layer[next] = layer[id] + 1
			}
		}
		color[id] = black
	}

	// Visit sources (no incoming edges) first for a stable, intuitive
	// top-down layering, then sweep any remaining (cyclic-only) nodes.
	for _, id := range order {
		if len(radj[id]) == 0 {
			visit(id)
		}
	}
	for _, id := range order {
		if color[id] == white {
			visit(id)
		}
	}

	// Propagate again: visiting sources first can under-count a node
	// reached by multiple paths of different lengths.
	changed := true
	for pass := 0; changed && pass < len(order)+1; pass++ {
		changed = false
		for _, id := range order {
			for _, next := range adj[id] {
				if back[[2]string{id, next}] {
					continue
				}
				if layer[next] < layer[id]+1 {
					layer[next] = layer[id] + 1
					changed = true
				}
			}
		}
	}

	return layer
}

// orderWithinLayers assigns an intra-layer index to every node using a
// barycenter heuristic over a few passes to reduce edge crossings.
func orderWithinLayers(order []string, layerOf map[string]int, maxLayer int, adj, radj map[string][]string) [][]string {
	byLayer := make([][]string, maxLayer+1)
	for _, id := range order {
		l := layerOf[id]
		byLayer[l] = append(byLayer[l], id)
	}

	pos := map[string]int{}
	reindex := func() {
		for _, layer := range byLayer {
			for i, id := range layer {
				pos[id] = i
			}
		}
	}
	reindex()

	barycenter := func(id string, neighbors []string) float64 {
		if len(neighbors) == 0 {
			return float64(pos[id])
		}
		var sum float64
		for _, n := range neighbors {
			sum += float64(pos[n])
		}
		return sum / float64(len(neighbors))
	}

	const passes = 4
	for pass := 0; pass < passes; pass++ {
		downward := pass%2 == 0
		for l := 0; l <= maxLayer; l++ {
			layer := l
			if !downward {
				layer = maxLayer - l
			}
			nodes := byLayer[layer]
			if len(nodes) < 2 {
				continue
			}
			// order by the already-fixed adjacent layer: parents when
			// sweeping down, children when sweeping back up.
			neighbors := radj
			if !downward {
				neighbors = adj
			}
			type scored struct {
				id    string
				score float64
			}
			scoredNodes := make([]scored, len(nodes))
			for i, id := range nodes {
				scoredNodes[i] = scored{id: id, score: barycenter(id, neighbors[id])}
			}
			sort.SliceStable(scoredNodes, func(i, j int) bool {
				return scoredNodes[i].score < scoredNodes[j].score
			})
			for i, s := range scoredNodes {
				byLayer[layer][i] = s.id
			}
			reindex()
		}
	}

	return byLayer
}

func place(byID map[string]NodeSpec, byLayer [][]string, layerOf map[string]int, edges []EdgeSpec, opts Options) Result {
	result := Result{Nodes: make(map[string]PositionedNode, len(byID))}

	// crossAxisOffset[layer] gives the perpendicular-axis start for each
	// layer's nodes; layerAxisOffset[layer] gives the along-axis start.
	layerAxisOffset := make([]float64, len(byLayer))
	var layerAxisCursor float64
	maxCross := 0.0

	for l, layer := range byLayer {
		layerAxisOffset[l] = layerAxisCursor
		var crossCursor float64
		var layerThickness float64
		for _, id := range layer {
			n := byID[id]
			along, cross := dims(n, opts.Direction)
			x, y := assignCoords(layerAxisCursor, crossCursor, along, cross, opts.Direction)
			result.Nodes[id] = PositionedNode{ID: id, X: x, Y: y, Width: n.Width, Height: n.Height}
			crossCursor += cross + opts.NodeSpacing
			if along > layerThickness {
				layerThickness = along
			}
		}
		if crossCursor > maxCross {
			maxCross = crossCursor
		}
		layerAxisCursor += layerThickness + opts.LayerSpacing
	}

	// Translate everything by the outer padding.
	for id, n := range result.Nodes {
		n.X += opts.Padding
		n.Y += opts.Padding
		result.Nodes[id] = n
	}

	width, height := canvasSize(result.Nodes, opts)
	result.Width = width
	result.Height = height

	result.Edges = routeEdges(result.Nodes, edges, layerOf, opts)

	return result
}

// dims returns a node's (along-layer-axis, across-layer-axis) extents for
// the given growth direction.
func dims(n NodeSpec, dir Direction) (along, cross float64) {
	switch dir {
	case LR, RL:
		return n.Width, n.Height
	default:
		return n.Height, n.Width
	}
}

func assignCoords(layerCursor, crossCursor, along, cross float64, dir Direction) (x, y float64) {
	switch dir {
	case LR:
		return layerCursor, crossCursor
	case RL:
		return layerCursor, crossCursor
	case BT:
		return crossCursor, layerCursor
	default: // TB
		return crossCursor, layerCursor
	}
}

func canvasSize(nodes map[string]PositionedNode, opts Options) (w, h float64) {
	var maxX, maxY float64
	for _, n := range nodes {
		if n.X+n.Width > maxX {
			maxX = n.X + n.Width
		}
		if n.Y+n.Height > maxY {
			maxY = n.Y + n.Height
		}
	}
	return maxX + opts.Padding, maxY + opts.Padding
}

// routeEdges computes an orthogonal polyline between each edge's source
// and target boxes, attaching the first/last point to the box perimeter
// (attachment-discipline invariant #1) and, when the endpoints are not
// aligned, crossing over once at the midpoint between the two boxes along
// the layer axis, which takes two bends (invariant #2: axis-aligned
// segments).
func routeEdges(nodes map[string]PositionedNode, edges []EdgeSpec, layerOf map[string]int, opts Options) []PositionedEdge {
	result := make([]PositionedEdge, 0, len(edges))
	for _, e := range edges {
		from, ok1 := nodes[e.From]
		to, ok2 := nodes[e.To]
		if !ok1 || !ok2 {
			continue
		}
		route := routeBetween(from, to, opts.Direction)
		result = append(result, PositionedEdge{From: e.From, To: e.To, Route: route})
	}
	return result
}

func routeBetween(from, to PositionedNode, dir Direction) gfx.Polyline {
	fr, tr := from.Rect(), to.Rect()

	switch dir {
	case LR, RL:
		start := gfx.Point{X: fr.Right(), Y: fr.CenterY()}
		end := gfx.Point{X: tr.X, Y: tr.CenterY()}
		if tr.X < fr.X {
			start = gfx.Point{X: fr.X, Y: fr.CenterY()}
			end = gfx.Point{X: tr.Right(), Y: tr.CenterY()}
		}
		if start.Y == end.Y {
			return gfx.Polyline{start, end}
		}
		midX := (start.X + end.X) / 2
		return gfx.Polyline{start, {X: midX, Y: start.Y}, {X: midX, Y: end.Y}, end}
	default: // TB, BT
		start := gfx.Point{X: fr.CenterX(), Y: fr.Bottom()}
		end := gfx.Point{X: tr.CenterX(), Y: tr.Y}
		if tr.Y < fr.Y {
			start = gfx.Point{X: fr.CenterX(), Y: fr.Y}
			end = gfx.Point{X: tr.CenterX(), Y: tr.Bottom()}
		}
		if start.X == end.X {
			return gfx.Polyline{start, end}
		}
		midY := (start.Y + end.Y) / 2
		return gfx.Polyline{start, {X: start.X, Y: midY}, {X: end.X, Y: midY}, end}
	}
}

// ContainingRect computes a compound-node bounding rectangle that fully
// contains every child rectangle plus a header band, per invariant #5.
func ContainingRect(children []gfx.Rect, headerBand, padding float64) gfx.Rect {
	if len(children) == 0 {
		return gfx.Rect{W: 2 * padding, H: headerBand + 2*padding}
	}
	r := children[0]
	for _, c := range children[1:] {
		r = r.Union(c)
	}
	return gfx.Rect{
		X: r.X - padding,
		Y: r.Y - padding - headerBand,
		W: r.W + 2*padding,
		H: r.H + 2*padding + headerBand,
	}
}

package flow

import (
	"sort"
	"strings"

	"github.com/inkboard/diagram/diagramerr"
	"github.com/inkboard/diagram/internal/gfx"
	"github.com/inkboard/diagram/internal/metrics"
	"github.com/inkboard/diagram/internal/svg"
	"github.com/inkboard/diagram/layout"
	"github.com/inkboard/diagram/theme"
)

// Options configures the flow renderer.
type Options struct {
	Colors       theme.Colors
	Font         string
	Padding      float64
	NodeSpacing  float64
	LayerSpacing float64
	Transparent  bool
}

const (
	subgraphHeader  = 28
	subgraphPadding = 14
	selfLoopWidth   = 28
	selfLoopHeight  = 14
)

const markerDefs = `<marker id="arrowhead" viewBox="0 0 10 10" refX="9" refY="5" markerWidth="7" markerHeight="7" orient="auto"><path d="M0,0 L10,5 L0,10 z" fill="var(--_arrow)"/></marker>` +
	`<marker id="arrowhead-start" viewBox="0 0 10 10" refX="1" refY="5" markerWidth="7" markerHeight="7" orient="auto"><path d="M10,0 L0,5 L10,10 z" fill="var(--_arrow)"/></marker>`

// Render lays out and emits a parsed flow graph as a complete SVG
// document in a fixed back-to-front order.
func Render(g *Graph, opts Options) (string, error) {
	frames := collectSubgraphs(g.Subgraphs)

	// A node materialised only because an edge referenced a subgraph id is
	// a frame placeholder: the frame absorbs it so the label renders once
	// (the composite-state dedup contract) and edges attach to the frame's
	// perimeter instead of a phantom box.
	hidden := map[string]bool{}
	redirect := map[string]string{}
	for id, sg := range frames {
		if _, ok := g.Nodes[id]; !ok {
			continue
		}
		if rep, ok := representative(sg, g, frames); ok {
			hidden[id] = true
			redirect[id] = rep
		} else {
			// Empty subgraph: the placeholder stays in the layout as an
			// invisible box the frame wraps around.
			hidden[id] = true
		}
	}

	specs := make([]layout.NodeSpec, 0, len(g.NodeOrder))
	for _, id := range g.NodeOrder {
		if redirect[id] != "" {
			continue
		}
		specs = append(specs, measureNode(g.Nodes[id]))
	}
	// Placeholders for empty subgraphs that no edge ever referenced, so
	// the solver still reserves canvas space for their frames.
	frameIDs := make([]string, 0, len(frames))
	for id := range frames {
		frameIDs = append(frameIDs, id)
	}
	sort.Strings(frameIDs)
	for _, id := range frameIDs {
		sg := frames[id]
		if _, hasNode := g.Nodes[id]; hasNode {
			continue
		}
		if _, ok := representative(sg, g, frames); ok {
			continue
		}
		w, _ := metrics.MeasureLines(sg.Label, fontSize, lineHeight, false)
		specs = append(specs, layout.NodeSpec{ID: id, Width: w + 4*padX, Height: minHeight})
		hidden[id] = true
	}

	edgeSpecs := make([]layout.EdgeSpec, len(g.Edges))
	for i, e := range g.Edges {
		lw, lh := measureEdgeLabel(e)
		edgeSpecs[i] = layout.EdgeSpec{
			From:       resolveRedirect(e.Source, redirect),
			To:         resolveRedirect(e.Target, redirect),
			LabelWidth: lw, LabelHeight: lh,
		}
	}

	solved := layout.Solve(specs, edgeSpecs, layout.Options{
		Direction:    layout.DirectionFromString(g.Direction),
		Padding:      opts.Padding,
		NodeSpacing:  opts.NodeSpacing,
		LayerSpacing: opts.LayerSpacing,
	})
	for _, n := range solved.Nodes {
		if n.Width < 0 || n.Height < 0 {
			return "", diagramerr.Layout("node %q has negative dimensions", n.ID)
		}
	}

	frameRects := map[string]gfx.Rect{}
	for _, sg := range g.Subgraphs {
		computeFrameRects(sg, g, frames, solved, frameRects)
	}

	routes, err := routeFlowEdges(g, solved, redirect, frameRects)
	if err != nil {
		return "", err
	}

	canvasW, canvasH := solved.Width, solved.Height
	for _, r := range frameRects {
		if r.Right()+opts.Padding > canvasW {
			canvasW = r.Right() + opts.Padding
		}
		if r.Bottom()+opts.Padding > canvasH {
			canvasH = r.Bottom() + opts.Padding
		}
	}

	doc := svg.New(svg.Config{
		Width: canvasW, Height: canvasH,
		Colors: opts.Colors, Font: opts.Font, Transparent: opts.Transparent,
	})
	doc.Defs(markerDefs)

	for _, sg := range g.Subgraphs {
		emitFrame(doc, sg, frameRects)
	}

	for i, e := range g.Edges {
		emitEdge(doc, e, routes[i])
	}

	targetsOnly := targetOnlyIDs(g)
	for _, id := range g.NodeOrder {
		if hidden[id] {
			continue
		}
		n, pos := g.Nodes[id], solved.Nodes[id]
		emitNodeShape(doc, n, pos.Rect(), nodeStyleAttr(g, id), targetsOnly[id])
	}
	for _, id := range g.NodeOrder {
		if hidden[id] {
			continue
		}
		n, pos := g.Nodes[id], solved.Nodes[id]
		if n.Shape == ShapeStatePoint || n.Label == "" {
			continue
		}
		doc.CenteredText(pos.Rect().CenterX(), pos.Rect().CenterY(), fontSize, lineHeight, n.Label, "var(--_text)", "")
	}

	if err := emitEdgeLabels(doc, g, routes); err != nil {
		return "", err
	}

	return doc.String(), nil
}

func resolveRedirect(id string, redirect map[string]string) string {
	if r, ok := redirect[id]; ok && r != "" {
		return r
	}
	return id
}

// collectSubgraphs flattens the subgraph tree into an id-keyed map.
func collectSubgraphs(sgs []*Subgraph) map[string]*Subgraph {
	out := map[string]*Subgraph{}
	var walk func([]*Subgraph)
	walk = func(list []*Subgraph) {
		for _, sg := range list {
			out[sg.ID] = sg
			walk(sg.Nested)
		}
	}
	walk(sgs)
	return out
}

// representative picks the first leaf node id inside a subgraph, used as
// the layout stand-in for edges that reference the subgraph itself.
func representative(sg *Subgraph, g *Graph, frames map[string]*Subgraph) (string, bool) {
	for _, id := range sg.ChildIDs {
		if frames[id] == nil {
			if _, ok := g.Nodes[id]; ok {
				return id, true
			}
		}
	}
	for _, nested := range sg.Nested {
		if rep, ok := representative(nested, g, frames); ok {
			return rep, true
		}
	}
	return "", false
}

// computeFrameRects assigns each subgraph its bounding rectangle: the
// union of all recursive descendants plus padding and the header band
// (containment invariant #5). Innermost frames are computed first so a
// parent's union includes its nested frames.
func computeFrameRects(sg *Subgraph, g *Graph, frames map[string]*Subgraph, solved layout.Result, out map[string]gfx.Rect) gfx.Rect {
	var children []gfx.Rect
	for _, nested := range sg.Nested {
		children = append(children, computeFrameRects(nested, g, frames, solved, out))
	}
	for _, id := range sg.ChildIDs {
		if frames[id] != nil {
			continue // nested subgraph referenced by id: already covered above
		}
		if pos, ok := solved.Nodes[id]; ok {
			children = append(children, pos.Rect())
		}
	}
	if len(children) == 0 {
		// Empty subgraph: wrap the invisible placeholder the solver placed
		// under the subgraph's own id.
		if pos, ok := solved.Nodes[sg.ID]; ok {
			children = append(children, pos.Rect())
		}
	}
	r := layout.ContainingRect(children, subgraphHeader, subgraphPadding)
	out[sg.ID] = r
	return r
}

func emitFrame(doc *svg.Doc, sg *Subgraph, rects map[string]gfx.Rect) {
	r := rects[sg.ID]
	doc.Writef(`<rect x="%s" y="%s" width="%s" height="%s" rx="6" fill="var(--_node-fill)" stroke="var(--_node-stroke)"/>`,
		svg.Num(r.X), svg.Num(r.Y), svg.Num(r.W), svg.Num(r.H))
	doc.Writef(`<rect x="%s" y="%s" width="%s" height="%s" rx="6" fill="var(--_group-hdr)"/>`,
		svg.Num(r.X), svg.Num(r.Y), svg.Num(r.W), svg.Num(float64(subgraphHeader)))
	doc.Writef(`<text x="%s" y="%s" dy="0.32em" font-size="%s" font-weight="600" fill="var(--_text-sec)">%s</text>`,
		svg.Num(r.X+10), svg.Num(r.Y+subgraphHeader/2), svg.Num(fontSize-1), gfx.EscapeText(sg.Label))
	for _, nested := range sg.Nested {
		emitFrame(doc, nested, rects)
	}
}

// routeFlowEdges resolves one polyline per parsed edge: the solver's
// route, replaced by a fixed loop for self-edges and clipped to the frame
// perimeter where an endpoint is a subgraph.
func routeFlowEdges(g *Graph, solved layout.Result, redirect map[string]string, frameRects map[string]gfx.Rect) ([]gfx.Polyline, error) {
	if len(solved.Edges) != len(g.Edges) {
		return nil, diagramerr.Layout("edge count mismatch: %d routed of %d parsed", len(solved.Edges), len(g.Edges))
	}
	routes := make([]gfx.Polyline, len(g.Edges))
	for i, e := range g.Edges {
		if e.Source == e.Target {
			pos, ok := solved.Nodes[resolveRedirect(e.Source, redirect)]
			if !ok {
				return nil, diagramerr.Layout("self-loop on unknown node %q", e.Source)
			}
			routes[i] = selfLoopRoute(pos.Rect())
			continue
		}
		route := solved.Edges[i].Route
		if fr, ok := frameRects[e.Source]; ok {
			route = clipStart(route, fr)
		}
		if fr, ok := frameRects[e.Target]; ok {
			route = clipEnd(route, fr)
		}
		routes[i] = route
	}
	return routes, nil
}

// selfLoopRoute builds the three-segment orthogonal loop off a node's right
// side for an A --> A edge.
func selfLoopRoute(r gfx.Rect) gfx.Polyline {
	y1 := r.CenterY() - selfLoopHeight/2
	y2 := r.CenterY() + selfLoopHeight/2
	return gfx.Polyline{
		{X: r.Right(), Y: y1},
		{X: r.Right() + selfLoopWidth, Y: y1},
		{X: r.Right() + selfLoopWidth, Y: y2},
		{X: r.Right(), Y: y2},
	}
}

// clipEnd cuts the route where it enters rect, so the edge terminates on
// the frame's perimeter rather than at a box inside it.
func clipEnd(route gfx.Polyline, rect gfx.Rect) gfx.Polyline {
	for i := len(route) - 1; i > 0; i-- {
		inside, outside := route[i], route[i-1]
		if !rect.Contains(inside) {
			break
		}
		if rect.Contains(outside) {
			continue
		}
		clipped := append(gfx.Polyline{}, route[:i]...)
		return append(clipped, borderCrossing(outside, inside, rect))
	}
	return route
}

// clipStart is clipEnd mirrored: cuts the route where it leaves rect.
func clipStart(route gfx.Polyline, rect gfx.Rect) gfx.Polyline {
	for i := 0; i < len(route)-1; i++ {
		inside, outside := route[i], route[i+1]
		if !rect.Contains(inside) {
			break
		}
		if rect.Contains(outside) {
			continue
		}
		out := gfx.Polyline{borderCrossing(outside, inside, rect)}
		return append(out, route[i+1:]...)
	}
	return route
}

// borderCrossing finds where the axis-aligned segment from outside to
// inside crosses rect's border.
func borderCrossing(outside, inside gfx.Point, rect gfx.Rect) gfx.Point {
	if outside.X == inside.X { // vertical
		if outside.Y < rect.Y {
			return gfx.Point{X: outside.X, Y: rect.Y}
		}
		return gfx.Point{X: outside.X, Y: rect.Bottom()}
	}
	if outside.X < rect.X {
		return gfx.Point{X: rect.X, Y: outside.Y}
	}
	return gfx.Point{X: rect.Right(), Y: outside.Y}
}

func emitEdge(doc *svg.Doc, e Edge, route gfx.Polyline) {
	if len(route) < 2 {
		return
	}
	var attrs strings.Builder
	switch e.Style {
	case EdgeDotted:
		attrs.WriteString(` stroke-dasharray="4 4"`)
	case EdgeThick:
		attrs.WriteString(` stroke-width="2.5"`)
	}
	if e.Style != EdgeThick {
		attrs.WriteString(` stroke-width="1.5"`)
	}
	if e.HasArrowEnd {
		attrs.WriteString(` marker-end="url(#arrowhead)"`)
	}
	if e.HasArrowStart {
		attrs.WriteString(` marker-start="url(#arrowhead-start)"`)
	}
	doc.Writef(`<polyline points="%s" fill="none" stroke="var(--_line)"%s/>`, svg.Points(route), attrs.String())
}

// emitEdgeLabels places every labelled edge's pill at its route's
// arc-length midpoint, nudged along the path when two anchors would
// collide, then asserts the on-path invariant before emitting.
func emitEdgeLabels(doc *svg.Doc, g *Graph, routes []gfx.Polyline) error {
	var labelled []int
	var labelledRoutes []gfx.Polyline
	for i, e := range g.Edges {
		if e.Label != "" && len(routes[i]) >= 2 {
			labelled = append(labelled, i)
			labelledRoutes = append(labelledRoutes, routes[i])
		}
	}
	anchors := gfx.PlaceLabelAnchors(labelledRoutes, 10)
	for j, i := range labelled {
		anchor := anchors[j]
		if gfx.DistancePointToPolyline(anchor, routes[i]) > 2 {
			return diagramerr.Invariant("edge label anchor drifted off its polyline")
		}
		lw, _ := metrics.MeasureLines(g.Edges[i].Label, fontSize-2, lineHeight-4, false)
		doc.Label(anchor.X, anchor.Y, lw, fontSize-2, g.Edges[i].Label, "var(--bg)")
	}
	return nil
}

// targetOnlyIDs reports pseudostate ids that only ever appear as an edge
// target, which draw in the end-state style (ringed dot) instead of the
// start-state filled dot.
func targetOnlyIDs(g *Graph) map[string]bool {
	isSource := map[string]bool{}
	isTarget := map[string]bool{}
	for _, e := range g.Edges {
		isSource[e.Source] = true
		isTarget[e.Target] = true
	}
	out := map[string]bool{}
	for id := range g.Nodes {
		out[id] = isTarget[id] && !isSource[id]
	}
	return out
}

func nodeStyleAttr(g *Graph, id string) string {
	props := map[string]string{}
	if class, ok := g.NodeClass[id]; ok {
		for k, v := range g.ClassDefs[class] {
			props[k] = v
		}
	}
	for k, v := range g.NodeStyle[id] {
		props[k] = v
	}
	if len(props) == 0 {
		return ""
	}
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte(':')
		b.WriteString(props[k])
		b.WriteByte(';')
	}
	return ` style="` + gfx.EscapeText(b.String()) + `"`
}

// emitNodeShape draws one node box using its shape's fixed primitive
// recipe.
func emitNodeShape(doc *svg.Doc, n *Node, r gfx.Rect, styleAttr string, endState bool) {
	const fill = `fill="var(--_node-fill)" stroke="var(--_node-stroke)"`

	switch n.Shape {
	case ShapeRounded:
		doc.Writef(`<rect x="%s" y="%s" width="%s" height="%s" rx="8" %s%s/>`,
			svg.Num(r.X), svg.Num(r.Y), svg.Num(r.W), svg.Num(r.H), fill, styleAttr)
	case ShapeStadium:
		doc.Writef(`<rect x="%s" y="%s" width="%s" height="%s" rx="%s" %s%s/>`,
			svg.Num(r.X), svg.Num(r.Y), svg.Num(r.W), svg.Num(r.H), svg.Num(r.H/2), fill, styleAttr)
	case ShapeSubroutine:
		doc.Writef(`<rect x="%s" y="%s" width="%s" height="%s" %s%s/>`,
			svg.Num(r.X), svg.Num(r.Y), svg.Num(r.W), svg.Num(r.H), fill, styleAttr)
		doc.Writef(`<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="var(--_inner-stroke)"/>`,
			svg.Num(r.X+6), svg.Num(r.Y), svg.Num(r.X+6), svg.Num(r.Bottom()))
		doc.Writef(`<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="var(--_inner-stroke)"/>`,
			svg.Num(r.Right()-6), svg.Num(r.Y), svg.Num(r.Right()-6), svg.Num(r.Bottom()))
	case ShapeCylinder:
		const capRy = 8
		doc.Writef(`<rect x="%s" y="%s" width="%s" height="%s" %s%s/>`,
			svg.Num(r.X), svg.Num(r.Y+capRy), svg.Num(r.W), svg.Num(r.H-2*capRy), fill, styleAttr)
		doc.Writef(`<ellipse cx="%s" cy="%s" rx="%s" ry="%s" %s/>`,
			svg.Num(r.CenterX()), svg.Num(r.Bottom()-capRy), svg.Num(r.W/2), svg.Num(float64(capRy)), fill)
		doc.Writef(`<ellipse cx="%s" cy="%s" rx="%s" ry="%s" %s/>`,
			svg.Num(r.CenterX()), svg.Num(r.Y+capRy), svg.Num(r.W/2), svg.Num(float64(capRy)), fill)
	case ShapeCircle:
		doc.Writef(`<circle cx="%s" cy="%s" r="%s" %s%s/>`,
			svg.Num(r.CenterX()), svg.Num(r.CenterY()), svg.Num(r.W/2), fill, styleAttr)
	case ShapeDoubleCircle:
		doc.Writef(`<circle cx="%s" cy="%s" r="%s" %s%s/>`,
			svg.Num(r.CenterX()), svg.Num(r.CenterY()), svg.Num(r.W/2), fill, styleAttr)
		doc.Writef(`<circle cx="%s" cy="%s" r="%s" fill="none" stroke="var(--_node-stroke)"/>`,
			svg.Num(r.CenterX()), svg.Num(r.CenterY()), svg.Num(r.W/2-4))
	case ShapeDiamond:
		doc.Writef(`<polygon points="%s,%s %s,%s %s,%s %s,%s" %s%s/>`,
			svg.Num(r.CenterX()), svg.Num(r.Y),
			svg.Num(r.Right()), svg.Num(r.CenterY()),
			svg.Num(r.CenterX()), svg.Num(r.Bottom()),
			svg.Num(r.X), svg.Num(r.CenterY()), fill, styleAttr)
	case ShapeHexagon:
		inset := r.H / 2
		doc.Writef(`<polygon points="%s,%s %s,%s %s,%s %s,%s %s,%s %s,%s" %s%s/>`,
			svg.Num(r.X+inset), svg.Num(r.Y),
			svg.Num(r.Right()-inset), svg.Num(r.Y),
			svg.Num(r.Right()), svg.Num(r.CenterY()),
			svg.Num(r.Right()-inset), svg.Num(r.Bottom()),
			svg.Num(r.X+inset), svg.Num(r.Bottom()),
			svg.Num(r.X), svg.Num(r.CenterY()), fill, styleAttr)
	case ShapeAsymmetric:
		doc.Writef(`<polygon points="%s,%s %s,%s %s,%s %s,%s %s,%s" %s%s/>`,
			svg.Num(r.X), svg.Num(r.Y),
			svg.Num(r.Right()), svg.Num(r.Y),
			svg.Num(r.Right()), svg.Num(r.Bottom()),
			svg.Num(r.X), svg.Num(r.Bottom()),
			svg.Num(r.X+10), svg.Num(r.CenterY()), fill, styleAttr)
	case ShapeTrapezoid:
		const slant = 12
		doc.Writef(`<polygon points="%s,%s %s,%s %s,%s %s,%s" %s%s/>`,
			svg.Num(r.X+slant), svg.Num(r.Y),
			svg.Num(r.Right()-slant), svg.Num(r.Y),
			svg.Num(r.Right()), svg.Num(r.Bottom()),
			svg.Num(r.X), svg.Num(r.Bottom()), fill, styleAttr)
	case ShapeTrapezoidAlt:
		const slant = 12
		doc.Writef(`<polygon points="%s,%s %s,%s %s,%s %s,%s" %s%s/>`,
			svg.Num(r.X), svg.Num(r.Y),
			svg.Num(r.Right()), svg.Num(r.Y),
			svg.Num(r.Right()-slant), svg.Num(r.Bottom()),
			svg.Num(r.X+slant), svg.Num(r.Bottom()), fill, styleAttr)
	case ShapeStatePoint:
		if endState {
			doc.Writef(`<circle cx="%s" cy="%s" r="%s" fill="none" stroke="var(--_text)"/>`,
				svg.Num(r.CenterX()), svg.Num(r.CenterY()), svg.Num(float64(statePointRadius)))
			doc.Writef(`<circle cx="%s" cy="%s" r="%s" fill="var(--_text)"/>`,
				svg.Num(r.CenterX()), svg.Num(r.CenterY()), svg.Num(float64(statePointRadius-3)))
		} else {
			doc.Writef(`<circle cx="%s" cy="%s" r="%s" fill="var(--_text)"/>`,
				svg.Num(r.CenterX()), svg.Num(r.CenterY()), svg.Num(float64(statePointRadius)))
		}
	default: // ShapeRectangle
		doc.Writef(`<rect x="%s" y="%s" width="%s" height="%s" rx="2" %s%s/>`,
			svg.Num(r.X), svg.Num(r.Y), svg.Num(r.W), svg.Num(r.H), fill, styleAttr)
	}
}

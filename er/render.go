package er

import (
	"github.com/inkboard/diagram/diagramerr"
	"github.com/inkboard/diagram/internal/gfx"
	"github.com/inkboard/diagram/internal/metrics"
	"github.com/inkboard/diagram/internal/svg"
	"github.com/inkboard/diagram/layout"
	"github.com/inkboard/diagram/theme"
)

// Options configures the ER renderer.
type Options struct {
	Colors       theme.Colors
	Font         string
	Padding      float64
	NodeSpacing  float64
	LayerSpacing float64
	Transparent  bool
}

const (
	erFontSize    = 14
	erRowFontSize = 12
	erRowHeight   = 20
	erPadX        = 12
	erPadY        = 8
	erHeaderH     = 32
	erMinWidth    = 110
	badgeWidth    = 26
	badgeHeight   = 14
	badgeGap      = 4
)

// Render lays out and emits a parsed ER diagram. Crow's-foot markers are
// drawn inline per endpoint; there are no defs.
func Render(d *Diagram, opts Options) (string, error) {
	specs := make([]layout.NodeSpec, 0, len(d.Order))
	for _, id := range d.Order {
		specs = append(specs, measureEntity(d.Entities[id]))
	}
	edgeSpecs := make([]layout.EdgeSpec, len(d.Relationships))
	for i, rel := range d.Relationships {
		var lw, lh float64
		if rel.Label != "" {
			lw, lh = metrics.MeasureLines(rel.Label, erRowFontSize, erRowHeight, false)
		}
		edgeSpecs[i] = layout.EdgeSpec{From: rel.Entity1, To: rel.Entity2, LabelWidth: lw, LabelHeight: lh}
	}

	solved := layout.Solve(specs, edgeSpecs, layout.Options{
		Direction:    layout.TB,
		Padding:      opts.Padding,
		NodeSpacing:  opts.NodeSpacing,
		LayerSpacing: opts.LayerSpacing,
	})
	if len(solved.Edges) != len(d.Relationships) {
		return "", diagramerr.Layout("relationship count mismatch: %d routed of %d parsed", len(solved.Edges), len(d.Relationships))
	}

	needsMono := false
	for _, e := range d.Entities {
		if len(e.Attributes) > 0 {
			needsMono = true
			break
		}
	}

	doc := svg.New(svg.Config{
		Width: solved.Width, Height: solved.Height,
		Colors: opts.Colors, Font: opts.Font, Transparent: opts.Transparent,
		NeedsMono: needsMono,
	})

	routes := make([]gfx.Polyline, len(d.Relationships))
	for i := range d.Relationships {
		routes[i] = solved.Edges[i].Route
	}

	for i, rel := range d.Relationships {
		emitRelationship(doc, rel, routes[i])
	}

	for _, id := range d.Order {
		emitEntity(doc, d.Entities[id], solved.Nodes[id].Rect())
	}

	emitLabels(doc, d, routes)

	return doc.String(), nil
}

// measureEntity sizes an entity box: header plus one row per attribute,
// with type, name, and key badges in aligned columns.
func measureEntity(e *Entity) layout.NodeSpec {
	labelW, _ := metrics.MeasureLines(e.Label, erFontSize, erRowHeight, false)
	w := labelW + 2*erPadX
	for _, a := range e.Attributes {
		rw := rowWidth(a)
		if rw > w {
			w = rw
		}
	}
	if w < erMinWidth {
		w = erMinWidth
	}

	h := float64(erHeaderH)
	if len(e.Attributes) > 0 {
		h += float64(len(e.Attributes))*erRowHeight + 2*erPadY
	}
	return layout.NodeSpec{ID: e.ID, Width: w, Height: h}
}

func rowWidth(a Attribute) float64 {
	tw, _ := metrics.MeasureLines(a.Type, erRowFontSize, erRowHeight, true)
	nw, _ := metrics.MeasureLines(a.Name, erRowFontSize, erRowHeight, true)
	w := erPadX + tw + 10 + nw + erPadX
	if len(a.Keys) > 0 {
		w += float64(len(a.Keys))*(badgeWidth+badgeGap) + 6
	}
	return w
}

func emitEntity(doc *svg.Doc, e *Entity, r gfx.Rect) {
	doc.Writef(`<rect x="%s" y="%s" width="%s" height="%s" rx="3" fill="var(--_node-fill)" stroke="var(--_node-stroke)"/>`,
		svg.Num(r.X), svg.Num(r.Y), svg.Num(r.W), svg.Num(r.H))
	doc.Writef(`<rect x="%s" y="%s" width="%s" height="%s" rx="3" fill="var(--_group-hdr)"/>`,
		svg.Num(r.X), svg.Num(r.Y), svg.Num(r.W), svg.Num(float64(erHeaderH)))
	doc.CenteredText(r.CenterX(), r.Y+erHeaderH/2, erFontSize, erRowHeight, e.Label, "var(--_text)", ` font-weight="600"`)

	if len(e.Attributes) == 0 {
		return
	}

	doc.Writef(`<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="var(--_inner-stroke)"/>`,
		svg.Num(r.X), svg.Num(r.Y+erHeaderH), svg.Num(r.Right()), svg.Num(r.Y+erHeaderH))

	typeColW := 0.0
	for _, a := range e.Attributes {
		tw, _ := metrics.MeasureLines(a.Type, erRowFontSize, erRowHeight, true)
		if tw > typeColW {
			typeColW = tw
		}
	}

	y := r.Y + erHeaderH + erPadY + erRowHeight/2
	for _, a := range e.Attributes {
		doc.Writef(`<text x="%s" y="%s" dy="0.32em" font-size="%s" class="mono" fill="var(--_text-muted)">%s</text>`,
			svg.Num(r.X+erPadX), svg.Num(y), svg.Num(float64(erRowFontSize)), gfx.EscapeText(a.Type))
		doc.Writef(`<text x="%s" y="%s" dy="0.32em" font-size="%s" class="mono" fill="var(--_text-sec)">%s</text>`,
			svg.Num(r.X+erPadX+typeColW+10), svg.Num(y), svg.Num(float64(erRowFontSize)), gfx.EscapeText(a.Name))

		bx := r.Right() - erPadX - float64(len(a.Keys))*(badgeWidth+badgeGap) + badgeGap
		for _, key := range a.Keys {
			doc.Writef(`<rect x="%s" y="%s" width="%s" height="%s" rx="3" fill="var(--_key-badge)"/>`,
				svg.Num(bx), svg.Num(y-badgeHeight/2), svg.Num(float64(badgeWidth)), svg.Num(float64(badgeHeight)))
			doc.CenteredText(bx+badgeWidth/2, y, erRowFontSize-3, erRowHeight, key, "var(--_text-sec)", ` font-weight="600"`)
			bx += badgeWidth + badgeGap
		}
		y += erRowHeight
	}
}

func emitRelationship(doc *svg.Doc, rel Relationship, route gfx.Polyline) {
	if len(route) < 2 {
		return
	}
	dash := ""
	if !rel.Identifying {
		dash = ` stroke-dasharray="5 3"`
	}
	doc.Writef(`<polyline points="%s" fill="none" stroke="var(--_line)" stroke-width="1.5"%s/>`,
		svg.Points(route), dash)

	emitCrowsFoot(doc, route, rel.Card2)
	emitCrowsFoot(doc, reversed(route), rel.Card1)
}

func reversed(pl gfx.Polyline) gfx.Polyline {
	out := make(gfx.Polyline, len(pl))
	for i, p := range pl {
		out[len(pl)-1-i] = p
	}
	return out
}

// emitCrowsFoot draws the cardinality marker at the route's final point
// per the fixed marker geometry: the unit tangent comes from the
// last segment, the marker tip sits 4px inside the endpoint, and the
// glyphs extend back along the tangent.
func emitCrowsFoot(doc *svg.Doc, route gfx.Polyline, card Cardinality) {
	end := route[len(route)-1]
	t := route.Tangent()
	perp := gfx.Perpendicular(t)

	at := func(back, side float64) gfx.Point {
		return gfx.Point{
			X: end.X - t.X*back + perp.X*side,
			Y: end.Y - t.Y*back + perp.Y*side,
		}
	}
	line := func(a, b gfx.Point) {
		doc.Writef(`<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="var(--_line)" stroke-width="1.5"/>`,
			svg.Num(a.X), svg.Num(a.Y), svg.Num(b.X), svg.Num(b.Y))
	}
	circle := func(back float64) {
		c := at(back, 0)
		doc.Writef(`<circle cx="%s" cy="%s" r="4" fill="var(--bg)" stroke="var(--_line)" stroke-width="1.5"/>`,
			svg.Num(c.X), svg.Num(c.Y))
	}

	switch card {
	case One:
		line(at(8, -6), at(8, 6))
		line(at(12, -6), at(12, 6))
	case ZeroOne:
		line(at(8, -6), at(8, 6))
		line(at(12, -6), at(12, 6))
		circle(12)
	case Many:
		back := at(16, 0)
		line(at(4, -7), back)
		line(at(4, 0), back)
		line(at(4, 7), back)
	case ZeroMany:
		back := at(16, 0)
		line(at(4, -7), back)
		line(at(4, 0), back)
		line(at(4, 7), back)
		circle(20)
	}
}

func emitLabels(doc *svg.Doc, d *Diagram, routes []gfx.Polyline) {
	var labelled []int
	var labelledRoutes []gfx.Polyline
	for i, rel := range d.Relationships {
		if rel.Label != "" && len(routes[i]) >= 2 {
			labelled = append(labelled, i)
			labelledRoutes = append(labelledRoutes, routes[i])
		}
	}
	anchors := gfx.PlaceLabelAnchors(labelledRoutes, 10)
	for j, i := range labelled {
		lw, _ := metrics.MeasureLines(d.Relationships[i].Label, erRowFontSize, erRowHeight, false)
		doc.Label(anchors[j].X, anchors[j].Y, lw, erRowFontSize, d.Relationships[i].Label, "var(--bg)")
	}
}

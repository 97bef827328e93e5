package class

import (
	"strings"

	"github.com/inkboard/diagram/diagramerr"
	"github.com/inkboard/diagram/internal/gfx"
	"github.com/inkboard/diagram/internal/metrics"
	"github.com/inkboard/diagram/internal/svg"
	"github.com/inkboard/diagram/layout"
	"github.com/inkboard/diagram/theme"
)

// Options configures the class renderer.
type Options struct {
	Colors       theme.Colors
	Font         string
	Padding      float64
	NodeSpacing  float64
	LayerSpacing float64
	Transparent  bool
}

const (
	clsFontSize   = 14
	rowFontSize   = 12
	rowHeight     = 18
	compartPadX   = 12
	compartPadY   = 7
	headerHeight  = 30
	annotationPad = 14
	minClassWidth = 90

	namespaceHeader  = 28
	namespacePadding = 18
)

const clsMarkerDefs = `<marker id="cls-inherit" viewBox="0 0 12 12" refX="11" refY="6" markerWidth="12" markerHeight="12" orient="auto-start-reverse"><path d="M1,1 L11,6 L1,11 z" fill="var(--bg)" stroke="var(--_arrow)"/></marker>` +
	`<marker id="cls-composition" viewBox="0 0 14 10" refX="13" refY="5" markerWidth="14" markerHeight="10" orient="auto-start-reverse"><path d="M1,5 L7,1 L13,5 L7,9 z" fill="var(--_arrow)"/></marker>` +
	`<marker id="cls-aggregation" viewBox="0 0 14 10" refX="13" refY="5" markerWidth="14" markerHeight="10" orient="auto-start-reverse"><path d="M1,5 L7,1 L13,5 L7,9 z" fill="var(--bg)" stroke="var(--_arrow)"/></marker>` +
	`<marker id="cls-arrow" viewBox="0 0 10 10" refX="9" refY="5" markerWidth="8" markerHeight="8" orient="auto-start-reverse"><path d="M1,1 L9,5 L1,9" fill="none" stroke="var(--_arrow)" stroke-width="1.5"/></marker>`

// Render lays out and emits a parsed class diagram.
func Render(d *Diagram, opts Options) (string, error) {
	specs := make([]layout.NodeSpec, 0, len(d.Order))
	for _, id := range d.Order {
		specs = append(specs, measureClass(d.Classes[id]))
	}
	edgeSpecs := make([]layout.EdgeSpec, len(d.Relationships))
	for i, rel := range d.Relationships {
		d.ensureClass(rel.From)
		d.ensureClass(rel.To)
		var lw, lh float64
		if rel.Label != "" {
			lw, lh = metrics.MeasureLines(rel.Label, rowFontSize, rowHeight, false)
		}
		edgeSpecs[i] = layout.EdgeSpec{From: rel.From, To: rel.To, LabelWidth: lw, LabelHeight: lh}
	}
	// Relationships may have materialised classes after the first sweep.
	if len(specs) < len(d.Order) {
		for _, id := range d.Order[len(specs):] {
			specs = append(specs, measureClass(d.Classes[id]))
		}
	}

	solved := layout.Solve(specs, edgeSpecs, layout.Options{
		Direction:    layout.TB,
		Padding:      opts.Padding,
		NodeSpacing:  opts.NodeSpacing,
		LayerSpacing: opts.LayerSpacing,
	})

	needsMono := false
	for _, c := range d.Classes {
		if len(c.Attributes) > 0 || len(c.Methods) > 0 {
			needsMono = true
			break
		}
	}

	doc := svg.New(svg.Config{
		Width: solved.Width, Height: solved.Height,
		Colors: opts.Colors, Font: opts.Font, Transparent: opts.Transparent,
		NeedsMono: needsMono,
	})
	doc.Defs(clsMarkerDefs)

	emitNamespaces(doc, d, solved)

	routes := make([]gfx.Polyline, len(d.Relationships))
	if len(solved.Edges) != len(d.Relationships) {
		return "", diagramerr.Layout("relationship count mismatch: %d routed of %d parsed", len(solved.Edges), len(d.Relationships))
	}
	for i, rel := range d.Relationships {
		if rel.From == rel.To {
			routes[i] = selfRoute(solved.Nodes[rel.From].Rect())
			continue
		}
		routes[i] = solved.Edges[i].Route
	}
	for i, rel := range d.Relationships {
		emitRelationship(doc, rel, routes[i])
	}

	for _, id := range d.Order {
		emitClass(doc, d.Classes[id], solved.Nodes[id].Rect())
	}

	emitRelationshipLabels(doc, d, routes)

	return doc.String(), nil
}

// measureClass sizes a class box: header plus one row per member, wide
// enough for the longest monospace row.
func measureClass(c *Class) layout.NodeSpec {
	labelW, _ := metrics.MeasureLines(c.Label, clsFontSize, rowHeight, false)
	w := labelW + 2*compartPadX
	if c.Annotation != "" {
		aw, _ := metrics.MeasureLines("«"+c.Annotation+"»", rowFontSize, rowHeight, false)
		if aw+2*compartPadX > w {
			w = aw + 2*compartPadX
		}
	}
	for _, m := range append(append([]Member{}, c.Attributes...), c.Methods...) {
		rw, _ := metrics.MeasureLines(memberText(m), rowFontSize, rowHeight, true)
		if rw+2*compartPadX > w {
			w = rw + 2*compartPadX
		}
	}
	if w < minClassWidth {
		w = minClassWidth
	}

	h := float64(headerHeight)
	if c.Annotation != "" {
		h += annotationPad
	}
	if len(c.Attributes) > 0 {
		h += float64(len(c.Attributes))*rowHeight + 2*compartPadY
	}
	if len(c.Methods) > 0 {
		h += float64(len(c.Methods))*rowHeight + 2*compartPadY
	}
	// Empty compartments still take their padding rows.
	if len(c.Attributes) == 0 {
		h += compartPadY
		if len(c.Methods) == 0 {
			h += compartPadY
		}
	}
	return layout.NodeSpec{ID: c.ID, Width: w, Height: h}
}

// memberText renders one compartment row: visibility glyph, then
// "type name" for attributes or "name(params) type" for methods.
func memberText(m Member) string {
	var b strings.Builder
	b.WriteString(m.Visibility.Symbol())
	if m.IsMethod {
		b.WriteString(m.Name)
		b.WriteByte('(')
		b.WriteString(m.Params)
		b.WriteByte(')')
		if m.Type != "" {
			b.WriteByte(' ')
			b.WriteString(m.Type)
		}
		return b.String()
	}
	if m.Type != "" {
		b.WriteString(m.Type)
		b.WriteByte(' ')
	}
	b.WriteString(m.Name)
	return b.String()
}

func emitNamespaces(doc *svg.Doc, d *Diagram, solved layout.Result) {
	for _, ns := range d.Namespaces {
		var children []gfx.Rect
		for _, id := range d.Order {
			if d.Classes[id].Namespace == ns {
				if pos, ok := solved.Nodes[id]; ok {
					children = append(children, pos.Rect())
				}
			}
		}
		if len(children) == 0 {
			continue
		}
		r := layout.ContainingRect(children, namespaceHeader, namespacePadding)
		doc.Writef(`<rect x="%s" y="%s" width="%s" height="%s" rx="6" fill="var(--_node-fill)" stroke="var(--_node-stroke)" stroke-dasharray="6 3"/>`,
			svg.Num(r.X), svg.Num(r.Y), svg.Num(r.W), svg.Num(r.H))
		doc.Writef(`<text x="%s" y="%s" dy="0.32em" font-size="%s" font-weight="600" fill="var(--_text-sec)">%s</text>`,
			svg.Num(r.X+10), svg.Num(r.Y+namespaceHeader/2), svg.Num(float64(clsFontSize-1)), gfx.EscapeText(ns))
	}
}

func selfRoute(r gfx.Rect) gfx.Polyline {
	return gfx.Polyline{
		{X: r.Right(), Y: r.CenterY() - 8},
		{X: r.Right() + 30, Y: r.CenterY() - 8},
		{X: r.Right() + 30, Y: r.CenterY() + 8},
		{X: r.Right(), Y: r.CenterY() + 8},
	}
}

// markerRef returns the defs id for a relationship's endpoint glyph.
func markerRef(t RelationshipType) string {
	switch t {
	case Inheritance, Realization:
		return "cls-inherit"
	case Composition:
		return "cls-composition"
	case Aggregation:
		return "cls-aggregation"
	default:
		return "cls-arrow"
	}
}

func emitRelationship(doc *svg.Doc, rel Relationship, route gfx.Polyline) {
	if len(route) < 2 {
		return
	}
	var attrs strings.Builder
	if rel.Type == Dependency || rel.Type == Realization {
		attrs.WriteString(` stroke-dasharray="5 3"`)
	}
	if !rel.NoMarker {
		if rel.MarkerAt == AtTo {
			attrs.WriteString(` marker-end="url(#` + markerRef(rel.Type) + `)"`)
		} else {
			attrs.WriteString(` marker-start="url(#` + markerRef(rel.Type) + `)"`)
		}
	}
	doc.Writef(`<polyline points="%s" fill="none" stroke="var(--_line)" stroke-width="1.5"%s/>`,
		svg.Points(route), attrs.String())

	if rel.FromCardinality != "" {
		p := route[0]
		doc.Writef(`<text x="%s" y="%s" dy="0.32em" font-size="%s" fill="var(--_text-muted)">%s</text>`,
			svg.Num(p.X+8), svg.Num(p.Y+10), svg.Num(float64(rowFontSize)), gfx.EscapeText(rel.FromCardinality))
	}
	if rel.ToCardinality != "" {
		p := route[len(route)-1]
		doc.Writef(`<text x="%s" y="%s" dy="0.32em" font-size="%s" fill="var(--_text-muted)">%s</text>`,
			svg.Num(p.X+8), svg.Num(p.Y-10), svg.Num(float64(rowFontSize)), gfx.EscapeText(rel.ToCardinality))
	}
}

func emitRelationshipLabels(doc *svg.Doc, d *Diagram, routes []gfx.Polyline) {
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
		lw, _ := metrics.MeasureLines(d.Relationships[i].Label, rowFontSize, rowHeight, false)
		doc.Label(anchors[j].X, anchors[j].Y, lw, rowFontSize, d.Relationships[i].Label, "var(--bg)")
	}
}

func emitClass(doc *svg.Doc, c *Class, r gfx.Rect) {
	doc.Writef(`<rect x="%s" y="%s" width="%s" height="%s" rx="3" fill="var(--_node-fill)" stroke="var(--_node-stroke)"/>`,
		svg.Num(r.X), svg.Num(r.Y), svg.Num(r.W), svg.Num(r.H))

	headerH := float64(headerHeight)
	if c.Annotation != "" {
		headerH += annotationPad
	}
	y := r.Y

	if c.Annotation != "" {
		doc.CenteredText(r.CenterX(), y+annotationPad/2+4, rowFontSize, rowHeight, "«"+c.Annotation+"»", "var(--_text-muted)", "")
	}
	doc.CenteredText(r.CenterX(), y+headerH-headerHeight/2, clsFontSize, rowHeight, c.Label, "var(--_text)", ` font-weight="600"`)
	y += headerH

	doc.Writef(`<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="var(--_inner-stroke)"/>`,
		svg.Num(r.X), svg.Num(y), svg.Num(r.Right()), svg.Num(y))

	y = emitCompartment(doc, c.Attributes, r, y)
	if len(c.Methods) > 0 {
		doc.Writef(`<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="var(--_inner-stroke)"/>`,
			svg.Num(r.X), svg.Num(y), svg.Num(r.Right()), svg.Num(y))
		emitCompartment(doc, c.Methods, r, y)
	}
}

// emitCompartment writes one run of member rows and returns the y where
// the compartment ends.
func emitCompartment(doc *svg.Doc, members []Member, r gfx.Rect, y float64) float64 {
	if len(members) == 0 {
		return y + compartPadY
	}
	rowY := y + compartPadY + rowHeight/2
	for _, m := range members {
		var extra strings.Builder
		extra.WriteString(` class="mono"`)
		if m.IsStatic {
			extra.WriteString(` text-decoration="underline"`)
		}
		if m.IsAbstract {
			extra.WriteString(` font-style="italic"`)
		}
		doc.Writef(`<text x="%s" y="%s" dy="0.32em" font-size="%s" fill="var(--_text-sec)"%s>%s</text>`,
			svg.Num(r.X+compartPadX), svg.Num(rowY), svg.Num(float64(rowFontSize)), extra.String(), gfx.EscapeText(memberText(m)))
		rowY += rowHeight
	}
	return y + 2*compartPadY + float64(len(members))*rowHeight
}

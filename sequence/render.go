package sequence

import (
	"github.com/inkboard/diagram/internal/gfx"
	"github.com/inkboard/diagram/internal/metrics"
	"github.com/inkboard/diagram/internal/svg"
	"github.com/inkboard/diagram/theme"
)

// Options configures the sequence renderer.
type Options struct {
	Colors      theme.Colors
	Font        string
	Padding     float64
	Transparent bool
}

const seqMarkerDefs = `<marker id="seq-arrow" viewBox="0 0 10 10" refX="9" refY="5" markerWidth="7" markerHeight="7" orient="auto"><path d="M0,0 L10,5 L0,10 z" fill="var(--_arrow)"/></marker>` +
	`<marker id="seq-arrow-open" viewBox="0 0 10 10" refX="9" refY="5" markerWidth="8" markerHeight="8" orient="auto"><path d="M1,1 L9,5 L1,9" fill="none" stroke="var(--_arrow)" stroke-width="1.5"/></marker>`

// Render lays out and emits a parsed sequence diagram.
func Render(d *Diagram, opts Options) (string, error) {
	if opts.Padding == 0 {
		opts.Padding = 40
	}
	p := layoutDiagram(d, opts.Padding)

	doc := svg.New(svg.Config{
		Width: p.width, Height: p.height,
		Colors: opts.Colors, Font: opts.Font, Transparent: opts.Transparent,
	})
	doc.Defs(seqMarkerDefs)

	// Lifelines first: everything else draws over them.
	for _, part := range d.Participants {
		x := p.colX[part.ID]
		doc.Writef(`<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="var(--_line)" stroke-dasharray="4 4"/>`,
			svg.Num(x), svg.Num(p.lifelineTop), svg.Num(x), svg.Num(p.lifelineBottom))
	}

	for _, part := range d.Participants {
		emitParticipant(doc, part, p)
	}

	for _, bar := range p.bars {
		doc.Writef(`<rect x="%s" y="%s" width="%s" height="%s" fill="var(--_key-badge)" stroke="var(--_node-stroke)"/>`,
			svg.Num(bar.X), svg.Num(bar.Y), svg.Num(bar.W), svg.Num(bar.H))
	}

	for _, b := range p.blocks {
		emitBlock(doc, b)
	}

	for i, it := range d.Items {
		switch it.Kind {
		case ItemMessage:
			emitMessage(doc, it.Msg, p, p.rowY[i])
		case ItemNote:
			emitNote(doc, it.Note, p, p.rowY[i])
		}
	}

	return doc.String(), nil
}

func emitParticipant(doc *svg.Doc, part *Participant, p *placement) {
	x := p.colX[part.ID]
	w := p.colW[part.ID]

	if part.Kind == KindActor {
		// Stick figure: head, torso, arms, two legs; label below.
		headY := p.boxTop + 7
		doc.Writef(`<circle cx="%s" cy="%s" r="5" fill="none" stroke="var(--_text-sec)" stroke-width="1.5"/>`,
			svg.Num(x), svg.Num(headY))
		doc.Writef(`<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="var(--_text-sec)" stroke-width="1.5"/>`,
			svg.Num(x), svg.Num(headY+5), svg.Num(x), svg.Num(headY+15))
		doc.Writef(`<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="var(--_text-sec)" stroke-width="1.5"/>`,
			svg.Num(x-7), svg.Num(headY+9), svg.Num(x+7), svg.Num(headY+9))
		doc.Writef(`<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="var(--_text-sec)" stroke-width="1.5"/>`,
			svg.Num(x), svg.Num(headY+15), svg.Num(x-6), svg.Num(headY+23))
		doc.Writef(`<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="var(--_text-sec)" stroke-width="1.5"/>`,
			svg.Num(x), svg.Num(headY+15), svg.Num(x+6), svg.Num(headY+23))
		doc.CenteredText(x, p.boxTop+boxHeight-3, seqFontSize, labelHeight, part.Label, "var(--_text)", "")
		return
	}

	doc.Writef(`<rect x="%s" y="%s" width="%s" height="%s" rx="4" fill="var(--_node-fill)" stroke="var(--_node-stroke)"/>`,
		svg.Num(x-w/2), svg.Num(p.boxTop), svg.Num(w), svg.Num(float64(boxHeight)))
	doc.CenteredText(x, p.boxTop+boxHeight/2, seqFontSize, labelHeight, part.Label, "var(--_text)", ` font-weight="500"`)
}

func emitBlock(doc *svg.Doc, b placedBlock) {
	r := b.rect
	doc.Writef(`<rect x="%s" y="%s" width="%s" height="%s" fill="none" stroke="var(--_line)"/>`,
		svg.Num(r.X), svg.Num(r.Y), svg.Num(r.W), svg.Num(r.H))

	// Tab-shaped keyword label in the top-left corner.
	tw, _ := metrics.MeasureLines(string(b.kind), seqFontSize-2, labelHeight, false)
	tabW, tabH := tw+16, 18.0
	doc.Writef(`<rect x="%s" y="%s" width="%s" height="%s" fill="var(--_group-hdr)" stroke="var(--_line)"/>`,
		svg.Num(r.X), svg.Num(r.Y), svg.Num(tabW), svg.Num(tabH))
	doc.CenteredText(r.X+tabW/2, r.Y+tabH/2, seqFontSize-2, labelHeight, string(b.kind), "var(--_text-sec)", ` font-weight="600"`)
	if b.label != "" {
		doc.Writef(`<text x="%s" y="%s" dy="0.32em" font-size="%s" fill="var(--_text-muted)">%s</text>`,
			svg.Num(r.X+tabW+8), svg.Num(r.Y+tabH/2), svg.Num(float64(seqFontSize-2)), gfx.EscapeText(b.label))
	}

	for _, div := range b.dividers {
		doc.Writef(`<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="var(--_line)" stroke-dasharray="4 4"/>`,
			svg.Num(r.X), svg.Num(div.y), svg.Num(r.Right()), svg.Num(div.y))
		if div.label != "" {
			doc.Writef(`<text x="%s" y="%s" dy="0.32em" font-size="%s" fill="var(--_text-muted)">[%s]</text>`,
				svg.Num(r.X+8), svg.Num(div.y-9), svg.Num(float64(seqFontSize-2)), gfx.EscapeText(div.label))
		}
	}
}

func emitMessage(doc *svg.Doc, m *Message, p *placement, y float64) {
	marker := `marker-end="url(#seq-arrow-open)"`
	if m.Filled {
		marker = `marker-end="url(#seq-arrow)"`
	}
	dash := ""
	if m.Line == LineDashed {
		dash = ` stroke-dasharray="5 3"`
	}

	if m.SelfMessage() {
		// Fixed three-segment loop: right, down, left.
		x := p.colX[m.From]
		route := gfx.Polyline{
			{X: x, Y: y},
			{X: x + selfLoopW, Y: y},
			{X: x + selfLoopW, Y: y + selfLoopH},
			{X: x, Y: y + selfLoopH},
		}
		doc.Writef(`<polyline points="%s" fill="none" stroke="var(--_line)" stroke-width="1.5"%s %s/>`,
			svg.Points(route), dash, marker)
		if m.Label != "" {
			doc.Writef(`<text x="%s" y="%s" dy="0.32em" font-size="%s" fill="var(--_text-sec)">%s</text>`,
				svg.Num(x+selfLoopW+8), svg.Num(y+selfLoopH/2), svg.Num(float64(seqFontSize)), gfx.EscapeText(m.Label))
		}
		return
	}

	x1, x2 := p.colX[m.From], p.colX[m.To]
	doc.Writef(`<polyline points="%s" fill="none" stroke="var(--_line)" stroke-width="1.5"%s %s/>`,
		svg.Points(gfx.Polyline{{X: x1, Y: y}, {X: x2, Y: y}}), dash, marker)

	if m.Label != "" {
		mid := (x1 + x2) / 2
		lw, _ := metrics.MeasureLines(m.Label, seqFontSize, labelHeight, false)
		doc.Label(mid, y-12, lw, seqFontSize, m.Label, "var(--bg)")
	}
}

func emitNote(doc *svg.Doc, n *Note, p *placement, y float64) {
	nw, _ := metrics.MeasureLines(n.Text, seqFontSize-1, labelHeight, false)
	nw += 2 * notePad
	nh := 26.0

	var x float64
	switch n.Position {
	case NoteLeftOf:
		x = p.colX[n.Participants[0]] - 16 - nw
	case NoteRightOf:
		x = p.colX[n.Participants[0]] + 16
	default: // over
		min := p.colX[n.Participants[0]]
		max := min
		for _, id := range n.Participants[1:] {
			if c := p.colX[id]; c < min {
				min = c
			} else if c > max {
				max = c
			}
		}
		center := (min + max) / 2
		if span := max - min + 40; span > nw {
			nw = span
		}
		x = center - nw/2
	}

	doc.Writef(`<rect x="%s" y="%s" width="%s" height="%s" rx="3" fill="var(--_group-hdr)" stroke="var(--_node-stroke)"/>`,
		svg.Num(x), svg.Num(y-nh/2), svg.Num(nw), svg.Num(nh))
	doc.CenteredText(x+nw/2, y, seqFontSize-1, labelHeight, n.Text, "var(--_text-sec)", "")
}

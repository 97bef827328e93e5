package sequence

import (
	"github.com/inkboard/diagram/internal/gfx"
	"github.com/inkboard/diagram/internal/metrics"
)

const (
	seqFontSize       = 13
	labelHeight       = seqFontSize + 6
	boxHeight         = 36
	boxPadX           = 14
	minColWidth       = 80
	baseColGap        = 50
	headGap           = 28 // lifeline top to first row
	rowAdvance        = 36
	selfLoopW         = 28
	selfLoopH         = 20
	noteAdvance       = 38
	notePad           = 10
	blockStartAdvance = 28
	dividerAdvance    = 26
	blockEndAdvance   = 14
	activationWidth   = 8
)

// divider is an else/and separator inside a block rectangle.
type divider struct {
	y     float64
	label string
}

type placedBlock struct {
	kind     BlockKind
	label    string
	rect     gfx.Rect
	dividers []divider
}

// placement is the Tier-B positioned model for a sequence diagram.
type placement struct {
	colX map[string]float64
	colW map[string]float64
	rowY []float64 // y per item index; messages read their arrow y here

	bars   []gfx.Rect
	blocks []placedBlock

	boxTop         float64
	lifelineTop    float64
	lifelineBottom float64
	width, height  float64
}

type openBlock struct {
	item     int
	top      float64
	minX     float64
	maxX     float64
	dividers []divider
}

// layoutDiagram slots participants onto integer columns and items onto
// successive rows.
func layoutDiagram(d *Diagram, padding float64) *placement {
	p := &placement{
		colX: map[string]float64{},
		colW: map[string]float64{},
		rowY: make([]float64, len(d.Items)),
	}

	widths := make([]float64, len(d.Participants))
	for i, part := range d.Participants {
		w, _ := metrics.MeasureLines(part.Label, seqFontSize, labelHeight, false)
		w += 2 * boxPadX
		if w < minColWidth {
			w = minColWidth
		}
		widths[i] = w
	}

	// Column gaps widen so a label between adjacent lifelines fits
	// between the two lifelines with 10px to spare on each side.
	gaps := make([]float64, len(d.Participants))
	colIndex := map[string]int{}
	for i, part := range d.Participants {
		colIndex[part.ID] = i
	}
	for i := range gaps {
		gaps[i] = baseColGap
	}
	for _, it := range d.Items {
		if it.Kind != ItemMessage || it.Msg.SelfMessage() {
			continue
		}
		a, b := colIndex[it.Msg.From], colIndex[it.Msg.To]
		if a > b {
			a, b = b, a
		}
		if b-a != 1 {
			continue
		}
		lw, _ := metrics.MeasureLines(it.Msg.Label, seqFontSize, labelHeight, false)
		need := lw + 20 - widths[a]/2 - widths[b]/2
		if need > gaps[b] {
			gaps[b] = need
		}
	}

	x := padding
	for i, part := range d.Participants {
		if i > 0 {
			x += gaps[i]
		}
		p.colX[part.ID] = x + widths[i]/2
		p.colW[part.ID] = widths[i]
		x += widths[i]
	}
	rightmost := x

	p.boxTop = padding
	p.lifelineTop = padding + boxHeight
	y := p.lifelineTop + headGap

	var open []openBlock
	active := map[string][]float64{}
	var prevMsg *Message

	widen := func(x float64) {
		for i := range open {
			if x < open[i].minX {
				open[i].minX = x
			}
			if x > open[i].maxX {
				open[i].maxX = x
			}
		}
	}

	for i, it := range d.Items {
		switch it.Kind {
		case ItemMessage:
			advance := float64(rowAdvance)
			if prevMsg != nil && prevMsg.From == it.Msg.To && prevMsg.To == it.Msg.From && !it.Msg.SelfMessage() {
				// Cycle rule: two opposite arrows between the same pair
				// keep their labels apart by at least 2·label-height + 4.
				if min := 2*float64(labelHeight) + 4 + 2; advance < min {
					advance = min
				}
			}
			y += advance
			p.rowY[i] = y
			widen(p.colX[it.Msg.From])
			widen(p.colX[it.Msg.To])
			if it.Msg.SelfMessage() {
				y += selfLoopH
				lw, _ := metrics.MeasureLines(it.Msg.Label, seqFontSize, labelHeight, false)
				if ext := p.colX[it.Msg.From] + selfLoopW + lw + 16; ext > rightmost {
					rightmost = ext
				}
			}
			if it.Msg.Activate {
				active[it.Msg.To] = append(active[it.Msg.To], p.rowY[i])
			}
			if it.Msg.Deactivate {
				p.closeBar(active, it.Msg.From, p.rowY[i])
			}
			prevMsg = it.Msg
		case ItemBlockStart:
			y += blockStartAdvance
			p.rowY[i] = y
			open = append(open, openBlock{item: i, top: y, minX: rightmost, maxX: padding})
		case ItemDivider:
			y += dividerAdvance
			p.rowY[i] = y
			if len(open) > 0 {
				top := &open[len(open)-1]
				top.dividers = append(top.dividers, divider{y: y, label: it.DividerLabel})
			}
		case ItemBlockEnd:
			y += blockEndAdvance
			p.rowY[i] = y
			if len(open) > 0 {
				ob := open[len(open)-1]
				open = open[:len(open)-1]
				start := d.Items[ob.item]
				minX, maxX := ob.minX, ob.maxX
				if minX > maxX {
					minX, maxX = padding, rightmost
				}
				rect := gfx.Rect{X: minX - 30, Y: ob.top, W: maxX - minX + 60, H: y - ob.top}
				// Nested blocks widen their parents too.
				widen(rect.X)
				widen(rect.Right())
				p.blocks = append(p.blocks, placedBlock{
					kind: start.BlockKind, label: start.BlockLabel, rect: rect, dividers: ob.dividers,
				})
			}
		case ItemNote:
			y += noteAdvance
			p.rowY[i] = y
			for _, id := range it.Note.Participants {
				widen(p.colX[id])
			}
			nw, _ := metrics.MeasureLines(it.Note.Text, seqFontSize-1, labelHeight, false)
			nw += 2 * notePad
			if it.Note.Position == NoteRightOf {
				if ext := p.colX[it.Note.Participants[0]] + 16 + nw; ext > rightmost {
					rightmost = ext
				}
			}
		case ItemActivate:
			p.rowY[i] = y
			active[it.Target] = append(active[it.Target], y)
		case ItemDeactivate:
			p.rowY[i] = y
			p.closeBar(active, it.Target, y)
		}
	}

	p.lifelineBottom = y + headGap
	// Bars still open at the end run to the lifeline bottom. Walk in
	// participant order so the emitted bar order is deterministic.
	for _, part := range d.Participants {
		for _, top := range active[part.ID] {
			p.bars = append(p.bars, gfx.Rect{
				X: p.colX[part.ID] - activationWidth/2, Y: top,
				W: activationWidth, H: p.lifelineBottom - top,
			})
		}
	}

	p.width = rightmost + padding
	p.height = p.lifelineBottom + padding
	return p
}

// closeBar pops the most recent activation for id into a finished bar.
func (p *placement) closeBar(active map[string][]float64, id string, bottom float64) {
	starts := active[id]
	if len(starts) == 0 {
		return
	}
	top := starts[len(starts)-1]
	active[id] = starts[:len(starts)-1]
	p.bars = append(p.bars, gfx.Rect{
		X: p.colX[id] - activationWidth/2, Y: top,
		W: activationWidth, H: bottom - top,
	})
}

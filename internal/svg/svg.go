// Package svg builds the SVG document skeleton every family renderer
// shares: the root element carrying the theme's user-facing variables, the
// <style> block with font imports and the derived color-mix lattice, and a
// <defs> section for reusable markers. Families append their fragments in
// a fixed back-to-front order and call String once.
package svg

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/inkboard/diagram/internal/gfx"
	"github.com/inkboard/diagram/theme"
)

// Config describes one document's envelope.
type Config struct {
	Width, Height float64
	Colors        theme.Colors
	Font          string
	Transparent   bool
	// NeedsMono pulls in the JetBrains Mono import for class member rows
	// and ER attribute rows.
	NeedsMono bool
}

// Doc accumulates a single SVG document.
type Doc struct {
	b strings.Builder
}

// New opens a document: root element, style block, and the opening <defs>
// tag is NOT written here — call Defs if the family has markers.
func New(cfg Config) *Doc {
	d := &Doc{}

	w := ceilInt(cfg.Width)
	h := ceilInt(cfg.Height)

	style := theme.StyleAttr(cfg.Colors)
	if !cfg.Transparent {
		style += ";background:var(--bg)"
	}
	fmt.Fprintf(&d.b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d" style="%s">`,
		w, h, w, h, style)

	d.b.WriteString("<style>")
	fmt.Fprintf(&d.b, "@import url('https://fonts.googleapis.com/css2?family=%s:wght@400;500;600;700&amp;display=swap');",
		fontURLName(cfg.Font))
	if cfg.NeedsMono {
		d.b.WriteString("@import url('https://fonts.googleapis.com/css2?family=JetBrains+Mono:wght@400;500&amp;display=swap');")
	}
	fmt.Fprintf(&d.b, "text{font-family:'%s',sans-serif;}", cfg.Font)
	if cfg.NeedsMono {
		d.b.WriteString(".mono{font-family:'JetBrains Mono',monospace;}")
	}
	d.b.WriteString("svg{")
	d.b.WriteString(theme.DerivedBlock(cfg.Colors))
	d.b.WriteString("}")
	d.b.WriteString("</style>")

	return d
}

// Defs writes a <defs> section containing the given marker fragments.
func (d *Doc) Defs(markers ...string) {
	if len(markers) == 0 {
		return
	}
	d.b.WriteString("<defs>")
	for _, m := range markers {
		d.b.WriteString(m)
	}
	d.b.WriteString("</defs>")
}

// Writef appends a formatted fragment.
func (d *Doc) Writef(format string, args ...any) {
	fmt.Fprintf(&d.b, format, args...)
}

// Write appends a raw fragment.
func (d *Doc) Write(s string) {
	d.b.WriteString(s)
}

// String closes the root element and returns the finished document.
func (d *Doc) String() string {
	d.b.WriteString("</svg>")
	return d.b.String()
}

// CenteredText writes a text element centred on (x, y). Multi-line labels
// split at '\n' into successive <tspan> rows spaced by lineHeight, with
// the block vertically centred on y. attrs, when non-empty, is appended
// raw into the opening tag (leading space included by the caller).
func (d *Doc) CenteredText(x, y, fontSize, lineHeight float64, text, fill, attrs string) {
	lines := strings.Split(text, "\n")
	if len(lines) == 1 {
		d.Writef(`<text x="%s" y="%s" text-anchor="middle" dy="0.32em" font-size="%s" fill="%s"%s>%s</text>`,
			Num(x), Num(y), Num(fontSize), fill, attrs, gfx.EscapeText(text))
		return
	}
	top := y - lineHeight*float64(len(lines)-1)/2
	d.Writef(`<text x="%s" y="%s" text-anchor="middle" dy="0.32em" font-size="%s" fill="%s"%s>`,
		Num(x), Num(top), Num(fontSize), fill, attrs)
	for i, line := range lines {
		dy := "0.32em"
		if i > 0 {
			dy = Num(lineHeight)
		}
		d.Writef(`<tspan x="%s" dy="%s">%s</tspan>`, Num(x), dy, gfx.EscapeText(line))
	}
	d.Write("</text>")
}

func ceilInt(v float64) int {
	i := int(math.Ceil(v))
	if i < 1 {
		i = 1
	}
	return i
}

func fontURLName(family string) string {
	return strings.ReplaceAll(family, " ", "+")
}

// Num formats a coordinate without a trailing ".0" so output stays stable
// and compact regardless of whether the value happens to be integral.
func Num(v float64) string {
	// Round to 2 decimal places first: layout math can produce values like
	// 139.99999999999997 that would otherwise leak float noise into the
	// output and break byte-identical determinism across refactors.
	r := math.Round(v*100) / 100
	return strconv.FormatFloat(r, 'f', -1, 64)
}

// Points formats an "x,y x,y …" polyline points attribute value.
func Points(pts gfx.Polyline) string {
	var b strings.Builder
	for i, p := range pts {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(Num(p.X))
		b.WriteByte(',')
		b.WriteString(Num(p.Y))
	}
	return b.String()
}

// Label draws an edge label backed by a rounded-rectangle pill: pill
// width = measured label width + 8, height = font size + 6, rx = 2,
// centred on the anchor point.
func (d *Doc) Label(x, y, textWidth, fontSize float64, text, fill string) {
	pw := textWidth + 8
	ph := fontSize + 6
	d.Writef(`<rect x="%s" y="%s" width="%s" height="%s" rx="2" fill="%s"/>`,
		Num(x-pw/2), Num(y-ph/2), Num(pw), Num(ph), fill)
	d.Writef(`<text x="%s" y="%s" text-anchor="middle" dy="0.32em" font-size="%s" fill="var(--_text-sec)">%s</text>`,
		Num(x), Num(y), Num(fontSize), gfx.EscapeText(text))
}

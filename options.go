package diagram

import (
	"github.com/inkboard/diagram/ascii"
	"github.com/inkboard/diagram/class"
	"github.com/inkboard/diagram/er"
	"github.com/inkboard/diagram/flow"
	"github.com/inkboard/diagram/layout"
	"github.com/inkboard/diagram/sequence"
	"github.com/inkboard/diagram/theme"
)

// RenderOptions configures Render. Every field is optional;
// zero values fall back to the documented defaults.
type RenderOptions struct {
	Bg           string
	Fg           string
	Line         string
	Accent       string
	Muted        string
	Surface      string
	Border       string
	Font         string
	Padding      float64
	NodeSpacing  float64
	LayerSpacing float64
	Transparent  bool
}

func (o RenderOptions) withDefaults() RenderOptions {
	if o.Bg == "" {
		o.Bg = "#FFFFFF"
	}
	if o.Fg == "" {
		o.Fg = "#27272A"
	}
	if o.Font == "" {
		o.Font = "Inter"
	}
	if o.Padding == 0 {
		o.Padding = 40
	}
	if o.NodeSpacing == 0 {
		o.NodeSpacing = 24
	}
	if o.LayerSpacing == 0 {
		o.LayerSpacing = 40
	}
	return o
}

func (o RenderOptions) colors() theme.Colors {
	return theme.Colors{
		Bg:      o.Bg,
		Fg:      o.Fg,
		Line:    o.Line,
		Accent:  o.Accent,
		Muted:   o.Muted,
		Surface: o.Surface,
		Border:  o.Border,
	}
}

func (o RenderOptions) toFlow() flow.Options {
	return flow.Options{
		Colors:       o.colors(),
		Font:         o.Font,
		Padding:      o.Padding,
		NodeSpacing:  o.NodeSpacing,
		LayerSpacing: o.LayerSpacing,
		Transparent:  o.Transparent,
	}
}

func (o RenderOptions) toSequence() sequence.Options {
	return sequence.Options{
		Colors:      o.colors(),
		Font:        o.Font,
		Padding:     o.Padding,
		Transparent: o.Transparent,
	}
}

func (o RenderOptions) toClass() class.Options {
	return class.Options{
		Colors:       o.colors(),
		Font:         o.Font,
		Padding:      o.Padding,
		NodeSpacing:  nonZero(o.NodeSpacing, 40),
		LayerSpacing: nonZero(o.LayerSpacing, 60),
		Transparent:  o.Transparent,
	}
}

func (o RenderOptions) toER() er.Options {
	return er.Options{
		Colors:       o.colors(),
		Font:         o.Font,
		Padding:      o.Padding,
		NodeSpacing:  nonZero(o.NodeSpacing, 70),
		LayerSpacing: nonZero(o.LayerSpacing, 90),
		Transparent:  o.Transparent,
	}
}

func nonZero(v, fallback float64) float64 {
	if v == 0 {
		return fallback
	}
	return v
}

// AsciiOptions configures RenderASCII.
type AsciiOptions struct {
	UseASCII         bool
	PaddingX         int
	PaddingY         int
	BoxBorderPadding int
	GraphDirection   layout.Direction
}

func (o AsciiOptions) toAscii() ascii.Options {
	if o.PaddingX == 0 {
		o.PaddingX = 5
	}
	if o.PaddingY == 0 {
		o.PaddingY = 5
	}
	if o.BoxBorderPadding == 0 {
		o.BoxBorderPadding = 1
	}
	return ascii.Options{
		UseASCII:         o.UseASCII,
		PaddingX:         o.PaddingX,
		PaddingY:         o.PaddingY,
		BoxBorderPadding: o.BoxBorderPadding,
		Direction:        o.GraphDirection,
	}
}

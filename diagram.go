// Package diagram renders Mermaid-dialect diagram source into SVG (or a
// plain-text ASCII/Unicode canvas). Render and RenderASCII are the only
// entry points a caller needs; everything else is parsing and layout
// machinery reached through them.
package diagram

import (
	"strings"

	"github.com/inkboard/diagram/ascii"
	"github.com/inkboard/diagram/class"
	"github.com/inkboard/diagram/diagramerr"
	"github.com/inkboard/diagram/er"
	"github.com/inkboard/diagram/flow"
	"github.com/inkboard/diagram/sequence"
)

// Family identifies which diagram grammar a source string dispatches to.
type Family int

const (
	FamilyFlow Family = iota
	FamilySequence
	FamilyClass
	FamilyER
)

func (f Family) String() string {
	switch f {
	case FamilySequence:
		return "sequence"
	case FamilyClass:
		return "class"
	case FamilyER:
		return "er"
	default:
		return "flow"
	}
}

// Detect reads the trimmed first non-blank, non-comment line and reports
// which family it dispatches to. An unrecognised header,
// including "graph", "flowchart" and "stateDiagram-v2", routes to flow.
func Detect(source string) Family {
	for _, line := range strings.Split(source, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "%%") {
			continue
		}
		switch strings.ToLower(trimmed) {
		case "sequencediagram":
			return FamilySequence
		case "classdiagram":
			return FamilyClass
		case "erdiagram":
			return FamilyER
		}
		// Headers carry trailing direction/title tokens ("classDiagram"
		// never does, but guard anyway for a leading word match).
		fields := strings.Fields(trimmed)
		if len(fields) > 0 {
			switch strings.ToLower(fields[0]) {
			case "sequencediagram":
				return FamilySequence
			case "classdiagram":
				return FamilyClass
			case "erdiagram":
				return FamilyER
			}
		}
		return FamilyFlow
	}
	return FamilyFlow
}

// Render parses source per Detect's dispatch and renders a self-contained
// SVG document. A fatal parse, layout, or invariant error is returned and
// no partial SVG is produced.
func Render(source string, opts RenderOptions) (string, error) {
	opts = opts.withDefaults()

	switch Detect(source) {
	case FamilySequence:
		diag, err := sequence.Parse(source)
		if err != nil {
			return "", err
		}
		return sequence.Render(diag, opts.toSequence())
	case FamilyClass:
		diag, err := class.Parse(source)
		if err != nil {
			return "", err
		}
		return class.Render(diag, opts.toClass())
	case FamilyER:
		diag, err := er.Parse(source)
		if err != nil {
			return "", err
		}
		return er.Render(diag, opts.toER())
	default:
		diag, err := flow.Parse(source)
		if err != nil {
			return "", err
		}
		return flow.Render(diag, opts.toFlow())
	}
}

// RenderASCII parses source and renders a plain-text orthogonal canvas
// using the ASCII/Unicode renderer. Only the flow
// family is supported; other families return a RenderInvariantKind error.
func RenderASCII(source string, opts AsciiOptions) (string, error) {
	if Detect(source) != FamilyFlow {
		return "", diagramerr.Invariant("ascii renderer only supports flow diagrams")
	}
	diag, err := flow.Parse(source)
	if err != nil {
		return "", err
	}
	return ascii.Render(diag, opts.toAscii())
}

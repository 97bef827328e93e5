// Package diagramerr defines the fatal error taxonomy a render can return.
// Non-fatal parse warnings (a malformed or unrecognised line) never reach
// this package: they are discarded internally by the parser that found
// them.
package diagramerr

import (
	"fmt"

	"github.com/inkboard/diagram/token"
)

// Kind discriminates the fatal error classes a render can raise.
type Kind int

const (
	// ParseErrorKind signals a fatal grammar violation, e.g. a cyclic
	// subgraph or an unbalanced class/entity body.
	ParseErrorKind Kind = iota
	// LayoutErrorKind signals a programmer-visible layout invariant
	// violation, e.g. a box with negative dimensions or an edge that
	// references a node the parser could not materialise.
	LayoutErrorKind
	// RenderInvariantKind signals a rendering contract violation caught
	// by an assertion, e.g. a diagonal glyph in ASCII output or a label
	// anchor that drifted off its polyline.
	RenderInvariantKind
)

func (k Kind) String() string {
	switch k {
	case ParseErrorKind:
		return "ParseError"
	case LayoutErrorKind:
		return "LayoutError"
	case RenderInvariantKind:
		return "RenderInvariantViolation"
	default:
		return "UnknownError"
	}
}

// Error is the single error type returned by a fatal render failure. It
// carries the discriminator Kind so callers can branch on failure class
// without string matching, plus an optional source Position.
type Error struct {
	Kind Kind
	Msg  string
	Pos  token.Position
}

func (e *Error) Error() string {
	if e.Pos.IsZero() {
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
	return fmt.Sprintf("%s at %s: %s", e.Kind, e.Pos, e.Msg)
}

// Parse builds a ParseErrorKind error.
func Parse(pos token.Position, format string, args ...any) error {
	return &Error{Kind: ParseErrorKind, Msg: fmt.Sprintf(format, args...), Pos: pos}
}

// Layout builds a LayoutErrorKind error.
func Layout(format string, args ...any) error {
	return &Error{Kind: LayoutErrorKind, Msg: fmt.Sprintf(format, args...)}
}

// Invariant builds a RenderInvariantKind error.
func Invariant(format string, args ...any) error {
	return &Error{Kind: RenderInvariantKind, Msg: fmt.Sprintf(format, args...)}
}

// As reports whether err is a *Error of the given Kind.
func As(err error, kind Kind) bool {
	de, ok := err.(*Error)
	return ok && de.Kind == kind
}

// Package token defines the small positional type shared by every diagram
// family's parser, used to tag parse warnings and fatal parse errors with a
// source location.
package token

import "fmt"

// Position is a one-indexed line/column location in a diagram's source text.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// IsZero reports whether the position was never set.
func (p Position) IsZero() bool {
	return p.Line == 0 && p.Column == 0
}

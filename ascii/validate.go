package ascii

import "strings"

// diagonalGlyphs are the characters the output contract forbids outside
// node-label interiors.
const diagonalGlyphs = `/\╱╲`

// Span is a rectangular character region, used to exclude node-label
// interiors from diagonal validation.
type Span struct {
	X, Y, W, H int
}

func (s Span) contains(x, y int) bool {
	return x >= s.X && x < s.X+s.W && y >= s.Y && y < s.Y+s.H
}

// Violation reports one forbidden glyph: zero-indexed line and column
// plus the offending character.
type Violation struct {
	Line int
	Col  int
	Char rune
}

// CheckDiagonalFree scans rendered output for diagonal glyphs outside
// the excluded spans. An empty result means the invariant holds.
func CheckDiagonalFree(output string, exclude []Span) []Violation {
	var violations []Violation
	for lineNo, line := range strings.Split(output, "\n") {
		col := 0
		for _, r := range line {
			if strings.ContainsRune(diagonalGlyphs, r) && !excluded(exclude, col, lineNo) {
				violations = append(violations, Violation{Line: lineNo, Col: col, Char: r})
			}
			col++
		}
	}
	return violations
}

func excluded(spans []Span, x, y int) bool {
	for _, s := range spans {
		if s.contains(x, y) {
			return true
		}
	}
	return false
}

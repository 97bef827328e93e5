// Package theme derives the CSS custom-property lattice: a small set of user-facing colours expands, via CSS
// color-mix fallbacks, into the derived variables every SVG recipe
// references. The renderer never computes a derived colour itself — it
// writes the color-mix expressions once into a <style> block, which is
// what lets a consumer repaint a mounted SVG by mutating --bg/--fg.
package theme

import (
	"fmt"
	"strings"
)

// Colors is the user-facing theme record. Bg and Fg are required;
// everything else is optional and falls back to a color-mix expression.
type Colors struct {
	Bg      string
	Fg      string
	Line    string
	Accent  string
	Muted   string
	Surface string
	Border  string
}

// Default returns the built-in light palette.
func Default() Colors {
	return Colors{Bg: "#FFFFFF", Fg: "#27272A"}
}

// derivedVar names one N% color-mix(fg into bg) derivation, plus
// which optional user override (if any) replaces the mix expression.
type derivedVar struct {
	name     string
	percent  int
	override func(Colors) string
}

var derivedVars = []derivedVar{
	{name: "--_text", percent: 100},
	{name: "--_text-sec", percent: 60, override: func(c Colors) string { return c.Muted }},
	{name: "--_text-muted", percent: 40, override: func(c Colors) string { return c.Muted }},
	{name: "--_text-faint", percent: 25},
	{name: "--_line", percent: 30, override: func(c Colors) string { return c.Line }},
	{name: "--_arrow", percent: 50, override: func(c Colors) string { return c.Accent }},
	{name: "--_node-fill", percent: 3, override: func(c Colors) string { return c.Surface }},
	{name: "--_node-stroke", percent: 20, override: func(c Colors) string { return c.Border }},
	{name: "--_group-hdr", percent: 5},
	{name: "--_inner-stroke", percent: 12},
	{name: "--_key-badge", percent: 10},
}

// UserVars returns the user-facing CSS variable declarations the caller
// supplied, in a fixed, deterministic order: the root element exposes
// exactly the variables the caller set.
func UserVars(c Colors) []string {
	var vars []string
	add := func(name, value string) {
		if value != "" {
			vars = append(vars, fmt.Sprintf("%s:%s", name, value))
		}
	}
	add("--bg", c.Bg)
	add("--fg", c.Fg)
	add("--line", c.Line)
	add("--accent", c.Accent)
	add("--muted", c.Muted)
	add("--surface", c.Surface)
	add("--border", c.Border)
	return vars
}

// StyleAttr renders the inline style attribute value for the <svg> root,
// e.g. "--bg:#FFFFFF;--fg:#27272A".
func StyleAttr(c Colors) string {
	return strings.Join(UserVars(c), ";")
}

// DerivedBlock renders the CSS custom-property declarations for every
// derived variable, using a color-mix(in srgb, var(--fg) N%,
// var(--bg)) fallback, or the literal override value when the caller set
// the corresponding optional colour.
func DerivedBlock(c Colors) string {
	var b strings.Builder
	for _, dv := range derivedVars {
		var value string
		if dv.override != nil {
			value = dv.override(c)
		}
		if value == "" {
			value = fmt.Sprintf("color-mix(in srgb, var(--fg) %d%%, var(--bg))", dv.percent)
		}
		fmt.Fprintf(&b, "%s:%s;", dv.name, value)
	}
	return b.String()
}

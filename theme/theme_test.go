package theme_test

import (
	"strings"
	"testing"

	"github.com/inkboard/diagram/theme"
	"github.com/teleivo/assertive/assert"
)

func TestStyleAttr(t *testing.T) {
	tests := map[string]struct {
		in   theme.Colors
		want string
	}{
		"DefaultsOnly": {
			in:   theme.Colors{Bg: "#FFFFFF", Fg: "#27272A"},
			want: "--bg:#FFFFFF;--fg:#27272A",
		},
		"Overridden": {
			in:   theme.Colors{Bg: "#18181B", Fg: "#FAFAFA"},
			want: "--bg:#18181B;--fg:#FAFAFA",
		},
		"WithAccent": {
			in:   theme.Colors{Bg: "#FFFFFF", Fg: "#000000", Accent: "#FF0000"},
			want: "--bg:#FFFFFF;--fg:#000000;--accent:#FF0000",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			got := theme.StyleAttr(test.in)
			assert.EqualValues(t, got, test.want, "StyleAttr(%+v)", test.in)
		})
	}
}

func TestDerivedBlockUsesColorMixByDefault(t *testing.T) {
	got := theme.DerivedBlock(theme.Default())

	assert.True(t, strings.Contains(got, "--_text:color-mix(in srgb, var(--fg) 100%, var(--bg))"), "identity var")
	assert.True(t, strings.Contains(got, "--_node-fill:color-mix(in srgb, var(--fg) 3%, var(--bg))"), "node fill var")
	assert.True(t, strings.Contains(got, "--_key-badge:color-mix(in srgb, var(--fg) 10%, var(--bg))"), "key badge var")
}

func TestDerivedBlockHonoursOverrides(t *testing.T) {
	c := theme.Colors{Bg: "#FFF", Fg: "#000", Accent: "#F00", Muted: "#888", Line: "#CCC", Surface: "#EEE", Border: "#DDD"}
	got := theme.DerivedBlock(c)

	assert.True(t, strings.Contains(got, "--_arrow:#F00;"), "accent overrides --_arrow")
	assert.True(t, strings.Contains(got, "--_text-sec:#888;"), "muted overrides --_text-sec")
	assert.True(t, strings.Contains(got, "--_line:#CCC;"), "line overrides --_line")
	assert.True(t, strings.Contains(got, "--_node-fill:#EEE;"), "surface overrides --_node-fill")
	assert.True(t, strings.Contains(got, "--_node-stroke:#DDD;"), "border overrides --_node-stroke")
}

func TestDeterminism(t *testing.T) {
	c := theme.Colors{Bg: "#111", Fg: "#222", Accent: "#333"}
	a := theme.DerivedBlock(c)
	b := theme.DerivedBlock(c)
	assert.EqualValues(t, a, b, "DerivedBlock should be deterministic")
}

func TestNamedPalettes(t *testing.T) {
	names := theme.PaletteNames()
	assert.True(t, len(names) > 0, "registry should not be empty")

	c, ok := theme.Named("tokyo-night")
	assert.True(t, ok, "tokyo-night should be registered")
	assert.EqualValues(t, c.Bg, "#1a1b26", "tokyo-night bg")

	_, ok = theme.Named("does-not-exist")
	assert.False(t, ok, "unknown theme key should not be found")
}

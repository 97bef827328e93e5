package theme

import (
	_ "embed"
	"fmt"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed palettes.yaml
var palettesYAML []byte

type paletteEntry struct {
	Bg     string `yaml:"bg"`
	Fg     string `yaml:"fg"`
	Line   string `yaml:"line"`
	Accent string `yaml:"accent"`
	Muted  string `yaml:"muted"`
}

var (
	once     sync.Once
	registry map[string]paletteEntry
)

func loadRegistry() {
	once.Do(func() {
		var raw map[string]paletteEntry
		if err := yaml.Unmarshal(palettesYAML, &raw); err != nil {
			panic(fmt.Sprintf("theme: embedded palette registry is invalid: %v", err))
		}
		registry = raw
	})
}

// Named looks up a palette by its registry key (e.g. "tokyo-night"). The
// boolean result reports whether the key exists.
func Named(key string) (Colors, bool) {
	loadRegistry()
	e, ok := registry[key]
	if !ok {
		return Colors{}, false
	}
	return Colors{Bg: e.Bg, Fg: e.Fg, Line: e.Line, Accent: e.Accent, Muted: e.Muted}, true
}

// PaletteNames returns every registered theme key in sorted order so
// consumers (and the CLI's `themes` subcommand) can enumerate them
// deterministically.
func PaletteNames() []string {
	loadRegistry()
	names := make([]string, 0, len(registry))
	for k := range registry {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

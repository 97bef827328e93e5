package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/inkboard/diagram/theme"
)

var themesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List the named themes in the palette registry",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		for _, name := range theme.PaletteNames() {
			colors, _ := theme.Named(name)
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", name, colors.Bg, colors.Fg)
		}
		return w.Flush()
	},
}

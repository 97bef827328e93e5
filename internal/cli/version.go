package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/inkboard/diagram/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the diagramctl version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.Version())
	},
}

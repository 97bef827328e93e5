package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/inkboard/diagram"
	"github.com/inkboard/diagram/layout"
)

var renderCmd = &cobra.Command{
	Use:   "render [file]",
	Short: "Render a diagram source file (or stdin) to SVG or text",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRender,
}

func init() {
	renderCmd.Flags().StringP("out", "o", "", "output file (default stdout)")
	renderCmd.Flags().Bool("ascii", false, "render a plain-text canvas instead of SVG")
	renderCmd.Flags().Bool("ascii-charset", false, "use the pure-ASCII charset instead of Unicode box drawing")
	renderCmd.Flags().String("direction", "", "ASCII graph direction override (LR or RL); empty or TD follows the source")
}

func runRender(cmd *cobra.Command, args []string) error {
	source, err := readSource(args)
	if err != nil {
		return err
	}

	asciiMode, _ := cmd.Flags().GetBool("ascii")
	outPath, _ := cmd.Flags().GetString("out")

	var output string
	if asciiMode {
		useASCII, _ := cmd.Flags().GetBool("ascii-charset")
		direction, _ := cmd.Flags().GetString("direction")
		output, err = diagram.RenderASCII(source, diagram.AsciiOptions{
			UseASCII:       useASCII,
			GraphDirection: layout.DirectionFromString(direction),
		})
	} else {
		var opts diagram.RenderOptions
		opts, err = renderOptions()
		if err != nil {
			return err
		}
		output, err = diagram.Render(source, opts)
	}
	if err != nil {
		return err
	}

	if outPath != "" {
		return os.WriteFile(outPath, []byte(output), 0o644)
	}

	// Dumping raw SVG into an interactive terminal is rarely what the
	// caller wants; mention the flag that redirects it.
	if !asciiMode && term.IsTerminal(int(os.Stdout.Fd())) {
		_, _ = fmt.Fprintln(os.Stderr, "writing SVG to a terminal; use -o to write a file")
	}
	_, err = io.WriteString(os.Stdout, output)
	return err
}

func readSource(args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %v", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", err
	}
	return string(data), nil
}

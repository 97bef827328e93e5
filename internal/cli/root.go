// Package cli implements the diagramctl CLI commands.
package cli

import (
	"fmt"
	"os"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/inkboard/diagram"
	"github.com/inkboard/diagram/theme"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "diagramctl",
	Short: "Render Mermaid-dialect diagrams to SVG or plain text",
	Long: `diagramctl renders Mermaid-dialect diagram source (flowcharts, state,
sequence, class, and ER diagrams) into self-contained, themeable SVG
documents, or into a plain-text canvas with the ASCII renderer.

Examples:
  diagramctl render flow.mmd
  diagramctl render --theme tokyo-night flow.mmd -o flow.svg
  diagramctl render --ascii flow.mmd
  diagramctl watch flow.mmd
  diagramctl themes`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		printError(err)
	}
	return err
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.diagramctl.yaml)")
	rootCmd.PersistentFlags().String("theme", "", "named theme from the palette registry")
	rootCmd.PersistentFlags().String("bg", "", "background colour (overrides the theme)")
	rootCmd.PersistentFlags().String("fg", "", "foreground colour (overrides the theme)")
	rootCmd.PersistentFlags().String("font", "", "font family for SVG output")
	rootCmd.PersistentFlags().Float64("padding", 0, "outer canvas padding in pixels")
	rootCmd.PersistentFlags().Bool("transparent", false, "omit the background on the <svg> root")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	for _, flag := range []string{"theme", "bg", "fg", "font", "padding", "transparent", "debug"} {
		_ = viper.BindPFlag(flag, rootCmd.PersistentFlags().Lookup(flag))
	}
	viper.SetEnvPrefix("DIAGRAMCTL")
	viper.AutomaticEnv()

	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(themesCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.SetConfigName(".diagramctl")
			viper.SetConfigType("yaml")
		}
	}
	// A missing config file is fine; flags and env still apply.
	_ = viper.ReadInConfig()
}

// renderOptions resolves the effective render options: named theme first,
// then explicit colour flags on top.
func renderOptions() (diagram.RenderOptions, error) {
	var opts diagram.RenderOptions

	if name := viper.GetString("theme"); name != "" {
		colors, ok := theme.Named(name)
		if !ok {
			return opts, fmt.Errorf("unknown theme %q, run 'diagramctl themes' for the registry", name)
		}
		opts.Bg = colors.Bg
		opts.Fg = colors.Fg
		opts.Line = colors.Line
		opts.Accent = colors.Accent
		opts.Muted = colors.Muted
	}
	if bg := viper.GetString("bg"); bg != "" {
		opts.Bg = bg
	}
	if fg := viper.GetString("fg"); fg != "" {
		opts.Fg = fg
	}
	if font := viper.GetString("font"); font != "" {
		opts.Font = font
	}
	if padding := viper.GetFloat64("padding"); padding != 0 {
		opts.Padding = padding
	}
	opts.Transparent = viper.GetBool("transparent")
	return opts, nil
}

// printError writes a diagnostic to stderr, coloured red when stderr is
// a supporting terminal.
func printError(err error) {
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		out := colorable.NewColorableStderr()
		_, _ = fmt.Fprintf(out, "\x1b[31merror:\x1b[0m %v\n", err)
		return
	}
	_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
}

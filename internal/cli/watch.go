package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/inkboard/diagram/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Serve a diagram file as SVG with live reload on change",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().String("port", "8355", "HTTP server port")
}

func runWatch(cmd *cobra.Command, args []string) error {
	opts, err := renderOptions()
	if err != nil {
		return err
	}
	port, _ := cmd.Flags().GetString("port")

	wa, err := watch.New(watch.Config{
		File:    args[0],
		Port:    port,
		Options: opts,
		Debug:   viper.GetBool("debug"),
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return wa.Watch(ctx)
}

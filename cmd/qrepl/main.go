package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kobzarvs/qrepl/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "qrepl:", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts app.Options
	cmd := &cobra.Command{
		Use:           "qrepl",
		Short:         "Inline REPL with live syntax highlighting",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.New(opts).Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&opts.ConfigHome, "config-home", "", "config directory (default $QREPL_CONFIG_HOME or ~/.config/qrepl)")
	cmd.Flags().BoolVar(&opts.Debug, "debug", false, "log at debug level")
	cmd.Flags().StringVar(&opts.Backend, "backend", "", "terminal backend: inline or screen")
	cmd.Flags().StringVar(&opts.Evaluator, "evaluator", "", "evaluator: lua or exec")
	cmd.Flags().StringVarP(&opts.Language, "language", "l", "", "language from languages.toml")
	return cmd
}

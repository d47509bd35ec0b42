package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/raywall/fast-mock-server/pkg/engine"
)

func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Inicia o servidor no runtime configurado (local ou lambda)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, rootOpts.ConfigPath)
		},
	}
}

func runServe(ctx context.Context, source string) error {
	cfg, err := engine.Load(ctx, source)
	if err != nil {
		return err
	}

	srv, err := engine.NewMockServer(ctx, cfg)
	if err != nil {
		return err
	}
	defer srv.Close()

	return srv.Run(ctx)
}

package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/varunrmantri23/nexacode"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the session reaper",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	app, err := nexacode.New(cfg, nexacode.WithLogger(logger))
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Stop(); err != nil {
			logger.Warn("stop", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Dev {
		logger.Warn("dev mode: requests without a token act as the dev user")
	}
	return app.Run(ctx)
}

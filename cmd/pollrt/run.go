package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"pollrt/internal/app"
)

var (
	runConfig      string
	runStopTimeout time.Duration
)

func init() {
	runCmd.Flags().StringVarP(&runConfig, "config", "c", "./pollrt.yaml", "path to config (json, yaml or toml)")
	runCmd.Flags().DurationVar(&runStopTimeout, "stop-timeout", 10*time.Second, "upper bound for graceful shutdown")
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the configured jobs until they all complete",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		a, err := app.New(runConfig)
		if err != nil {
			return err
		}
		if err := a.Start(ctx); err != nil {
			_ = a.Stop(context.Background(), app.StopFatalError)
			return err
		}

		waitErr := a.Wait(ctx)
		reason := app.StopDrained
		switch {
		case ctx.Err() != nil:
			reason = app.StopSignal
			waitErr = nil
		case waitErr != nil && !errors.Is(waitErr, context.Canceled):
			reason = app.StopFatalError
		}

		renderSummary(cmd.OutOrStdout(), a.Snapshot(), reason)

		stopCtx, stopCancel := context.WithTimeout(context.Background(), runStopTimeout)
		defer stopCancel()
		if err := a.Stop(stopCtx, reason); err != nil && waitErr == nil {
			waitErr = err
		}
		return waitErr
	},
}

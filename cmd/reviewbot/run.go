package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"reviewbot/internal/app"
	logx "reviewbot/pkg/logx"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Poll the status API until interrupted (default)",
	Args:  cobra.NoArgs,
	RunE:  runDaemon,
}

func runDaemon(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := app.New(ctx, options())
	if err != nil {
		return err
	}
	if err := a.Start(ctx); err != nil {
		return err
	}

	reason := app.StopSignal
	select {
	case <-ctx.Done():
	case <-a.Done():
		reason = app.StopFatalError
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 45*time.Second)
	defer stopCancel()
	if err := a.Stop(stopCtx, reason); err != nil {
		a.Logger().Warn("stop incomplete", logx.Err(err))
	}
	if reason == app.StopFatalError {
		return a.Err()
	}
	return nil
}

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"reviewbot/internal/app"
)

var onceFrom int64

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Run a single poll cycle with fresh state and print the notices sent",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := options()
		opts.Cursor = onceFrom
		if opts.Cursor <= 0 {
			opts.Cursor = time.Now().Unix()
		}

		ctx := context.Background()
		a, err := app.New(ctx, opts)
		if err != nil {
			return err
		}
		defer a.Stop(ctx, app.StopOnceDone)

		out, sent := a.RunOnce(ctx)
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "cycle %s from_date=%d\n", out.CycleID, out.Cursor)
		if out.Err != nil {
			fmt.Fprintf(w, "failed at %s: %v\n", out.Stage, out.Err)
		}
		if len(sent) == 0 {
			fmt.Fprintln(w, "no notices sent")
		}
		for _, h := range sent {
			fmt.Fprintf(w, "[%s] %s\n", h.At.Format(time.RFC3339), h.Text)
		}
		if out.DeliveryErr != nil {
			return out.DeliveryErr
		}
		return nil
	},
}

func init() {
	onceCmd.Flags().Int64Var(&onceFrom, "from", 0, "from_date cursor in unix seconds (default now)")
}

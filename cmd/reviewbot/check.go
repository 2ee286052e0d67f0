package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"reviewbot/internal/app"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate settings and secrets without polling",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgm, cfg, err := app.LoadConfig(context.Background(), options())
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		src := cfgm.Path()
		if src == "" {
			src = "(built-in defaults)"
		}
		fmt.Fprintf(w, "settings: %s\n", src)
		fmt.Fprintf(w, "endpoint: %s\n", cfg.Source.Endpoint)
		fmt.Fprintf(w, "poll interval: %s (backoff %v)\n", cfg.Poll.Interval, cfg.Poll.Backoff.Enabled)
		fmt.Fprintf(w, "chat id: %d\n", cfg.Secrets.ChatID)
		if cfg.Journal != nil && cfg.Journal.Driver != "" {
			fmt.Fprintf(w, "journal: %s %s\n", cfg.Journal.Driver, cfg.Journal.Path)
		}
		fmt.Fprintln(w, "ok")
		return nil
	},
}

package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"reviewbot/internal/app"
	"reviewbot/internal/config"
	logx "reviewbot/pkg/logx"
)

var (
	cfgPath string
	envFile string
)

var rootCmd = &cobra.Command{
	Use:           "reviewbot",
	Short:         "Telegram notifications about homework review status changes",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runDaemon,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "optional settings file (.json, .yaml, .toml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file with the secrets (ignored when missing)")

	rootCmd.AddCommand(runCmd, onceCmd, checkCmd)
}

func options() app.Options {
	return app.Options{ConfigPath: cfgPath, EnvFile: envFile}
}

// logFatal writes a startup failure at the critical level to the console and
// the log file.
func logFatal(err error) {
	logs, log := app.BootLogging(cfgPath)
	defer logs.Close()
	log = log.With(logx.String("comp", "main"))

	var ce *config.ConfigurationError
	if errors.As(err, &ce) {
		log.Fatal("configuration error; poll loop not started", logx.Strs("missing", ce.Missing), logx.Err(err))
		return
	}
	log.Fatal("fatal", logx.Err(err))
}

// execute runs the command line and returns the process exit code.
func execute(args []string, stdout, stderr io.Writer) int {
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.Execute()
	if err == nil {
		return 0
	}
	var ce *config.ConfigurationError
	if errors.As(err, &ce) {
		logFatal(err)
	}
	fmt.Fprintln(stderr, "error:", err)
	return 1
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

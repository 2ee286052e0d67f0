package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"reviewbot/internal/config"
	"reviewbot/internal/notifier"
	"reviewbot/internal/poller"
	"reviewbot/internal/status"
	"reviewbot/internal/storage"
	telegram "reviewbot/internal/transport/telegram/adapter"
	logx "reviewbot/pkg/logx"
)

func mapLogging(cfg *config.Config) logx.Config {
	return logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	}
}

func mapJournal(cfg *config.Config) (storage.Config, bool, error) {
	if cfg == nil || cfg.Journal == nil {
		return storage.Config{}, false, nil
	}
	jc := cfg.Journal
	driver := strings.ToLower(strings.TrimSpace(jc.Driver))
	if driver == "" || driver == "none" {
		return storage.Config{}, false, nil
	}
	path := strings.TrimSpace(jc.Path)

	switch driver {
	case "file":
		return storage.Config{Driver: "file", Path: path}, true, nil
	case "sqlite", "sqlite3":
		if path == "" {
			return storage.Config{}, false, fmt.Errorf("journal.path is required when journal.driver=sqlite")
		}
		busy, err := config.ParseDurationOrDefault("journal.busy_timeout", jc.BusyTimeout, time.Second)
		if err != nil {
			return storage.Config{}, false, err
		}
		return storage.Config{Driver: driver, Path: path, BusyTimeout: busy}, true, nil
	default:
		return storage.Config{}, false, fmt.Errorf("unknown journal.driver: %s", jc.Driver)
	}
}

func mapPacing(cfg *config.Config) (poller.Cadence, poller.Backoff, error) {
	cad, err := poller.ParseCadence(cfg.Poll.Interval)
	if err != nil {
		return poller.Cadence{}, poller.Backoff{}, fmt.Errorf("poll.interval: %w", err)
	}
	maxWait, err := config.ParseDurationOrDefault("poll.backoff.max", cfg.Poll.Backoff.Max, time.Hour)
	if err != nil {
		return poller.Cadence{}, poller.Backoff{}, err
	}
	return cad, poller.Backoff{Enabled: cfg.Poll.Backoff.Enabled, Max: maxWait}, nil
}

func mapSource(cfg *config.Config) (status.ClientConfig, error) {
	timeout, err := config.ParseDurationOrDefault("source.timeout", cfg.Source.Timeout, 30*time.Second)
	if err != nil {
		return status.ClientConfig{}, err
	}
	endpoint := strings.TrimSpace(cfg.Source.Endpoint)
	if endpoint == "" {
		endpoint = status.DefaultEndpoint
	}
	return status.ClientConfig{
		Endpoint: endpoint,
		Token:    cfg.Secrets.PracticumToken,
		Timeout:  timeout,
	}, nil
}

func mapTelegram(cfg *config.Config) (telegram.Config, error) {
	timeout, err := config.ParseDurationOrDefault("telegram.send_timeout", cfg.Telegram.SendTimeout, 15*time.Second)
	if err != nil {
		return telegram.Config{}, err
	}
	return telegram.Config{
		Token:   cfg.Secrets.TelegramToken,
		APIURL:  strings.TrimSpace(cfg.Telegram.APIURL),
		Timeout: timeout,
	}, nil
}

func mapNotifier(cfg *config.Config) (notifier.Config, error) {
	timeout, err := config.ParseDurationOrDefault("telegram.send_timeout", cfg.Telegram.SendTimeout, 15*time.Second)
	if err != nil {
		return notifier.Config{}, err
	}
	return notifier.Config{
		ChatID:      cfg.Secrets.ChatID,
		ThreadID:    cfg.Telegram.ThreadID,
		SendTimeout: timeout,
		RatePerSec:  cfg.Telegram.RatePerSec,
	}, nil
}

// validateConfig runs before a config is committed, both at startup and on reload.
func validateConfig(_ context.Context, cfg *config.Config) error {
	if _, _, err := mapPacing(cfg); err != nil {
		return err
	}
	if _, _, err := mapJournal(cfg); err != nil {
		return err
	}
	if _, err := mapSource(cfg); err != nil {
		return err
	}
	_, err := mapNotifier(cfg)
	return err
}

// BootLogging builds the logger used before (or instead of) a running App:
// the settings file's logging section when it parses, the defaults otherwise.
// Either way the file sink is on unless the settings disable it.
func BootLogging(configPath string) (*logx.Service, logx.Logger) {
	cfg := config.Default()
	if p := strings.TrimSpace(configPath); p != "" {
		if parsed, err := config.NewManager(p).Parse(); err == nil {
			cfg = parsed
		}
	}
	return logx.New(mapLogging(cfg))
}

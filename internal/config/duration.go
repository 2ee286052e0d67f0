package config

import (
	"fmt"
	"strings"
	"time"

	logx "reviewbot/pkg/logx"
)

func ParseDurationField(path, raw string) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", path, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: duration must be >= 0", path)
	}
	return d, nil
}

func ParseDurationOrDefault(path, raw string, def time.Duration) (time.Duration, error) {
	d, err := ParseDurationField(path, raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return def, nil
	}
	return d, nil
}

// Validate checks the static parts of a config. The poll interval syntax is
// checked by the validator hook installed on the Manager.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	for _, f := range []struct{ path, raw string }{
		{"source.timeout", cfg.Source.Timeout},
		{"telegram.send_timeout", cfg.Telegram.SendTimeout},
		{"poll.backoff.max", cfg.Poll.Backoff.Max},
	} {
		if _, err := ParseDurationField(f.path, f.raw); err != nil {
			return err
		}
	}
	if strings.TrimSpace(cfg.Poll.Interval) == "" {
		return fmt.Errorf("poll.interval is required")
	}
	if _, err := logx.ParseLevel(cfg.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	if cfg.Telegram.RatePerSec < 0 {
		return fmt.Errorf("telegram.rate_per_sec must be >= 0")
	}
	if cfg.Journal != nil {
		if _, err := ParseDurationField("journal.busy_timeout", cfg.Journal.BusyTimeout); err != nil {
			return err
		}
	}
	return nil
}

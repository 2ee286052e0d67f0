package config

import (
	"reflect"
	"strings"

	logx "reviewbot/pkg/logx"
)

// SummarizeChange returns the sections that differ between two configs and
// safe structured fields for logging. Secrets are never compared or logged.
func SummarizeChange(oldCfg, newCfg *Config) ([]string, []logx.Field) {
	if oldCfg == nil {
		oldCfg = &Config{}
	}
	if newCfg == nil {
		newCfg = &Config{}
	}

	changed := make([]string, 0, 5)
	fields := make([]logx.Field, 0, 8)

	if oldCfg.Source != newCfg.Source {
		changed = append(changed, "source")
		fields = append(fields, logx.String("source.endpoint", newCfg.Source.Endpoint), logx.String("source.timeout", newCfg.Source.Timeout))
	}
	if oldCfg.Telegram != newCfg.Telegram {
		changed = append(changed, "telegram")
		fields = append(fields, logx.Int("telegram.rate_per_sec", newCfg.Telegram.RatePerSec), logx.String("telegram.send_timeout", newCfg.Telegram.SendTimeout))
	}
	if oldCfg.Poll != newCfg.Poll {
		changed = append(changed, "poll")
		fields = append(fields, logx.String("poll.interval", strings.TrimSpace(newCfg.Poll.Interval)), logx.Bool("poll.backoff", newCfg.Poll.Backoff.Enabled))
	}
	if oldCfg.Logging != newCfg.Logging {
		changed = append(changed, "logging")
		fields = append(fields, logx.String("logging.level", newCfg.Logging.Level), logx.Bool("logging.file", newCfg.Logging.File.Enabled))
	}
	if !reflect.DeepEqual(oldCfg.Journal, newCfg.Journal) {
		changed = append(changed, "journal")
	}
	return changed, fields
}

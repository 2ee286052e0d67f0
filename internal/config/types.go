package config

// Config holds the non-secret settings (optionally read from a settings file)
// plus the secrets taken from the environment.
type Config struct {
	Source   SourceConfig   `json:"source"`
	Telegram TelegramConfig `json:"telegram"`
	Poll     PollConfig     `json:"poll"`
	Logging  LoggingConfig  `json:"logging"`
	Journal  *JournalConfig `json:"journal,omitempty"`

	// Secrets never come from the settings file and are never hashed or logged.
	Secrets Secrets `json:"-"`
}

// SourceConfig controls the status API client.
type SourceConfig struct {
	Endpoint string `json:"endpoint"`
	// Timeout is a Go duration string bounding one request (e.g. "30s").
	Timeout string `json:"timeout"`
}

// TelegramConfig controls notification delivery.
type TelegramConfig struct {
	// APIURL overrides the Bot API base URL (useful for a local Bot API server).
	APIURL      string `json:"api_url,omitempty"`
	SendTimeout string `json:"send_timeout"`
	RatePerSec  int    `json:"rate_per_sec"`
	// ThreadID targets a forum topic inside the chat (0 = none).
	ThreadID int `json:"thread_id,omitempty"`
}

// PollConfig controls the poll cadence.
//
// Interval accepts a Go duration ("10m"), "HH:MM", or a cron spec
// ("cron:*/10 * * * *", "@every 10m").
type PollConfig struct {
	Interval string        `json:"interval"`
	Backoff  BackoffConfig `json:"backoff"`
}

// BackoffConfig stretches the sleep after consecutive transport failures.
// Disabled by default: the cadence stays fixed regardless of outcome.
type BackoffConfig struct {
	Enabled bool   `json:"enabled"`
	Max     string `json:"max,omitempty"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// JournalConfig controls the optional notice journal.
//
// Example:
//
//	"journal": { "driver": "sqlite", "path": "./data/notices.db" }
type JournalConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // Go duration string (sqlite)
}

// Secrets are the three required credentials.
type Secrets struct {
	PracticumToken string
	TelegramToken  string
	ChatID         int64
}

// Default returns the built-in settings used when no settings file is given
// and as the base that a settings file overrides.
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			Endpoint: "https://practicum.yandex.ru/api/user_api/homework_statuses/",
			Timeout:  "30s",
		},
		Telegram: TelegramConfig{
			SendTimeout: "15s",
			RatePerSec:  1,
		},
		Poll: PollConfig{
			Interval: "10m",
			Backoff:  BackoffConfig{Max: "1h"},
		},
		Logging: LoggingConfig{
			Level:   "info",
			Console: true,
			File:    LoggingFile{Enabled: true, Path: "./reviewbot.log"},
		},
	}
}

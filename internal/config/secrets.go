package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables holding the secrets.
const (
	EnvPracticumToken = "PRACTICUM_TOKEN"
	EnvTelegramToken  = "TELEGRAM_TOKEN"
	EnvChatID         = "TELEGRAM_CHAT_ID"
)

// ConfigurationError is fatal: the poll loop never starts.
type ConfigurationError struct {
	Missing []string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing required environment variables: "+strings.Join(e.Missing, ", "))
	}
	if e.Reason != "" {
		parts = append(parts, e.Reason)
	}
	if len(parts) == 0 {
		return "invalid configuration"
	}
	return strings.Join(parts, "; ")
}

// LoadEnvFile loads KEY=VALUE pairs from path into the process environment.
// Variables already set win. A missing file is not an error.
func LoadEnvFile(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// SecretsFromEnv reads and checks the required secrets.
func SecretsFromEnv() (Secrets, error) {
	get := func(k string) string { return strings.TrimSpace(os.Getenv(k)) }

	var missing []string
	sec := Secrets{
		PracticumToken: get(EnvPracticumToken),
		TelegramToken:  get(EnvTelegramToken),
	}
	if sec.PracticumToken == "" {
		missing = append(missing, EnvPracticumToken)
	}
	if sec.TelegramToken == "" {
		missing = append(missing, EnvTelegramToken)
	}
	rawChat := get(EnvChatID)
	if rawChat == "" {
		missing = append(missing, EnvChatID)
	}
	if len(missing) > 0 {
		return Secrets{}, &ConfigurationError{Missing: missing}
	}

	chatID, err := strconv.ParseInt(rawChat, 10, 64)
	if err != nil || chatID == 0 {
		return Secrets{}, &ConfigurationError{Reason: fmt.Sprintf("%s must be a non-zero integer chat id", EnvChatID)}
	}
	sec.ChatID = chatID
	return sec, nil
}

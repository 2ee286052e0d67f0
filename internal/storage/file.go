package storage

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	logx "reviewbot/pkg/logx"
)

// fileJournal appends notices as JSON Lines.
type fileJournal struct {
	log logx.Logger

	mu   sync.Mutex
	file *os.File
}

func openFile(cfg Config, log logx.Logger) (Journal, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("journal.path is required for file driver")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, err
	}
	log.Debug("journal opened", logx.String("driver", "file"), logx.String("path", path))
	return &fileJournal{log: log, file: f}, nil
}

func (j *fileJournal) Append(ctx context.Context, n Notice) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if n.At.IsZero() {
		n.At = time.Now()
	}
	b, err := json.Marshal(n)
	if err != nil {
		return err
	}
	b = append(b, '\n')

	j.mu.Lock()
	defer j.mu.Unlock()
	if j.file == nil {
		return errors.New("journal file closed")
	}
	_, err = j.file.Write(b)
	return err
}

func (j *fileJournal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.file == nil {
		return nil
	}
	err := j.file.Close()
	j.file = nil
	return err
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	logx "reviewbot/pkg/logx"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS notices (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	at        TEXT    NOT NULL,
	cycle_id  TEXT,
	kind      TEXT    NOT NULL,
	key       TEXT,
	text      TEXT    NOT NULL,
	delivered INTEGER NOT NULL,
	err       TEXT
)`

type sqliteJournal struct {
	db  *sql.DB
	log logx.Logger
}

func openSQLite(cfg Config, log logx.Logger) (Journal, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	path := cfg.Path
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if cfg.BusyTimeout > 0 {
		_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.BusyTimeout.Milliseconds()))
	}
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	j, err := newSQLiteJournal(context.Background(), db, log)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Debug("journal opened", logx.String("driver", "sqlite"), logx.String("path", path))
	return j, nil
}

func newSQLiteJournal(ctx context.Context, db *sql.DB, log logx.Logger) (*sqliteJournal, error) {
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return nil, fmt.Errorf("migrate journal: %w", err)
	}
	return &sqliteJournal{db: db, log: log}, nil
}

func (s *sqliteJournal) Append(ctx context.Context, n Notice) error {
	if s == nil || s.db == nil {
		return ErrDisabled
	}
	if n.At.IsZero() {
		n.At = time.Now()
	}
	delivered := 0
	if n.Delivered {
		delivered = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notices(at, cycle_id, kind, key, text, delivered, err) VALUES(?,?,?,?,?,?,?)`,
		n.At.UTC().Format(time.RFC3339Nano), nullStr(n.CycleID), n.Kind, nullStr(n.Key), n.Text, delivered, nullStr(n.Error),
	)
	return err
}

func (s *sqliteJournal) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func nullStr(v string) any {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return v
}

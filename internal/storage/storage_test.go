package storage

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	logx "reviewbot/pkg/logx"
)

func TestOpenDisabled(t *testing.T) {
	t.Parallel()
	for _, driver := range []string{"", "none", " NONE "} {
		j, err := Open(Config{Driver: driver}, logx.Nop())
		if err != nil || j != nil {
			t.Fatalf("Open(%q) = %v, %v; want nil, nil", driver, j, err)
		}
	}
	if _, err := Open(Config{Driver: "postgres"}, logx.Nop()); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestFileJournalAppends(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "sub", "notices.jsonl")
	j, err := Open(Config{Driver: "file", Path: path}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	notices := []Notice{
		{At: at, CycleID: "c1", Kind: KindStatus, Key: "reviewing", Text: "taken", Delivered: true},
		{At: at, CycleID: "c2", Kind: KindError, Key: "fetch", Text: "boom", Error: "chat not found"},
	}
	for _, n := range notices {
		if err := j.Append(context.Background(), n); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	if err := j.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := j.Append(context.Background(), notices[0]); err == nil {
		t.Fatal("expected error appending to closed journal")
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	defer f.Close()
	var got []Notice
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var n Notice
		if err := json.Unmarshal(sc.Bytes(), &n); err != nil {
			t.Fatalf("decode line %q: %v", sc.Text(), err)
		}
		got = append(got, n)
	}
	if len(got) != 2 || got[0].Key != "reviewing" || got[1].Error != "chat not found" || got[1].Delivered {
		t.Fatalf("unexpected journal contents %+v", got)
	}
}

func TestSQLiteJournalInsert(t *testing.T) {
	t.Parallel()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS notices").WillReturnResult(sqlmock.NewResult(0, 0))
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectExec("INSERT INTO notices").
		WithArgs(at.Format(time.RFC3339Nano), "c1", KindStatus, "approved", "ok", 1, nil).
		WillReturnResult(sqlmock.NewResult(1, 1))

	j, err := newSQLiteJournal(context.Background(), db, logx.Nop())
	if err != nil {
		t.Fatalf("newSQLiteJournal: %v", err)
	}
	err = j.Append(context.Background(), Notice{At: at, CycleID: "c1", Kind: KindStatus, Key: "approved", Text: "ok", Delivered: true})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSQLiteJournalMigrateError(t *testing.T) {
	t.Parallel()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectExec("CREATE TABLE").WillReturnError(sql.ErrConnDone)
	if _, err := newSQLiteJournal(context.Background(), db, logx.Nop()); !errors.Is(err, sql.ErrConnDone) {
		t.Fatalf("newSQLiteJournal error = %v, want ErrConnDone", err)
	}
}

func TestSQLiteJournalOnDisk(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := Open(Config{Driver: "sqlite", Path: path, BusyTimeout: time.Second}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := j.Append(context.Background(), Notice{Kind: KindEmpty, Text: "nothing"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := j.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

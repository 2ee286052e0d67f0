package logx

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()
	tests := []struct {
		raw     string
		want    Level
		wantErr bool
	}{
		{raw: "debug", want: LevelDebug},
		{raw: " WARNING ", want: LevelWarn},
		{raw: "critical", want: LevelFatal},
		{raw: "", want: LevelInfo},
		{raw: "nonsense", want: LevelInfo, wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseLevel(%q) err = %v, wantErr %v", tt.raw, err, tt.wantErr)
		}
		if got != tt.want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestWriterLoggerFields(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := NewWriter(&buf, "debug").With(String("comp", "poller"))
	log.Info("cycle done", Int64("cursor", 42), Err(errors.New("boom")))

	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("decode log line: %v (%q)", err, buf.String())
	}
	if m["comp"] != "poller" || m["message"] != "cycle done" {
		t.Fatalf("unexpected log line: %v", m)
	}
	if m["cursor"] != float64(42) {
		t.Fatalf("cursor = %v, want 42", m["cursor"])
	}
	if _, ok := m["caller"]; !ok {
		t.Fatalf("expected caller field: %v", m)
	}
}

func TestFatalDoesNotExit(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	NewWriter(&buf, "info").Fatal("missing credentials")
	if !strings.Contains(buf.String(), `"level":"fatal"`) {
		t.Fatalf("expected fatal level line, got %q", buf.String())
	}
}

func TestServiceFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.log")
	svc, log := New(Config{Level: "info", File: FileConfig{Enabled: true, Path: path}})
	t.Cleanup(func() { _ = svc.Close() })

	log.Debug("hidden")
	log.Info("visible")

	svc.Apply(Config{Level: "debug", File: FileConfig{Enabled: true, Path: path}})
	log.Debug("now visible")

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	out := string(b)
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug line written at info level: %q", out)
	}
	if !strings.Contains(out, "visible") || !strings.Contains(out, "now visible") {
		t.Fatalf("missing lines in %q", out)
	}
}

func TestZeroLoggerIsNop(t *testing.T) {
	t.Parallel()
	var l Logger
	if !l.IsZero() {
		t.Fatal("zero logger should report IsZero")
	}
	l.Error("nothing happens")
}

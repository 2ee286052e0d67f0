package poller

import (
	"testing"
	"time"
)

func TestParseCadenceIntervals(t *testing.T) {
	t.Parallel()
	tests := []struct {
		raw  string
		want time.Duration
	}{
		{raw: "10m", want: 10 * time.Minute},
		{raw: " 90s ", want: 90 * time.Second},
		{raw: "00:10", want: 10 * time.Minute},
		{raw: "01:30", want: 90 * time.Minute},
	}
	for _, tt := range tests {
		c, err := ParseCadence(tt.raw)
		if err != nil {
			t.Fatalf("ParseCadence(%q): %v", tt.raw, err)
		}
		if got := c.Next(time.Now()); got != tt.want {
			t.Fatalf("ParseCadence(%q).Next = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestParseCadenceCron(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 5, 1, 12, 3, 0, 0, time.UTC)
	tests := []struct {
		raw  string
		want time.Duration
	}{
		{raw: "*/10 * * * *", want: 7 * time.Minute},
		{raw: "cron:0 * * * *", want: 57 * time.Minute},
		{raw: "@every 15m", want: 15 * time.Minute},
	}
	for _, tt := range tests {
		c, err := ParseCadence(tt.raw)
		if err != nil {
			t.Fatalf("ParseCadence(%q): %v", tt.raw, err)
		}
		if got := c.Next(now); got != tt.want {
			t.Fatalf("ParseCadence(%q).Next = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestParseCadenceInvalid(t *testing.T) {
	t.Parallel()
	for _, raw := range []string{"", "soon", "500ms", "00:00", "00:75", "cron:", "cron:61 * * * *"} {
		if _, err := ParseCadence(raw); err == nil {
			t.Fatalf("ParseCadence(%q) expected error", raw)
		}
	}
}

func TestBackoffApply(t *testing.T) {
	t.Parallel()
	b := Backoff{Enabled: true, Max: 10 * time.Minute}
	tests := []struct {
		failures int
		want     time.Duration
	}{
		{0, time.Minute},
		{1, time.Minute},
		{2, 2 * time.Minute},
		{4, 8 * time.Minute},
		{9, 10 * time.Minute},
	}
	for _, tt := range tests {
		if got := b.apply(time.Minute, tt.failures); got != tt.want {
			t.Fatalf("apply(1m, %d) = %v, want %v", tt.failures, got, tt.want)
		}
	}
	if got := (Backoff{}).apply(time.Minute, 5); got != time.Minute {
		t.Fatalf("disabled backoff changed sleep: %v", got)
	}
}

package poller

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultInterval is the fixed pause between cycles.
const DefaultInterval = 600 * time.Second

// Cadence decides how long the loop sleeps after a cycle.
//
// Supported forms:
//   - Interval duration: "10m", "90s"
//   - Interval HH:MM: "00:10" (10 minutes), "01:30"
//   - Cron: "*/10 * * * *", "@hourly", "@every 10m" (optionally prefixed with "cron:")
//
// An interval sleeps the same amount after every cycle; a cron cadence sleeps
// until the next activation time.
type Cadence struct {
	Raw   string
	Every time.Duration
	sched cron.Schedule
}

var reHHMM = regexp.MustCompile(`^\s*(\d{1,3}):(\d{2})\s*$`)

// Every returns a fixed-interval cadence.
func Every(d time.Duration) Cadence {
	if d <= 0 {
		d = DefaultInterval
	}
	return Cadence{Raw: d.String(), Every: d}
}

// ParseCadence parses a poll interval setting.
func ParseCadence(raw string) (Cadence, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Cadence{}, fmt.Errorf("poll interval required")
	}

	low := strings.ToLower(s)
	if strings.HasPrefix(low, "cron:") {
		return parseCron(raw, strings.TrimSpace(s[len("cron:"):]))
	}
	// any whitespace or leading '@' => cron
	if strings.ContainsAny(s, " \t") || strings.HasPrefix(s, "@") {
		return parseCron(raw, s)
	}

	if m := reHHMM.FindStringSubmatch(s); m != nil {
		hh, _ := strconv.Atoi(m[1])
		mm, _ := strconv.Atoi(m[2])
		if mm > 59 {
			return Cadence{}, fmt.Errorf("invalid minutes in %q", raw)
		}
		d := time.Duration(hh)*time.Hour + time.Duration(mm)*time.Minute
		if d <= 0 {
			return Cadence{}, fmt.Errorf("poll interval must be > 0")
		}
		return Cadence{Raw: s, Every: d}, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return Cadence{}, fmt.Errorf(
			"invalid poll interval %q (use a duration like '10m', HH:MM like '00:10', or cron like '*/10 * * * *')", raw)
	}
	if d < time.Second {
		return Cadence{}, fmt.Errorf("poll interval must be >= 1s")
	}
	return Cadence{Raw: s, Every: d}, nil
}

func parseCron(raw, expr string) (Cadence, error) {
	if expr == "" {
		return Cadence{}, fmt.Errorf("cron schedule required after 'cron:'")
	}
	sched, err := cron.ParseStandard(expr)
	if err != nil {
		return Cadence{}, fmt.Errorf("invalid cron poll interval %q: %w", raw, err)
	}
	return Cadence{Raw: expr, sched: sched}, nil
}

// Next returns how long to sleep when a cycle finished at now.
func (c Cadence) Next(now time.Time) time.Duration {
	if c.sched != nil {
		d := c.sched.Next(now).Sub(now)
		if d < time.Second {
			d = time.Second
		}
		return d
	}
	if c.Every > 0 {
		return c.Every
	}
	return DefaultInterval
}

// Backoff stretches the sleep after consecutive transport failures:
// the n-th failure in a row sleeps base*2^(n-1), capped at Max.
type Backoff struct {
	Enabled bool
	Max     time.Duration
}

func (b Backoff) apply(base time.Duration, failures int) time.Duration {
	if !b.Enabled || failures <= 1 || b.Max <= base {
		return base
	}
	d := base
	for i := 1; i < failures && d < b.Max; i++ {
		d *= 2
	}
	return min(d, b.Max)
}

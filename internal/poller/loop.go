package poller

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"reviewbot/internal/notifier"
	"reviewbot/internal/status"
	"reviewbot/internal/storage"
	logx "reviewbot/pkg/logx"
)

// emptyNotice is sent when the tracked homework leaves the list.
const emptyNotice = "Список работ на проверке пуст."

// Source fetches raw status snapshots.
type Source interface {
	Fetch(ctx context.Context, cursor int64) (status.RawSnapshot, error)
}

// Notifier delivers notices. A returned error is logged and never retried.
type Notifier interface {
	Notify(ctx context.Context, m notifier.Message) error
}

type Config struct {
	Cadence Cadence
	Backoff Backoff
	// Cursor is the first from_date. Zero means "now".
	Cursor int64
}

// pacing is swapped atomically on config reload.
type pacing struct {
	cadence Cadence
	backoff Backoff
}

// lastNotified remembers what the operator was last told.
type lastNotified struct {
	status    string
	hasStatus bool
	errText   string
	hasErr    bool
}

// Outcome describes one cycle.
type Outcome struct {
	CycleID string
	// Cursor is the from_date the cycle fetched with.
	Cursor int64
	Stage  Stage // empty on success
	Err    error
	// Notice is the text handed to the notifier ("" when suppressed or nothing changed).
	Notice      string
	DeliveryErr error
}

// Loop is the poll loop. Create it with New; run it with Run.
type Loop struct {
	src   Source
	notif Notifier
	log   logx.Logger

	pace atomic.Pointer[pacing]

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
	newID func() string

	// Written only by the goroutine running Run/Cycle; atomic so Cursor
	// can be read from elsewhere.
	cursor atomic.Int64

	// Owned by the goroutine running Run/Cycle.
	last              lastNotified
	transportFailures int

	cycles    atomic.Uint64
	lastCycle atomic.Int64 // unix nanos
}

type Option func(*Loop)

// WithClock replaces time.Now (tests).
func WithClock(now func() time.Time) Option { return func(l *Loop) { l.now = now } }

// WithSleeper replaces the context-aware sleep between cycles (tests).
func WithSleeper(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(l *Loop) { l.sleep = fn }
}

func New(cfg Config, src Source, notif Notifier, log logx.Logger, opts ...Option) *Loop {
	if log.IsZero() {
		log = logx.Nop()
	}
	l := &Loop{
		src:   src,
		notif: notif,
		log:   log,
		now:   time.Now,
		sleep: sleepCtx,
		newID: uuid.NewString,
	}
	for _, o := range opts {
		o(l)
	}
	if cfg.Cadence.Every <= 0 && cfg.Cadence.sched == nil {
		cfg.Cadence = Every(DefaultInterval)
	}
	l.pace.Store(&pacing{cadence: cfg.Cadence, backoff: cfg.Backoff})

	cursor := cfg.Cursor
	if cursor <= 0 {
		cursor = l.now().Unix()
	}
	l.cursor.Store(cursor)
	return l
}

// SetPacing swaps cadence and backoff. Safe to call from any goroutine;
// it takes effect at the next sleep.
func (l *Loop) SetPacing(c Cadence, b Backoff) {
	l.pace.Store(&pacing{cadence: c, backoff: b})
}

// Cursor returns the from_date of the next fetch.
func (l *Loop) Cursor() int64 { return l.cursor.Load() }

// Cycles returns the number of completed cycles.
func (l *Loop) Cycles() uint64 { return l.cycles.Load() }

// LastCycle returns when the last cycle completed (zero before the first one).
func (l *Loop) LastCycle() time.Time {
	ns := l.lastCycle.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

// Run cycles until ctx is done. Cancellation is observed only between cycles:
// a started cycle always runs to completion (each stage has its own timeout).
func (l *Loop) Run(ctx context.Context) error {
	l.log.Info("poll loop started", logx.Int64("cursor", l.Cursor()), logx.String("cadence", l.pace.Load().cadence.Raw))
	for {
		l.Cycle(context.WithoutCancel(ctx))

		wait := l.nextSleep()
		l.log.Debug("sleeping", logx.Duration("for", wait))
		if err := l.sleep(ctx, wait); err != nil {
			l.log.Info("poll loop stopped", logx.Int64("cursor", l.Cursor()), logx.Int64("cycles", int64(l.Cycles())))
			return err
		}
	}
}

// Cycle runs fetch → validate → translate → notify once.
func (l *Loop) Cycle(ctx context.Context) Outcome {
	out := Outcome{CycleID: l.newID(), Cursor: l.Cursor()}
	log := l.log.With(logx.String("cycle", out.CycleID))
	defer func() {
		l.cycles.Add(1)
		l.lastCycle.Store(l.now().UnixNano())
	}()

	raw, err := l.src.Fetch(ctx, out.Cursor)
	if err != nil {
		return l.failed(ctx, log, out, err)
	}
	res, err := status.Validate(raw)
	if err != nil {
		return l.failed(ctx, log, out, err)
	}

	if len(res.Homeworks) == 0 {
		out = l.onEmpty(ctx, log, out)
	} else {
		// Only the first homework is tracked.
		hw := res.Homeworks[0]
		text, err := status.Translate(hw)
		if err != nil {
			return l.failed(ctx, log, out, err)
		}
		out = l.onStatus(ctx, log, out, hw, text)
	}

	l.transportFailures = 0
	if res.CursorHint != nil {
		l.cursor.Store(*res.CursorHint)
	}
	log.Debug("cycle ok", logx.Int("homeworks", len(res.Homeworks)), logx.Int64("next_cursor", l.Cursor()))
	return out
}

func (l *Loop) onStatus(ctx context.Context, log logx.Logger, out Outcome, hw status.Homework, text string) Outcome {
	if l.last.hasStatus && l.last.status == hw.Status {
		log.Debug("status unchanged", logx.String("homework", hw.Name), logx.String("status", hw.Status))
		return out
	}
	log.Info("status changed",
		logx.String("homework", hw.Name),
		logx.String("from", l.last.status),
		logx.String("to", hw.Status),
	)
	l.last.status, l.last.hasStatus = hw.Status, true
	out.Notice = text
	out.DeliveryErr = l.deliver(ctx, log, notifier.Message{Text: text, Kind: storage.KindStatus, Key: hw.Status, CycleID: out.CycleID})
	return out
}

func (l *Loop) onEmpty(ctx context.Context, log logx.Logger, out Outcome) Outcome {
	prev, had := l.last.status, l.last.hasStatus
	l.last.status, l.last.hasStatus = status.StatusNone, true
	if !had || prev == status.StatusNone {
		// Startup with nothing under review is not a transition.
		log.Debug("no homework in the list")
		return out
	}
	log.Info("homework left the list", logx.String("from", prev))
	out.Notice = emptyNotice
	out.DeliveryErr = l.deliver(ctx, log, notifier.Message{Text: emptyNotice, Kind: storage.KindEmpty, Key: status.StatusNone, CycleID: out.CycleID})
	return out
}

func (l *Loop) failed(ctx context.Context, log logx.Logger, out Outcome, err error) Outcome {
	stage, transport := classify(err)
	if transport {
		l.transportFailures++
	} else {
		l.transportFailures = 0
	}
	out.Stage, out.Err = stage, err

	text := renderError(err)
	if l.last.hasErr && l.last.errText == text {
		log.Error("cycle failed (notification suppressed, unchanged error)", logx.String("stage", string(stage)), logx.Err(err))
		return out
	}
	log.Error("cycle failed", logx.String("stage", string(stage)), logx.Err(err))
	l.last.errText, l.last.hasErr = text, true
	out.Notice = text
	out.DeliveryErr = l.deliver(ctx, log, notifier.Message{Text: text, Kind: storage.KindError, Key: string(stage), CycleID: out.CycleID})
	return out
}

// deliver never lets a delivery failure escape the cycle.
func (l *Loop) deliver(ctx context.Context, log logx.Logger, m notifier.Message) error {
	if l.notif == nil {
		return nil
	}
	err := l.notif.Notify(ctx, m)
	if err != nil {
		log.Warn("notification lost", logx.String("kind", m.Kind), logx.Err(err))
	}
	return err
}

func (l *Loop) nextSleep() time.Duration {
	p := l.pace.Load()
	base := p.cadence.Next(l.now())
	return p.backoff.apply(base, l.transportFailures)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"reviewbot/internal/config"
	"reviewbot/internal/notifier"
	"reviewbot/internal/poller"
	"reviewbot/internal/runtime/supervisor"
	"reviewbot/internal/status"
	"reviewbot/internal/storage"
	kit "reviewbot/internal/transport"
	telegram "reviewbot/internal/transport/telegram/adapter"
	logx "reviewbot/pkg/logx"
	"reviewbot/pkg/systemd"
)

// Options selects the inputs of an App. Sender and Source replace the real
// Telegram adapter and status client when set.
type Options struct {
	ConfigPath string
	EnvFile    string
	// Cursor is the first from_date (0 = now).
	Cursor int64

	Sender kit.Sender
	Source poller.Source
}

type App struct {
	cfgm *config.Manager
	sup  *supervisor.Supervisor

	log  logx.Logger
	logs *logx.Service

	journal storage.Journal
	notif   *notifier.Service
	loop    *poller.Loop
}

// LoadConfig loads the env file, the optional settings file and the secrets.
// Any problem is returned as *config.ConfigurationError.
func LoadConfig(ctx context.Context, opts Options) (*config.Manager, *config.Config, error) {
	if err := config.LoadEnvFile(opts.EnvFile); err != nil {
		return nil, nil, &config.ConfigurationError{Reason: err.Error()}
	}
	cfgm := config.NewManager(strings.TrimSpace(opts.ConfigPath))
	cfgm.SetValidator(validateConfig)
	cfg, err := cfgm.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	return cfgm, cfg, nil
}

func New(ctx context.Context, opts Options) (*App, error) {
	cfgm, cfg, err := LoadConfig(ctx, opts)
	if err != nil {
		return nil, err
	}

	logSvc, log := logx.New(mapLogging(cfg))
	log = log.With(logx.String("comp", "app"))

	// Journal (optional)
	var journal storage.Journal
	if jc, enabled, err := mapJournal(cfg); err != nil {
		return nil, err
	} else if enabled {
		journal, err = storage.Open(jc, log.With(logx.String("comp", "journal")))
		if err != nil {
			return nil, fmt.Errorf("open journal: %w", err)
		}
		log.Info("notice journal enabled", logx.String("driver", jc.Driver), logx.String("path", jc.Path))
	}

	sender := opts.Sender
	if sender == nil {
		tc, err := mapTelegram(cfg)
		if err != nil {
			return nil, err
		}
		ad, err := telegram.New(tc, log.With(logx.String("comp", "telegram")))
		if err != nil {
			return nil, fmt.Errorf("telegram: %w", err)
		}
		sender = ad
	}

	ncfg, err := mapNotifier(cfg)
	if err != nil {
		return nil, err
	}
	notif := notifier.New(ncfg, sender, journal, log.With(logx.String("comp", "notifier")))

	src := opts.Source
	if src == nil {
		sc, err := mapSource(cfg)
		if err != nil {
			return nil, err
		}
		src = status.NewClient(sc, log.With(logx.String("comp", "status")))
	}

	cadence, backoff, err := mapPacing(cfg)
	if err != nil {
		return nil, err
	}
	loop := poller.New(poller.Config{Cadence: cadence, Backoff: backoff, Cursor: opts.Cursor},
		src, notif, log.With(logx.String("comp", "poller")))

	return &App{
		cfgm:    cfgm,
		log:     log,
		logs:    logSvc,
		journal: journal,
		notif:   notif,
		loop:    loop,
	}, nil
}

func (a *App) Logger() logx.Logger { return a.log }

func (a *App) Loop() *poller.Loop { return a.loop }

func (a *App) Notifier() *notifier.Service { return a.notif }

// Done is closed when the app supervisor context is canceled (fatal error or Stop()).
func (a *App) Done() <-chan struct{} {
	if a.sup == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return a.sup.Context().Done()
}

// Err returns the first error observed by the supervisor (if any), including
// a poll loop failure that was recovered by a restart.
func (a *App) Err() error {
	if a.sup == nil {
		return nil
	}
	return a.sup.Err()
}

// Start launches the poll loop, the config watcher and the systemd watchdog.
func (a *App) Start(ctx context.Context) error {
	if a.sup != nil {
		return fmt.Errorf("app already started")
	}
	a.sup = supervisor.New(ctx, supervisor.WithLogger(a.log), supervisor.WithCancelOnError(true))
	a.cfgm.SetLogger(a.log.With(logx.String("comp", "config")))
	startCursor := a.loop.Cursor()

	// A panic inside a cycle restarts the loop; cursor and last-notified state live on the Loop.
	a.sup.GoRestart("poll.loop", a.loop.Run,
		supervisor.WithRestartBackoff(time.Second, time.Minute),
		supervisor.WithStopOnCleanExit(true),
		supervisor.WithPublishFirstError(true),
	)

	if a.cfgm.Path() != "" {
		a.startReload()
		a.sup.GoRestart("config.watch", a.cfgm.Watch, supervisor.WithRestartBackoff(time.Second, 30*time.Second))
	}

	a.sup.Go0("systemd.watchdog", func(c context.Context) {
		systemd.Watchdog(c, a.log.With(logx.String("comp", "systemd")), func() bool {
			return a.sup.Active() > 1
		})
	})
	systemd.Ready(a.log)
	systemd.Status(a.log, "polling "+a.cfgm.Get().Poll.Interval)

	a.log.Info("app started",
		logx.Int64("chat_id", a.notif.Target().ChatID),
		logx.Int64("cursor", startCursor),
		logx.String("config", a.cfgm.Path()),
	)
	return nil
}

// startReload fans config updates out to the live components.
// Only logging and poll pacing are applied live; other sections need a restart.
func (a *App) startReload() {
	sub := a.cfgm.Subscribe(8)
	a.sup.Go0("config.reload", func(c context.Context) {
		defer a.cfgm.Unsubscribe(sub)
		lastApplied := a.cfgm.Get()
		for {
			select {
			case <-c.Done():
				return
			case newCfg, ok := <-sub:
				if !ok {
					return
				}
				// Coalesce bursts: keep only the latest config in the channel.
			drain:
				for {
					select {
					case newer := <-sub:
						if newer != nil {
							newCfg = newer
						}
					default:
						break drain
					}
				}
				a.applyConfig(lastApplied, newCfg)
				lastApplied = newCfg
			}
		}
	})
}

func (a *App) applyConfig(oldCfg, newCfg *config.Config) {
	sections, attrs := config.SummarizeChange(oldCfg, newCfg)
	if len(sections) == 0 {
		a.log.Info("config reloaded (no changes)")
		return
	}

	for _, s := range sections {
		switch s {
		case "source", "telegram", "journal":
			a.log.Warn("config section changed; restart required for changes to take effect", logx.String("section", s))
		}
	}

	a.logs.Apply(mapLogging(newCfg))

	cadence, backoff, err := mapPacing(newCfg)
	if err != nil {
		a.log.Warn("invalid poll config; keeping previous", logx.Err(err))
	} else {
		a.loop.SetPacing(cadence, backoff)
		systemd.Status(a.log, "polling "+newCfg.Poll.Interval)
	}

	fields := append([]logx.Field{logx.String("changed", strings.Join(sections, ","))}, attrs...)
	a.log.Info("config reloaded", fields...)
}

// RunOnce runs a single cycle without starting the supervisor.
func (a *App) RunOnce(ctx context.Context) (poller.Outcome, []notifier.HistoryItem) {
	out := a.loop.Cycle(ctx)
	return out, a.notif.History()
}

func (a *App) Stop(ctx context.Context, reason StopReason) error {
	a.log.Info("stopping", logx.String("reason", string(reason)))
	systemd.Stopping(a.log)

	var waitErr error
	if a.sup != nil {
		a.sup.Cancel()
		// An in-flight cycle finishes first; each of its stages is bounded by its own timeout.
		waitErr = a.sup.Wait(ctx)
		if waitErr != nil && ctx.Err() != nil {
			a.log.Warn("stop deadline reached before all goroutines exited", logx.Err(waitErr))
		}
	}
	if a.journal != nil {
		if err := a.journal.Close(); err != nil {
			a.log.Warn("journal close failed", logx.Err(err))
		}
	}

	a.log.Info("stopped", logx.Int64("cycles", int64(a.loop.Cycles())))
	if a.logs != nil {
		_ = a.logs.Close()
	}
	if ctx.Err() != nil {
		return waitErr
	}
	return nil
}

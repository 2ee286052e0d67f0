// Package systemd speaks the sd_notify protocol for Type=notify units.
// Every call is a no-op when the process was not started by systemd.
package systemd

import (
	"context"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"

	logx "reviewbot/pkg/logx"
)

// Ready reports that startup finished.
func Ready(log logx.Logger) bool { return notify(log, daemon.SdNotifyReady) }

// Stopping reports that shutdown began.
func Stopping(log logx.Logger) bool { return notify(log, daemon.SdNotifyStopping) }

// Status sets the free-form status line shown by `systemctl status`.
func Status(log logx.Logger, s string) bool { return notify(log, "STATUS="+s) }

func notify(log logx.Logger, state string) bool {
	sent, err := daemon.SdNotify(false, state)
	if err != nil {
		log.Warn("sd_notify failed", logx.String("state", state), logx.Err(err))
		return false
	}
	return sent
}

// WatchdogInterval returns the keep-alive period (half of WatchdogSec), or 0
// when the watchdog is not enabled for this process.
func WatchdogInterval() time.Duration {
	d, err := daemon.SdWatchdogEnabled(false)
	if err != nil || d <= 0 {
		return 0
	}
	return d / 2
}

// Watchdog pings systemd until ctx is done. healthy gates each ping so a
// stuck process is restarted by systemd.
func Watchdog(ctx context.Context, log logx.Logger, healthy func() bool) {
	every := WatchdogInterval()
	if every <= 0 {
		return
	}
	log.Debug("systemd watchdog enabled", logx.Duration("every", every))
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if healthy != nil && !healthy() {
				log.Warn("skipping watchdog ping: unhealthy")
				continue
			}
			notify(log, daemon.SdNotifyWatchdog)
		}
	}
}

package healthcheck

import (
	"context"
	"log/slog"
	"time"
)

// Pinger is satisfied by *devs.Fetcher.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Reporter receives every probe result. *metrics.Metrics implements it.
type Reporter interface {
	SetDatabaseUp(up bool)
}

// Run pings the database once right away and then every interval until ctx
// is cancelled. Every result goes to reporter; only the first result and
// later state transitions are logged.
func Run(
	ctx context.Context,
	pinger Pinger,
	interval time.Duration,
	reporter Reporter,
	logger *slog.Logger,
) {
	var (
		known   bool
		healthy bool
	)

	probe := func() {
		err := pinger.Ping(ctx)
		if ctx.Err() != nil {
			return
		}

		up := err == nil
		if reporter != nil {
			reporter.SetDatabaseUp(up)
		}

		first := !known
		changed := first || up != healthy
		known, healthy = true, up

		switch {
		case !changed:
		case up && first:
			logger.Info("Database is up")
		case up:
			logger.Info("Database is back up")
		default:
			logger.Warn("Database is down", slog.Any("err", err))
		}
	}

	probe()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Database probe stopped")
			return

		case <-ticker.C:
			probe()
		}
	}
}

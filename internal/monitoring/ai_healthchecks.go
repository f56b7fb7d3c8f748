package monitoring

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

const HEALTHCHECK_TIMER = 15 * time.Second

// Check reports whether a dependency is currently usable.
type Check func(ctx context.Context) bool

// MonitorHealth probes check every interval and stores the outcome in
// healthy until ctx is done. Each probe is bounded by the interval.
func MonitorHealth(ctx context.Context, name string, interval time.Duration, check Check, healthy *atomic.Bool) {
	if interval <= 0 {
		interval = HEALTHCHECK_TIMER
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			probe(ctx, name, interval, check, healthy)
		}
	}
}

func probe(ctx context.Context, name string, timeout time.Duration, check Check, healthy *atomic.Bool) {
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	isHealthy := check(probeCtx)
	was := healthy.Swap(isHealthy)

	switch {
	case !isHealthy && was:
		slog.Warn("[HealthCheck] Dependency became unhealthy", slog.String("name", name))
	case !isHealthy:
		slog.Debug("[HealthCheck] Dependency still unhealthy", slog.String("name", name))
	case !was:
		slog.Info("[HealthCheck] Dependency recovered", slog.String("name", name))
	}
}

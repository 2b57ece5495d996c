package health

import (
	"context"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/go-faster/errors"
)

// Pinger is anything with a context-aware ping, like a database pool or a
// redis client.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingCheck probes a dependency with its own ping. Intended as a readiness
// check for databases and caches.
func PingCheck(p Pinger) CheckFunc {
	return func(ctx context.Context) error {
		if err := p.Ping(ctx); err != nil {
			return errors.Wrap(err, "ping")
		}
		return nil
	}
}

// GoroutineCountCheck fails once the process holds more goroutines than
// threshold. Intended as a liveness check for goroutine leaks.
func GoroutineCountCheck(threshold int) CheckFunc {
	return func(_ context.Context) error {
		if n := runtime.NumGoroutine(); n > threshold {
			return errors.Errorf("%d goroutines, threshold %d", n, threshold)
		}
		return nil
	}
}

// GCMaxPauseCheck fails when the most recent stop-the-world pause exceeded
// threshold, which usually means the heap has grown past what the service
// can serve from. Recovers as soon as pauses shorten again.
func GCMaxPauseCheck(threshold time.Duration) CheckFunc {
	return func(_ context.Context) error {
		var stats debug.GCStats
		debug.ReadGCStats(&stats)

		// Pause is ordered newest first.
		if len(stats.Pause) > 0 && stats.Pause[0] > threshold {
			return errors.Errorf("last GC pause %s, threshold %s", stats.Pause[0], threshold)
		}
		return nil
	}
}

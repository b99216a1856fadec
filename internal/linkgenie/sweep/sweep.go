// Package sweep removes expired offline cache entries in the background.
package sweep

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"k8s.io/utils/clock"
)

// Sweeper deletes expired entries and reports how many were removed.
type Sweeper interface {
	SweepExpired(ctx context.Context) (int64, error)
}

// Start launches a background goroutine that periodically sweeps expired KV entries.
// It blocks until the context is cancelled.
func Start(ctx context.Context, s Sweeper, interval time.Duration) {
	StartWithClock(ctx, s, interval, clock.RealClock{})
}

// StartWithClock is Start with an injectable clock.
func StartWithClock(ctx context.Context, s Sweeper, interval time.Duration, clk clock.WithTicker) {
	ticker := clk.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			n, err := s.SweepExpired(ctx)
			if err != nil {
				log.Debug().Err(err).Msg("kv sweep failed")
				continue
			}
			if n > 0 {
				log.Debug().Int64("removed", n).Msg("kv sweep")
			}
		}
	}
}

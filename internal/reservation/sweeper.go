package reservation

import (
	"context"
	"log"
	"time"
)

// Sweeper periodically releases expired provisional holds so their
// seats become visible as available without waiting for a client to
// touch the affected show.  Lazy expiry inside the engine's own
// operations already guarantees correctness; the sweep bounds how
// long a dead hold can linger for read-only availability queries.
type Sweeper struct {
	store    Store
	interval time.Duration
}

// NewSweeper constructs a Sweeper.  Intervals above 30 seconds are
// clamped so expired holds never linger longer than half a minute.
func NewSweeper(store Store, interval time.Duration) *Sweeper {
	if interval <= 0 || interval > 30*time.Second {
		interval = 30 * time.Second
	}
	return &Sweeper{store: store, interval: interval}
}

// Run sweeps on the configured interval until the context is
// cancelled.  Errors are logged and the loop keeps going; a failed
// sweep only delays release until the next tick.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			released, err := s.store.ReleaseExpired(ctx, now.UTC())
			if err != nil {
				log.Printf("hold-sweeper: sweep failed: %v", err)
				continue
			}
			if released > 0 {
				log.Printf("hold-sweeper: released %d expired seat holds", released)
			}
		}
	}
}

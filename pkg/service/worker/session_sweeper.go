package worker

import (
	"context"
	"time"

	"github.com/medassist-dev/medassist/pkg/utils/logging"
)

// Sweeper evicts abandoned sessions. usecase.SessionRegistry implements it.
type Sweeper interface {
	Sweep(idleBefore time.Time) int
}

// SessionSweeper periodically drops idle sessions that have not been used for the TTL
//
// Architecture assumptions:
// - Sessions live in process memory of a single server instance
type SessionSweeper struct {
	sessions Sweeper
	interval time.Duration
	ttl      time.Duration
	now      func() time.Time
	stopCh   chan struct{}
	doneCh   chan struct{}
}

type SweeperOption func(*SessionSweeper)

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) SweeperOption {
	return func(w *SessionSweeper) {
		w.now = now
	}
}

func NewSessionSweeper(sessions Sweeper, interval, ttl time.Duration, opts ...SweeperOption) *SessionSweeper {
	w := &SessionSweeper{
		sessions: sessions,
		interval: interval,
		ttl:      ttl,
		now:      time.Now,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins the background sweep loop without blocking
func (w *SessionSweeper) Start(ctx context.Context) error {
	logging.Default().Info("Session sweeper starting",
		"interval", w.interval.String(),
		"ttl", w.ttl.String())

	go w.run(ctx)

	return nil
}

// Stop signals the worker to stop and waits for completion
func (w *SessionSweeper) Stop() {
	logging.Default().Info("Session sweeper stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("Session sweeper stopped")
}

func (w *SessionSweeper) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.sweep()

		case <-w.stopCh:
			logging.Default().Info("Session sweeper received stop signal")
			return

		case <-ctx.Done():
			logging.Default().Info("Session sweeper context cancelled")
			return
		}
	}
}

func (w *SessionSweeper) sweep() {
	removed := w.sessions.Sweep(w.now().Add(-w.ttl))
	if removed > 0 {
		logging.Default().Info("Idle sessions evicted", "count", removed)
	}
}

package worker_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/medassist-dev/medassist/pkg/repository/memory"
	"github.com/medassist-dev/medassist/pkg/service/worker"
	"github.com/medassist-dev/medassist/pkg/usecase"
)

type recordingSweeper struct {
	mu      sync.Mutex
	cutoffs []time.Time
}

func (r *recordingSweeper) Sweep(idleBefore time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cutoffs = append(r.cutoffs, idleBefore)
	return 0
}

func (r *recordingSweeper) calls() []time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Time(nil), r.cutoffs...)
}

func TestSessionSweeper_StartStop(t *testing.T) {
	rec := &recordingSweeper{}
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	w := worker.NewSessionSweeper(rec, 10*time.Millisecond, time.Minute, worker.WithClock(func() time.Time { return fixed }))

	gt.NoError(t, w.Start(context.Background())).Required()
	time.Sleep(50 * time.Millisecond)
	w.Stop()

	cutoffs := rec.calls()
	gt.Bool(t, len(cutoffs) > 0).True()
	gt.Value(t, cutoffs[0]).Equal(fixed.Add(-time.Minute))

	// no sweeps after Stop returns
	n := len(rec.calls())
	time.Sleep(30 * time.Millisecond)
	gt.Number(t, len(rec.calls())).Equal(n)
}

func TestSessionSweeper_ContextCancel(t *testing.T) {
	rec := &recordingSweeper{}
	w := worker.NewSessionSweeper(rec, time.Hour, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	gt.NoError(t, w.Start(ctx)).Required()
	cancel()

	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after context cancellation")
	}
}

func TestSessionSweeper_EvictsIdleSessions(t *testing.T) {
	uc := usecase.New(memory.New())
	id, _ := uc.Sessions.Create()

	future := time.Now().Add(2 * time.Hour)
	w := worker.NewSessionSweeper(uc.Sessions, 10*time.Millisecond, time.Hour, worker.WithClock(func() time.Time { return future }))
	gt.NoError(t, w.Start(context.Background())).Required()

	deadline := time.Now().Add(time.Second)
	for uc.Sessions.Len() > 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	w.Stop()

	_, err := uc.Sessions.Get(id)
	gt.Error(t, err).Is(usecase.ErrSessionNotFound)
}

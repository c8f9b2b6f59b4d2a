package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/mandate-sync/internal/usecase"
)

type countingRunner struct {
	mu    sync.Mutex
	calls int
}

func (r *countingRunner) RunPass(ctx context.Context) usecase.PassReport {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return usecase.PassReport{Records: r.calls}
}

func (r *countingRunner) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func TestPollWorkerOnceRunsExactlyOnePass(t *testing.T) {
	runner := &countingRunner{}
	var seen []usecase.PassReport
	w := NewPollWorker(runner, time.Hour, true, func(r usecase.PassReport) { seen = append(seen, r) })

	w.Start(context.Background())

	assert.Equal(t, 1, runner.count())
	require.Len(t, seen, 1)
	last, ok := w.LastReport()
	assert.True(t, ok)
	assert.Equal(t, 1, last.Records)
}

func TestPollWorkerRepeatsUntilCancelled(t *testing.T) {
	runner := &countingRunner{}
	w := NewPollWorker(runner, 10*time.Millisecond, false, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return runner.count() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}

func TestPollWorkerFirstPassIsImmediate(t *testing.T) {
	runner := &countingRunner{}
	w := NewPollWorker(runner, time.Hour, false, nil)

	_, ok := w.LastReport()
	assert.False(t, ok)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	assert.Eventually(t, func() bool { return runner.count() == 1 }, time.Second, 5*time.Millisecond)
}

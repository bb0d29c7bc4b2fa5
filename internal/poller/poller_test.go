package poller

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"votedesk/pkg/logger"
)

func TestTask_RunsImmediatelyAndRepeats(t *testing.T) {
	var runs atomic.Int32
	task := New("count", 10*time.Millisecond, func(context.Context) error {
		runs.Add(1)
		return nil
	}, logger.Nop())

	task.Start(context.Background())
	task.Start(context.Background())
	require.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, 5*time.Millisecond)

	task.Stop()
	assert.False(t, task.Running())
	stopped := runs.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, runs.Load())
}

func TestTask_StopCancelsInFlightRun(t *testing.T) {
	started := make(chan struct{})
	var once sync.Once
	var applied atomic.Bool

	run := Refresh(func(ctx context.Context) (string, error) {
		once.Do(func() { close(started) })
		<-ctx.Done()
		return "stale", nil
	}, func(string) { applied.Store(true) })

	task := New("slow", time.Hour, run, logger.Nop())
	task.Start(context.Background())
	<-started

	task.Stop()
	assert.False(t, applied.Load())
}

func TestTask_ParentContextStopsLoop(t *testing.T) {
	var runs atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	task := New("parent", 5*time.Millisecond, func(context.Context) error {
		runs.Add(1)
		return nil
	}, logger.Nop())

	task.Start(ctx)
	require.Eventually(t, func() bool { return runs.Load() >= 1 }, time.Second, time.Millisecond)
	cancel()
	task.Stop()
}

func TestRefresh_AppliesFreshValue(t *testing.T) {
	var got []int
	run := Refresh(func(context.Context) ([]int, error) { return []int{1, 2}, nil }, func(v []int) { got = v })

	require.NoError(t, run(context.Background()))
	assert.Equal(t, []int{1, 2}, got)
}

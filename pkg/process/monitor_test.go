package process

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blockingLister struct {
	calls   atomic.Int32
	release chan struct{}
}

func (b *blockingLister) List(ctx context.Context) ([]ProcessRecord, error) {
	b.calls.Add(1)
	select {
	case <-b.release:
	case <-ctx.Done():
	}
	return []ProcessRecord{{Name: "init", PID: "1"}}, nil
}

func TestMonitorSkipsOverlappingTicks(t *testing.T) {
	lister := &blockingLister{release: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())

	m := NewMonitor(lister, 5*time.Millisecond, nil)
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	require.Eventually(t, func() bool { return m.Skipped() >= 3 }, time.Second, time.Millisecond)
	assert.Equal(t, int32(1), lister.calls.Load())

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

type countingLister struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (c *countingLister) List(context.Context) ([]ProcessRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return []ProcessRecord{{Name: "p", PID: "1"}}, c.err
}

func TestMonitorDeliversSnapshots(t *testing.T) {
	listErr := errors.New("ps failed")
	lister := &countingLister{err: listErr}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	snapshots := make(chan Snapshot, 16)
	m := NewMonitor(lister, 5*time.Millisecond, func(s Snapshot) {
		select {
		case snapshots <- s:
		default:
		}
	})
	go m.Run(ctx)

	first := <-snapshots
	second := <-snapshots
	assert.ErrorIs(t, first.Err, listErr)
	assert.Len(t, first.Records, 1)
	assert.False(t, second.At.Before(first.At))
}

func TestMonitorDefaultInterval(t *testing.T) {
	m := NewMonitor(&countingLister{}, 0, nil)
	assert.Equal(t, DefaultRefreshInterval, m.interval)
}

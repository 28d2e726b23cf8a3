package process

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultRefreshInterval is the polling period when none is configured.
const DefaultRefreshInterval = 2 * time.Second

// ProcessLister is the listing side of Lister.
type ProcessLister interface {
	List(ctx context.Context) ([]ProcessRecord, error)
}

// Snapshot is one completed listing.
type Snapshot struct {
	Records []ProcessRecord
	Err     error
	At      time.Time
}

// Monitor polls a ProcessLister on a fixed interval. A tick that arrives
// while the previous listing is still running is skipped, so snapshots are
// always delivered in order and never overlap.
type Monitor struct {
	lister   ProcessLister
	interval time.Duration
	onUpdate func(Snapshot)

	running atomic.Bool
	skipped atomic.Int64
	wg      sync.WaitGroup
}

// NewMonitor creates a Monitor that calls onUpdate after every listing.
func NewMonitor(lister ProcessLister, interval time.Duration, onUpdate func(Snapshot)) *Monitor {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &Monitor{
		lister:   lister,
		interval: interval,
		onUpdate: onUpdate,
	}
}

// Run lists immediately, then on every tick until ctx is cancelled. It waits
// for an in-flight listing before returning ctx.Err().
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	defer m.wg.Wait()

	m.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			m.tick(ctx)
		}
	}
}

// Skipped returns how many ticks were dropped because a listing was running.
func (m *Monitor) Skipped() int64 {
	return m.skipped.Load()
}

func (m *Monitor) tick(ctx context.Context) {
	if !m.running.CompareAndSwap(false, true) {
		m.skipped.Add(1)
		return
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer m.running.Store(false)

		records, err := m.lister.List(ctx)
		if ctx.Err() != nil {
			return
		}
		if m.onUpdate != nil {
			m.onUpdate(Snapshot{Records: records, Err: err, At: time.Now()})
		}
	}()
}

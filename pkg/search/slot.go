package search

import (
	"sync"
	"time"
)

// Slot holds the latest search result. Every request takes a token from
// Begin; only the most recently issued token may Commit, so a slow stale
// search can never overwrite the result of a newer query.
type Slot struct {
	mu      sync.Mutex
	issued  uint64
	token   uint64
	current *Result
}

// Begin issues a new request token.
func (s *Slot) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return s.issued
}

// Commit stores result if token is still the newest issued token.
func (s *Slot) Commit(token uint64, result *Result) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.issued || token <= s.token {
		return false
	}
	s.token = token
	s.current = result
	return true
}

// Current returns the last committed result and its token.
func (s *Slot) Current() (*Result, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.token
}

// DefaultDebounce is the input quiet period before a live search starts.
const DefaultDebounce = 300 * time.Millisecond

// Debouncer runs only the last function triggered within its delay window.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	pending func()
	running sync.WaitGroup
}

// NewDebouncer creates a Debouncer; a non-positive delay uses DefaultDebounce.
func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{delay: delay}
}

// Trigger schedules fn, replacing any pending function.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = fn
	d.timer = time.AfterFunc(d.delay, d.fire)
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	fn := d.pending
	d.pending = nil
	if fn != nil {
		d.running.Add(1)
	}
	d.mu.Unlock()

	if fn != nil {
		defer d.running.Done()
		fn()
	}
}

// Flush runs the pending function immediately and waits until every
// function already started has returned.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	fn := d.pending
	d.pending = nil
	d.mu.Unlock()

	if fn != nil {
		fn()
	}
	d.running.Wait()
}

// Stop drops the pending function, if any.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = nil
}

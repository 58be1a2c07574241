package service

import (
	"sync"
	"time"
)

// BroadcastScheduler coalesces bursts of membership changes into a single
// snapshot emission: a trailing-edge debounce. Every Schedule cancels the
// pending timer and restarts the quiet period, so the last event in a burst
// triggers exactly one emission.
type BroadcastScheduler struct {
	mu    sync.Mutex
	timer *time.Timer
	delay time.Duration
	emit  func()
}

// NewBroadcastScheduler creates a scheduler that calls emit after delay of
// quiet.
func NewBroadcastScheduler(delay time.Duration, emit func()) *BroadcastScheduler {
	return &BroadcastScheduler{
		delay: delay,
		emit:  emit,
	}
}

// Schedule requests an emission after the debounce window. Safe to call from
// any goroutine; the mutex is the single owner of the timer handle, so a
// reschedule racing a concurrent fire is resolved here.
func (b *BroadcastScheduler) Schedule() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.delay, func() {
		b.mu.Lock()
		b.timer = nil
		b.mu.Unlock()
		b.emit()
	})
}

// Stop cancels any pending emission.
func (b *BroadcastScheduler) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}

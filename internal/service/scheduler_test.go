package service

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestSchedulerCoalescesBursts(t *testing.T) {
	var emissions int32
	s := NewBroadcastScheduler(20*time.Millisecond, func() {
		atomic.AddInt32(&emissions, 1)
	})
	defer s.Stop()

	// A burst of schedules within the window must collapse into exactly one
	// trailing-edge emission.
	for i := 0; i < 10; i++ {
		s.Schedule()
		time.Sleep(2 * time.Millisecond)
	}

	time.Sleep(100 * time.Millisecond)

	if n := atomic.LoadInt32(&emissions); n != 1 {
		t.Errorf("emissions = %d, want 1", n)
	}
}

func TestSchedulerEmitsAgainAfterQuiet(t *testing.T) {
	var emissions int32
	s := NewBroadcastScheduler(10*time.Millisecond, func() {
		atomic.AddInt32(&emissions, 1)
	})
	defer s.Stop()

	s.Schedule()
	time.Sleep(50 * time.Millisecond)
	s.Schedule()
	time.Sleep(50 * time.Millisecond)

	if n := atomic.LoadInt32(&emissions); n != 2 {
		t.Errorf("emissions = %d, want 2", n)
	}
}

func TestSchedulerStopCancelsPending(t *testing.T) {
	var emissions int32
	s := NewBroadcastScheduler(20*time.Millisecond, func() {
		atomic.AddInt32(&emissions, 1)
	})

	s.Schedule()
	s.Stop()

	time.Sleep(60 * time.Millisecond)

	if n := atomic.LoadInt32(&emissions); n != 0 {
		t.Errorf("emissions = %d, want 0 after Stop", n)
	}
}

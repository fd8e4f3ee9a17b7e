package playback

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestSleepTimerFires(t *testing.T) {
	var fired atomic.Int64
	s := newSleepTimer(func() { fired.Add(1) })

	s.Start(10 * time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	if fired.Load() != 1 {
		t.Errorf("fired = %d, want 1", fired.Load())
	}
	if s.Remaining() != 0 {
		t.Errorf("Remaining = %v after firing, want 0", s.Remaining())
	}
}

func TestSleepTimerCancel(t *testing.T) {
	var fired atomic.Int64
	s := newSleepTimer(func() { fired.Add(1) })

	s.Start(20 * time.Millisecond)
	s.Cancel()
	time.Sleep(50 * time.Millisecond)
	if fired.Load() != 0 {
		t.Errorf("fired = %d after cancel, want 0", fired.Load())
	}
	if s.Remaining() != 0 {
		t.Errorf("Remaining = %v after cancel, want 0", s.Remaining())
	}
}

func TestSleepTimerRestartSupersedes(t *testing.T) {
	var fired atomic.Int64
	s := newSleepTimer(func() { fired.Add(1) })

	s.Start(10 * time.Millisecond)
	s.Start(200 * time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	if fired.Load() != 0 {
		t.Errorf("fired = %d, want 0 (first timer superseded)", fired.Load())
	}
	if s.Remaining() == 0 {
		t.Error("Remaining should be positive while armed")
	}
	s.Cancel()
}

func TestSleepTimerRemainingCountsDown(t *testing.T) {
	s := newSleepTimer(func() {})
	s.Start(time.Minute)
	defer s.Cancel()

	r := s.Remaining()
	if r <= 0 || r > time.Minute {
		t.Errorf("Remaining = %v, want within (0, 1m]", r)
	}
}

package playback

import (
	"sync"
	"time"
)

// sleepTimer is a one-shot cancellable pause. At most one is active;
// re-arming supersedes the previous one.
type sleepTimer struct {
	mu      sync.Mutex
	timer   *time.Timer
	armedAt time.Time
	d       time.Duration
	fn      func()
}

func newSleepTimer(fn func()) *sleepTimer {
	return &sleepTimer{fn: fn}
}

// Start arms the timer, cancelling any existing one first.
func (s *sleepTimer) Start(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.armedAt = time.Now()
	s.d = d
	s.timer = time.AfterFunc(d, func() {
		s.mu.Lock()
		s.timer = nil
		s.d = 0
		s.mu.Unlock()
		s.fn()
	})
}

// Cancel disarms without side effects.
func (s *sleepTimer) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.d = 0
}

// Remaining returns how long until the timer fires, or 0 if disarmed.
func (s *sleepTimer) Remaining() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer == nil {
		return 0
	}
	remaining := s.d - time.Since(s.armedAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

package playback

import (
	"sync"
	"time"
)

// tickMode is the position ticker state machine: fast while playing, slow
// while paused with a current track, off when nothing is loaded.
type tickMode int

const (
	tickOff tickMode = iota
	tickFast
	tickSlow
)

// Default cadences.
const (
	defaultFastTick = 100 * time.Millisecond
	defaultSlowTick = 500 * time.Millisecond
)

// ticker is a best-effort periodic sampler. Switching cadence always
// cancels the previous timer before arming the new one, so at most one
// ticker goroutine is ever live.
type ticker struct {
	mu   sync.Mutex
	mode tickMode
	stop chan struct{}

	fast time.Duration
	slow time.Duration
	fn   func()
}

func newTicker(fast, slow time.Duration, fn func()) *ticker {
	if fast <= 0 {
		fast = defaultFastTick
	}
	if slow <= 0 {
		slow = defaultSlowTick
	}
	return &ticker{fast: fast, slow: slow, fn: fn}
}

// setMode transitions the cadence. A no-op if the mode is unchanged.
// It never waits for the old goroutine: stopping is signalled through the
// stop channel so this is safe to call while holding engine locks.
func (t *ticker) setMode(mode tickMode) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.mode == mode {
		return
	}
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
	t.mode = mode
	if mode == tickOff {
		return
	}

	interval := t.fast
	if mode == tickSlow {
		interval = t.slow
	}
	stop := make(chan struct{})
	t.stop = stop
	go t.run(interval, stop)
}

func (t *ticker) run(interval time.Duration, stop chan struct{}) {
	tick := time.NewTicker(interval)
	defer tick.Stop()
	for {
		select {
		case <-stop:
			return
		case <-tick.C:
			// Re-check after waking: a cadence switch may have landed
			// between the tick firing and this running.
			select {
			case <-stop:
				return
			default:
			}
			t.fn()
		}
	}
}

// shutdown stops any live timer.
func (t *ticker) shutdown() {
	t.setMode(tickOff)
}

package playback

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestTickerFiresInFastMode(t *testing.T) {
	var ticks atomic.Int64
	tk := newTicker(5*time.Millisecond, 50*time.Millisecond, func() { ticks.Add(1) })
	defer tk.shutdown()

	tk.setMode(tickFast)
	time.Sleep(60 * time.Millisecond)
	if ticks.Load() < 3 {
		t.Errorf("ticks = %d, want at least 3 in fast mode", ticks.Load())
	}
}

func TestTickerOffStopsFiring(t *testing.T) {
	var ticks atomic.Int64
	tk := newTicker(5*time.Millisecond, 50*time.Millisecond, func() { ticks.Add(1) })
	defer tk.shutdown()

	tk.setMode(tickFast)
	time.Sleep(30 * time.Millisecond)
	tk.setMode(tickOff)
	// Let in-flight ticks drain before sampling.
	time.Sleep(20 * time.Millisecond)
	n := ticks.Load()
	time.Sleep(50 * time.Millisecond)
	if got := ticks.Load(); got != n {
		t.Errorf("ticks advanced from %d to %d after tickOff", n, got)
	}
}

func TestTickerCadenceSwitch(t *testing.T) {
	var ticks atomic.Int64
	tk := newTicker(5*time.Millisecond, 500*time.Millisecond, func() { ticks.Add(1) })
	defer tk.shutdown()

	tk.setMode(tickSlow)
	time.Sleep(30 * time.Millisecond)
	if n := ticks.Load(); n != 0 {
		t.Errorf("ticks = %d before the slow interval elapsed, want 0", n)
	}

	tk.setMode(tickFast)
	time.Sleep(60 * time.Millisecond)
	if n := ticks.Load(); n < 3 {
		t.Errorf("ticks = %d after switching to fast, want at least 3", n)
	}
}

func TestTickerSetModeIdempotent(t *testing.T) {
	var ticks atomic.Int64
	tk := newTicker(5*time.Millisecond, 50*time.Millisecond, func() { ticks.Add(1) })
	defer tk.shutdown()

	// Re-arming the same mode must not reset or double the timer.
	tk.setMode(tickFast)
	tk.setMode(tickFast)
	tk.setMode(tickFast)
	time.Sleep(60 * time.Millisecond)
	n := ticks.Load()
	if n < 3 || n > 20 {
		t.Errorf("ticks = %d, want a single fast timer's worth", n)
	}
}

package playback

import (
	"sync"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/llehouerou/resona/internal/errmsg"
	"github.com/llehouerou/resona/internal/library"
	"github.com/llehouerou/resona/internal/store"
)

// supervisor tracks consecutive decoder-signal errors and gates
// (re)initialization so concurrent callers wait instead of racing.
type supervisor struct {
	mu        sync.Mutex
	count     int
	threshold int

	initializing bool
	cond         *sync.Cond
}

// reset clears the consecutive-error counter; called on every successful
// signal.
func (s *supervisor) reset() {
	s.mu.Lock()
	s.count = 0
	s.mu.Unlock()
}

// record counts an error. It reports the current count and whether the
// threshold was just crossed; crossing resets the counter, so exactly one
// reinitialization fires per run of failures.
func (s *supervisor) record() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count++
	if s.count >= s.threshold {
		n := s.count
		s.count = 0
		return n, true
	}
	return s.count, false
}

// onDecoderError is the failure path for decoder signals: log and count;
// transient errors never propagate to subscribers as crashes. At the
// threshold the decoder is torn down and rebuilt.
func (e *engine) onDecoderError(err error) {
	count, triggered := e.sup.record()
	zlog.Warn().Err(err).
		Int("count", count).
		Int("threshold", e.sup.threshold).
		Msg("decoder signal error")
	e.sendError(errmsg.OpDecoderSignal, err)

	if triggered {
		zlog.Error().Int("count", count).
			Msg("too many consecutive decoder errors, reinitializing")
		if rerr := e.initialize(); rerr != nil {
			zlog.Error().Err(rerr).Msg(string(errmsg.OpDecoderReset))
		}
	}
}

// initialize builds (or rebuilds) the decoder and restores engine state:
// settings, catalog, persisted queue. It is idempotent under concurrency:
// if an initialization is already in flight, callers block until it
// completes and then return without starting another.
func (e *engine) initialize() error {
	e.sup.mu.Lock()
	if e.sup.initializing {
		for e.sup.initializing {
			e.sup.cond.Wait()
		}
		e.sup.mu.Unlock()
		return nil
	}
	e.sup.initializing = true
	e.sup.mu.Unlock()
	defer func() {
		e.sup.mu.Lock()
		e.sup.initializing = false
		e.sup.cond.Broadcast()
		e.sup.mu.Unlock()
	}()

	dec, err := e.newDecoder()
	if err != nil {
		// Reinitialization failed: leave the engine clearly idle rather
		// than ambiguous.
		e.mu.Lock()
		old := e.dec
		e.dec = nil
		e.queue.Clear()
		e.playing = false
		e.optimistic = false
		e.position = 0
		e.duration = 0
		e.buffered = 0
		e.publishLocked()
		e.mu.Unlock()
		if old != nil {
			_ = old.Close()
		}
		zlog.Error().Err(err).Msg(string(errmsg.OpDecoderReset))
		return errors.Wrap(err, string(errmsg.OpDecoderReset))
	}

	settings, err := e.st.LoadSettings()
	if err != nil {
		zlog.Warn().Err(err).Msg(string(errmsg.OpSettingsLoad))
		def := store.DefaultSettings()
		settings = &def
	}
	catalog, err := e.st.AllTracks()
	if err != nil {
		zlog.Warn().Err(err).Msg("loading catalog")
	}

	var restored []library.Track
	restoredIndex := -1
	if snap, err := e.st.LoadQueue(); err != nil {
		zlog.Warn().Err(err).Msg(string(errmsg.OpQueueLoad))
	} else if len(snap.TrackIDs) > 0 {
		restored, err = e.st.TracksByIDs(snap.TrackIDs)
		if err != nil {
			zlog.Warn().Err(err).Msg(string(errmsg.OpQueueLoad))
		}
		restoredIndex = snap.CurrentIndex
	}

	e.mu.Lock()
	old := e.dec
	e.dec = dec
	e.catalog = catalog
	e.settings = *settings
	e.repeat = RepeatMode(settings.RepeatMode)
	e.shuffle = settings.Shuffle
	e.speed = settings.Speed
	e.volume = settings.Volume
	e.playing = false
	e.optimistic = false
	e.position = 0
	e.duration = 0
	e.buffered = 0

	dec.SetLoopMode(loopModeFor(e.repeat))
	dec.SetShuffle(e.shuffle)
	dec.SetVolume(e.volume)
	if err := dec.SetSpeed(e.speed); err != nil {
		zlog.Warn().Err(err).Float64("speed", e.speed).Msg(string(errmsg.OpSpeed))
		e.speed = 1.0
	}

	if len(restored) > 0 {
		if restoredIndex < 0 || restoredIndex >= len(restored) {
			restoredIndex = 0
		}
		e.queue.Replace(restoredIndex, restored...)
		if err := dec.Open(restored, restoredIndex); err != nil {
			zlog.Warn().Err(err).Msg(string(errmsg.OpDecoderOpen))
		} else {
			e.duration = dec.Duration()
			e.buffered = dec.Buffered()
		}
	} else {
		e.queue.Clear()
	}
	e.publishLocked()
	e.mu.Unlock()

	// Closing the old adapter closes its signal channel, which ends its
	// consume loop.
	if old != nil {
		_ = old.Close()
	}
	go e.consumeSignals(dec)
	return nil
}

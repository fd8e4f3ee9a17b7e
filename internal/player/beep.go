package player

import (
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"

	"github.com/llehouerou/resona/internal/library"
)

const (
	// outputRate is the fixed speaker sample rate; every track is
	// resampled to it so the speaker is initialized exactly once.
	outputRate beep.SampleRate = 44100

	resampleQuality = 4
	positionTick    = 200 * time.Millisecond
	signalBuffer    = 64
)

// ErrDecoderClosed is returned by commands issued after Close.
var ErrDecoderClosed = errors.New("decoder closed")

var (
	speakerOnce sync.Once
	speakerErr  error
)

// Beep is the local-file decoder adapter, backed by gopxl/beep.
//
// It owns an ordered source list and advances through it on its own when a
// track ends, honoring loop and shuffle, reporting each advance on the
// signal channel. Lock order is always b.mu before speaker.Lock.
type Beep struct {
	mu sync.Mutex

	tracks []library.Track
	order  []int // playback order over tracks; identity unless shuffled
	pos    int   // position within order, -1 when nothing loaded

	loop    LoopMode
	shuffle bool
	speed   float64
	level   float64

	state   ProcState
	playing bool

	file     *os.File
	streamer beep.StreamSeekCloser
	format   beep.Format
	speedR   *beep.Resampler
	volume   *effects.Volume
	ctrl     *beep.Ctrl
	duration time.Duration

	gen     int // invalidates stale finish callbacks
	signals chan Signal
	done    chan struct{}
	closed  bool
}

// NewBeep creates the beep-backed decoder adapter.
func NewBeep() (*Beep, error) {
	speakerOnce.Do(func() {
		speakerErr = speaker.Init(outputRate, outputRate.N(100*time.Millisecond))
	})
	if speakerErr != nil {
		return nil, errors.Wrap(speakerErr, "init speaker")
	}

	b := &Beep{
		pos:     -1,
		speed:   1.0,
		level:   1.0,
		state:   Idle,
		signals: make(chan Signal, signalBuffer),
		done:    make(chan struct{}),
	}
	go b.tickLoop()
	return b, nil
}

// Open implements Interface.
func (b *Beep) Open(tracks []library.Track, startIndex int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrDecoderClosed
	}
	if startIndex < 0 || startIndex >= len(tracks) {
		return errors.Newf("start index %d out of range (%d tracks)", startIndex, len(tracks))
	}

	b.stopLocked()
	b.tracks = make([]library.Track, len(tracks))
	copy(b.tracks, tracks)
	b.rebuildOrderLocked(startIndex)

	b.setStateLocked(Loading)
	if err := b.loadLocked(startIndex); err != nil {
		b.setStateLocked(Idle)
		return errors.Wrapf(err, "open %s", tracks[startIndex].Path)
	}
	b.setStateLocked(Ready)
	return nil
}

// Append implements Interface.
func (b *Beep) Append(tracks ...library.Track) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	start := len(b.tracks)
	b.tracks = append(b.tracks, tracks...)
	for i := range tracks {
		b.order = append(b.order, start+i)
	}
}

// Play implements Interface.
func (b *Beep) Play() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrDecoderClosed
	}
	if b.streamer == nil {
		if b.pos < 0 || b.pos >= len(b.order) {
			return errors.New("no source loaded")
		}
		if err := b.loadLocked(b.order[b.pos]); err != nil {
			return err
		}
	}
	b.playing = true
	if b.state == Completed {
		b.setStateLocked(Ready)
	}
	speaker.Lock()
	b.ctrl.Paused = false
	speaker.Unlock()
	return nil
}

// Pause implements Interface.
func (b *Beep) Pause() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrDecoderClosed
	}
	b.playing = false
	if b.ctrl != nil {
		speaker.Lock()
		b.ctrl.Paused = true
		speaker.Unlock()
	}
	return nil
}

// Stop implements Interface.
func (b *Beep) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrDecoderClosed
	}
	b.stopLocked()
	b.setStateLocked(Idle)
	return nil
}

// Seek implements Interface.
func (b *Beep) Seek(pos time.Duration, index int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrDecoderClosed
	}

	if index >= 0 && (index != b.currentTrackLocked() || b.streamer == nil) {
		orderPos := -1
		for i, idx := range b.order {
			if idx == index {
				orderPos = i
				break
			}
		}
		if orderPos < 0 {
			return errors.Newf("seek index %d out of range", index)
		}
		b.pos = orderPos
		if err := b.loadLocked(index); err != nil {
			return err
		}
	} else if b.streamer == nil {
		if b.pos < 0 || b.pos >= len(b.order) {
			return errors.New("no source loaded")
		}
		if err := b.loadLocked(b.order[b.pos]); err != nil {
			return err
		}
	}

	if pos < 0 {
		pos = 0
	}
	speaker.Lock()
	err := b.streamer.Seek(b.format.SampleRate.N(pos))
	speaker.Unlock()
	if err != nil {
		return errors.Wrap(err, "seek")
	}
	if b.state == Completed {
		b.setStateLocked(Ready)
	}
	b.emit(Signal{Kind: SignalPosition, Position: pos})
	return nil
}

// SetSpeed implements Interface.
func (b *Beep) SetSpeed(ratio float64) error {
	if ratio <= 0 {
		return errors.Newf("invalid speed %f", ratio)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.speed = ratio
	if b.speedR != nil {
		speaker.Lock()
		b.speedR.SetRatio(ratio)
		speaker.Unlock()
	}
	return nil
}

// SetVolume implements Interface.
func (b *Beep) SetVolume(level float64) {
	if level < 0 {
		level = 0
	}
	if level > 1 {
		level = 1
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.level = level
	if b.volume != nil {
		speaker.Lock()
		b.volume.Volume = levelToVolume(level)
		b.volume.Silent = level <= 0
		speaker.Unlock()
	}
}

// SetShuffle implements Interface. Enabling shuffles the not-yet-played
// remainder of the order; the current track keeps its slot.
func (b *Beep) SetShuffle(enabled bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.shuffle == enabled {
		return
	}
	b.shuffle = enabled
	b.rebuildOrderLocked(b.currentTrackLocked())
}

// SetLoopMode implements Interface.
func (b *Beep) SetLoopMode(mode LoopMode) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.loop = mode
}

// State implements Interface.
func (b *Beep) State() ProcState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Playing implements Interface.
func (b *Beep) Playing() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.playing
}

// Position implements Interface.
func (b *Beep) Position() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.positionLocked()
}

// Duration implements Interface.
func (b *Beep) Duration() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.duration
}

// Buffered implements Interface. Local files are fully available once
// decoded, so buffered tracks duration.
func (b *Beep) Buffered() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.duration
}

// CurrentIndex implements Interface.
func (b *Beep) CurrentIndex() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.currentTrackLocked()
}

// Signals implements Interface.
func (b *Beep) Signals() <-chan Signal {
	return b.signals
}

// Close implements Interface.
func (b *Beep) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.stopLocked()
	b.closed = true
	close(b.done)
	close(b.signals)
	return nil
}

// --- internals (b.mu held unless noted) ---

func (b *Beep) currentTrackLocked() int {
	if b.pos < 0 || b.pos >= len(b.order) {
		return -1
	}
	return b.order[b.pos]
}

func (b *Beep) positionLocked() time.Duration {
	if b.streamer == nil {
		return 0
	}
	speaker.Lock()
	pos := b.format.SampleRate.D(b.streamer.Position())
	speaker.Unlock()
	return pos
}

func (b *Beep) rebuildOrderLocked(currentTrack int) {
	b.order = make([]int, len(b.tracks))
	for i := range b.order {
		b.order[i] = i
	}
	if b.shuffle && len(b.order) > 1 {
		rand.Shuffle(len(b.order), func(i, j int) {
			b.order[i], b.order[j] = b.order[j], b.order[i]
		})
		// Keep the current track first so playback continues from it.
		if currentTrack >= 0 {
			for i, idx := range b.order {
				if idx == currentTrack {
					b.order[0], b.order[i] = b.order[i], b.order[0]
					break
				}
			}
		}
	}
	b.pos = -1
	if currentTrack >= 0 {
		for i, idx := range b.order {
			if idx == currentTrack {
				b.pos = i
				break
			}
		}
	}
}

func (b *Beep) loadLocked(trackIdx int) error {
	speaker.Clear()
	b.closeStreamLocked()

	path := b.tracks[trackIdx].Path
	f, err := os.Open(path)
	if err != nil {
		return err
	}

	var streamer beep.StreamSeekCloser
	var format beep.Format
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".flac":
		streamer, format, err = flac.Decode(f)
	case ".wav":
		streamer, format, err = wav.Decode(f)
	default:
		f.Close()
		return errors.Newf("unsupported format: %s", filepath.Ext(path))
	}
	if err != nil {
		f.Close()
		return err
	}

	b.file = f
	b.streamer = streamer
	b.format = format
	b.duration = format.SampleRate.D(streamer.Len())

	rate := beep.Resample(resampleQuality, format.SampleRate, outputRate, streamer)
	b.speedR = beep.ResampleRatio(resampleQuality, b.speed, rate)
	b.volume = &effects.Volume{
		Streamer: b.speedR,
		Base:     2,
		Volume:   levelToVolume(b.level),
		Silent:   b.level <= 0,
	}
	b.ctrl = &beep.Ctrl{Streamer: b.volume, Paused: !b.playing}

	b.gen++
	gen := b.gen
	speaker.Play(beep.Seq(b.ctrl, beep.Callback(func() {
		// The callback runs on the speaker goroutine; advancing touches
		// the speaker again, so it has to happen elsewhere.
		go b.onTrackDone(gen)
	})))

	b.emit(Signal{Kind: SignalDuration, Duration: b.duration})
	return nil
}

func (b *Beep) onTrackDone(gen int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed || gen != b.gen {
		return
	}

	if b.loop == LoopOne {
		if err := b.loadLocked(b.order[b.pos]); err != nil {
			b.emit(Signal{Kind: SignalError, Err: err})
			b.playing = false
			b.setStateLocked(Idle)
		}
		b.emit(Signal{Kind: SignalPosition, Position: 0})
		return
	}

	next := b.pos + 1
	if next >= len(b.order) {
		if b.loop != LoopAll {
			b.closeStreamLocked()
			b.playing = false
			b.setStateLocked(Completed)
			b.emit(Signal{Kind: SignalFinished})
			return
		}
		next = 0
	}

	b.pos = next
	trackIdx := b.order[next]
	b.emit(Signal{Kind: SignalIndex, Index: trackIdx})
	if err := b.loadLocked(trackIdx); err != nil {
		b.emit(Signal{Kind: SignalError, Err: err})
		b.playing = false
		b.setStateLocked(Idle)
	}
}

func (b *Beep) stopLocked() {
	b.gen++ // cancel pending finish callbacks
	speaker.Clear()
	b.closeStreamLocked()
	b.playing = false
}

func (b *Beep) closeStreamLocked() {
	if b.streamer != nil {
		b.streamer.Close()
		b.streamer = nil
	}
	if b.file != nil {
		b.file.Close()
		b.file = nil
	}
	b.ctrl = nil
	b.volume = nil
	b.speedR = nil
}

func (b *Beep) setStateLocked(s ProcState) {
	if b.state == s {
		return
	}
	b.state = s
	b.emit(Signal{Kind: SignalState, State: s})
}

func (b *Beep) emit(sig Signal) {
	if b.closed {
		return
	}
	select {
	case b.signals <- sig:
	default:
		// Drop if buffer full
	}
}

func (b *Beep) tickLoop() {
	t := time.NewTicker(positionTick)
	defer t.Stop()
	for {
		select {
		case <-b.done:
			return
		case <-t.C:
			b.mu.Lock()
			if !b.closed && b.playing && b.streamer != nil {
				b.emit(Signal{Kind: SignalPosition, Position: b.positionLocked()})
			}
			b.mu.Unlock()
		}
	}
}

// levelToVolume converts a 0.0-1.0 level to beep's Volume value.
// beep uses a logarithmic scale with base 2: 0 means no change, -1 half
// volume, -2 a quarter, and so on.
func levelToVolume(level float64) float64 {
	if level <= 0 {
		return -10
	}
	if level >= 1 {
		return 0
	}
	return math.Log2(level)
}

// Verify Beep implements Interface at compile time.
var _ Interface = (*Beep)(nil)

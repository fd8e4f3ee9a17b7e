package player

import (
	"sync"
	"time"

	"github.com/llehouerou/resona/internal/library"
)

// Mock is a test double for the decoder adapter. It is safe for concurrent
// use: the engine drives it from its own goroutines while tests inspect
// the call counters.
type Mock struct {
	mu sync.Mutex

	tracks   []library.Track
	index    int
	state    ProcState
	playing  bool
	position time.Duration
	duration time.Duration
	speed    float64
	volume   float64
	shuffle  bool
	loop     LoopMode

	openErr error
	playErr error
	seekErr error

	openCalls  int
	playCalls  int
	pauseCalls int
	stopCalls  int
	seekCalls  []time.Duration
	seekIdx    []int

	signals chan Signal
	closed  bool
}

// NewMock creates a new mock decoder for testing.
func NewMock() *Mock {
	return &Mock{
		index:   -1,
		state:   Idle,
		speed:   1.0,
		volume:  1.0,
		signals: make(chan Signal, 64),
	}
}

func (m *Mock) Open(tracks []library.Track, startIndex int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.openCalls++
	if m.openErr != nil {
		return m.openErr
	}
	m.tracks = tracks
	m.index = startIndex
	m.state = Ready
	m.playing = false
	m.position = 0
	return nil
}

func (m *Mock) Append(tracks ...library.Track) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tracks = append(m.tracks, tracks...)
}

func (m *Mock) Play() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playCalls++
	if m.playErr != nil {
		return m.playErr
	}
	m.playing = true
	m.state = Ready
	return nil
}

func (m *Mock) Pause() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pauseCalls++
	m.playing = false
	return nil
}

func (m *Mock) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopCalls++
	m.playing = false
	m.position = 0
	m.state = Idle
	return nil
}

func (m *Mock) Seek(pos time.Duration, index int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seekErr != nil {
		return m.seekErr
	}
	m.seekCalls = append(m.seekCalls, pos)
	m.seekIdx = append(m.seekIdx, index)
	m.position = pos
	if index >= 0 {
		m.index = index
	}
	if m.state == Completed {
		m.state = Ready
	}
	return nil
}

func (m *Mock) SetSpeed(ratio float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.speed = ratio
	return nil
}

func (m *Mock) SetVolume(level float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volume = level
}

func (m *Mock) SetShuffle(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shuffle = enabled
}

func (m *Mock) SetLoopMode(mode LoopMode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loop = mode
}

func (m *Mock) State() ProcState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Mock) Playing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing
}

func (m *Mock) Position() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position
}

func (m *Mock) Duration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duration
}

func (m *Mock) Buffered() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duration
}

func (m *Mock) CurrentIndex() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.index
}

func (m *Mock) Signals() <-chan Signal {
	return m.signals
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	close(m.signals)
	return nil
}

// Test helpers

func (m *Mock) SetState(s ProcState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = s
}

func (m *Mock) SetPlaying(playing bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playing = playing
}

func (m *Mock) SetPosition(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.position = d
}

func (m *Mock) SetDuration(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.duration = d
}

func (m *Mock) SetOpenError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.openErr = err
}

func (m *Mock) SetPlayError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playErr = err
}

func (m *Mock) SetSeekError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seekErr = err
}

func (m *Mock) OpenCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.openCalls
}

func (m *Mock) PlayCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playCalls
}

func (m *Mock) PauseCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pauseCalls
}

func (m *Mock) StopCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopCalls
}

func (m *Mock) SeekCalls() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]time.Duration, len(m.seekCalls))
	copy(result, m.seekCalls)
	return result
}

func (m *Mock) SeekIndexes() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]int, len(m.seekIdx))
	copy(result, m.seekIdx)
	return result
}

func (m *Mock) Shuffle() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.shuffle
}

func (m *Mock) LoopMode() LoopMode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loop
}

func (m *Mock) Speed() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.speed
}

func (m *Mock) Volume() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volume
}

func (m *Mock) Tracks() []library.Track {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]library.Track, len(m.tracks))
	copy(result, m.tracks)
	return result
}

// Emit injects a raw signal, as if the decoder produced it.
func (m *Mock) Emit(sig Signal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.emitLocked(sig)
}

func (m *Mock) emitLocked(sig Signal) {
	if m.closed {
		return
	}
	select {
	case m.signals <- sig:
	default:
	}
}

// EmitPosition injects a position tick.
func (m *Mock) EmitPosition(pos time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.position = pos
	m.emitLocked(Signal{Kind: SignalPosition, Position: pos})
}

// EmitIndex injects an index-advanced signal and updates the mock index.
func (m *Mock) EmitIndex(index int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.index = index
	m.emitLocked(Signal{Kind: SignalIndex, Index: index})
}

// EmitFinished injects an end-of-source signal.
func (m *Mock) EmitFinished() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playing = false
	m.state = Completed
	m.emitLocked(Signal{Kind: SignalFinished})
}

// EmitError injects a transient decoder error.
func (m *Mock) EmitError(err error) {
	m.Emit(Signal{Kind: SignalError, Err: err})
}

// EmitState injects a processing-state change.
func (m *Mock) EmitState(s ProcState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = s
	m.emitLocked(Signal{Kind: SignalState, State: s})
}

// Verify Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)

// Package player wraps a single-track audio engine behind the decoder
// adapter contract used by the playback engine.
package player

import (
	"time"

	"github.com/llehouerou/resona/internal/library"
)

// LoopMode defines how the adapter behaves when a track ends.
type LoopMode int

const (
	LoopOff LoopMode = iota
	LoopOne
	LoopAll
)

// String returns the loop mode name.
func (m LoopMode) String() string {
	switch m {
	case LoopOff:
		return "off"
	case LoopOne:
		return "one"
	case LoopAll:
		return "all"
	default:
		return "unknown"
	}
}

// SignalKind identifies a decoder signal.
type SignalKind int

const (
	// SignalPosition reports the current playback position.
	SignalPosition SignalKind = iota
	// SignalDuration reports the duration of the loaded track.
	SignalDuration
	// SignalState reports a processing-state transition.
	SignalState
	// SignalIndex reports that the adapter advanced to another source index.
	SignalIndex
	// SignalFinished reports that the whole source list finished.
	SignalFinished
	// SignalError reports a transient decode/stream error.
	SignalError
)

// Signal is a decoder event. Only the fields relevant to Kind are set.
type Signal struct {
	Kind     SignalKind
	Position time.Duration
	Duration time.Duration
	State    ProcState
	Index    int
	Err      error
}

// Interface defines the decoder adapter contract for dependency injection
// and testing. The adapter is exclusively owned by the playback engine;
// nothing else issues commands to it.
type Interface interface {
	// Open stops any prior playback, loads the ordered source list and
	// pre-positions at startIndex without starting playback.
	Open(tracks []library.Track, startIndex int) error
	// Append extends the source list without interrupting playback.
	Append(tracks ...library.Track)

	Play() error
	Pause() error
	Stop() error
	// Seek moves to position within the track at index. index -1 keeps
	// the current track.
	Seek(pos time.Duration, index int) error

	SetSpeed(ratio float64) error
	SetVolume(level float64)
	SetShuffle(enabled bool)
	SetLoopMode(mode LoopMode)

	State() ProcState
	Playing() bool
	Position() time.Duration
	Duration() time.Duration
	Buffered() time.Duration
	CurrentIndex() int

	// Signals returns the adapter's event channel. It is closed by Close.
	Signals() <-chan Signal

	Close() error
}

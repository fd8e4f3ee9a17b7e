package playback

import "time"

// RepeatMode defines the repeat behavior.
type RepeatMode int

const (
	RepeatOff RepeatMode = iota
	RepeatOne
	RepeatAll
)

// String returns the repeat mode name.
func (m RepeatMode) String() string {
	switch m {
	case RepeatOff:
		return "off"
	case RepeatOne:
		return "one"
	case RepeatAll:
		return "all"
	default:
		return "unknown"
	}
}

// Controls is the set of affordances derived from the current state. It is
// recomputed with every snapshot and never mutated independently, so a
// subscriber can never observe a playing flag that disagrees with its
// play/pause affordance.
type Controls struct {
	CanPlay     bool
	CanPause    bool
	CanNext     bool
	CanPrevious bool
	CanSeek     bool
}

// State is the single authoritative playback snapshot pushed to
// subscribers. It is recomputed wholesale on every relevant change;
// subscribers must treat it as eventually consistent, since optimistic
// command-side updates may be corrected by the next decoder signal.
//
// Invariant: Playing implies Track != nil.
type State struct {
	Track    *Track
	Index    int // queue index, -1 if none
	Playing  bool
	Position time.Duration
	Duration time.Duration
	Buffered time.Duration
	Speed    float64
	Repeat   RepeatMode
	Shuffle  bool
	Controls Controls
}

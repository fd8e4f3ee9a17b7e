package player

// ProcState represents the decoder processing state machine.
//
//	┌────────┐  open   ┌─────────┐  decoded  ┌───────┐
//	│  Idle  │ ───────▶│ Loading │ ─────────▶│ Ready │
//	└────────┘         └─────────┘           └───────┘
//	     ▲                                    │     ▲
//	     │ stop                   source ends │     │ seek/open
//	     │                                    ▼     │
//	     │                               ┌───────────┐
//	     └───────────────────────────────│ Completed │
//	                                     └───────────┘
//
// Buffering is reserved for adapters that source from slow media; the
// local-file adapter never reports it but the engine handles it.
//
// Valid transitions:
//   - Idle      → Loading   (via Open)
//   - Loading   → Ready     (decode finished)
//   - Ready     → Completed (source list exhausted under loop off)
//   - Completed → Ready     (via Seek or Open)
//   - any       → Idle      (via Stop)
type ProcState int

const (
	Idle ProcState = iota
	Loading
	Buffering
	Ready
	Completed
)

// String returns the state name for debugging.
func (s ProcState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Buffering:
		return "buffering"
	case Ready:
		return "ready"
	case Completed:
		return "completed"
	default:
		return "unknown"
	}
}

// IsLoaded returns true if a source is loaded and seekable.
func (s ProcState) IsLoaded() bool {
	return s == Ready || s == Completed || s == Buffering
}

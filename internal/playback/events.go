package playback

// ErrorEvent is emitted when an error occurs during playback.
// Transient decoder errors never surface as crashes; subscribers get the
// event and the supervisor does the counting.
type ErrorEvent struct {
	Operation string // e.g., "play", "seek", "decoder"
	Err       error
}

// Package errmsg provides consistent error formatting for log and
// subscriber-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Playback operations
	OpPlay   Op = "start playback"
	OpPause  Op = "pause playback"
	OpStop   Op = "stop playback"
	OpSeek   Op = "seek"
	OpSkip   Op = "skip track"
	OpSpeed  Op = "set playback speed"
	OpVolume Op = "set volume"

	// Queue operations
	OpQueueBuild  Op = "build queue"
	OpQueueAdd    Op = "add to queue"
	OpQueueRemove Op = "remove from queue"
	OpQueueMove   Op = "reorder queue"
	OpQueueSave   Op = "save queue"
	OpQueueLoad   Op = "load queue"

	// Settings operations
	OpSettingsLoad Op = "load settings"
	OpSettingsSave Op = "save settings"

	// Decoder lifecycle
	OpDecoderOpen   Op = "open decoder source"
	OpDecoderReset  Op = "reinitialize decoder"
	OpDecoderSignal Op = "process decoder signal"

	// Play statistics
	OpPlayStats Op = "record play statistics"
)

// Format produces a user-facing message for a failed operation.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("failed to %s: %v", op, err)
}

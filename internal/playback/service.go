package playback

import (
	"time"

	"github.com/llehouerou/resona/internal/library"
	"github.com/llehouerou/resona/internal/store"
)

// Service defines the playback engine contract. It is the single writer of
// the playback state; everything else requests changes through it.
type Service interface {
	// Lifecycle. Start loads settings, restores the persisted queue and
	// begins consuming decoder signals.
	Start() error
	Close() error

	// Playback control
	Play() error
	Pause() error
	Stop() error
	Toggle() error
	Next() error
	Previous() error
	SeekTo(position time.Duration) error
	JumpTo(index int) error

	// Queue manipulation
	SetQueue(selection []library.Track) error
	AddQueueItems(tracks ...library.Track) error
	RemoveQueueItem(index int) error
	MoveQueueItem(fromIndex, toIndex int) error
	ClearQueue() error

	// Mode control
	RepeatMode() RepeatMode
	SetRepeatMode(mode RepeatMode)
	CycleRepeatMode() RepeatMode
	Shuffle() bool
	SetShuffle(enabled bool)
	ToggleShuffle() bool
	SetSpeed(ratio float64) error
	SetVolume(level float64)

	// Sleep timer
	StartSleepTimer(minutes int)
	CancelSleepTimer()
	SleepTimerRemaining() time.Duration

	// State queries
	State() State
	CurrentTrack() *Track
	IsPlaying() bool
	Position() time.Duration
	Duration() time.Duration
	Settings() store.Settings

	// Queue queries
	QueueTracks() []library.Track
	QueueCurrentIndex() int
	QueueLen() int
	QueueIsEmpty() bool
	QueueHasNext() bool

	// Event subscription
	Subscribe() *Subscription
}

package store

import (
	"database/sql"

	"github.com/llehouerou/resona/internal/library"
)

// Interface defines the persistence contract for dependency injection and
// testing. It covers the catalog, the queue snapshot, playback settings and
// play statistics.
type Interface interface {
	DB() *sql.DB
	AllTracks() ([]library.Track, error)
	TracksByIDs(ids []int64) ([]library.Track, error)
	UpsertTrack(t library.Track) (int64, error)
	SaveQueue(snapshot QueueSnapshot) error
	LoadQueue() (*QueueSnapshot, error)
	IncrementPlayCount(id int64) error
	RecordRecentlyPlayed(id int64) error
	LoadSettings() (*Settings, error)
	SaveSettings(s Settings) error
	Close() error
}

// Verify Manager implements Interface at compile time.
var _ Interface = (*Manager)(nil)

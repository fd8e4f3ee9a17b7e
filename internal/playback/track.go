package playback

import (
	"time"

	"github.com/llehouerou/resona/internal/library"
)

// Track represents the current track as seen by subscribers.
// This is a copy of the data, not a reference into the queue.
type Track struct {
	ID          int64
	Path        string
	Title       string
	Artist      string
	Album       string
	TrackNumber int
	Duration    time.Duration
	ArtworkPath string
}

func trackFromLibrary(t *library.Track) *Track {
	if t == nil {
		return nil
	}
	return &Track{
		ID:          t.ID,
		Path:        t.Path,
		Title:       t.Title,
		Artist:      t.Artist,
		Album:       t.Album,
		TrackNumber: t.TrackNumber,
		Duration:    t.Duration,
		ArtworkPath: t.ArtworkPath,
	}
}

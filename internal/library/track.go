// Package library defines the catalog track record shared by the store,
// the queue builder and the playback engine.
package library

import "time"

// Track is a catalog entry. It is read-only to the playback engine except
// for the play-count/last-played updates recorded through the store.
type Track struct {
	ID          int64
	Path        string
	Title       string
	Artist      string
	Album       string
	TrackNumber int
	Year        int
	Genre       string
	Duration    time.Duration
	ArtworkPath string
	Favorite    bool
	Rating      int
}

// DisplayLess orders tracks the way the catalog is presented: by artist,
// then album, then track number, then title. The queue builder and the
// auto-extend policy both rely on this order.
func DisplayLess(a, b Track) bool {
	if a.Artist != b.Artist {
		return a.Artist < b.Artist
	}
	if a.Album != b.Album {
		return a.Album < b.Album
	}
	if a.TrackNumber != b.TrackNumber {
		return a.TrackNumber < b.TrackNumber
	}
	return a.Title < b.Title
}

package playlist

import "github.com/llehouerou/resona/internal/library"

// PlayingQueue wraps a Playlist with a current position.
//
// Invariant: currentIndex is -1 iff the queue is empty, otherwise
// 0 <= currentIndex < Len(). Every mutation re-establishes this.
type PlayingQueue struct {
	playlist     *Playlist
	currentIndex int // -1 if nothing playing
}

// NewQueue creates a new empty playing queue.
func NewQueue() *PlayingQueue {
	return &PlayingQueue{
		playlist:     NewPlaylist(),
		currentIndex: -1,
	}
}

// Current returns the current track, or nil if none.
func (q *PlayingQueue) Current() *library.Track {
	if q.currentIndex < 0 || q.currentIndex >= q.playlist.Len() {
		return nil
	}
	return q.playlist.Track(q.currentIndex)
}

// CurrentIndex returns the index of the current track (-1 if none).
func (q *PlayingQueue) CurrentIndex() int {
	return q.currentIndex
}

// HasNext returns true if there is a track after the current one.
func (q *PlayingQueue) HasNext() bool {
	return q.currentIndex < q.playlist.Len()-1
}

// JumpTo sets the current index to the specified position.
// Returns the track at that position, or nil if invalid.
func (q *PlayingQueue) JumpTo(index int) *library.Track {
	if index < 0 || index >= q.playlist.Len() {
		return nil
	}
	q.currentIndex = index
	return q.Current()
}

// Add appends tracks to the queue without changing the current position.
// If the queue was empty, the position moves to the first added track so
// the index invariant holds.
func (q *PlayingQueue) Add(tracks ...library.Track) {
	wasEmpty := q.playlist.Len() == 0
	q.playlist.Add(tracks...)
	if wasEmpty && q.playlist.Len() > 0 {
		q.currentIndex = 0
	}
}

// Replace clears the queue, adds tracks, and positions at index.
// Returns the track at that position, or nil if the result is empty.
func (q *PlayingQueue) Replace(index int, tracks ...library.Track) *library.Track {
	q.playlist.Clear()
	q.currentIndex = -1
	if len(tracks) == 0 {
		return nil
	}
	q.playlist.Add(tracks...)
	if index < 0 || index >= q.playlist.Len() {
		index = 0
	}
	q.currentIndex = index
	return q.Current()
}

// RemoveAt removes the track at the given index, adjusting the current
// position so it keeps pointing at the same track where possible.
func (q *PlayingQueue) RemoveAt(index int) bool {
	if !q.playlist.Remove(index) {
		return false
	}

	if q.playlist.Len() == 0 {
		q.currentIndex = -1
		return true
	}
	if q.currentIndex > index {
		q.currentIndex--
	} else if q.currentIndex == index {
		// Removed current track - same index now points at the next one.
		if q.currentIndex >= q.playlist.Len() {
			q.currentIndex = q.playlist.Len() - 1
		}
	}
	return true
}

// Move relocates the track at fromIndex to toIndex, keeping the current
// position pointing at the same track.
func (q *PlayingQueue) Move(fromIndex, toIndex int) bool {
	if !q.playlist.Move(fromIndex, toIndex) {
		return false
	}
	switch {
	case q.currentIndex == fromIndex:
		q.currentIndex = toIndex
	case fromIndex < q.currentIndex && toIndex >= q.currentIndex:
		q.currentIndex--
	case fromIndex > q.currentIndex && toIndex <= q.currentIndex:
		q.currentIndex++
	}
	return true
}

// Clear removes all tracks and resets the position.
func (q *PlayingQueue) Clear() {
	q.playlist.Clear()
	q.currentIndex = -1
}

// Tracks returns a copy of all tracks in the queue.
func (q *PlayingQueue) Tracks() []library.Track {
	return q.playlist.Tracks()
}

// Track returns the track at the given index, or nil if out of bounds.
func (q *PlayingQueue) Track(index int) *library.Track {
	return q.playlist.Track(index)
}

// Len returns the number of tracks in the queue.
func (q *PlayingQueue) Len() int {
	return q.playlist.Len()
}

// IsEmpty returns true if the queue has no tracks.
func (q *PlayingQueue) IsEmpty() bool {
	return q.playlist.Len() == 0
}

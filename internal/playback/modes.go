package playback

import (
	"sort"

	"github.com/llehouerou/resona/internal/library"
)

// skipAction is the outcome of the repeat-mode decision table for a manual
// skip command.
type skipAction int

const (
	// skipAdvance moves to target index.
	skipAdvance skipAction = iota
	// skipRestart seeks the current track back to position 0.
	skipRestart
	// skipNone leaves everything as it is.
	skipNone
)

// nextAction decides what a manual skip-next does given the repeat mode,
// the current index and the queue length.
//
//	repeat=off:  advance; at the last track restart it instead of
//	             running past the end
//	repeat=one:  advance when possible, stay put at the end
//	repeat=all:  advance, wrapping to 0 after the last track
func nextAction(repeat RepeatMode, index, length int) (skipAction, int) {
	if length == 0 || index < 0 {
		return skipNone, -1
	}
	last := index >= length-1
	switch repeat {
	case RepeatOne:
		if last {
			return skipNone, index
		}
		return skipAdvance, index + 1
	case RepeatAll:
		if last {
			return skipAdvance, 0
		}
		return skipAdvance, index + 1
	default: // RepeatOff
		if last {
			return skipRestart, index
		}
		return skipAdvance, index + 1
	}
}

// prevAction decides what a manual skip-previous does.
//
//	repeat=off:  go back; at the first track restart it at position 0
//	repeat=one:  go back when possible, stay put at the start
//	repeat=all:  go back, wrapping to the last track before the first
func prevAction(repeat RepeatMode, index, length int) (skipAction, int) {
	if length == 0 || index < 0 {
		return skipNone, -1
	}
	first := index == 0
	switch repeat {
	case RepeatOne:
		if first {
			return skipNone, index
		}
		return skipAdvance, index - 1
	case RepeatAll:
		if first {
			return skipAdvance, length - 1
		}
		return skipAdvance, index - 1
	default: // RepeatOff
		if first {
			return skipRestart, index
		}
		return skipAdvance, index - 1
	}
}

// extendWindow is how close to the end of the queue playback must be,
// under repeat=off, before more catalog tracks are appended so continuous
// playback does not stall waiting for a rebuild.
const extendWindow = 2

// nextExtendBatch selects up to batchSize catalog tracks that are not yet
// enqueued, deterministically ordered: tracks by the same artist as the
// most recently added queue track come first, then by artist, album and
// track number.
func nextExtendBatch(catalog, queued []library.Track, batchSize int) []library.Track {
	if batchSize <= 0 || len(queued) == 0 {
		return nil
	}

	inQueue := make(map[int64]struct{}, len(queued))
	for _, t := range queued {
		inQueue[t.ID] = struct{}{}
	}

	var candidates []library.Track
	for _, t := range catalog {
		if _, ok := inQueue[t.ID]; !ok {
			candidates = append(candidates, t)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	lastArtist := queued[len(queued)-1].Artist
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if (a.Artist == lastArtist) != (b.Artist == lastArtist) {
			return a.Artist == lastArtist
		}
		return library.DisplayLess(a, b)
	})

	if len(candidates) > batchSize {
		candidates = candidates[:batchSize]
	}
	return candidates
}

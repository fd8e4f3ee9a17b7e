package playlist

import (
	"os"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/llehouerou/resona/internal/library"
)

// Build errors.
var (
	// ErrTrackNotFound is returned when a single selection cannot be
	// located in the catalog (or was dropped by validation).
	ErrTrackNotFound = errors.New("track not found in catalog")
	// ErrEmptyQueue is returned when every candidate track is invalid.
	ErrEmptyQueue = errors.New("no playable tracks")
)

// Builder turns a user selection into an ordered queue and a start index.
//
// Two policies:
//   - single selection: the queue is the whole catalog in display order,
//     positioned at the selected track (circular navigation);
//   - multi selection: the selection is used verbatim, positioned at 0.
type Builder struct {
	validate func(library.Track) error
}

// NewBuilder creates a builder that validates candidates on disk.
func NewBuilder() *Builder {
	return &Builder{validate: validateFile}
}

// NewBuilderWithValidator creates a builder with a custom track validator.
func NewBuilderWithValidator(validate func(library.Track) error) *Builder {
	return &Builder{validate: validate}
}

// Build produces the queue track list and the initial index for a
// selection. Invalid candidates are dropped with a warning; if nothing
// survives the build fails with ErrEmptyQueue.
func (b *Builder) Build(selection, catalog []library.Track) ([]library.Track, int, error) {
	if len(selection) == 0 {
		return nil, -1, ErrEmptyQueue
	}

	if len(selection) == 1 {
		return b.buildCircular(selection[0], catalog)
	}
	return b.buildExplicit(selection)
}

// buildCircular expands a single-track selection to the full catalog in
// display order. The catalog order is used verbatim: navigation must match
// what the user saw when choosing.
func (b *Builder) buildCircular(selected library.Track, catalog []library.Track) ([]library.Track, int, error) {
	tracks := b.filter(catalog)
	if len(tracks) == 0 {
		return nil, -1, ErrEmptyQueue
	}

	index := -1
	for i, t := range tracks {
		if t.ID == selected.ID && t.Path == selected.Path {
			index = i
			break
		}
	}
	if index < 0 {
		return nil, -1, errors.Wrapf(ErrTrackNotFound, "%s", selected.Path)
	}
	return tracks, index, nil
}

// buildExplicit uses a multi-track selection verbatim. Explicit means
// explicit: no reordering, no catalog expansion.
func (b *Builder) buildExplicit(selection []library.Track) ([]library.Track, int, error) {
	tracks := b.filter(selection)
	if len(tracks) == 0 {
		return nil, -1, ErrEmptyQueue
	}
	return tracks, 0, nil
}

// FilterPlayable drops candidates that fail validation, keeping order.
// Used when appending to an existing queue, where a partial add is fine.
func (b *Builder) FilterPlayable(candidates []library.Track) []library.Track {
	return b.filter(candidates)
}

func (b *Builder) filter(candidates []library.Track) []library.Track {
	tracks := make([]library.Track, 0, len(candidates))
	for _, t := range candidates {
		if err := b.validate(t); err != nil {
			zlog.Warn().
				Str("path", t.Path).
				Err(err).
				Msg("dropping unplayable track from queue")
			continue
		}
		tracks = append(tracks, t)
	}
	return tracks
}

func validateFile(t library.Track) error {
	info, err := os.Stat(t.Path)
	if err != nil {
		return err
	}
	if info.Size() == 0 {
		return errors.New("file is empty")
	}
	return nil
}

package player

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dhowden/tag"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/wav"

	"github.com/llehouerou/resona/internal/library"
)

// IsMusicFile reports whether the path has a playable extension.
func IsMusicFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3", ".flac", ".wav":
		return true
	}
	return false
}

// ReadTrack reads tag metadata and audio duration for a file, producing a
// catalog entry ready to be stored. Tag failures fall back to the filename;
// a decode failure is an error since an unplayable file must not enter the
// catalog.
func ReadTrack(path string) (library.Track, error) {
	t := library.Track{
		Path:  path,
		Title: filepath.Base(path),
	}

	if f, err := os.Open(path); err == nil {
		if m, err := tag.ReadFrom(f); err == nil {
			if title := m.Title(); title != "" {
				t.Title = title
			}
			t.Artist = m.Artist()
			t.Album = m.Album()
			t.TrackNumber, _ = m.Track()
			t.Year = m.Year()
			t.Genre = m.Genre()
		}
		f.Close()
	}

	duration, err := audioDuration(path)
	if err != nil {
		return library.Track{}, errors.Wrapf(err, "decode %s", path)
	}
	t.Duration = duration
	return t, nil
}

func audioDuration(path string) (time.Duration, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	var streamer beep.StreamSeekCloser
	var format beep.Format
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".flac":
		streamer, format, err = flac.Decode(f)
	case ".wav":
		streamer, format, err = wav.Decode(f)
	default:
		return 0, errors.Newf("unsupported format: %s", filepath.Ext(path))
	}
	if err != nil {
		return 0, err
	}
	defer streamer.Close()

	return format.SampleRate.D(streamer.Len()), nil
}

package store

import (
	"database/sql"
	"strings"
	"time"

	dbutil "github.com/llehouerou/resona/internal/db"
	"github.com/llehouerou/resona/internal/library"
)

const trackColumns = `id, path, title, artist, album, track_number, year, genre,
	duration_ms, artwork_path, favorite, rating`

// AllTracks returns the whole catalog in display order: artist, album,
// track number, title. This order is what circular queue builds navigate.
func (m *Manager) AllTracks() ([]library.Track, error) {
	rows, err := m.db.Query(`
		SELECT ` + trackColumns + `
		FROM library_tracks
		ORDER BY artist, album, track_number, title
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTracks(rows)
}

// TracksByIDs returns the tracks for the given ids, preserving the input
// order. Unknown ids are skipped.
func (m *Manager) TracksByIDs(ids []int64) ([]library.Track, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := m.db.Query(`
		SELECT `+trackColumns+`
		FROM library_tracks
		WHERE id IN (`+placeholders+`)
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tracks, err := scanTracks(rows)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]library.Track, len(tracks))
	for _, t := range tracks {
		byID[t.ID] = t
	}
	result := make([]library.Track, 0, len(ids))
	for _, id := range ids {
		if t, ok := byID[id]; ok {
			result = append(result, t)
		}
	}
	return result, nil
}

// UpsertTrack inserts or updates a catalog row keyed by path and returns
// the row id.
func (m *Manager) UpsertTrack(t library.Track) (int64, error) {
	_, err := m.db.Exec(`
		INSERT INTO library_tracks
			(path, title, artist, album, track_number, year, genre, duration_ms, artwork_path, favorite, rating)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			title = excluded.title,
			artist = excluded.artist,
			album = excluded.album,
			track_number = excluded.track_number,
			year = excluded.year,
			genre = excluded.genre,
			duration_ms = excluded.duration_ms,
			artwork_path = excluded.artwork_path
	`, t.Path, t.Title, t.Artist, t.Album, t.TrackNumber, t.Year, t.Genre,
		t.Duration.Milliseconds(), t.ArtworkPath, t.Favorite, t.Rating)
	if err != nil {
		return 0, err
	}

	var id int64
	err = m.db.QueryRow(`SELECT id FROM library_tracks WHERE path = ?`, t.Path).Scan(&id)
	return id, err
}

// IncrementPlayCount bumps the play counter and stamps last played.
func (m *Manager) IncrementPlayCount(id int64) error {
	_, err := m.db.Exec(`
		UPDATE library_tracks
		SET play_count = play_count + 1, last_played_at = ?
		WHERE id = ?
	`, time.Now().Unix(), id)
	return err
}

// RecordRecentlyPlayed appends a recently-played entry.
func (m *Manager) RecordRecentlyPlayed(id int64) error {
	_, err := m.db.Exec(`
		INSERT INTO recently_played (track_id, played_at) VALUES (?, ?)
	`, id, time.Now().Unix())
	return err
}

func scanTracks(rows *sql.Rows) ([]library.Track, error) {
	var tracks []library.Track
	for rows.Next() {
		var t library.Track
		var trackNumber, year sql.NullInt64
		var genre, artwork sql.NullString
		var durationMs int64

		err := rows.Scan(&t.ID, &t.Path, &t.Title, &t.Artist, &t.Album,
			&trackNumber, &year, &genre, &durationMs, &artwork, &t.Favorite, &t.Rating)
		if err != nil {
			return nil, err
		}

		t.TrackNumber = int(dbutil.NullInt64Value(trackNumber))
		t.Year = int(dbutil.NullInt64Value(year))
		t.Genre = dbutil.NullStringValue(genre)
		t.ArtworkPath = dbutil.NullStringValue(artwork)
		t.Duration = time.Duration(durationMs) * time.Millisecond
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}

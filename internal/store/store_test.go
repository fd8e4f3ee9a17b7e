package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/llehouerou/resona/internal/library"
)

// setupTestStore creates a store backed by a throwaway database file.
func setupTestStore(t *testing.T) *Manager {
	t.Helper()
	m, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

func insertTracks(t *testing.T, m *Manager, tracks ...library.Track) []int64 {
	t.Helper()
	ids := make([]int64, len(tracks))
	for i, tr := range tracks {
		id, err := m.UpsertTrack(tr)
		if err != nil {
			t.Fatalf("UpsertTrack(%q) failed: %v", tr.Path, err)
		}
		ids[i] = id
	}
	return ids
}

func TestUpsertTrackInsertAndUpdate(t *testing.T) {
	m := setupTestStore(t)

	id, err := m.UpsertTrack(library.Track{
		Path:     "/m/a.mp3",
		Title:    "a",
		Artist:   "artist",
		Album:    "album",
		Duration: 3 * time.Minute,
	})
	if err != nil {
		t.Fatalf("UpsertTrack failed: %v", err)
	}
	if id == 0 {
		t.Fatal("expected non-zero id")
	}

	// Same path updates in place and keeps the id.
	id2, err := m.UpsertTrack(library.Track{Path: "/m/a.mp3", Title: "a (remaster)"})
	if err != nil {
		t.Fatalf("UpsertTrack update failed: %v", err)
	}
	if id2 != id {
		t.Errorf("id changed on upsert: %d -> %d", id, id2)
	}

	all, err := m.AllTracks()
	if err != nil {
		t.Fatalf("AllTracks failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("len(AllTracks) = %d, want 1", len(all))
	}
	if all[0].Title != "a (remaster)" {
		t.Errorf("Title = %q, want updated title", all[0].Title)
	}
}

func TestAllTracksDisplayOrder(t *testing.T) {
	m := setupTestStore(t)
	insertTracks(t, m,
		library.Track{Path: "/m/1.mp3", Artist: "B", Album: "x", TrackNumber: 1, Title: "b1"},
		library.Track{Path: "/m/2.mp3", Artist: "A", Album: "y", TrackNumber: 2, Title: "a2"},
		library.Track{Path: "/m/3.mp3", Artist: "A", Album: "y", TrackNumber: 1, Title: "a1"},
	)

	all, err := m.AllTracks()
	if err != nil {
		t.Fatalf("AllTracks failed: %v", err)
	}
	got := []string{all[0].Title, all[1].Title, all[2].Title}
	want := []string{"a1", "a2", "b1"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestTracksByIDsPreservesOrder(t *testing.T) {
	m := setupTestStore(t)
	ids := insertTracks(t, m,
		library.Track{Path: "/m/1.mp3", Title: "one"},
		library.Track{Path: "/m/2.mp3", Title: "two"},
		library.Track{Path: "/m/3.mp3", Title: "three"},
	)

	got, err := m.TracksByIDs([]int64{ids[2], ids[0]})
	if err != nil {
		t.Fatalf("TracksByIDs failed: %v", err)
	}
	if len(got) != 2 || got[0].Title != "three" || got[1].Title != "one" {
		t.Errorf("TracksByIDs = %v, want [three one] in request order", got)
	}

	// Unknown ids are skipped, not errors.
	got, err = m.TracksByIDs([]int64{ids[0], 999})
	if err != nil {
		t.Fatalf("TracksByIDs failed: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("len = %d, want 1 (unknown id dropped)", len(got))
	}
}

func TestQueueRoundTrip(t *testing.T) {
	m := setupTestStore(t)
	ids := insertTracks(t, m,
		library.Track{Path: "/m/1.mp3"},
		library.Track{Path: "/m/2.mp3"},
		library.Track{Path: "/m/3.mp3"},
	)

	snap, err := m.LoadQueue()
	if err != nil {
		t.Fatalf("LoadQueue failed: %v", err)
	}
	if snap.CurrentIndex != -1 || len(snap.TrackIDs) != 0 {
		t.Errorf("empty db LoadQueue = %+v, want index -1 and no tracks", snap)
	}

	if err := m.SaveQueue(QueueSnapshot{CurrentIndex: 1, TrackIDs: ids}); err != nil {
		t.Fatalf("SaveQueue failed: %v", err)
	}
	snap, err = m.LoadQueue()
	if err != nil {
		t.Fatalf("LoadQueue failed: %v", err)
	}
	if snap.CurrentIndex != 1 {
		t.Errorf("CurrentIndex = %d, want 1", snap.CurrentIndex)
	}
	if len(snap.TrackIDs) != 3 || snap.TrackIDs[0] != ids[0] || snap.TrackIDs[2] != ids[2] {
		t.Errorf("TrackIDs = %v, want %v", snap.TrackIDs, ids)
	}

	// Saving again replaces wholesale.
	if err := m.SaveQueue(QueueSnapshot{CurrentIndex: 0, TrackIDs: ids[:1]}); err != nil {
		t.Fatalf("SaveQueue failed: %v", err)
	}
	snap, err = m.LoadQueue()
	if err != nil {
		t.Fatalf("LoadQueue failed: %v", err)
	}
	if snap.CurrentIndex != 0 || len(snap.TrackIDs) != 1 {
		t.Errorf("after resave: %+v, want single track at index 0", snap)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	m := setupTestStore(t)

	s, err := m.LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}
	def := DefaultSettings()
	if *s != def {
		t.Errorf("empty db LoadSettings = %+v, want defaults %+v", s, def)
	}

	want := Settings{
		RepeatMode:        2,
		Shuffle:           true,
		Speed:             1.25,
		Volume:            0.7,
		SleepTimerMinutes: 30,
		EqualizerEnabled:  true,
		EqualizerPreset:   "rock",
	}
	if err := m.SaveSettings(want); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}
	s, err = m.LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}
	if *s != want {
		t.Errorf("LoadSettings = %+v, want %+v", s, want)
	}
}

func TestPlayStats(t *testing.T) {
	m := setupTestStore(t)
	ids := insertTracks(t, m, library.Track{Path: "/m/1.mp3"})

	if err := m.IncrementPlayCount(ids[0]); err != nil {
		t.Fatalf("IncrementPlayCount failed: %v", err)
	}
	if err := m.IncrementPlayCount(ids[0]); err != nil {
		t.Fatalf("IncrementPlayCount failed: %v", err)
	}

	var count int
	err := m.DB().QueryRow(`SELECT play_count FROM library_tracks WHERE id = ?`, ids[0]).Scan(&count)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if count != 2 {
		t.Errorf("play_count = %d, want 2", count)
	}

	if err := m.RecordRecentlyPlayed(ids[0]); err != nil {
		t.Fatalf("RecordRecentlyPlayed failed: %v", err)
	}
	var n int
	if err := m.DB().QueryRow(`SELECT COUNT(*) FROM recently_played`).Scan(&n); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if n != 1 {
		t.Errorf("recently_played rows = %d, want 1", n)
	}
}

func TestReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	m, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	insertTracks(t, m, library.Track{Path: "/m/1.mp3", Title: "keep"})
	m.Close()

	m2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer m2.Close()

	all, err := m2.AllTracks()
	if err != nil {
		t.Fatalf("AllTracks failed: %v", err)
	}
	if len(all) != 1 || all[0].Title != "keep" {
		t.Errorf("data lost across reopen: %v", all)
	}
}

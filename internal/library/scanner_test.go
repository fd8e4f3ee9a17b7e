package library

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func acceptMP3(path string) bool {
	return strings.HasSuffix(path, ".mp3")
}

func TestScanImportsAcceptedFiles(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.mp3", "b.mp3", "sub/c.mp3", "cover.jpg", "notes.txt")

	var mu sync.Mutex
	var stored []string
	read := func(path string) (Track, error) {
		return Track{Path: path, Title: filepath.Base(path)}, nil
	}
	upsert := func(tr Track) (int64, error) {
		mu.Lock()
		defer mu.Unlock()
		stored = append(stored, tr.Title)
		return int64(len(stored)), nil
	}

	res := Scan([]string{dir}, acceptMP3, read, upsert, nil)
	if res.Imported != 3 {
		t.Errorf("Imported = %d, want 3", res.Imported)
	}
	if res.Failed != 0 {
		t.Errorf("Failed = %d, want 0", res.Failed)
	}
	if len(stored) != 3 {
		t.Errorf("stored %d tracks, want 3", len(stored))
	}
}

func TestScanCountsFailures(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "good.mp3", "bad.mp3")

	read := func(path string) (Track, error) {
		if strings.Contains(path, "bad") {
			return Track{}, errors.New("unreadable")
		}
		return Track{Path: path}, nil
	}
	upsert := func(Track) (int64, error) { return 1, nil }

	res := Scan([]string{dir}, acceptMP3, read, upsert, nil)
	if res.Imported != 1 || res.Failed != 1 {
		t.Errorf("result = %+v, want 1 imported, 1 failed", res)
	}
}

func TestScanCountsUpsertFailures(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.mp3")

	read := func(path string) (Track, error) { return Track{Path: path}, nil }
	upsert := func(Track) (int64, error) { return 0, errors.New("db locked") }

	res := Scan([]string{dir}, acceptMP3, read, upsert, nil)
	if res.Imported != 0 || res.Failed != 1 {
		t.Errorf("result = %+v, want 0 imported, 1 failed", res)
	}
}

func TestScanClosesProgress(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.mp3")

	read := func(path string) (Track, error) { return Track{Path: path}, nil }
	upsert := func(Track) (int64, error) { return 1, nil }

	progress := make(chan ScanProgress, 64)
	done := make(chan string, 1)
	go func() {
		var last string
		for p := range progress {
			last = p.Phase
		}
		done <- last
	}()

	Scan([]string{dir}, acceptMP3, read, upsert, progress)
	if last := <-done; last != "done" {
		t.Errorf("last phase = %q, want %q", last, "done")
	}
}

func TestScanMissingSource(t *testing.T) {
	read := func(path string) (Track, error) { return Track{Path: path}, nil }
	upsert := func(Track) (int64, error) { return 1, nil }

	res := Scan([]string{"/does/not/exist"}, acceptMP3, read, upsert, nil)
	if res.Imported != 0 || res.Failed != 0 {
		t.Errorf("result = %+v, want empty scan", res)
	}
}

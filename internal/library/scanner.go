package library

import (
	"io/fs"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"
)

const numWorkers = 8

// ScanProgress reports the progress of a catalog scan.
type ScanProgress struct {
	Phase       string // "scanning", "processing", "done"
	Current     int
	Total       int
	CurrentFile string
}

// ScanResult holds statistics for a completed scan.
type ScanResult struct {
	Imported int
	Failed   int
}

// ReadFunc extracts a catalog entry from a file on disk.
type ReadFunc func(path string) (Track, error)

// AcceptFunc reports whether a path should be scanned at all.
type AcceptFunc func(path string) bool

// UpsertFunc stores a catalog entry.
type UpsertFunc func(Track) (int64, error)

// fileInfo holds information about a discovered music file.
type fileInfo struct {
	path   string
	source string
}

// Scan walks the source directories, reads metadata with numWorkers
// parallel readers, and stores each track through upsert. Storage is
// sequential since SQLite dislikes concurrent writers. The progress
// channel is closed when the scan completes; pass nil to skip reporting.
func Scan(sources []string, accept AcceptFunc, read ReadFunc, upsert UpsertFunc, progress chan<- ScanProgress) ScanResult {
	if progress != nil {
		defer close(progress)
	}
	report := func(p ScanProgress) {
		if progress != nil {
			progress <- p
		}
	}

	// Phase 1: discover files
	files := discoverFiles(sources, accept, report)
	total := len(files)
	report(ScanProgress{Phase: "processing", Current: 0, Total: total})

	var processed atomic.Int64
	var failed atomic.Int64

	workCh := make(chan fileInfo, total)
	resultCh := make(chan Track, total)

	// Phase 2: parallel metadata extraction
	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for f := range workCh {
				t, err := read(f.path)
				if err != nil {
					failed.Add(1)
					processed.Add(1)
					continue
				}
				resultCh <- t
				processed.Add(1)
			}
		}()
	}

	go func() {
		for _, f := range files {
			workCh <- f
		}
		close(workCh)
	}()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				report(ScanProgress{
					Phase:   "processing",
					Current: int(processed.Load()),
					Total:   total,
				})
			case <-done:
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	// Phase 3: sequential storage
	var res ScanResult
	for t := range resultCh {
		if _, err := upsert(t); err != nil {
			res.Failed++
			continue
		}
		res.Imported++
	}
	close(done)

	res.Failed += int(failed.Load())
	report(ScanProgress{Phase: "done", Current: total, Total: total})
	return res
}

// discoverFiles walks the source directories and returns all accepted
// files. Walk errors skip the offending entry and keep going.
func discoverFiles(sources []string, accept AcceptFunc, report func(ScanProgress)) []fileInfo {
	var files []fileInfo
	for _, src := range sources {
		_ = filepath.WalkDir(src, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return nil //nolint:nilerr // intentionally skipping errors
			}
			if d.IsDir() || !accept(path) {
				return nil
			}
			files = append(files, fileInfo{path: path, source: src})
			if len(files)%100 == 0 {
				report(ScanProgress{Phase: "scanning", Current: len(files), CurrentFile: path})
			}
			return nil
		})
	}
	return files
}

package store

import (
	"database/sql"
	"sync"

	"github.com/llehouerou/resona/internal/library"
)

// Mock is a test double for Manager.
type Mock struct {
	mu sync.Mutex

	tracks   []library.Track
	queue    *QueueSnapshot
	settings *Settings

	playCounts     map[int64]int
	recentlyPlayed []int64

	saveQueueErr    error
	saveSettingsErr error
	closed          bool
}

// NewMock creates a new mock store for testing.
func NewMock() *Mock {
	return &Mock{
		playCounts: make(map[int64]int),
	}
}

func (m *Mock) DB() *sql.DB { return nil }

func (m *Mock) AllTracks() ([]library.Track, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]library.Track, len(m.tracks))
	copy(result, m.tracks)
	return result, nil
}

func (m *Mock) TracksByIDs(ids []int64) ([]library.Track, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byID := make(map[int64]library.Track, len(m.tracks))
	for _, t := range m.tracks {
		byID[t.ID] = t
	}
	var result []library.Track
	for _, id := range ids {
		if t, ok := byID[id]; ok {
			result = append(result, t)
		}
	}
	return result, nil
}

func (m *Mock) UpsertTrack(t library.Track) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.tracks {
		if existing.Path == t.Path {
			t.ID = existing.ID
			m.tracks[i] = t
			return t.ID, nil
		}
	}
	t.ID = int64(len(m.tracks) + 1)
	m.tracks = append(m.tracks, t)
	return t.ID, nil
}

func (m *Mock) SaveQueue(snapshot QueueSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveQueueErr != nil {
		return m.saveQueueErr
	}
	m.queue = &snapshot
	return nil
}

func (m *Mock) LoadQueue() (*QueueSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.queue == nil {
		return &QueueSnapshot{CurrentIndex: -1}, nil
	}
	snap := *m.queue
	return &snap, nil
}

func (m *Mock) IncrementPlayCount(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playCounts[id]++
	return nil
}

func (m *Mock) RecordRecentlyPlayed(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recentlyPlayed = append(m.recentlyPlayed, id)
	return nil
}

func (m *Mock) LoadSettings() (*Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.settings == nil {
		def := DefaultSettings()
		return &def, nil
	}
	s := *m.settings
	return &s, nil
}

func (m *Mock) SaveSettings(s Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveSettingsErr != nil {
		return m.saveSettingsErr
	}
	m.settings = &s
	return nil
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Test helpers

func (m *Mock) SetTracks(tracks ...library.Track) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tracks = tracks
}

func (m *Mock) SetQueue(snapshot *QueueSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = snapshot
}

func (m *Mock) SetSettings(s *Settings) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = s
}

func (m *Mock) PlayCount(id int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playCounts[id]
}

func (m *Mock) RecentlyPlayed() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]int64, len(m.recentlyPlayed))
	copy(result, m.recentlyPlayed)
	return result
}

func (m *Mock) SavedQueue() *QueueSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queue
}

func (m *Mock) SavedSettings() *Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings
}

func (m *Mock) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Verify Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)

package playback

import (
	"testing"

	"github.com/llehouerou/resona/internal/library"
)

func TestNextAction(t *testing.T) {
	tests := []struct {
		name       string
		repeat     RepeatMode
		index, len int
		wantAction skipAction
		wantTarget int
	}{
		{"off middle advances", RepeatOff, 1, 4, skipAdvance, 2},
		{"off last restarts", RepeatOff, 3, 4, skipRestart, 3},
		{"one middle advances", RepeatOne, 1, 4, skipAdvance, 2},
		{"one last stays", RepeatOne, 3, 4, skipNone, 3},
		{"all middle advances", RepeatAll, 1, 4, skipAdvance, 2},
		{"all last wraps", RepeatAll, 3, 4, skipAdvance, 0},
		{"empty queue", RepeatOff, -1, 0, skipNone, -1},
		{"single track off restarts", RepeatOff, 0, 1, skipRestart, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action, target := nextAction(tt.repeat, tt.index, tt.len)
			if action != tt.wantAction || target != tt.wantTarget {
				t.Errorf("nextAction = (%d, %d), want (%d, %d)",
					action, target, tt.wantAction, tt.wantTarget)
			}
		})
	}
}

func TestPrevAction(t *testing.T) {
	tests := []struct {
		name       string
		repeat     RepeatMode
		index, len int
		wantAction skipAction
		wantTarget int
	}{
		{"off middle goes back", RepeatOff, 2, 4, skipAdvance, 1},
		{"off first restarts", RepeatOff, 0, 4, skipRestart, 0},
		{"one middle goes back", RepeatOne, 2, 4, skipAdvance, 1},
		{"one first stays", RepeatOne, 0, 4, skipNone, 0},
		{"all middle goes back", RepeatAll, 2, 4, skipAdvance, 1},
		{"all first wraps to last", RepeatAll, 0, 4, skipAdvance, 3},
		{"empty queue", RepeatAll, -1, 0, skipNone, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action, target := prevAction(tt.repeat, tt.index, tt.len)
			if action != tt.wantAction || target != tt.wantTarget {
				t.Errorf("prevAction = (%d, %d), want (%d, %d)",
					action, target, tt.wantAction, tt.wantTarget)
			}
		})
	}
}

func TestNextExtendBatchSkipsQueued(t *testing.T) {
	catalog := []library.Track{
		{ID: 1, Artist: "A", Album: "x", TrackNumber: 1},
		{ID: 2, Artist: "A", Album: "x", TrackNumber: 2},
		{ID: 3, Artist: "B", Album: "y", TrackNumber: 1},
		{ID: 4, Artist: "C", Album: "z", TrackNumber: 1},
	}
	queued := []library.Track{catalog[0]}

	batch := nextExtendBatch(catalog, queued, 10)
	if len(batch) != 3 {
		t.Fatalf("len(batch) = %d, want 3", len(batch))
	}
	for _, tr := range batch {
		if tr.ID == 1 {
			t.Error("batch must not contain already-queued tracks")
		}
	}
}

func TestNextExtendBatchPrefersLastArtist(t *testing.T) {
	catalog := []library.Track{
		{ID: 1, Artist: "A", Album: "x", TrackNumber: 1},
		{ID: 2, Artist: "B", Album: "y", TrackNumber: 1},
		{ID: 3, Artist: "B", Album: "y", TrackNumber: 2},
		{ID: 4, Artist: "C", Album: "z", TrackNumber: 1},
	}
	queued := []library.Track{{ID: 9, Artist: "B"}}

	batch := nextExtendBatch(catalog, queued, 2)
	if len(batch) != 2 {
		t.Fatalf("len(batch) = %d, want 2", len(batch))
	}
	if batch[0].ID != 2 || batch[1].ID != 3 {
		t.Errorf("batch = [%d %d], want same-artist tracks [2 3] first", batch[0].ID, batch[1].ID)
	}
}

func TestNextExtendBatchDeterministic(t *testing.T) {
	catalog := []library.Track{
		{ID: 1, Artist: "C", Album: "z", TrackNumber: 1},
		{ID: 2, Artist: "A", Album: "x", TrackNumber: 2},
		{ID: 3, Artist: "A", Album: "x", TrackNumber: 1},
	}
	queued := []library.Track{{ID: 9, Artist: "Z"}}

	first := nextExtendBatch(catalog, queued, 10)
	second := nextExtendBatch(catalog, queued, 10)
	if len(first) != 3 || len(second) != 3 {
		t.Fatalf("unexpected batch sizes %d, %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("batch order differs between runs at %d", i)
		}
	}
	// Display order: artist A track 1, A track 2, then C.
	if first[0].ID != 3 || first[1].ID != 2 || first[2].ID != 1 {
		t.Errorf("batch order = [%d %d %d], want [3 2 1]", first[0].ID, first[1].ID, first[2].ID)
	}
}

func TestNextExtendBatchEmptyCases(t *testing.T) {
	catalog := []library.Track{{ID: 1}}
	if batch := nextExtendBatch(catalog, nil, 10); batch != nil {
		t.Error("empty queue should produce no batch")
	}
	if batch := nextExtendBatch(catalog, []library.Track{{ID: 1}}, 10); batch != nil {
		t.Error("fully-queued catalog should produce no batch")
	}
	if batch := nextExtendBatch(catalog, []library.Track{{ID: 2}}, 0); batch != nil {
		t.Error("zero batch size should produce no batch")
	}
}

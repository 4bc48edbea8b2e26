package player

import (
	"math/rand"
	"testing"

	"github.com/hhyags/lytte-songs-2/internal/domain/catalog"
)

func TestShuffleTracksKeepsMultiset(t *testing.T) {
	tracks := []catalog.Track{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}, {ID: 5}}
	rng := rand.New(rand.NewSource(42))

	out := shuffleTracks(rng, tracks)

	if len(out) != len(tracks) {
		t.Fatalf("expected %d tracks, got %d", len(tracks), len(out))
	}
	seen := make(map[int64]bool)
	for _, tr := range out {
		if seen[tr.ID] {
			t.Fatalf("track %d duplicated", tr.ID)
		}
		seen[tr.ID] = true
	}
	for _, tr := range tracks {
		if !seen[tr.ID] {
			t.Errorf("track %d missing from shuffle", tr.ID)
		}
	}
}

func TestShuffleTracksDoesNotModifyInput(t *testing.T) {
	tracks := []catalog.Track{{ID: 1}, {ID: 2}, {ID: 3}}
	rng := rand.New(rand.NewSource(7))

	shuffleTracks(rng, tracks)

	for i, tr := range tracks {
		if tr.ID != int64(i+1) {
			t.Fatal("input slice was reordered")
		}
	}
}

func TestShuffleTracksEmpty(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	if out := shuffleTracks(rng, nil); len(out) != 0 {
		t.Errorf("expected empty shuffle, got %v", out)
	}
}

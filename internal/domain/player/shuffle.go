package player

import (
	"math/rand"

	"github.com/hhyags/lytte-songs-2/internal/domain/catalog"
)

// shuffleTracks returns a uniform random permutation of the given tracks
// (Fisher-Yates). The input slice is not modified.
func shuffleTracks(rng *rand.Rand, tracks []catalog.Track) []catalog.Track {
	out := make([]catalog.Track, len(tracks))
	copy(out, tracks)
	rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

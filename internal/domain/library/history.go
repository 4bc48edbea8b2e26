package library

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/hhyags/lytte-songs-2/internal/domain/catalog"
)

// DefaultMaxEntries is the history cap.
const DefaultMaxEntries = 50

// HistoryStore keeps the recently played tracks, most recent first.
// Entries are deduplicated on insert and capped at maxEntries.
type HistoryStore struct {
	mu         sync.RWMutex
	entries    []catalog.Track
	maxEntries int
	onChange   func()
}

// NewHistoryStore creates an empty history store with the default cap.
func NewHistoryStore() *HistoryStore {
	return &HistoryStore{maxEntries: DefaultMaxEntries}
}

// SetOnChange registers a callback invoked after every mutation.
// Must be called before the store is shared.
func (h *HistoryStore) SetOnChange(fn func()) {
	h.onChange = fn
}

// RecordPlay records a track play event. Re-playing the track already at the
// head is a no-op; re-playing a track elsewhere in the list removes the stale
// copy before prepending the fresh one.
func (h *HistoryStore) RecordPlay(track catalog.Track) {
	h.mu.Lock()

	if len(h.entries) > 0 && h.entries[0].ID == track.ID {
		h.mu.Unlock()
		return
	}

	fresh := make([]catalog.Track, 0, len(h.entries)+1)
	fresh = append(fresh, track)
	for _, e := range h.entries {
		if e.ID != track.ID {
			fresh = append(fresh, e)
		}
	}
	if len(fresh) > h.maxEntries {
		fresh = fresh[:h.maxEntries]
	}
	h.entries = fresh
	h.mu.Unlock()

	log.Debug().Int64("id", track.ID).Str("title", track.Title).Msg("Recorded play")

	if h.onChange != nil {
		h.onChange()
	}
}

// Tracks returns the history, most recent first.
func (h *HistoryStore) Tracks() []catalog.Track {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]catalog.Track, len(h.entries))
	copy(out, h.entries)
	return out
}

// Len returns the number of history entries.
func (h *HistoryStore) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.entries)
}

// Clear removes all history entries.
func (h *HistoryStore) Clear() {
	h.mu.Lock()
	h.entries = nil
	h.mu.Unlock()

	log.Info().Msg("Play history cleared")

	if h.onChange != nil {
		h.onChange()
	}
}

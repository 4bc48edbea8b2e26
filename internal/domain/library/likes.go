// Package library provides the listener's session state: the like set and
// the bounded play history.
package library

import (
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
)

// LikeStore tracks the set of liked track identifiers.
// Membership changes only through explicit Toggle calls; a liked identifier
// may refer to a track that no longer resolves anywhere.
type LikeStore struct {
	mu  sync.RWMutex
	ids map[int64]struct{}
}

// NewLikeStore creates an empty like store.
func NewLikeStore() *LikeStore {
	return &LikeStore{ids: make(map[int64]struct{})}
}

// Toggle flips membership for the given identifier and returns the new state.
func (s *LikeStore) Toggle(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		log.Debug().Int64("id", id).Msg("Track unliked")
		return false
	}
	s.ids[id] = struct{}{}
	log.Debug().Int64("id", id).Msg("Track liked")
	return true
}

// Has reports whether the identifier is liked.
func (s *LikeStore) Has(id int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.ids[id]
	return ok
}

// IDs returns the liked identifiers in ascending order.
func (s *LikeStore) IDs() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]int64, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Count returns the number of liked tracks.
func (s *LikeStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.ids)
}

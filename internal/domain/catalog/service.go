package catalog

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Service holds the fixed album plus any user-uploaded local tracks.
type Service struct {
	mu          sync.RWMutex
	album       Album
	local       []Track
	lastLocalID int64
}

// NewService creates a catalog service seeded with the given album.
func NewService(album Album) *Service {
	return &Service{album: album}
}

// Album returns the fixed album.
func (s *Service) Album() Album {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.album
}

// AlbumTracks returns the fixed album's tracks in order.
func (s *Service) AlbumTracks() []Track {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return copyTracks(s.album.Tracks)
}

// LocalTracks returns the user-uploaded tracks in upload order.
func (s *Service) LocalTracks() []Track {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return copyTracks(s.local)
}

// AllTracks returns the album tracks followed by the local tracks.
// This fixed order is what identifier lookups resolve against.
func (s *Service) AllTracks() []Track {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]Track, 0, len(s.album.Tracks)+len(s.local))
	all = append(all, s.album.Tracks...)
	all = append(all, s.local...)
	return all
}

// Resolve looks up a track by identifier across album and local tracks.
func (s *Service) Resolve(id int64) (Track, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.album.Tracks {
		if t.ID == id {
			return t, true
		}
	}
	for _, t := range s.local {
		if t.ID == id {
			return t, true
		}
	}
	return Track{}, false
}

// FilterLiked returns all tracks whose identifier is in ids, preserving
// catalog order. Identifiers that resolve to nothing are skipped; a like
// may outlive its track.
func (s *Service) FilterLiked(ids []int64) []Track {
	liked := make(map[int64]bool, len(ids))
	for _, id := range ids {
		liked[id] = true
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Track
	for _, t := range s.album.Tracks {
		if liked[t.ID] {
			out = append(out, t)
		}
	}
	for _, t := range s.local {
		if liked[t.ID] {
			out = append(out, t)
		}
	}
	return out
}

// AddLocalTracks synthesizes tracks for uploaded files and appends them to
// the local tracks in input order. Files with empty names or locators are
// rejected at this boundary; files whose locator is already registered are
// skipped so re-scans cannot duplicate tracks. Returns the tracks added.
func (s *Service) AddLocalTracks(files []UploadedFile) []Track {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Identifiers are millisecond timestamps, bumped past the previous
	// batch so rapid uploads stay monotonically distinguishing.
	base := time.Now().UnixMilli()
	if base <= s.lastLocalID {
		base = s.lastLocalID + 1
	}

	var added []Track
	for _, f := range files {
		if f.Name == "" || f.URL == "" {
			log.Warn().Str("name", f.Name).Msg("Rejected upload with missing name or locator")
			continue
		}
		if s.hasSourceLocked(f.URL) {
			log.Debug().Str("url", f.URL).Msg("Upload already registered, skipping")
			continue
		}

		id := base + int64(len(added))
		track := Track{
			ID:        id,
			Title:     titleFromFilename(f.Name),
			Artist:    "Unknown Artist",
			Duration:  "-:--",
			SourceURL: f.URL,
		}
		s.local = append(s.local, track)
		s.lastLocalID = id
		added = append(added, track)

		log.Info().Int64("id", id).Str("title", track.Title).Msg("Added local track")
	}
	return added
}

func (s *Service) hasSourceLocked(url string) bool {
	for _, t := range s.local {
		if t.SourceURL == url {
			return true
		}
	}
	return false
}

// titleFromFilename strips the extension from an uploaded file name.
func titleFromFilename(name string) string {
	name = filepath.Base(name)
	if ext := filepath.Ext(name); ext != "" && ext != name {
		name = strings.TrimSuffix(name, ext)
	}
	return name
}

func copyTracks(tracks []Track) []Track {
	out := make([]Track, len(tracks))
	copy(out, tracks)
	return out
}

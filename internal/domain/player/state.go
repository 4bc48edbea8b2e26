// Package player provides the playback/playlist state machine that keeps a
// single playback device synchronized with user-driven mutation.
package player

import "github.com/hhyags/lytte-songs-2/internal/domain/catalog"

// Status constants for the playback state.
const (
	StatusPlay  = "play"
	StatusPause = "pause"
	StatusStop  = "stop"
)

// RepeatMode is the traversal policy at context boundaries or track end.
type RepeatMode string

const (
	// RepeatOff stops at the end of the context.
	RepeatOff RepeatMode = "off"
	// RepeatAll wraps to the start at the end of the context.
	RepeatAll RepeatMode = "all"
	// RepeatOne restarts the same track on natural end.
	RepeatOne RepeatMode = "one"
)

// Next cycles off -> all -> one -> off.
func (m RepeatMode) Next() RepeatMode {
	switch m {
	case RepeatOff:
		return RepeatAll
	case RepeatAll:
		return RepeatOne
	default:
		return RepeatOff
	}
}

// State is an immutable snapshot of the engine, published to subscribers
// after every mutation.
type State struct {
	Active   *catalog.Track
	Playlist []catalog.Track
	Shuffled bool
	Repeat   RepeatMode
	Playing  bool
	Position float64 // seconds
	Duration float64 // seconds, 0 while unknown
	Volume   float64 // [0,1]
	Muted    bool
}

// Status returns the playback status string for the snapshot.
func (s State) Status() string {
	switch {
	case s.Active == nil:
		return StatusStop
	case s.Playing:
		return StatusPlay
	default:
		return StatusPause
	}
}

// ToJSON returns the snapshot as a map suitable for pushState emission.
// Track-dependent fields are suppressed while no playback session exists.
func (s State) ToJSON() map[string]interface{} {
	state := map[string]interface{}{
		"status": s.Status(),
		"random": s.Shuffled,
		"repeat": string(s.Repeat),
		"volume": s.Volume,
		"mute":   s.Muted,
	}

	if s.Active == nil {
		return state
	}

	state["trackId"] = s.Active.ID
	state["title"] = s.Active.Title
	state["artist"] = s.Active.Artist
	state["uri"] = s.Active.SourceURL
	state["seek"] = s.Position
	state["duration"] = s.Duration
	return state
}

package socketio

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zishang520/socket.io/servers/socket/v3"

	"github.com/hhyags/lytte-songs-2/internal/domain/catalog"
	"github.com/hhyags/lytte-songs-2/internal/domain/player"
)

// describeTimeout bounds a single description generation request.
const describeTimeout = 30 * time.Second

// registerClientHandlers wires all client-driven events for one socket.
func (s *Server) registerClientHandlers(client *socket.Socket, clientID string) {
	// Playback control
	client.On("getState", func(args ...any) {
		log.Debug().Str("id", clientID).Msg("getState")
		s.pushState(client)
	})

	client.On("play", func(args ...any) {
		m := argMap(args)
		id, ok := mapInt64(m, "trackId")
		if !ok {
			log.Warn().Str("id", clientID).Interface("data", args).Msg("play without trackId")
			return
		}
		contextName := mapString(m, "context")
		log.Debug().Str("id", clientID).Int64("trackId", id).Str("context", contextName).Msg("play")

		track, found := s.catalog.Resolve(id)
		if !found {
			log.Warn().Int64("trackId", id).Msg("play for unknown track")
			return
		}
		s.engine.SelectTrack(track, s.contextTracks(contextName))
	})

	client.On("toggle", func(args ...any) {
		log.Debug().Str("id", clientID).Msg("toggle")
		s.engine.TogglePlayPause()
	})

	client.On("next", func(args ...any) {
		log.Debug().Str("id", clientID).Msg("next")
		s.engine.Advance(player.Next)
	})

	client.On("prev", func(args ...any) {
		log.Debug().Str("id", clientID).Msg("prev")
		s.engine.Advance(player.Previous)
	})

	client.On("seek", func(args ...any) {
		if len(args) == 0 {
			return
		}
		if pos, ok := args[0].(float64); ok {
			log.Debug().Str("id", clientID).Float64("pos", pos).Msg("seek")
			s.engine.Seek(pos)
		}
	})

	client.On("volume", func(args ...any) {
		if len(args) == 0 {
			return
		}
		if vol, ok := args[0].(float64); ok {
			log.Debug().Str("id", clientID).Float64("vol", vol).Msg("volume")
			s.engine.SetVolume(vol)
		}
	})

	client.On("mute", func(args ...any) {
		log.Debug().Str("id", clientID).Msg("mute")
		s.engine.ToggleMute()
	})

	client.On("toggleShuffle", func(args ...any) {
		log.Debug().Str("id", clientID).Msg("toggleShuffle")
		s.engine.ToggleShuffle()
	})

	client.On("toggleRepeat", func(args ...any) {
		log.Debug().Str("id", clientID).Msg("toggleRepeat")
		s.engine.CycleRepeat()
	})

	// Library
	client.On("toggleLike", func(args ...any) {
		m := argMap(args)
		id, ok := mapInt64(m, "trackId")
		if !ok {
			log.Warn().Str("id", clientID).Interface("data", args).Msg("toggleLike without trackId")
			return
		}
		liked := s.likes.Toggle(id)
		log.Debug().Str("id", clientID).Int64("trackId", id).Bool("liked", liked).Msg("toggleLike")
		s.debouncer.Trigger(KindLibrary)
	})

	client.On("getLiked", func(args ...any) {
		log.Debug().Str("id", clientID).Msg("getLiked")
		client.Emit("pushLiked", s.catalog.FilterLiked(s.likes.IDs()))
	})

	client.On("getHistory", func(args ...any) {
		log.Debug().Str("id", clientID).Msg("getHistory")
		client.Emit("pushHistory", s.history.Tracks())
	})

	client.On("clearHistory", func(args ...any) {
		log.Debug().Str("id", clientID).Msg("clearHistory")
		s.history.Clear()
		s.debouncer.Trigger(KindLibrary)
	})

	client.On("getLocalTracks", func(args ...any) {
		log.Debug().Str("id", clientID).Msg("getLocalTracks")
		client.Emit("pushLocalTracks", s.catalog.LocalTracks())
	})

	// Album description
	client.On("generateDescription", func(args ...any) {
		album := s.catalog.Album()
		title := album.Title
		artist := album.Artist
		if m := argMap(args); m != nil {
			if t := mapString(m, "title"); t != "" {
				title = t
			}
			if a := mapString(m, "artist"); a != "" {
				artist = a
			}
		}
		log.Debug().Str("id", clientID).Str("title", title).Msg("generateDescription")

		// Generation can take seconds; never block the event loop.
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), describeTimeout)
			defer cancel()
			text := s.describer.Generate(ctx, title, artist)
			client.Emit("pushDescription", map[string]interface{}{
				"description": text,
			})
		}()
	})

	// Device identity
	client.On("getDeviceInfo", func(args ...any) {
		log.Debug().Str("id", clientID).Msg("getDeviceInfo")
		client.Emit("pushDeviceInfo", s.device.GetInfo())
	})

	client.On("setDeviceName", func(args ...any) {
		m := argMap(args)
		name := mapString(m, "name")
		if name == "" {
			log.Warn().Str("id", clientID).Msg("setDeviceName without name")
			return
		}
		if err := s.device.SetName(name); err != nil {
			log.Error().Err(err).Msg("SetDeviceName failed")
			return
		}
		s.io.Emit("pushDeviceInfo", s.device.GetInfo())
	})
}

// contextTracks resolves a context name into its current ordered track list.
// Unknown or empty names fall back to the album.
func (s *Server) contextTracks(name string) []catalog.Track {
	switch name {
	case "liked":
		return s.catalog.FilterLiked(s.likes.IDs())
	case "history":
		return s.history.Tracks()
	case "local":
		return s.catalog.LocalTracks()
	default:
		return s.catalog.AlbumTracks()
	}
}

// argMap extracts the first event argument as a JSON object, or nil.
func argMap(args []any) map[string]interface{} {
	if len(args) == 0 {
		return nil
	}
	m, _ := args[0].(map[string]interface{})
	return m
}

// mapString reads a string field from an event payload.
func mapString(m map[string]interface{}, key string) string {
	if m == nil {
		return ""
	}
	v, _ := m[key].(string)
	return v
}

// mapInt64 reads a numeric field from an event payload. JSON numbers arrive
// as float64.
func mapInt64(m map[string]interface{}, key string) (int64, bool) {
	if m == nil {
		return 0, false
	}
	switch v := m[key].(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	default:
		return 0, false
	}
}

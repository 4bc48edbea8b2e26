// Package socketio provides the Socket.io server for client communication.
package socketio

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zishang520/socket.io/servers/socket/v3"
	"github.com/zishang520/socket.io/v3/pkg/types"

	"github.com/hhyags/lytte-songs-2/internal/domain/catalog"
	"github.com/hhyags/lytte-songs-2/internal/domain/device"
	"github.com/hhyags/lytte-songs-2/internal/domain/library"
	"github.com/hhyags/lytte-songs-2/internal/domain/player"
)

// debounceWindow batches broadcasts caused by bursts of engine mutations.
const debounceWindow = 50 * time.Millisecond

// Describer produces an album description; it degrades to a fixed string
// instead of returning errors.
type Describer interface {
	Generate(ctx context.Context, title, artist string) string
}

// Server handles Socket.io connections and events.
type Server struct {
	io        *socket.Server
	engine    *player.Engine
	catalog   *catalog.Service
	likes     *library.LikeStore
	history   *library.HistoryStore
	describer Describer
	device    *device.Service
	debouncer *BroadcastDebouncer

	mu      sync.RWMutex
	clients map[string]*socket.Socket
}

// NewServer creates a new Socket.io server wired to the playback engine and
// the library stores.
func NewServer(
	engine *player.Engine,
	cat *catalog.Service,
	likes *library.LikeStore,
	history *library.HistoryStore,
	describer Describer,
	deviceSvc *device.Service,
) (*Server, error) {
	opts := socket.DefaultServerOptions()
	opts.SetPingTimeout(20 * time.Second)
	opts.SetPingInterval(25 * time.Second)
	opts.SetCors(&types.Cors{
		Origin:      "*",
		Credentials: true,
	})

	server := socket.NewServer(nil, opts)

	s := &Server{
		io:        server,
		engine:    engine,
		catalog:   cat,
		likes:     likes,
		history:   history,
		describer: describer,
		device:    deviceSvc,
		clients:   make(map[string]*socket.Socket),
	}

	s.debouncer = NewBroadcastDebouncer(debounceWindow, s.BroadcastState, s.BroadcastLibrary)

	// Every engine mutation and every history change funnels through the
	// debouncer so event bursts collapse into one broadcast.
	engine.Subscribe(func(player.State) {
		s.debouncer.Trigger(KindState)
	})
	history.SetOnChange(func() {
		s.debouncer.Trigger(KindLibrary)
	})

	s.setupHandlers()

	return s, nil
}

// setupHandlers registers the connection handler; per-client events are
// registered in registerClientHandlers.
func (s *Server) setupHandlers() {
	s.io.On("connection", func(clients ...any) {
		client := clients[0].(*socket.Socket)
		clientID := string(client.Id())

		log.Info().Str("id", clientID).Msg("Client connected")

		s.mu.Lock()
		s.clients[clientID] = client
		s.mu.Unlock()

		// Send initial state after small delay
		go func() {
			time.Sleep(100 * time.Millisecond)
			s.pushState(client)
			s.pushLibrary(client)
		}()

		client.On("disconnect", func(args ...any) {
			reason := ""
			if len(args) > 0 {
				if r, ok := args[0].(string); ok {
					reason = r
				}
			}
			log.Info().Str("id", clientID).Str("reason", reason).Msg("Client disconnected")

			s.mu.Lock()
			delete(s.clients, clientID)
			s.mu.Unlock()
		})

		s.registerClientHandlers(client, clientID)
	})
}

// pushState sends the current playback state to a client.
func (s *Server) pushState(client *socket.Socket) {
	client.Emit("pushState", s.engine.Snapshot().ToJSON())
}

// pushLibrary sends the history, liked and local lists to a client.
func (s *Server) pushLibrary(client *socket.Socket) {
	client.Emit("pushHistory", s.history.Tracks())
	client.Emit("pushLiked", s.catalog.FilterLiked(s.likes.IDs()))
	client.Emit("pushLocalTracks", s.catalog.LocalTracks())
}

// BroadcastState sends the playback state to all connected clients.
func (s *Server) BroadcastState() {
	state := s.engine.Snapshot().ToJSON()
	s.io.Emit("pushState", state)

	if log.Debug().Enabled() {
		data, _ := json.Marshal(state)
		s.mu.RLock()
		clientCount := len(s.clients)
		s.mu.RUnlock()
		log.Debug().RawJSON("state", data).Int("clients", clientCount).Msg("Broadcast state")
	}
}

// BroadcastLibrary sends the history, liked and local lists to all clients.
func (s *Server) BroadcastLibrary() {
	s.io.Emit("pushHistory", s.history.Tracks())
	s.io.Emit("pushLiked", s.catalog.FilterLiked(s.likes.IDs()))
	s.io.Emit("pushLocalTracks", s.catalog.LocalTracks())
}

// NotifyLocalTracksChanged is called when uploads add tracks outside a
// socket event, e.g. from the HTTP upload endpoint or the directory watcher.
func (s *Server) NotifyLocalTracksChanged() {
	s.debouncer.Trigger(KindLibrary)
}

// ServeHTTP implements http.Handler for the Socket.io server.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.io.ServeHandler(nil).ServeHTTP(w, r)
}

// Close closes the Socket.io server.
func (s *Server) Close() error {
	s.debouncer.Stop()
	s.io.Close(nil)
	return nil
}

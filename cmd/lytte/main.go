// Package main is the entry point for the Lytte audio player backend.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hhyags/lytte-songs-2/internal/domain/catalog"
	"github.com/hhyags/lytte-songs-2/internal/domain/device"
	"github.com/hhyags/lytte-songs-2/internal/domain/library"
	"github.com/hhyags/lytte-songs-2/internal/domain/player"
	"github.com/hhyags/lytte-songs-2/internal/infra/describe"
	"github.com/hhyags/lytte-songs-2/internal/infra/mpd"
	"github.com/hhyags/lytte-songs-2/internal/infra/uploads"
	"github.com/hhyags/lytte-songs-2/internal/transport/socketio"
	"github.com/hhyags/lytte-songs-2/internal/version"
)

func main() {
	// Command line flags
	port := flag.String("port", "3001", "HTTP server port")
	mpdHost := flag.String("mpd-host", "localhost", "MPD host")
	mpdPort := flag.Int("mpd-port", 6600, "MPD port")
	mpdPassword := flag.String("mpd-password", "", "MPD password")
	dataDir := flag.String("data-dir", "./data", "Directory for instance configuration")
	mediaDir := flag.String("media-dir", "./data/uploads", "Directory for uploaded audio files")
	staticDir := flag.String("static", "", "Directory to serve static files from (optional)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	// Environment overrides (API keys live in .env, never in flags)
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("No .env file loaded")
	}

	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Print startup banner
	versionInfo := version.GetInfo()
	log.Info().Msg("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Info().Msgf("  %s", versionInfo.String())
	log.Info().Msg("  Album Player Backend")
	log.Info().Msg("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Info().
		Str("port", *port).
		Str("mpd_host", *mpdHost).
		Int("mpd_port", *mpdPort).
		Bool("password_set", *mpdPassword != "").
		Str("data_dir", *dataDir).
		Str("media_dir", *mediaDir).
		Msg("Configuration")

	// Create MPD client
	mpdClient := mpd.NewClient(*mpdHost, *mpdPort, *mpdPassword)
	if err := mpdClient.Connect(); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to MPD")
	}
	defer mpdClient.Close()

	// Verify MPD connection
	if err := mpdClient.Ping(); err != nil {
		log.Fatal().Err(err).Msg("MPD ping failed")
	}
	log.Info().Msg("MPD connection verified")

	// Domain services
	cat := catalog.NewService(catalog.DefaultAlbum())
	likes := library.NewLikeStore()
	history := library.NewHistoryStore()

	playbackDevice := mpd.NewPlaybackDevice(mpdClient)
	engine := player.NewEngine(playbackDevice, history)

	deviceSvc, err := device.NewService(filepath.Join(*dataDir, "device.json"))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize device identity")
	}

	describer := describe.NewClient(os.Getenv("GEMINI_API_KEY"))

	// Upload store; files already on disk become local tracks at startup.
	store, err := uploads.NewStore(*mediaDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize upload store")
	}
	if existing, err := store.List(); err != nil {
		log.Warn().Err(err).Msg("Failed to list existing uploads")
	} else if len(existing) > 0 {
		files := make([]catalog.UploadedFile, 0, len(existing))
		for _, f := range existing {
			files = append(files, catalog.UploadedFile{Name: f.Name, URL: f.URL})
		}
		tracks := cat.AddLocalTracks(files)
		log.Info().Int("count", len(tracks)).Msg("Registered existing uploads as local tracks")
	}

	// Create Socket.io server
	socketServer, err := socketio.NewServer(engine, cat, likes, history, describer, deviceSvc)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Socket.io server")
	}
	defer socketServer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Engine consumes the device's playback events.
	if err := playbackDevice.Run(ctx, engine); err != nil {
		log.Fatal().Err(err).Msg("Failed to start MPD playback watcher")
	}

	// Files dropped into the media dir outside the upload endpoint still
	// become local tracks.
	if err := store.Watch(ctx, func(saved uploads.Saved) {
		cat.AddLocalTracks([]catalog.UploadedFile{{Name: saved.Name, URL: saved.URL}})
		socketServer.NotifyLocalTracksChanged()
	}); err != nil {
		log.Warn().Err(err).Msg("Upload directory watcher unavailable")
	}

	// Setup HTTP server
	mux := http.NewServeMux()

	// Socket.io endpoint
	mux.Handle("/socket.io/", socketServer)

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := mpdClient.Ping(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"error","mpd":"disconnected"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","mpd":"connected"}`))
	})

	// Version endpoint
	mux.HandleFunc("/api/v1/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(version.GetInfo())
	})

	// Media endpoints
	mux.HandleFunc("/api/v1/upload", handleUpload(cat, store, socketServer.NotifyLocalTracksChanged))
	mux.HandleFunc("/api/v1/download", handleDownload(cat, store))
	mux.Handle("/audio/", http.StripPrefix("/audio/", http.FileServer(http.Dir(store.Dir()))))

	// Serve static files if directory specified (SPA mode)
	if *staticDir != "" {
		log.Info().Str("dir", *staticDir).Msg("Serving static files")
		fs := http.FileServer(http.Dir(*staticDir))
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			path := *staticDir + r.URL.Path
			if r.URL.Path == "/" {
				path = *staticDir + "/index.html"
			}
			if _, err := os.Stat(path); os.IsNotExist(err) {
				// For SPA routing, serve index.html for non-existing paths
				http.ServeFile(w, r, *staticDir+"/index.html")
				return
			}
			fs.ServeHTTP(w, r)
		})
	}

	// Start HTTP server
	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      corsMiddleware(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		log.Info().Msg("Shutting down...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server shutdown error")
		}
	}()

	log.Info().Str("addr", ":"+*port).Msg("HTTP server listening")
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("HTTP server error")
	}

	log.Info().Msg("Server stopped")
}

package main

import (
	"encoding/json"
	"io"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hhyags/lytte-songs-2/internal/domain/catalog"
	"github.com/hhyags/lytte-songs-2/internal/infra/uploads"
)

// maxUploadBytes bounds a single multipart upload request.
const maxUploadBytes = 512 << 20

// handleUpload accepts multipart audio uploads under the "files" field,
// stores them and registers them as local tracks. Responds with the
// synthesized track entries.
func handleUpload(cat *catalog.Service, store *uploads.Store, notify func()) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			http.Error(w, "invalid multipart request", http.StatusBadRequest)
			return
		}

		headers := r.MultipartForm.File["files"]
		if len(headers) == 0 {
			http.Error(w, "no files provided", http.StatusBadRequest)
			return
		}

		var stored []catalog.UploadedFile
		for _, hdr := range headers {
			f, err := hdr.Open()
			if err != nil {
				log.Warn().Err(err).Str("file", hdr.Filename).Msg("Skipping unreadable upload")
				continue
			}
			saved, err := store.Save(hdr.Filename, f)
			f.Close()
			if err != nil {
				log.Warn().Err(err).Str("file", hdr.Filename).Msg("Upload rejected")
				continue
			}
			stored = append(stored, catalog.UploadedFile{Name: saved.Name, URL: saved.URL})
		}

		tracks := cat.AddLocalTracks(stored)
		if len(tracks) > 0 {
			notify()
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"tracks": tracks,
		})
	}
}

// handleDownload serves a track's audio by catalog ID. Uploaded files are
// served as attachments; remote sources redirect to their origin.
func handleDownload(cat *catalog.Service, store *uploads.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
		if err != nil {
			jsonError(w, "id parameter required", http.StatusBadRequest)
			return
		}

		track, ok := cat.Resolve(id)
		if !ok {
			jsonError(w, "track not found", http.StatusNotFound)
			return
		}
		if !track.HasSource() {
			jsonError(w, "track is not downloadable", http.StatusNotFound)
			return
		}

		if name, isLocal := strings.CutPrefix(track.SourceURL, uploads.URLPrefix); isLocal {
			f, err := store.Open(name)
			if err != nil {
				jsonError(w, "file not found", http.StatusNotFound)
				return
			}
			defer f.Close()

			w.Header().Set("Content-Disposition", `attachment; filename="`+downloadName(track)+`"`)
			w.Header().Set("Content-Type", "application/octet-stream")
			if _, err := io.Copy(w, f); err != nil {
				log.Debug().Err(err).Str("file", name).Msg("Download aborted")
			}
			return
		}

		// Remote sources are not proxied; the client follows the redirect.
		http.Redirect(w, r, track.SourceURL, http.StatusFound)
	}
}

// downloadName builds the "Artist - Title.ext" attachment filename.
func downloadName(track catalog.Track) string {
	ext := path.Ext(track.SourceURL)
	if ext == "" {
		ext = ".mp3"
	}
	name := track.Artist + " - " + track.Title + ext
	return strings.ReplaceAll(name, `"`, "'")
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

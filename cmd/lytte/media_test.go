package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hhyags/lytte-songs-2/internal/domain/catalog"
	"github.com/hhyags/lytte-songs-2/internal/infra/uploads"
)

func newMediaFixture(t *testing.T) (*catalog.Service, *uploads.Store) {
	t.Helper()
	store, err := uploads.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	return catalog.NewService(catalog.DefaultAlbum()), store
}

func multipartBody(t *testing.T, filenames ...string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for _, name := range filenames {
		fw, err := mw.CreateFormFile("files", name)
		if err != nil {
			t.Fatal(err)
		}
		fmt.Fprint(fw, "fake audio bytes")
	}
	mw.Close()
	return body, mw.FormDataContentType()
}

func TestHandleUploadRegistersTracks(t *testing.T) {
	cat, store := newMediaFixture(t)
	notified := false
	handler := handleUpload(cat, store, func() { notified = true })

	body, contentType := multipartBody(t, "first.mp3", "second.flac")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if !notified {
		t.Error("expected local tracks notification")
	}

	var resp struct {
		Tracks []catalog.Track `json:"tracks"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Tracks) != 2 {
		t.Fatalf("expected 2 tracks, got %d", len(resp.Tracks))
	}
	if resp.Tracks[0].Title != "first" {
		t.Errorf("expected title from filename, got %q", resp.Tracks[0].Title)
	}
	if len(cat.LocalTracks()) != 2 {
		t.Errorf("expected catalog to hold 2 local tracks, got %d", len(cat.LocalTracks()))
	}
}

func TestHandleUploadRejectsGet(t *testing.T) {
	cat, store := newMediaFixture(t)
	handler := handleUpload(cat, store, func() {})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/api/v1/upload", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}

func TestHandleUploadSkipsNonAudio(t *testing.T) {
	cat, store := newMediaFixture(t)
	handler := handleUpload(cat, store, func() {})

	body, contentType := multipartBody(t, "notes.txt", "ok.mp3")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := len(cat.LocalTracks()); got != 1 {
		t.Errorf("expected only the audio file registered, got %d tracks", got)
	}
}

func TestHandleDownloadServesLocalFile(t *testing.T) {
	cat, store := newMediaFixture(t)

	saved, err := store.Save("song.mp3", strings.NewReader("audio-bytes"))
	if err != nil {
		t.Fatal(err)
	}
	tracks := cat.AddLocalTracks([]catalog.UploadedFile{{Name: saved.Name, URL: saved.URL}})

	handler := handleDownload(cat, store)
	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/download?id=%d", tracks[0].ID), nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Body.String() != "audio-bytes" {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
	if got := rec.Header().Get("Content-Disposition"); !strings.Contains(got, "Unknown Artist - song.mp3") {
		t.Errorf("Content-Disposition = %q, want artist - title filename", got)
	}
}

func TestHandleDownloadRedirectsRemoteSource(t *testing.T) {
	cat, store := newMediaFixture(t)
	album := cat.AlbumTracks()

	handler := handleDownload(cat, store)
	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/download?id=%d", album[0].ID), nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusFound)
	}
	if got := rec.Header().Get("Location"); got != album[0].SourceURL {
		t.Errorf("Location = %q, want %q", got, album[0].SourceURL)
	}
}

func TestHandleDownloadUnknownTrack(t *testing.T) {
	cat, store := newMediaFixture(t)
	handler := handleDownload(cat, store)

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/api/v1/download?id=999999", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown id: status = %d, want %d", rec.Code, http.StatusNotFound)
	}

	rec = httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/api/v1/download", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing id: status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

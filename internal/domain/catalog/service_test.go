package catalog_test

import (
	"testing"

	"github.com/hhyags/lytte-songs-2/internal/domain/catalog"
)

func TestAllTracksOrder(t *testing.T) {
	svc := catalog.NewService(catalog.DefaultAlbum())
	added := svc.AddLocalTracks([]catalog.UploadedFile{
		{Name: "demo.mp3", URL: "/audio/demo.mp3"},
	})
	if len(added) != 1 {
		t.Fatalf("expected 1 added track, got %d", len(added))
	}

	all := svc.AllTracks()
	album := svc.Album()
	if len(all) != len(album.Tracks)+1 {
		t.Fatalf("expected %d tracks, got %d", len(album.Tracks)+1, len(all))
	}
	// Album tracks come first, local tracks after, in that fixed order.
	for i, tr := range album.Tracks {
		if all[i].ID != tr.ID {
			t.Errorf("position %d: expected album track %d, got %d", i, tr.ID, all[i].ID)
		}
	}
	if all[len(all)-1].ID != added[0].ID {
		t.Error("expected local track last")
	}
}

func TestResolve(t *testing.T) {
	svc := catalog.NewService(catalog.DefaultAlbum())

	if got, ok := svc.Resolve(101); !ok || got.Title != "Midnight City" {
		t.Errorf("expected Midnight City for id 101, got %v ok=%v", got, ok)
	}
	if _, ok := svc.Resolve(9999); ok {
		t.Error("expected miss for unknown id")
	}
}

func TestAddLocalTracksSynthesis(t *testing.T) {
	svc := catalog.NewService(catalog.DefaultAlbum())

	added := svc.AddLocalTracks([]catalog.UploadedFile{
		{Name: "My Song.flac", URL: "/audio/My%20Song.flac"},
		{Name: "another.mp3", URL: "/audio/another.mp3"},
	})
	if len(added) != 2 {
		t.Fatalf("expected 2 tracks, got %d", len(added))
	}

	first := added[0]
	if first.Title != "My Song" {
		t.Errorf("expected extension stripped, got %q", first.Title)
	}
	if first.Artist != "Unknown Artist" {
		t.Errorf("expected placeholder artist, got %q", first.Artist)
	}
	if first.Duration != "-:--" {
		t.Errorf("expected placeholder duration, got %q", first.Duration)
	}
	if !first.HasSource() {
		t.Error("expected a source locator")
	}
}

func TestAddLocalTracksMonotonicIDs(t *testing.T) {
	svc := catalog.NewService(catalog.DefaultAlbum())

	var last int64
	batch1 := svc.AddLocalTracks([]catalog.UploadedFile{
		{Name: "c.mp3", URL: "/audio/c.mp3"},
		{Name: "d.mp3", URL: "/audio/d.mp3"},
	})
	batch2 := svc.AddLocalTracks([]catalog.UploadedFile{
		{Name: "e.mp3", URL: "/audio/e.mp3"},
	})

	for _, tr := range append(append([]catalog.Track(nil), batch1...), batch2...) {
		if tr.ID <= last {
			t.Errorf("ids must be monotonically distinguishing: %d after %d", tr.ID, last)
		}
		last = tr.ID
	}
}

func TestAddLocalTracksRejectsInvalid(t *testing.T) {
	svc := catalog.NewService(catalog.DefaultAlbum())

	added := svc.AddLocalTracks([]catalog.UploadedFile{
		{Name: "", URL: "/audio/x.mp3"},
		{Name: "y.mp3", URL: ""},
	})
	if len(added) != 0 {
		t.Errorf("expected invalid uploads rejected, got %d", len(added))
	}
	if len(svc.LocalTracks()) != 0 {
		t.Error("expected no local tracks registered")
	}
}

func TestAddLocalTracksSkipsDuplicateLocators(t *testing.T) {
	svc := catalog.NewService(catalog.DefaultAlbum())

	svc.AddLocalTracks([]catalog.UploadedFile{{Name: "dup.mp3", URL: "/audio/dup.mp3"}})
	again := svc.AddLocalTracks([]catalog.UploadedFile{{Name: "dup.mp3", URL: "/audio/dup.mp3"}})

	if len(again) != 0 {
		t.Error("expected duplicate locator skipped")
	}
	if len(svc.LocalTracks()) != 1 {
		t.Errorf("expected a single local track, got %d", len(svc.LocalTracks()))
	}
}

func TestFilterLiked(t *testing.T) {
	svc := catalog.NewService(catalog.DefaultAlbum())

	liked := svc.FilterLiked([]int64{103, 101, 424242})
	if len(liked) != 2 {
		t.Fatalf("expected 2 liked tracks, got %d", len(liked))
	}
	// Catalog order, not like order; the orphaned id renders nothing.
	if liked[0].ID != 101 || liked[1].ID != 103 {
		t.Errorf("expected catalog order [101 103], got [%d %d]", liked[0].ID, liked[1].ID)
	}
}

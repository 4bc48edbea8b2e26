package player_test

import (
	"testing"

	"github.com/hhyags/lytte-songs-2/internal/domain/catalog"
	"github.com/hhyags/lytte-songs-2/internal/domain/player"
)

func TestRepeatModeNext(t *testing.T) {
	tests := []struct {
		name string
		mode player.RepeatMode
		want player.RepeatMode
	}{
		{"off to all", player.RepeatOff, player.RepeatAll},
		{"all to one", player.RepeatAll, player.RepeatOne},
		{"one to off", player.RepeatOne, player.RepeatOff},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.mode.Next(); got != tt.want {
				t.Errorf("Next(%q) = %q, want %q", tt.mode, got, tt.want)
			}
		})
	}
}

func TestStateStatus(t *testing.T) {
	track := catalog.Track{ID: 1, Title: "T"}

	tests := []struct {
		name  string
		state player.State
		want  string
	}{
		{"no session", player.State{}, player.StatusStop},
		{"playing", player.State{Active: &track, Playing: true}, player.StatusPlay},
		{"paused", player.State{Active: &track}, player.StatusPause},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.Status(); got != tt.want {
				t.Errorf("Status() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStateToJSONSuppressesTrackFieldsWithoutSession(t *testing.T) {
	state := player.State{Volume: 0.5, Repeat: player.RepeatOff}
	m := state.ToJSON()

	if m["status"] != player.StatusStop {
		t.Errorf("expected stop status, got %v", m["status"])
	}
	for _, key := range []string{"trackId", "title", "seek", "duration"} {
		if _, ok := m[key]; ok {
			t.Errorf("key %q must be suppressed when no track is active", key)
		}
	}
}

func TestStateToJSONWithActiveTrack(t *testing.T) {
	track := catalog.Track{ID: 101, Title: "Midnight City", Artist: "M83", SourceURL: "x.mp3"}
	state := player.State{Active: &track, Playing: true, Position: 12.5, Duration: 329}

	m := state.ToJSON()
	if m["status"] != player.StatusPlay {
		t.Errorf("expected play status, got %v", m["status"])
	}
	if m["trackId"] != int64(101) || m["title"] != "Midnight City" {
		t.Error("expected track identity fields")
	}
	if m["seek"] != 12.5 || m["duration"] != float64(329) {
		t.Error("expected transport fields")
	}
}

// Package catalog holds the album/track data the player can browse and play.
package catalog

// Track represents a single playable track.
type Track struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Artist    string `json:"artist"`
	Duration  string `json:"duration"` // Display duration ("5:29", "-:--" for uploads)
	SourceURL string `json:"url,omitempty"`
}

// HasSource reports whether the track has a playable/downloadable locator.
func (t Track) HasSource() bool {
	return t.SourceURL != ""
}

// Album represents an ordered collection of tracks.
type Album struct {
	ID       int64   `json:"id"`
	Title    string  `json:"title"`
	Artist   string  `json:"artist"`
	CoverURL string  `json:"coverUrl"`
	Tracks   []Track `json:"tracks"`
}

// UploadedFile describes a user-uploaded file after it has been stored:
// its original name and the locator the playback device can load it from.
type UploadedFile struct {
	Name string
	URL  string
}

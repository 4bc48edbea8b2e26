package catalog

// sampleTrackURL is a small CC0 audio file used for demonstration playback.
const sampleTrackURL = "https://interactive-examples.mdn.mozilla.net/media/cc0-audio/t-rex-roar.mp3"

// DefaultAlbum returns the fixed album the catalog is seeded with.
func DefaultAlbum() Album {
	return Album{
		ID:       1,
		Title:    "Electronic Dreams",
		Artist:   "Various Artists",
		CoverURL: "https://picsum.photos/seed/electronicdreams/500/500",
		Tracks: []Track{
			{ID: 101, Title: "Midnight City", Artist: "M83", Duration: "5:29", SourceURL: sampleTrackURL},
			{ID: 102, Title: "Genesis", Artist: "Grimes", Duration: "4:15", SourceURL: sampleTrackURL},
			{ID: 103, Title: "Oblivion", Artist: "Grimes", Duration: "4:12", SourceURL: sampleTrackURL},
			{ID: 104, Title: "Shelter", Artist: "Porter Robinson & Madeon", Duration: "3:39", SourceURL: sampleTrackURL},
			{ID: 105, Title: "Innerbloom", Artist: "RÜFÜS DU SOL", Duration: "9:38", SourceURL: sampleTrackURL},
			{ID: 106, Title: "Tearing Me Up", Artist: "Bob Moses", Duration: "7:51", SourceURL: sampleTrackURL},
		},
	}
}

package player

import (
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hhyags/lytte-songs-2/internal/domain/catalog"
)

// SilentSourceURL is loaded when a track has no playable source locator.
const SilentSourceURL = "https://aistudios-cdn.appspot.com/public/silent.mp3"

// restartThreshold is the device position past which "previous" restarts the
// current track instead of stepping back.
const restartThreshold = 3.0 // seconds

// Device is the single external playback output the engine drives.
// Commands are fire-and-forget: errors are logged, never surfaced, and the
// displayed state self-heals from the device's own event callbacks.
type Device interface {
	Load(source string) error
	Play() error
	Pause() error
	Seek(seconds float64) error
	SetVolume(volume float64) error
}

// Recorder receives a play event for every track selection.
type Recorder interface {
	RecordPlay(track catalog.Track)
}

// Direction selects which neighbor Advance moves to.
type Direction string

const (
	Next     Direction = "next"
	Previous Direction = "previous"
)

// Engine owns the active track, its ordered playlist context, the shuffle
// order, repeat mode, transport position and volume, and issues at most one
// load command to the device per genuine track change.
type Engine struct {
	mu      sync.Mutex
	pub     sync.Mutex
	device  Device
	history Recorder
	rng     *rand.Rand

	active   *catalog.Track
	playlist []catalog.Track
	shuffle  []catalog.Track
	shuffled bool
	repeat   RepeatMode
	playing  bool
	position float64
	duration float64

	volume     float64
	muted      bool
	lastVolume float64

	source string // last source handed to the device

	subscribers []func(State)
}

// Option configures an Engine.
type Option func(*Engine)

// WithRand sets the random source used for shuffle-order generation.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) {
		e.rng = rng
	}
}

// NewEngine creates an engine driving the given device. history may be nil
// when no play recording is wanted.
func NewEngine(device Device, history Recorder, opts ...Option) *Engine {
	e := &Engine{
		device:     device,
		history:    history,
		repeat:     RepeatOff,
		volume:     1,
		lastVolume: 1,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Subscribe registers a callback invoked with a state snapshot after every
// mutation, in mutation order. Must be called before the engine starts
// receiving events.
func (e *Engine) Subscribe(fn func(State)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.subscribers = append(e.subscribers, fn)
}

// Snapshot returns the current state.
func (e *Engine) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// SelectTrack plays the given track from the ordered context it was chosen
// from. Selecting the track that is already active is a pure play/pause
// toggle: no reload, no context change. Either way the play is recorded
// into history (idempotent at the head).
func (e *Engine) SelectTrack(track catalog.Track, context []catalog.Track) {
	e.mu.Lock()
	if e.active != nil && e.active.ID == track.ID {
		e.togglePlayPauseLocked()
	} else {
		e.selectLocked(track, context)
	}
	e.publishLocked(e.snapshotLocked())

	e.recordPlay(track)
}

// TogglePlayPause flips play/pause for the active track. No-op without one.
func (e *Engine) TogglePlayPause() {
	e.mu.Lock()
	if e.active == nil {
		e.mu.Unlock()
		return
	}
	e.togglePlayPauseLocked()
	e.publishLocked(e.snapshotLocked())
}

// Advance moves to the neighboring track in the current traversal order.
//
// next: wraps whenever repeat is on or shuffle is active; with repeat off in
// the plain order, reaching the end pauses without changing the active track.
// previous: restarts the current track when more than three seconds in,
// otherwise steps back (wrapping at the head).
func (e *Engine) Advance(dir Direction) {
	e.mu.Lock()
	if e.active == nil || len(e.playlist) == 0 {
		e.mu.Unlock()
		return
	}

	if dir == Previous && e.position > restartThreshold {
		e.position = 0
		e.command("seek", e.device.Seek(0))
		e.publishLocked(e.snapshotLocked())
		return
	}

	order := e.playlist
	if e.shuffled {
		order = e.shuffle
	}
	i := trackIndex(order, e.active.ID)
	if i == -1 {
		// The view replaced the context underneath us; stale, not corrupt.
		e.mu.Unlock()
		return
	}

	if dir == Next && e.repeat == RepeatOff && !e.shuffled && i == len(order)-1 {
		e.playing = false
		e.command("pause", e.device.Pause())
		e.publishLocked(e.snapshotLocked())
		return
	}

	var target catalog.Track
	if dir == Next {
		target = order[(i+1)%len(order)]
	} else {
		target = order[(i-1+len(order))%len(order)]
	}

	if target.ID == e.active.ID {
		// Wrapped onto the same track (single-element context): restart it
		// rather than toggling into pause.
		e.position = 0
		e.playing = true
		e.command("seek", e.device.Seek(0))
		e.command("play", e.device.Play())
		e.publishLocked(e.snapshotLocked())
		return
	}

	// The non-shuffled context stays the selection context so future
	// shuffle regenerations derive from it.
	e.selectLocked(target, e.playlist)
	e.publishLocked(e.snapshotLocked())

	e.recordPlay(target)
}

// Seek forwards the position to the device and updates the tracked position
// immediately; clamping is the device's concern.
func (e *Engine) Seek(seconds float64) {
	e.mu.Lock()
	if e.active == nil {
		e.mu.Unlock()
		return
	}
	e.position = seconds
	e.command("seek", e.device.Seek(seconds))
	e.publishLocked(e.snapshotLocked())
}

// SetVolume sets the volume in [0,1]. A nonzero volume while muted unmutes
// without touching the stored pre-mute volume.
func (e *Engine) SetVolume(v float64) {
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}

	e.mu.Lock()
	e.volume = v
	if v > 0 && e.muted {
		e.muted = false
	}
	e.command("setVolume", e.device.SetVolume(v))
	e.publishLocked(e.snapshotLocked())
}

// ToggleMute mutes to zero volume, remembering the current volume, or
// restores the remembered volume.
func (e *Engine) ToggleMute() {
	e.mu.Lock()
	if e.muted {
		e.muted = false
		e.volume = e.lastVolume
	} else {
		e.muted = true
		e.lastVolume = e.volume
		e.volume = 0
	}
	e.command("setVolume", e.device.SetVolume(e.volume))
	e.publishLocked(e.snapshotLocked())
}

// ToggleShuffle flips shuffle mode. Turning it on generates a fresh shuffle
// order from the current playlist immediately.
func (e *Engine) ToggleShuffle() {
	e.mu.Lock()
	e.shuffled = !e.shuffled
	if e.shuffled {
		e.shuffle = shuffleTracks(e.rng, e.playlist)
	} else {
		e.shuffle = nil
	}
	e.publishLocked(e.snapshotLocked())
}

// CycleRepeat advances the repeat mode through off -> all -> one -> off.
func (e *Engine) CycleRepeat() {
	e.mu.Lock()
	e.repeat = e.repeat.Next()
	e.publishLocked(e.snapshotLocked())
}

// OnDevicePlay reconciles isPlaying from the device; the device events, not
// the command issuer, are the source of truth.
func (e *Engine) OnDevicePlay() {
	e.mu.Lock()
	e.playing = true
	e.publishLocked(e.snapshotLocked())
}

// OnDevicePause reconciles isPlaying to false.
func (e *Engine) OnDevicePause() {
	e.mu.Lock()
	e.playing = false
	e.publishLocked(e.snapshotLocked())
}

// OnDeviceEnded handles natural end of track: repeat-one restarts in place,
// anything else behaves exactly like Advance(Next).
func (e *Engine) OnDeviceEnded() {
	e.mu.Lock()
	if e.active == nil {
		e.mu.Unlock()
		return
	}
	if e.repeat == RepeatOne {
		e.position = 0
		e.playing = true
		e.command("seek", e.device.Seek(0))
		e.command("play", e.device.Play())
		e.publishLocked(e.snapshotLocked())
		return
	}
	e.mu.Unlock()

	e.Advance(Next)
}

// OnDeviceTimeUpdate reconciles the tracked position from the device.
func (e *Engine) OnDeviceTimeUpdate(seconds float64) {
	e.mu.Lock()
	if e.active == nil {
		e.mu.Unlock()
		return
	}
	e.position = seconds
	e.publishLocked(e.snapshotLocked())
}

// OnDeviceMetadata reconciles the track duration from the device.
func (e *Engine) OnDeviceMetadata(duration float64) {
	e.mu.Lock()
	if e.active == nil {
		e.mu.Unlock()
		return
	}
	e.duration = duration
	e.publishLocked(e.snapshotLocked())
}

// selectLocked replaces the playlist context and starts the target track.
// The shuffle order is regenerated only when the context actually differs;
// advancing within the same context keeps the current permutation intact.
func (e *Engine) selectLocked(track catalog.Track, context []catalog.Track) {
	if !sameTracks(e.playlist, context) {
		e.playlist = copyTracks(context)
		if e.shuffled {
			e.shuffle = shuffleTracks(e.rng, e.playlist)
		}
	}

	t := track
	e.active = &t
	e.playing = true
	e.position = 0
	e.duration = 0

	source := track.SourceURL
	if source == "" {
		source = SilentSourceURL
	}
	if source != e.source {
		e.source = source
		e.command("load", e.device.Load(source))
		e.command("play", e.device.Play())
		return
	}

	// Same source already loaded: never reissue the load, just bring the
	// device's play state in line.
	e.command("play", e.device.Play())
}

func (e *Engine) togglePlayPauseLocked() {
	e.playing = !e.playing
	if e.playing {
		e.command("play", e.device.Play())
	} else {
		e.command("pause", e.device.Pause())
	}
}

func (e *Engine) snapshotLocked() State {
	s := State{
		Playlist: copyTracks(e.playlist),
		Shuffled: e.shuffled,
		Repeat:   e.repeat,
		Playing:  e.playing,
		Position: e.position,
		Duration: e.duration,
		Volume:   e.volume,
		Muted:    e.muted,
	}
	if e.active != nil {
		t := *e.active
		s.Active = &t
	}
	return s
}

// command logs a failed device command; playback failures are non-fatal and
// the state reconciles from the next device event.
func (e *Engine) command(name string, err error) {
	if err != nil {
		log.Warn().Err(err).Str("command", name).Msg("Device command failed")
	}
}

func (e *Engine) recordPlay(track catalog.Track) {
	if e.history != nil {
		e.history.RecordPlay(track)
	}
}

// publishLocked delivers the snapshot to subscribers in mutation order: the
// delivery lock is taken before the state lock is released, so two
// operations completing concurrently cannot swap their snapshots. Callers
// must hold mu; subscribers run without it.
func (e *Engine) publishLocked(snap State) {
	subs := e.subscribers
	e.pub.Lock()
	e.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
	e.pub.Unlock()
}

func trackIndex(tracks []catalog.Track, id int64) int {
	for i, t := range tracks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func sameTracks(a, b []catalog.Track) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			return false
		}
	}
	return true
}

func copyTracks(tracks []catalog.Track) []catalog.Track {
	out := make([]catalog.Track, len(tracks))
	copy(out, tracks)
	return out
}

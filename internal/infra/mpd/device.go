package mpd

import (
	"context"
	"math"
	"strconv"
	"sync"
	"time"

	gompd "github.com/fhs/gompd/v2/mpd"
	"github.com/rs/zerolog/log"
)

// pollInterval drives position updates while MPD is playing.
const pollInterval = time.Second

// Conn is the subset of the MPD client the device adapter needs.
type Conn interface {
	Clear() error
	Add(uri string) error
	Play(pos int) error
	Pause(pause bool) error
	SeekCur(d time.Duration) error
	SetVolume(vol int) error
	Status() (gompd.Attrs, error)
	Watch(subsystems ...string) (<-chan string, error)
}

// Handler receives playback events translated from MPD.
type Handler interface {
	OnDevicePlay()
	OnDevicePause()
	OnDeviceEnded()
	OnDeviceTimeUpdate(seconds float64)
	OnDeviceMetadata(duration float64)
}

// PlaybackDevice drives MPD as the single playback output: the queue holds
// exactly the active source, so a load is clear-then-add.
type PlaybackDevice struct {
	conn Conn

	mu            sync.Mutex
	lastState     string
	lastDuration  float64
	suppressEnded bool
}

// NewPlaybackDevice creates a device adapter over the given connection.
func NewPlaybackDevice(conn Conn) *PlaybackDevice {
	return &PlaybackDevice{conn: conn}
}

// Load replaces the queue with the given source. The stop MPD reports while
// aborting the previous track is expected and must not surface as an ended
// event.
func (d *PlaybackDevice) Load(source string) error {
	d.mu.Lock()
	d.suppressEnded = true
	d.mu.Unlock()

	if err := d.conn.Clear(); err != nil {
		return err
	}
	return d.conn.Add(source)
}

// Play starts or resumes playback.
func (d *PlaybackDevice) Play() error {
	return d.conn.Play(-1)
}

// Pause pauses playback.
func (d *PlaybackDevice) Pause() error {
	return d.conn.Pause(true)
}

// Seek seeks within the current track.
func (d *PlaybackDevice) Seek(seconds float64) error {
	return d.conn.SeekCur(time.Duration(seconds * float64(time.Second)))
}

// SetVolume maps the engine's [0,1] volume onto MPD's 0-100 scale.
func (d *PlaybackDevice) SetVolume(volume float64) error {
	return d.conn.SetVolume(int(math.Round(volume * 100)))
}

// Run watches MPD and translates its state into handler callbacks until the
// context is canceled. Position updates additionally come from a poll ticker
// since MPD only signals discrete player changes.
func (d *PlaybackDevice) Run(ctx context.Context, handler Handler) error {
	events, err := d.conn.Watch("player", "mixer")
	if err != nil {
		return err
	}

	go func() {
		log.Info().Msg("MPD playback watcher started")
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("MPD playback watcher stopped")
				return
			case _, ok := <-events:
				if !ok {
					log.Warn().Msg("MPD watcher channel closed")
					return
				}
				d.poll(handler)
			case <-ticker.C:
				d.poll(handler)
			}
		}
	}()

	return nil
}

// poll reads MPD status once and fires the callbacks for whatever changed.
func (d *PlaybackDevice) poll(handler Handler) {
	status, err := d.conn.Status()
	if err != nil {
		log.Debug().Err(err).Msg("MPD status poll failed")
		return
	}

	state := status["state"]
	elapsed := parseSeconds(status["elapsed"])
	duration := parseSeconds(status["duration"])

	var (
		played, paused, ended bool
		metadata              bool
	)

	d.mu.Lock()
	if state != d.lastState {
		switch state {
		case "play":
			played = true
			d.suppressEnded = false
		case "pause":
			paused = true
		case "stop":
			if d.suppressEnded {
				d.suppressEnded = false
			} else if d.lastState == "play" {
				ended = true
			}
		}
		d.lastState = state
	}
	if duration > 0 && duration != d.lastDuration {
		d.lastDuration = duration
		metadata = true
	}
	d.mu.Unlock()

	// Callbacks run outside the adapter lock; they re-enter the engine.
	if metadata {
		handler.OnDeviceMetadata(duration)
	}
	if played {
		handler.OnDevicePlay()
	}
	if paused {
		handler.OnDevicePause()
	}
	if ended {
		handler.OnDeviceEnded()
		return
	}
	if state == "play" {
		handler.OnDeviceTimeUpdate(elapsed)
	}
}

func parseSeconds(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

package socketio

import (
	"sync"
	"time"
)

// Broadcast kinds the debouncer distinguishes.
const (
	KindState   = "state"
	KindLibrary = "library"
)

// BroadcastDebouncer collapses rapid engine and library mutations into
// batched broadcasts. Multiple triggers within the debounce window result in
// a single broadcast per affected kind.
type BroadcastDebouncer struct {
	window          time.Duration
	stateCallback   func()
	libraryCallback func()

	mu             sync.Mutex
	pendingState   bool
	pendingLibrary bool
	timer          *time.Timer
	stopped        bool
}

// NewBroadcastDebouncer creates a debouncer with the given window duration.
// stateCallback fires for playback state changes, libraryCallback for
// history/liked/local list changes.
func NewBroadcastDebouncer(window time.Duration, stateCallback, libraryCallback func()) *BroadcastDebouncer {
	return &BroadcastDebouncer{
		window:          window,
		stateCallback:   stateCallback,
		libraryCallback: libraryCallback,
	}
}

// Trigger records that the given kind has changed. The actual broadcast
// callbacks are deferred until the debounce window elapses without further
// triggers.
func (d *BroadcastDebouncer) Trigger(kind string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	switch kind {
	case KindState:
		d.pendingState = true
	case KindLibrary:
		d.pendingLibrary = true
	}

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.flush)
}

// flush fires callbacks for any pending flags and resets them.
func (d *BroadcastDebouncer) flush() {
	d.mu.Lock()
	doState := d.pendingState
	doLibrary := d.pendingLibrary
	d.pendingState = false
	d.pendingLibrary = false
	d.mu.Unlock()

	if doState && d.stateCallback != nil {
		d.stateCallback()
	}
	if doLibrary && d.libraryCallback != nil {
		d.libraryCallback()
	}
}

// Stop prevents any further callbacks from firing.
func (d *BroadcastDebouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.pendingState = false
	d.pendingLibrary = false
}

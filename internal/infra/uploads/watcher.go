package uploads

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// settleDelay is how long a file must stay quiet after its last create or
// write event before it is reported. A copy into the media dir arrives as a
// create followed by a stream of writes; reporting early would register a
// half-written file.
const settleDelay = 500 * time.Millisecond

// Watch reports audio files dropped into the upload directory by means other
// than the upload endpoint, until the context is canceled. Names are reported
// exactly as they appear on disk; files the store would not accept are
// skipped, never renamed. Each settled file is passed to onAdd.
func (s *Store) Watch(ctx context.Context, onAdd func(Saved)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(s.dir); err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()
		log.Info().Str("dir", s.dir).Msg("Watching upload directory")

		var mu sync.Mutex
		pending := make(map[string]*time.Timer)
		defer func() {
			mu.Lock()
			for _, t := range pending {
				t.Stop()
			}
			mu.Unlock()
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
					continue
				}
				name := filepath.Base(event.Name)
				if strings.HasPrefix(name, ".") || !isAudioFile(name) {
					continue
				}

				mu.Lock()
				if t, exists := pending[name]; exists {
					t.Reset(settleDelay)
					mu.Unlock()
					continue
				}
				pending[name] = time.AfterFunc(settleDelay, func() {
					mu.Lock()
					delete(pending, name)
					mu.Unlock()

					if _, err := os.Stat(filepath.Join(s.dir, name)); err != nil {
						return
					}
					log.Debug().Str("file", name).Msg("New audio file detected")
					onAdd(Saved{Name: name, URL: URLPrefix + name})
				})
				mu.Unlock()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn().Err(err).Msg("Upload watcher error")
			}
		}
	}()

	return nil
}

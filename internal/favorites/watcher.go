package favorites

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

const debounceDelay = 100 * time.Millisecond

// Watcher calls a function when .sql files in the store's directory
// change, so favorites edited outside the UI show up.
type Watcher struct {
	watcher  *fsnotify.Watcher
	onChange func()
	stop     chan struct{}
	stopOnce sync.Once
}

// NewWatcher starts watching the store's directory.
func NewWatcher(s *Store, onChange func()) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(s.Dir()); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{
		watcher:  fw,
		onChange: onChange,
		stop:     make(chan struct{}),
	}
	go w.watch()
	return w, nil
}

// Stop stops watching.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stop)
		w.watcher.Close()
	})
}

func (w *Watcher) watch() {
	var debounceTimer *time.Timer

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Ext(event.Name) != Ext {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceDelay, w.onChange)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Warn("favorites watcher error", "err", err)

		case <-w.stop:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return
		}
	}
}

package env

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/devraw/restfile/packages/core/config"
)

// Watcher reloads configuration when its file changes, mirroring how the
// host editor propagates settings changes into open documents.
type Watcher struct {
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// WatchConfig watches path and invokes onReload with the freshly loaded
// config (or the load error) after each change. Events are debounced:
// editors commonly fire several writes per save.
func WatchConfig(path string, onReload func(*config.Config, error)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory: many editors replace the file on save, which
	// drops a watch registered on the file itself.
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{watcher: fw, done: make(chan struct{})}
	target := filepath.Clean(path)

	go func() {
		var timer *time.Timer
		for {
			select {
			case ev, ok := <-fw.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
					continue
				}
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(100*time.Millisecond, func() {
					onReload(config.LoadConfig(path))
				})
			case err, ok := <-fw.Errors:
				if !ok {
					return
				}
				onReload(nil, err)
			case <-w.done:
				return
			}
		}
	}()

	return w, nil
}

func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}

package loader

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDelay coalesces the burst of events an editor produces for one save.
const reloadDelay = 100 * time.Millisecond

// Watcher reloads a scene file each time it changes on disk.
type Watcher interface {
	// Updates delivers each successfully reloaded scene. Only the newest unread scene is kept.
	// The channel is closed by Close.
	//
	// Returns:
	//   - <-chan *SceneFile: the reloaded scenes
	Updates() <-chan *SceneFile

	// Errors delivers reload and file system errors. Errors are dropped while one is unread.
	// The channel is closed by Close.
	//
	// Returns:
	//   - <-chan error: the reload errors
	Errors() <-chan error

	// Close stops watching and closes both channels.
	//
	// Returns:
	//   - error: error from releasing the file system watch
	Close() error
}

type watcher struct {
	loader *loader
	path   string
	abs    string

	fs      *fsnotify.Watcher
	updates chan *SceneFile
	errors  chan error
	done    chan bool

	closeOnce sync.Once
	closeErr  error
	wg        sync.WaitGroup
}

var _ Watcher = &watcher{}

// newWatcher watches the directory holding path, since editors often replace a file instead of writing it.
func newWatcher(l *loader, path string) (*watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fs.Add(filepath.Dir(abs)); err != nil {
		fs.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	w := &watcher{
		loader:  l,
		path:    path,
		abs:     abs,
		fs:      fs,
		updates: make(chan *SceneFile, 1),
		errors:  make(chan error, 1),
		done:    make(chan bool),
	}
	w.wg.Add(1)
	go w.run()
	return w, nil
}

func (w *watcher) Updates() <-chan *SceneFile {
	return w.updates
}

func (w *watcher) Errors() <-chan error {
	return w.errors
}

func (w *watcher) Close() error {
	w.closeOnce.Do(func() {
		close(w.done)
		w.closeErr = w.fs.Close()
		w.wg.Wait()
		close(w.updates)
		close(w.errors)
	})
	return w.closeErr
}

func (w *watcher) run() {
	defer w.wg.Done()

	var pending <-chan time.Time
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.abs {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				pending = time.After(reloadDelay)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.report(err)
		case <-pending:
			pending = nil
			sf, err := w.loader.Reload(w.path)
			if err != nil {
				log.Printf("[Loader] reload of %s failed: %v", w.path, err)
				w.report(err)
				continue
			}
			w.publish(sf)
		}
	}
}

// publish replaces any unread scene with sf. run is the only sender.
func (w *watcher) publish(sf *SceneFile) {
	select {
	case w.updates <- sf:
	default:
		select {
		case <-w.updates:
		default:
		}
		w.updates <- sf
	}
}

func (w *watcher) report(err error) {
	select {
	case w.errors <- err:
	default:
	}
}

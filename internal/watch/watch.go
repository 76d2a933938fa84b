// Package watch reports changes to the images and lesson decks shown by ecgl.
package watch

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long a file must stay quiet before its change is
// reported, so a save burst yields one event after the last write
const DefaultDebounce = 100 * time.Millisecond

var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".bmp": true, ".webp": true,
}

// IsImage reports whether path has an image extension the viewer decodes
func IsImage(path string) bool {
	return imageExts[strings.ToLower(filepath.Ext(path))]
}

// IsLesson reports whether path is a lesson deck
func IsLesson(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".lesson")
}

// Watcher sends the path of every changed file accepted by its filter.
// Watching a file watches its directory, so editors that save by rename
// are still seen.
type Watcher struct {
	watcher  *fsnotify.Watcher
	Events   chan string
	Errors   chan error
	closeCh  chan struct{}
	done     chan struct{}
	once     sync.Once
	accept   func(string) bool
	debounce time.Duration
}

// NewWatcher watches paths (files or directories) and reports changed files
// for which accept returns true. A nil accept takes IsImage.
func NewWatcher(accept func(string) bool, paths ...string) (*Watcher, error) {
	return newWatcher(accept, DefaultDebounce, paths...)
}

func newWatcher(accept func(string) bool, debounce time.Duration, paths ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if accept == nil {
		accept = IsImage
	}

	files := make(map[string]bool)
	added := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			_ = w.Close()
			return nil, err
		}
		dir := abs
		if IsImage(abs) || IsLesson(abs) {
			files[abs] = true
			dir = filepath.Dir(abs)
		}
		if added[dir] {
			continue
		}
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, err
		}
		added[dir] = true
	}
	if len(files) > 0 {
		base := accept
		accept = func(p string) bool {
			abs, err := filepath.Abs(p)
			return err == nil && files[abs] && base(abs)
		}
	}

	watcher := &Watcher{
		watcher:  w,
		Events:   make(chan string, 16),
		Errors:   make(chan error, 1),
		closeCh:  make(chan struct{}),
		done:     make(chan struct{}),
		accept:   accept,
		debounce: debounce,
	}
	go watcher.run()
	return watcher, nil
}

// Close stops the watcher and closes Events and Errors
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
	})
	return err
}

func (w *Watcher) run() {
	// quiet receives a path once it has had no events for w.debounce
	quiet := make(chan string)
	pending := make(map[string]*time.Timer)
	defer func() {
		for _, t := range pending {
			t.Stop()
		}
		close(w.Events)
		close(w.Errors)
		close(w.done)
	}()
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !relevant(event.Op) || !w.accept(event.Name) {
				continue
			}
			name := event.Name
			if t, ok := pending[name]; ok && t.Reset(w.debounce) {
				continue
			}
			pending[name] = time.AfterFunc(w.debounce, func() {
				select {
				case quiet <- name:
				case <-w.closeCh:
				}
			})
		case name := <-quiet:
			delete(pending, name)
			select {
			case w.Events <- name:
			case <-w.closeCh:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case <-w.closeCh:
			return
		}
	}
}

func relevant(op fsnotify.Op) bool {
	return op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0
}

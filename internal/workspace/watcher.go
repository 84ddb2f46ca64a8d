package workspace

import (
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/papapumpkin/openspec/internal/fsutil"
)

// Event is a debounced filesystem change inside the openspec directory.
type Event struct {
	Path    string
	Removed bool
}

// Watcher reports markdown changes anywhere under an openspec directory.
// fsnotify is not recursive, so every subdirectory is added on Start and
// directories created later are added as they appear.
type Watcher struct {
	Dir     string
	Changes <-chan Event

	changes  chan Event
	stop     chan struct{}
	done     chan struct{}
	watcher  *fsnotify.Watcher
	debounce time.Duration
}

// NewWatcher creates a watcher for dir.
func NewWatcher(dir string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ch := make(chan Event, 16)
	return &Watcher{
		Dir:      dir,
		Changes:  ch,
		changes:  ch,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
		watcher:  fw,
		debounce: 100 * time.Millisecond,
	}, nil
}

// Start adds dir and all of its subdirectories and begins delivering events.
func (w *Watcher) Start() error {
	if err := w.addTree(w.Dir); err != nil {
		return err
	}
	go w.loop()
	return nil
}

// Stop closes the watcher and the Changes channel. Events still waiting for
// a reader when Stop is called are dropped.
func (w *Watcher) Stop() {
	close(w.stop)
	w.watcher.Close()
	<-w.done
	close(w.changes)
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		return w.watcher.Add(path)
	})
}

func (w *Watcher) loop() {
	defer close(w.done)

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				for file := range pending {
					w.emit(file)
				}
				return
			}

			if event.Has(fsnotify.Create) && fsutil.IsDir(event.Name) {
				// A new change or capability folder; files written into it
				// before the add completes are picked up by the next write.
				_ = w.addTree(event.Name)
				continue
			}
			if !isMarkdown(event.Name) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				pending[event.Name] = time.Now()
			}

		case <-ticker.C:
			now := time.Now()
			for file, t := range pending {
				if now.Sub(t) >= w.debounce {
					w.emit(file)
					delete(pending, file)
				}
			}

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

func (w *Watcher) emit(file string) {
	select {
	case w.changes <- Event{Path: file, Removed: !fsutil.Exists(file)}:
	case <-w.stop:
	}
}

func isMarkdown(name string) bool {
	base := filepath.Base(name)
	return strings.HasSuffix(base, ".md") && !strings.HasPrefix(base, ".")
}

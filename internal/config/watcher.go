package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Change identifies which watched file was edited.
type Change int

// Watched files.
const (
	ChangeConfig Change = iota
	ChangeVisibility
)

func (c Change) String() string {
	switch c {
	case ChangeConfig:
		return "config"
	case ChangeVisibility:
		return "visibility"
	default:
		return "unknown"
	}
}

// debounceDelay coalesces the burst of events an editor emits for a
// single save.
const debounceDelay = 200 * time.Millisecond

// Watcher reports edits to the config and visibility files on a
// channel the frame loop drains, so reloads happen on the loop's
// goroutine. Events are debounced per file.
//
// Watching is directory-based: editors that save through a rename
// replace the inode, so watching the file itself goes quiet after the
// first save.
type Watcher struct {
	fw    *fsnotify.Watcher
	files map[string]Change

	changes chan Change
	errors  chan error

	mu      sync.Mutex
	pending map[Change]*time.Timer
	closed  bool
	closeCh chan struct{}
	wg      sync.WaitGroup
}

// NewWatcher watches the config's own file and its visibility file.
// Directories that do not exist yet are skipped; a fresh install with
// no config dir gets a watcher that never fires.
func NewWatcher(cfg *Config) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fw: fw,
		files: map[string]Change{
			filepath.Clean(cfg.Path()):           ChangeConfig,
			filepath.Clean(cfg.VisibilityPath()): ChangeVisibility,
		},
		changes: make(chan Change, 8),
		errors:  make(chan error, 8),
		pending: make(map[Change]*time.Timer),
		closeCh: make(chan struct{}),
	}

	seen := make(map[string]bool)
	for path := range w.files {
		dir := filepath.Dir(path)
		if seen[dir] {
			continue
		}
		seen[dir] = true
		if err := fw.Add(dir); err != nil {
			// Missing dir: nothing to watch there yet.
			continue
		}
	}

	w.wg.Add(1)
	go w.run()
	return w, nil
}

// Changes returns the debounced change channel.
func (w *Watcher) Changes() <-chan Change {
	return w.changes
}

// Errors returns the underlying watcher's error channel.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Close stops the watcher. The change and error channels stay open but
// go quiet, so loop code draining them with a default case needs no
// shutdown coordination.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	for kind, t := range w.pending {
		t.Stop()
		delete(w.pending, kind)
	}
	w.mu.Unlock()

	err := w.fw.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case <-w.closeCh:
			return
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
			}
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Rename) {
		return
	}
	kind, ok := w.files[filepath.Clean(ev.Name)]
	if !ok {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if t, exists := w.pending[kind]; exists {
		t.Reset(debounceDelay)
		return
	}
	w.pending[kind] = time.AfterFunc(debounceDelay, func() {
		w.fire(kind)
	})
}

func (w *Watcher) fire(kind Change) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	delete(w.pending, kind)
	w.mu.Unlock()

	// Drop rather than block: the frame loop drains every tick, and a
	// dropped event only delays the reload to the next save.
	select {
	case w.changes <- kind:
	default:
	}
}

package plugin

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// EventType is the type of registry event.
type EventType int

const (
	// EventLoaded is emitted when a plugin is loaded.
	EventLoaded EventType = iota
	// EventUnloaded is emitted when a plugin is unloaded.
	EventUnloaded
	// EventReloaded is emitted when a changed plugin is reloaded.
	EventReloaded
	// EventLoadFailed is emitted when a plugin fails to load and is
	// skipped.
	EventLoadFailed
	// EventError is emitted when a running plugin is marked failed.
	EventError
)

// String returns a string representation of the event type.
func (t EventType) String() string {
	switch t {
	case EventLoaded:
		return "loaded"
	case EventUnloaded:
		return "unloaded"
	case EventReloaded:
		return "reloaded"
	case EventLoadFailed:
		return "load-failed"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event represents a registry event.
type Event struct {
	Type EventType
	Name string
	Path string
	Err  error
}

// EventHandler handles registry events.
// Handlers must be non-blocking and should not call back into the
// Registry to avoid deadlocks. Panics in handlers are recovered.
type EventHandler func(event Event)

// Registry tracks every loaded plugin, sorted case-insensitively by
// name. Loading goes through drivers; failures are logged, reported as
// events, and skipped so one broken plugin never blocks the rest.
type Registry struct {
	mu sync.RWMutex

	// Drivers in probe order, fixed at construction.
	drivers []Driver

	// Loaded plugins in case-insensitive name order.
	records []*Record

	// Loaded plugins by lowercased name.
	byName map[string]*Record

	// Paths that failed to load, with the fingerprint seen at the
	// time. A matching fingerprint suppresses retries so a broken
	// plugin is reported once, not on every scan.
	failed map[string]stamp

	// Event handlers (protected by mu)
	handlers []EventHandler

	log *zap.SugaredLogger
}

// Option configures a Registry.
type Option func(*Registry)

// WithDrivers sets the drivers probed for each directory entry, in
// order. The first driver whose CanLoad accepts an entry loads it.
func WithDrivers(drivers ...Driver) Option {
	return func(r *Registry) {
		r.drivers = drivers
	}
}

// WithLogger sets the registry logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(r *Registry) {
		if log != nil {
			r.log = log
		}
	}
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		byName: make(map[string]*Record),
		failed: make(map[string]stamp),
		log:    zap.NewNop().Sugar(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// LoadDir scans dir once and loads every plugin a driver accepts.
// Individual plugin failures are logged, emitted as events, and
// skipped. A missing directory is not an error; the registry just
// stays empty. The scan itself only fails when the directory exists
// but cannot be read.
func (r *Registry) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			r.log.Infow("plugin directory missing", "dir", dir)
			return nil
		}
		return fmt.Errorf("read plugin directory %s: %w", dir, err)
	}

	var events []Event

	r.mu.Lock()
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if ev, ok := r.loadPathLocked(path, entry.IsDir()); ok {
			events = append(events, ev)
		}
	}
	r.sortLocked()
	r.mu.Unlock()

	for _, ev := range events {
		r.emit(ev)
	}
	return nil
}

// UnloadDir closes and removes every plugin loaded from dir, returning
// how many were dropped. The shell uses it when the plugin directory
// moves at runtime, before scanning the new location.
func (r *Registry) UnloadDir(dir string) int {
	dirClean := filepath.Clean(dir)
	var events []Event

	r.mu.Lock()
	var gone []*Record
	for _, rec := range r.records {
		if filepath.Dir(rec.Path) == dirClean {
			gone = append(gone, rec)
		}
	}
	for _, rec := range gone {
		r.dropLocked(rec)
		events = append(events, Event{Type: EventUnloaded, Name: rec.API.Name, Path: rec.Path})
		r.log.Infow("plugin unloaded", "name", rec.API.Name, "path", rec.Path)
	}
	r.mu.Unlock()

	for _, ev := range events {
		r.emit(ev)
	}
	return len(gone)
}

// Refresh reconciles loaded plugins with the directory contents. New
// files load, missing files unload, and files whose size or
// modification time moved reload. It returns the number of applied
// changes. Load failures are skipped as in LoadDir and do not count
// as changes, except when they replace a previously loaded plugin.
func (r *Registry) Refresh(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil && !os.IsNotExist(err) {
		return 0, fmt.Errorf("read plugin directory %s: %w", dir, err)
	}

	dirClean := filepath.Clean(dir)
	changes := 0
	var events []Event

	r.mu.Lock()

	present := make(map[string]bool, len(entries))
	isDir := make(map[string]bool, len(entries))
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		present[path] = true
		isDir[path] = entry.IsDir()
	}

	// Partition existing records from this directory into gone and
	// stale before mutating anything.
	var gone, stale []*Record
	for _, rec := range r.records {
		if filepath.Dir(rec.Path) != dirClean {
			continue
		}
		if !present[rec.Path] {
			gone = append(gone, rec)
			continue
		}
		fi, err := os.Stat(rec.Path)
		if err != nil {
			gone = append(gone, rec)
			continue
		}
		if fi.Size() != rec.size || !fi.ModTime().Equal(rec.mod) {
			stale = append(stale, rec)
		}
	}

	for _, rec := range gone {
		r.dropLocked(rec)
		changes++
		events = append(events, Event{Type: EventUnloaded, Name: rec.API.Name, Path: rec.Path})
		r.log.Infow("plugin unloaded", "name", rec.API.Name, "path", rec.Path)
	}

	handled := make(map[string]bool, len(stale))
	for _, rec := range stale {
		r.dropLocked(rec)
		handled[rec.Path] = true
		changes++
		ev, ok := r.loadPathLocked(rec.Path, isDir[rec.Path])
		if !ok {
			// The driver refused an entry it accepted before; treat
			// it as removed.
			events = append(events, Event{Type: EventUnloaded, Name: rec.API.Name, Path: rec.Path})
			continue
		}
		if ev.Type == EventLoaded {
			ev.Type = EventReloaded
		}
		events = append(events, ev)
	}

	// New entries, in path order so events are deterministic.
	paths := make([]string, 0, len(present))
	for path := range present {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		if handled[path] || r.findByPathLocked(path) != nil {
			continue
		}
		ev, ok := r.loadPathLocked(path, isDir[path])
		if !ok {
			continue
		}
		events = append(events, ev)
		if ev.Type == EventLoaded {
			changes++
		}
	}

	r.sortLocked()
	r.mu.Unlock()

	for _, ev := range events {
		r.emit(ev)
	}
	return changes, nil
}

// loadPathLocked loads one directory entry if a driver accepts it and
// it is not already loaded. It returns the event to emit, or ok=false
// when the entry is skipped silently. Must be called with mu held.
func (r *Registry) loadPathLocked(path string, isDir bool) (Event, bool) {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return Event{}, false
	}

	drv := r.driverFor(path, isDir)
	if drv == nil {
		return Event{}, false
	}
	if r.findByPathLocked(path) != nil {
		return Event{}, false
	}

	// Suppress retries of a load that already failed for this exact
	// file state.
	cur, statErr := statStamp(path)
	if prev, ok := r.failed[path]; ok && statErr == nil && prev.equal(cur) {
		return Event{}, false
	}

	rec, err := r.openLocked(drv, path)
	if err != nil {
		if statErr == nil {
			r.failed[path] = cur
		}
		r.log.Warnw("plugin load failed", "path", path, "kind", drv.Kind(), "error", err)
		return Event{Type: EventLoadFailed, Name: base, Path: path, Err: err}, true
	}
	delete(r.failed, path)

	r.records = append(r.records, rec)
	r.byName[strings.ToLower(rec.API.Name)] = rec
	r.log.Infow("plugin loaded", "name", rec.API.Name, "kind", rec.Kind, "path", path)
	return Event{Type: EventLoaded, Name: rec.API.Name, Path: path}, true
}

// openLocked runs the driver and validates the result. Must be called
// with mu held.
func (r *Registry) openLocked(drv Driver, path string) (*Record, error) {
	a, handle, err := drv.Load(path)
	if err != nil {
		return nil, err
	}
	if err := a.Validate(); err != nil {
		closeHandle(handle)
		return nil, err
	}
	if _, exists := r.byName[strings.ToLower(a.Name)]; exists {
		closeHandle(handle)
		return nil, fmt.Errorf("%q: %w", a.Name, ErrDuplicateName)
	}

	rec := &Record{
		API:      a,
		Path:     path,
		Kind:     drv.Kind(),
		State:    StateLoaded,
		LoadedAt: time.Now(),
		handle:   handle,
	}
	if st, err := statStamp(path); err == nil {
		rec.size, rec.mod = st.size, st.mod
	}
	return rec, nil
}

// dropLocked closes a record's handle and removes it from the
// registry. Must be called with mu held.
func (r *Registry) dropLocked(rec *Record) {
	if rec.handle != nil {
		if err := rec.handle.Close(); err != nil {
			r.log.Warnw("plugin close failed", "name", rec.API.Name, "error", err)
		}
	}
	delete(r.byName, strings.ToLower(rec.API.Name))
	for i, rr := range r.records {
		if rr == rec {
			r.records = append(r.records[:i], r.records[i+1:]...)
			break
		}
	}
}

// sortLocked restores the case-insensitive name order, with path as a
// tiebreaker for determinism. Must be called with mu held.
func (r *Registry) sortLocked() {
	sort.Slice(r.records, func(i, j int) bool {
		a := strings.ToLower(r.records[i].API.Name)
		b := strings.ToLower(r.records[j].API.Name)
		if a != b {
			return a < b
		}
		return r.records[i].Path < r.records[j].Path
	})
}

// driverFor returns the first driver accepting the entry, or nil.
func (r *Registry) driverFor(path string, isDir bool) Driver {
	for _, drv := range r.drivers {
		if drv.CanLoad(path, isDir) {
			return drv
		}
	}
	return nil
}

// findByPathLocked returns the record loaded from path, or nil. Must
// be called with mu held.
func (r *Registry) findByPathLocked(path string) *Record {
	for _, rec := range r.records {
		if rec.Path == path {
			return rec
		}
	}
	return nil
}

// Get returns the plugin with the given name. Names are matched
// case-insensitively.
func (r *Registry) Get(name string) (*Record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.byName[strings.ToLower(name)]
	return rec, ok
}

// Records returns all loaded plugins in case-insensitive name order.
func (r *Registry) Records() []*Record {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Record, len(r.records))
	copy(out, r.records)
	return out
}

// Names returns all plugin names in registry order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.records))
	for i, rec := range r.records {
		names[i] = rec.API.Name
	}
	return names
}

// Count returns the number of loaded plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// SetState transitions a plugin between loaded and active. Moving out
// of StateError clears the recorded failure.
func (r *Registry) SetState(name string, st State) {
	r.mu.Lock()
	rec, ok := r.byName[strings.ToLower(name)]
	if ok {
		rec.State = st
		if st != StateError {
			rec.Err = nil
		}
	}
	r.mu.Unlock()
}

// SetError marks a plugin failed and records the error.
func (r *Registry) SetError(name string, err error) {
	r.mu.Lock()
	rec, ok := r.byName[strings.ToLower(name)]
	if ok {
		rec.State = StateError
		rec.Err = err
	}
	r.mu.Unlock()

	if ok {
		r.log.Errorw("plugin failed", "name", rec.API.Name, "error", err)
		r.emit(Event{Type: EventError, Name: rec.API.Name, Path: rec.Path, Err: err})
	}
}

// Errors returns all plugins in error state with their errors.
func (r *Registry) Errors() map[string]error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	errs := make(map[string]error)
	for _, rec := range r.records {
		if rec.State == StateError && rec.Err != nil {
			errs[rec.API.Name] = rec.Err
		}
	}
	return errs
}

// Subscribe adds an event handler.
// Returns an unsubscribe function to remove the handler.
func (r *Registry) Subscribe(handler EventHandler) func() {
	if handler == nil {
		return func() {} // No-op for nil handlers
	}

	r.mu.Lock()
	r.handlers = append(r.handlers, handler)
	index := len(r.handlers) - 1
	r.mu.Unlock()

	// Return unsubscribe function
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		// Set to nil instead of removing to avoid index shifting issues
		if index < len(r.handlers) {
			r.handlers[index] = nil
		}
	}
}

// Close unloads every plugin in reverse registry order and empties the
// registry. Handle close failures are collected, not fatal.
func (r *Registry) Close() error {
	r.mu.Lock()
	records := r.records
	r.records = nil
	r.byName = make(map[string]*Record)
	r.mu.Unlock()

	var errs []error
	var events []Event
	for i := len(records) - 1; i >= 0; i-- {
		rec := records[i]
		if rec.handle != nil {
			if err := rec.handle.Close(); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", rec.API.Name, err))
			}
		}
		events = append(events, Event{Type: EventUnloaded, Name: rec.API.Name, Path: rec.Path})
	}

	for _, ev := range events {
		r.emit(ev)
	}

	if len(errs) > 0 {
		return fmt.Errorf("close %d plugins: %w", len(errs), errors.Join(errs...))
	}
	return nil
}

// emit sends an event to all handlers.
// Handlers are called outside any locks and panics are recovered.
func (r *Registry) emit(event Event) {
	// Copy handlers under lock
	r.mu.RLock()
	handlers := make([]EventHandler, len(r.handlers))
	copy(handlers, r.handlers)
	r.mu.RUnlock()

	// Call handlers outside lock with panic recovery
	for _, handler := range handlers {
		if handler == nil {
			continue
		}
		func() {
			defer func() {
				recover() // Ignore panics from handlers
			}()
			handler(event)
		}()
	}
}

func closeHandle(h Handle) {
	if h != nil {
		_ = h.Close()
	}
}

// statStamp fingerprints a path for change detection.
func statStamp(path string) (stamp, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return stamp{}, err
	}
	return stamp{size: fi.Size(), mod: fi.ModTime()}, nil
}

package plugin

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// stamp fingerprints one filesystem entry.
type stamp struct {
	size int64
	mod  time.Time
}

func (s stamp) equal(o stamp) bool {
	return s.size == o.size && s.mod.Equal(o.mod)
}

// candidate reports whether a top-level directory entry could be a
// plugin: any non-hidden directory, or a file with a plugin extension.
func candidate(name string, isDir bool) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	if isDir {
		return true
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".so", ".lua":
		return true
	}
	return false
}

// Snapshot captures the size and modification time of every plugin
// candidate in a directory, so later checks can detect changes without
// loading anything. Only top-level entries are stamped; edits inside a
// directory plugin that do not touch the directory itself go unseen
// until the next real change.
type Snapshot struct {
	dir   string
	taken time.Time
	files map[string]stamp
}

// TakeSnapshot records the current state of dir. A missing directory
// yields an empty snapshot, not an error.
func TakeSnapshot(dir string) (*Snapshot, error) {
	s := &Snapshot{
		dir:   dir,
		taken: time.Now(),
		files: make(map[string]stamp),
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}

	for _, entry := range entries {
		if !candidate(entry.Name(), entry.IsDir()) {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			continue
		}
		s.files[entry.Name()] = stamp{size: fi.Size(), mod: fi.ModTime()}
	}
	return s, nil
}

// Changed re-reads the directory and reports whether any candidate was
// added, removed, or touched since the snapshot. A nil snapshot always
// reports changed. A directory that cannot be read counts as changed
// when the snapshot had entries.
func (s *Snapshot) Changed() bool {
	if s == nil {
		return true
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return len(s.files) > 0
	}

	seen := 0
	for _, entry := range entries {
		if !candidate(entry.Name(), entry.IsDir()) {
			continue
		}
		prev, ok := s.files[entry.Name()]
		if !ok {
			return true
		}
		fi, err := entry.Info()
		if err != nil {
			return true
		}
		if !prev.equal(stamp{size: fi.Size(), mod: fi.ModTime()}) {
			return true
		}
		seen++
	}
	return seen != len(s.files)
}

// Dir returns the directory the snapshot was taken of.
func (s *Snapshot) Dir() string {
	if s == nil {
		return ""
	}
	return s.dir
}

// Len returns the number of stamped entries.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.files)
}

// Taken returns when the snapshot was made.
func (s *Snapshot) Taken() time.Time {
	if s == nil {
		return time.Time{}
	}
	return s.taken
}

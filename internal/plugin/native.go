//go:build !windows

package plugin

import (
	"fmt"
	"os"
	"path/filepath"
	goplugin "plugin"
	"strings"
	"sync"

	"github.com/llzware/llzdeck/api"
)

// NativeDriver loads .so plugins built with the Go plugin package.
//
// A shared object can never be unloaded from a Go process, so the
// driver keeps the first successful open of each path for the process
// lifetime. If the file changes on disk afterwards, Load reports
// ErrNeedsRestart rather than serve the stale code as if it were new.
type NativeDriver struct {
	mu       sync.Mutex
	resident map[string]residentPlugin
}

type residentPlugin struct {
	api   *api.API
	stamp stamp
}

var _ Driver = (*NativeDriver)(nil)

// NewNativeDriver creates the native plugin driver.
func NewNativeDriver() *NativeDriver {
	return &NativeDriver{resident: make(map[string]residentPlugin)}
}

// Kind identifies the driver.
func (d *NativeDriver) Kind() Kind { return KindNative }

// CanLoad accepts regular files with a .so extension.
func (d *NativeDriver) CanLoad(path string, isDir bool) bool {
	return !isDir && strings.EqualFold(filepath.Ext(path), ".so")
}

// Load opens the shared object and resolves the vtable factory named
// by api.GetPluginSymbol. Native plugins hold no per-plugin resources
// beyond the resident mapping, so the returned handle is a no-op.
func (d *NativeDriver) Load(path string) (*api.API, Handle, error) {
	base := filepath.Base(path)

	fi, err := os.Stat(path)
	if err != nil {
		return nil, nil, fmt.Errorf("stat %s: %w", base, err)
	}
	cur := stamp{size: fi.Size(), mod: fi.ModTime()}

	d.mu.Lock()
	defer d.mu.Unlock()

	if res, ok := d.resident[path]; ok {
		if !res.stamp.equal(cur) {
			return nil, nil, fmt.Errorf("%s: %w", base, ErrNeedsRestart)
		}
		return res.api, HandleFunc(nil), nil
	}

	plug, err := goplugin.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open plugin %s: %w", base, err)
	}

	if err := checkVersion(plug, base); err != nil {
		return nil, nil, err
	}

	symbol, err := plug.Lookup(api.GetPluginSymbol)
	if err != nil {
		return nil, nil, fmt.Errorf("lookup %s: %w", api.GetPluginSymbol, err)
	}

	var factory func() *api.API
	switch v := symbol.(type) {
	case func() *api.API:
		factory = v
	case *func() *api.API:
		factory = *v
	default:
		return nil, nil, fmt.Errorf("%s symbol %s: %w", base, api.GetPluginSymbol, ErrBadSymbol)
	}

	a := factory()
	if a == nil {
		return nil, nil, fmt.Errorf("%s: %w", base, api.ErrNilAPI)
	}

	d.resident[path] = residentPlugin{api: a, stamp: cur}
	return a, HandleFunc(nil), nil
}

// checkVersion compares the plugin's declared api version against the
// host's. The symbol is optional; plugins without it are assumed
// current.
func checkVersion(plug *goplugin.Plugin, base string) error {
	symbol, err := plug.Lookup(api.VersionSymbol)
	if err != nil {
		return nil
	}
	v, ok := symbol.(*int)
	if !ok {
		return fmt.Errorf("%s symbol %s: %w", base, api.VersionSymbol, ErrBadSymbol)
	}
	if *v != api.Version {
		return fmt.Errorf("%s speaks api version %d, host speaks %d: %w", base, *v, api.Version, ErrVersionMismatch)
	}
	return nil
}

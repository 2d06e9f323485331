//go:build windows

package plugin

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/llzware/llzdeck/api"
)

// NativeDriver is a placeholder on platforms without Go plugin
// support. It still claims .so files so they show up as load failures
// instead of being silently ignored.
type NativeDriver struct{}

var _ Driver = (*NativeDriver)(nil)

// NewNativeDriver creates the native plugin driver.
func NewNativeDriver() *NativeDriver { return &NativeDriver{} }

// Kind identifies the driver.
func (d *NativeDriver) Kind() Kind { return KindNative }

// CanLoad accepts regular files with a .so extension.
func (d *NativeDriver) CanLoad(path string, isDir bool) bool {
	return !isDir && strings.EqualFold(filepath.Ext(path), ".so")
}

// Load always fails with ErrUnsupported.
func (d *NativeDriver) Load(path string) (*api.API, Handle, error) {
	return nil, nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupported)
}

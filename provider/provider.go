// Package provider defines the resource storage contract consumed by the
// localization engine, together with ready-made implementations.
package provider

import (
	"context"
	"errors"
	"path"

	"github.com/pitabwire/lingua/culture"
)

// ErrNotFound is returned by Open when no resource exists for the requested
// (basePath, culture, key) triple. Any other error is treated as the provider
// being unavailable.
var ErrNotFound = errors.New("resource not found")

// Provider supplies raw resource bytes. Implementations must be safe for
// concurrent use and must not perform culture fallback themselves.
type Provider interface {
	Open(ctx context.Context, basePath string, tag culture.Tag, key string) ([]byte, error)
}

// Prober is implemented by providers that can cheaply report whether any
// resources exist for a culture under a base path. The engine uses it to skip
// cultures without resources.
type Prober interface {
	Exists(ctx context.Context, basePath string, tag culture.Tag) (bool, error)
}

// Func adapts a plain function to the Provider interface.
type Func func(ctx context.Context, basePath string, tag culture.Tag, key string) ([]byte, error)

// Open calls f.
func (f Func) Open(ctx context.Context, basePath string, tag culture.Tag, key string) ([]byte, error) {
	return f(ctx, basePath, tag, key)
}

// CultureDir returns the directory holding resources for tag under basePath.
// Invariant resources live directly in basePath.
func CultureDir(basePath string, tag culture.Tag) string {
	if tag.IsInvariant() {
		return path.Clean(basePath)
	}
	return path.Join(basePath, tag.String())
}

// ObjectPath returns the slash separated location of key for tag under basePath.
func ObjectPath(basePath string, tag culture.Tag, key string) string {
	return path.Join(CultureDir(basePath, tag), key)
}

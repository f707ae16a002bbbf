// Package fsregistry implements the adapter registry port on the local
// filesystem. A tenant's adapter lives in its own directory under the output
// root; a marker file inside that directory signals a completed artifact.
package fsregistry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/toneforge/toneforge/internal/domain/tenant"
)

// Registry tracks adapter readiness through marker files. The marker is
// written via temp file + rename, so readers only ever observe the prior
// state or the fully published one, never a half-written marker.
type Registry struct {
	root   string
	marker string
}

// New creates a filesystem registry rooted at root. marker is the file name
// that signals a completed adapter inside a tenant directory.
func New(root, marker string) (*Registry, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create adapter root: %w", err)
	}
	return &Registry{root: root, marker: marker}, nil
}

// TenantDir returns the artifact directory for the tenant. The trainer
// writes its output here.
func (r *Registry) TenantDir(t tenant.Key) string {
	return filepath.Join(r.root, t.String())
}

// LocationFor reports the tenant's adapter directory when its marker file
// exists.
func (r *Registry) LocationFor(_ context.Context, t tenant.Key) (string, bool, error) {
	dir := r.TenantDir(t)
	if _, err := os.Stat(filepath.Join(dir, r.marker)); err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("stat marker: %w", err)
	}
	return dir, true, nil
}

// Publish marks the tenant's adapter at location as ready by renaming a
// marker file into place. Rename is atomic on POSIX filesystems, so a crash
// mid-publish leaves the previous state observable.
func (r *Registry) Publish(_ context.Context, t tenant.Key, location string) error {
	if err := os.MkdirAll(location, 0o750); err != nil {
		return fmt.Errorf("create adapter dir: %w", err)
	}

	tmp, err := os.CreateTemp(location, r.marker+".tmp-*")
	if err != nil {
		return fmt.Errorf("create marker temp: %w", err)
	}
	name := tmp.Name()
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close marker temp: %w", err)
	}

	if err := os.Rename(name, filepath.Join(location, r.marker)); err != nil {
		_ = os.Remove(name)
		return fmt.Errorf("publish marker: %w", err)
	}
	return nil
}

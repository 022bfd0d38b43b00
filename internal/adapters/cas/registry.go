// Package cas implements the compare-and-swap manifest registry.
package cas

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.trai.ch/verso/internal/core/domain"
	"go.trai.ch/verso/internal/core/ports"
	"go.trai.ch/zerr"
)

// DefaultMaxRetries bounds how often Update re-reads the manifest after losing a race.
const DefaultMaxRetries = 8

var _ ports.RevisionRegistry = (*Registry)(nil)

// Registry implements ports.RevisionRegistry using a JSON file.
// Writes go to a temporary file that is renamed over the manifest.
type Registry struct {
	mu         sync.Mutex
	maxRetries int
}

// NewRegistry creates a new Registry.
func NewRegistry() *Registry {
	return &Registry{maxRetries: DefaultMaxRetries}
}

// Load returns the manifest at path. A missing or empty file yields an empty manifest.
func (r *Registry) Load(path string) (*domain.Manifest, error) {
	//nolint:gosec // Path is cleaned and provided by trusted caller
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &domain.Manifest{}, nil
		}
		return nil, zerr.With(domain.Classify(domain.ErrRegistryReadFailed, err), "path", path)
	}

	m := &domain.Manifest{}
	if len(bytes.TrimSpace(data)) == 0 {
		return m, nil
	}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, zerr.With(domain.Classify(domain.ErrRegistryUnmarshalFailed, err), "path", path)
	}
	return m, nil
}

// Update applies mutate to a copy of the current manifest and writes it back
// with Version incremented. When another writer changed the manifest between
// the read and the write, the mutation is replayed on the fresh copy.
func (r *Registry) Update(
	ctx context.Context, path string, mutate func(*domain.Manifest) error,
) (*domain.Manifest, error) {
	for attempt := 0; attempt < r.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		current, err := r.Load(path)
		if err != nil {
			return nil, err
		}

		next := current.Clone()
		if err := mutate(next); err != nil {
			return nil, err
		}
		next.Version = current.Version + 1

		swapped, err := r.compareAndSwap(path, current.Version, next)
		if err != nil {
			return nil, err
		}
		if swapped {
			return next, nil
		}
	}
	return nil, zerr.With(domain.Tag(domain.ErrRegistryConflict, "path", path), "attempts", r.maxRetries)
}

// compareAndSwap writes next if the manifest on disk still carries expected.
func (r *Registry) compareAndSwap(path string, expected uint64, next *domain.Manifest) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	onDisk, err := r.Load(path)
	if err != nil {
		return false, err
	}
	if onDisk.Version != expected {
		return false, nil
	}

	data, err := encode(next)
	if err != nil {
		return false, err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return false, zerr.With(zerr.Wrap(err, "failed to create directory for manifest"), "path", dir)
	}

	tmp, err := os.CreateTemp(dir, ".manifest-*.json")
	if err != nil {
		return false, zerr.With(domain.Classify(domain.ErrRegistryWriteFailed, err), "path", path)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // Best effort, gone after a successful rename

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return false, zerr.With(domain.Classify(domain.ErrRegistryWriteFailed, err), "path", path)
	}
	if err := tmp.Chmod(domain.FilePerm); err != nil {
		_ = tmp.Close()
		return false, zerr.With(domain.Classify(domain.ErrRegistryWriteFailed, err), "path", path)
	}
	if err := tmp.Close(); err != nil {
		return false, zerr.With(domain.Classify(domain.ErrRegistryWriteFailed, err), "path", path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return false, zerr.With(domain.Classify(domain.ErrRegistryWriteFailed, err), "path", path)
	}
	return true, nil
}

func encode(m *domain.Manifest) ([]byte, error) {
	out := *m
	if out.Revisions == nil {
		out.Revisions = []domain.RevisionManifest{}
	}
	for i := range out.Revisions {
		if out.Revisions[i].Modules == nil {
			out.Revisions[i].Modules = []domain.ModuleRecord{}
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, domain.Classify(domain.ErrRegistryMarshalFailed, err)
	}
	return append(data, '\n'), nil
}

package ports

import (
	"context"

	"go.trai.ch/verso/internal/core/domain"
)

// RevisionRegistry persists the manifest of versioned revisions.
//
//go:generate go run go.uber.org/mock/mockgen -source=registry.go -destination=mocks/mock_registry.go -package=mocks
type RevisionRegistry interface {
	// Load returns the manifest at path. A missing file yields an empty manifest.
	Load(path string) (*domain.Manifest, error)

	// Update applies mutate to a copy of the current manifest and writes it back
	// with an incremented version, retrying when a concurrent writer won.
	Update(ctx context.Context, path string, mutate func(*domain.Manifest) error) (*domain.Manifest, error)
}

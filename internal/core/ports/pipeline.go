package ports

import (
	"context"

	"go.trai.ch/verso/internal/core/domain"
)

//go:generate go run go.uber.org/mock/mockgen -source=pipeline.go -destination=mocks/mock_pipeline.go -package=mocks

// VendorOptions controls a vendoring run.
type VendorOptions struct {
	// OutputDir names the output directory under the root that holds the staging area.
	OutputDir string
	Platform  domain.Platform
	// Cleanup lists base-name glob patterns removed after the copy.
	Cleanup []string
	// Force re-vendors even when the marker matches.
	Force bool
}

// Vendorer copies upstream modules into the owning tree.
type Vendorer interface {
	// Vendor copies module into root, replacing any previous copy of the same module.
	Vendor(ctx context.Context, root string, module *domain.VendoredModule, opts VendorOptions) error

	// Ensure vendors module unless root already holds a copy of it.
	// It reports whether a copy was made.
	Ensure(ctx context.Context, root string, module *domain.VendoredModule, opts VendorOptions) (bool, error)
}

// RewriteOptions controls namespace rewriting.
type RewriteOptions struct {
	// Strict turns every identifier continuation of a namespace match into an
	// ambiguity error instead of leaving the match untouched.
	Strict bool
}

// NamespaceRewriter produces a revision-qualified copy of a vendored tree.
type NamespaceRewriter interface {
	// Rewrite reads mapping.VendoredDir and writes the rewritten tree to dst.
	Rewrite(ctx context.Context, mapping domain.NamespaceMapping, dst string, opts RewriteOptions) error
}

// ArtifactRenamer renames loadable binaries and every reference to them.
type ArtifactRenamer interface {
	// Rename mutates tree in place and returns one record per artifact.
	Rename(
		ctx context.Context, tree string, rev domain.RevisionIdentifier, artifacts []domain.ArtifactSpec,
	) ([]domain.ArtifactRecord, error)
}

// WrapperGenerator emits the façade of one module.
type WrapperGenerator interface {
	// Generate writes the dispatcher and per-revision bindings of spec into dst.
	Generate(ctx context.Context, spec domain.WrapperSpec, dst string) error
}

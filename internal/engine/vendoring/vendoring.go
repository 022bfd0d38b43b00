// Package vendoring copies upstream native modules into the owning tree.
package vendoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/verso/internal/core/domain"
	"go.trai.ch/verso/internal/core/ports"
	"go.trai.ch/verso/internal/engine/staging"
	"go.trai.ch/zerr"
)

var _ ports.Vendorer = (*Pipeline)(nil)

// Marker identifies the upstream origin of a vendored tree.
// It is written as the VendorMarkerFileName file at the root of every target path.
type Marker struct {
	Module     string `json:"module"`
	RepoURL    string `json:"repoUrl"`
	Ref        string `json:"ref,omitempty"`
	SourcePath string `json:"sourcePath"`
}

// Pipeline implements ports.Vendorer.
type Pipeline struct {
	fetcher  ports.Fetcher
	resolver ports.PathResolver
	logger   ports.Logger
}

// NewPipeline creates a new vendoring Pipeline.
func NewPipeline(fetcher ports.Fetcher, resolver ports.PathResolver, logger ports.Logger) *Pipeline {
	return &Pipeline{
		fetcher:  fetcher,
		resolver: resolver,
		logger:   logger,
	}
}

type target struct {
	source string
	dir    string
	marker Marker
}

// Vendor fetches module and copies its declared subpaths into root.
// A target that already holds another module, or content without a marker,
// is left untouched and reported as a conflict.
func (p *Pipeline) Vendor(ctx context.Context, root string, module *domain.VendoredModule, opts ports.VendorOptions) error {
	targets, err := p.plan(root, module, opts)
	if err != nil {
		return err
	}
	for _, t := range targets {
		if err := checkOwnership(t); err != nil {
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	area := staging.NewArea(domain.StagingPath(root, opts.OutputDir))
	scratch, err := area.Create()
	if err != nil {
		return err
	}
	defer area.Discard(scratch)

	name := module.Name.String()
	p.logger.Info(fmt.Sprintf("fetching %s from %s", name, module.RepoURL))

	checkout := filepath.Join(scratch, "upstream")
	if err := p.fetcher.Fetch(ctx, module.RepoURL, module.Ref, checkout); err != nil {
		return err
	}

	cleanup := opts.Cleanup
	if module.SkipCleanup {
		cleanup = nil
	}

	for _, t := range targets {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.vendorTarget(ctx, area, checkout, t, cleanup); err != nil {
			return err
		}
		p.logger.Info(fmt.Sprintf("vendored %s into %s", name, t.dir))
	}
	return nil
}

// Ensure vendors module unless every target already carries a matching marker.
func (p *Pipeline) Ensure(
	ctx context.Context, root string, module *domain.VendoredModule, opts ports.VendorOptions,
) (bool, error) {
	targets, err := p.plan(root, module, opts)
	if err != nil {
		return false, err
	}

	if !opts.Force {
		current := true
		for _, t := range targets {
			m, ok, err := ReadMarker(t.dir)
			if err != nil {
				return false, err
			}
			if !ok || m != t.marker {
				current = false
				break
			}
		}
		if current {
			return false, nil
		}
	}

	if err := p.Vendor(ctx, root, module, opts); err != nil {
		return false, err
	}
	return true, nil
}

func (p *Pipeline) plan(root string, module *domain.VendoredModule, opts ports.VendorOptions) ([]target, error) {
	if module == nil {
		return nil, domain.Classify(domain.ErrConfiguration, domain.Tag(domain.ErrMissingParameter, "field", "module"))
	}
	platform := opts.Platform
	if platform == "" {
		platform = domain.PlatformAndroid
	}

	name := module.Name.String()
	pairs := module.PlatformPaths(platform)
	if len(pairs) == 0 {
		var detail error = zerr.New("module declares no source path for platform")
		detail = zerr.With(detail, "module", name)
		return nil, domain.Classify(domain.ErrConfiguration, zerr.With(detail, "platform", string(platform)))
	}

	targets := make([]target, 0, len(pairs))
	for _, pair := range pairs {
		targets = append(targets, target{
			source: pair[0],
			dir:    filepath.Join(root, filepath.FromSlash(pair[1])),
			marker: Marker{
				Module:     name,
				RepoURL:    module.RepoURL,
				Ref:        module.Ref,
				SourcePath: pair[0],
			},
		})
	}
	return targets, nil
}

func (p *Pipeline) vendorTarget(
	ctx context.Context, area *staging.Area, checkout string, t target, cleanup []string,
) error {
	src := filepath.Join(checkout, filepath.FromSlash(t.source))
	info, err := os.Stat(src)
	if err != nil || !info.IsDir() {
		var detail error = zerr.New("declared source path does not exist upstream")
		detail = zerr.With(detail, "module", t.marker.Module)
		return domain.Classify(domain.ErrFetch, zerr.With(detail, "sourcePath", t.source))
	}

	staged, err := area.Create()
	if err != nil {
		return err
	}
	defer area.Discard(staged)

	skipGit := func(_ string, d fs.DirEntry) bool {
		return d.Name() == ".git" || d.Name() == domain.VendorMarkerFileName
	}
	if err := staging.CopyTree(ctx, src, staged, skipGit); err != nil {
		return err
	}

	if len(cleanup) > 0 {
		matches, err := p.resolver.Match(staged, cleanup)
		if err != nil {
			return err
		}
		for _, m := range matches {
			if err := os.RemoveAll(m); err != nil {
				return zerr.With(zerr.Wrap(err, "failed to remove cleanup path"), "path", m)
			}
		}
	}

	if err := WriteMarker(staged, t.marker); err != nil {
		return err
	}
	return area.Commit(staged, t.dir)
}

// checkOwnership rejects targets that hold content not vendored from the same module.
func checkOwnership(t target) error {
	entries, err := os.ReadDir(t.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return zerr.With(zerr.Wrap(err, "failed to read target directory"), "path", t.dir)
	}
	if len(entries) == 0 {
		return nil
	}

	m, ok, err := ReadMarker(t.dir)
	if err != nil {
		return err
	}
	if !ok {
		var detail error = zerr.New("target path holds content that was not vendored")
		detail = zerr.With(detail, "module", t.marker.Module)
		return domain.Classify(domain.ErrConflict, zerr.With(detail, "path", t.dir))
	}
	if m.Module != t.marker.Module {
		var detail error = zerr.New("target path holds a different module")
		detail = zerr.With(detail, "module", t.marker.Module)
		detail = zerr.With(detail, "owner", m.Module)
		return domain.Classify(domain.ErrConflict, zerr.With(detail, "path", t.dir))
	}
	return nil
}

// ReadMarker returns the marker stored in dir. It reports false when dir has none.
func ReadMarker(dir string) (Marker, bool, error) {
	path := filepath.Join(dir, domain.VendorMarkerFileName)
	data, err := os.ReadFile(path) //nolint:gosec // Path is derived from the registry
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Marker{}, false, nil
		}
		return Marker{}, false, zerr.With(zerr.Wrap(err, "failed to read vendor marker"), "path", path)
	}

	var m Marker
	if err := json.Unmarshal(data, &m); err != nil {
		return Marker{}, false, domain.Classify(domain.ErrConflict,
			zerr.With(zerr.Wrap(err, "malformed vendor marker"), "path", path))
	}
	return m, true, nil
}

// WriteMarker stores m in dir.
func WriteMarker(dir string, m Marker) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return zerr.Wrap(err, "failed to encode vendor marker")
	}
	return staging.WriteFile(filepath.Join(dir, domain.VendorMarkerFileName), buf.Bytes(), domain.FilePerm)
}

package fs

import (
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"go.trai.ch/verso/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.PathResolver = (*Resolver)(nil)

// Resolver implements the PathResolver interface using filepath.Match.
type Resolver struct{}

// NewResolver creates a new Resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// Match returns every path below root matching one of the patterns.
// A pattern containing a slash is anchored to root and matched against the
// slash-separated relative path; a leading slash is dropped. Other patterns
// match base names at any depth. Matched directories are not descended into.
func (r *Resolver) Match(root string, patterns []string) ([]string, error) {
	anchored := make([]bool, len(patterns))
	clean := make([]string, len(patterns))
	for i, p := range patterns {
		anchored[i] = strings.Contains(p, "/")
		clean[i] = strings.TrimPrefix(p, "/")
		if _, err := path.Match(clean[i], ""); err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to glob path"), "pattern", p)
		}
	}

	var result []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == root {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		for i, pattern := range clean {
			name := d.Name()
			if anchored[i] {
				name = rel
			}
			if matched, _ := path.Match(pattern, name); matched {
				result = append(result, p)
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to walk tree"), "root", root)
	}

	sort.Strings(result)
	return result, nil
}

// Package renamer gives the loadable binaries of a module tree revision-qualified names.
package renamer

import (
	"bytes"
	"cmp"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/verso/internal/core/domain"
	"go.trai.ch/verso/internal/core/ports"
	"go.trai.ch/zerr"
)

// binarySniffLen is how many leading bytes are inspected for a NUL byte
// when deciding whether a file is text.
const binarySniffLen = 8000

// maxReportedSites bounds how many sites an error message lists.
const maxReportedSites = 5

var _ ports.ArtifactRenamer = (*Renamer)(nil)

// Renamer implements ports.ArtifactRenamer.
// It scans the whole tree before touching it, so a consistency failure leaves the tree unmodified.
type Renamer struct {
	logger ports.Logger
}

// NewRenamer creates a new Renamer.
func NewRenamer(logger ports.Logger) *Renamer {
	return &Renamer{logger: logger}
}

// scan is the result of inspecting a tree for one artifact.
type scan struct {
	spec    domain.ArtifactSpec
	matcher *matcher
	files   []string
	sites   []site
	// embedders are binaries other than the artifact's own files that carry its file name.
	embedders []string
	loads     int
	declared  int
}

// Rename renames every physical file of artifacts below tree and rewrites every reference site.
func (r *Renamer) Rename(
	ctx context.Context, tree string, rev domain.RevisionIdentifier, artifacts []domain.ArtifactSpec,
) ([]domain.ArtifactRecord, error) {
	if len(artifacts) == 0 {
		return nil, nil
	}

	texts, binaries, err := index(ctx, tree)
	if err != nil {
		return nil, err
	}

	scans := make([]*scan, 0, len(artifacts))
	for _, a := range artifacts {
		s := inspect(a, a.Rename(rev), texts, binaries)
		if err := s.check(tree); err != nil {
			return nil, err
		}
		scans = append(scans, s)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := mutate(tree, texts, scans); err != nil {
		return nil, err
	}
	if err := r.verify(ctx, tree, scans); err != nil {
		return nil, err
	}

	records := make([]domain.ArtifactRecord, 0, len(scans))
	for _, s := range scans {
		records = append(records, s.matcher.record)
		r.logger.Info(fmt.Sprintf("renamed %s to %s (%d files, %d references)",
			s.matcher.record.OriginalFile, s.matcher.record.RenamedFile, len(s.files), len(s.sites)))
	}
	return records, nil
}

// index reads every file below tree and splits text from binary content,
// both keyed by slash-separated relative path.
func index(ctx context.Context, tree string) (map[string][]byte, map[string][]byte, error) {
	texts := make(map[string][]byte)
	binaries := make(map[string][]byte)

	err := filepath.WalkDir(tree, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return zerr.With(zerr.Wrap(err, "failed to walk tree"), "path", p)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(tree, p)
		if err != nil {
			return zerr.With(zerr.Wrap(err, "failed to relativize path"), "path", p)
		}
		rel = filepath.ToSlash(rel)

		content, err := os.ReadFile(p) //nolint:gosec // Path comes from walking the tree
		if err != nil {
			return zerr.With(domain.Classify(domain.ErrFileOpenFailed, err), "path", p)
		}
		if bytes.IndexByte(content[:min(len(content), binarySniffLen)], 0) >= 0 {
			binaries[rel] = content
			return nil
		}
		texts[rel] = content
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return texts, binaries, nil
}

func inspect(spec domain.ArtifactSpec, rec domain.ArtifactRecord, texts, binaries map[string][]byte) *scan {
	s := &scan{spec: spec, matcher: newMatcher(rec)}

	for _, rel := range slices.Sorted(maps.Keys(binaries)) {
		switch {
		case filepath.Base(rel) == rec.OriginalFile:
			s.files = append(s.files, rel)
		case s.matcher.embeds(binaries[rel]):
			s.embedders = append(s.embedders, rel)
		}
	}
	for rel := range texts {
		if filepath.Base(rel) == rec.OriginalFile {
			s.files = append(s.files, rel)
		}
	}
	slices.Sort(s.files)

	for _, rel := range slices.Sorted(maps.Keys(texts)) {
		if filepath.Base(rel) == rec.OriginalFile {
			continue
		}
		for _, st := range s.matcher.find(rel, texts[rel]) {
			s.sites = append(s.sites, st)
			switch st.Kind {
			case domain.ReferenceLoadCall:
				s.loads++
			case domain.ReferenceBuildDeclaration:
				s.declared++
			case domain.ReferencePhysical:
			}
		}
	}
	return s
}

// check applies the consistency rules: a prebuilt artifact needs physical
// files exactly when it is referenced, and an artifact built from source needs
// a build declaration exactly when it is loaded.
func (s *scan) check(tree string) error {
	rec := s.matcher.record
	refs := len(s.sites)

	switch {
	case len(s.embedders) > 0:
		return s.dangling("artifact file name is embedded in a binary that cannot be rewritten")
	case s.spec.BuildFromSource && s.loads > 0 && s.declared == 0:
		return s.dangling("artifact is loaded but no build declaration produces it")
	case s.spec.BuildFromSource && s.declared > 0 && s.loads == 0:
		return s.dangling("artifact is declared but never loaded")
	case s.spec.BuildFromSource && s.declared == 0 && len(s.files) == 0:
		return s.dangling("artifact is neither declared nor shipped")
	case !s.spec.BuildFromSource && refs > 0 && len(s.files) == 0:
		return s.dangling("artifact is referenced but its physical file was not found")
	case !s.spec.BuildFromSource && refs == 0 && len(s.files) > 0:
		return s.dangling("physical file is shipped but never referenced")
	case !s.spec.BuildFromSource && refs == 0:
		return s.dangling("artifact was not found in the tree")
	}

	for _, rel := range s.files {
		renamed := filepath.Join(tree, filepath.Dir(filepath.FromSlash(rel)), rec.RenamedFile)
		if _, err := os.Lstat(renamed); err == nil {
			var detail error = zerr.New("renamed artifact already exists")
			detail = zerr.With(detail, "artifact", rec.Name)
			return domain.Classify(domain.ErrConflict, zerr.With(detail, "path", renamed))
		} else if !errors.Is(err, fs.ErrNotExist) {
			return zerr.With(zerr.Wrap(err, "failed to stat rename target"), "path", renamed)
		}
	}
	return nil
}

func (s *scan) dangling(reason string) error {
	var detail error = zerr.New(reason)
	detail = zerr.With(detail, "artifact", s.matcher.record.Name)
	detail = zerr.With(detail, "file", s.matcher.record.OriginalFile)
	detail = zerr.With(detail, "physical_files", len(s.files))
	if len(s.sites) > 0 {
		detail = zerr.With(detail, "sites", describeSites(s.sites))
	}
	if len(s.embedders) > 0 {
		detail = zerr.With(detail, "binaries", strings.Join(s.embedders, ","))
	}
	return domain.Classify(domain.ErrDanglingReference, detail)
}

// mutate renames physical files and rewrites every recorded site.
func mutate(tree string, texts map[string][]byte, scans []*scan) error {
	perFile := make(map[string][]site)
	for _, s := range scans {
		for _, st := range s.sites {
			perFile[st.Path] = append(perFile[st.Path], st)
		}
	}

	for _, rel := range slices.Sorted(maps.Keys(perFile)) {
		sites := perFile[rel]
		slices.SortFunc(sites, func(a, b site) int { return cmp.Compare(a.start, b.start) })
		content := texts[rel]

		var out bytes.Buffer
		out.Grow(len(content))
		written := 0
		for _, st := range sites {
			if st.start < written {
				continue
			}
			out.Write(content[written:st.start])
			out.WriteString(st.renamed)
			written = st.end
		}
		out.Write(content[written:])

		p := filepath.Join(tree, filepath.FromSlash(rel))
		info, err := os.Stat(p)
		if err != nil {
			return zerr.With(zerr.Wrap(err, "failed to stat file"), "path", p)
		}
		if err := os.WriteFile(p, out.Bytes(), info.Mode().Perm()); err != nil {
			return zerr.With(zerr.Wrap(err, "failed to rewrite references"), "path", p)
		}
		texts[rel] = out.Bytes()
	}

	for _, s := range scans {
		for _, rel := range s.files {
			from := filepath.Join(tree, filepath.FromSlash(rel))
			to := filepath.Join(filepath.Dir(from), s.matcher.record.RenamedFile)
			if err := os.Rename(from, to); err != nil {
				return zerr.With(zerr.Wrap(err, "failed to rename artifact"), "path", from)
			}
		}
	}
	return nil
}

// verify rescans the mutated tree. Any old name left outside comment or
// documentation text is a dangling reference.
func (r *Renamer) verify(ctx context.Context, tree string, scans []*scan) error {
	texts, binaries, err := index(ctx, tree)
	if err != nil {
		return err
	}

	for _, s := range scans {
		rec := s.matcher.record
		var leftovers []site
		for _, rel := range slices.Sorted(maps.Keys(texts)) {
			leftovers = append(leftovers, s.matcher.find(rel, stripComments(rel, texts[rel]))...)
		}

		var stale []string
		for _, rel := range slices.Sorted(maps.Keys(binaries)) {
			switch base := filepath.Base(rel); {
			case base == rec.OriginalFile:
				stale = append(stale, rel)
			case base != rec.RenamedFile && s.matcher.embeds(binaries[rel]):
				stale = append(stale, rel)
			}
		}

		if len(leftovers) > 0 || len(stale) > 0 {
			var detail error = zerr.New("old artifact name still referenced after rename")
			detail = zerr.With(detail, "artifact", rec.Name)
			if len(leftovers) > 0 {
				detail = zerr.With(detail, "sites", describeSites(leftovers))
			}
			if len(stale) > 0 {
				detail = zerr.With(detail, "files", strings.Join(stale, ","))
			}
			return domain.Classify(domain.ErrDanglingReference, detail)
		}
	}
	return nil
}

func describeSites(sites []site) string {
	parts := make([]string, 0, min(len(sites), maxReportedSites))
	for i, st := range sites {
		if i == maxReportedSites {
			parts = append(parts, fmt.Sprintf("and %d more", len(sites)-i))
			break
		}
		parts = append(parts, fmt.Sprintf("%s:%d (%s)", st.Path, st.Line, st.Kind))
	}
	return strings.Join(parts, ", ")
}

// Package rewriter produces namespace-isolated copies of vendored module trees.
package rewriter

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"go.trai.ch/verso/internal/core/domain"
	"go.trai.ch/verso/internal/core/ports"
	"go.trai.ch/verso/internal/engine/staging"
	"go.trai.ch/zerr"
)

// binarySniffLen is how many leading bytes are inspected for a NUL byte
// when deciding whether a file is text.
const binarySniffLen = 8000

var _ ports.NamespaceRewriter = (*Rewriter)(nil)

// Rewriter implements ports.NamespaceRewriter.
type Rewriter struct {
	logger ports.Logger
}

// NewRewriter creates a new Rewriter.
func NewRewriter(logger ports.Logger) *Rewriter {
	return &Rewriter{logger: logger}
}

// Rewrite copies mapping.VendoredDir into dst, moving every directory run that
// spells the source namespace to the target namespace and rewriting every
// boundary-safe namespace reference in text files.
// Shared objects are copied verbatim; any other binary file that mentions the
// namespace cannot be rewritten safely and fails the run.
func (r *Rewriter) Rewrite(
	ctx context.Context, mapping domain.NamespaceMapping, dst string, opts ports.RewriteOptions,
) error {
	src := mapping.VendoredDir
	if info, err := os.Stat(src); err != nil || !info.IsDir() {
		var detail error = zerr.New("vendored tree is missing")
		detail = zerr.With(detail, "module", mapping.Module)
		return domain.Classify(domain.ErrConfiguration, zerr.With(detail, "path", src))
	}

	sc := newScanner(mapping.SourceNamespace, mapping.TargetNamespace, mapping.SourcePath(), mapping.TargetPath(), opts.Strict)
	fromSegs := strings.Split(mapping.SourcePath(), "/")
	toSegs := strings.Split(mapping.TargetPath(), "/")

	origins := make(map[string]string)
	var files, references int

	err := filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return zerr.With(zerr.Wrap(err, "failed to walk vendored tree"), "path", p)
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(src, p)
		if err != nil {
			return zerr.With(zerr.Wrap(err, "failed to relativize path"), "path", p)
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return os.MkdirAll(dst, domain.DirPerm)
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			// Directories are created on demand, so runs emptied by relocation vanish.
			return nil
		}
		if rel == domain.VendorMarkerFileName {
			return nil
		}

		out := relocate(rel, fromSegs, toSegs)
		if prev, taken := origins[out]; taken {
			var detail error = zerr.New("two source paths relocate to the same output path")
			detail = zerr.With(detail, "path", out)
			detail = zerr.With(detail, "first", prev)
			return domain.Classify(domain.ErrConflict, zerr.With(detail, "second", rel))
		}
		origins[out] = rel
		target := filepath.Join(dst, filepath.FromSlash(out))

		switch {
		case d.Type()&fs.ModeSymlink != 0:
			link, err := os.Readlink(p)
			if err != nil {
				return zerr.With(zerr.Wrap(err, "failed to read symlink"), "path", p)
			}
			if err := os.MkdirAll(filepath.Dir(target), domain.DirPerm); err != nil {
				return zerr.With(zerr.Wrap(err, "failed to create directory"), "path", filepath.Dir(target))
			}
			return os.Symlink(link, target)
		case !d.Type().IsRegular():
			return nil
		}

		n, err := r.rewriteFile(sc, p, rel, target, d)
		if err != nil {
			return err
		}
		files++
		references += n
		return nil
	})
	if err != nil {
		return err
	}

	r.logger.Info(fmt.Sprintf("rewrote %d references to %s in %d files of %s for revision %s",
		references, mapping.SourceNamespace, files, mapping.Module, mapping.Revision))
	return nil
}

func (r *Rewriter) rewriteFile(sc *scanner, src, rel, dst string, d fs.DirEntry) (int, error) {
	info, err := d.Info()
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to stat file"), "path", src)
	}
	perm := staging.NormalizeMode(info.Mode())

	content, err := os.ReadFile(src) //nolint:gosec // Path comes from walking the vendored tree
	if err != nil {
		return 0, zerr.With(domain.Classify(domain.ErrFileOpenFailed, err), "path", src)
	}

	if isBinary(content) {
		shared := isSharedObject(rel)
		for _, f := range sc.forms {
			// Shared objects keep descriptor strings; exported native symbols cannot be renamed.
			if shared && !f.jni {
				continue
			}
			if idx := bytes.Index(content, f.from); idx >= 0 {
				return 0, ambiguousError(rel, &ambiguity{
					match:  string(f.from),
					reason: fmt.Sprintf("namespace found at byte offset %d of a binary file", idx),
				})
			}
		}
		return 0, staging.WriteFile(dst, content, perm)
	}

	rewritten, n, amb := sc.rewrite(content)
	if amb != nil {
		return 0, ambiguousError(rel, amb)
	}
	if n > 0 && !utf8.Valid(content) {
		return 0, ambiguousError(rel, &ambiguity{
			match:  string(sc.forms[0].from),
			reason: "file is not valid UTF-8",
		})
	}
	return n, staging.WriteFile(dst, rewritten, perm)
}

// relocate replaces the first run of path segments equal to from with to.
func relocate(rel string, from, to []string) string {
	segs := strings.Split(rel, "/")
	for i := 0; i+len(from) <= len(segs); i++ {
		match := true
		for j := range from {
			if segs[i+j] != from[j] {
				match = false
				break
			}
		}
		if !match {
			continue
		}
		out := make([]string, 0, len(segs)-len(from)+len(to))
		out = append(out, segs[:i]...)
		out = append(out, to...)
		out = append(out, segs[i+len(from):]...)
		return path.Join(out...)
	}
	return rel
}

func isBinary(content []byte) bool {
	return bytes.IndexByte(content[:min(len(content), binarySniffLen)], 0) >= 0
}

func isSharedObject(rel string) bool {
	return path.Ext(rel) == ".so"
}

func ambiguousError(rel string, a *ambiguity) error {
	var detail error
	if a.line > 0 {
		detail = zerr.New(fmt.Sprintf("%s:%d:%d", rel, a.line, a.column))
		detail = zerr.With(detail, "line", a.line)
		detail = zerr.With(detail, "column", a.column)
	} else {
		detail = zerr.New(rel)
	}
	detail = zerr.With(detail, "file", rel)
	detail = zerr.With(detail, "match", a.match)
	detail = zerr.With(detail, "reason", a.reason)
	return domain.Classify(domain.ErrAmbiguousRewrite, detail)
}

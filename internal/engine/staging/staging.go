// Package staging prepares uncommitted stage output and commits it atomically.
package staging

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.trai.ch/verso/internal/core/domain"
	"go.trai.ch/zerr"
)

// Area hands out scratch directories below a single staging root.
// Staged trees are committed by rename, so the root must live on the
// same file system as every commit target.
type Area struct {
	root string
}

// NewArea returns an Area rooted at dir. The directory is created lazily.
func NewArea(dir string) *Area {
	return &Area{root: dir}
}

// Root returns the staging root.
func (a *Area) Root() string {
	return a.root
}

// Create makes a fresh, empty scratch directory.
func (a *Area) Create() (string, error) {
	if err := os.MkdirAll(a.root, domain.DirPerm); err != nil {
		return "", stagingError(err, "failed to create staging root", a.root)
	}
	dir := filepath.Join(a.root, uuid.NewString())
	if err := os.Mkdir(dir, domain.DirPerm); err != nil {
		return "", stagingError(err, "failed to create staging directory", dir)
	}
	return dir, nil
}

// Discard removes a scratch directory and every file in it.
func (a *Area) Discard(dir string) {
	_ = os.RemoveAll(dir)
}

// Commit replaces final with staged. The previous content of final is moved
// aside first and removed only after staged is in place, so final holds
// either the old tree or the new one at every point in time.
func (a *Area) Commit(staged, final string) error {
	if err := os.MkdirAll(filepath.Dir(final), domain.DirPerm); err != nil {
		return stagingError(err, "failed to create commit parent", filepath.Dir(final))
	}

	var aside string
	if _, err := os.Lstat(final); err == nil {
		aside = filepath.Join(a.root, "old-"+uuid.NewString())
		if err := os.MkdirAll(a.root, domain.DirPerm); err != nil {
			return stagingError(err, "failed to create staging root", a.root)
		}
		if err := os.Rename(final, aside); err != nil {
			return stagingError(err, "failed to move previous output aside", final)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return stagingError(err, "failed to stat commit target", final)
	}

	if err := os.Rename(staged, final); err != nil {
		if aside != "" {
			_ = os.Rename(aside, final)
		}
		return stagingError(err, "failed to commit staged output", final)
	}

	if aside != "" {
		_ = os.RemoveAll(aside)
	}
	return nil
}

// Remove deletes final by moving it into the staging root first, so a
// concurrent reader never sees a partially deleted tree.
func (a *Area) Remove(final string) error {
	if _, err := os.Lstat(final); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return stagingError(err, "failed to stat removal target", final)
	}
	if err := os.MkdirAll(a.root, domain.DirPerm); err != nil {
		return stagingError(err, "failed to create staging root", a.root)
	}
	aside := filepath.Join(a.root, "old-"+uuid.NewString())
	if err := os.Rename(final, aside); err != nil {
		return stagingError(err, "failed to move output aside", final)
	}
	return os.RemoveAll(aside)
}

// SkipFunc reports whether the entry at the slash-separated relative path rel is left out of a copy.
type SkipFunc func(rel string, d fs.DirEntry) bool

// CopyTree copies src into dst in lexical order. Regular files get
// domain.FilePerm, or domain.ExecFilePerm when any execute bit was set,
// and symbolic links are recreated verbatim. dst is created if needed.
func CopyTree(ctx context.Context, src, dst string, skip SkipFunc) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return zerr.With(zerr.Wrap(err, "failed to walk tree"), "path", path)
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return zerr.With(zerr.Wrap(err, "failed to relativize path"), "path", path)
		}
		target := filepath.Join(dst, rel)

		if rel == "." {
			return os.MkdirAll(target, domain.DirPerm)
		}
		if skip != nil && skip(filepath.ToSlash(rel), d) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		switch {
		case d.IsDir():
			return os.MkdirAll(target, domain.DirPerm)
		case d.Type()&fs.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return zerr.With(zerr.Wrap(err, "failed to read symlink"), "path", path)
			}
			return os.Symlink(link, target)
		case d.Type().IsRegular():
			info, err := d.Info()
			if err != nil {
				return zerr.With(zerr.Wrap(err, "failed to stat file"), "path", path)
			}
			return CopyFile(path, target, NormalizeMode(info.Mode()))
		default:
			// Sockets, devices and pipes have no place in a source tree.
			return nil
		}
	})
}

// CopyFile copies a single regular file, creating parent directories of dst.
func CopyFile(src, dst string, perm fs.FileMode) error {
	in, err := os.Open(src) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return zerr.With(domain.Classify(domain.ErrFileOpenFailed, err), "path", src)
	}
	defer in.Close() //nolint:errcheck // Read-only handle

	if err := os.MkdirAll(filepath.Dir(dst), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create directory"), "path", filepath.Dir(dst))
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create file"), "path", dst)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return zerr.With(zerr.Wrap(err, "failed to copy file"), "path", dst)
	}
	if err := out.Close(); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to close file"), "path", dst)
	}
	return os.Chmod(dst, perm)
}

// WriteFile writes data to path with a normalized mode, creating parent directories.
func WriteFile(path string, data []byte, perm fs.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create directory"), "path", filepath.Dir(path))
	}
	if err := os.WriteFile(path, data, perm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write file"), "path", path)
	}
	return os.Chmod(path, perm)
}

// NormalizeMode maps a source mode to the mode written into output trees.
func NormalizeMode(mode fs.FileMode) fs.FileMode {
	if mode&0o111 != 0 {
		return domain.ExecFilePerm
	}
	return domain.FilePerm
}

func stagingError(err error, msg, path string) error {
	return zerr.With(zerr.Wrap(errors.Join(domain.ErrStagingFailed, err), msg), "path", path)
}

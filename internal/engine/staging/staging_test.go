package staging_test

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/verso/internal/core/domain"
	"go.trai.ch/verso/internal/engine/staging"
)

func writeFile(t *testing.T, path, content string, perm os.FileMode) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), perm))
}

func TestArea_CreateAndDiscard(t *testing.T) {
	area := staging.NewArea(filepath.Join(t.TempDir(), ".staging"))

	a, err := area.Create()
	require.NoError(t, err)
	b, err := area.Create()
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.DirExists(t, a)
	assert.Equal(t, area.Root(), filepath.Dir(a))

	area.Discard(a)
	assert.NoDirExists(t, a)
}

func TestArea_Commit(t *testing.T) {
	t.Run("creates target", func(t *testing.T) {
		root := t.TempDir()
		area := staging.NewArea(filepath.Join(root, ".staging"))

		staged, err := area.Create()
		require.NoError(t, err)
		writeFile(t, filepath.Join(staged, "a.txt"), "new", 0o644)

		final := filepath.Join(root, "out", "tree")
		require.NoError(t, area.Commit(staged, final))

		assert.FileExists(t, filepath.Join(final, "a.txt"))
		assert.NoDirExists(t, staged)
	})

	t.Run("replaces previous content", func(t *testing.T) {
		root := t.TempDir()
		area := staging.NewArea(filepath.Join(root, ".staging"))
		final := filepath.Join(root, "tree")
		writeFile(t, filepath.Join(final, "stale.txt"), "old", 0o644)

		staged, err := area.Create()
		require.NoError(t, err)
		writeFile(t, filepath.Join(staged, "fresh.txt"), "new", 0o644)

		require.NoError(t, area.Commit(staged, final))

		assert.NoFileExists(t, filepath.Join(final, "stale.txt"))
		data, err := os.ReadFile(filepath.Join(final, "fresh.txt"))
		require.NoError(t, err)
		assert.Equal(t, "new", string(data))

		leftovers, err := os.ReadDir(area.Root())
		require.NoError(t, err)
		assert.Empty(t, leftovers)
	})

	t.Run("restores previous content when staged tree is missing", func(t *testing.T) {
		root := t.TempDir()
		area := staging.NewArea(filepath.Join(root, ".staging"))
		final := filepath.Join(root, "tree")
		writeFile(t, filepath.Join(final, "keep.txt"), "old", 0o644)

		err := area.Commit(filepath.Join(area.Root(), "missing"), final)
		require.Error(t, err)
		assert.ErrorContains(t, err, domain.ErrStagingFailed.Error())
		assert.FileExists(t, filepath.Join(final, "keep.txt"))
	})
}

func TestArea_Remove(t *testing.T) {
	root := t.TempDir()
	area := staging.NewArea(filepath.Join(root, ".staging"))
	final := filepath.Join(root, "tree")
	writeFile(t, filepath.Join(final, "x", "y.txt"), "data", 0o644)

	require.NoError(t, area.Remove(final))
	assert.NoDirExists(t, final)

	// Removing a missing tree is a no-op.
	require.NoError(t, area.Remove(final))
}

func TestCopyTree(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "b", "script.sh"), "#!/bin/sh\n", 0o700)
	writeFile(t, filepath.Join(src, "a.txt"), "hello", 0o600)
	writeFile(t, filepath.Join(src, "build", "out.o"), "obj", 0o644)
	require.NoError(t, os.Symlink("a.txt", filepath.Join(src, "link")))

	dst := filepath.Join(t.TempDir(), "copy")
	skip := func(rel string, d fs.DirEntry) bool {
		return d.IsDir() && rel == "build"
	}
	require.NoError(t, staging.CopyTree(context.Background(), src, dst, skip))

	info, err := os.Stat(filepath.Join(dst, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(domain.FilePerm), info.Mode().Perm())

	info, err = os.Stat(filepath.Join(dst, "b", "script.sh"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(domain.ExecFilePerm), info.Mode().Perm())

	link, err := os.Readlink(filepath.Join(dst, "link"))
	require.NoError(t, err)
	assert.Equal(t, "a.txt", link)

	assert.NoDirExists(t, filepath.Join(dst, "build"))
}

func TestCopyTree_Canceled(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "a.txt"), "hello", 0o644)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := staging.CopyTree(ctx, src, filepath.Join(t.TempDir(), "copy"), nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestNormalizeMode(t *testing.T) {
	assert.Equal(t, os.FileMode(domain.FilePerm), staging.NormalizeMode(0o600))
	assert.Equal(t, os.FileMode(domain.ExecFilePerm), staging.NormalizeMode(0o744))
}

package fs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/verso/internal/adapters/fs"
)

func writeFile(t *testing.T, root, rel, content string, perm os.FileMode) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), perm))
}

func TestWalker_WalkFiles(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, ".git/config", "git config", 0o600)
	writeFile(t, tmpDir, "build/out.txt", "ignored content", 0o600)
	writeFile(t, tmpDir, "src/main/java/Foo.java", "class Foo {}", 0o600)
	writeFile(t, tmpDir, "README.md", "# Readme", 0o600)
	writeFile(t, tmpDir, "app.iml", "", 0o600)

	walker := fs.NewWalker()

	var files []string
	for path := range walker.WalkFiles(tmpDir, []string{"build", "*.iml"}) {
		rel, err := filepath.Rel(tmpDir, path)
		require.NoError(t, err)
		files = append(files, filepath.ToSlash(rel))
	}

	assert.Equal(t, []string{"README.md", "src/main/java/Foo.java"}, files)
}

func TestHasher_HashTree(t *testing.T) {
	walker := fs.NewWalker()
	hasher := fs.NewHasher(walker)

	a := t.TempDir()
	b := t.TempDir()
	for _, dir := range []string{a, b} {
		writeFile(t, dir, "src/Foo.java", "package com.acme;", 0o644)
		writeFile(t, dir, "gradle.properties", "x=1", 0o644)
	}

	hashA, err := hasher.HashTree(a)
	require.NoError(t, err)
	hashB, err := hasher.HashTree(b)
	require.NoError(t, err)
	assert.Equal(t, hashA, hashB)
	assert.Len(t, hashA, 16)

	t.Run("Content change", func(t *testing.T) {
		writeFile(t, b, "src/Foo.java", "package com.other;", 0o644)
		hashB2, err := hasher.HashTree(b)
		require.NoError(t, err)
		assert.NotEqual(t, hashA, hashB2)
	})

	t.Run("Mode change", func(t *testing.T) {
		c := t.TempDir()
		writeFile(t, c, "src/Foo.java", "package com.acme;", 0o755)
		writeFile(t, c, "gradle.properties", "x=1", 0o644)
		hashC, err := hasher.HashTree(c)
		require.NoError(t, err)
		assert.NotEqual(t, hashA, hashC)
	})

	t.Run("Excluded entries", func(t *testing.T) {
		d := t.TempDir()
		writeFile(t, d, "src/Foo.java", "package com.acme;", 0o644)
		writeFile(t, d, "gradle.properties", "x=1", 0o644)
		writeFile(t, d, ".verso-vendor.json", "{}", 0o644)
		hashD, err := hasher.HashTree(d, ".verso-vendor.json")
		require.NoError(t, err)
		assert.Equal(t, hashA, hashD)
	})

	t.Run("Missing root", func(t *testing.T) {
		hash, err := hasher.HashTree(filepath.Join(a, "missing"))
		require.NoError(t, err)
		assert.Empty(t, hash)
	})
}

func TestResolver_Match(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "build/intermediates/x.class", "", 0o600)
	writeFile(t, tmpDir, "gradlew", "", 0o600)
	writeFile(t, tmpDir, "src/main/AndroidManifest.xml", "", 0o600)
	writeFile(t, tmpDir, "src/main/build/y", "", 0o600)
	writeFile(t, tmpDir, "widget.iml", "", 0o600)

	resolver := fs.NewResolver()
	matches, err := resolver.Match(tmpDir, []string{"build", "gradlew", "*.iml"})
	require.NoError(t, err)

	want := []string{
		filepath.Join(tmpDir, "build"),
		filepath.Join(tmpDir, "gradlew"),
		filepath.Join(tmpDir, "src", "main", "build"),
		filepath.Join(tmpDir, "widget.iml"),
	}
	assert.Equal(t, want, matches)
}

func TestResolver_Match_Anchored(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "build/intermediates/x.class", "", 0o600)
	writeFile(t, tmpDir, "src/main/java/com/example/widget/build/Builder.java", "", 0o600)
	writeFile(t, tmpDir, "lib/build/out.o", "", 0o600)
	writeFile(t, tmpDir, "lib/src/build/Keep.java", "", 0o600)

	resolver := fs.NewResolver()
	matches, err := resolver.Match(tmpDir, []string{"/build", "lib/build"})
	require.NoError(t, err)

	want := []string{
		filepath.Join(tmpDir, "build"),
		filepath.Join(tmpDir, "lib", "build"),
	}
	assert.Equal(t, want, matches)
}

func TestResolver_Match_BadPattern(t *testing.T) {
	resolver := fs.NewResolver()
	_, err := resolver.Match(t.TempDir(), []string{"["})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to glob path")
}

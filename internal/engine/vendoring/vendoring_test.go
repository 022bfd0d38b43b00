package vendoring_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/verso/internal/adapters/fs"
	"go.trai.ch/verso/internal/core/domain"
	"go.trai.ch/verso/internal/core/ports"
	"go.trai.ch/verso/internal/core/ports/mocks"
	"go.trai.ch/verso/internal/engine/staging"
	"go.trai.ch/verso/internal/engine/vendoring"
	"go.uber.org/mock/gomock"
)

// dirFetcher serves a local directory as the upstream checkout.
type dirFetcher struct {
	upstream string
	calls    int
	err      error
}

func (f *dirFetcher) Fetch(ctx context.Context, _, _, dst string) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	return staging.CopyTree(ctx, f.upstream, dst, nil)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func upstreamFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "android", "build.gradle"), "apply plugin: 'com.android.library'\n")
	writeFile(t, filepath.Join(dir, "android", "gradlew"), "#!/bin/sh\n")
	writeFile(t, filepath.Join(dir, "android", "build", "intermediates", "x.class"), "junk")
	writeFile(t, filepath.Join(dir, "android", "src", "main", "java", "com", "example", "widget", "WidgetModule.java"),
		"package com.example.widget;\n")
	writeFile(t, filepath.Join(dir, "android", "src", "main", "java", "com", "example", "widget", "build", "Builder.java"),
		"package com.example.widget.build;\n")
	writeFile(t, filepath.Join(dir, "ios", "Widget.m"), "// ios\n")
	writeFile(t, filepath.Join(dir, "README.md"), "upstream readme\n")
	return dir
}

func widgetModule() *domain.VendoredModule {
	return &domain.VendoredModule{
		Name:                 domain.NewInternedString("example-widget"),
		RepoURL:              "https://example.com/example-widget.git",
		SourceAndroidPath:    "android",
		TargetAndroidPath:    "modules/example-widget/android",
		SourceIosPath:        "ios",
		TargetIosPath:        "modules/example-widget/ios",
		SourceAndroidPackage: "com.example.widget",
	}
}

func newPipeline(t *testing.T, fetcher ports.Fetcher) *vendoring.Pipeline {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Info(gomock.Any()).AnyTimes()
	return vendoring.NewPipeline(fetcher, fs.NewResolver(), log)
}

func defaultOptions() ports.VendorOptions {
	return ports.VendorOptions{Platform: domain.PlatformAndroid, Cleanup: []string{"/build", "gradlew"}}
}

func TestPipeline_Vendor(t *testing.T) {
	root := t.TempDir()
	fetcher := &dirFetcher{upstream: upstreamFixture(t)}
	p := newPipeline(t, fetcher)

	require.NoError(t, p.Vendor(context.Background(), root, widgetModule(), defaultOptions()))

	target := filepath.Join(root, "modules", "example-widget", "android")
	assert.FileExists(t, filepath.Join(target, "build.gradle"))
	assert.FileExists(t, filepath.Join(target, "src", "main", "java", "com", "example", "widget", "WidgetModule.java"))
	assert.NoFileExists(t, filepath.Join(target, "gradlew"))
	assert.NoDirExists(t, filepath.Join(target, "build"))
	assert.FileExists(t, filepath.Join(target, "src", "main", "java", "com", "example", "widget", "build", "Builder.java"))
	assert.NoDirExists(t, filepath.Join(root, "modules", "example-widget", "ios"))

	m, ok, err := vendoring.ReadMarker(target)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, vendoring.Marker{
		Module:     "example-widget",
		RepoURL:    "https://example.com/example-widget.git",
		SourcePath: "android",
	}, m)

	// Scratch directories are discarded.
	entries, err := os.ReadDir(domain.StagingPath(root, ""))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPipeline_Vendor_Reproducible(t *testing.T) {
	root := t.TempDir()
	fetcher := &dirFetcher{upstream: upstreamFixture(t)}
	p := newPipeline(t, fetcher)
	hasher := fs.NewHasher(fs.NewWalker())
	target := filepath.Join(root, "modules", "example-widget", "android")

	require.NoError(t, p.Vendor(context.Background(), root, widgetModule(), defaultOptions()))
	first, err := hasher.HashTree(target)
	require.NoError(t, err)

	require.NoError(t, p.Vendor(context.Background(), root, widgetModule(), defaultOptions()))
	second, err := hasher.HashTree(target)
	require.NoError(t, err)

	assert.NotEmpty(t, first)
	assert.Equal(t, first, second)
	assert.Equal(t, 2, fetcher.calls)
}

func TestPipeline_Vendor_SkipCleanup(t *testing.T) {
	root := t.TempDir()
	p := newPipeline(t, &dirFetcher{upstream: upstreamFixture(t)})

	mod := widgetModule()
	mod.SkipCleanup = true
	require.NoError(t, p.Vendor(context.Background(), root, mod, defaultOptions()))

	assert.FileExists(t, filepath.Join(root, "modules", "example-widget", "android", "gradlew"))
}

func TestPipeline_Vendor_AllPlatforms(t *testing.T) {
	root := t.TempDir()
	p := newPipeline(t, &dirFetcher{upstream: upstreamFixture(t)})

	opts := defaultOptions()
	opts.Platform = domain.PlatformAll
	require.NoError(t, p.Vendor(context.Background(), root, widgetModule(), opts))

	assert.FileExists(t, filepath.Join(root, "modules", "example-widget", "ios", "Widget.m"))
	m, ok, err := vendoring.ReadMarker(filepath.Join(root, "modules", "example-widget", "ios"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "ios", m.SourcePath)
}

func TestPipeline_Vendor_MissingSubpath(t *testing.T) {
	root := t.TempDir()
	p := newPipeline(t, &dirFetcher{upstream: upstreamFixture(t)})

	mod := widgetModule()
	mod.SourceAndroidPath = "does-not-exist"
	err := p.Vendor(context.Background(), root, mod, defaultOptions())

	require.ErrorIs(t, err, domain.ErrFetch)
	assert.NoDirExists(t, filepath.Join(root, "modules", "example-widget", "android"))
}

func TestPipeline_Vendor_FetchFailure(t *testing.T) {
	root := t.TempDir()
	fetchErr := domain.Classify(domain.ErrFetch, errors.New("unreachable"))
	p := newPipeline(t, &dirFetcher{err: fetchErr})

	err := p.Vendor(context.Background(), root, widgetModule(), defaultOptions())
	require.ErrorIs(t, err, domain.ErrFetch)
}

func TestPipeline_Vendor_Conflict(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, target string)
	}{
		{
			name: "content without marker",
			setup: func(t *testing.T, target string) {
				writeFile(t, filepath.Join(target, "handwritten.java"), "class X {}")
			},
		},
		{
			name: "different module",
			setup: func(t *testing.T, target string) {
				require.NoError(t, vendoring.WriteMarker(target, vendoring.Marker{Module: "other", SourcePath: "android"}))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			target := filepath.Join(root, "modules", "example-widget", "android")
			tt.setup(t, target)

			fetcher := &dirFetcher{upstream: upstreamFixture(t)}
			p := newPipeline(t, fetcher)

			err := p.Vendor(context.Background(), root, widgetModule(), defaultOptions())
			require.ErrorIs(t, err, domain.ErrConflict)
			assert.Zero(t, fetcher.calls)
		})
	}
}

func TestPipeline_Vendor_NoPathsForPlatform(t *testing.T) {
	mod := widgetModule()
	mod.SourceIosPath, mod.TargetIosPath = "", ""
	p := newPipeline(t, &dirFetcher{upstream: upstreamFixture(t)})

	opts := defaultOptions()
	opts.Platform = domain.PlatformIOS
	err := p.Vendor(context.Background(), t.TempDir(), mod, opts)
	require.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestPipeline_Vendor_Canceled(t *testing.T) {
	root := t.TempDir()
	fetcher := &dirFetcher{upstream: upstreamFixture(t)}
	p := newPipeline(t, fetcher)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Vendor(ctx, root, widgetModule(), defaultOptions())
	require.ErrorIs(t, err, context.Canceled)
	assert.NoDirExists(t, filepath.Join(root, "modules", "example-widget", "android"))
	assert.Zero(t, fetcher.calls)
}

func TestPipeline_Ensure(t *testing.T) {
	root := t.TempDir()
	fetcher := &dirFetcher{upstream: upstreamFixture(t)}
	p := newPipeline(t, fetcher)

	copied, err := p.Ensure(context.Background(), root, widgetModule(), defaultOptions())
	require.NoError(t, err)
	assert.True(t, copied)

	copied, err = p.Ensure(context.Background(), root, widgetModule(), defaultOptions())
	require.NoError(t, err)
	assert.False(t, copied)
	assert.Equal(t, 1, fetcher.calls)

	opts := defaultOptions()
	opts.Force = true
	copied, err = p.Ensure(context.Background(), root, widgetModule(), opts)
	require.NoError(t, err)
	assert.True(t, copied)
	assert.Equal(t, 2, fetcher.calls)

	// A changed ref invalidates the marker.
	mod := widgetModule()
	mod.Ref = "v2.0.0"
	copied, err = p.Ensure(context.Background(), root, mod, defaultOptions())
	require.NoError(t, err)
	assert.True(t, copied)
}

package wrapper_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/verso/internal/core/domain"
	"go.trai.ch/verso/internal/core/ports/mocks"
	"go.trai.ch/verso/internal/engine/wrapper"
	"go.uber.org/mock/gomock"
)

var (
	open    = domain.Operation{Name: "open", Params: []domain.Param{{Name: "url", Type: "String"}}}
	closeOp = domain.Operation{Name: "close"}
	version = domain.Operation{Name: "version", Returns: "String"}
)

func widgetSpec() domain.WrapperSpec {
	return domain.WrapperSpec{
		Module:        "example-widget",
		FacadePackage: "facade.com.example.widget",
		Class:         "WidgetModule",
		Revisions: []domain.RevisionSurface{
			{
				Revision:        "31.0.0",
				TargetNamespace: "versioned.r31.com.example.widget",
				Surface:         domain.Surface{Class: "WidgetModule", Operations: []domain.Operation{open, closeOp, version}},
			},
			{
				Revision:        "30.0.0",
				TargetNamespace: "versioned.r30.com.example.widget",
				Surface:         domain.Surface{Class: "WidgetModule", Operations: []domain.Operation{open, version}},
			},
		},
	}
}

func newGenerator(t *testing.T) *wrapper.Generator {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Info(gomock.Any()).AnyTimes()
	return wrapper.NewGenerator(log)
}

func TestRender_Golden(t *testing.T) {
	files, err := wrapper.Render(widgetSpec())
	require.NoError(t, err)
	require.Len(t, files, 3)

	assert.Equal(t, "facade/com/example/widget/WidgetModule.java", files[0].Path)
	assert.Equal(t, "facade/com/example/widget/WidgetModuleImpl_r30.java", files[1].Path)
	assert.Equal(t, "facade/com/example/widget/WidgetModuleImpl_r31.java", files[2].Path)

	g := goldie.New(t)
	g.Assert(t, "dispatcher", files[0].Content)
	g.Assert(t, "binding_r30", files[1].Content)
	g.Assert(t, "binding_r31", files[2].Content)
}

func TestRender_InputOrderDoesNotMatter(t *testing.T) {
	a, err := wrapper.Render(widgetSpec())
	require.NoError(t, err)

	spec := widgetSpec()
	spec.Revisions[0], spec.Revisions[1] = spec.Revisions[1], spec.Revisions[0]
	b, err := wrapper.Render(spec)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestRender_SingleRevision(t *testing.T) {
	spec := widgetSpec()
	spec.Revisions = spec.Revisions[:1]

	files, err := wrapper.Render(spec)
	require.NoError(t, err)
	require.Len(t, files, 2)

	dispatcher := string(files[0].Content)
	assert.Contains(t, dispatcher, `private static volatile String active = "31.0.0";`)
	assert.Contains(t, dispatcher, `registry.put("31.0.0", new WidgetModuleImpl_r31());`)
	assert.NotContains(t, dispatcher, "getDeclaredMethod")
	assert.NotContains(t, dispatcher, "Class.forName")
}

func TestRender_CustomQualifier(t *testing.T) {
	spec := widgetSpec()
	spec.Revisions = []domain.RevisionSurface{{
		Revision:        "32.1.0",
		TargetNamespace: "versioned.r32_1_0.com.example.widget",
		Surface:         domain.Surface{Class: "WidgetModule", Operations: []domain.Operation{open}},
	}}

	files, err := wrapper.Render(spec)
	require.NoError(t, err)
	assert.Equal(t, "facade/com/example/widget/WidgetModuleImpl_r32_1_0.java", files[1].Path)
	assert.Contains(t, string(files[1].Content), "versioned.r32_1_0.com.example.widget.WidgetModule.open(url);")
}

func TestRender_SurfaceMismatch(t *testing.T) {
	spec := widgetSpec()
	spec.Revisions[1].Surface.Operations = []domain.Operation{
		{Name: "open", Params: []domain.Param{{Name: "url", Type: "android.net.Uri"}}},
	}

	_, err := wrapper.Render(spec)
	require.ErrorIs(t, err, domain.ErrSurfaceMismatch)
	assert.ErrorContains(t, err, `"void open(android.net.Uri)"`)
	assert.ErrorContains(t, err, `"void open(String)"`)
	assert.ErrorContains(t, err, "30.0.0")
	assert.ErrorContains(t, err, "31.0.0")
}

func TestRender_InvalidSpec(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.WrapperSpec)
	}{
		{name: "no revisions", mutate: func(s *domain.WrapperSpec) { s.Revisions = nil }},
		{name: "empty class", mutate: func(s *domain.WrapperSpec) { s.Class = "" }},
		{name: "qualified class", mutate: func(s *domain.WrapperSpec) { s.Class = "a.B" }},
		{name: "bad package", mutate: func(s *domain.WrapperSpec) { s.FacadePackage = "facade..widget" }},
		{name: "duplicate revision", mutate: func(s *domain.WrapperSpec) { s.Revisions[1].Revision = "31.0.0" }},
		{name: "bad target", mutate: func(s *domain.WrapperSpec) { s.Revisions[0].TargetNamespace = "9bad" }},
		{name: "keyword class", mutate: func(s *domain.WrapperSpec) { s.Class = "class" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := widgetSpec()
			tt.mutate(&spec)

			_, err := wrapper.Render(spec)
			require.ErrorIs(t, err, domain.ErrConfiguration)
		})
	}
}

func TestRender_ReservedNames(t *testing.T) {
	tests := []struct {
		name string
		op   domain.Operation
	}{
		{name: "select", op: domain.Operation{Name: "select", Params: []domain.Param{{Name: "id", Type: "String"}}}},
		{name: "revisions", op: domain.Operation{Name: "revisions", Returns: "java.util.Set<String>"}},
		{name: "active", op: domain.Operation{Name: "active", Returns: "String"}},
		{name: "keyword", op: domain.Operation{Name: "new"}},
		{name: "keyword param", op: domain.Operation{Name: "open", Params: []domain.Param{{Name: "int", Type: "int"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := widgetSpec()
			spec.Revisions[1].Surface.Operations = append(spec.Revisions[1].Surface.Operations, tt.op)

			files, err := wrapper.Render(spec)
			require.ErrorIs(t, err, domain.ErrConfiguration)
			require.ErrorIs(t, err, domain.ErrReservedName)
			assert.Empty(t, files)
		})
	}
}

func TestGenerator_Generate(t *testing.T) {
	dst := t.TempDir()

	require.NoError(t, newGenerator(t).Generate(context.Background(), widgetSpec(), dst))

	dir := filepath.Join(dst, "facade", "com", "example", "widget")
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{"WidgetModule.java", "WidgetModuleImpl_r30.java", "WidgetModuleImpl_r31.java"}, names)

	info, err := os.Stat(filepath.Join(dir, "WidgetModule.java"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(domain.FilePerm), info.Mode().Perm())
}

func TestGenerator_Generate_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := newGenerator(t).Generate(ctx, widgetSpec(), t.TempDir())
	require.ErrorIs(t, err, context.Canceled)
}

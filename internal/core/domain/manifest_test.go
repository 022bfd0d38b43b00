package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/verso/internal/core/domain"
)

func TestManifest_PutLookup(t *testing.T) {
	m := &domain.Manifest{}
	m.Put("32.0.0", domain.ModuleRecord{Name: "b", State: domain.StageDone})
	m.Put("31.0.0", domain.ModuleRecord{Name: "b", State: domain.StageDone})
	m.Put("31.0.0", domain.ModuleRecord{Name: "a", State: domain.StageRenaming})

	assert.Equal(t, []domain.RevisionIdentifier{"31.0.0", "32.0.0"}, m.RevisionIDs())
	rm, ok := m.Revision("31.0.0")
	require.True(t, ok)
	assert.Equal(t, "r31", rm.Qualifier)
	require.Len(t, rm.Modules, 2)
	assert.Equal(t, "a", rm.Modules[0].Name)

	rec, ok := m.Lookup("31.0.0", "a")
	require.True(t, ok)
	assert.Equal(t, domain.StageRenaming, rec.State)

	m.Put("31.0.0", domain.ModuleRecord{Name: "a", State: domain.StageDone})
	rec, _ = m.Lookup("31.0.0", "a")
	assert.Equal(t, domain.StageDone, rec.State)

	_, ok = m.Lookup("33.0.0", "a")
	assert.False(t, ok)
	assert.Equal(t, []string{"a", "b"}, m.ModuleNames())
}

func TestManifest_SetStateAndRemove(t *testing.T) {
	m := &domain.Manifest{}
	m.Put("31.0.0", domain.ModuleRecord{Name: "a", State: domain.StageRenaming})
	m.Put("31.0.0", domain.ModuleRecord{Name: "b", State: domain.StageRenaming})

	m.SetState("31.0.0", domain.StageDone, "a")
	a, _ := m.Lookup("31.0.0", "a")
	b, _ := m.Lookup("31.0.0", "b")
	assert.Equal(t, domain.StageDone, a.State)
	assert.Equal(t, domain.StageRenaming, b.State)

	assert.True(t, m.RemoveRevision("31.0.0"))
	assert.False(t, m.RemoveRevision("31.0.0"))
	assert.Empty(t, m.RevisionIDs())
}

func TestManifest_Clone(t *testing.T) {
	m := &domain.Manifest{Version: 3}
	m.Put("31.0.0", domain.ModuleRecord{
		Name:    "a",
		Surface: &domain.Surface{Class: "A", Operations: []domain.Operation{{Name: "x"}}},
	})

	c := m.Clone()
	c.Revisions[0].Modules[0].Surface.Operations[0].Name = "y"
	c.Put("32.0.0", domain.ModuleRecord{Name: "a"})

	assert.Equal(t, "x", m.Revisions[0].Modules[0].Surface.Operations[0].Name)
	assert.Len(t, m.Revisions, 1)
	assert.Equal(t, uint64(3), c.Version)
}

func TestManifest_WrapperSpec(t *testing.T) {
	m := &domain.Manifest{}
	surface := &domain.Surface{Class: "WidgetModule", Operations: []domain.Operation{{Name: "show"}}}
	m.Put("32.0.0", domain.ModuleRecord{Name: "w", TargetNamespace: "versioned.r32.com.acme", State: domain.StageDone, Surface: surface})
	m.Put("31.0.0", domain.ModuleRecord{Name: "w", TargetNamespace: "versioned.r31.com.acme", State: domain.StageDone, Surface: surface})
	m.Put("33.0.0", domain.ModuleRecord{Name: "w", State: domain.StageFailed, Surface: surface})

	spec, ok := m.WrapperSpec("w", "com.acme", domain.StageDone)
	require.True(t, ok)
	assert.Equal(t, "WidgetModule", spec.Class)
	assert.Equal(t, "facade.com.acme", spec.FacadePackage)
	require.Len(t, spec.Revisions, 2)
	assert.Equal(t, domain.RevisionIdentifier("31.0.0"), spec.Revisions[0].Revision)
	assert.Equal(t, "versioned.r32.com.acme", spec.Revisions[1].TargetNamespace)

	_, ok = m.WrapperSpec("missing", "com.acme", domain.StageDone)
	assert.False(t, ok)
}

package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/verso/internal/core/domain"
)

func TestOperation_Signature(t *testing.T) {
	op := domain.Operation{
		Name:    "resize",
		Params:  []domain.Param{{Name: "w", Type: "int"}, {Name: "h", Type: "int"}},
		Returns: "boolean",
	}
	assert.Equal(t, "boolean resize(int, int)", op.Signature())
	assert.False(t, op.IsVoid())
	assert.True(t, domain.Operation{Name: "show"}.IsVoid())
}

func TestWrapperSpec_MergeOperations(t *testing.T) {
	show := domain.Operation{Name: "show", Params: []domain.Param{{Name: "id", Type: "int"}}}
	hide := domain.Operation{Name: "hide"}
	spec := domain.WrapperSpec{
		Module: "example-widget",
		Revisions: []domain.RevisionSurface{
			{Revision: "31.0.0", Surface: domain.Surface{Operations: []domain.Operation{show}}},
			{Revision: "32.0.0", Surface: domain.Surface{Operations: []domain.Operation{hide, show}}},
		},
	}

	ops, err := spec.MergeOperations()
	require.NoError(t, err)
	require.Len(t, ops, 2)
	assert.Equal(t, "show", ops[0].Name)
	assert.Equal(t, "hide", ops[1].Name)
	assert.Equal(t, domain.RevisionIdentifier("32.0.0"), spec.Latest())
}

func TestWrapperSpec_MergeOperations_ParamNamesIgnored(t *testing.T) {
	spec := domain.WrapperSpec{
		Revisions: []domain.RevisionSurface{
			{Revision: "31.0.0", Surface: domain.Surface{Operations: []domain.Operation{
				{Name: "show", Params: []domain.Param{{Name: "id", Type: "int"}}},
			}}},
			{Revision: "32.0.0", Surface: domain.Surface{Operations: []domain.Operation{
				{Name: "show", Params: []domain.Param{{Name: "widgetId", Type: "int"}}},
			}}},
		},
	}

	_, err := spec.MergeOperations()
	require.NoError(t, err)
}

func TestWrapperSpec_MergeOperations_Mismatch(t *testing.T) {
	spec := domain.WrapperSpec{
		Module: "example-widget",
		Revisions: []domain.RevisionSurface{
			{Revision: "31.0.0", Surface: domain.Surface{Operations: []domain.Operation{
				{Name: "show", Params: []domain.Param{{Name: "id", Type: "int"}}},
			}}},
			{Revision: "32.0.0", Surface: domain.Surface{Operations: []domain.Operation{
				{Name: "show", Params: []domain.Param{{Name: "id", Type: "String"}}},
			}}},
		},
	}

	_, err := spec.MergeOperations()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSurfaceMismatch)
	assert.ErrorContains(t, err, "void show(int)")
	assert.ErrorContains(t, err, "void show(String)")
	assert.ErrorContains(t, err, "31.0.0")
	assert.ErrorContains(t, err, "32.0.0")
}

func TestSurface_FacadePackage(t *testing.T) {
	s := &domain.Surface{Class: "WidgetModule"}
	assert.Equal(t, "facade.com.acme.foolib", s.FacadePackage("com.acme.foolib"))
	s.Package = "com.host.widgets"
	assert.Equal(t, "com.host.widgets", s.FacadePackage("com.acme.foolib"))
}

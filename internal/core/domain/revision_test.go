package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/verso/internal/core/domain"
)

func TestParseRevision(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		rev, err := domain.ParseRevision("31.0.0")
		require.NoError(t, err)
		assert.Equal(t, domain.RevisionIdentifier("31.0.0"), rev)
	})

	for _, in := range []string{"", "31", "31.0", "31.0.0.1", "v31.0.0", "31.0.0-beta", "31.x.0"} {
		t.Run("Invalid_"+in, func(t *testing.T) {
			_, err := domain.ParseRevision(in)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrConfiguration)
			assert.ErrorContains(t, err, domain.ErrInvalidRevision.Error())
		})
	}
}

func TestRevisionIdentifier_Qualifier(t *testing.T) {
	tests := []struct {
		rev  domain.RevisionIdentifier
		want string
	}{
		{"31.0.0", "r31"},
		{"31.1.0", "r31_1_0"},
		{"32.0.2", "r32_0_2"},
	}
	for _, tt := range tests {
		t.Run(tt.rev.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rev.Qualifier())
		})
	}
}

func TestSortRevisions(t *testing.T) {
	revs := []domain.RevisionIdentifier{"32.0.0", "9.0.0", "31.1.0", "31.0.0"}
	domain.SortRevisions(revs)
	assert.Equal(t, []domain.RevisionIdentifier{"9.0.0", "31.0.0", "31.1.0", "32.0.0"}, revs)
}

package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docagent/internal/catalog"
	"git.home.luguber.info/inful/docagent/internal/foundation/errors"
)

func TestDefaultsToFirstCatalogEntry(t *testing.T) {
	m := New(catalog.Default())
	assert.Equal(t, "readme", m.Current().ID)
	assert.Equal(t, "README.md", m.Current().Label)
}

func TestSelect(t *testing.T) {
	m := New(catalog.Default())

	require.NoError(t, m.Select("security"))
	assert.Equal(t, "security", m.ActiveID())

	require.NoError(t, m.Select("security"))
	assert.Equal(t, "security", m.Current().ID)
}

func TestSelectUnknownKeepsActive(t *testing.T) {
	m := New(catalog.Default())
	require.NoError(t, m.Select("api"))

	err := m.Select("changelog")
	require.ErrorIs(t, err, ErrInvalidSelection)
	assert.True(t, errors.HasCategory(err, errors.CategoryNotFound))
	assert.NotErrorIs(t, err, catalog.ErrNotFound)
	assert.Equal(t, "api", m.ActiveID())
}

func TestReset(t *testing.T) {
	m := New(catalog.Default())
	require.NoError(t, m.Select("performance"))
	m.Reset()
	assert.Equal(t, "readme", m.ActiveID())
}

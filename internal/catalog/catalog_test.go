package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/docagent/internal/foundation/errors"
)

func TestDefaultCatalogOrder(t *testing.T) {
	c := Default()

	want := []string{"readme", "architecture", "api", "database", "deployment", "security", "performance"}
	assert.Equal(t, want, c.IDs())
	assert.Equal(t, "readme", c.First().ID)
	assert.Equal(t, "README.md", c.First().Label)

	sample, ok := c.Sample("architecture")
	require.True(t, ok)
	assert.Contains(t, sample, "# System Architecture")
}

func TestGetType(t *testing.T) {
	c := Default()

	dt, err := c.GetType("api")
	require.NoError(t, err)
	assert.Equal(t, "API Documentation", dt.Label)

	_, err = c.GetType("changelog")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, ferrors.CategoryNotFound, ferrors.GetCategory(err))
}

func TestListTypesReturnsCopy(t *testing.T) {
	c := Default()
	types := c.ListTypes()
	types[0].Label = "mutated"

	assert.Equal(t, "README.md", c.ListTypes()[0].Label)
}

func TestNew(t *testing.T) {
	t.Run("rejects empty catalog", func(t *testing.T) {
		_, err := New(nil)
		require.Error(t, err)
	})

	t.Run("rejects duplicate ids", func(t *testing.T) {
		_, err := New([]DocumentType{{ID: "readme"}, {ID: " readme "}})
		require.Error(t, err)
		assert.Equal(t, ferrors.CategoryConfig, ferrors.GetCategory(err))
	})

	t.Run("rejects empty id", func(t *testing.T) {
		_, err := New([]DocumentType{{ID: "  "}})
		require.Error(t, err)
	})

	t.Run("derives missing labels", func(t *testing.T) {
		c, err := New([]DocumentType{{ID: "api-reference"}, {ID: "release_notes", Label: "Changelog"}})
		require.NoError(t, err)
		assert.Equal(t, "Api Reference", c.ListTypes()[0].Label)
		assert.Equal(t, "Changelog", c.ListTypes()[1].Label)
	})
}

func TestNormalize(t *testing.T) {
	c := Default()

	ids, err := c.Normalize(nil)
	require.NoError(t, err)
	assert.Equal(t, c.IDs(), ids)

	ids, err = c.Normalize([]string{"security", "readme", "security"})
	require.NoError(t, err)
	assert.Equal(t, []string{"readme", "security"}, ids)

	_, err = c.Normalize([]string{"readme", "nope"})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLoad(t *testing.T) {
	t.Run("empty path uses default", func(t *testing.T) {
		c, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, 7, c.Len())
	})

	t.Run("reads file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "catalog.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`types:
  - id: overview
    label: Overview
    description: One page summary
    sample: "# Overview"
  - id: runbook
    description: Operations
`), 0o600))

		c, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"overview", "runbook"}, c.IDs())
		assert.Equal(t, "Runbook", c.ListTypes()[1].Label)
		s, ok := c.Sample("overview")
		require.True(t, ok)
		assert.Equal(t, "# Overview", s)
		_, ok = c.Sample("runbook")
		assert.False(t, ok)
	})

	t.Run("missing file is a config error", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
		assert.Equal(t, ferrors.CategoryConfig, ferrors.GetCategory(err))
	})
}

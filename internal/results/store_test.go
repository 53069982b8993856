package results

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docagent/internal/catalog"
	"git.home.luguber.info/inful/docagent/internal/reference"
)

func mustRef(t *testing.T, raw string) reference.Reference {
	t.Helper()
	ref, err := reference.Parse(raw)
	require.NoError(t, err)
	return ref
}

func TestPutGetRoundTrip(t *testing.T) {
	s := New(catalog.Default())
	fixed := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }
	ref := mustRef(t, "https://example.com/org/repo")

	require.NoError(t, s.Put("readme", "# Repo", ref))

	doc, ok := s.Get("readme")
	require.True(t, ok)
	assert.Equal(t, "# Repo", doc.Content)
	assert.Equal(t, fixed, doc.GeneratedAt)
	assert.Equal(t, ref, doc.SourceReference)
}

func TestAbsentIsDistinctFromEmpty(t *testing.T) {
	s := New(catalog.Default())
	ref := mustRef(t, "https://example.com/org/repo")

	_, ok := s.Get("readme")
	assert.False(t, ok)

	require.NoError(t, s.Put("readme", "", ref))
	doc, ok := s.Get("readme")
	require.True(t, ok)
	assert.Equal(t, "", doc.Content)
}

func TestPutOverwrites(t *testing.T) {
	s := New(catalog.Default())
	first := mustRef(t, "https://example.com/org/repo")
	second := mustRef(t, "https://example.com/org/other")

	require.NoError(t, s.Put("api", "v1", first))
	require.NoError(t, s.Put("api", "v2", second))

	doc, _ := s.Get("api")
	assert.Equal(t, "v2", doc.Content)
	assert.Equal(t, second, doc.SourceReference)
	assert.Equal(t, 1, s.Len())
}

func TestPutAllIsAllOrNothing(t *testing.T) {
	s := New(catalog.Default())
	ref := mustRef(t, "https://example.com/org/repo")
	require.NoError(t, s.Put("readme", "old", ref))
	before := s.Snapshot()

	err := s.PutAll(map[string]string{
		"readme":    "new",
		"not-a-doc": "x",
	}, ref)
	require.ErrorIs(t, err, catalog.ErrNotFound)
	assert.Equal(t, before, s.Snapshot())

	require.NoError(t, s.PutAll(map[string]string{"readme": "new", "security": "sec"}, ref))
	readme, _ := s.Get("readme")
	security, _ := s.Get("security")
	assert.Equal(t, "new", readme.Content)
	assert.Equal(t, readme.GeneratedAt, security.GeneratedAt)
}

func TestSnapshotFollowsCatalogOrder(t *testing.T) {
	s := New(catalog.Default())
	ref := mustRef(t, "https://example.com/org/repo")
	require.NoError(t, s.PutAll(map[string]string{"performance": "p", "readme": "r", "api": "a"}, ref))

	var ids []string
	for _, d := range s.Snapshot() {
		ids = append(ids, d.TypeID)
	}
	assert.Equal(t, []string{"readme", "api", "performance"}, ids)
	assert.Equal(t, ref, s.Source())
}

func TestClear(t *testing.T) {
	s := New(catalog.Default())
	require.NoError(t, s.Put("readme", "x", mustRef(t, "https://example.com/org/repo")))
	s.Clear()
	_, ok := s.Get("readme")
	assert.False(t, ok)
	assert.True(t, s.Source().IsZero())
}

package infra

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/reclaim/internal/domain"
)

func newTestCatalogStore(t *testing.T) *DuckCatalogStore {
	t.Helper()
	cs, err := NewCatalogStore(filepath.Join(t.TempDir(), "export", "scan.duckdb"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { cs.Close() })
	return cs
}

func testCatalog(t *testing.T, session string, recs ...*domain.FileRecord) *domain.Catalog {
	t.Helper()
	c := domain.NewCatalog(session, []string{"/home/alice"}, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	for _, r := range recs {
		c.Add(r)
	}
	c.Visited = len(recs)
	return c
}

func testRecord(t *testing.T, path string, size int64, cat domain.Category) *domain.FileRecord {
	t.Helper()
	mod := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	r, err := domain.NewFileRecord(path, size, domain.FileTimes{Modified: mod, Created: mod, Accessed: mod},
		cat, domain.SafetyUser, "")
	require.NoError(t, err)
	return r
}

func TestCatalogStore_SaveAndSummary(t *testing.T) {
	cs := newTestCatalogStore(t)
	c := testCatalog(t, "session-1",
		testRecord(t, "/home/alice/Videos/a.mkv", 3000, domain.CategoryMedia),
		testRecord(t, "/home/alice/Videos/b.mkv", 2000, domain.CategoryMedia),
		testRecord(t, "/home/alice/Documents/c.pdf", 100, domain.CategoryDocuments),
		testRecord(t, "/home/alice/x.iso", 4000, domain.CategoryVirtual),
	)

	require.NoError(t, cs.SaveCatalog(c))

	totals, err := cs.Summary("session-1")
	require.NoError(t, err)
	assert.Equal(t, []domain.CategoryTotal{
		{Category: domain.CategoryMedia, Files: 2, TotalSize: 5000},
		{Category: domain.CategoryVirtual, Files: 1, TotalSize: 4000},
		{Category: domain.CategoryDocuments, Files: 1, TotalSize: 100},
	}, totals)
}

func TestCatalogStore_SessionsAreIsolated(t *testing.T) {
	cs := newTestCatalogStore(t)
	require.NoError(t, cs.SaveCatalog(testCatalog(t, "first",
		testRecord(t, "/a.mkv", 10, domain.CategoryMedia))))
	require.NoError(t, cs.SaveCatalog(testCatalog(t, "second",
		testRecord(t, "/b.pdf", 20, domain.CategoryDocuments))))

	latest, err := cs.LatestSession()
	require.NoError(t, err)
	assert.Equal(t, "second", latest)

	totals, err := cs.Summary("first")
	require.NoError(t, err)
	require.Len(t, totals, 1)
	assert.Equal(t, domain.CategoryMedia, totals[0].Category)
}

func TestCatalogStore_ResaveReplacesSession(t *testing.T) {
	cs := newTestCatalogStore(t)
	require.NoError(t, cs.SaveCatalog(testCatalog(t, "s",
		testRecord(t, "/a.mkv", 10, domain.CategoryMedia),
		testRecord(t, "/b.mkv", 10, domain.CategoryMedia))))
	require.NoError(t, cs.SaveCatalog(testCatalog(t, "s",
		testRecord(t, "/a.mkv", 10, domain.CategoryMedia))))

	totals, err := cs.Summary("s")
	require.NoError(t, err)
	require.Len(t, totals, 1)
	assert.Equal(t, 1, totals[0].Files)
}

func TestCatalogStore_Empty(t *testing.T) {
	cs := newTestCatalogStore(t)

	_, err := cs.LatestSession()
	assert.ErrorIs(t, err, ErrNoSessions)

	totals, err := cs.Summary("missing")
	require.NoError(t, err)
	assert.Empty(t, totals)

	assert.Error(t, cs.SaveCatalog(nil))
}

func TestCatalogStore_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.duckdb")
	cs, err := NewCatalogStore(path, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, cs.SaveCatalog(testCatalog(t, "s", testRecord(t, "/a.mkv", 10, domain.CategoryMedia))))
	require.NoError(t, cs.Close())

	reopened, err := NewCatalogStore(path, zap.NewNop())
	require.NoError(t, err)
	defer reopened.Close()

	latest, err := reopened.LatestSession()
	require.NoError(t, err)
	assert.Equal(t, "s", latest)
}

package index

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func openDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestInsertAndSearch(t *testing.T) {
	db := openDB(t)

	_, inserted, err := db.Insert("https://example.com/a", "Go Concurrency", "goroutines and channels make concurrency easy")
	require.NoError(t, err)
	require.True(t, inserted)

	_, inserted, err = db.Insert("https://example.com/b", "Rust Ownership", "borrow checker and ownership rules")
	require.NoError(t, err)
	require.True(t, inserted)

	require.NoError(t, db.Flush())

	results, err := db.Search("concurrency")
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "https://example.com/a", results[0].URL)
}

func TestInsertIsIdempotentOnKnownURL(t *testing.T) {
	db := openDB(t)

	id1, inserted, err := db.Insert("https://example.com/a", "T", "some words here")
	require.NoError(t, err)
	require.True(t, inserted)

	id2, inserted, err := db.Insert("https://example.com/a", "T2", "different words entirely")
	require.NoError(t, err)
	require.False(t, inserted)
	require.Equal(t, id1, id2)
}

func TestSearchUnionVsSearchAllIntersection(t *testing.T) {
	db := openDB(t)

	db.Insert("https://example.com/a", "", "apple banana")
	db.Insert("https://example.com/b", "", "banana cherry")
	db.Insert("https://example.com/c", "", "cherry date")
	require.NoError(t, db.Flush())

	union, err := db.Search("apple", "date")
	require.NoError(t, err)
	require.Len(t, union, 2, "Search unions per-term postings")

	intersection, err := db.SearchAll("banana", "cherry")
	require.NoError(t, err)
	require.Len(t, intersection, 1, "SearchAll intersects postings")
	require.Equal(t, "https://example.com/b", intersection[0].URL)
}

func TestComplete(t *testing.T) {
	db := openDB(t)
	db.Insert("https://example.com/a", "", "catalog category cat dog")
	require.NoError(t, db.Flush())

	got, err := db.Complete("cat")
	require.NoError(t, err)
	require.Contains(t, got, "cat")
	require.Contains(t, got, "catalog")
	require.Contains(t, got, "category")
	require.NotContains(t, got, "dog")
}

func TestStats(t *testing.T) {
	db := openDB(t)
	db.Insert("https://example.com/a", "", "one two three")
	db.Insert("https://example.com/b", "", "two three four")
	require.NoError(t, db.Flush())

	stats, err := db.Stats()
	require.NoError(t, err)
	require.EqualValues(t, 2, stats.Documents)
	require.EqualValues(t, 4, stats.Words) // one two three four
}

func TestCompactPreservesSearchResults(t *testing.T) {
	db := openDB(t)
	db.Insert("https://example.com/a", "", "shared word alpha")
	db.Insert("https://example.com/b", "", "shared word beta")
	require.NoError(t, db.Flush())

	before, err := db.Search("shared")
	require.NoError(t, err)
	require.Len(t, before, 2)

	require.NoError(t, db.Compact())

	after, err := db.Search("shared")
	require.NoError(t, err)
	require.Len(t, after, 2)
}

func TestReopenAfterFlushPersists(t *testing.T) {
	dir := t.TempDir()

	db, err := Open(dir)
	require.NoError(t, err)
	db.Insert("https://example.com/a", "Title", "persistent search engine content")
	require.NoError(t, db.Flush())
	require.NoError(t, db.Close())

	reopened, err := Open(dir)
	require.NoError(t, err)
	defer reopened.Close()

	results, err := reopened.Search("persistent")
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "https://example.com/a", results[0].URL)
}

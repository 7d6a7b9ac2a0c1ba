package fst

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func buildTestFST(t *testing.T, entries []Entry) *FST {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.fst")
	require.NoError(t, Build(path, entries))
	f, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestGetExact(t *testing.T) {
	f := buildTestFST(t, []Entry{
		{Key: "apple", Value: 1},
		{Key: "banana", Value: 2},
	})
	v, ok, err := f.Get("apple")
	require.NoError(t, err)
	require.True(t, ok)
	require.EqualValues(t, 1, v)

	_, ok, err = f.Get("cherry")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestOpenMissingFileIsEmpty(t *testing.T) {
	f, err := Open(filepath.Join(t.TempDir(), "missing.fst"))
	require.NoError(t, err)
	ok, err := f.Contains("anything")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSearchPrefix(t *testing.T) {
	f := buildTestFST(t, []Entry{
		{Key: "cat", Value: 1},
		{Key: "catalog", Value: 2},
		{Key: "dog", Value: 3},
	})
	got, err := f.Search("cat", 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "cat", got[0].Key)
	require.Equal(t, "catalog", got[1].Key)
}

func TestSearchFuzzy(t *testing.T) {
	f := buildTestFST(t, []Entry{
		{Key: "color", Value: 1},
		{Key: "colour", Value: 2},
		{Key: "dolor", Value: 3},
	})
	got, err := f.Search("color", 1)
	require.NoError(t, err)
	keys := make([]string, len(got))
	for i, e := range got {
		keys[i] = e.Key
	}
	require.Contains(t, keys, "color")
	require.Contains(t, keys, "colour")
}

func TestUnionMaxResolver(t *testing.T) {
	a := buildTestFST(t, []Entry{{Key: "x", Value: 1}, {Key: "y", Value: 5}})
	b := buildTestFST(t, []Entry{{Key: "x", Value: 3}, {Key: "z", Value: 2}})

	merged, err := Union(a, b, MaxResolver)
	require.NoError(t, err)
	byKey := map[string]uint64{}
	for _, e := range merged {
		byKey[e.Key] = e.Value
	}
	require.EqualValues(t, 3, byKey["x"])
	require.EqualValues(t, 5, byKey["y"])
	require.EqualValues(t, 2, byKey["z"])
}

func TestIterateOrder(t *testing.T) {
	f := buildTestFST(t, []Entry{
		{Key: "a", Value: 1},
		{Key: "b", Value: 2},
		{Key: "c", Value: 3},
	})
	got, err := f.Iterate()
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, "a", got[0].Key)
	require.Equal(t, "c", got[2].Key)
}

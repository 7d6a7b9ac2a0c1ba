package logmap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetGetBeforeFlush(t *testing.T) {
	m, err := Open(t.TempDir())
	require.NoError(t, err)
	defer m.Close()

	slot := m.Set("k1", []byte("hello"))
	require.EqualValues(t, 0, slot)

	v, ok, err := m.Get("k1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "hello", string(v))
}

func TestEachSetGetsFreshSlotEvenForRepeatedKey(t *testing.T) {
	m, err := Open(t.TempDir())
	require.NoError(t, err)
	defer m.Close()

	s1 := m.Set("dup", []byte("a"))
	s2 := m.Set("dup", []byte("b"))
	require.NotEqual(t, s1, s2)

	// Get resolves to the latest buffered write.
	v, ok, err := m.Get("dup")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "b", string(v))
}

func TestFlushPersistsAndReopens(t *testing.T) {
	dir := t.TempDir()

	m, err := Open(dir)
	require.NoError(t, err)
	m.Set("k1", []byte("hello"))
	m.Set("k2", []byte("world"))
	require.NoError(t, m.Flush())
	require.EqualValues(t, 2, m.Len())
	require.NoError(t, m.Close())

	reopened, err := Open(dir)
	require.NoError(t, err)
	defer reopened.Close()
	require.EqualValues(t, 2, reopened.Len())

	v, ok, err := reopened.Get("k1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "hello", string(v))
}

func TestFlushOfRepeatedKeyKeepsBothSlotsButResolvesLatest(t *testing.T) {
	dir := t.TempDir()

	m, err := Open(dir)
	require.NoError(t, err)
	m.Set("dup", []byte("first"))
	m.Set("dup", []byte("second"))
	require.NoError(t, m.Flush())
	require.EqualValues(t, 2, m.Len(), "each put allocates a fresh idx slot even for a repeated key")

	v, ok, err := m.Get("dup")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "second", string(v), "max-wins union resolves a repeated key to its latest slot")
}

func TestContentAddressedDedupAcrossFlushes(t *testing.T) {
	dir := t.TempDir()

	m, err := Open(dir)
	require.NoError(t, err)
	m.Set("hash-x", []byte("payload"))
	require.NoError(t, m.Flush())

	m.Set("hash-x", []byte("payload")) // same content, same key, new flush cycle
	require.NoError(t, m.Flush())

	require.EqualValues(t, 2, m.Len())
	v, ok, err := m.Get("hash-x")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "payload", string(v))
}

func TestEmptyFlushIsNoop(t *testing.T) {
	m, err := Open(t.TempDir())
	require.NoError(t, err)
	defer m.Close()
	require.NoError(t, m.Flush())
	require.EqualValues(t, 0, m.Len())
}

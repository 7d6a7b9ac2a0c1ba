package bitmap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddContains(t *testing.T) {
	b := New()
	b.Add(1)
	b.Add(5)
	require.True(t, b.Contains(1))
	require.True(t, b.Contains(5))
	require.False(t, b.Contains(2))
	require.EqualValues(t, 2, b.Cardinality())
}

func TestAndOr(t *testing.T) {
	a := New()
	a.Add(1)
	a.Add(2)
	b := New()
	b.Add(2)
	b.Add(3)

	and := a.And(b)
	require.Equal(t, []uint32{2}, and.ToArray())

	or := a.Or(b)
	require.Equal(t, []uint32{1, 2, 3}, or.ToArray())
}

func TestSerializeRoundTrip(t *testing.T) {
	b := New()
	b.Add(10)
	b.Add(20)
	b.Add(30)

	data, err := b.Serialize()
	require.NoError(t, err)

	got, err := Deserialize(data)
	require.NoError(t, err)
	require.Equal(t, b.ToArray(), got.ToArray())
}

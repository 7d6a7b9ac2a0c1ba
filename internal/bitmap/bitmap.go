// Package bitmap wraps github.com/RoaringBitmap/roaring/v2 into scout's
// posting-list type: a compressed, sorted set of document ids.
package bitmap

import (
	"bytes"

	"github.com/RoaringBitmap/roaring/v2"
)

// Bitmap is a compressed set of document ids.
type Bitmap struct {
	inner *roaring.Bitmap
}

// New returns an empty Bitmap.
func New() *Bitmap {
	return &Bitmap{inner: roaring.New()}
}

// Add inserts id into the set.
func (b *Bitmap) Add(id uint32) {
	b.inner.Add(id)
}

// Contains reports whether id is a member.
func (b *Bitmap) Contains(id uint32) bool {
	return b.inner.Contains(id)
}

// ToArray returns the set's members in ascending order.
func (b *Bitmap) ToArray() []uint32 {
	return b.inner.ToArray()
}

// Cardinality returns the number of members.
func (b *Bitmap) Cardinality() uint64 {
	return b.inner.GetCardinality()
}

// And returns the intersection of b and other.
func (b *Bitmap) And(other *Bitmap) *Bitmap {
	return &Bitmap{inner: roaring.And(b.inner, other.inner)}
}

// Or returns the union of b and other.
func (b *Bitmap) Or(other *Bitmap) *Bitmap {
	return &Bitmap{inner: roaring.Or(b.inner, other.inner)}
}

// Serialize encodes the bitmap to its portable binary format.
func (b *Bitmap) Serialize() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := b.inner.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Deserialize decodes a bitmap previously produced by Serialize.
func Deserialize(data []byte) (*Bitmap, error) {
	bm := roaring.New()
	if _, err := bm.ReadFrom(bytes.NewReader(data)); err != nil {
		return nil, err
	}
	return &Bitmap{inner: bm}, nil
}

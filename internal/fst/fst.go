// Package fst wraps github.com/blevesearch/vellum into the ordered
// string->uint64 map the rest of scout's storage layer is built on: exact
// lookup, prefix scan, bounded-edit-distance fuzzy search, and a
// conflict-resolving union of two maps.
package fst

import (
	"bytes"
	"errors"
	"os"

	"github.com/blevesearch/vellum"
	"github.com/blevesearch/vellum/levenshtein"
)

// Entry is a key/value pair produced by iteration, search, or union.
type Entry struct {
	Key   string
	Value uint64
}

// FST is a read-only ordered string->uint64 map.
type FST struct {
	inner *vellum.FST
}

// Open loads the FST stored at path. A missing file is not an error: it
// yields an empty map, so a store that has never been flushed still reads
// cleanly.
func Open(path string) (*FST, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Empty()
	}
	inner, err := vellum.Open(path)
	if err != nil {
		return nil, err
	}
	return &FST{inner: inner}, nil
}

// Empty returns a zero-entry FST, useful as the starting point before the
// first flush and as an identity value for Union.
func Empty() (*FST, error) {
	var buf bytes.Buffer
	b, err := vellum.New(&buf, nil)
	if err != nil {
		return nil, err
	}
	if err := b.Close(); err != nil {
		return nil, err
	}
	inner, err := vellum.Load(buf.Bytes())
	if err != nil {
		return nil, err
	}
	return &FST{inner: inner}, nil
}

// Close releases the FST's underlying file handle, if any.
func (f *FST) Close() error {
	if f == nil || f.inner == nil {
		return nil
	}
	return f.inner.Close()
}

// Get performs an exact lookup.
func (f *FST) Get(key string) (uint64, bool, error) {
	v, ok, err := f.inner.Get([]byte(key))
	return v, ok, err
}

// Contains reports whether key is present.
func (f *FST) Contains(key string) (bool, error) {
	_, ok, err := f.Get(key)
	return ok, err
}

// Search returns entries matching key. maxDist == 0 degenerates to a
// prefix-or-exact scan; maxDist > 0 performs a Levenshtein automaton search
// within that many edits of key.
func (f *FST) Search(key string, maxDist uint8) ([]Entry, error) {
	if maxDist == 0 {
		return f.prefixScan(key)
	}
	return f.fuzzySearch(key, maxDist)
}

func (f *FST) prefixScan(prefix string) ([]Entry, error) {
	start := []byte(prefix)
	end := prefixUpperBound(start)
	itr, err := f.inner.Iterator(start, end)
	return collect(itr, err)
}

func (f *FST) fuzzySearch(key string, maxDist uint8) ([]Entry, error) {
	lev, err := levenshtein.New(key, maxDist)
	if err != nil {
		return nil, err
	}
	itr, err := f.inner.Search(lev, nil, nil)
	return collect(itr, err)
}

// Iterate returns every entry in key order.
func (f *FST) Iterate() ([]Entry, error) {
	itr, err := f.inner.Iterator(nil, nil)
	return collect(itr, err)
}

func collect(itr *vellum.FSTIterator, err error) ([]Entry, error) {
	var out []Entry
	for err == nil {
		k, v := itr.Current()
		out = append(out, Entry{Key: string(k), Value: v})
		err = itr.Next()
	}
	if err != nil && err != vellum.ErrIteratorDone {
		return nil, err
	}
	return out, nil
}

// prefixUpperBound returns the smallest key not prefixed by prefix, for use
// as an iterator's exclusive end bound. A prefix made entirely of 0xff
// bytes has no such bound; nil (unbounded) is returned in that case.
func prefixUpperBound(prefix []byte) []byte {
	end := append([]byte{}, prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}

// Resolver decides which value wins when a key appears in both operands of
// Union. aOK/bOK are always true in practice since Union only calls
// resolve for keys present on both sides, but both are passed through so a
// resolver can be reused as a general merge function.
type Resolver func(key string, a, b uint64, aOK, bOK bool) uint64

// MaxResolver keeps the larger of the two values. Used by CachedMap and
// LogMap flushes, where a key's handle must never shrink across a merge.
func MaxResolver(_ string, a, b uint64, aOK, bOK bool) uint64 {
	if !aOK {
		return b
	}
	if !bOK {
		return a
	}
	if a > b {
		return a
	}
	return b
}

// Build writes a new FST file at path from entries, which must already be
// sorted by key.
func Build(path string, entries []Entry) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	b, err := vellum.New(f, nil)
	if err != nil {
		f.Close()
		return err
	}
	for _, e := range entries {
		if err := b.Insert([]byte(e.Key), e.Value); err != nil {
			f.Close()
			return err
		}
	}
	if err := b.Close(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Union performs a key-ordered two-way merge of a and b, resolving
// conflicting keys with resolve, and returns the merged entries sorted by
// key.
func Union(a, b *FST, resolve Resolver) ([]Entry, error) {
	aEntries, err := a.Iterate()
	if err != nil {
		return nil, err
	}
	bEntries, err := b.Iterate()
	if err != nil {
		return nil, err
	}

	out := make([]Entry, 0, len(aEntries)+len(bEntries))
	i, j := 0, 0
	for i < len(aEntries) && j < len(bEntries) {
		switch {
		case aEntries[i].Key < bEntries[j].Key:
			out = append(out, aEntries[i])
			i++
		case aEntries[i].Key > bEntries[j].Key:
			out = append(out, bEntries[j])
			j++
		default:
			v := resolve(aEntries[i].Key, aEntries[i].Value, bEntries[j].Value, true, true)
			out = append(out, Entry{Key: aEntries[i].Key, Value: v})
			i++
			j++
		}
	}
	for ; i < len(aEntries); i++ {
		out = append(out, aEntries[i])
	}
	for ; j < len(bEntries); j++ {
		out = append(out, bEntries[j])
	}
	return out, nil
}

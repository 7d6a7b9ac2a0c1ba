// Package cachedmap implements a persistent, ordered string->uint64 map
// with a write-through in-memory overlay: Set lands immediately in memory
// and is only merged into the on-disk FST when Flush is called.
package cachedmap

import (
	"os"
	"sort"

	"github.com/nyxsearch/scout/internal/fst"
)

// CachedMap is a persistent string->uint64 map backed by an FST file, with
// an unflushed overlay held in memory.
type CachedMap struct {
	path    string
	fst     *fst.FST
	overlay map[string]uint64
}

// Open loads (or initializes) the map stored at path.
func Open(path string) (*CachedMap, error) {
	f, err := fst.Open(path)
	if err != nil {
		return nil, err
	}
	return &CachedMap{path: path, fst: f, overlay: make(map[string]uint64)}, nil
}

// Set stores value under key in the overlay. It is visible to Get/Contains
// immediately, but Search sees it only after Flush, which is also when it
// becomes durable.
func (m *CachedMap) Set(key string, value uint64) {
	m.overlay[key] = value
}

// Get performs an exact lookup: overlay first, then the on-disk FST.
func (m *CachedMap) Get(key string) (uint64, bool, error) {
	if v, ok := m.overlay[key]; ok {
		return v, true, nil
	}
	return m.fst.Get(key)
}

// Contains reports whether key is present in the overlay or on disk.
func (m *CachedMap) Contains(key string) (bool, error) {
	_, ok, err := m.Get(key)
	return ok, err
}

// Search delegates to the on-disk FST only; the overlay is not searched
// approximately or by prefix. maxDist == 0 is a prefix scan; maxDist > 0 is
// a bounded edit-distance fuzzy search. Callers that need a fuzzy or prefix
// search to see recently-set keys must Flush first.
func (m *CachedMap) Search(key string, maxDist uint8) ([]fst.Entry, error) {
	return m.fst.Search(key, maxDist)
}

// All returns every key/value pair in the map, overlay entries taking
// precedence over on-disk ones with the same key, sorted by key. Used by
// DB.Compact and the `scout stats` command, which both need a full scan
// rather than a point or prefix lookup.
func (m *CachedMap) All() ([]fst.Entry, error) {
	onDisk, err := m.fst.Iterate()
	if err != nil {
		return nil, err
	}

	merged := make(map[string]uint64, len(onDisk)+len(m.overlay))
	for _, e := range onDisk {
		merged[e.Key] = e.Value
	}
	for k, v := range m.overlay {
		merged[k] = v
	}

	out := make([]fst.Entry, 0, len(merged))
	for k, v := range merged {
		out = append(out, fst.Entry{Key: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Flush merges the overlay into the on-disk FST and clears the overlay.
// The new FST is built at a temp path and swapped in with an atomic
// rename, so a crash mid-flush leaves the previous FST file intact.
func (m *CachedMap) Flush() error {
	if len(m.overlay) == 0 {
		return nil
	}

	keys := make([]string, 0, len(m.overlay))
	for k := range m.overlay {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	entries := make([]fst.Entry, len(keys))
	for i, k := range keys {
		entries[i] = fst.Entry{Key: k, Value: m.overlay[k]}
	}

	overlayPath := m.path + ".overlay-tmp"
	if err := fst.Build(overlayPath, entries); err != nil {
		return err
	}
	defer os.Remove(overlayPath)

	overlayFST, err := fst.Open(overlayPath)
	if err != nil {
		return err
	}
	defer overlayFST.Close()

	merged, err := fst.Union(m.fst, overlayFST, fst.MaxResolver)
	if err != nil {
		return err
	}

	tmpPath := m.path + ".tmp"
	if err := fst.Build(tmpPath, merged); err != nil {
		return err
	}
	if err := m.fst.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, m.path); err != nil {
		return err
	}

	newFST, err := fst.Open(m.path)
	if err != nil {
		return err
	}
	m.fst = newFST
	m.overlay = make(map[string]uint64)
	return nil
}

// Close releases the underlying FST handle.
func (m *CachedMap) Close() error {
	return m.fst.Close()
}

// Package index implements scout's persistent inverted index: a DB
// composing a page store (document content), a pageset store (serialized
// posting bitmaps, content-addressed), and link/word stores (URL and
// vocabulary lookups). See SPEC_FULL.md section 4.5 for the protocol this
// type implements.
package index

import (
	"crypto/md5"
	"encoding/hex"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nyxsearch/scout/internal/bitmap"
	"github.com/nyxsearch/scout/internal/cachedmap"
	"github.com/nyxsearch/scout/internal/fst"
	"github.com/nyxsearch/scout/internal/logmap"
	"github.com/nyxsearch/scout/internal/normalize"
)

// Result is one hit returned from Search/SearchAll.
type Result struct {
	URL     string
	Snippet string
}

// snippetBytes is the literal 500-byte truncation length spec'd for the
// text half of a page payload.
const snippetBytes = 500

// DB is the composed index: page/pageset are append-only LogMaps, link/word
// are persistent CachedMaps.
type DB struct {
	rootDir string
	page    *logmap.LogMap
	pageset *logmap.LogMap
	link    *cachedmap.CachedMap
	word    *cachedmap.CachedMap
}

// Open opens (creating if absent) the four stores rooted at dir.
func Open(dir string) (*DB, error) {
	db := &DB{rootDir: dir}

	for _, name := range []string{"link", "word"} {
		if err := os.MkdirAll(filepath.Join(dir, name), 0o755); err != nil {
			return nil, err
		}
	}

	var err error
	if db.page, err = logmap.Open(filepath.Join(dir, "page")); err != nil {
		return nil, err
	}
	if db.pageset, err = logmap.Open(filepath.Join(dir, "pageset")); err != nil {
		db.page.Close()
		return nil, err
	}
	if db.link, err = cachedmap.Open(filepath.Join(dir, "link", "fst")); err != nil {
		db.page.Close()
		db.pageset.Close()
		return nil, err
	}
	if db.word, err = cachedmap.Open(filepath.Join(dir, "word", "fst")); err != nil {
		db.page.Close()
		db.pageset.Close()
		db.link.Close()
		return nil, err
	}
	return db, nil
}

// Close releases all four stores' file handles.
func (db *DB) Close() error {
	var firstErr error
	for _, closer := range []interface{ Close() error }{db.page, db.pageset, db.link, db.word} {
		if err := closer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Insert adds a document and flushes all four stores before returning.
// Re-inserting a known URL is a no-op: link membership is what makes insert
// idempotent.
//
// The page payload is the literal spec.md §4.5 format: url + "\n" +
// concatenated fragments (title, then body text), keyed by the MD5 hex of
// that payload, so the page store holds raw recoverable bytes rather than
// a JSON envelope.
func (db *DB) Insert(url, title, text string) (docID uint64, inserted bool, err error) {
	if existing, ok, err := db.link.Get(url); err != nil {
		return 0, false, err
	} else if ok {
		return existing, false, nil
	}

	fragments := fragmentsOf(title, text)
	payload := url + "\n" + strings.Join(fragments, "\n")
	pageKey := contentKey([]byte(payload))
	docID = db.page.Set(pageKey, []byte(payload))
	db.link.Set(url, docID)

	tokens := uniqueSorted(normalize.Tokens(strings.Join(fragments, " ")))
	for _, token := range tokens {
		bm, err := db.postingsFor(token)
		if err != nil {
			return 0, false, err
		}
		bm.Add(uint32(docID))
		if err := db.storePostings(token, bm); err != nil {
			return 0, false, err
		}
	}

	if err := db.Flush(); err != nil {
		return 0, false, err
	}
	return docID, true, nil
}

func fragmentsOf(title, text string) []string {
	var out []string
	if title != "" {
		out = append(out, title)
	}
	if text != "" {
		out = append(out, text)
	}
	return out
}

// storePostings writes bm to the pageset store, content-addressed by the
// md5 of its serialized bytes, and repoints word[token] at the new slot.
func (db *DB) storePostings(token string, bm *bitmap.Bitmap) error {
	data, err := bm.Serialize()
	if err != nil {
		return err
	}
	key := contentKey(data)
	handle := db.pageset.Set(key, data)
	db.word.Set(token, handle)
	return nil
}

func contentKey(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

func uniqueSorted(tokens []string) []string {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Search returns documents matching ANY of terms. Per spec.md §4.5, each
// term is resolved with word.search(term, max_dist=0) — a prefix-or-exact
// scan that can return several matched words per input term — and the
// bitmaps of every matched word are unioned together before the terms
// themselves are unioned. This is the behavior described as faithful in
// SPEC_FULL.md section 9.1; see SearchAll for the AND-intersected variant.
func (db *DB) Search(terms ...string) ([]Result, error) {
	union := bitmap.New()
	for _, term := range terms {
		bm, err := db.postingsForPrefix(normalize.Word(term))
		if err != nil {
			return nil, err
		}
		union = union.Or(bm)
	}
	return db.resultsFor(union)
}

// SearchAll returns documents matching ALL of terms, each term resolved the
// same prefix-or-exact way as Search.
func (db *DB) SearchAll(terms ...string) ([]Result, error) {
	if len(terms) == 0 {
		return nil, nil
	}
	intersection, err := db.postingsForPrefix(normalize.Word(terms[0]))
	if err != nil {
		return nil, err
	}
	for _, term := range terms[1:] {
		bm, err := db.postingsForPrefix(normalize.Word(term))
		if err != nil {
			return nil, err
		}
		intersection = intersection.And(bm)
	}
	return db.resultsFor(intersection)
}

// postingsFor resolves a single, already-normalized token to its posting
// bitmap via an exact word lookup. Used by Insert, which needs the current
// handle for the literal token it is about to update, not a prefix scan.
func (db *DB) postingsFor(token string) (*bitmap.Bitmap, error) {
	handle, ok, err := db.word.Get(token)
	if err != nil {
		return nil, err
	}
	if !ok {
		return bitmap.New(), nil
	}
	data, err := db.pageset.ReadSlot(handle)
	if err != nil {
		return nil, err
	}
	return bitmap.Deserialize(data)
}

// postingsForPrefix unions the posting bitmaps of every word matching term
// under a prefix-or-exact scan (word.search(term, max_dist=0)), per
// spec.md §4.5 Search.
func (db *DB) postingsForPrefix(term string) (*bitmap.Bitmap, error) {
	matches, err := db.word.Search(term, 0)
	if err != nil {
		return nil, err
	}
	out := bitmap.New()
	for _, m := range matches {
		data, err := db.pageset.ReadSlot(m.Value)
		if err != nil {
			return nil, err
		}
		bm, err := bitmap.Deserialize(data)
		if err != nil {
			return nil, err
		}
		out = out.Or(bm)
	}
	return out, nil
}

func (db *DB) resultsFor(ids *bitmap.Bitmap) ([]Result, error) {
	var out []Result
	for _, id := range ids.ToArray() {
		payload, err := db.page.ReadSlot(uint64(id))
		if err != nil {
			return nil, err
		}
		url, text, _ := strings.Cut(string(payload), "\n")
		out = append(out, Result{URL: url, Snippet: snippet(text)})
	}
	return out, nil
}

func snippet(text string) string {
	if len(text) <= snippetBytes {
		return text
	}
	return text[:snippetBytes]
}

// Complete returns candidate vocabulary entries for prefix: every word the
// prefix is a literal prefix of, plus words within edit distance 2 of the
// prefix itself (to tolerate a typo in a short, already-complete query).
func (db *DB) Complete(prefix string) ([]string, error) {
	norm := normalize.Word(prefix)
	byPrefix, err := db.word.Search(norm, 0)
	if err != nil {
		return nil, err
	}
	fuzzy, err := db.word.Search(norm, 2)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(byPrefix)+len(fuzzy))
	var out []string
	for _, e := range append(byPrefix, fuzzy...) {
		if _, ok := seen[e.Key]; ok {
			continue
		}
		seen[e.Key] = struct{}{}
		out = append(out, e.Key)
	}
	sort.Strings(out)
	return out, nil
}

// Flush persists all buffered writes to disk, content stores before index
// stores, so a crash never leaves an index entry pointing at content that
// was never made durable.
func (db *DB) Flush() error {
	if err := db.page.Flush(); err != nil {
		return err
	}
	if err := db.pageset.Flush(); err != nil {
		return err
	}
	if err := db.link.Flush(); err != nil {
		return err
	}
	return db.word.Flush()
}

// Compact rebuilds the pageset store from the word vocabulary's current
// handles, dropping stale bitmap revisions that earlier inserts and
// flushes left behind in the append-only log.
func (db *DB) Compact() error {
	entries, err := db.word.All()
	if err != nil {
		return err
	}

	compactDir := filepath.Join(db.rootDir, "pageset-compact")
	if err := os.RemoveAll(compactDir); err != nil {
		return err
	}
	fresh, err := logmap.Open(compactDir)
	if err != nil {
		return err
	}

	remapped := make([]fst.Entry, 0, len(entries))
	for _, e := range entries {
		data, err := db.pageset.ReadSlot(e.Value)
		if err != nil {
			fresh.Close()
			return err
		}
		newHandle := fresh.Set(contentKey(data), data)
		remapped = append(remapped, fst.Entry{Key: e.Key, Value: newHandle})
	}
	if err := fresh.Flush(); err != nil {
		fresh.Close()
		return err
	}
	if err := fresh.Close(); err != nil {
		return err
	}

	// The word map is rebuilt outright rather than flushed: a flush merges
	// with max-wins, which would keep the old, larger handles.
	wordPath := filepath.Join(db.rootDir, "word", "fst")
	if err := fst.Build(wordPath+".compact-tmp", remapped); err != nil {
		return err
	}
	if err := db.word.Close(); err != nil {
		return err
	}
	if err := os.Rename(wordPath+".compact-tmp", wordPath); err != nil {
		return err
	}
	if db.word, err = cachedmap.Open(wordPath); err != nil {
		return err
	}
	if err := db.pageset.Close(); err != nil {
		return err
	}

	pagesetDir := filepath.Join(db.rootDir, "pageset")
	if err := swapStoreDir(compactDir, pagesetDir); err != nil {
		return err
	}

	db.pageset, err = logmap.Open(pagesetDir)
	return err
}

// swapStoreDir replaces dst's log/idx/fst files with src's and removes src.
func swapStoreDir(src, dst string) error {
	for _, name := range []string{"log", "idx", "fst"} {
		if err := os.Rename(filepath.Join(src, name), filepath.Join(dst, name)); err != nil {
			return err
		}
	}
	return os.RemoveAll(src)
}

// Stats reports corpus size for `scout stats`.
type Stats struct {
	Documents uint64
	Words     uint64
}

// Stats returns the current corpus size.
func (db *DB) Stats() (Stats, error) {
	wordEntries, err := db.word.All()
	if err != nil {
		return Stats{}, err
	}
	return Stats{Documents: db.page.Len(), Words: uint64(len(wordEntries))}, nil
}

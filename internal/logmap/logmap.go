// Package logmap implements an append-only, content-addressed blob store
// resolved through an FST: Set assigns a new key a fresh slot, Get resolves
// a key to its slot and then to the bytes at that slot's offset in the log
// file. Slots are a pure monotonic counter assigned in memory at Set time;
// byte offsets are only ever computed at Flush time, from how far the log
// file has actually grown. Keeping those two concerns separate is what
// this package fixes relative to a naive design that tries to use the
// log's current write position as both a byte cursor and a slot id.
package logmap

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"sort"

	"github.com/klauspost/compress/zstd"

	"github.com/nyxsearch/scout/internal/fst"
)

const idxRecordSize = 8 // offset uint32 + length uint32, big-endian

type bufEntry struct {
	key   string
	value []byte
}

// LogMap is an append-only blob log addressed by an FST of key -> slot and
// an idx file of slot -> (offset, length) in the log.
type LogMap struct {
	dir      string
	logPath  string
	idxPath  string
	fstPath  string
	logFile  *os.File
	idxFile  *os.File
	fstMap   *fst.FST
	encoder  *zstd.Encoder
	decoder  *zstd.Decoder

	flushedSlots uint64
	buffer       []bufEntry
	overlayIndex map[string]uint64 // key -> slot, for buffered (not yet flushed) entries
}

// Open opens (creating if absent) the three files that make up a LogMap
// store rooted at dir: log, idx, fst.
func Open(dir string) (*LogMap, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	m := &LogMap{
		dir:          dir,
		logPath:      filepath.Join(dir, "log"),
		idxPath:      filepath.Join(dir, "idx"),
		fstPath:      filepath.Join(dir, "fst"),
		overlayIndex: make(map[string]uint64),
	}

	var err error
	m.logFile, err = os.OpenFile(m.logPath, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	m.idxFile, err = os.OpenFile(m.idxPath, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		m.logFile.Close()
		return nil, err
	}

	if err := m.recover(); err != nil {
		m.Close()
		return nil, err
	}

	m.fstMap, err = fst.Open(m.fstPath)
	if err != nil {
		m.Close()
		return nil, err
	}

	m.encoder, err = zstd.NewWriter(nil)
	if err != nil {
		m.Close()
		return nil, err
	}
	m.decoder, err = zstd.NewReader(nil)
	if err != nil {
		m.Close()
		return nil, err
	}

	return m, nil
}

// recover truncates any idx rows pointing past the end of the log file --
// the signature of a crash between writing the log and writing the idx --
// so the store reopens at the last fully-durable slot.
func (m *LogMap) recover() error {
	idxInfo, err := m.idxFile.Stat()
	if err != nil {
		return err
	}
	logInfo, err := m.logFile.Stat()
	if err != nil {
		return err
	}

	validSlots := idxInfo.Size() / idxRecordSize
	buf := make([]byte, idxRecordSize)
	var lastGood int64
	for slot := int64(0); slot < validSlots; slot++ {
		if _, err := m.idxFile.ReadAt(buf, slot*idxRecordSize); err != nil {
			break
		}
		offset := int64(binary.BigEndian.Uint32(buf[0:4]))
		length := int64(binary.BigEndian.Uint32(buf[4:8]))
		if offset+length > logInfo.Size() {
			break
		}
		lastGood = slot + 1
	}
	if lastGood*idxRecordSize != idxInfo.Size() {
		if err := m.idxFile.Truncate(lastGood * idxRecordSize); err != nil {
			return err
		}
	}
	m.flushedSlots = uint64(lastGood)
	return nil
}

// Set buffers key->value and returns the slot assigned to this write. The
// write is visible to Get immediately but not durable until Flush.
func (m *LogMap) Set(key string, value []byte) uint64 {
	slot := m.flushedSlots + uint64(len(m.buffer))
	stored := make([]byte, len(value))
	copy(stored, value)
	m.buffer = append(m.buffer, bufEntry{key: key, value: stored})
	m.overlayIndex[key] = slot
	return slot
}

// Get resolves key to its bytes, checking the unflushed buffer first.
func (m *LogMap) Get(key string) ([]byte, bool, error) {
	if slot, ok := m.overlayIndex[key]; ok {
		return m.buffer[slot-m.flushedSlots].value, true, nil
	}
	slot, ok, err := m.fstMap.Get(key)
	if err != nil || !ok {
		return nil, false, err
	}
	v, err := m.ReadSlot(slot)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// Contains reports whether key resolves to a value, buffered or flushed.
func (m *LogMap) Contains(key string) (bool, error) {
	if _, ok := m.overlayIndex[key]; ok {
		return true, nil
	}
	return m.fstMap.Contains(key)
}

// ReadSlot returns the bytes stored at a durable slot.
func (m *LogMap) ReadSlot(slot uint64) ([]byte, error) {
	if slot >= m.flushedSlots {
		return nil, os.ErrNotExist
	}
	rec := make([]byte, idxRecordSize)
	if _, err := m.idxFile.ReadAt(rec, int64(slot)*idxRecordSize); err != nil {
		return nil, err
	}
	offset := int64(binary.BigEndian.Uint32(rec[0:4]))
	length := int64(binary.BigEndian.Uint32(rec[4:8]))
	compressed := make([]byte, length)
	if _, err := m.logFile.ReadAt(compressed, offset); err != nil {
		return nil, err
	}
	return m.decoder.DecodeAll(compressed, nil)
}

// Len returns the number of durable (flushed) slots.
func (m *LogMap) Len() uint64 {
	return m.flushedSlots
}

// Flush durably appends all buffered entries to the log and idx files (in
// that order, each fsynced before the next step), rebuilds the FST with a
// max-wins union against the previous one, and atomically swaps the FST
// file in. A crash at any point before the final rename leaves the
// pre-flush store intact.
func (m *LogMap) Flush() error {
	if len(m.buffer) == 0 {
		return nil
	}

	logInfo, err := m.logFile.Stat()
	if err != nil {
		return err
	}
	offset := logInfo.Size()

	idxRecords := make([]byte, 0, len(m.buffer)*idxRecordSize)
	for _, e := range m.buffer {
		compressed := m.encoder.EncodeAll(e.value, nil)
		if _, err := m.logFile.Write(compressed); err != nil {
			return err
		}
		rec := make([]byte, idxRecordSize)
		binary.BigEndian.PutUint32(rec[0:4], uint32(offset))
		binary.BigEndian.PutUint32(rec[4:8], uint32(len(compressed)))
		idxRecords = append(idxRecords, rec...)
		offset += int64(len(compressed))
	}

	if err := m.logFile.Sync(); err != nil {
		return err
	}
	if _, err := m.idxFile.Write(idxRecords); err != nil {
		return err
	}
	if err := m.idxFile.Sync(); err != nil {
		return err
	}

	// overlayIndex holds each key's latest buffered slot, so a key put more
	// than once in this batch resolves to its last write.
	overlayEntries := make([]fst.Entry, 0, len(m.overlayIndex))
	for key, slot := range m.overlayIndex {
		overlayEntries = append(overlayEntries, fst.Entry{Key: key, Value: slot})
	}

	sort.Slice(overlayEntries, func(i, j int) bool { return overlayEntries[i].Key < overlayEntries[j].Key })

	overlayPath := m.fstPath + ".overlay-tmp"
	if err := fst.Build(overlayPath, overlayEntries); err != nil {
		return err
	}
	defer os.Remove(overlayPath)

	overlayFST, err := fst.Open(overlayPath)
	if err != nil {
		return err
	}
	defer overlayFST.Close()

	merged, err := fst.Union(m.fstMap, overlayFST, fst.MaxResolver)
	if err != nil {
		return err
	}

	tmpFSTPath := m.fstPath + ".tmp"
	if err := fst.Build(tmpFSTPath, merged); err != nil {
		return err
	}
	if err := m.fstMap.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpFSTPath, m.fstPath); err != nil {
		return err
	}

	newFST, err := fst.Open(m.fstPath)
	if err != nil {
		return err
	}
	m.fstMap = newFST
	m.flushedSlots += uint64(len(m.buffer))
	m.buffer = nil
	m.overlayIndex = make(map[string]uint64)
	return nil
}

// Close releases all open file handles. Unflushed writes are lost.
func (m *LogMap) Close() error {
	var firstErr error
	if m.fstMap != nil {
		if err := m.fstMap.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if m.idxFile != nil {
		if err := m.idxFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if m.logFile != nil {
		if err := m.logFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

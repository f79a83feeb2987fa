// Package manifest maintains a durable catalog of published segment
// files. Entries are persisted in a bitcask store and mirrored in an
// in-memory skipmap for ordered, lock-free lookups. A bloom filter over
// record digests answers approximate membership without touching
// segment files.
package manifest

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/zhangyunhao116/skipmap"
	"go.mills.io/bitcask/v2"
)

const (
	// catalogDir is the bitcask store directory under the catalog root.
	catalogDir = "catalog"
	// filterName is the persisted membership filter file.
	filterName = "filter.bloom"
	// maxValueSize bounds encoded entries; paths are capped at 64KiB
	// so this is generous.
	maxValueSize = 128 << 10
)

// Catalog tracks published segments under a root directory.
type Catalog struct {
	root    string
	db      *bitcask.Bitcask
	entries *skipmap.Int64Map[Entry]
	filter  *bloom.BloomFilter
	seq     atomic.Int64
	closed  atomic.Bool
	cfg     config
}

// Open opens (or creates) the catalog rooted at dir. Existing entries
// are loaded into memory; corrupted entries are skipped with a warning
// rather than failing the open.
func Open(dir string, opts ...Option) (*Catalog, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt.apply(&cfg)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create catalog root: %w", err)
	}
	db, err := bitcask.Open(filepath.Join(dir, catalogDir),
		bitcask.WithMaxValueSize(maxValueSize))
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog store: %w", err)
	}

	c := &Catalog{
		root:    dir,
		db:      db,
		entries: skipmap.NewInt64[Entry](),
		cfg:     cfg,
	}
	if err := c.load(); err != nil {
		_ = db.Close()
		return nil, err
	}
	c.filter = c.loadFilter()
	return c, nil
}

// load replays the store into the in-memory map and seeds the id
// sequence past the highest recorded id.
func (c *Catalog) load() error {
	var maxID int64
	err := c.db.ForEach(func(key bitcask.Key) error {
		val, err := c.db.Get(key)
		if err != nil {
			return fmt.Errorf("failed to read catalog entry: %w", err)
		}
		e, err := DecodeEntry(val)
		if err != nil {
			log.Warn("skipping unreadable catalog entry",
				"key", fmt.Sprintf("%x", []byte(key)), "error", err)
			return nil
		}
		c.entries.Store(e.ID, e)
		if e.ID > maxID {
			maxID = e.ID
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	c.seq.Store(maxID)
	return nil
}

// loadFilter restores the persisted membership filter, or builds an
// empty one sized from config when missing or unreadable.
func (c *Catalog) loadFilter() *bloom.BloomFilter {
	filter := bloom.NewWithEstimates(c.cfg.ExpectedSegments, c.cfg.FalsePositiveRate)
	f, err := os.Open(filepath.Join(c.root, filterName))
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn("failed to open membership filter", "error", err)
		}
		return filter
	}
	defer func() { _ = f.Close() }()
	if _, err := filter.ReadFrom(f); err != nil {
		log.Warn("failed to restore membership filter, starting empty", "error", err)
		return bloom.NewWithEstimates(c.cfg.ExpectedSegments, c.cfg.FalsePositiveRate)
	}
	return filter
}

// NextID returns the next unused segment id.
func (c *Catalog) NextID() int64 {
	return c.seq.Add(1)
}

// Commit records a published segment. The entry is persisted before the
// in-memory views are updated, so a crash between the two leaves the
// catalog consistent on reopen.
func (c *Catalog) Commit(e Entry) error {
	if c.closed.Load() {
		return ErrClosed
	}
	if err := e.valid(); err != nil {
		return err
	}
	buf := AppendEntry(make([]byte, 0, e.EncodedSize()), e)
	if err := c.db.Put(makeKey(e.ID), buf); err != nil {
		return fmt.Errorf("failed to persist entry %d: %w", e.ID, err)
	}
	c.entries.Store(e.ID, e)
	c.filter.Add(sumKey(e.Sum))
	// Keep the sequence ahead of externally chosen ids.
	for {
		cur := c.seq.Load()
		if e.ID <= cur || c.seq.CompareAndSwap(cur, e.ID) {
			break
		}
	}
	return nil
}

// Get returns the entry for a segment id.
func (c *Catalog) Get(id int64) (Entry, error) {
	e, ok := c.entries.Load(id)
	if !ok {
		return Entry{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return e, nil
}

// Delete removes a segment from the catalog. The membership filter is
// not rebuilt, so MayContain may keep answering true for its digest.
func (c *Catalog) Delete(id int64) error {
	if c.closed.Load() {
		return ErrClosed
	}
	if _, ok := c.entries.LoadAndDelete(id); !ok {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if err := c.db.Delete(makeKey(id)); err != nil {
		return fmt.Errorf("failed to delete entry %d: %w", id, err)
	}
	return nil
}

// ForEach visits entries in ascending id order. Iteration stops at the
// first error.
func (c *Catalog) ForEach(fn func(Entry) error) error {
	var err error
	c.entries.Range(func(_ int64, e Entry) bool {
		err = fn(e)
		return err == nil
	})
	return err
}

// Len returns the number of cataloged segments.
func (c *Catalog) Len() int {
	return c.entries.Len()
}

// AddSums feeds record digests into the membership filter.
func (c *Catalog) AddSums(sums []uint64) {
	for _, sum := range sums {
		c.filter.Add(sumKey(sum))
	}
}

// MayContain reports whether a record digest may be present in any
// cataloged segment. False positives are possible, false negatives
// are not.
func (c *Catalog) MayContain(sum uint64) bool {
	return c.filter.Test(sumKey(sum))
}

// Prune drops entries whose segment files are missing or shorter than
// recorded, and returns the number removed.
func (c *Catalog) Prune() (int, error) {
	if c.closed.Load() {
		return 0, ErrClosed
	}
	var stale []int64
	c.entries.Range(func(id int64, e Entry) bool {
		fi, err := os.Stat(c.segmentPath(e))
		switch {
		case err != nil:
			log.Warn("pruning segment with missing file",
				"id", id, "path", e.Path, "error", err)
			stale = append(stale, id)
		case fi.Size() < e.Offset+e.Bytes:
			log.Warn("pruning truncated segment",
				"id", id, "path", e.Path, "size", fi.Size(), "expected", e.Offset+e.Bytes)
			stale = append(stale, id)
		}
		return true
	})
	for _, id := range stale {
		if err := c.Delete(id); err != nil && !errors.Is(err, ErrNotFound) {
			return 0, err
		}
	}
	return len(stale), nil
}

// Close persists the membership filter and releases the store. Safe to
// call more than once.
func (c *Catalog) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return errors.Join(c.saveFilter(), c.db.Close())
}

// saveFilter writes the membership filter next to the store via a temp
// file and rename, so readers never observe a partial filter.
func (c *Catalog) saveFilter() error {
	tmp, err := os.CreateTemp(c.root, ".filter-*")
	if err != nil {
		return fmt.Errorf("failed to create filter temp file: %w", err)
	}
	if _, err := c.filter.WriteTo(tmp); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write membership filter: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to close filter temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(c.root, filterName)); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to publish membership filter: %w", err)
	}
	return nil
}

// segmentPath resolves an entry path against the catalog root.
func (c *Catalog) segmentPath(e Entry) string {
	if filepath.IsAbs(e.Path) {
		return e.Path
	}
	return filepath.Join(c.root, e.Path)
}

// makeKey encodes a segment id as a big-endian store key so the store
// iterates in id order.
func makeKey(id int64) bitcask.Key {
	var key [8]byte
	binary.BigEndian.PutUint64(key[:], uint64(id))
	return key[:]
}

// sumKey encodes a record digest for the membership filter.
func sumKey(sum uint64) []byte {
	var key [8]byte
	binary.LittleEndian.PutUint64(key[:], sum)
	return key[:]
}

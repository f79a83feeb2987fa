// Package digest computes per-record xxhash digests as a side effect of
// segment writes, and folds them into bloom filters for approximate
// membership checks.
package digest

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/cespare/xxhash/v2"

	"github.com/miretskiy/segio"
)

// Collector accumulates one xxhash digest per record written through it.
// The zero value is ready to use.
type Collector struct {
	sums []uint64
	buf  []byte
}

// Sums returns the collected digests in write order. The slice is owned
// by the collector and is invalidated by the next write or Reset.
func (c *Collector) Sums() []uint64 {
	return c.sums
}

// Len returns the number of collected digests.
func (c *Collector) Len() int {
	return len(c.sums)
}

// Reset discards collected digests, retaining capacity.
func (c *Collector) Reset() {
	c.sums = c.sums[:0]
}

// Items returns a record strategy that encodes fixed-layout items,
// digests the encoded bytes, and writes them to the segment. Each item
// contributes one count.
func Items[I segio.Layout](c *Collector) segio.ItemFunc[I] {
	return func(w io.WriteSeeker, _ segio.Segment, item I) (uint64, error) {
		size := item.EncodedSize()
		if cap(c.buf) < size {
			c.buf = make([]byte, 0, size)
		}
		buf, err := item.AppendBinary(c.buf[:0])
		if err != nil {
			return 0, fmt.Errorf("failed to encode record: %w", err)
		}
		if len(buf) != size {
			return 0, fmt.Errorf("%w: encoded %d bytes, layout declares %d",
				segio.ErrLayoutMismatch, len(buf), size)
		}
		if _, err := w.Write(buf); err != nil {
			return 0, fmt.Errorf("failed to write record: %w", err)
		}
		c.buf = buf
		c.sums = append(c.sums, xxhash.Sum64(buf))
		return 1, nil
	}
}

// SumReader digests everything remaining in r. Tools verifying a
// published segment seek to its offset and hash the region, bounding r
// when the segment does not extend to EOF.
func SumReader(r io.Reader) (uint64, error) {
	h := xxhash.New()
	if _, err := io.Copy(h, r); err != nil {
		return 0, fmt.Errorf("failed to digest stream: %w", err)
	}
	return h.Sum64(), nil
}

// Filter builds a bloom filter over the collected digests at the given
// false positive rate.
func (c *Collector) Filter(rate float64) *bloom.BloomFilter {
	n := uint(len(c.sums))
	if n == 0 {
		n = 1
	}
	f := bloom.NewWithEstimates(n, rate)
	var key [8]byte
	for _, sum := range c.sums {
		binary.LittleEndian.PutUint64(key[:], sum)
		f.Add(key[:])
	}
	return f
}

package segio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// PrefixWidth selects how many bytes the reserved count placeholder occupies.
type PrefixWidth int

const (
	// Prefix32 reserves a little-endian uint32 count. The default.
	Prefix32 PrefixWidth = 4
	// Prefix64 reserves a little-endian uint64 count for segments whose
	// record count may not fit 32 bits.
	Prefix64 PrefixWidth = 8
)

func (p PrefixWidth) valid() bool { return p == Prefix32 || p == Prefix64 }

// maxCount returns the largest count the placeholder can represent.
func (p PrefixWidth) maxCount() uint64 {
	if p == Prefix32 {
		return math.MaxUint32
	}
	return math.MaxUint64
}

// CountPrefix reserves a fixed-width count placeholder at the segment start
// and patches the true record count into it during finalize. One type serves
// both the header and finalize roles, so a patching finalizer cannot be
// paired with a header that reserved nothing.
type CountPrefix[H any] struct {
	width PrefixWidth
}

// NewCountPrefix returns the paired header/finalize strategy behind
// length-prefixed segments.
func NewCountPrefix[H any](width PrefixWidth) CountPrefix[H] {
	return CountPrefix[H]{width: width}
}

// WriteHeader reserves the placeholder as zeros and reports header offset 0:
// the placeholder sits at the very start of the segment. The header value is
// ignored.
func (p CountPrefix[H]) WriteHeader(w io.WriteSeeker, _ int64, _ H) (int64, error) {
	if !p.width.valid() {
		return 0, fmt.Errorf("invalid count prefix width %d", p.width)
	}
	var zeros [8]byte
	if _, err := w.Write(zeros[:p.width]); err != nil {
		return 0, fmt.Errorf("failed to reserve count prefix: %w", err)
	}
	return 0, nil
}

// Finalize patches the record count into the placeholder and restores the
// stream position. Counts the placeholder cannot hold fail with
// ErrCountOverflow before anything is written.
func (p CountPrefix[H]) Finalize(w io.WriteSeeker, seg Segment) error {
	if !p.width.valid() {
		return fmt.Errorf("invalid count prefix width %d", p.width)
	}
	if seg.Count > p.width.maxCount() {
		return fmt.Errorf("%w: %d records, %d-byte prefix", ErrCountOverflow, seg.Count, p.width)
	}
	here, err := w.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("failed to locate stream position: %w", err)
	}
	if _, err := w.Seek(seg.Start+seg.HeaderOffset, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek to count prefix: %w", err)
	}
	var buf []byte
	if p.width == Prefix32 {
		buf = binary.LittleEndian.AppendUint32(nil, uint32(seg.Count))
	} else {
		buf = binary.LittleEndian.AppendUint64(nil, seg.Count)
	}
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("failed to patch count prefix: %w", err)
	}
	if _, err := w.Seek(here, io.SeekStart); err != nil {
		return fmt.Errorf("failed to restore stream position: %w", err)
	}
	return nil
}

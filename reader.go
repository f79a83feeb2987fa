package segio

import (
	"encoding/binary"
	"fmt"
	"io"
)

// ReadCount reads a little-endian count prefix of the given width.
func ReadCount(r io.Reader, width PrefixWidth) (uint64, error) {
	if !width.valid() {
		return 0, fmt.Errorf("invalid count prefix width %d", width)
	}
	buf := make([]byte, width)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, fmt.Errorf("failed to read count prefix: %w", err)
	}
	if width == Prefix32 {
		return uint64(binary.LittleEndian.Uint32(buf)), nil
	}
	return binary.LittleEndian.Uint64(buf), nil
}

// ReadHeader reads a fixed-width header and decodes it.
func ReadHeader[H any](r io.Reader, size int, dec DecodeFunc[H]) (H, error) {
	var zero H
	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return zero, fmt.Errorf("failed to read header: %w", err)
	}
	return dec(buf)
}

// CountedReader decodes the records of a counted segment: the count prefix
// first, then exactly that many fixed-width records. Bytes past the last
// record are never touched, so trailing padding is harmless.
type CountedReader[I any] struct {
	r         io.Reader
	dec       DecodeFunc[I]
	remaining uint64
	total     uint64
	buf       []byte
}

// NewCountedReader consumes the count prefix and prepares to decode records
// of the given encoded size. The prefix width must match what the writer
// used (see WithPrefixWidth).
func NewCountedReader[I any](r io.Reader, size int, dec DecodeFunc[I], opts ...Option) (*CountedReader[I], error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt.apply(&cfg)
	}
	count, err := ReadCount(r, cfg.Width)
	if err != nil {
		return nil, err
	}
	return &CountedReader[I]{
		r:         r,
		dec:       dec,
		remaining: count,
		total:     count,
		buf:       make([]byte, size),
	}, nil
}

// Count returns the record count the prefix declared.
func (r *CountedReader[I]) Count() uint64 { return r.total }

// Remaining returns how many records Next has yet to produce.
func (r *CountedReader[I]) Remaining() uint64 { return r.remaining }

// Next decodes the next record. After the last one it returns io.EOF.
// A stream that ends before the declared count surfaces io.ErrUnexpectedEOF
// wrapped with the failing record's ordinal.
func (r *CountedReader[I]) Next() (I, error) {
	var zero I
	if r.remaining == 0 {
		return zero, io.EOF
	}
	if _, err := io.ReadFull(r.r, r.buf); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return zero, fmt.Errorf("failed to read record %d of %d: %w", r.total-r.remaining, r.total, err)
	}
	item, err := r.dec(r.buf)
	if err != nil {
		return zero, fmt.Errorf("failed to decode record %d of %d: %w", r.total-r.remaining, r.total, err)
	}
	r.remaining--
	return item, nil
}

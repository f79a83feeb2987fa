package segio

import (
	"fmt"
	"io"
)

// Segment describes the region a Writer has produced so far. Strategies
// receive it by value; only the writer updates Count.
type Segment struct {
	Start        int64  // absolute stream offset captured at construction
	HeaderOffset int64  // bytes into the segment where the patchable region begins
	Count        uint64 // logical items recorded so far
}

// HeaderPolicy writes a segment's header once, at construction time. The
// returned header offset says where, relative to the segment start, a
// finalizer may patch later.
type HeaderPolicy[H any] interface {
	WriteHeader(w io.WriteSeeker, start int64, header H) (int64, error)
}

// ItemPolicy writes one item and reports how much the logical count grew.
type ItemPolicy[I any] interface {
	WriteItem(w io.WriteSeeker, seg Segment, item I) (uint64, error)
}

// FinalizePolicy completes a segment. Implementations that reposition the
// stream must restore the position before returning.
type FinalizePolicy interface {
	Finalize(w io.WriteSeeker, seg Segment) error
}

// HeaderFunc adapts a function to a HeaderPolicy.
type HeaderFunc[H any] func(w io.WriteSeeker, start int64, header H) (int64, error)

func (f HeaderFunc[H]) WriteHeader(w io.WriteSeeker, start int64, header H) (int64, error) {
	return f(w, start, header)
}

// ItemFunc adapts a function to an ItemPolicy.
type ItemFunc[I any] func(w io.WriteSeeker, seg Segment, item I) (uint64, error)

func (f ItemFunc[I]) WriteItem(w io.WriteSeeker, seg Segment, item I) (uint64, error) {
	return f(w, seg, item)
}

// FinalizeFunc adapts a function to a FinalizePolicy.
type FinalizeFunc func(w io.WriteSeeker, seg Segment) error

func (f FinalizeFunc) Finalize(w io.WriteSeeker, seg Segment) error {
	return f(w, seg)
}

// NopHeader writes nothing and reports header offset 0.
func NopHeader[H any]() HeaderPolicy[H] { return nopHeader[H]{} }

type nopHeader[H any] struct{}

func (nopHeader[H]) WriteHeader(io.WriteSeeker, int64, H) (int64, error) { return 0, nil }

// NopItem consumes items without touching the stream or the count.
func NopItem[I any]() ItemPolicy[I] { return nopItem[I]{} }

type nopItem[I any] struct{}

func (nopItem[I]) WriteItem(io.WriteSeeker, Segment, I) (uint64, error) { return 0, nil }

// NopFinalize leaves the segment exactly as written.
func NopFinalize() FinalizePolicy { return nopFinalize{} }

type nopFinalize struct{}

func (nopFinalize) Finalize(io.WriteSeeker, Segment) error { return nil }

// RawHeader writes the header's fixed layout at the segment start and
// reports its encoded width as the header offset.
func RawHeader[H Layout]() HeaderPolicy[H] { return rawHeader[H]{} }

type rawHeader[H Layout] struct{}

func (rawHeader[H]) WriteHeader(w io.WriteSeeker, _ int64, header H) (int64, error) {
	buf, err := appendChecked(nil, header)
	if err != nil {
		return 0, fmt.Errorf("failed to encode header: %w", err)
	}
	if _, err := w.Write(buf); err != nil {
		return 0, fmt.Errorf("failed to write header: %w", err)
	}
	return int64(len(buf)), nil
}

// RawItem writes each item's fixed layout and counts 1 per item, whatever
// its byte width.
func RawItem[I Layout]() ItemPolicy[I] { return rawItem[I]{} }

type rawItem[I Layout] struct{}

func (rawItem[I]) WriteItem(w io.WriteSeeker, _ Segment, item I) (uint64, error) {
	buf, err := appendChecked(nil, item)
	if err != nil {
		return 0, fmt.Errorf("failed to encode record: %w", err)
	}
	if _, err := w.Write(buf); err != nil {
		return 0, fmt.Errorf("failed to write record: %w", err)
	}
	return 1, nil
}

// appendChecked encodes v and verifies the width it declared. A mismatch
// would shift every later record boundary, so it fails loudly instead.
func appendChecked(buf []byte, v Layout) ([]byte, error) {
	if buf == nil {
		buf = make([]byte, 0, v.EncodedSize())
	}
	was := len(buf)
	out, err := v.AppendBinary(buf)
	if err != nil {
		return nil, err
	}
	if got, want := len(out)-was, v.EncodedSize(); got != want {
		return nil, fmt.Errorf("%w: appended %d bytes, layout declares %d", ErrLayoutMismatch, got, want)
	}
	return out, nil
}

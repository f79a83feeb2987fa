package segio

import (
	"fmt"
	"io"
)

// Policies assembles the three strategies a Writer runs: header once at
// construction, item per record, finalize once at close. Nil fields default
// to the no-op strategies.
type Policies[H, I any] struct {
	Header   HeaderPolicy[H]
	Item     ItemPolicy[I]
	Finalize FinalizePolicy
}

// Writer produces one segment on a seekable stream. It never interprets
// item bytes or strategy return values; the strategies own the format.
//
// A Writer is single-goroutine, and the caller must not reposition the
// stream while the writer is open. Segments compose sequentially: a writer
// constructed at the position where the previous one was closed produces an
// adjacent, independently readable segment.
type Writer[I any] struct {
	stream   io.WriteSeeker
	item     ItemPolicy[I]
	finalize FinalizePolicy
	seg      Segment
	closed   bool
}

// New starts a segment at the stream's current position: it runs the header
// strategy once and records where the patchable region begins. The header
// type appears only here; Write and Close are header-agnostic.
func New[H, I any](stream io.WriteSeeker, header H, pol Policies[H, I]) (*Writer[I], error) {
	if pol.Header == nil {
		pol.Header = NopHeader[H]()
	}
	if pol.Item == nil {
		pol.Item = NopItem[I]()
	}
	if pol.Finalize == nil {
		pol.Finalize = NopFinalize()
	}
	start, err := stream.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("failed to locate segment start: %w", err)
	}
	offset, err := pol.Header.WriteHeader(stream, start, header)
	if err != nil {
		return nil, fmt.Errorf("failed to write segment header: %w", err)
	}
	return &Writer[I]{
		stream:   stream,
		item:     pol.Item,
		finalize: pol.Finalize,
		seg:      Segment{Start: start, HeaderOffset: offset},
	}, nil
}

// Write hands one item to the item strategy and grows the count by whatever
// delta the strategy reports. A failed Write leaves the writer open; the
// caller's Close still runs finalize and reports its own outcome.
func (w *Writer[I]) Write(item I) error {
	if w.closed {
		return ErrClosed
	}
	delta, err := w.item.WriteItem(w.stream, w.seg, item)
	if err != nil {
		return err
	}
	w.seg.Count += delta
	return nil
}

// Count returns the logical number of items recorded so far.
func (w *Writer[I]) Count() uint64 { return w.seg.Count }

// Segment returns a snapshot of the segment's start, header offset, and count.
func (w *Writer[I]) Segment() Segment { return w.seg }

// Close runs the finalize strategy exactly once, even when no items were
// written. Later calls are no-ops returning nil, so a deferred Close
// combined with an explicit one is safe. After a successful Close the
// stream position is exactly where it was before the call.
func (w *Writer[I]) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.finalize.Finalize(w.stream, w.seg); err != nil {
		return fmt.Errorf("failed to finalize segment: %w", err)
	}
	return nil
}

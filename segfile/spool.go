package segfile

import (
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/ncw/directio"
)

const blockMask = directio.BlockSize - 1

// Spool is an io.WriteSeeker over direct-IO-aligned memory. A segment is
// built (and patched) entirely in the spool, then Flush lands it in one
// aligned O_DIRECT pass, bypassing the page cache. Padding added for
// alignment is truncated away before the file is published.
type Spool struct {
	block []byte // aligned backing, always a block-size multiple
	size  int64  // logical content length
	pos   int64
}

// NewSpool returns a spool with room for sizeHint bytes before regrowing.
func NewSpool(sizeHint int) *Spool {
	n := (sizeHint + blockMask) &^ blockMask
	if n == 0 {
		n = directio.BlockSize
	}
	return &Spool{block: directio.AlignedBlock(n)}
}

// Len returns the logical content length.
func (s *Spool) Len() int64 { return s.size }

// Bytes returns the logical contents. The slice aliases the spool's backing
// and is only valid until the next Write.
func (s *Spool) Bytes() []byte { return s.block[:s.size] }

// Write implements io.Writer at the current position.
func (s *Spool) Write(p []byte) (int, error) {
	s.grow(s.pos + int64(len(p)))
	n := copy(s.block[s.pos:], p)
	s.pos += int64(n)
	if s.pos > s.size {
		s.size = s.pos
	}
	return n, nil
}

// Seek implements io.Seeker with the same rules as an in-memory buffer.
func (s *Spool) Seek(offset int64, whence int) (int64, error) {
	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = s.pos + offset
	case io.SeekEnd:
		pos = s.size + offset
	default:
		return 0, fs.ErrInvalid
	}
	if pos < 0 {
		return 0, fs.ErrInvalid
	}
	s.pos = pos
	return pos, nil
}

// grow doubles the aligned backing until end fits. Content past the logical
// size stays zero; the backing never shrinks.
func (s *Spool) grow(end int64) {
	if end <= int64(len(s.block)) {
		return
	}
	n := int64(len(s.block))
	for n < end {
		n *= 2
	}
	grown := directio.AlignedBlock(int(n))
	copy(grown, s.block[:s.size])
	s.block = grown
}

// Flush publishes the spool to path: an O_DIRECT write of the block-padded
// contents into a temp sibling, a truncate back to the logical length, and
// an atomic rename. Filesystems that refuse O_DIRECT get a buffered
// fallback with a warning, same bytes either way.
func (s *Spool) Flush(path string) error {
	tmp := tmpPath(path)
	padded := (s.size + blockMask) &^ blockMask

	f, err := directio.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		log.Warn("direct IO unavailable, falling back to buffered flush",
			"path", path, "error", err)
		return s.flushBuffered(path, tmp)
	}

	if _, err := f.Write(s.block[:padded]); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to write spool: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// Drop the alignment padding; truncate has no alignment rules.
	if padded != s.size {
		if err := os.Truncate(tmp, s.size); err != nil {
			os.Remove(tmp)
			return fmt.Errorf("failed to truncate padding: %w", err)
		}
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to rename to final path: %w", err)
	}
	return nil
}

func (s *Spool) flushBuffered(path, tmp string) error {
	if err := os.WriteFile(tmp, s.block[:s.size], 0o644); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write spool: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to rename to final path: %w", err)
	}
	return nil
}

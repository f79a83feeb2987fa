package segio

import (
	"io"
	"io/fs"
)

// Buffer is an in-memory stream for building and rereading segments without
// a file. The zero value is ready to use. Seeking past the end is allowed;
// the gap becomes zeros once something is written beyond it.
type Buffer struct {
	buf []byte
	pos int64
}

// NewBuffer returns a Buffer whose initial contents are b. The Buffer takes
// ownership of b.
func NewBuffer(b []byte) *Buffer { return &Buffer{buf: b} }

// Bytes returns the current contents. The slice aliases the Buffer's
// storage and is only valid until the next Write.
func (b *Buffer) Bytes() []byte { return b.buf }

// Len returns the content length in bytes.
func (b *Buffer) Len() int { return len(b.buf) }

// Write implements io.Writer at the current position, growing the contents
// as needed.
func (b *Buffer) Write(p []byte) (int, error) {
	if end := b.pos + int64(len(p)); end > int64(len(b.buf)) {
		b.buf = append(b.buf, make([]byte, end-int64(len(b.buf)))...)
	}
	n := copy(b.buf[b.pos:], p)
	b.pos += int64(n)
	return n, nil
}

// Read implements io.Reader from the current position.
func (b *Buffer) Read(p []byte) (int, error) {
	if b.pos >= int64(len(b.buf)) {
		return 0, io.EOF
	}
	n := copy(p, b.buf[b.pos:])
	b.pos += int64(n)
	return n, nil
}

// Seek implements io.Seeker. Negative resulting positions and unknown
// whence values fail with fs.ErrInvalid.
func (b *Buffer) Seek(offset int64, whence int) (int64, error) {
	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = b.pos + offset
	case io.SeekEnd:
		pos = int64(len(b.buf)) + offset
	default:
		return 0, fs.ErrInvalid
	}
	if pos < 0 {
		return 0, fs.ErrInvalid
	}
	b.pos = pos
	return pos, nil
}

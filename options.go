package segio

import (
	"errors"
)

// config holds internal configuration for counted writers and readers
type config struct {
	Width PrefixWidth
}

// Option configures counted writers and readers
type Option interface {
	apply(*config)
}

// funcOpt wraps a function as an Option
type funcOpt func(*config)

func (f funcOpt) apply(c *config) {
	f(c)
}

// WithPrefixWidth sets the width of the reserved count placeholder
// (default: Prefix32). Prefix64 trades four bytes per segment for a count
// that cannot realistically overflow. Writer and reader must agree.
func WithPrefixWidth(w PrefixWidth) Option {
	return funcOpt(func(c *config) {
		c.Width = w
	})
}

// Common errors
var (
	// ErrClosed is returned by Write once the writer has been closed.
	ErrClosed = errors.New("segment writer already closed")
	// ErrCountOverflow means the record count no longer fits the reserved
	// count placeholder. Use Prefix64 for segments this large.
	ErrCountOverflow = errors.New("record count exceeds count prefix capacity")
	// ErrLayoutMismatch means a Layout appended a different number of bytes
	// than its EncodedSize declares.
	ErrLayoutMismatch = errors.New("encoded size differs from declared layout size")
	// ErrBadMagic means the decoded bytes do not begin with a fingerprint.
	ErrBadMagic = errors.New("bad fingerprint magic")
)

// defaultConfig returns sensible defaults
func defaultConfig() config {
	return config{
		Width: Prefix32,
	}
}

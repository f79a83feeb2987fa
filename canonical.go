package segio

import (
	"fmt"
	"io"
)

// None is the placeholder type for a strategy role a composition does not
// use.
type None struct{}

// NewHeaderWriter writes a single fixed-layout header and nothing else.
// Closing it is still required so the segment lifecycle stays uniform; the
// close is a no-op.
func NewHeaderWriter[H Layout](stream io.WriteSeeker, header H) (*Writer[None], error) {
	return New[H, None](stream, header, Policies[H, None]{
		Header:   RawHeader[H](),
		Item:     NopItem[None](),
		Finalize: NopFinalize(),
	})
}

// NewCountedWriter writes a length-prefixed run of fixed-width records: a
// reserved count placeholder, the records, then the true count patched in
// on Close. One generic constructor serves every record kind.
func NewCountedWriter[I Layout](stream io.WriteSeeker, opts ...Option) (*Writer[I], error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt.apply(&cfg)
	}
	if !cfg.Width.valid() {
		return nil, fmt.Errorf("invalid count prefix width %d", cfg.Width)
	}
	prefix := NewCountPrefix[None](cfg.Width)
	return New[None, I](stream, None{}, Policies[None, I]{
		Header:   prefix,
		Item:     RawItem[I](),
		Finalize: prefix,
	})
}

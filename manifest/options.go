package manifest

import "errors"

// Common errors
var (
	// ErrNotFound is returned when a segment id is not in the catalog.
	ErrNotFound = errors.New("segment not found")
	// ErrCorrupted is returned when a stored entry fails to decode.
	ErrCorrupted = errors.New("corrupted catalog entry")
	// ErrClosed is returned when operating on a closed catalog.
	ErrClosed = errors.New("catalog is closed")
)

type config struct {
	// ExpectedSegments sizes the membership filter.
	ExpectedSegments uint
	// FalsePositiveRate is the target false positive rate for the
	// membership filter.
	FalsePositiveRate float64
}

// Option configures a Catalog.
type Option interface {
	apply(*config)
}

type funcOpt func(*config)

func (f funcOpt) apply(c *config) {
	f(c)
}

// WithExpectedSegments sets the expected number of catalog entries used
// to size the digest membership filter.
func WithExpectedSegments(n uint) Option {
	return funcOpt(func(c *config) {
		c.ExpectedSegments = n
	})
}

// WithFalsePositiveRate sets the target false positive rate for the
// digest membership filter.
func WithFalsePositiveRate(rate float64) Option {
	return funcOpt(func(c *config) {
		c.FalsePositiveRate = rate
	})
}

func defaultConfig() config {
	return config{
		ExpectedSegments:  1024,
		FalsePositiveRate: 0.01,
	}
}

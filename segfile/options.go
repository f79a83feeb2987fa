package segfile

import "os"

// config holds internal configuration
type config struct {
	Atomic      bool
	SyncOnClose bool
	Preallocate int64
	Perm        os.FileMode
}

// Option configures segment file creation
type Option interface {
	apply(*config)
}

// funcOpt wraps a function as an Option
type funcOpt func(*config)

func (f funcOpt) apply(c *config) {
	f(c)
}

// WithAtomicRename stages writes in a temp sibling and renames it into place
// on Close, so the file appears all-or-nothing (default: true)
func WithAtomicRename(enabled bool) Option {
	return funcOpt(func(c *config) {
		c.Atomic = enabled
	})
}

// WithSyncOnClose runs fdatasync before Close returns (default: false).
// Combined with the atomic rename this gives crash-durable segment files.
func WithSyncOnClose(enabled bool) Option {
	return funcOpt(func(c *config) {
		c.SyncOnClose = enabled
	})
}

// WithPreallocate reserves disk space up front to cut fragmentation on
// large segments (default: 0 = off). Allocation failure is logged at warn
// and never fails the create.
func WithPreallocate(bytes int64) Option {
	return funcOpt(func(c *config) {
		c.Preallocate = bytes
	})
}

// defaultConfig returns sensible defaults
func defaultConfig() config {
	return config{
		Atomic: true,
		Perm:   0o644,
	}
}

// Package segfile provides file-backed streams for segment writers: atomic
// create-and-rename, preallocation, platform data syncing, and a direct-IO
// spool. A *File is the io.WriteSeeker a production segment lands on; the
// writing itself is format-agnostic and lives in the parent package.
package segfile

import (
	"fmt"
	"os"
	"path/filepath"
)

// File is a segment file being produced. With atomic mode on (the default)
// the bytes accumulate in a hidden temp sibling and the final path appears
// only when Close succeeds.
type File struct {
	f      *os.File
	path   string // final path
	tmp    string // staged path, empty when atomic mode is off
	cfg    config
	closed bool
}

// Create opens a fresh segment file for writing. Without atomic mode the
// final path is created directly and must not already exist.
func Create(path string, opts ...Option) (*File, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt.apply(&cfg)
	}

	target := path
	flags := os.O_RDWR | os.O_CREATE | os.O_EXCL
	tmp := ""
	if cfg.Atomic {
		tmp = tmpPath(path)
		target = tmp
		// A stale temp from a crashed producer is overwritten, not an error.
		flags = os.O_RDWR | os.O_CREATE | os.O_TRUNC
	}

	f, err := os.OpenFile(target, flags, cfg.Perm)
	if err != nil {
		return nil, fmt.Errorf("failed to create segment file: %w", err)
	}

	if cfg.Preallocate > 0 {
		if err := fallocate(f, cfg.Preallocate); err != nil {
			log.Warn("failed to preallocate segment file",
				"path", path, "bytes", cfg.Preallocate, "error", err)
		}
	}

	return &File{f: f, path: path, tmp: tmp, cfg: cfg}, nil
}

// Open opens an existing segment file read-only, for readers and inspection.
func Open(path string) (*os.File, error) {
	return os.Open(path)
}

// Write implements io.Writer.
func (f *File) Write(p []byte) (int, error) { return f.f.Write(p) }

// Seek implements io.Seeker; count-prefix finalizers depend on it.
func (f *File) Seek(offset int64, whence int) (int64, error) {
	return f.f.Seek(offset, whence)
}

// ReadAt implements io.ReaderAt against the staged file, letting producers
// verify bytes before publishing.
func (f *File) ReadAt(p []byte, off int64) (int, error) { return f.f.ReadAt(p, off) }

// Path returns the final path the file publishes to.
func (f *File) Path() string { return f.path }

// Sync forces written data to disk (fdatasync where the platform has it).
func (f *File) Sync() error { return fdatasync(f.f) }

// Close finishes the file: optional data sync, close, then the atomic
// rename into the final path. Any failure removes the staged temp so no
// half-written segment is left behind.
func (f *File) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true

	if f.cfg.SyncOnClose {
		if err := fdatasync(f.f); err != nil {
			f.f.Close()
			f.discard()
			return fmt.Errorf("failed to fdatasync: %w", err)
		}
	}
	if err := f.f.Close(); err != nil {
		f.discard()
		return fmt.Errorf("failed to close segment file: %w", err)
	}
	if f.tmp != "" {
		if err := os.Rename(f.tmp, f.path); err != nil {
			f.discard()
			return fmt.Errorf("failed to rename to final path: %w", err)
		}
	}
	return nil
}

// Abort closes and removes the staged file without publishing it. Safe to
// call after Close, where it does nothing.
func (f *File) Abort() error {
	if f.closed {
		return nil
	}
	f.closed = true
	err := f.f.Close()
	f.discard()
	if f.tmp == "" {
		// Non-atomic mode: remove the final path we were writing into.
		os.Remove(f.path)
	}
	return err
}

func (f *File) discard() {
	if f.tmp != "" {
		os.Remove(f.tmp)
	}
}

// tmpPath builds the staged sibling for path, in the same directory so the
// final rename stays on one filesystem.
func tmpPath(path string) string {
	return filepath.Join(filepath.Dir(path), ".tmp-"+filepath.Base(path))
}

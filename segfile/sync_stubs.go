//go:build !linux && !darwin

package segfile

import "os"

// fdatasync falls back to a full sync on platforms without fdatasync(2).
func fdatasync(f *os.File) error {
	return f.Sync()
}

// fallocate is a no-op on platforms without pre-allocation support.
func fallocate(f *os.File, size int64) error {
	return nil
}

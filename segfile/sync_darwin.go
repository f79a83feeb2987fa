//go:build darwin

package segfile

import (
	"os"

	"golang.org/x/sys/unix"
)

// fdatasync syncs file data to disk.
// Darwin has no fdatasync, so we use F_FULLFSYNC which ensures data reaches
// physical disk (not just the drive cache).
func fdatasync(f *os.File) error {
	_, err := unix.FcntlInt(f.Fd(), unix.F_FULLFSYNC, 0)
	return err
}

// fallocate pre-allocates disk space for a file.
// Darwin uses F_PREALLOCATE via fcntl: contiguous first, then any blocks.
func fallocate(f *os.File, size int64) error {
	store := unix.Fstore_t{
		Flags:   unix.F_ALLOCATECONTIG,
		Posmode: unix.F_PEOFPOSMODE,
		Offset:  0,
		Length:  size,
	}
	err := unix.FcntlFstore(f.Fd(), unix.F_PREALLOCATE, &store)
	if err != nil {
		store.Flags = unix.F_ALLOCATEALL
		err = unix.FcntlFstore(f.Fd(), unix.F_PREALLOCATE, &store)
	}
	return err
}

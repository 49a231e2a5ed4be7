//go:build unix

package utils

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Alloc maps size bytes of anonymous memory, the Go GC never scans or moves it.
// The returned slice must be passed to Free exactly once.
func Alloc(size int) ([]byte, error) {
	if size <= 0 {
		return nil, errors.Errorf("invalid size %d", size)
	}
	b, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, errors.Wrapf(err, "mmap %d bytes", size)
	}
	offHeapUsed.Add(int64(len(b)))
	return b, nil
}

// Free unmaps memory returned by Alloc.
func Free(b []byte) {
	if len(b) == 0 {
		return
	}
	if err := unix.Munmap(b[:cap(b)]); err != nil {
		logger.Errorf("munmap %d bytes: %s", cap(b), err)
		return
	}
	offHeapUsed.Sub(int64(cap(b)))
}

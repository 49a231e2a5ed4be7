//go:build !unix

package utils

import "github.com/pkg/errors"

// Alloc is not available on this platform, callers fall back to the Go heap.
func Alloc(size int) ([]byte, error) {
	return nil, errors.Errorf("off-heap allocation of %d bytes is not supported", size)
}

func Free(b []byte) {}

package utils

import "go.uber.org/atomic"

var logger = GetLogger("chunkstream")

var offHeapUsed atomic.Int64

// AllocMemory returns the number of bytes currently allocated outside the Go heap.
func AllocMemory() int64 {
	return offHeapUsed.Load()
}

package chunk

import "github.com/pkg/errors"

// Config for buffers.
type Config struct {
	ChunkSize int
	OffHeap   bool      // map chunks outside the Go heap
	Pool      *PagePool // recycle chunks dropped by Truncate and Close
}

func (c *Config) check() error {
	if c.ChunkSize <= 0 || c.ChunkSize >= MaxChunkSize {
		return errors.Wrapf(ErrInvalidArgument, "chunk size %d should be in (0, %d)", c.ChunkSize, MaxChunkSize)
	}
	return nil
}

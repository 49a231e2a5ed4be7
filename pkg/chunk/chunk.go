// Package chunk implements a seekable in-memory byte stream whose storage is a list
// of fixed-size chunks rather than one contiguous, reallocating array.
package chunk

import (
	"io"
)

const (
	// DefaultChunkSize is the chunk size used when none is configured.
	DefaultChunkSize = 4096

	// MaxChunkSize is the exclusive upper bound of a chunk size. Allocations of this size
	// and above are treated as large objects by many runtimes.
	MaxChunkSize = 85000

	// AutoExtendLimit is how far SetPosition may move past the end, zero-filling the gap.
	// It does not depend on the chunk size of the buffer.
	AutoExtendLimit = DefaultChunkSize
)

// Stream is a readable, writable and seekable byte stream with a single cursor.
type Stream interface {
	io.ReadWriteSeeker
	io.ByteReader
	io.ByteWriter
	io.WriterTo
	io.ReaderFrom
	io.Closer

	CanRead() bool
	CanWrite() bool
	CanSeek() bool

	Length() (int64, error)
	Truncate(size int64) error
	Position() (int64, error)
	SetPosition(pos int64) error

	// Bytes returns a copy of the whole content.
	Bytes() ([]byte, error)
	// Buffer would expose the backing array, chunked streams do not have one.
	Buffer() ([]byte, error)
}

var _ Stream = (*Buffer)(nil)

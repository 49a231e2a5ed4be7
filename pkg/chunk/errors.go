package chunk

import "github.com/pkg/errors"

// Every error returned by a Buffer wraps exactly one of these; test with errors.Is or errors.Cause.
var (
	// ErrInvalidArgument indicates a malformed argument, e.g. a chunk size outside (0, MaxChunkSize)
	// or an unknown seek origin.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrOutOfRange indicates a position or length the buffer cannot take.
	ErrOutOfRange = errors.New("out of range")

	// ErrDisposed indicates the buffer was closed.
	ErrDisposed = errors.New("buffer is disposed")

	// ErrNotSupported indicates an operation the chunked layout cannot offer.
	ErrNotSupported = errors.New("not supported")
)

// Package sink throttles the readers and writers a buffer is filled from or exported to.
package sink

import (
	"io"

	"github.com/juju/ratelimit"
	"github.com/pkg/errors"
)

type limitedReader struct {
	io.Reader
	r *ratelimit.Bucket
}

func (l *limitedReader) Read(buf []byte) (int, error) {
	n, err := l.Reader.Read(buf)
	if l.r != nil && n > 0 {
		l.r.Wait(int64(n))
	}
	return n, err
}

// Seek calls the Seek in the underlying reader.
func (l *limitedReader) Seek(offset int64, whence int) (int64, error) {
	if s, ok := l.Reader.(io.Seeker); ok {
		return s.Seek(offset, whence)
	}
	return 0, errors.Errorf("%T does not support Seek()", l.Reader)
}

// Close closes the underlying reader
func (l *limitedReader) Close() error {
	if rc, ok := l.Reader.(io.Closer); ok {
		return rc.Close()
	}
	return nil
}

type limitedWriter struct {
	io.Writer
	w *ratelimit.Bucket
}

// Write waits for tokens before passing buf on, so one large chunk is not sent as a burst
// beyond the bucket capacity.
func (l *limitedWriter) Write(buf []byte) (int, error) {
	var written int
	for len(buf) > 0 {
		size := len(buf)
		if l.w != nil {
			size = min(size, int(l.w.Capacity()))
			l.w.Wait(int64(size))
		}
		n, err := l.Writer.Write(buf[:size])
		written += n
		if err != nil {
			return written, err
		}
		if n < size {
			return written, io.ErrShortWrite
		}
		buf = buf[size:]
	}
	return written, nil
}

// Close closes the underlying writer
func (l *limitedWriter) Close() error {
	if wc, ok := l.Writer.(io.Closer); ok {
		return wc.Close()
	}
	return nil
}

func newBucket(rate int64) *ratelimit.Bucket {
	if rate <= 0 {
		return nil
	}
	return ratelimit.NewBucketWithRate(float64(rate), rate)
}

// NewLimitedReader returns a reader that delivers at most rate bytes per second, 0 means unlimited.
func NewLimitedReader(r io.Reader, rate int64) io.ReadCloser {
	return &limitedReader{r, newBucket(rate)}
}

// NewLimitedWriter returns a writer that accepts at most rate bytes per second, 0 means unlimited.
func NewLimitedWriter(w io.Writer, rate int64) io.WriteCloser {
	return &limitedWriter{w, newBucket(rate)}
}

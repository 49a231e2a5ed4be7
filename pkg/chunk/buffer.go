package chunk

import (
	"context"
	"io"

	"ChunkStream/pkg/utils"
	"github.com/pkg/errors"
)

var zeroes [AutoExtendLimit]byte

// Buffer is a growable byte stream stored in fixed-size chunks. It has a single
// cursor shared by reads and writes, and it is not safe for concurrent use.
// It must be created with New, NewFromBytes or NewBuffer, a zero Buffer rejects
// every operation with ErrInvalidArgument.
//
// The logical length is derived from the chunk count and the fill marker, the
// highest position ever written expressed as (chunk index, offset in chunk).
// The offset may be equal to the chunk size when the last chunk is full.
type Buffer struct {
	conf  Config
	pages []*Page

	fillIdx int
	fillOff int

	pos      int64
	disposed bool
	closer   *utils.Disposer
}

// New creates an empty buffer.
func New(chunkSize int) (*Buffer, error) {
	return NewBuffer(&Config{ChunkSize: chunkSize}, nil)
}

// NewFromBytes creates a buffer holding a copy of data, with the cursor at 0.
func NewFromBytes(chunkSize int, data []byte) (*Buffer, error) {
	return NewBuffer(&Config{ChunkSize: chunkSize}, data)
}

// NewBuffer creates a buffer from conf and copies data into it. A nil conf uses DefaultChunkSize.
func NewBuffer(conf *Config, data []byte) (*Buffer, error) {
	if conf == nil {
		conf = &Config{ChunkSize: DefaultChunkSize}
	}
	if err := conf.check(); err != nil {
		return nil, err
	}
	b := &Buffer{conf: *conf}
	b.pages = []*Page{b.newPage()}
	b.closer = utils.NewDisposer(b.release)
	if len(data) > 0 {
		b.write(data)
		b.pos = 0
	}
	return b, nil
}

func (b *Buffer) newPage() *Page {
	if b.conf.Pool != nil {
		if p := b.conf.Pool.Get(b.conf.ChunkSize); p != nil {
			return p
		}
	}
	if b.conf.OffHeap {
		return NewOffPage(b.conf.ChunkSize)
	}
	return NewPage(b.conf.ChunkSize)
}

func (b *Buffer) freePage(p *Page) {
	if b.conf.Pool != nil {
		b.conf.Pool.Put(p)
		return
	}
	p.Release()
}

func (b *Buffer) check() error {
	if b.disposed {
		return ErrDisposed
	}
	if b.conf.ChunkSize <= 0 {
		return errors.Wrap(ErrInvalidArgument, "buffer is not initialized")
	}
	return nil
}

// locate converts a logical position into (chunk index, offset in chunk).
// An index equal to the chunk count means the chunk is not allocated yet.
func (b *Buffer) locate(pos int64) (int, int) {
	cs := int64(b.conf.ChunkSize)
	return int(pos / cs), int(pos % cs)
}

func (b *Buffer) length() int64 {
	if len(b.pages) == 0 {
		return 0
	}
	return int64(len(b.pages)-1)*int64(b.conf.ChunkSize) + int64(b.fillOff)
}

// advance moves the fill marker forward to (idx, off), it never moves it back.
func (b *Buffer) advance(idx, off int) {
	if idx > b.fillIdx || idx == b.fillIdx && off > b.fillOff {
		b.fillIdx, b.fillOff = idx, off
	}
}

// ChunkSize returns the capacity of every chunk, 0 once closed or if not initialized.
func (b *Buffer) ChunkSize() int {
	return b.conf.ChunkSize
}

// Chunks returns the number of allocated chunks, 0 once closed.
func (b *Buffer) Chunks() int {
	return len(b.pages)
}

func (b *Buffer) CanRead() bool  { return b.check() == nil }
func (b *Buffer) CanWrite() bool { return b.check() == nil }
func (b *Buffer) CanSeek() bool  { return b.check() == nil }

// Length returns the logical length of the content.
func (b *Buffer) Length() (int64, error) {
	if err := b.check(); err != nil {
		return 0, err
	}
	return b.length(), nil
}

// Position returns the cursor.
func (b *Buffer) Position() (int64, error) {
	if err := b.check(); err != nil {
		return 0, err
	}
	return b.pos, nil
}

// SetPosition moves the cursor. Moving it past the end by at most AutoExtendLimit
// bytes grows the buffer with zeroes; moving it any further is rejected.
func (b *Buffer) SetPosition(pos int64) error {
	if err := b.check(); err != nil {
		return err
	}
	return b.setPosition(pos)
}

func (b *Buffer) setPosition(pos int64) error {
	if pos < 0 {
		return errors.Wrapf(ErrOutOfRange, "negative position %d", pos)
	}
	length := b.length()
	if pos > length {
		gap := pos - length
		if gap > AutoExtendLimit {
			return errors.Wrapf(ErrOutOfRange, "position %d is %d bytes beyond length %d, limit is %d",
				pos, gap, length, AutoExtendLimit)
		}
		logger.Tracef("extend buffer from %d to %d bytes", length, pos)
		b.pos = length
		b.write(zeroes[:gap])
	}
	b.pos = pos
	return nil
}

// Seek implements io.Seeker.
func (b *Buffer) Seek(offset int64, whence int) (int64, error) {
	if err := b.check(); err != nil {
		return 0, err
	}
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = b.pos + offset
	case io.SeekEnd:
		target = b.length() + offset
	default:
		return 0, errors.Wrapf(ErrInvalidArgument, "seek: invalid whence %d", whence)
	}
	if err := b.setPosition(target); err != nil {
		return 0, err
	}
	return b.pos, nil
}

// Read implements io.Reader. It never reads beyond the logical length, even when
// the last chunk has spare capacity, and returns io.EOF at the end.
func (b *Buffer) Read(p []byte) (int, error) {
	if err := b.check(); err != nil {
		return 0, err
	}
	if len(p) == 0 {
		return 0, nil
	}
	idx, off := b.locate(b.pos)
	if idx >= len(b.pages) {
		return 0, io.EOF
	}
	remain := b.length() - b.pos
	if remain <= 0 {
		return 0, io.EOF
	}
	if int64(len(p)) > remain {
		p = p[:remain]
	}
	var n int
	for n < len(p) && idx < len(b.pages) {
		n += copy(p[n:], b.pages[idx].Data[off:])
		idx++
		off = 0
	}
	b.pos += int64(n)
	return n, nil
}

// ReadContext is Read for callers carrying a context, it only checks ctx before reading.
func (b *Buffer) ReadContext(ctx context.Context, p []byte) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return b.Read(p)
}

// ReadByte implements io.ByteReader.
func (b *Buffer) ReadByte() (byte, error) {
	if err := b.check(); err != nil {
		return 0, err
	}
	if b.pos >= b.length() {
		return 0, io.EOF
	}
	idx, off := b.locate(b.pos)
	c := b.pages[idx].Data[off]
	b.pos++
	return c, nil
}

// Write implements io.Writer. Writes are never short, chunks are appended as needed.
// Overwriting existing content never reduces the length.
func (b *Buffer) Write(p []byte) (int, error) {
	if err := b.check(); err != nil {
		return 0, err
	}
	b.write(p)
	return len(p), nil
}

func (b *Buffer) write(p []byte) {
	if len(p) == 0 {
		return
	}
	idx, off := b.locate(b.pos)
	var n int
	for {
		if idx == len(b.pages) {
			b.pages = append(b.pages, b.newPage())
		}
		c := copy(b.pages[idx].Data[off:], p[n:])
		n += c
		off += c
		if n == len(p) {
			break
		}
		idx++
		off = 0
	}
	b.pos += int64(n)
	b.advance(idx, off)
}

// WriteContext is Write for callers carrying a context, it only checks ctx before writing.
func (b *Buffer) WriteContext(ctx context.Context, p []byte) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return b.Write(p)
}

// WriteByte implements io.ByteWriter.
func (b *Buffer) WriteByte(c byte) error {
	if err := b.check(); err != nil {
		return err
	}
	idx, off := b.locate(b.pos)
	if idx == len(b.pages) {
		b.pages = append(b.pages, b.newPage())
	}
	b.pages[idx].Data[off] = c
	b.pos++
	b.advance(idx, off+1)
	return nil
}

// ReadFrom implements io.ReaderFrom, it reads r until EOF straight into the chunks,
// starting at the cursor.
func (b *Buffer) ReadFrom(r io.Reader) (int64, error) {
	if err := b.check(); err != nil {
		return 0, err
	}
	var total int64
	var spare *Page
	defer func() {
		if spare != nil {
			b.freePage(spare)
		}
	}()
	for {
		idx, off := b.locate(b.pos)
		var page *Page
		if idx == len(b.pages) {
			if spare == nil {
				spare = b.newPage()
			}
			page = spare
		} else {
			page = b.pages[idx]
		}
		n, err := r.Read(page.Data[off:])
		if n > 0 {
			if page == spare {
				b.pages = append(b.pages, spare)
				spare = nil
			}
			b.pos += int64(n)
			total += int64(n)
			b.advance(idx, off+n)
		}
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}

// Truncate drops the content beyond size, it cannot grow the buffer.
// The cursor is moved back to size if it was beyond it.
func (b *Buffer) Truncate(size int64) error {
	if err := b.check(); err != nil {
		return err
	}
	length := b.length()
	if size < 0 || size > length {
		return errors.Wrapf(ErrOutOfRange, "truncate to %d bytes, length is %d", size, length)
	}
	cs := int64(b.conf.ChunkSize)
	needed := max((size+cs-1)/cs, 1)
	for int64(len(b.pages)) > needed {
		last := len(b.pages) - 1
		b.freePage(b.pages[last])
		b.pages[last] = nil
		b.pages = b.pages[:last]
	}
	b.fillIdx = int(needed - 1)
	b.fillOff = int(size - (needed-1)*cs)
	if b.pos > size {
		b.pos = size
	}
	logger.Tracef("truncate buffer from %d to %d bytes, %d chunks", length, size, len(b.pages))
	return nil
}

// Bytes returns a copy of the whole content, regardless of the cursor.
func (b *Buffer) Bytes() ([]byte, error) {
	if err := b.check(); err != nil {
		return nil, err
	}
	out := make([]byte, b.length())
	var n int
	last := len(b.pages) - 1
	for i, p := range b.pages {
		if i == last {
			n += copy(out[n:], p.Data[:b.fillOff])
		} else {
			n += copy(out[n:], p.Data)
		}
	}
	return out, nil
}

// WriteTo implements io.WriterTo. It streams the whole content chunk by chunk,
// regardless of the cursor, and leaves the cursor where it is.
func (b *Buffer) WriteTo(w io.Writer) (int64, error) {
	if err := b.check(); err != nil {
		return 0, err
	}
	var written int64
	last := len(b.pages) - 1
	for i, p := range b.pages {
		data := p.Data
		if i == last {
			data = data[:b.fillOff]
		}
		if len(data) == 0 {
			continue
		}
		n, err := w.Write(data)
		written += int64(n)
		if err != nil {
			return written, err
		}
		if n < len(data) {
			return written, io.ErrShortWrite
		}
	}
	return written, nil
}

// Buffer always fails, the content is not stored in one array.
func (b *Buffer) Buffer() ([]byte, error) {
	if err := b.check(); err != nil {
		return nil, err
	}
	return nil, errors.Wrap(ErrNotSupported, "chunked buffer has no backing array")
}

// Close releases all chunks. Every later operation fails with ErrDisposed,
// closing again is a no-op.
func (b *Buffer) Close() error {
	if b.closer == nil {
		return nil
	}
	return b.closer.Dispose()
}

func (b *Buffer) release() error {
	b.disposed = true
	for i, p := range b.pages {
		b.freePage(p)
		b.pages[i] = nil
	}
	logger.Debugf("release buffer of %d chunks", len(b.pages))
	b.pages = nil
	b.fillIdx, b.fillOff = 0, 0
	b.pos = 0
	b.conf.ChunkSize = 0
	return nil
}

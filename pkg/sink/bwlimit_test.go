package sink

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnlimited(t *testing.T) {
	var out bytes.Buffer
	w := NewLimitedWriter(&out, 0)
	n, err := w.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.NoError(t, w.Close())
	assert.Equal(t, "hello", out.String())

	r := NewLimitedReader(strings.NewReader("world"), 0)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "world", string(data))
	assert.NoError(t, r.Close())
}

func TestLimitedWriterSplits(t *testing.T) {
	var out bytes.Buffer
	w := NewLimitedWriter(&out, 1<<20)
	payload := bytes.Repeat([]byte{7}, 3<<19)
	start := time.Now()
	n, err := w.Write(payload)
	require.NoError(t, err)
	assert.Equal(t, len(payload), n)
	assert.Equal(t, payload, out.Bytes())
	// the first MiB is a burst, the rest has to wait
	assert.GreaterOrEqual(t, time.Since(start), 400*time.Millisecond)
}

type stingyWriter struct{}

func (stingyWriter) Write(p []byte) (int, error) {
	if len(p) > 1 {
		return 1, nil
	}
	return len(p), nil
}

func TestLimitedWriterShort(t *testing.T) {
	w := NewLimitedWriter(stingyWriter{}, 0)
	n, err := w.Write([]byte("abc"))
	assert.Equal(t, 1, n)
	assert.Equal(t, io.ErrShortWrite, err)
}

func TestLimitedReaderSeek(t *testing.T) {
	r := NewLimitedReader(strings.NewReader("0123456789"), 1<<20)
	s, ok := r.(io.Seeker)
	require.True(t, ok)
	pos, err := s.Seek(5, io.SeekStart)
	require.NoError(t, err)
	assert.Equal(t, int64(5), pos)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "56789", string(data))

	r = NewLimitedReader(io.MultiReader(strings.NewReader("x")), 0)
	_, err = r.(io.Seeker).Seek(0, io.SeekStart)
	assert.Error(t, err)
}

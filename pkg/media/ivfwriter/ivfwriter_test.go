package ivfwriter

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seekBuffer adapts a bytes.Buffer into an io.WriteSeeker over a fixed
// backing slice, as a real *os.File would behave.
type seekBuffer struct {
	buf []byte
	pos int64
}

func (s *seekBuffer) Write(p []byte) (int, error) {
	end := s.pos + int64(len(p))
	if end > int64(len(s.buf)) {
		grown := make([]byte, end)
		copy(grown, s.buf)
		s.buf = grown
	}
	copy(s.buf[s.pos:end], p)
	s.pos = end
	return len(p), nil
}

func (s *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		s.pos = offset
	case io.SeekCurrent:
		s.pos += offset
	case io.SeekEnd:
		s.pos = int64(len(s.buf)) + offset
	}
	return s.pos, nil
}

func TestWriteFrameRejectsZeroLength(t *testing.T) {
	sb := &seekBuffer{}
	w, err := New(sb, "VP80", 640, 480, 1, 30, 10)
	require.NoError(t, err)
	assert.Error(t, w.WriteFrame(nil, 0))
}

func TestWriteFrameRestoresPositionAfterHeaderUpdate(t *testing.T) {
	sb := &seekBuffer{}
	w, err := New(sb, "VP80", 640, 480, 1, 30, 2)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, w.WriteFrame([]byte{1, 2, 3}, uint64(i)))
	}
	require.NoError(t, w.Close())

	// After close, the writer's internal position bookkeeping must match
	// end-of-file: a further frame must append, not clobber.
	assert.Equal(t, int64(len(sb.buf)), sb.pos)
}

func TestHeaderCarriesFourCCAndDimensions(t *testing.T) {
	sb := &seekBuffer{}
	_, err := New(sb, "VP80", 320, 240, 1, 30, 100)
	require.NoError(t, err)

	assert.Equal(t, "DKIF", string(sb.buf[0:4]))
	assert.Equal(t, "VP80", string(sb.buf[8:12]))
}

package ivfreader

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildIVF(fourcc string, frames [][]byte) []byte {
	var buf bytes.Buffer
	header := make([]byte, 32)
	copy(header[0:4], "DKIF")
	binary.LittleEndian.PutUint16(header[6:8], 32)
	copy(header[8:12], fourcc)
	binary.LittleEndian.PutUint32(header[24:28], uint32(len(frames)))
	buf.Write(header)

	for i, f := range frames {
		frameHeader := make([]byte, 12)
		binary.LittleEndian.PutUint32(frameHeader[0:4], uint32(len(f)))
		binary.LittleEndian.PutUint64(frameHeader[4:12], uint64(i))
		buf.Write(frameHeader)
		buf.Write(f)
	}
	return buf.Bytes()
}

func TestReadHeaderAndFrames(t *testing.T) {
	data := buildIVF("VP80", [][]byte{{0x01, 0x02}, {0x03}})
	r, err := New(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "VP80", r.Header.FourCC)
	assert.EqualValues(t, 2, r.Header.NumFrames)

	frame, pts, err := r.ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02}, frame)
	assert.EqualValues(t, 0, pts)

	frame, pts, err = r.ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x03}, frame)
	assert.EqualValues(t, 1, pts)

	_, _, err = r.ReadFrame()
	assert.Equal(t, io.EOF, err)
}

func TestRejectsNonIVF(t *testing.T) {
	_, err := New(bytes.NewReader(make([]byte, 32)))
	assert.Equal(t, errNotIVF, err)
}

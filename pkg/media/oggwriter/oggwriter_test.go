package oggwriter

import (
	"bytes"
	"testing"

	"github.com/rtcweb/webrtc/pkg/media/oggreader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRejectsEmptyPacket(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf, 1)
	assert.Error(t, w.WritePacket(nil, 0))
}

func TestRoundTripThroughReader(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf, 42)

	opusSilence := []byte{0xF8, 0xFF, 0xFE} // TOC config 31 -> CELT FB 20ms
	require.NoError(t, w.WritePacket(opusSilence, 960))
	require.NoError(t, w.WritePacket(opusSilence, 1920))
	require.NoError(t, w.Close())

	r := oggreader.New(&buf)
	pkt, durMs, err := r.ReadPacket()
	require.NoError(t, err)
	assert.Equal(t, opusSilence, pkt)
	assert.Equal(t, 20, durMs)

	pkt, _, err = r.ReadPacket()
	require.NoError(t, err)
	assert.Equal(t, opusSilence, pkt)
}

func TestFirstPageHasBOSFlag(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf, 1)
	require.NoError(t, w.WritePacket([]byte{0x00}, 0))

	data := buf.Bytes()
	require.GreaterOrEqual(t, len(data), 6)
	assert.NotZero(t, data[5]&headerTypeBOS)
}

package codecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVP8PayloadFragmentsWithStartBit(t *testing.T) {
	p := &VP8Payloader{}
	frame := make([]byte, 10)
	for i := range frame {
		frame[i] = byte(i)
	}

	payloads := p.Payload(5, frame) // 4 data bytes/chunk + 1 descriptor byte
	require.Len(t, payloads, 3)
	assert.EqualValues(t, 0x10, payloads[0][0]&0x10) // S bit on first
	assert.EqualValues(t, 0x00, payloads[1][0]&0x10) // not on subsequent
}

func TestVP8DepayloadStripsDescriptor(t *testing.T) {
	d := &VP8Depayloader{}
	out, err := d.Unmarshal([]byte{0x10, 0xAA, 0xBB})
	require.NoError(t, err)
	assert.Equal(t, []byte{0xAA, 0xBB}, out)
}

func TestH264PayloadSingleNALU(t *testing.T) {
	p := &H264Payloader{}
	nalu := []byte{0x67, 0x01, 0x02, 0x03}
	frame := appendLengthPrefixed(nil, nalu)

	payloads := p.Payload(1500, frame)
	require.Len(t, payloads, 1)
	assert.Equal(t, nalu, payloads[0])
}

func TestH264PayloadFUAFragmentsAndReassembles(t *testing.T) {
	p := &H264Payloader{}
	nalu := make([]byte, 100)
	nalu[0] = 0x65 // IDR slice
	for i := 1; i < len(nalu); i++ {
		nalu[i] = byte(i)
	}
	frame := appendLengthPrefixed(nil, nalu)

	payloads := p.Payload(30, frame)
	require.Greater(t, len(payloads), 1)
	assert.EqualValues(t, naluTypeFUA, payloads[0][0]&naluTypeMask)
	assert.NotZero(t, payloads[0][1]&0x80, "start bit set on first fragment")
	assert.NotZero(t, payloads[len(payloads)-1][1]&0x40, "end bit set on last fragment")

	d := &H264Depayloader{}
	var out []byte
	for _, pl := range payloads {
		frame, err := d.Unmarshal(pl)
		require.NoError(t, err)
		if frame != nil {
			out = frame
		}
	}
	assert.Equal(t, frame, out)
}

func TestH264DepayloadRejectsStartAndEndTogether(t *testing.T) {
	d := &H264Depayloader{}
	_, err := d.Unmarshal([]byte{0x3C, 0xC5, 0x01})
	assert.ErrorIs(t, err, errFUBothBits)
}

func TestOpusIdentity(t *testing.T) {
	p := &OpusPayloader{}
	d := &OpusDepayloader{}
	frame := []byte{1, 2, 3, 4}

	payloads := p.Payload(1500, frame)
	require.Len(t, payloads, 1)

	out, err := d.Unmarshal(payloads[0])
	require.NoError(t, err)
	assert.Equal(t, frame, out)
}

func TestTelephoneEventRequiresMarkerAndAdvancingTimestamp(t *testing.T) {
	d := &TelephoneEventDepayloader{}
	payload := []byte{5, 0x8A, 0x00, 0xF0} // event=5, E=1, volume=10, duration=240

	evt, err := d.Unmarshal(payload, false, 1000)
	require.NoError(t, err)
	assert.Nil(t, evt, "no marker: no event")

	evt, err = d.Unmarshal(payload, true, 1000)
	require.NoError(t, err)
	require.NotNil(t, evt)
	assert.Equal(t, byte('5'), evt.Digit)
	assert.True(t, evt.EndOfEvent)

	evt, err = d.Unmarshal(payload, true, 1000) // same timestamp: suppressed
	require.NoError(t, err)
	assert.Nil(t, evt)

	evt, err = d.Unmarshal(payload, true, 1001)
	require.NoError(t, err)
	assert.NotNil(t, evt)
}

func TestTelephoneEventDigitMapping(t *testing.T) {
	assert.Equal(t, byte('*'), TelephoneEventDigits[10])
	assert.Equal(t, byte('#'), TelephoneEventDigits[11])
	assert.Equal(t, byte('D'), TelephoneEventDigits[15])
}

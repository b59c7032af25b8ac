package dcep

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMessageRoundTrip(t *testing.T) {
	cases := []OpenMessage{
		{Label: "chat", Protocol: "", Priority: 0, Reliability: ReliabilityReliable},
		{Label: "file", Protocol: "binary", Priority: 128, Unordered: true, Reliability: ReliabilityReliable},
		{Label: "lossy", Protocol: "p", Priority: 256, Reliability: ReliabilityRexmit, ReliabilityParameter: 5},
		{Label: "timed", Protocol: "", Priority: 0, Unordered: true, Reliability: ReliabilityTimed, ReliabilityParameter: 3000},
		{Label: "", Protocol: ""},
	}

	for _, want := range cases {
		encoded := want.Marshal()
		got, err := UnmarshalOpen(encoded)
		require.NoError(t, err)
		assert.Equal(t, want, got)

		decoded, err := Unmarshal(encoded)
		require.NoError(t, err)
		assert.Equal(t, want, decoded)
	}
}

func TestAckMessageRoundTrip(t *testing.T) {
	want := AckMessage{}
	encoded := want.Marshal()
	require.Equal(t, []byte{0x02}, encoded)

	got, err := UnmarshalAck(encoded)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	decoded, err := Unmarshal(encoded)
	require.NoError(t, err)
	assert.Equal(t, want, decoded)
}

func TestAckMessageToleratesPadding(t *testing.T) {
	for pad := 0; pad <= 3; pad++ {
		b := append([]byte{0x02}, make([]byte, pad)...)
		got, err := UnmarshalAck(b)
		require.NoError(t, err)
		assert.Equal(t, AckMessage{}, got)
	}

	_, err := UnmarshalAck([]byte{0x02, 0, 0, 0, 0})
	assert.Error(t, err)
}

func TestUnmarshalOpenChannelTypeEncoding(t *testing.T) {
	m := OpenMessage{Unordered: true, Reliability: ReliabilityRexmit, ReliabilityParameter: 2, Label: "x"}
	encoded := m.Marshal()
	assert.Equal(t, byte(0x03), encoded[0]) // message type
	assert.Equal(t, byte(0x80|0x01), encoded[1])
}

func TestMarshalRejectsUnknownType(t *testing.T) {
	_, err := Marshal("not a dcep message")
	assert.ErrorIs(t, err, ErrUnknownMessageType)
}

func TestUnmarshalRejectsShortBuffer(t *testing.T) {
	_, err := Unmarshal(nil)
	assert.ErrorIs(t, err, ErrShortBuffer)

	_, err = Unmarshal([]byte{messageTypeOpen, 0, 0})
	assert.ErrorIs(t, err, ErrShortBuffer)
}

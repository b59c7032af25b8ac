package nack

import (
	"testing"

	"github.com/pion/rtp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratorMarksGapLost(t *testing.T) {
	g := NewGenerator(1, 2)

	g.OnPacket(10)
	g.OnPacket(13) // 11, 12 lost

	fb := g.GetFeedback()
	require.NotNil(t, fb)
	assert.EqualValues(t, 1, fb.SenderSSRC)
	assert.EqualValues(t, 2, fb.MediaSSRC)

	var got []uint16
	for _, np := range fb.Nacks {
		got = append(got, np.PacketList()...)
	}
	assert.ElementsMatch(t, []uint16{11, 12}, got)
}

func TestGeneratorClearsOnLateArrival(t *testing.T) {
	g := NewGenerator(1, 2)
	g.OnPacket(10)
	g.OnPacket(13)
	g.OnPacket(11) // arrives late: no longer lost

	fb := g.GetFeedback()
	require.NotNil(t, fb)
	var got []uint16
	for _, np := range fb.Nacks {
		got = append(got, np.PacketList()...)
	}
	assert.ElementsMatch(t, []uint16{12}, got)
}

func TestGeneratorGivesUpAfterMaxNACK(t *testing.T) {
	g := NewGenerator(1, 2)
	g.OnPacket(10)
	g.OnPacket(12) // 11 lost

	for i := 0; i < MaxNACK; i++ {
		fb := g.GetFeedback()
		require.NotNil(t, fb)
	}
	assert.Nil(t, g.GetFeedback())
}

func TestGeneratorNoLossReturnsNil(t *testing.T) {
	g := NewGenerator(1, 2)
	g.OnPacket(10)
	g.OnPacket(11)
	assert.Nil(t, g.GetFeedback())
}

func TestResponderRetransmitsCachedPacket(t *testing.T) {
	r := NewResponder(0xAAAA, 99)
	r.Record(&rtp.Packet{Header: rtp.Header{SequenceNumber: 5, Timestamp: 1000, PayloadType: 96}, Payload: []byte{0xDE, 0xAD}})

	out := r.Respond([]uint16{5})
	require.Len(t, out, 1)
	assert.EqualValues(t, 0xAAAA, out[0].SSRC)
	assert.EqualValues(t, 99, out[0].PayloadType)
	assert.EqualValues(t, 0, out[0].SequenceNumber)
	assert.Equal(t, []byte{0x00, 0x05, 0xDE, 0xAD}, out[0].Payload)
}

func TestResponderSkipsEvictedPacket(t *testing.T) {
	r := NewResponder(1, 99)
	r.Record(&rtp.Packet{Header: rtp.Header{SequenceNumber: 5}})
	// Overwrite the same ring slot with a different SSN (5+RingSize).
	r.Record(&rtp.Packet{Header: rtp.Header{SequenceNumber: 5 + RingSize}})

	out := r.Respond([]uint16{5})
	assert.Len(t, out, 0)
}

func TestResponderWithRingSizeEvictsAtOverriddenBoundary(t *testing.T) {
	r := NewResponderWithRingSize(1, 99, 4)
	r.Record(&rtp.Packet{Header: rtp.Header{SequenceNumber: 5}})
	// Same overridden-size ring slot (5+4), smaller than the default RingSize.
	r.Record(&rtp.Packet{Header: rtp.Header{SequenceNumber: 9}})

	out := r.Respond([]uint16{5})
	assert.Len(t, out, 0)
}

func TestGeneratorWithMaxNACKGivesUpEarlier(t *testing.T) {
	g := NewGeneratorWithMaxNACK(1, 2, 1)
	g.OnPacket(10)
	g.OnPacket(12) // 11 lost

	require.NotNil(t, g.GetFeedback())
	assert.Nil(t, g.GetFeedback())
}

func TestResponderSeqIncreasesMonotonically(t *testing.T) {
	r := NewResponder(1, 99)
	r.Record(&rtp.Packet{Header: rtp.Header{SequenceNumber: 1}})
	r.Record(&rtp.Packet{Header: rtp.Header{SequenceNumber: 2}})

	out := r.Respond([]uint16{1, 2})
	require.Len(t, out, 2)
	assert.EqualValues(t, 0, out[0].SequenceNumber)
	assert.EqualValues(t, 1, out[1].SequenceNumber)
}

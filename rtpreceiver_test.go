package webrtc

import (
	"testing"
	"time"

	"github.com/pion/rtcp"
	"github.com/pion/rtp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDepayloader struct{}

func (fakeDepayloader) Unmarshal(payload []byte) ([]byte, error) { return payload, nil }

func TestOnRTPAudioDeliversImmediately(t *testing.T) {
	r := NewRTPReceiver(RTPCodecTypeAudio, 1)
	r.setDepayloader(fakeDepayloader{})

	var got [][]byte
	r.onPacket = func(payload []byte, pkt *rtp.Packet) { got = append(got, payload) }

	r.OnRTP(&rtp.Packet{Header: rtp.Header{SSRC: 42, SequenceNumber: 1}, Payload: []byte{1}}, 48000, time.Now())
	r.OnRTP(&rtp.Packet{Header: rtp.Header{SSRC: 42, SequenceNumber: 2}, Payload: []byte{2}}, 48000, time.Now())

	require.Len(t, got, 2)
	assert.Equal(t, []byte{1}, got[0])
	assert.Equal(t, []byte{2}, got[1])
}

func TestOnRTPVideoBuffersThroughJitterBuffer(t *testing.T) {
	r := NewRTPReceiver(RTPCodecTypeVideo, 1)
	r.setDepayloader(fakeDepayloader{})

	var got []uint16
	r.onPacket = func(payload []byte, pkt *rtp.Packet) { got = append(got, pkt.SequenceNumber) }

	// Out-of-order arrival during the initial wait window: nothing is
	// emitted until the timer fires.
	r.OnRTP(&rtp.Packet{Header: rtp.Header{SSRC: 7, SequenceNumber: 2}}, 90000, time.Now())
	r.OnRTP(&rtp.Packet{Header: rtp.Header{SSRC: 7, SequenceNumber: 1}}, 90000, time.Now())
	assert.Empty(t, got)

	ready := r.drainTimer(7)
	for _, p := range ready {
		media, _ := fakeDepayloader{}.Unmarshal(p.Payload)
		_ = media
		got = append(got, p.SequenceNumber)
	}
	require.Len(t, got, 2)
	assert.Equal(t, uint16(1), got[0])
	assert.Equal(t, uint16(2), got[1])
}

func TestFeedbackEmitsReceiverReportAndNack(t *testing.T) {
	r := NewRTPReceiver(RTPCodecTypeAudio, 1)

	r.OnRTP(&rtp.Packet{Header: rtp.Header{SSRC: 9, SequenceNumber: 1}}, 8000, time.Now())
	r.OnRTP(&rtp.Packet{Header: rtp.Header{SSRC: 9, SequenceNumber: 5}}, 8000, time.Now())

	pkts := r.Feedback(time.Now())

	var sawRR, sawNack bool
	for _, p := range pkts {
		switch v := p.(type) {
		case *rtcp.ReceiverReport:
			sawRR = true
			assert.EqualValues(t, 9, v.Reports[0].SSRC)
		case *rtcp.TransportLayerNack:
			sawNack = true
		}
	}
	assert.True(t, sawRR)
	assert.True(t, sawNack)
}

func TestHandleSenderReportUpdatesKnownSSRCOnly(t *testing.T) {
	r := NewRTPReceiver(RTPCodecTypeAudio, 1)
	r.OnRTP(&rtp.Packet{Header: rtp.Header{SSRC: 3, SequenceNumber: 1}}, 8000, time.Now())

	// Unknown SSRC is a no-op, not a panic.
	r.HandleSenderReport(&rtcp.SenderReport{SSRC: 404}, time.Now())
	r.HandleSenderReport(&rtcp.SenderReport{SSRC: 3, NTPTime: 123}, time.Now())
}

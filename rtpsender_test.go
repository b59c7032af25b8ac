package webrtc

import (
	"testing"

	"github.com/pion/rtcp"
	"github.com/pion/rtp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRTPWriter struct {
	packets []*rtp.Packet
}

func (w *fakeRTPWriter) WriteRTP(pkt *rtp.Packet) error {
	cp := *pkt
	w.packets = append(w.packets, &cp)
	return nil
}

func TestSendRTPStampsSSRCAndIncrementsSequence(t *testing.T) {
	track := NewTrackLocalStaticRTP(RTPCodecCapability{MimeType: "video/VP8", ClockRate: 90000}, "video0", "stream0")
	writer := &fakeRTPWriter{}

	sender, err := NewRTPSender(track, writer)
	require.NoError(t, err)
	require.NoError(t, sender.bind([]RTPCodecParameters{
		{RTPCodecCapability: RTPCodecCapability{MimeType: "video/VP8", ClockRate: 90000}, PayloadType: 96},
	}, 0, 0))

	require.NoError(t, sender.SendRTP([]byte{1, 2, 3}, false, 1000))
	require.NoError(t, sender.SendRTP([]byte{4, 5, 6}, true, 1000))

	require.Len(t, writer.packets, 2)
	assert.EqualValues(t, sender.SSRC(), writer.packets[0].SSRC)
	assert.EqualValues(t, 0, writer.packets[0].SequenceNumber)
	assert.EqualValues(t, 1, writer.packets[1].SequenceNumber)
	assert.True(t, writer.packets[1].Marker)
}

func TestReplaceTrackRejectsKindMismatch(t *testing.T) {
	video := NewTrackLocalStaticRTP(RTPCodecCapability{MimeType: "video/VP8", ClockRate: 90000}, "v", "s")
	audio := NewTrackLocalStaticRTP(RTPCodecCapability{MimeType: "audio/opus", ClockRate: 48000, Channels: 2}, "a", "s")

	sender, err := NewRTPSender(video, &fakeRTPWriter{})
	require.NoError(t, err)

	err = sender.ReplaceTrack(audio)
	assert.ErrorIs(t, err, errRTPSenderTrackKindMismatch)
}

func TestHandleRTCPRetransmitsOnNack(t *testing.T) {
	track := NewTrackLocalStaticRTP(RTPCodecCapability{MimeType: "video/VP8", ClockRate: 90000}, "video0", "stream0")
	writer := &fakeRTPWriter{}

	sender, err := NewRTPSender(track, writer)
	require.NoError(t, err)
	require.NoError(t, sender.bind([]RTPCodecParameters{
		{RTPCodecCapability: RTPCodecCapability{MimeType: "video/VP8", ClockRate: 90000}, PayloadType: 96},
	}, 97, 0))
	require.NotZero(t, sender.RTXSSRC())

	require.NoError(t, sender.SendRTP([]byte{9, 9}, true, 1000))
	lostSeq := writer.packets[0].SequenceNumber

	err = sender.HandleRTCP([]rtcp.Packet{&rtcp.TransportLayerNack{
		SenderSSRC: 1,
		MediaSSRC:  uint32(sender.SSRC()),
		Nacks:      rtcp.NackPairsFromSequenceNumbers([]uint16{lostSeq}),
	}})
	require.NoError(t, err)

	require.Len(t, writer.packets, 2)
	rtxPkt := writer.packets[1]
	assert.EqualValues(t, sender.RTXSSRC(), rtxPkt.SSRC)
	assert.EqualValues(t, 97, rtxPkt.PayloadType)
}

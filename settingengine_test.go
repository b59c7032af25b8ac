package webrtc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingEngineZeroValueLeavesPackageDefaults(t *testing.T) {
	var settings SettingEngine
	assert.Zero(t, settings.nackMaxCount)
	assert.Zero(t, settings.rtxRingSize)
	assert.Zero(t, settings.jitterBufferLatency)
}

func TestSettingEngineOverridesReachRTPSenderRing(t *testing.T) {
	var settings SettingEngine
	settings.SetRTXRingSize(4)

	track := NewTrackLocalStaticRTP(RTPCodecCapability{MimeType: "video/VP8", ClockRate: 90000}, "video0", "stream0")
	sender, err := NewRTPSender(track, &fakeRTPWriter{})
	require.NoError(t, err)
	sender.applySettings(settings)
	assert.Equal(t, 4, sender.rtxRingSize)

	require.NoError(t, sender.bind([]RTPCodecParameters{
		{RTPCodecCapability: RTPCodecCapability{MimeType: "video/VP8", ClockRate: 90000}, PayloadType: 96},
	}, 97, 0))

	require.NotNil(t, sender.rtx)
}

func TestSettingEngineOverridesReachRTPReceiverJitterLatency(t *testing.T) {
	var settings SettingEngine
	settings.SetJitterBufferLatency(25 * time.Millisecond)
	settings.SetNACKMaxCount(7)

	r := NewRTPReceiver(RTPCodecTypeVideo, 1)
	r.applySettings(settings)

	assert.Equal(t, 25*time.Millisecond, r.jitterLatency)
	assert.EqualValues(t, 7, r.nackMaxCount)
}

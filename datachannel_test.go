package webrtc

import (
	"testing"

	"github.com/pion/datachannel"
	"github.com/stretchr/testify/assert"

	"github.com/rtcweb/webrtc/internal/dcep"
)

func TestDataChannelInitReliabilityDefaultsToReliable(t *testing.T) {
	reliability, param := DataChannelInit{}.reliability()
	assert.Equal(t, dcep.ReliabilityReliable, reliability)
	assert.Zero(t, param)
}

func TestDataChannelInitReliabilityPrefersMaxRetransmits(t *testing.T) {
	n := uint16(5)
	reliability, param := DataChannelInit{MaxRetransmits: &n}.reliability()
	assert.Equal(t, dcep.ReliabilityRexmit, reliability)
	assert.EqualValues(t, 5, param)
}

func TestDataChannelInitReliabilityTimed(t *testing.T) {
	n := uint16(3000)
	reliability, param := DataChannelInit{MaxPacketLifeTime: &n}.reliability()
	assert.Equal(t, dcep.ReliabilityTimed, reliability)
	assert.EqualValues(t, 3000, param)
}

func TestChannelTypeForOrderedReliable(t *testing.T) {
	assert.Equal(t, datachannel.ChannelTypeReliable, channelTypeFor(DataChannelInit{}))
}

func TestChannelTypeForUnorderedReliable(t *testing.T) {
	assert.Equal(t, datachannel.ChannelTypeReliableUnordered, channelTypeFor(DataChannelInit{Unordered: true}))
}

func TestChannelTypeForPartialReliableRexmit(t *testing.T) {
	n := uint16(2)
	assert.Equal(t, datachannel.ChannelTypePartialReliableRexmit, channelTypeFor(DataChannelInit{MaxRetransmits: &n}))
	assert.Equal(t, datachannel.ChannelTypePartialReliableRexmitUnordered,
		channelTypeFor(DataChannelInit{MaxRetransmits: &n, Unordered: true}))
}

func TestChannelTypeForPartialReliableTimed(t *testing.T) {
	n := uint16(1500)
	assert.Equal(t, datachannel.ChannelTypePartialReliableTimed, channelTypeFor(DataChannelInit{MaxPacketLifeTime: &n}))
	assert.Equal(t, datachannel.ChannelTypePartialReliableTimedUnordered,
		channelTypeFor(DataChannelInit{MaxPacketLifeTime: &n, Unordered: true}))
}

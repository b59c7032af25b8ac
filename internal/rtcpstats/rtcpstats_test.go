package rtcpstats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSenderRecorderCounts(t *testing.T) {
	s := NewSenderRecorder(1234, 90000)
	base := time.Unix(1_700_000_000, 0)

	s.OnPacketSent(0, 100, base)
	s.OnPacketSent(3000, 100, base.Add(time.Second/30))

	rep := s.Report(base.Add(time.Second))
	assert.EqualValues(t, 1234, rep.SSRC)
	assert.EqualValues(t, 2, rep.PacketCount)
	assert.EqualValues(t, 200, rep.OctetCount)
	// One second after the first packet, RTP timestamp should have
	// advanced by approximately one clock-rate's worth of ticks.
	assert.InDelta(t, 90000, rep.RTPTime, 10)
}

func TestReceiverRecorderDetectsLoss(t *testing.T) {
	r := NewReceiverRecorder(1, 2, 90000)
	base := time.Unix(1_700_000_000, 0)

	r.OnPacketReceived(100, 0, base)
	r.OnPacketReceived(103, 3000, base.Add(100*time.Millisecond)) // 101, 102 lost

	rep := r.Report(base.Add(200 * time.Millisecond))
	assert.EqualValues(t, 2, rep.SSRC)
	assert.EqualValues(t, 2, rep.TotalLost)
}

func TestReceiverRecorderNoLoss(t *testing.T) {
	r := NewReceiverRecorder(1, 2, 90000)
	base := time.Unix(1_700_000_000, 0)
	r.OnPacketReceived(1, 0, base)
	r.OnPacketReceived(2, 1, base.Add(time.Millisecond))
	r.OnPacketReceived(3, 2, base.Add(2*time.Millisecond))

	rep := r.Report(base.Add(time.Second))
	assert.EqualValues(t, 0, rep.TotalLost)
	assert.EqualValues(t, 0, rep.FractionLost)
}

func TestReceiverRecorderLastSR(t *testing.T) {
	r := NewReceiverRecorder(1, 2, 90000)
	now := time.Unix(1_700_000_000, 0)
	r.OnSenderReport(toNTP(now), now)

	rep := r.Report(now.Add(2 * time.Second))
	assert.NotZero(t, rep.LastSenderReport)
	assert.InDelta(t, 2*65536, rep.Delay, 1000)
}

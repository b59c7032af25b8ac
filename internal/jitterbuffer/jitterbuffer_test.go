package jitterbuffer

import (
	"testing"
	"time"

	"github.com/pion/rtp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pkt(seq uint16) *rtp.Packet {
	return &rtp.Packet{Header: rtp.Header{SequenceNumber: seq}}
}

func seqs(pkts []*rtp.Packet) []uint16 {
	out := make([]uint16, len(pkts))
	for i, p := range pkts {
		out[i] = p.SequenceNumber
	}
	return out
}

// Scenario 5 (spec §8): insert SSNs 50, 52, 51 (latency=10ms); after the
// third insert the buffer emits [50,51,52] in one burst.
func TestJitterBufferInitialBurst(t *testing.T) {
	jb := New(10*time.Millisecond, nil)

	require.Nil(t, jb.Push(pkt(50)))
	require.Nil(t, jb.Push(pkt(52)))
	require.Nil(t, jb.Push(pkt(51)))

	drained := jb.TimerFired()
	assert.Equal(t, []uint16{50, 51, 52}, seqs(drained))
	assert.EqualValues(t, 52, jb.FlushIndex())
}

func TestJitterBufferGapTimeout(t *testing.T) {
	jb := New(10*time.Millisecond, nil)
	require.Nil(t, jb.Push(pkt(10)))
	require.Equal(t, []uint16{10}, seqs(jb.TimerFired())) // initial burst of just 10

	// 11 missing; 12 arrives -> gap, timer armed.
	require.Nil(t, jb.Push(pkt(12)))
	assert.Equal(t, StateTimerSet, jb.State())

	// Gap timer fires before 11 ever arrives: flush_index advances past
	// the gap and 12 is emitted.
	drained := jb.TimerFired()
	assert.Equal(t, []uint16{12}, seqs(drained))
}

func TestJitterBufferPlugsGapImmediately(t *testing.T) {
	jb := New(10*time.Millisecond, nil)
	require.Nil(t, jb.Push(pkt(10)))
	require.Equal(t, []uint16{10}, seqs(jb.TimerFired())) // establishes flush_index=10

	require.Nil(t, jb.Push(pkt(12))) // gap at 11
	drained := jb.Push(pkt(11))      // plugs it immediately
	assert.Equal(t, []uint16{11, 12}, seqs(drained))
}

func TestJitterBufferDropsOld(t *testing.T) {
	jb := New(10*time.Millisecond, nil)
	require.Nil(t, jb.Push(pkt(10)))
	require.Equal(t, []uint16{10}, seqs(jb.TimerFired()))

	require.Nil(t, jb.Push(pkt(5))) // older than flush_index: dropped silently
	assert.EqualValues(t, 10, jb.FlushIndex())
}

func TestJitterBufferFlush(t *testing.T) {
	jb := New(10*time.Millisecond, nil)
	jb.Push(pkt(1))
	jb.Push(pkt(3))
	drained := jb.Flush()
	assert.Equal(t, []uint16{1, 3}, seqs(drained))
	assert.EqualValues(t, -1, jb.FlushIndex())
	assert.Equal(t, StateInitialWait, jb.State())
}

func TestExtendSequenceWrap(t *testing.T) {
	// Forward wrap: highest is near 65535, new seq wraps to near 0.
	idx := extend(65530, true, 3)
	assert.EqualValues(t, 65539, idx)

	// Backward wrap: highest just wrapped, an old high packet arrives late.
	idx = extend(65539, true, 65530)
	assert.EqualValues(t, 65530, idx)
}

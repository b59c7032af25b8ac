// Package jitterbuffer implements the single-SSRC, video-centric jitter
// buffer of spec §4.3: reordering and loss compensation over RTP packets
// keyed by an extended (32-bit, wrap-aware) sequence number.
package jitterbuffer

import (
	"sync"
	"time"

	"github.com/pion/rtp"
)

// State is the jitter buffer's state machine position, per spec §4.3.
type State int

const (
	// StateInitialWait is the state from construction until the first
	// latency timer fires; every insert during this window simply
	// accumulates into the store without draining.
	StateInitialWait State = iota
	// StateTimerNotSet indicates no gap is currently being waited out.
	StateTimerNotSet
	// StateTimerSet indicates a gap timer is currently armed.
	StateTimerSet
)

// DefaultLatency is the default gap/initial-wait timer duration.
const DefaultLatency = 10 * time.Millisecond

// packetStore is a sparse ordered map by extended sequence number, per
// spec §3's PacketStore / §9's allocation note (a flat ring indexed by
// ssn mod N with a high-water mark is an equivalent, allocation-free
// alternative; the sparse map is used here for clarity).
type packetStore map[uint32]*rtp.Packet

// JitterBuffer reorders a single SSRC's inbound RTP stream and compensates
// for small bursts of loss/reordering by holding packets for up to
// latency before emitting a contiguous prefix, per spec §4.3.
type JitterBuffer struct {
	mu sync.Mutex

	latency time.Duration
	state   State

	store      packetStore
	flushIndex int64 // last emitted extended sequence number; -1 if nothing ever emitted

	highestIncoming     int64
	haveHighestIncoming bool

	timer *time.Timer

	// onTimer is invoked (lock released) whenever the armed timer fires; the
	// owner must call TimerFired to collect any packets that become
	// emittable as a result.
	onTimer func()
}

// New constructs a JitterBuffer with the given latency. A latency of 0 uses
// DefaultLatency. onTimer, if non-nil, is invoked whenever a timer fires;
// the caller should respond by invoking TimerFired.
func New(latency time.Duration, onTimer func()) *JitterBuffer {
	if latency <= 0 {
		latency = DefaultLatency
	}
	return &JitterBuffer{
		latency:    latency,
		state:      StateInitialWait,
		store:      make(packetStore),
		flushIndex: -1,
		onTimer:    onTimer,
	}
}

// extend converts a 16-bit sequence number to a monotonic extended 32-bit
// index relative to the last known highest incoming index, inferring a
// cycle increment/decrement when the signed 16-bit delta exceeds the
// wrap thresholds of spec §4.3.
func extend(highest int64, haveHighest bool, seq uint16) int64 {
	if !haveHighest {
		return int64(seq)
	}
	highCycle := highest &^ 0xFFFF
	highSeq := uint16(highest & 0xFFFF)
	delta := int32(seq) - int32(highSeq)
	switch {
	case delta < -0x7FFF:
		return highCycle + 0x10000 + int64(seq)
	case delta > 0x7FFF:
		return highCycle - 0x10000 + int64(seq)
	default:
		return highCycle + int64(seq)
	}
}

// Push inserts an inbound packet, returning any packets that become
// emittable as an immediate consequence (a newly-arrived packet plugging
// the gap right after flush_index), per spec §4.3. During the initial wait
// window every insert simply accumulates and returns nil; the first timer
// fire (TimerFired) is what drains the initial burst.
func (j *JitterBuffer) Push(pkt *rtp.Packet) []*rtp.Packet {
	j.mu.Lock()
	defer j.mu.Unlock()

	idx := extend(j.highestIncoming, j.haveHighestIncoming, pkt.SequenceNumber)
	if !j.haveHighestIncoming || idx > j.highestIncoming {
		j.highestIncoming = idx
		j.haveHighestIncoming = true
	}

	if j.state == StateInitialWait {
		j.store[uint32(idx)] = pkt
		if j.timer == nil {
			j.armTimer()
		}
		return nil
	}

	if idx <= j.flushIndex {
		return nil // older than flush_index: drop silently
	}

	j.store[uint32(idx)] = pkt

	if idx == j.flushIndex+1 {
		drained := j.drainContiguous()
		if len(j.store) > 0 && j.state != StateTimerSet {
			j.armTimer()
		}
		return drained
	}

	if j.state != StateTimerSet {
		j.armTimer()
	}
	return nil
}

// armTimer arms the gap/initial-wait timer. Caller must hold j.mu.
func (j *JitterBuffer) armTimer() {
	if j.state != StateInitialWait {
		j.state = StateTimerSet
	}
	if j.timer != nil {
		j.timer.Stop()
	}
	j.timer = time.AfterFunc(j.latency, func() {
		if j.onTimer != nil {
			j.onTimer()
		}
	})
}

// TimerFired must be called (outside any lock the caller holds) when the
// armed timer fires; it returns packets that become emittable.
func (j *JitterBuffer) TimerFired() []*rtp.Packet {
	j.mu.Lock()
	defer j.mu.Unlock()

	wasInitial := j.state == StateInitialWait
	j.timer = nil

	if wasInitial {
		j.state = StateTimerNotSet
		if oldest, ok := j.minStored(); ok {
			j.flushIndex = oldest - 1
		}
		drained := j.drainContiguous()
		if len(j.store) > 0 {
			j.armTimer()
		}
		return drained
	}

	j.state = StateTimerNotSet
	if len(j.store) == 0 {
		return nil
	}
	oldest, _ := j.minStored()
	j.flushIndex = oldest - 1
	drained := j.drainContiguous()
	if len(j.store) > 0 {
		j.armTimer()
	}
	return drained
}

func (j *JitterBuffer) minStored() (int64, bool) {
	found := false
	var min int64
	for idx := range j.store {
		ei := int64(idx)
		if !found || ei < min {
			min = ei
			found = true
		}
	}
	return min, found
}

// drainContiguous emits the contiguous prefix starting at flushIndex+1.
// Caller must hold j.mu.
func (j *JitterBuffer) drainContiguous() []*rtp.Packet {
	var out []*rtp.Packet
	for {
		next := uint32(j.flushIndex + 1)
		pkt, ok := j.store[next]
		if !ok {
			break
		}
		out = append(out, pkt)
		delete(j.store, next)
		j.flushIndex++
	}
	return out
}

// Flush drains everything currently buffered, in increasing extended-
// sequence order, and resets the store, per spec §4.3's flush operation.
func (j *JitterBuffer) Flush() []*rtp.Packet {
	j.mu.Lock()
	defer j.mu.Unlock()

	out := make([]*rtp.Packet, 0, len(j.store))
	for {
		idx, ok := j.minStored()
		if !ok {
			break
		}
		out = append(out, j.store[uint32(idx)])
		delete(j.store, uint32(idx))
	}
	if j.timer != nil {
		j.timer.Stop()
		j.timer = nil
	}
	j.store = make(packetStore)
	j.flushIndex = -1
	j.haveHighestIncoming = false
	j.state = StateInitialWait
	return out
}

// FlushIndex returns the current flush_index (last emitted extended
// sequence number, or -1 if nothing has been emitted yet).
func (j *JitterBuffer) FlushIndex() int64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.flushIndex
}

// State returns the buffer's current state.
func (j *JitterBuffer) State() State {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state
}

package mux

import (
	"testing"

	"github.com/pion/rtp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchByPayloadTypeOnCacheMiss(t *testing.T) {
	d := New(0)
	d.BindPayloadType(96, "0")

	mid, err := d.Match(&rtp.Header{SSRC: 1, PayloadType: 96, SequenceNumber: 10}, nil)
	require.NoError(t, err)
	assert.Equal(t, "0", mid)
}

func TestAmbiguousPayloadTypeNeverResolves(t *testing.T) {
	d := New(0)
	d.BindPayloadType(96, "0")
	d.BindPayloadType(96, "1")

	_, err := d.Match(&rtp.Header{SSRC: 1, PayloadType: 96}, nil)
	assert.ErrorIs(t, err, ErrUnmatched)
}

func TestSequenceRegressionNeverRebinds(t *testing.T) {
	d := New(1)
	hdr := &rtp.Header{SSRC: 1, SequenceNumber: 100}
	mid, err := d.Match(hdr, []byte("0"))
	require.NoError(t, err)
	assert.Equal(t, "0", mid)

	// Lower sequence number carrying a different MID must not rebind.
	old := &rtp.Header{SSRC: 1, SequenceNumber: 50}
	mid, err = d.Match(old, []byte("1"))
	require.NoError(t, err)
	assert.Equal(t, "0", mid)

	// A strictly greater sequence number with a different MID does rebind.
	newer := &rtp.Header{SSRC: 1, SequenceNumber: 101}
	mid, err = d.Match(newer, []byte("1"))
	require.NoError(t, err)
	assert.Equal(t, "1", mid)
}

func TestUnmatchedWhenNothingMatches(t *testing.T) {
	d := New(0)
	_, err := d.Match(&rtp.Header{SSRC: 1, PayloadType: 96}, nil)
	assert.ErrorIs(t, err, ErrUnmatched)
}

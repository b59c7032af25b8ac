package sdp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodecsEqualIgnoresCaseAndMatchesClockRate(t *testing.T) {
	a := Codec{MimeType: "audio/OPUS", ClockRate: 48000, Channels: 2}
	b := Codec{MimeType: "audio/opus", ClockRate: 48000, Channels: 2}
	assert.True(t, CodecsEqual(a, b))
}

func TestCodecsEqualRejectsChannelMismatch(t *testing.T) {
	a := Codec{MimeType: "audio/opus", ClockRate: 48000, Channels: 2}
	b := Codec{MimeType: "audio/opus", ClockRate: 48000, Channels: 1}
	assert.False(t, CodecsEqual(a, b))
}

func TestCodecsEqualH264RequiresMatchingProfileLevelID(t *testing.T) {
	a := Codec{MimeType: "video/H264", ClockRate: 90000, Fmtp: "level-asymmetry-allowed=1;packetization-mode=1;profile-level-id=42e01f"}
	b := Codec{MimeType: "video/H264", ClockRate: 90000, Fmtp: "profile-level-id=42e01f"}
	assert.True(t, CodecsEqual(a, b))

	c := Codec{MimeType: "video/H264", ClockRate: 90000, Fmtp: "profile-level-id=640032"}
	assert.False(t, CodecsEqual(a, c))
}

func TestCodecsEqualVP8IgnoresFmtp(t *testing.T) {
	a := Codec{MimeType: "video/VP8", ClockRate: 90000, Fmtp: "max-fr=30"}
	b := Codec{MimeType: "video/VP8", ClockRate: 90000, Fmtp: ""}
	assert.True(t, CodecsEqual(a, b))
}

func TestIntersectPreservesRemoteOrderAndPayloadTypes(t *testing.T) {
	local := []Codec{{PayloadType: 111, MimeType: "audio/opus", ClockRate: 48000, Channels: 2}}
	remote := []Codec{{PayloadType: 111, MimeType: "audio/opus", ClockRate: 48000, Channels: 2}}

	negotiated := Intersect(local, remote)
	require.Len(t, negotiated, 1)
	assert.EqualValues(t, 111, negotiated[0].PayloadType)
}

func TestBuildOfferSkipsStoppedTransceivers(t *testing.T) {
	transceivers := []TransceiverInfo{
		{Kind: "audio", MID: "0", Direction: DirectionSendrecv},
		{Kind: "video", MID: "1", Stopped: true},
	}
	sections := BuildOffer(transceivers, SessionParams{ICEUfrag: "u", ICEPwd: "p"})
	require.Len(t, sections, 1)
	assert.Equal(t, "0", sections[0].MID)
}

func TestBuildAnswerRejectsEmptyIntersection(t *testing.T) {
	offer := &Description{MediaSections: []MediaSection{
		{Kind: "video", MID: "0", Codecs: []Codec{{PayloadType: 96, MimeType: "video/VP8", ClockRate: 90000}}},
	}}
	transceivers := []TransceiverInfo{
		{Kind: "video", MID: "0", Codecs: []Codec{{PayloadType: 102, MimeType: "video/H264", ClockRate: 90000}}},
	}

	sections := BuildAnswer(offer, transceivers, SessionParams{})
	require.Len(t, sections, 1)
	assert.Empty(t, sections[0].Codecs)
}

func TestBuildAnswerNegotiatesDirection(t *testing.T) {
	offer := &Description{MediaSections: []MediaSection{
		{Kind: "audio", MID: "0", Direction: DirectionSendonly, Codecs: []Codec{{PayloadType: 111, MimeType: "audio/opus", ClockRate: 48000, Channels: 2}}},
	}}
	transceivers := []TransceiverInfo{
		{Kind: "audio", MID: "0", Direction: DirectionSendrecv, Codecs: []Codec{{PayloadType: 111, MimeType: "audio/opus", ClockRate: 48000, Channels: 2}}},
	}

	sections := BuildAnswer(offer, transceivers, SessionParams{})
	require.Len(t, sections, 1)
	// Remote is sendonly (it sends, doesn't receive); we can send and
	// receive, so the negotiated direction is recvonly from our side.
	assert.Equal(t, DirectionRecvonly, sections[0].Direction)
}

func TestRenderParseRoundTripPreservesRTCPFeedback(t *testing.T) {
	sections := BuildOffer([]TransceiverInfo{
		{Kind: "video", MID: "0", Direction: DirectionSendrecv, Codecs: []Codec{
			{PayloadType: 96, MimeType: "video/VP8", ClockRate: 90000, RTCPFeedback: []RTCPFeedback{
				{Type: "nack"},
				{Type: "nack", Parameter: "pli"},
				{Type: "goog-remb"},
			}},
		}},
	}, SessionParams{ICEUfrag: "ufrag", ICEPwd: "pwd"})

	text := Render(1, sections)
	require.Contains(t, text, "a=rtcp-fb:96 nack\r\n")
	require.Contains(t, text, "a=rtcp-fb:96 nack pli\r\n")
	require.Contains(t, text, "a=rtcp-fb:96 goog-remb\r\n")

	parsed, err := Parse(text)
	require.NoError(t, err)
	require.Len(t, parsed.MediaSections, 1)
	require.Len(t, parsed.MediaSections[0].Codecs, 1)
	assert.ElementsMatch(t, []RTCPFeedback{
		{Type: "nack"},
		{Type: "nack", Parameter: "pli"},
		{Type: "goog-remb"},
	}, parsed.MediaSections[0].Codecs[0].RTCPFeedback)
}

func TestRenderParseRoundTripPreservesSSRCGroupFID(t *testing.T) {
	sections := BuildOffer([]TransceiverInfo{
		{Kind: "video", MID: "0", Direction: DirectionSendrecv,
			Codecs:       []Codec{{PayloadType: 96, MimeType: "video/VP8", ClockRate: 90000}},
			SSRCs:        []uint32{1111, 2222},
			SSRCGroupFID: []uint32{1111, 2222},
		},
	}, SessionParams{ICEUfrag: "ufrag", ICEPwd: "pwd"})

	text := Render(1, sections)
	require.Contains(t, text, "a=ssrc-group:FID 1111 2222\r\n")

	parsed, err := Parse(text)
	require.NoError(t, err)
	require.Len(t, parsed.MediaSections, 1)
	assert.Equal(t, []uint32{1111, 2222}, parsed.MediaSections[0].SSRCGroupFID)
}

func TestParseRenderRoundTripPreservesMID(t *testing.T) {
	sections := BuildOffer([]TransceiverInfo{
		{Kind: "audio", MID: "0", Direction: DirectionSendrecv, Codecs: []Codec{{PayloadType: 111, MimeType: "audio/opus", ClockRate: 48000, Channels: 2}}},
	}, SessionParams{ICEUfrag: "ufrag", ICEPwd: "pwd", Fingerprint: "aa:bb"})

	text := Render(1, sections)
	require.NotEmpty(t, text)

	parsed, err := Parse(text)
	require.NoError(t, err)
	require.Len(t, parsed.MediaSections, 1)
	assert.Equal(t, "0", parsed.MediaSections[0].MID)
}

package sdp

import "strings"

// CodecsEqual implements the m-line codec matching rule of spec §4.1:
// MIME type case-insensitive, clock rate and (for audio) channel count
// equal, and fmtp equivalence per codec (H264 profile-level-id
// byte-equal; VP8 and Opus ignore fmtp).
func CodecsEqual(a, b Codec) bool {
	if !strings.EqualFold(a.MimeType, b.MimeType) {
		return false
	}
	if a.ClockRate != b.ClockRate {
		return false
	}
	if isAudioMime(a.MimeType) && a.Channels != b.Channels {
		return false
	}

	switch {
	case strings.EqualFold(a.MimeType, "video/h264"):
		return fmtpParam(a.Fmtp, "profile-level-id") == fmtpParam(b.Fmtp, "profile-level-id")
	default:
		return true
	}
}

func isAudioMime(mime string) bool {
	return strings.HasPrefix(strings.ToLower(mime), "audio/")
}

// fmtpParam extracts the value of key from a semicolon-separated fmtp
// string ("key=value;key2=value2").
func fmtpParam(fmtp, key string) string {
	for _, part := range strings.Split(fmtp, ";") {
		part = strings.TrimSpace(part)
		kv := strings.SplitN(part, "=", 2)
		if len(kv) == 2 && strings.EqualFold(strings.TrimSpace(kv[0]), key) {
			return strings.TrimSpace(kv[1])
		}
	}
	return ""
}

// Intersect returns the subset of remote whose codecs (by PayloadType)
// also match a codec in local per CodecsEqual, preserving remote's order
// (the answer's payload types MUST equal the offer's, per spec §4.1).
func Intersect(local, remote []Codec) []Codec {
	var out []Codec
	for _, r := range remote {
		for _, l := range local {
			if CodecsEqual(l, r) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

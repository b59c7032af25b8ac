package webrtc

// RTPHeaderExtensionCapability provides information about a header
// extension's URI, prior to negotiation of a concrete extension ID.
type RTPHeaderExtensionCapability struct {
	URI string
}

// SDES/MID header extension URIs used by the Session Description processor
// and the packet demultiplexer, per spec §4.1/§4.2.
const (
	sdesMidURI                  = "urn:ietf:params:rtp-hdrext:sdes:mid"
	sdesRTPStreamIDURI          = "urn:ietf:params:rtp-hdrext:sdes:rtp-stream-id"
	sdesRepairedRTPStreamIDURI  = "urn:ietf:params:rtp-hdrext:sdes:repaired-rtp-stream-id"
)

type headerExtension struct {
	uri              string
	id               int
	isAudio, isVideo bool
}

package webrtc

// SSRC is an RTP synchronization source identifier, a 32-bit sender identity
// inside an RTP session (GLOSSARY: SSRC).
type SSRC uint32

// PayloadTypeRTX is not a fixed value; RTX payload types are negotiated per
// m-line via the apt= fmtp parameter (spec §4.1). No sentinel is needed here;
// kept only as documentation anchor for readers grepping for "rtx".

package codecs

import "errors"

var (
	errShortPacket  = errors.New("codecs: payload too short")
	errFUBothBits   = errors.New("codecs: FU-A packet has both start and end bits set")
	errSTAPASize    = errors.New("codecs: STAP-A NALU size exceeds remaining payload")
)

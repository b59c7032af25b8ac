package webrtc

import (
	"github.com/pion/transport/v2/mux"
)

// iceMux demultiplexes one ICE candidate pair's datagram stream into a
// DTLS endpoint and SRTP/SRTCP endpoints by first-byte packet type (RFC
// 7983): DTLS, SRTP and SRTCP all share the single 5-tuple ICE connects,
// so the PeerConnection controller reads all three through the one
// underlying conn and routes by content rather than opening separate
// sockets.
type iceMux struct {
	m *mux.Mux

	dtls  *mux.Endpoint
	srtp  *mux.Endpoint
	srtcp *mux.Endpoint
}

// newICEMux wraps t's Send/OnData pair in a net.Conn adapter and splits
// it into DTLS/SRTP/SRTCP endpoints.
func newICEMux(t ICETransport) *iceMux {
	conn := newICEConnAdapter(t)
	m := mux.NewMux(mux.Config{Conn: conn, BufferSize: 1500})
	return &iceMux{
		m:     m,
		dtls:  m.NewEndpoint(mux.MatchDTLS),
		srtp:  m.NewEndpoint(mux.MatchSRTP),
		srtcp: m.NewEndpoint(mux.MatchSRTCP),
	}
}

func (x *iceMux) Close() error { return x.m.Close() }

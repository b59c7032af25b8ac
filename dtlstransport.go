package webrtc

import (
	"crypto/sha256"
	"crypto/tls"
	"net"
	"sync"
	"time"

	"github.com/pion/dtls/v2"
	"github.com/pion/transport/v2/packetio"
)

// mailboxBufferSize bounds every per-PeerConnection inbound packet queue
// (spec §5's bounded queue between an external transport and the
// PeerConnection actor), in bytes.
const mailboxBufferSize = 1 << 20

// DTLSRole selects which side drives the DTLS handshake, per spec §6's
// `start(role)` operation.
type DTLSRole int

const (
	DTLSRoleClient DTLSRole = iota + 1
	DTLSRoleServer
)

// DTLSTransportState mirrors the W3C RTCDtlsTransportState values.
type DTLSTransportState int

const (
	DTLSTransportStateNew DTLSTransportState = iota + 1
	DTLSTransportStateConnecting
	DTLSTransportStateConnected
	DTLSTransportStateClosed
	DTLSTransportStateFailed
)

// DTLSTransport is the §6 "DTLS transport (consumed)" contract: it runs
// the handshake over whatever ICE transport hands it raw bytes, and
// surfaces decrypted application data (SCTP) and the negotiated
// certificate fingerprint once connected.
type DTLSTransport interface {
	OnStateChange(func(DTLSTransportState))
	OnData(func([]byte))
	OnFingerprintReady(func(string))

	Start(role DTLSRole) error
	Send([]byte) error
	Close() error

	// ExportKeyingMaterial derives SRTP master keys/salts from the
	// completed handshake per RFC 5764's DTLS-SRTP extractor.
	ExportKeyingMaterial(length int) ([]byte, error)
}

// iceConnAdapter presents an ICETransport's Send/OnData pair as a
// net.Conn, the shape *dtls.Conn (and *sctp.Association below it) expect
// to be handed, per the teacher's layering of DTLS directly atop the ICE
// candidate pair's datagram conn. Inbound datagrams land in a
// packetio.Buffer bounded by mailboxBufferSize; a datagram that arrives
// while the buffer is full is dropped (the Write error is ignored).
type iceConnAdapter struct {
	ice ICETransport
	in  *packetio.Buffer
}

func newICEConnAdapter(t ICETransport) *iceConnAdapter {
	buf := packetio.NewBuffer()
	buf.SetLimitSize(mailboxBufferSize)
	a := &iceConnAdapter{ice: t, in: buf}
	t.OnData(func(b []byte) {
		_, _ = a.in.Write(b)
	})
	return a
}

func (a *iceConnAdapter) Read(p []byte) (int, error) {
	return a.in.Read(p)
}

func (a *iceConnAdapter) Write(p []byte) (int, error) {
	if err := a.ice.Send(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (a *iceConnAdapter) Close() error { return a.in.Close() }

// LocalAddr/RemoteAddr/SetDeadline family satisfy net.Conn, which
// *dtls.Conn requires of its underlying transport; ICE candidate pairs
// have no meaningful per-call deadline or addr beyond what the agent
// already tracks, so these are no-ops.
func (a *iceConnAdapter) LocalAddr() net.Addr  { return iceConnAddr{} }
func (a *iceConnAdapter) RemoteAddr() net.Addr { return iceConnAddr{} }

func (a *iceConnAdapter) SetDeadline(time.Time) error      { return nil }
func (a *iceConnAdapter) SetReadDeadline(time.Time) error  { return nil }
func (a *iceConnAdapter) SetWriteDeadline(time.Time) error { return nil }

type iceConnAddr struct{}

func (iceConnAddr) Network() string { return "ice" }
func (iceConnAddr) String() string  { return "ice" }

// pionDTLSTransport wraps a *dtls.Conn atop the datagram conn it is
// handed (an ICE candidate pair, demultiplexed from SRTP/SRTCP by
// iceMux), per the §6 DTLS contract.
type pionDTLSTransport struct {
	mu sync.Mutex

	netConn net.Conn
	config  *dtls.Config
	conn    *dtls.Conn

	onState       func(DTLSTransportState)
	onData        func([]byte)
	onFingerprint func(string)

	closed bool
}

// NewPionDTLSTransport constructs a DTLSTransport that will run its
// handshake over netConn once Start is called. netConn is ordinarily the
// DTLS endpoint of an iceMux, already demultiplexed from SRTP/SRTCP.
func NewPionDTLSTransport(netConn net.Conn, certificate tls.Certificate) DTLSTransport {
	return &pionDTLSTransport{
		netConn: netConn,
		config: &dtls.Config{
			Certificates:  []tls.Certificate{certificate},
			LoggerFactory: newZerologLoggerFactory(defaultLogger),
		},
	}
}

func (d *pionDTLSTransport) OnStateChange(f func(DTLSTransportState)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onState = f
}

func (d *pionDTLSTransport) OnData(f func([]byte)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onData = f
}

func (d *pionDTLSTransport) OnFingerprintReady(f func(string)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onFingerprint = f
}

// Start runs the DTLS handshake over the ICE transport's datagram
// stream, blocking until complete or failed, then starts a read loop
// feeding OnData.
func (d *pionDTLSTransport) Start(role DTLSRole) error {
	d.notify(DTLSTransportStateConnecting)

	var conn *dtls.Conn
	var err error
	if role == DTLSRoleClient {
		conn, err = dtls.Client(d.netConn, d.config)
	} else {
		conn, err = dtls.Server(d.netConn, d.config)
	}
	if err != nil {
		d.notify(DTLSTransportStateFailed)
		return err
	}

	d.mu.Lock()
	d.conn = conn
	d.mu.Unlock()

	d.notify(DTLSTransportStateConnected)
	if cb := d.fingerprintCallback(); cb != nil {
		if state, ok := conn.ConnectionState(); ok && len(state.PeerCertificates) > 0 {
			cb(fingerprintOf(state.PeerCertificates[0]))
		}
	}

	go d.readLoop(conn)
	return nil
}

func (d *pionDTLSTransport) fingerprintCallback() func(string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.onFingerprint
}

func (d *pionDTLSTransport) notify(s DTLSTransportState) {
	d.mu.Lock()
	cb := d.onState
	d.mu.Unlock()
	if cb != nil {
		cb(s)
	}
}

func (d *pionDTLSTransport) readLoop(conn *dtls.Conn) {
	buf := make([]byte, 1500)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			d.notify(DTLSTransportStateClosed)
			return
		}
		d.mu.Lock()
		cb := d.onData
		d.mu.Unlock()
		if cb != nil {
			cb(append([]byte(nil), buf[:n]...))
		}
	}
}

func (d *pionDTLSTransport) Send(b []byte) error {
	d.mu.Lock()
	conn := d.conn
	d.mu.Unlock()
	if conn == nil {
		return ErrConnectionClosed
	}
	_, err := conn.Write(b)
	return err
}

// ExportKeyingMaterial pulls the "EXTRACTOR-dtls_srtp" keying material the
// SRTP session's master keys/salts are sliced from, per RFC 5764 §4.2.
func (d *pionDTLSTransport) ExportKeyingMaterial(length int) ([]byte, error) {
	d.mu.Lock()
	conn := d.conn
	d.mu.Unlock()
	if conn == nil {
		return nil, ErrConnectionClosed
	}
	return conn.ExportKeyingMaterial(dtlsSRTPLabel, nil, length)
}

const dtlsSRTPLabel = "EXTRACTOR-dtls_srtp"

func (d *pionDTLSTransport) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	conn := d.conn
	d.mu.Unlock()

	if conn == nil {
		return nil
	}
	return conn.Close()
}

// fingerprintOf renders a certificate's SHA-256 fingerprint in the
// colon-separated hex form SDP's a=fingerprint attribute carries.
func fingerprintOf(certDER []byte) string {
	sum := sha256.Sum256(certDER)
	const hex = "0123456789ABCDEF"
	out := make([]byte, 0, len(sum)*3-1)
	for i, b := range sum {
		if i > 0 {
			out = append(out, ':')
		}
		out = append(out, hex[b>>4], hex[b&0xF])
	}
	return string(out)
}

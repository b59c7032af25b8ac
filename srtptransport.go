package webrtc

import (
	"sync"
	"time"

	"github.com/pion/rtcp"
	"github.com/pion/rtp"
	"github.com/pion/srtp/v2"
)

const (
	srtpMasterKeyLen  = 16 // SRTP_AES128_CM_HMAC_SHA1_80
	srtpMasterSaltLen = 14
)

// SRTPTransport wraps the SRTP/SRTCP sessions that encrypt and decrypt
// every media packet once DTLS-SRTP key export completes (RFC 5764):
// media and control travel on the wire ciphered, demultiplexed from DTLS
// by iceMux ahead of this transport, per spec §6.
type SRTPTransport struct {
	mu sync.Mutex

	rtpSession  *srtp.SessionSRTP
	rtcpSession *srtp.SessionSRTCP

	writeStream     *srtp.WriteStreamSRTP
	rtcpWriteStream *srtp.WriteStreamSRTCP

	onRTP  func(pkt *rtp.Packet, arrival time.Time)
	onRTCP func(pkts []rtcp.Packet)

	closed bool
}

// NewSRTPTransport derives SRTP/SRTCP master keys from dtls's exported
// keying material per RFC 5764 §4.2 and opens sessions over the given
// demultiplexed SRTP/SRTCP endpoint conns.
func NewSRTPTransport(dtls DTLSTransport, role DTLSRole, rtpConn, rtcpConn ioReadWriteCloser) (*SRTPTransport, error) {
	keys, err := deriveSRTPKeys(dtls, role)
	if err != nil {
		return nil, err
	}

	cfg := &srtp.Config{
		Keys:    keys,
		Profile: srtp.ProtectionProfileAes128CmHmacSha1_80,
	}

	rtpSession, err := srtp.NewSessionSRTP(rtpConn, cfg)
	if err != nil {
		return nil, err
	}
	rtcpSession, err := srtp.NewSessionSRTCP(rtcpConn, cfg)
	if err != nil {
		return nil, err
	}

	writeStream, err := rtpSession.OpenWriteStream()
	if err != nil {
		return nil, err
	}
	rtcpWriteStream, err := rtcpSession.OpenWriteStream()
	if err != nil {
		return nil, err
	}

	t := &SRTPTransport{
		rtpSession:      rtpSession,
		rtcpSession:     rtcpSession,
		writeStream:     writeStream,
		rtcpWriteStream: rtcpWriteStream,
	}
	go t.acceptRTPLoop()
	go t.acceptRTCPLoop()
	return t, nil
}

// ioReadWriteCloser is the minimal conn shape iceMux's endpoints and
// test fakes both satisfy.
type ioReadWriteCloser interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error
}

// deriveSRTPKeys splits the DTLS-SRTP extractor output into the
// client/server master key and salt, per RFC 5764 §4.2's fixed layout,
// then assigns local/remote by role.
func deriveSRTPKeys(dtls DTLSTransport, role DTLSRole) (srtp.SessionKeys, error) {
	material, err := dtls.ExportKeyingMaterial(2 * (srtpMasterKeyLen + srtpMasterSaltLen))
	if err != nil {
		return srtp.SessionKeys{}, err
	}

	offset := 0
	clientKey := material[offset : offset+srtpMasterKeyLen]
	offset += srtpMasterKeyLen
	serverKey := material[offset : offset+srtpMasterKeyLen]
	offset += srtpMasterKeyLen
	clientSalt := material[offset : offset+srtpMasterSaltLen]
	offset += srtpMasterSaltLen
	serverSalt := material[offset : offset+srtpMasterSaltLen]

	if role == DTLSRoleClient {
		return srtp.SessionKeys{
			LocalMasterKey:   clientKey,
			LocalMasterSalt:  clientSalt,
			RemoteMasterKey:  serverKey,
			RemoteMasterSalt: serverSalt,
		}, nil
	}
	return srtp.SessionKeys{
		LocalMasterKey:   serverKey,
		LocalMasterSalt:  serverSalt,
		RemoteMasterKey:  clientKey,
		RemoteMasterSalt: clientSalt,
	}, nil
}

// OnRTP registers the callback fired for every decrypted inbound RTP
// packet, across every remote SSRC this session accepts a read stream for.
func (t *SRTPTransport) OnRTP(f func(pkt *rtp.Packet, arrival time.Time)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onRTP = f
}

// OnRTCP registers the callback fired for every decrypted inbound RTCP
// compound packet.
func (t *SRTPTransport) OnRTCP(f func(pkts []rtcp.Packet)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onRTCP = f
}

func (t *SRTPTransport) acceptRTPLoop() {
	for {
		readStream, _, err := t.rtpSession.AcceptStream()
		if err != nil {
			return
		}
		go t.readRTP(readStream)
	}
}

func (t *SRTPTransport) readRTP(stream *srtp.ReadStreamSRTP) {
	buf := make([]byte, 1500)
	for {
		n, err := stream.Read(buf)
		if err != nil {
			return
		}
		pkt := &rtp.Packet{}
		if err := pkt.Unmarshal(buf[:n]); err != nil {
			continue // ParseError: silently dropped, per spec §7
		}

		t.mu.Lock()
		cb := t.onRTP
		t.mu.Unlock()
		if cb != nil {
			cb(pkt, time.Now())
		}
	}
}

func (t *SRTPTransport) acceptRTCPLoop() {
	for {
		readStream, _, err := t.rtcpSession.AcceptStream()
		if err != nil {
			return
		}
		go t.readRTCP(readStream)
	}
}

func (t *SRTPTransport) readRTCP(stream *srtp.ReadStreamSRTCP) {
	buf := make([]byte, 1500)
	for {
		n, err := stream.Read(buf)
		if err != nil {
			return
		}
		pkts, err := rtcp.Unmarshal(buf[:n])
		if err != nil {
			continue
		}

		t.mu.Lock()
		cb := t.onRTCP
		t.mu.Unlock()
		if cb != nil {
			cb(pkts)
		}
	}
}

// WriteRTP satisfies RTPSender's RTPWriter contract, encrypting pkt
// before it reaches the wire.
func (t *SRTPTransport) WriteRTP(pkt *rtp.Packet) error {
	_, err := t.writeStream.WriteRTP(&pkt.Header, pkt.Payload)
	return err
}

// WriteRTCP encrypts and sends an RTCP compound packet (receiver
// feedback, NACK, SR).
func (t *SRTPTransport) WriteRTCP(pkts []rtcp.Packet) error {
	data, err := rtcp.Marshal(pkts)
	if err != nil {
		return err
	}
	_, err = t.rtcpWriteStream.Write(data)
	return err
}

// Close tears down both SRTP sessions.
func (t *SRTPTransport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	t.mu.Unlock()

	rtpErr := t.rtpSession.Close()
	rtcpErr := t.rtcpSession.Close()
	if rtpErr != nil {
		return rtpErr
	}
	return rtcpErr
}

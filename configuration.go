package webrtc

import (
	"time"

	"github.com/rtcweb/webrtc/pkg/rtcerr"
)

// ICEServer describes a STUN/TURN server the ICE transport may use while
// gathering candidates. Mirrors the W3C RTCIceServer dictionary.
type ICEServer struct {
	URLs           []string
	Username       string
	Credential     string
	CredentialType ICECredentialType
}

func (s ICEServer) validate() error {
	if len(s.URLs) == 0 {
		return &rtcerr.InvalidAccessError{Err: errEmptyICEServerURLs}
	}
	return nil
}

// ICECredentialType indicates the type of credential used by a TURN server.
type ICECredentialType int

const (
	// ICECredentialTypePassword is the long-term TURN username/password
	// credential mechanism.
	ICECredentialTypePassword ICECredentialType = iota
	// ICECredentialTypeOauth is the OAuth-based TURN credential mechanism.
	ICECredentialTypeOauth
)

// ICETransportPolicy controls which ICE candidates are considered.
type ICETransportPolicy int

const (
	// ICETransportPolicyAll allows all candidates.
	ICETransportPolicyAll ICETransportPolicy = iota
	// ICETransportPolicyRelay only allows relay (TURN) candidates.
	ICETransportPolicyRelay
)

// BundlePolicy controls how many transports are negotiated for BUNDLE.
type BundlePolicy int

const (
	// BundlePolicyBalanced is the default trade-off bundle policy.
	BundlePolicyBalanced BundlePolicy = iota
	// BundlePolicyMaxCompat negotiates one transport per media type.
	BundlePolicyMaxCompat
	// BundlePolicyMaxBundle negotiates a single transport for everything.
	BundlePolicyMaxBundle
)

// RTCPMuxPolicy controls RTCP multiplexing.
type RTCPMuxPolicy int

const (
	// RTCPMuxPolicyNegotiate allows RTCP to use its own transport.
	RTCPMuxPolicyNegotiate RTCPMuxPolicy = iota
	// RTCPMuxPolicyRequire requires RTCP multiplexing on the RTP transport.
	RTCPMuxPolicyRequire
)

// Configuration collects the configurable parameters of a PeerConnection, as
// W3C RTCConfiguration. Carried unchanged across renegotiations except where
// SetConfiguration explicitly permits.
type Configuration struct {
	ICEServers           []ICEServer
	ICETransportPolicy   ICETransportPolicy
	BundlePolicy         BundlePolicy
	RTCPMuxPolicy        RTCPMuxPolicy
	PeerIdentity         string
	Certificates         []Certificate
	ICECandidatePoolSize uint8
}

// Certificate is an opaque DTLS certificate/key handle. The DTLS handshake
// itself is an external collaborator (spec §1); this module only tracks
// certificate identity/expiry for SetConfiguration's immutability checks.
type Certificate struct {
	expires     time.Time
	fingerprint string
}

// Expires returns the certificate's expiry time, or the zero Time if it
// never expires.
func (c Certificate) Expires() time.Time { return c.expires }

// Equals reports whether two certificates represent the same identity.
func (c Certificate) Equals(o Certificate) bool { return c.fingerprint == o.fingerprint }

// NewCertificate wraps a DTLS fingerprint (produced by the external DTLS
// transport) as a Certificate value.
func NewCertificate(fingerprint string, expires time.Time) Certificate {
	return Certificate{fingerprint: fingerprint, expires: expires}
}

var errEmptyICEServerURLs = newStaticErr("webrtc: ICEServer.URLs must not be empty")

func newStaticErr(s string) error { return staticErr(s) }

type staticErr string

func (e staticErr) Error() string { return string(e) }

package webrtc

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"time"
)

// generateSelfSignedCertificate produces the ECDSA P-256 self-signed DTLS
// certificate a PeerConnection uses when the caller supplies none in its
// Configuration, mirroring the teacher's
// ecdsa.GenerateKey(elliptic.P256(), rand.Reader) + self-signed x509
// pattern. Returns the handshake-ready tls.Certificate alongside the
// Certificate value SetConfiguration/getConfiguration track.
func generateSelfSignedCertificate() (tls.Certificate, Certificate, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return tls.Certificate{}, Certificate{}, err
	}

	serial, err := rand.Int(rand.Reader, big.NewInt(1<<62))
	if err != nil {
		return tls.Certificate{}, Certificate{}, err
	}

	notBefore := time.Time{}
	notAfter := notBefore.AddDate(1, 0, 0)

	template := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{CommonName: "webrtc"},
		NotBefore:             notBefore,
		NotAfter:              notAfter,
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
		BasicConstraintsValid: true,
	}

	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		return tls.Certificate{}, Certificate{}, err
	}

	tlsCert := tls.Certificate{
		Certificate: [][]byte{der},
		PrivateKey:  key,
	}

	return tlsCert, NewCertificate(fingerprintOf(der), notAfter), nil
}

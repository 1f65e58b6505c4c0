package crypto

import (
	"crypto/rand"
	"encoding/binary"

	"keysync/internal/domain"
)

// Suite is the concrete protocol-primitives capability. The rest of the
// core depends on domain.Protocol only, so tests can substitute a fake.
type Suite struct{}

// NewSuite returns the default primitives implementation.
func NewSuite() *Suite { return &Suite{} }

// GenerateIdentityKeyPair creates the long-term X25519 and Ed25519 pairs.
func (*Suite) GenerateIdentityKeyPair() (domain.IdentityKeyPair, error) {
	xpriv, xpub, err := GenerateX25519()
	if err != nil {
		return domain.IdentityKeyPair{}, err
	}
	edpriv, edpub, err := GenerateEd25519()
	if err != nil {
		return domain.IdentityKeyPair{}, err
	}
	return domain.IdentityKeyPair{
		XPub:   xpub,
		XPriv:  xpriv,
		EdPub:  edpub,
		EdPriv: edpriv,
	}, nil
}

// GenerateRegistrationID draws a uniform value in [1, MaxRegistrationID].
func (*Suite) GenerateRegistrationID() (domain.RegistrationID, error) {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, err
	}
	n := binary.BigEndian.Uint32(buf[:]) % uint32(domain.MaxRegistrationID)
	return domain.RegistrationID(n + 1), nil
}

// GeneratePreKey returns a fresh X25519 pair.
func (*Suite) GeneratePreKey() (domain.X25519Private, domain.X25519Public, error) {
	return GenerateX25519()
}

// Sign signs data with the identity signing key.
func (*Suite) Sign(key domain.Ed25519Private, data []byte) []byte {
	return SignEd25519(key, data)
}

// Verify checks sig over data with pub.
func (*Suite) Verify(pub domain.Ed25519Public, data, sig []byte) bool {
	return VerifyEd25519(pub, data, sig)
}

// Fingerprint returns a short fingerprint for display.
func (*Suite) Fingerprint(pub []byte) domain.Fingerprint {
	return domain.Fingerprint(Fingerprint(pub))
}

// Compile-time assertion that Suite implements domain.Protocol.
var _ domain.Protocol = (*Suite)(nil)

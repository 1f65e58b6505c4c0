package interfaces

import domaintypes "keysync/internal/domain/types"

// Protocol supplies the vetted cryptographic primitives the core consumes.
// Key agreement, message encryption and verification live behind this
// boundary; the core never touches curve arithmetic directly.
type Protocol interface {
	GenerateIdentityKeyPair() (domaintypes.IdentityKeyPair, error)
	GenerateRegistrationID() (domaintypes.RegistrationID, error)

	// GeneratePreKey returns a fresh X25519 pair for use as a signed or
	// one-time pre-key.
	GeneratePreKey() (domaintypes.X25519Private, domaintypes.X25519Public, error)

	Sign(key domaintypes.Ed25519Private, data []byte) []byte
	Verify(pub domaintypes.Ed25519Public, data, sig []byte) bool

	Fingerprint(pub []byte) domaintypes.Fingerprint
}

// Package crypto exposes the minimal primitives keysync consumes.
//
// Contents
//
//   - X25519 key generation and clamping (GenerateX25519)
//   - Ed25519 key generation, signing and verification (GenerateEd25519,
//     SignEd25519, VerifyEd25519)
//   - Short public-key fingerprints for display/logging (Fingerprint)
//   - Suite, the domain.Protocol capability wrapping the above
//
// All functions return fixed-size array types defined in internal/domain to
// avoid accidental reallocations.
package crypto

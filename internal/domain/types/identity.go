package types

// IdentityKeyPair holds the long-term X25519 and Ed25519 keys identifying
// this install. The private halves never leave the credential store and are
// never part of anything handed to the directory client.
type IdentityKeyPair struct {
	XPub   X25519Public   `json:"xpub"`
	XPriv  X25519Private  `json:"xpriv"`
	EdPub  Ed25519Public  `json:"edpub"`
	EdPriv Ed25519Private `json:"edpriv"`
}

// DeviceIdentity records the stable identity of this install. It is derived
// once and then read back verbatim; regeneration never happens silently.
type DeviceIdentity struct {
	UserID          UserID   `json:"user_id"`
	DeviceID        DeviceID `json:"device_id"`
	FingerprintHash string   `json:"fingerprint_hash"`
	CreatedAtMs     int64    `json:"created_at_ms"`
}

package types

// SignedPreKeyPair is the full (private+public) signed pre-key stored locally.
type SignedPreKeyPair struct {
	ID        SignedPreKeyID `json:"id"`
	Priv      X25519Private  `json:"priv"`
	Pub       X25519Public   `json:"pub"`
	Signature []byte         `json:"signature"`
}

// OneTimePreKeyPair is the full (private+public) one-time pre-key stored locally.
type OneTimePreKeyPair struct {
	ID   OneTimePreKeyID `json:"id"`
	Priv X25519Private   `json:"priv"`
	Pub  X25519Public    `json:"pub"`
}

// OneTimePreKeyPublic is only the public half (published in bundles).
type OneTimePreKeyPublic struct {
	ID  OneTimePreKeyID `json:"id"`
	Pub X25519Public    `json:"pub"`
}

// PreKeyBundle is the public-only payload one device publishes so other
// devices can initiate a session without interaction. It is the only
// structure ever written to the remote directory.
type PreKeyBundle struct {
	UserID                UserID                `json:"user_id"`
	DeviceID              DeviceID              `json:"device_id"`
	RegistrationID        RegistrationID        `json:"registration_id"`
	IdentityKey           X25519Public          `json:"identity_key"`
	SigningKey            Ed25519Public         `json:"signing_key"`
	SignedPreKeyID        SignedPreKeyID        `json:"signed_pre_key_id"`
	SignedPreKey          X25519Public          `json:"signed_pre_key"`
	SignedPreKeySignature []byte                `json:"signed_pre_key_signature"`
	OneTimePreKeys        []OneTimePreKeyPublic `json:"one_time_pre_keys,omitempty"`
}

package types

// UserID identifies an account in the key directory.
type UserID string

// String returns the string form of the user id.
func (u UserID) String() string { return string(u) }

// DeviceID identifies one install of the application for a user. It is
// derived once and persisted for the life of the install.
type DeviceID string

// String returns the string form of the device id.
func (id DeviceID) String() string { return string(id) }

// Fingerprint is a short identifier for public keys presented to users.
type Fingerprint string

// String returns the string form of the fingerprint.
func (f Fingerprint) String() string { return string(f) }

// SignedPreKeyID uniquely identifies a signed pre-key.
type SignedPreKeyID string

// String returns the string form of the identifier.
func (id SignedPreKeyID) String() string { return string(id) }

// OneTimePreKeyID uniquely identifies a one-time pre-key.
type OneTimePreKeyID string

// String returns the string form of the identifier.
func (id OneTimePreKeyID) String() string { return string(id) }

// RegistrationID is the per-install integer the protocol uses to
// disambiguate sessions. Valid values are 1..MaxRegistrationID.
type RegistrationID uint32

// MaxRegistrationID is the highest registration id the protocol family allows.
const MaxRegistrationID RegistrationID = 0x3FFF

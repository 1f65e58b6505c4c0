package interfaces

import domaintypes "keysync/internal/domain/types"

// Vault is the opaque encrypted-at-rest key/value capability the credential
// store sits on. Keys and values are strings; binary material is encoded
// before it reaches the vault. Implementations are scoped to one install.
type Vault interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
	Keys() ([]string, error)
}

// CredentialStore persists every private credential this install owns.
type CredentialStore interface {
	StoreIdentityKeyPair(pair domaintypes.IdentityKeyPair) error
	IdentityKeyPair() (domaintypes.IdentityKeyPair, bool, error)
	HasIdentityKeys() (bool, error)

	StoreRegistrationID(id domaintypes.RegistrationID) error
	RegistrationID() (domaintypes.RegistrationID, bool, error)

	// GetOrCreateDeviceID returns the persisted device identity, deriving
	// and committing one first if none exists. Concurrent callers for a
	// fresh install all observe the same committed value.
	GetOrCreateDeviceID(user domaintypes.UserID) (domaintypes.DeviceIdentity, error)
	DeviceIdentity() (domaintypes.DeviceIdentity, bool, error)

	// Signed pre-key
	StoreSignedPreKey(pair domaintypes.SignedPreKeyPair) error
	SignedPreKey(id domaintypes.SignedPreKeyID) (domaintypes.SignedPreKeyPair, bool, error)
	SetCurrentSignedPreKeyID(id domaintypes.SignedPreKeyID) error
	CurrentSignedPreKeyID() (domaintypes.SignedPreKeyID, bool, error)

	// One-time pre-keys
	StoreOneTimePreKeys(pairs []domaintypes.OneTimePreKeyPair) error
	ListOneTimePreKeyPublics() ([]domaintypes.OneTimePreKeyPublic, error)

	// ClearPreKeys drops signed and one-time pre-key material. Used when
	// the identity is rotated and published pre-keys become invalid.
	ClearPreKeys() error

	// ClearAll deletes every entry this store owns. Best-effort: partial
	// failures are aggregated, not aborted on.
	ClearAll() error
}

// QueueStore persists pending directory writes so they survive a process
// restart. Entries come back in enqueue order.
type QueueStore interface {
	Append(op domaintypes.PendingOperation) (domaintypes.PendingOperation, error)
	List() ([]domaintypes.PendingOperation, error)
	Remove(seq uint64) error
	Len() (int, error)
}

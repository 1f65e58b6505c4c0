package interfaces

import (
	"context"

	domaintypes "keysync/internal/domain/types"
)

// IdentityService provisions and inspects the long-term identity material.
type IdentityService interface {
	// EnsureIdentity returns the stored identity pair and registration id,
	// generating and persisting both when absent and generate is true.
	EnsureIdentity(generate bool) (
		domaintypes.IdentityKeyPair,
		domaintypes.RegistrationID,
		bool, // created
		error,
	)

	// RotateIdentity replaces the identity pair in place and drops all
	// pre-key material, invalidating every previously published bundle.
	RotateIdentity() (domaintypes.IdentityKeyPair, error)

	FingerprintIdentity() (domaintypes.Fingerprint, error)
}

// PreKeyService generates pre-keys and assembles the public bundle.
type PreKeyService interface {
	// EnsurePreKeys makes sure a current signed pre-key and at least count
	// one-time pre-keys exist, generating what is missing.
	EnsurePreKeys(count int) error

	// BuildBundle assembles the public-only bundle for (user, device) from
	// the credential store.
	BuildBundle(user domaintypes.UserID, device domaintypes.DeviceID) (domaintypes.PreKeyBundle, error)
}

// Instance is the protocol facade: the lifecycle over everything above.
type Instance interface {
	Initialize(ctx context.Context, user domaintypes.UserID, opts domaintypes.InitializeOptions) error
	PublishKeys(ctx context.Context) (domaintypes.UploadOutcome, error)
	HasKeysForUser(ctx context.Context, user domaintypes.UserID) (bool, error)
	Info() domaintypes.InstanceInfo
	Dispose() error
}

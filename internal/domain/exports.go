package domain

import (
	interfaces "keysync/internal/domain/interfaces"
	types "keysync/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	UserID              = types.UserID
	DeviceID            = types.DeviceID
	Fingerprint         = types.Fingerprint
	SignedPreKeyID      = types.SignedPreKeyID
	OneTimePreKeyID     = types.OneTimePreKeyID
	RegistrationID      = types.RegistrationID
	IdentityKeyPair     = types.IdentityKeyPair
	DeviceIdentity      = types.DeviceIdentity
	SignedPreKeyPair    = types.SignedPreKeyPair
	OneTimePreKeyPair   = types.OneTimePreKeyPair
	OneTimePreKeyPublic = types.OneTimePreKeyPublic
	PreKeyBundle        = types.PreKeyBundle
	InstanceInfo        = types.InstanceInfo
	InitializeOptions   = types.InitializeOptions
	UploadOutcome       = types.UploadOutcome
	OperationKind       = types.OperationKind
	PendingOperation    = types.PendingOperation
	X25519Public        = types.X25519Public
	X25519Private       = types.X25519Private
	Ed25519Public       = types.Ed25519Public
	Ed25519Private      = types.Ed25519Private
)

// Constant re-exports.
const (
	MaxRegistrationID = types.MaxRegistrationID
	UploadApplied     = types.UploadApplied
	UploadQueued      = types.UploadQueued
	OpUploadKeys      = types.OpUploadKeys
	OpRefreshKeys     = types.OpRefreshKeys
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	Vault              = interfaces.Vault
	CredentialStore    = interfaces.CredentialStore
	QueueStore         = interfaces.QueueStore
	Directory          = interfaces.Directory
	KeyDirectoryClient = interfaces.KeyDirectoryClient
	Fingerprinter      = interfaces.Fingerprinter
	Protocol           = interfaces.Protocol
	IdentityService    = interfaces.IdentityService
	PreKeyService      = interfaces.PreKeyService
	Instance           = interfaces.Instance
)

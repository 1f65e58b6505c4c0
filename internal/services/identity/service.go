package identity

import (
	"github.com/decred/slog"

	"keysync/internal/domain"
)

// Service manages the long-term identity material through the credential
// store. One identity key pair and one registration id exist per install;
// Service creates them on first use and hands back the stored values ever
// after.
type Service struct {
	creds domain.CredentialStore
	proto domain.Protocol
	log   slog.Logger
}

// New returns an identity service backed by creds using proto for key
// generation.
func New(creds domain.CredentialStore, proto domain.Protocol) *Service {
	return &Service{creds: creds, proto: proto, log: slog.Disabled}
}

// SetLogger replaces the disabled default logger.
func (s *Service) SetLogger(log slog.Logger) { s.log = log }

// EnsureIdentity returns the stored identity pair and registration id,
// generating and persisting both when absent and generate is true. When
// generation is not permitted and no identity exists, the call fails with a
// Key error.
func (s *Service) EnsureIdentity(generate bool) (domain.IdentityKeyPair, domain.RegistrationID, bool, error) {
	pair, ok, err := s.creds.IdentityKeyPair()
	if err != nil {
		return domain.IdentityKeyPair{}, 0, false, err
	}
	if ok {
		regID, err := s.ensureRegistrationID(generate)
		return pair, regID, false, err
	}
	if !generate {
		return domain.IdentityKeyPair{}, 0, false,
			domain.E(domain.Key, "no identity key pair exists and generation is not permitted")
	}

	pair, err = s.proto.GenerateIdentityKeyPair()
	if err != nil {
		return domain.IdentityKeyPair{}, 0, false,
			domain.Wrap(domain.Key, err, "generate identity key pair")
	}
	if err := s.creds.StoreIdentityKeyPair(pair); err != nil {
		return domain.IdentityKeyPair{}, 0, false, err
	}
	s.log.Infof("Generated identity key pair, fingerprint %s",
		s.proto.Fingerprint(pair.XPub.Slice()))

	regID, err := s.ensureRegistrationID(true)
	if err != nil {
		return domain.IdentityKeyPair{}, 0, false, err
	}
	return pair, regID, true, nil
}

func (s *Service) ensureRegistrationID(generate bool) (domain.RegistrationID, error) {
	regID, ok, err := s.creds.RegistrationID()
	if err != nil {
		return 0, err
	}
	if ok {
		return regID, nil
	}
	if !generate {
		return 0, domain.E(domain.Key, "no registration id exists and generation is not permitted")
	}
	regID, err = s.proto.GenerateRegistrationID()
	if err != nil {
		return 0, domain.Wrap(domain.Key, err, "generate registration id")
	}
	if err := s.creds.StoreRegistrationID(regID); err != nil {
		return 0, err
	}
	return regID, nil
}

// RotateIdentity replaces the identity key pair in place. All pre-key
// material is dropped because existing signatures no longer verify against
// the new signing key; callers must re-publish afterwards.
func (s *Service) RotateIdentity() (domain.IdentityKeyPair, error) {
	pair, err := s.proto.GenerateIdentityKeyPair()
	if err != nil {
		return domain.IdentityKeyPair{}, domain.Wrap(domain.Key, err, "generate replacement identity")
	}
	if err := s.creds.StoreIdentityKeyPair(pair); err != nil {
		return domain.IdentityKeyPair{}, err
	}
	if err := s.creds.ClearPreKeys(); err != nil {
		return domain.IdentityKeyPair{}, err
	}
	s.log.Warnf("Identity rotated; previously published pre-keys are invalid")
	return pair, nil
}

// FingerprintIdentity returns a short fingerprint of the stored X25519
// public key.
func (s *Service) FingerprintIdentity() (domain.Fingerprint, error) {
	pair, ok, err := s.creds.IdentityKeyPair()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", domain.E(domain.Key, "no identity key pair exists")
	}
	return s.proto.Fingerprint(pair.XPub.Slice()), nil
}

// Compile-time assertion that Service implements domain.IdentityService.
var _ domain.IdentityService = (*Service)(nil)

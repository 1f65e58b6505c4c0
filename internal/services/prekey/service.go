package prekey

import (
	"fmt"
	"time"

	"github.com/decred/slog"

	"keysync/internal/domain"
)

// Service generates pre-keys and assembles the public bundle other devices
// fetch from the directory. It never touches the network; publishing is the
// caller's job.
type Service struct {
	creds domain.CredentialStore
	proto domain.Protocol
	log   slog.Logger
	now   func() time.Time
}

// New returns a pre-key service backed by creds using proto for key
// generation and signing.
func New(creds domain.CredentialStore, proto domain.Protocol) *Service {
	return &Service{creds: creds, proto: proto, log: slog.Disabled, now: time.Now}
}

// SetLogger replaces the disabled default logger.
func (s *Service) SetLogger(log slog.Logger) { s.log = log }

// EnsurePreKeys makes sure a current signed pre-key exists and that at least
// count one-time pre-keys are held, generating what is missing. A signed
// pre-key cannot be produced without a stored identity because its public
// half is signed with the identity signing key.
func (s *Service) EnsurePreKeys(count int) error {
	pair, ok, err := s.creds.IdentityKeyPair()
	if err != nil {
		return err
	}
	if !ok {
		return domain.E(domain.Key, "cannot generate pre-keys without an identity key pair")
	}

	if _, ok, err := s.creds.CurrentSignedPreKeyID(); err != nil {
		return err
	} else if !ok {
		if err := s.generateSignedPreKey(pair); err != nil {
			return err
		}
	}

	existing, err := s.creds.ListOneTimePreKeyPublics()
	if err != nil {
		return err
	}
	if missing := count - len(existing); missing > 0 {
		if err := s.generateOneTimePreKeys(missing); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) generateSignedPreKey(identity domain.IdentityKeyPair) error {
	priv, pub, err := s.proto.GeneratePreKey()
	if err != nil {
		return domain.Wrap(domain.Key, err, "generate signed pre-key")
	}
	spk := domain.SignedPreKeyPair{
		ID:        domain.SignedPreKeyID(fmt.Sprintf("spk-%d", s.now().UnixMilli())),
		Priv:      priv,
		Pub:       pub,
		Signature: s.proto.Sign(identity.EdPriv, pub.Slice()),
	}
	if err := s.creds.StoreSignedPreKey(spk); err != nil {
		return err
	}
	if err := s.creds.SetCurrentSignedPreKeyID(spk.ID); err != nil {
		return err
	}
	s.log.Debugf("Generated signed pre-key %s", spk.ID)
	return nil
}

func (s *Service) generateOneTimePreKeys(n int) error {
	ts := s.now().UnixMilli()
	pairs := make([]domain.OneTimePreKeyPair, 0, n)
	for i := 0; i < n; i++ {
		priv, pub, err := s.proto.GeneratePreKey()
		if err != nil {
			return domain.Wrap(domain.Key, err, "generate one-time pre-key")
		}
		pairs = append(pairs, domain.OneTimePreKeyPair{
			ID:   domain.OneTimePreKeyID(fmt.Sprintf("opk-%d-%d", ts, i)),
			Priv: priv,
			Pub:  pub,
		})
	}
	if err := s.creds.StoreOneTimePreKeys(pairs); err != nil {
		return err
	}
	s.log.Debugf("Generated %d one-time pre-keys", n)
	return nil
}

// BuildBundle assembles the public-only bundle for (user, device) from the
// credential store. It fails with a Key error when the identity or the
// current signed pre-key is missing.
func (s *Service) BuildBundle(user domain.UserID, device domain.DeviceID) (domain.PreKeyBundle, error) {
	pair, ok, err := s.creds.IdentityKeyPair()
	if err != nil {
		return domain.PreKeyBundle{}, err
	}
	if !ok {
		return domain.PreKeyBundle{}, domain.E(domain.Key, "no identity key pair exists")
	}

	regID, ok, err := s.creds.RegistrationID()
	if err != nil {
		return domain.PreKeyBundle{}, err
	}
	if !ok {
		return domain.PreKeyBundle{}, domain.E(domain.Key, "no registration id exists")
	}

	spkID, ok, err := s.creds.CurrentSignedPreKeyID()
	if err != nil {
		return domain.PreKeyBundle{}, err
	}
	if !ok {
		return domain.PreKeyBundle{}, domain.E(domain.Key, "no current signed pre-key")
	}
	spk, ok, err := s.creds.SignedPreKey(spkID)
	if err != nil {
		return domain.PreKeyBundle{}, err
	}
	if !ok {
		return domain.PreKeyBundle{}, domain.Ef(domain.Key, "current signed pre-key %s is not stored", spkID)
	}

	otks, err := s.creds.ListOneTimePreKeyPublics()
	if err != nil {
		return domain.PreKeyBundle{}, err
	}

	return domain.PreKeyBundle{
		UserID:                user,
		DeviceID:              device,
		RegistrationID:        regID,
		IdentityKey:           pair.XPub,
		SigningKey:            pair.EdPub,
		SignedPreKeyID:        spk.ID,
		SignedPreKey:          spk.Pub,
		SignedPreKeySignature: spk.Signature,
		OneTimePreKeys:        otks,
	}, nil
}

// Compile-time assertion that Service implements domain.PreKeyService.
var _ domain.PreKeyService = (*Service)(nil)

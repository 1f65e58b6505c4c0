package identity_test

import (
	"errors"
	"testing"

	"keysync/internal/crypto"
	"keysync/internal/domain"
	"keysync/internal/services/identity"
	"keysync/internal/store"
)

type fakeFingerprinter struct{}

func (fakeFingerprinter) Fingerprint() (string, error) { return "machine-test|host|linux", nil }
func (fakeFingerprinter) OSName() string               { return "linux" }

func newService(t *testing.T) (*identity.Service, *store.Credentials) {
	t.Helper()
	vault := store.NewFileVault(t.TempDir(), "passphrase")
	creds := store.NewCredentials(vault, fakeFingerprinter{})
	return identity.New(creds, crypto.NewSuite()), creds
}

func TestEnsureIdentityGeneratesOnce(t *testing.T) {
	svc, _ := newService(t)

	pair, regID, created, err := svc.EnsureIdentity(true)
	if err != nil {
		t.Fatalf("EnsureIdentity: %v", err)
	}
	if !created {
		t.Fatal("expected a fresh identity to be created")
	}
	if regID < 1 || regID > domain.MaxRegistrationID {
		t.Fatalf("registration id %d out of range", regID)
	}

	again, regID2, created2, err := svc.EnsureIdentity(true)
	if err != nil {
		t.Fatalf("second EnsureIdentity: %v", err)
	}
	if created2 {
		t.Fatal("second call must not create a new identity")
	}
	if again.XPub != pair.XPub || again.EdPub != pair.EdPub {
		t.Fatal("second call returned a different key pair")
	}
	if regID2 != regID {
		t.Fatalf("registration id changed: %d != %d", regID2, regID)
	}
}

func TestEnsureIdentityAbsentNotPermitted(t *testing.T) {
	svc, _ := newService(t)

	_, _, _, err := svc.EnsureIdentity(false)
	if err == nil {
		t.Fatal("expected an error when generation is not permitted")
	}
	if !errors.Is(err, domain.Key) {
		t.Fatalf("expected a key error, got %v", err)
	}
}

func TestRotateIdentityDropsPreKeys(t *testing.T) {
	svc, creds := newService(t)

	pair, _, _, err := svc.EnsureIdentity(true)
	if err != nil {
		t.Fatalf("EnsureIdentity: %v", err)
	}
	spk := domain.SignedPreKeyPair{ID: "spk-1", Signature: []byte{1}}
	if err := creds.StoreSignedPreKey(spk); err != nil {
		t.Fatalf("StoreSignedPreKey: %v", err)
	}
	if err := creds.SetCurrentSignedPreKeyID(spk.ID); err != nil {
		t.Fatalf("SetCurrentSignedPreKeyID: %v", err)
	}

	rotated, err := svc.RotateIdentity()
	if err != nil {
		t.Fatalf("RotateIdentity: %v", err)
	}
	if rotated.XPub == pair.XPub {
		t.Fatal("rotation kept the old key pair")
	}
	if _, ok, err := creds.CurrentSignedPreKeyID(); err != nil {
		t.Fatalf("CurrentSignedPreKeyID: %v", err)
	} else if ok {
		t.Fatal("rotation must drop the current signed pre-key")
	}
}

func TestFingerprintIdentity(t *testing.T) {
	svc, _ := newService(t)

	if _, err := svc.FingerprintIdentity(); !errors.Is(err, domain.Key) {
		t.Fatalf("expected a key error before provisioning, got %v", err)
	}

	if _, _, _, err := svc.EnsureIdentity(true); err != nil {
		t.Fatalf("EnsureIdentity: %v", err)
	}
	fp, err := svc.FingerprintIdentity()
	if err != nil {
		t.Fatalf("FingerprintIdentity: %v", err)
	}
	if len(fp) != 20 {
		t.Fatalf("unexpected fingerprint %q", fp)
	}
}

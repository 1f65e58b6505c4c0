package prekey_test

import (
	"errors"
	"testing"

	"keysync/internal/crypto"
	"keysync/internal/domain"
	"keysync/internal/services/prekey"
	"keysync/internal/store"
)

type fakeFingerprinter struct{}

func (fakeFingerprinter) Fingerprint() (string, error) { return "machine-test|host|linux", nil }
func (fakeFingerprinter) OSName() string               { return "linux" }

func newService(t *testing.T) (*prekey.Service, *store.Credentials, *crypto.Suite) {
	t.Helper()
	vault := store.NewFileVault(t.TempDir(), "passphrase")
	creds := store.NewCredentials(vault, fakeFingerprinter{})
	suite := crypto.NewSuite()
	return prekey.New(creds, suite), creds, suite
}

func provisionIdentity(t *testing.T, creds *store.Credentials, suite *crypto.Suite) domain.IdentityKeyPair {
	t.Helper()
	pair, err := suite.GenerateIdentityKeyPair()
	if err != nil {
		t.Fatalf("GenerateIdentityKeyPair: %v", err)
	}
	if err := creds.StoreIdentityKeyPair(pair); err != nil {
		t.Fatalf("StoreIdentityKeyPair: %v", err)
	}
	if err := creds.StoreRegistrationID(42); err != nil {
		t.Fatalf("StoreRegistrationID: %v", err)
	}
	return pair
}

func TestEnsurePreKeysRequiresIdentity(t *testing.T) {
	svc, _, _ := newService(t)

	err := svc.EnsurePreKeys(5)
	if !errors.Is(err, domain.Key) {
		t.Fatalf("expected a key error, got %v", err)
	}
}

func TestEnsurePreKeysCreatesMaterial(t *testing.T) {
	svc, creds, suite := newService(t)
	pair := provisionIdentity(t, creds, suite)

	if err := svc.EnsurePreKeys(5); err != nil {
		t.Fatalf("EnsurePreKeys: %v", err)
	}

	spkID, ok, err := creds.CurrentSignedPreKeyID()
	if err != nil || !ok {
		t.Fatalf("CurrentSignedPreKeyID: ok=%v err=%v", ok, err)
	}
	spk, ok, err := creds.SignedPreKey(spkID)
	if err != nil || !ok {
		t.Fatalf("SignedPreKey(%s): ok=%v err=%v", spkID, ok, err)
	}
	if !suite.Verify(pair.EdPub, spk.Pub.Slice(), spk.Signature) {
		t.Fatal("signed pre-key signature does not verify")
	}

	otks, err := creds.ListOneTimePreKeyPublics()
	if err != nil {
		t.Fatalf("ListOneTimePreKeyPublics: %v", err)
	}
	if len(otks) != 5 {
		t.Fatalf("expected 5 one-time pre-keys, got %d", len(otks))
	}

	// A lower target adds nothing; a higher target tops up.
	if err := svc.EnsurePreKeys(3); err != nil {
		t.Fatalf("EnsurePreKeys(3): %v", err)
	}
	if otks, _ = creds.ListOneTimePreKeyPublics(); len(otks) != 5 {
		t.Fatalf("count changed to %d after a lower target", len(otks))
	}
	if err := svc.EnsurePreKeys(8); err != nil {
		t.Fatalf("EnsurePreKeys(8): %v", err)
	}
	if otks, _ = creds.ListOneTimePreKeyPublics(); len(otks) != 8 {
		t.Fatalf("expected top-up to 8, got %d", len(otks))
	}
}

func TestBuildBundle(t *testing.T) {
	svc, creds, suite := newService(t)

	if _, err := svc.BuildBundle("alice", "dev-1"); !errors.Is(err, domain.Key) {
		t.Fatalf("expected a key error before provisioning, got %v", err)
	}

	pair := provisionIdentity(t, creds, suite)
	if err := svc.EnsurePreKeys(2); err != nil {
		t.Fatalf("EnsurePreKeys: %v", err)
	}

	bundle, err := svc.BuildBundle("alice", "dev-1")
	if err != nil {
		t.Fatalf("BuildBundle: %v", err)
	}
	if bundle.UserID != "alice" || bundle.DeviceID != "dev-1" {
		t.Fatalf("bundle addressed to %s/%s", bundle.UserID, bundle.DeviceID)
	}
	if bundle.RegistrationID != 42 {
		t.Fatalf("registration id %d", bundle.RegistrationID)
	}
	if bundle.IdentityKey != pair.XPub || bundle.SigningKey != pair.EdPub {
		t.Fatal("bundle carries wrong public keys")
	}
	if !suite.Verify(bundle.SigningKey, bundle.SignedPreKey.Slice(), bundle.SignedPreKeySignature) {
		t.Fatal("bundle signature does not verify")
	}
	if len(bundle.OneTimePreKeys) != 2 {
		t.Fatalf("expected 2 one-time pre-keys in bundle, got %d", len(bundle.OneTimePreKeys))
	}
}

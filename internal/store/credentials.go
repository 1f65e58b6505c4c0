package store

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/decred/slog"
	"golang.org/x/sync/singleflight"

	"keysync/internal/domain"
	"keysync/internal/util/memzero"
)

// Vault keys owned by the credential store. Fixed strings; binary values are
// base64, integers decimal strings, structured values JSON.
const (
	keyIdentityXPub   = "identity.x_pub"
	keyIdentityXPriv  = "identity.x_priv"
	keyIdentityEdPub  = "identity.ed_pub"
	keyIdentityEdPriv = "identity.ed_priv"
	keyRegistrationID = "registration_id"
	keyDeviceIdentity = "device_identity"
	keySignedPreKeys  = "prekeys.signed"
	keyPreKeyMeta     = "prekeys.meta"
	keyOneTimePreKeys = "prekeys.one_time"
)

var credentialKeys = []string{
	keyIdentityXPub,
	keyIdentityXPriv,
	keyIdentityEdPub,
	keyIdentityEdPriv,
	keyRegistrationID,
	keyDeviceIdentity,
	keySignedPreKeys,
	keyPreKeyMeta,
	keyOneTimePreKeys,
}

type prekeyMeta struct {
	CurrentSignedPreKeyID domain.SignedPreKeyID `json:"current_signed_pre_key_id"`
}

// Credentials persists identity material, the registration id and the
// device identity on top of an encrypted vault.
type Credentials struct {
	vault domain.Vault
	fp    domain.Fingerprinter
	log   slog.Logger

	// Collapses concurrent first-time device-id derivations into a single
	// committed value.
	deviceSF singleflight.Group

	now func() time.Time
}

// NewCredentials returns a credential store over vault using fp for
// device-id derivation.
func NewCredentials(vault domain.Vault, fp domain.Fingerprinter) *Credentials {
	return &Credentials{
		vault: vault,
		fp:    fp,
		log:   slog.Disabled,
		now:   time.Now,
	}
}

// SetLogger replaces the disabled default logger.
func (c *Credentials) SetLogger(log slog.Logger) { c.log = log }

// ---------- Identity ----------

// StoreIdentityKeyPair writes all four key halves, base64-encoded.
func (c *Credentials) StoreIdentityKeyPair(pair domain.IdentityKeyPair) error {
	entries := map[string][]byte{
		keyIdentityXPub:   pair.XPub.Slice(),
		keyIdentityXPriv:  pair.XPriv.Slice(),
		keyIdentityEdPub:  pair.EdPub.Slice(),
		keyIdentityEdPriv: pair.EdPriv.Slice(),
	}
	for k, v := range entries {
		if err := c.vault.Set(k, base64.StdEncoding.EncodeToString(v)); err != nil {
			return domain.Wrap(domain.Storage, err, "store identity key "+k)
		}
	}
	return nil
}

// IdentityKeyPair reads and decodes the stored identity, reporting whether
// one was present.
func (c *Credentials) IdentityKeyPair() (domain.IdentityKeyPair, bool, error) {
	var pair domain.IdentityKeyPair

	ok, err := c.readKey(keyIdentityXPub, pair.XPub[:])
	if err != nil || !ok {
		return domain.IdentityKeyPair{}, false, err
	}
	if ok, err = c.readKey(keyIdentityXPriv, pair.XPriv[:]); err != nil || !ok {
		return domain.IdentityKeyPair{}, false, err
	}
	if ok, err = c.readKey(keyIdentityEdPub, pair.EdPub[:]); err != nil || !ok {
		return domain.IdentityKeyPair{}, false, err
	}
	if ok, err = c.readKey(keyIdentityEdPriv, pair.EdPriv[:]); err != nil || !ok {
		return domain.IdentityKeyPair{}, false, err
	}
	return pair, true, nil
}

// readKey decodes the base64 vault entry at k into dst, enforcing length.
func (c *Credentials) readKey(k string, dst []byte) (bool, error) {
	val, ok, err := c.vault.Get(k)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	raw, err := base64.StdEncoding.DecodeString(val)
	if err != nil {
		return false, domain.Wrap(domain.Security, err, "decode "+k)
	}
	if len(raw) != len(dst) {
		memzero.Zero(raw)
		return false, domain.Ef(domain.Security,
			"%s has wrong length %d, want %d", k, len(raw), len(dst))
	}
	copy(dst, raw)
	memzero.Zero(raw)
	return true, nil
}

// HasIdentityKeys reports whether both private and public identity entries
// are present.
func (c *Credentials) HasIdentityKeys() (bool, error) {
	for _, k := range []string{keyIdentityXPub, keyIdentityXPriv} {
		_, ok, err := c.vault.Get(k)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// ---------- Registration id ----------

// StoreRegistrationID writes the id as a decimal string.
func (c *Credentials) StoreRegistrationID(id domain.RegistrationID) error {
	if err := c.vault.Set(keyRegistrationID, strconv.FormatUint(uint64(id), 10)); err != nil {
		return domain.Wrap(domain.Storage, err, "store registration id")
	}
	return nil
}

// RegistrationID reads back the stored id.
func (c *Credentials) RegistrationID() (domain.RegistrationID, bool, error) {
	val, ok, err := c.vault.Get(keyRegistrationID)
	if err != nil || !ok {
		return 0, false, err
	}
	n, err := strconv.ParseUint(val, 10, 32)
	if err != nil {
		return 0, false, domain.Wrap(domain.Security, err, "registration id corrupted")
	}
	return domain.RegistrationID(n), true, nil
}

// ---------- Device identity ----------

// DeviceIdentity returns the persisted device identity, if any.
func (c *Credentials) DeviceIdentity() (domain.DeviceIdentity, bool, error) {
	val, ok, err := c.vault.Get(keyDeviceIdentity)
	if err != nil || !ok {
		return domain.DeviceIdentity{}, false, err
	}
	var dev domain.DeviceIdentity
	if err := json.Unmarshal([]byte(val), &dev); err != nil {
		return domain.DeviceIdentity{}, false,
			domain.Wrap(domain.Security, err, "device identity corrupted")
	}
	return dev, true, nil
}

// GetOrCreateDeviceID returns the persisted device identity, deriving and
// committing one first if none exists. The derivation runs in a
// single-writer critical section: N concurrent callers on a fresh install
// all observe the same committed value.
func (c *Credentials) GetOrCreateDeviceID(user domain.UserID) (domain.DeviceIdentity, error) {
	v, err, _ := c.deviceSF.Do("device_id", func() (any, error) {
		dev, ok, err := c.DeviceIdentity()
		if err != nil {
			return domain.DeviceIdentity{}, err
		}
		if ok {
			return dev, nil
		}
		dev, err = c.deriveDeviceIdentity(user)
		if err != nil {
			return domain.DeviceIdentity{}, err
		}
		raw, err := json.Marshal(dev)
		if err != nil {
			return domain.DeviceIdentity{}, domain.Wrap(domain.Storage, err, "encode device identity")
		}
		if err := c.vault.Set(keyDeviceIdentity, string(raw)); err != nil {
			return domain.DeviceIdentity{}, domain.Wrap(domain.Storage, err, "store device identity")
		}
		c.log.Infof("Derived device id %s for user %s", dev.DeviceID, user)
		return dev, nil
	})
	if err != nil {
		return domain.DeviceIdentity{}, err
	}
	return v.(domain.DeviceIdentity), nil
}

// deriveDeviceIdentity builds a fresh device identity. The fingerprint path
// is best-effort: when platform fingerprinting fails the id falls back to
// the OS name plus randomness rather than failing the call.
func (c *Credentials) deriveDeviceIdentity(user domain.UserID) (domain.DeviceIdentity, error) {
	random, err := randomToken(8)
	if err != nil {
		return domain.DeviceIdentity{}, domain.Wrap(domain.Storage, err, "entropy unavailable")
	}
	nowMs := c.now().UnixMilli()

	fp, err := c.fp.Fingerprint()
	if err != nil {
		c.log.Warnf("Platform fingerprint unavailable, using OS-name fallback: %v", err)
		osName := c.fp.OSName()
		sum := sha256.Sum256([]byte(osName))
		return domain.DeviceIdentity{
			UserID:          user,
			DeviceID:        domain.DeviceID(osName + "_" + random),
			FingerprintHash: hex.EncodeToString(sum[:]),
			CreatedAtMs:     nowMs,
		}, nil
	}

	sum := sha256.Sum256([]byte(fp))
	hash8 := hex.EncodeToString(sum[:])[:8]
	id := fmt.Sprintf("%s_device_%s_%d_%s", user, hash8, nowMs, random)
	return domain.DeviceIdentity{
		UserID:          user,
		DeviceID:        domain.DeviceID(id),
		FingerprintHash: hex.EncodeToString(sum[:]),
		CreatedAtMs:     nowMs,
	}, nil
}

// randomToken returns n characters of base64url-encoded secure randomness.
func randomToken(n int) (string, error) {
	raw := make([]byte, n)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw)[:n], nil
}

// ---------- Pre-keys ----------

// StoreSignedPreKey merges pair into the signed pre-key map.
func (c *Credentials) StoreSignedPreKey(pair domain.SignedPreKeyPair) error {
	m := map[domain.SignedPreKeyID]domain.SignedPreKeyPair{}
	if err := c.readJSONKey(keySignedPreKeys, &m); err != nil {
		return err
	}
	m[pair.ID] = pair
	return c.writeJSONKey(keySignedPreKeys, m)
}

// SignedPreKey retrieves a signed pre-key by id.
func (c *Credentials) SignedPreKey(id domain.SignedPreKeyID) (domain.SignedPreKeyPair, bool, error) {
	m := map[domain.SignedPreKeyID]domain.SignedPreKeyPair{}
	if err := c.readJSONKey(keySignedPreKeys, &m); err != nil {
		return domain.SignedPreKeyPair{}, false, err
	}
	p, ok := m[id]
	return p, ok, nil
}

// SetCurrentSignedPreKeyID records which signed pre-key id is current.
func (c *Credentials) SetCurrentSignedPreKeyID(id domain.SignedPreKeyID) error {
	return c.writeJSONKey(keyPreKeyMeta, prekeyMeta{CurrentSignedPreKeyID: id})
}

// CurrentSignedPreKeyID returns the recorded current signed pre-key id.
func (c *Credentials) CurrentSignedPreKeyID() (domain.SignedPreKeyID, bool, error) {
	var meta prekeyMeta
	if err := c.readJSONKey(keyPreKeyMeta, &meta); err != nil {
		return "", false, err
	}
	if meta.CurrentSignedPreKeyID == "" {
		return "", false, nil
	}
	return meta.CurrentSignedPreKeyID, true, nil
}

// StoreOneTimePreKeys merges the provided pairs into the store.
func (c *Credentials) StoreOneTimePreKeys(pairs []domain.OneTimePreKeyPair) error {
	m := map[domain.OneTimePreKeyID]domain.OneTimePreKeyPair{}
	if err := c.readJSONKey(keyOneTimePreKeys, &m); err != nil {
		return err
	}
	for _, p := range pairs {
		m[p.ID] = p
	}
	return c.writeJSONKey(keyOneTimePreKeys, m)
}

// ListOneTimePreKeyPublics exposes only the public halves for bundling.
func (c *Credentials) ListOneTimePreKeyPublics() ([]domain.OneTimePreKeyPublic, error) {
	m := map[domain.OneTimePreKeyID]domain.OneTimePreKeyPair{}
	if err := c.readJSONKey(keyOneTimePreKeys, &m); err != nil {
		return nil, err
	}
	out := make([]domain.OneTimePreKeyPublic, 0, len(m))
	for id, p := range m {
		out = append(out, domain.OneTimePreKeyPublic{ID: id, Pub: p.Pub})
	}
	return out, nil
}

// ClearPreKeys drops all signed and one-time pre-key state.
func (c *Credentials) ClearPreKeys() error {
	var errs []error
	for _, k := range []string{keySignedPreKeys, keyPreKeyMeta, keyOneTimePreKeys} {
		if err := c.vault.Delete(k); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return domain.Wrap(domain.Storage, errors.Join(errs...), "clear pre-keys")
	}
	return nil
}

// ClearAll deletes every key this store owns. Best-effort: it keeps going
// past individual failures and aggregates them at the end.
func (c *Credentials) ClearAll() error {
	var errs []error
	for _, k := range credentialKeys {
		if err := c.vault.Delete(k); err != nil {
			errs = append(errs, fmt.Errorf("delete %s: %w", k, err))
		}
	}
	if len(errs) > 0 {
		return domain.Wrap(domain.Storage, errors.Join(errs...), "clear credentials")
	}
	return nil
}

// ---------- helpers ----------

func (c *Credentials) readJSONKey(k string, out any) error {
	val, ok, err := c.vault.Get(k)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if err := json.Unmarshal([]byte(val), out); err != nil {
		return domain.Wrap(domain.Security, err, k+" corrupted")
	}
	return nil
}

func (c *Credentials) writeJSONKey(k string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return domain.Wrap(domain.Storage, err, "encode "+k)
	}
	if err := c.vault.Set(k, string(raw)); err != nil {
		return domain.Wrap(domain.Storage, err, "store "+k)
	}
	return nil
}

// Compile-time assertion that Credentials implements domain.CredentialStore.
var _ domain.CredentialStore = (*Credentials)(nil)

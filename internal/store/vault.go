package store

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"encoding/json"

	"keysync/internal/domain"
)

const vaultFile = "vault.enc"

// FileVault is the encrypted-at-rest string key/value capability. The whole
// map is serialised as JSON and sealed under a passphrase-derived key; every
// mutation rewrites the file atomically.
type FileVault struct {
	dir        string
	passphrase string
	mu         sync.Mutex
}

// NewFileVault returns a FileVault rooted at dir, sealed with passphrase.
func NewFileVault(dir, passphrase string) *FileVault {
	return &FileVault{dir: dir, passphrase: passphrase}
}

// Get returns the value for key and whether it was present.
func (v *FileVault) Get(key string) (string, bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	m, err := v.load()
	if err != nil {
		return "", false, err
	}
	val, ok := m[key]
	return val, ok, nil
}

// Set stores value under key.
func (v *FileVault) Set(key, value string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	m, err := v.load()
	if err != nil {
		return err
	}
	m[key] = value
	return v.save(m)
}

// Delete removes key. Deleting an absent key is not an error.
func (v *FileVault) Delete(key string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	m, err := v.load()
	if err != nil {
		return err
	}
	if _, ok := m[key]; !ok {
		return nil
	}
	delete(m, key)
	return v.save(m)
}

// Keys lists every stored key in sorted order.
func (v *FileVault) Keys() ([]string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	m, err := v.load()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// load reads and opens the vault file. A missing file is an empty vault.
func (v *FileVault) load() (map[string]string, error) {
	path := filepath.Join(v.dir, vaultFile)
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, domain.Wrap(domain.Storage, err, "read vault")
	}
	raw, err := open(v.passphrase, b)
	if err != nil {
		if errors.Is(err, errWrongPassphrase) {
			return nil, domain.Wrap(domain.Security, err, "open vault")
		}
		return nil, domain.Wrap(domain.Storage, err, "open vault")
	}
	m := make(map[string]string)
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, domain.Wrap(domain.Security, err, "vault contents corrupted")
	}
	return m, nil
}

// save seals and atomically replaces the vault file.
func (v *FileVault) save(m map[string]string) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return domain.Wrap(domain.Storage, err, "encode vault")
	}
	N, r, p := scryptParamsDefault()
	blob, err := seal(v.passphrase, raw, N, r, p)
	if err != nil {
		return domain.Wrap(domain.Storage, err, "seal vault")
	}
	path := filepath.Join(v.dir, vaultFile)
	if err := writeFile(path, blob, 0o600); err != nil {
		return domain.Wrap(domain.Storage, err, "write vault")
	}
	return nil
}

// Compile-time assertion that FileVault implements domain.Vault.
var _ domain.Vault = (*FileVault)(nil)

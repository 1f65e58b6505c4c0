// Package store provides file-based persistence for keysync's core data.
//
// It contains concrete implementations of the domain storage interfaces.
// All methods are concurrency-safe via internal locking. Stored files live
// under the configured home directory.
//
// The package includes:
//   - FileVault, the encrypted-at-rest string key/value capability
//     (scrypt-derived key, ChaCha20-Poly1305 sealed, atomic replace)
//   - Credentials, the secure credential store layered on a vault
//   - FileQueue, the persisted FIFO of deferred directory writes
package store

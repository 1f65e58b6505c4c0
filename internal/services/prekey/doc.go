// Package prekey generates signed and one-time pre-keys and assembles the
// public bundle published to the key directory.
package prekey

// Package identity provisions the long-term identity key pair and
// registration id for this install.
package identity

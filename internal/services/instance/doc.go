// Package instance is the protocol facade tying identity, pre-keys and the
// directory client together behind a single lifecycle.
package instance

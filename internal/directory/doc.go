// Package directory implements the remote key-directory access layer.
//
// HTTPDirectory is the generic transport: a hierarchical path-addressed
// JSON store with put/get over HTTP and change streams over websocket.
// Client layers the protocol semantics on top: publishing pre-key bundles
// keyed by (user, device), presence queries that distinguish an unreachable
// directory from a definitive absence, and a persisted FIFO of writes made
// while offline, drained in order on connectivity restoration.
package directory

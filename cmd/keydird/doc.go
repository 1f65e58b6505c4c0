// Package main runs the in-memory key directory used by keysync during
// development and tests. It stores published pre-key bundles as JSON
// documents under slash-separated paths and pushes updates to watchers.
//
// HTTP API
//
//	PUT /v1/{path}
//	    Store a JSON document at {path}, replacing any previous value.
//
//	GET /v1/{path}
//	    Return the document at {path}. When only descendants of {path}
//	    exist, return a JSON object mapping each immediate child segment
//	    to its document, which is how a user's devices are enumerated.
//
//	GET /v1/watch?path={path}
//	    Upgrade to a websocket. The current value at {path} is sent first
//	    (when one exists), then every update to {path} or any descendant.
//
// Behaviour
//
//   - All state is held in memory and lost on process exit.
//   - Slow watch subscribers drop updates rather than block writers.
//   - The default listen address is :8080.
//
// The directory only ever sees public bundles; private keys never leave the
// client's encrypted vault.
package main

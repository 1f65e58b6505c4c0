// Package commands defines the keysync CLI and wires dependencies for subcommands.
//
// Commands
//
//   - init         Provision this device for a user and publish its keys
//   - publish      Publish the current key bundle to the directory
//   - haskeys      Check whether a user has published keys
//   - status       Print local instance state and queued directory writes
//   - watch        Stream directory updates for a user
//   - fingerprint  Print the identity fingerprint
//   - rotate       Replace the identity key pair and republish
//   - reset        Delete every locally stored credential
//
// # Implementation
//
// The root command loads keysync.toml, applies flag overrides, builds the
// logging backend and constructs the dependency graph (vault, credential
// store, directory client, services) before any subcommand runs, so handlers
// share one app context.
package commands

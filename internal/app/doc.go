// Package app wires application dependencies for the CLI.
//
// It loads Config from the environment (and an optional .env file in the
// home directory), then builds the concrete stores, the relay client and
// the high-level services, exposing them via the Wire struct for commands
// to use.
package app

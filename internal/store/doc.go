// Package store provides client-local persistence for the messaging core.
//
// It contains three implementations of domain.KeyValueStore and the
// KeyStore that keeps the local private key on top of any of them:
//   - FileStore: one JSON file per namespace under the user's home directory
//   - MemoryStore: process-local maps for tests and throwaway sessions
//   - RedisStore: one Redis hash per namespace
//
// All stores are safe for concurrent use. Read failures of the identity slot
// are logged and reported as an absent key, so a corrupt or foreign record
// can never be used to decrypt.
package store

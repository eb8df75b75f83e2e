// Package keydirectory is the client view of the public key directory.
//
// Lookups are cache-first: records are cached by user id in the "peer_keys"
// namespace of an injected key-value store and only misses reach the
// directory. Entries never expire; ClearCache is the only invalidation.
package keydirectory

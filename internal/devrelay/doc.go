// Package devrelay is an in-memory key directory and message store for
// development and tests.
//
// It serves the same HTTP contract the client in internal/relay speaks:
// /keys for public keys and /messages for opaque envelopes, guarded by HS256
// bearer tokens whose subject is the user id. Nothing is persisted; a
// restart forgets every key and message. Request counts and latencies are
// exported on /metrics.
package devrelay

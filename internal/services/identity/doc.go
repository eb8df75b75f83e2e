// Package identity manages creation, replacement and inspection of the local
// key pair.
//
// The private key is generated lazily on first use, persisted through the
// domain.KeyStore and never leaves the device; the public half is published
// to the key directory.
package identity

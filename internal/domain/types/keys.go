package types

import (
	"encoding/base64"
	"fmt"
	"time"
)

// KeySize is the length in bytes of both halves of a box key pair.
const KeySize = 32

// PublicKey is a Curve25519 public key. It travels as standard base64.
type PublicKey [KeySize]byte

// Slice returns the key as a []byte.
func (k PublicKey) Slice() []byte { return k[:] }

// IsZero reports whether the key is unset.
func (k PublicKey) IsZero() bool { return k == PublicKey{} }

// MarshalText encodes the key as standard base64.
func (k PublicKey) MarshalText() ([]byte, error) {
	return []byte(base64.StdEncoding.EncodeToString(k[:])), nil
}

// UnmarshalText decodes a standard base64 key of exactly KeySize bytes.
func (k *PublicKey) UnmarshalText(b []byte) error {
	return decodeKey(k[:], b, "public")
}

// PrivateKey is a Curve25519 private key. It only ever lives on the client
// that generated it.
type PrivateKey [KeySize]byte

// Slice returns the key as a []byte.
func (k PrivateKey) Slice() []byte { return k[:] }

// IsZero reports whether the key is unset.
func (k PrivateKey) IsZero() bool { return k == PrivateKey{} }

// MarshalText encodes the key as standard base64 for local persistence.
func (k PrivateKey) MarshalText() ([]byte, error) {
	return []byte(base64.StdEncoding.EncodeToString(k[:])), nil
}

// UnmarshalText decodes a standard base64 key of exactly KeySize bytes.
func (k *PrivateKey) UnmarshalText(b []byte) error {
	return decodeKey(k[:], b, "private")
}

// ParsePublicKey decodes a base64 public key.
func ParsePublicKey(s string) (PublicKey, error) {
	var k PublicKey
	if err := k.UnmarshalText([]byte(s)); err != nil {
		return PublicKey{}, err
	}
	return k, nil
}

func decodeKey(dst []byte, src []byte, kind string) error {
	raw, err := base64.StdEncoding.DecodeString(string(src))
	if err != nil {
		return fmt.Errorf("%s key: %w", kind, err)
	}
	if len(raw) != KeySize {
		return fmt.Errorf("%s key: want %d bytes, got %d", kind, KeySize, len(raw))
	}
	copy(dst, raw)
	return nil
}

// KeyPair is a box key pair. The public half is shared through the key
// directory; the private half never leaves the client.
type KeyPair struct {
	Public  PublicKey
	Private PrivateKey
}

// StoredIdentity is the locally persisted private key, scoped to one user.
type StoredIdentity struct {
	UserID     UserID     `json:"userId"`
	PrivateKey PrivateKey `json:"privateKey"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// PeerPublicKeyRecord is a key directory entry.
type PeerPublicKeyRecord struct {
	UserID    UserID    `json:"userId"`
	PublicKey PublicKey `json:"publicKey"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// KeyStatus summarises the local key state of a user.
type KeyStatus struct {
	UserID        UserID      `json:"userId"`
	HasPrivateKey bool        `json:"hasPrivateKey"`
	Initialized   bool        `json:"isInitialized"`
	PublicKey     PublicKey   `json:"publicKey,omitzero"`
	Fingerprint   Fingerprint `json:"fingerprint,omitempty"`
}

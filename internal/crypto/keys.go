package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/nacl/box"

	"github.com/PatelShiv10/sgp-7-sem-sub001/internal/domain"
)

// Suite names the authenticated public-key encryption used for keys and
// envelopes.
const Suite = "x25519-xsalsa20-poly1305"

// GenerateKeyPair returns a fresh box key pair. The only failure is an
// exhausted randomness source, which callers should treat as fatal.
func GenerateKeyPair() (domain.KeyPair, error) {
	pub, priv, err := box.GenerateKey(rand.Reader)
	if err != nil {
		return domain.KeyPair{}, fmt.Errorf("generate %s key pair: %w", Suite, err)
	}
	kp := domain.KeyPair{Public: domain.PublicKey(*pub), Private: domain.PrivateKey(*priv)}
	Wipe(priv[:])
	return kp, nil
}

// PublicFromPrivate recomputes the public half of a stored private key.
func PublicFromPrivate(priv domain.PrivateKey) (domain.PublicKey, error) {
	if priv.IsZero() {
		return domain.PublicKey{}, fmt.Errorf("derive public key: %w", domain.ErrKeyAbsent)
	}
	pb, err := curve25519.X25519(priv.Slice(), curve25519.Basepoint)
	if err != nil {
		return domain.PublicKey{}, fmt.Errorf("derive public key: %w", err)
	}
	var pub domain.PublicKey
	copy(pub[:], pb)
	return pub, nil
}

// EncodeKey returns the standard base64 form used on the wire.
func EncodeKey(pub domain.PublicKey) string {
	return base64.StdEncoding.EncodeToString(pub[:])
}

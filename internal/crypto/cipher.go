package crypto

import (
	"crypto/rand"
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/crypto/nacl/box"

	"github.com/PatelShiv10/sgp-7-sem-sub001/internal/domain"
)

// NonceSize is the length of the random nonce carried by every envelope.
const NonceSize = 24

// Encrypt seals plaintext for recipientPub under a freshly generated
// ephemeral key pair. senderPriv only contributes SenderPublicKeyRef, which
// is informational and plays no part in the box.
func Encrypt(
	plaintext string,
	recipientPub domain.PublicKey,
	senderPriv domain.PrivateKey,
) (domain.Sealed, error) {
	if recipientPub.IsZero() {
		return domain.Sealed{}, errors.New("encrypt: recipient public key unset")
	}
	senderPub, err := PublicFromPrivate(senderPriv)
	if err != nil {
		return domain.Sealed{}, fmt.Errorf("encrypt: %w", err)
	}

	ephPub, ephPriv, err := box.GenerateKey(rand.Reader)
	if err != nil {
		return domain.Sealed{}, fmt.Errorf("encrypt: ephemeral key: %w", err)
	}
	defer Wipe(ephPriv[:])

	var nonce [NonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return domain.Sealed{}, fmt.Errorf("encrypt: nonce: %w", err)
	}

	peer := [domain.KeySize]byte(recipientPub)
	ct := box.Seal(nil, []byte(plaintext), &nonce, &peer, ephPriv)

	return domain.Sealed{
		Ciphertext:         ct,
		Nonce:              nonce,
		EphemeralPublicKey: domain.PublicKey(*ephPub),
		SenderPublicKeyRef: senderPub,
	}, nil
}

// Decrypt opens an envelope with the recipient's private key. Every failure
// is a *domain.DecryptionError; legacy envelopes wrap domain.ErrLegacyEnvelope.
func Decrypt(env domain.Envelope, recipientPriv domain.PrivateKey) (string, error) {
	if env.Variant() == domain.VariantLegacy {
		return "", &domain.DecryptionError{Reason: "legacy envelope", Err: domain.ErrLegacyEnvelope}
	}
	if recipientPriv.IsZero() {
		return "", &domain.DecryptionError{Reason: "no private key", Err: domain.ErrKeyAbsent}
	}
	if len(env.Nonce) != NonceSize {
		return "", &domain.DecryptionError{
			Reason: fmt.Sprintf("nonce is %d bytes, want %d", len(env.Nonce), NonceSize),
		}
	}
	if len(env.EphemeralPublicKey) != domain.KeySize {
		return "", &domain.DecryptionError{
			Reason: fmt.Sprintf("ephemeral key is %d bytes, want %d", len(env.EphemeralPublicKey), domain.KeySize),
		}
	}
	// X25519 masks the top bit of a u-coordinate; generated keys never set it.
	if env.EphemeralPublicKey[domain.KeySize-1]&0x80 != 0 {
		return "", &domain.DecryptionError{Reason: "non-canonical ephemeral key"}
	}
	if len(env.Ciphertext) < box.Overhead {
		return "", &domain.DecryptionError{Reason: "ciphertext too short"}
	}

	var (
		nonce [NonceSize]byte
		eph   [domain.KeySize]byte
	)
	copy(nonce[:], env.Nonce)
	copy(eph[:], env.EphemeralPublicKey)
	priv := [domain.KeySize]byte(recipientPriv)
	defer Wipe(priv[:])

	pt, ok := box.Open(nil, env.Ciphertext, &nonce, &eph, &priv)
	if !ok {
		return "", &domain.DecryptionError{Reason: "authentication failed"}
	}
	if !utf8.Valid(pt) {
		Wipe(pt)
		return "", &domain.DecryptionError{Reason: "plaintext is not valid UTF-8"}
	}
	return string(pt), nil
}

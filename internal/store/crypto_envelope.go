package store

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"
)

// The current supported version of the sealed identity record.
const sealedFormatVersion = 1

// Returned when the passphrase is incorrect or the sealed record was modified.
var errWrongPassphrase = errors.New("wrong passphrase or corrupted identity")

// sealedRecord is the JSON structure holding the ciphertext and KDF parameters.
type sealedRecord struct {
	V      int    `json:"v"`
	Salt   []byte `json:"salt"`
	N      int    `json:"scrypt_N"`
	R      int    `json:"scrypt_r"`
	P      int    `json:"scrypt_p"`
	Cipher []byte `json:"cipher"`
}

// scryptParams are the key derivation cost parameters.
type scryptParams struct{ N, R, P int }

func defaultScryptParams() scryptParams { return scryptParams{N: 1 << 15, R: 8, P: 1} }

// seal derives a key from passphrase and seals raw. The salt is bound as
// associated data and makes every derived key unique, so a zero nonce is safe.
func seal(passphrase string, raw []byte, kdf scryptParams) ([]byte, error) {
	var salt [16]byte
	if _, err := rand.Read(salt[:]); err != nil {
		return nil, err
	}
	key, err := scrypt.Key([]byte(passphrase), salt[:], kdf.N, kdf.R, kdf.P, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	var nonce [chacha20poly1305.NonceSize]byte
	ct := aead.Seal(nil, nonce[:], raw, salt[:])

	return json.Marshal(sealedRecord{
		V:      sealedFormatVersion,
		Salt:   salt[:],
		N:      kdf.N,
		R:      kdf.R,
		P:      kdf.P,
		Cipher: ct,
	})
}

// open reverses seal using a key derived from passphrase.
func open(passphrase string, b []byte) ([]byte, error) {
	var rec sealedRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, err
	}
	if rec.V == 0 || rec.V > sealedFormatVersion {
		return nil, fmt.Errorf("unsupported sealed record version %d", rec.V)
	}

	key, err := scrypt.Key([]byte(passphrase), rec.Salt, rec.N, rec.R, rec.P, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	var nonce [chacha20poly1305.NonceSize]byte
	pt, err := aead.Open(nil, nonce[:], rec.Cipher, rec.Salt)
	if err != nil {
		return nil, errWrongPassphrase
	}
	return pt, nil
}

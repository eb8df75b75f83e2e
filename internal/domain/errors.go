package domain

import (
	"errors"
	"fmt"
)

// ErrKeyAbsent reports that a private or public key is not available for a
// user. Callers test for it with errors.Is.
var ErrKeyAbsent = errors.New("key absent")

// ErrLegacyEnvelope reports an envelope that predates per-message ephemeral
// keys and can never be opened.
var ErrLegacyEnvelope = errors.New("legacy envelope without ephemeral key")

// ErrMessageNotFound is returned when deleting a message the store does not know.
var ErrMessageNotFound = errors.New("message not found")

// ErrForbidden is returned when the store refuses an operation for the
// authenticated user, such as deleting another user's message.
var ErrForbidden = errors.New("forbidden")

// KeyAbsentError names the user whose key is missing. Peer is true when the
// missing key is a directory entry rather than the local private key.
type KeyAbsentError struct {
	UserID UserID
	Peer   bool
}

func (e *KeyAbsentError) Error() string {
	if e.Peer {
		return fmt.Sprintf("no public key published for %q", e.UserID)
	}
	return fmt.Sprintf("no private key stored for %q", e.UserID)
}

// Unwrap lets errors.Is match ErrKeyAbsent.
func (e *KeyAbsentError) Unwrap() error { return ErrKeyAbsent }

// IdentityMismatchError reports a stored private key that belongs to a
// different user than the one requested. It counts as an absent key.
type IdentityMismatchError struct {
	Stored    UserID
	Requested UserID
}

func (e *IdentityMismatchError) Error() string {
	return fmt.Sprintf("stored identity %q does not match %q", e.Stored, e.Requested)
}

// Unwrap lets errors.Is match ErrKeyAbsent.
func (e *IdentityMismatchError) Unwrap() error { return ErrKeyAbsent }

// DecryptionError is returned for any envelope that cannot be opened:
// malformed fields, a legacy variant, a failed authentication check or a
// plaintext that is not UTF-8.
type DecryptionError struct {
	Reason string
	Err    error
}

func (e *DecryptionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decrypt: %s: %v", e.Reason, e.Err)
	}
	return "decrypt: " + e.Reason
}

func (e *DecryptionError) Unwrap() error { return e.Err }

// TransportError wraps a failed call to the key directory or message store.
// StatusCode is zero for network failures and timeouts.
type TransportError struct {
	Op         string
	StatusCode int
	Retryable  bool
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsRetryable reports whether err is a transport failure worth retrying.
func IsRetryable(err error) bool {
	var te *TransportError
	return errors.As(err, &te) && te.Retryable
}

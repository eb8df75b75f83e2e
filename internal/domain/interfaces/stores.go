package interfaces

import (
	"context"

	domaintypes "github.com/PatelShiv10/sgp-7-sem-sub001/internal/domain/types"
)

// KeyValueStore is client-local persistence scoped by namespace. Values are
// opaque bytes; a missing key is reported with ok=false, not an error.
type KeyValueStore interface {
	Get(ctx context.Context, namespace, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, namespace, key string, value []byte) error
	Delete(ctx context.Context, namespace, key string) error
	Clear(ctx context.Context, namespace string) error
}

// KeyStore holds the private key of the local identity.
type KeyStore interface {
	// Store overwrites any previously stored identity.
	Store(ctx context.Context, userID domaintypes.UserID, priv domaintypes.PrivateKey) error
	// Load returns the stored identity or an error explaining why it is absent.
	Load(ctx context.Context, userID domaintypes.UserID) (domaintypes.StoredIdentity, error)
	// Retrieve returns the private key only if it belongs to userID.
	Retrieve(ctx context.Context, userID domaintypes.UserID) (domaintypes.PrivateKey, bool)
	Exists(ctx context.Context, userID domaintypes.UserID) bool
	// Remove clears the stored identity unconditionally.
	Remove(ctx context.Context) error
}

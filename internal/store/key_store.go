package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/PatelShiv10/sgp-7-sem-sub001/internal/crypto"
	"github.com/PatelShiv10/sgp-7-sem-sub001/internal/domain"
)

const (
	// IdentityNamespace holds the single local identity slot.
	IdentityNamespace = "identity"
	privateKeySlot    = "private_key"
)

// KeyStore keeps one private key per device on top of a KeyValueStore.
// Storing a new identity replaces the previous one.
type KeyStore struct {
	kv         domain.KeyValueStore
	passphrase string
	kdf        scryptParams
	log        *zap.Logger
	now        func() time.Time

	mu sync.Mutex
}

// KeyStoreOption configures a KeyStore.
type KeyStoreOption func(*KeyStore)

// WithPassphrase seals the stored record with a key derived from p.
func WithPassphrase(p string) KeyStoreOption {
	return func(s *KeyStore) { s.passphrase = p }
}

// WithLogger sets the logger used for fail-closed read diagnostics.
func WithLogger(l *zap.Logger) KeyStoreOption {
	return func(s *KeyStore) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock overrides the time source used for CreatedAt.
func WithClock(now func() time.Time) KeyStoreOption {
	return func(s *KeyStore) { s.now = now }
}

// WithScryptCost lowers or raises the sealing cost (N must be a power of two).
func WithScryptCost(n, r, p int) KeyStoreOption {
	return func(s *KeyStore) { s.kdf = scryptParams{N: n, R: r, P: p} }
}

// NewKeyStore returns a KeyStore over kv.
func NewKeyStore(kv domain.KeyValueStore, opts ...KeyStoreOption) *KeyStore {
	s := &KeyStore{
		kv:  kv,
		kdf: defaultScryptParams(),
		log: zap.NewNop(),
		now: time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Store persists priv as the identity of userID.
func (s *KeyStore) Store(ctx context.Context, userID domain.UserID, priv domain.PrivateKey) error {
	if userID == "" {
		return errors.New("store identity: empty user id")
	}
	if priv.IsZero() {
		return errors.New("store identity: empty private key")
	}

	raw, err := json.Marshal(domain.StoredIdentity{
		UserID:     userID,
		PrivateKey: priv,
		CreatedAt:  s.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("store identity: %w", err)
	}
	defer crypto.Wipe(raw)

	value := raw
	if s.passphrase != "" {
		if value, err = seal(s.passphrase, raw, s.kdf); err != nil {
			return fmt.Errorf("store identity: seal: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Set(ctx, IdentityNamespace, privateKeySlot, value); err != nil {
		return fmt.Errorf("store identity: %w", err)
	}

	fields := []zap.Field{zap.String("user_id", userID.String())}
	if pub, err := crypto.PublicFromPrivate(priv); err == nil {
		fields = append(fields, zap.String("fingerprint", crypto.Fingerprint(pub).String()))
	}
	s.log.Info("identity stored", fields...)
	return nil
}

// Load returns the stored identity of userID. A missing slot, an unreadable
// record and a record of another user are all errors matching
// domain.ErrKeyAbsent.
func (s *KeyStore) Load(ctx context.Context, userID domain.UserID) (domain.StoredIdentity, error) {
	s.mu.Lock()
	value, ok, err := s.kv.Get(ctx, IdentityNamespace, privateKeySlot)
	s.mu.Unlock()
	if err != nil {
		return domain.StoredIdentity{}, fmt.Errorf("%w: read: %w", &domain.KeyAbsentError{UserID: userID}, err)
	}
	if !ok {
		return domain.StoredIdentity{}, &domain.KeyAbsentError{UserID: userID}
	}

	raw := value
	if s.passphrase != "" {
		if raw, err = open(s.passphrase, value); err != nil {
			return domain.StoredIdentity{}, fmt.Errorf("%w: %w", &domain.KeyAbsentError{UserID: userID}, err)
		}
		defer crypto.Wipe(raw)
	}

	var id domain.StoredIdentity
	if err := json.Unmarshal(raw, &id); err != nil {
		return domain.StoredIdentity{}, fmt.Errorf("%w: decode: %w", &domain.KeyAbsentError{UserID: userID}, err)
	}
	if id.UserID != userID {
		return domain.StoredIdentity{}, &domain.IdentityMismatchError{Stored: id.UserID, Requested: userID}
	}
	if id.PrivateKey.IsZero() {
		return domain.StoredIdentity{}, &domain.KeyAbsentError{UserID: userID}
	}
	return id, nil
}

// Retrieve returns the private key of userID, or false when it is absent for
// any reason. Unexpected read failures are logged, never surfaced.
func (s *KeyStore) Retrieve(ctx context.Context, userID domain.UserID) (domain.PrivateKey, bool) {
	id, err := s.Load(ctx, userID)
	if err != nil {
		if _, empty := err.(*domain.KeyAbsentError); empty {
			return domain.PrivateKey{}, false
		}
		s.log.Warn("identity unreadable, treating as absent",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		return domain.PrivateKey{}, false
	}
	return id.PrivateKey, true
}

// Exists reports whether a usable private key is stored for userID.
func (s *KeyStore) Exists(ctx context.Context, userID domain.UserID) bool {
	_, ok := s.Retrieve(ctx, userID)
	return ok
}

// Remove clears the identity slot regardless of its owner.
func (s *KeyStore) Remove(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Delete(ctx, IdentityNamespace, privateKeySlot); err != nil {
		return fmt.Errorf("remove identity: %w", err)
	}
	s.log.Info("identity removed")
	return nil
}

// Compile-time assertion that KeyStore implements domain.KeyStore.
var _ domain.KeyStore = (*KeyStore)(nil)

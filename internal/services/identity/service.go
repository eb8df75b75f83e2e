package identity

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/PatelShiv10/sgp-7-sem-sub001/internal/crypto"
	"github.com/PatelShiv10/sgp-7-sem-sub001/internal/domain"
)

// selfTestMessage is round-tripped by Validate.
const selfTestMessage = "lawmate key self-test"

// Publisher publishes and withdraws public keys in the directory.
type Publisher interface {
	Publish(ctx context.Context, userID domain.UserID, pub domain.PublicKey) error
	Unpublish(ctx context.Context, userID domain.UserID) error
}

// Service manages the local identity using a key store and a directory.
type Service struct {
	keys      domain.KeyStore
	publisher Publisher
	log       *zap.Logger
}

// New returns an identity service. A nil logger disables logging.
func New(keys domain.KeyStore, publisher Publisher, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{keys: keys, publisher: publisher, log: log}
}

// Initialize makes sure userID has a key pair. An existing private key is
// kept as is. Otherwise a new pair is generated, stored and published; if
// publishing fails the stored key is removed again so a later attempt
// starts clean.
func (s *Service) Initialize(ctx context.Context, userID domain.UserID) (domain.KeyStatus, error) {
	if userID == "" {
		return domain.KeyStatus{}, errors.New("initialize keys: empty user id")
	}
	if s.keys.Exists(ctx, userID) {
		return s.Status(ctx, userID), nil
	}

	kp, err := crypto.GenerateKeyPair()
	if err != nil {
		return domain.KeyStatus{}, err
	}
	defer crypto.Wipe(kp.Private[:])

	if err := s.keys.Store(ctx, userID, kp.Private); err != nil {
		return domain.KeyStatus{}, fmt.Errorf("initialize keys: %w", err)
	}
	if err := s.publisher.Publish(ctx, userID, kp.Public); err != nil {
		if rmErr := s.keys.Remove(ctx); rmErr != nil {
			s.log.Error("rollback of unpublished key failed", zap.Error(rmErr))
		}
		return domain.KeyStatus{}, fmt.Errorf("initialize keys: publish: %w", err)
	}

	s.log.Info("keys initialized",
		zap.String("user_id", userID.String()),
		zap.String("suite", crypto.Suite),
		zap.String("fingerprint", crypto.Fingerprint(kp.Public).String()),
	)
	return s.Status(ctx, userID), nil
}

// Regenerate replaces the key pair of userID. Messages sealed for the old
// public key can no longer be opened, and peers keep the old key until they
// clear their cache.
func (s *Service) Regenerate(ctx context.Context, userID domain.UserID) (domain.KeyStatus, error) {
	if err := s.keys.Remove(ctx); err != nil {
		return domain.KeyStatus{}, fmt.Errorf("regenerate keys: %w", err)
	}
	return s.Initialize(ctx, userID)
}

// Revoke withdraws the public key of userID from the directory, then erases
// the local private key. Peers can no longer compose messages for userID.
// When the directory call fails the local key is kept.
func (s *Service) Revoke(ctx context.Context, userID domain.UserID) error {
	if userID == "" {
		return errors.New("revoke keys: empty user id")
	}
	if err := s.publisher.Unpublish(ctx, userID); err != nil {
		return fmt.Errorf("revoke keys: %w", err)
	}
	if err := s.keys.Remove(ctx); err != nil {
		return fmt.Errorf("revoke keys: %w", err)
	}
	s.log.Info("keys revoked", zap.String("user_id", userID.String()))
	return nil
}

// Status reports the local key state of userID.
func (s *Service) Status(ctx context.Context, userID domain.UserID) domain.KeyStatus {
	st := domain.KeyStatus{UserID: userID}
	priv, ok := s.keys.Retrieve(ctx, userID)
	if !ok {
		return st
	}
	defer crypto.Wipe(priv[:])

	st.HasPrivateKey = true
	pub, err := crypto.PublicFromPrivate(priv)
	if err != nil {
		return st
	}
	st.Initialized = true
	st.PublicKey = pub
	st.Fingerprint = crypto.Fingerprint(pub)
	return st
}

// PublicKey returns the public half of the stored key of userID.
func (s *Service) PublicKey(ctx context.Context, userID domain.UserID) (domain.PublicKey, error) {
	st := s.Status(ctx, userID)
	if !st.Initialized {
		return domain.PublicKey{}, &domain.KeyAbsentError{UserID: userID}
	}
	return st.PublicKey, nil
}

// Validate checks that the stored key can open a message sealed for its own
// public key.
func (s *Service) Validate(ctx context.Context, userID domain.UserID) error {
	priv, ok := s.keys.Retrieve(ctx, userID)
	if !ok {
		return &domain.KeyAbsentError{UserID: userID}
	}
	defer crypto.Wipe(priv[:])

	pub, err := crypto.PublicFromPrivate(priv)
	if err != nil {
		return err
	}
	sealed, err := crypto.Encrypt(selfTestMessage, pub, priv)
	if err != nil {
		return fmt.Errorf("validate keys: %w", err)
	}
	got, err := crypto.Decrypt(domain.Envelope{
		Ciphertext:         sealed.Ciphertext,
		Nonce:              sealed.Nonce[:],
		EphemeralPublicKey: sealed.EphemeralPublicKey[:],
	}, priv)
	if err != nil {
		return fmt.Errorf("validate keys: %w", err)
	}
	if got != selfTestMessage {
		return errors.New("validate keys: round trip mismatch")
	}
	return nil
}

// Compile-time assertion that Service implements domain.IdentityService.
var _ domain.IdentityService = (*Service)(nil)

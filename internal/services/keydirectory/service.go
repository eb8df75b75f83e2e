package keydirectory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/PatelShiv10/sgp-7-sem-sub001/internal/crypto"
	"github.com/PatelShiv10/sgp-7-sem-sub001/internal/domain"
)

// CacheNamespace is the key-value namespace holding cached directory records.
const CacheNamespace = "peer_keys"

// MaxBatchKeys is the largest id list sent in one directory batch request.
const MaxBatchKeys = 100

// Service publishes the local public key and resolves peer keys.
type Service struct {
	dir   domain.KeyDirectory
	cache domain.KeyValueStore
	log   *zap.Logger

	mu     sync.Mutex
	flight singleflight.Group
}

// New returns a Service over dir caching into cache. A nil logger disables logging.
func New(dir domain.KeyDirectory, cache domain.KeyValueStore, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{dir: dir, cache: cache, log: log}
}

// Publish upserts the public key of userID in the directory.
func (s *Service) Publish(ctx context.Context, userID domain.UserID, pub domain.PublicKey) error {
	if userID == "" {
		return errors.New("publish key: empty user id")
	}
	if pub.IsZero() {
		return errors.New("publish key: empty public key")
	}
	if err := s.dir.PublishKey(ctx, userID, pub); err != nil {
		return err
	}
	s.log.Info("public key published",
		zap.String("user_id", userID.String()),
		zap.String("fingerprint", crypto.Fingerprint(pub).String()),
	)
	return nil
}

// Unpublish removes the public key of userID from the directory and from
// the local cache. Removing a key that was never published is not an error.
func (s *Service) Unpublish(ctx context.Context, userID domain.UserID) error {
	if userID == "" {
		return errors.New("unpublish key: empty user id")
	}
	if err := s.dir.DeleteKey(ctx, userID); err != nil {
		return err
	}
	s.mu.Lock()
	err := s.cache.Delete(ctx, CacheNamespace, userID.String())
	s.mu.Unlock()
	if err != nil {
		s.log.Warn("dropping cached key failed", zap.String("peer", userID.String()), zap.Error(err))
	}
	s.log.Info("public key unpublished", zap.String("user_id", userID.String()))
	return nil
}

// FetchOne returns the record of peer. A peer without a published key
// yields an error matching domain.ErrKeyAbsent; network failures are
// *domain.TransportError and are never cached.
func (s *Service) FetchOne(ctx context.Context, peer domain.UserID) (domain.PeerPublicKeyRecord, error) {
	if peer == "" {
		return domain.PeerPublicKeyRecord{}, &domain.KeyAbsentError{UserID: peer, Peer: true}
	}
	if rec, ok := s.Cached(ctx, peer); ok {
		return rec, nil
	}

	// The shared fetch outlives any single caller; each caller still stops
	// waiting when its own context ends.
	flightCtx := context.WithoutCancel(ctx)
	ch := s.flight.DoChan(peer.String(), func() (any, error) {
		rec, err := s.dir.FetchKey(flightCtx, peer)
		if err != nil {
			return nil, err
		}
		rec.UserID = peer
		s.put(flightCtx, rec)
		return rec, nil
	})
	select {
	case <-ctx.Done():
		return domain.PeerPublicKeyRecord{}, &domain.TransportError{
			Op:        "fetch key",
			Retryable: errors.Is(ctx.Err(), context.DeadlineExceeded),
			Err:       ctx.Err(),
		}
	case res := <-ch:
		if res.Err != nil {
			return domain.PeerPublicKeyRecord{}, res.Err
		}
		return res.Val.(domain.PeerPublicKeyRecord), nil
	}
}

// FetchMany resolves peers, asking the directory only for cache misses in
// batches of at most MaxBatchKeys ids. Peers without a published key are
// absent from the result. When a batch fails, the records already resolved
// are returned together with the error.
func (s *Service) FetchMany(
	ctx context.Context,
	peers []domain.UserID,
) (map[domain.UserID]domain.PeerPublicKeyRecord, error) {
	out := make(map[domain.UserID]domain.PeerPublicKeyRecord, len(peers))
	seen := make(map[domain.UserID]struct{}, len(peers))
	var misses []domain.UserID
	for _, p := range peers {
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		if rec, ok := s.Cached(ctx, p); ok {
			out[p] = rec
			continue
		}
		misses = append(misses, p)
	}
	if len(misses) == 0 {
		return out, nil
	}

	for start := 0; start < len(misses); start += MaxBatchKeys {
		batch := misses[start:min(start+MaxBatchKeys, len(misses))]
		found, err := s.dir.FetchKeys(ctx, batch)
		if err != nil {
			return out, err
		}
		for _, p := range batch {
			rec, ok := found[p]
			if !ok || rec.PublicKey.IsZero() {
				continue
			}
			if rec.UserID == "" {
				rec.UserID = p
			}
			s.put(ctx, rec)
			out[p] = rec
		}
	}
	s.log.Debug("peer keys fetched", zap.Int("requested", len(misses)), zap.Int("found", len(out)))
	return out, nil
}

// Cached returns the cached record of peer without any network I/O.
func (s *Service) Cached(ctx context.Context, peer domain.UserID) (domain.PeerPublicKeyRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok, err := s.cache.Get(ctx, CacheNamespace, peer.String())
	if err != nil || !ok {
		return domain.PeerPublicKeyRecord{}, false
	}
	var rec domain.PeerPublicKeyRecord
	if err := json.Unmarshal(raw, &rec); err != nil || rec.PublicKey.IsZero() {
		s.log.Warn("dropping unreadable cached key", zap.String("peer", peer.String()))
		_ = s.cache.Delete(ctx, CacheNamespace, peer.String())
		return domain.PeerPublicKeyRecord{}, false
	}
	return rec, true
}

// ClearCache drops every cached record.
func (s *Service) ClearCache(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.cache.Clear(ctx, CacheNamespace); err != nil {
		return fmt.Errorf("clear key cache: %w", err)
	}
	return nil
}

// put caches rec. A failing cache only costs a later refetch.
func (s *Service) put(ctx context.Context, rec domain.PeerPublicKeyRecord) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.cache.Set(ctx, CacheNamespace, rec.UserID.String(), raw); err != nil {
		s.log.Warn("caching peer key failed", zap.String("peer", rec.UserID.String()), zap.Error(err))
	}
}

// Compile-time assertion that Service implements domain.KeyDirectoryService.
var _ domain.KeyDirectoryService = (*Service)(nil)

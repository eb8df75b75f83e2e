package relay

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/PatelShiv10/sgp-7-sem-sub001/internal/domain"
)

type publishKeyRequest struct {
	UserID    domain.UserID    `json:"userId"`
	PublicKey domain.PublicKey `json:"publicKey"`
}

type batchKeysRequest struct {
	UserIDs []domain.UserID `json:"userIds"`
}

type batchKeysResponse struct {
	Keys map[domain.UserID]domain.PeerPublicKeyRecord `json:"keys"`
}

// PublishKey stores or replaces the public key of userID.
func (c *HTTP) PublishKey(ctx context.Context, userID domain.UserID, pub domain.PublicKey) error {
	return c.do(ctx, "publish key", http.MethodPut, "/keys",
		publishKeyRequest{UserID: userID, PublicKey: pub}, nil)
}

// FetchKey returns the directory record of userID. A record-level 404 is
// reported as a *domain.KeyAbsentError; any other 404 stays a transport error.
func (c *HTTP) FetchKey(ctx context.Context, userID domain.UserID) (domain.PeerPublicKeyRecord, error) {
	var rec domain.PeerPublicKeyRecord
	err := c.do(ctx, "fetch key", http.MethodGet, "/keys/"+url.PathEscape(userID.String()), nil, &rec)
	if isNotFound(err) {
		return domain.PeerPublicKeyRecord{}, &domain.KeyAbsentError{UserID: userID, Peer: true}
	}
	if err != nil {
		return domain.PeerPublicKeyRecord{}, err
	}
	if rec.PublicKey.IsZero() {
		return domain.PeerPublicKeyRecord{}, &domain.KeyAbsentError{UserID: userID, Peer: true}
	}
	return rec, nil
}

// FetchKeys returns the records found for userIDs; unknown ids are omitted.
func (c *HTTP) FetchKeys(
	ctx context.Context,
	userIDs []domain.UserID,
) (map[domain.UserID]domain.PeerPublicKeyRecord, error) {
	var out batchKeysResponse
	if err := c.do(ctx, "fetch keys", http.MethodPost, "/keys/batch",
		batchKeysRequest{UserIDs: userIDs}, &out); err != nil {
		return nil, err
	}
	if out.Keys == nil {
		out.Keys = map[domain.UserID]domain.PeerPublicKeyRecord{}
	}
	return out.Keys, nil
}

// DeleteKey removes the directory entry of userID. Deleting a missing entry
// is not an error.
func (c *HTTP) DeleteKey(ctx context.Context, userID domain.UserID) error {
	err := c.do(ctx, "delete key", http.MethodDelete, "/keys/"+url.PathEscape(userID.String()), nil, nil)
	if isNotFound(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete key %s: %w", userID, err)
	}
	return nil
}

// Compile-time assertion that HTTP implements domain.KeyDirectory.
var _ domain.KeyDirectory = (*HTTP)(nil)

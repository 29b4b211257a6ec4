package auth

import (
	"context"
	"time"
)

const revokedTokenKeyPrefix = "revoked_token:"

// KV is the key-value surface the deny-list needs; *cache.Client satisfies it.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RevocationList records logged-out token ids until their natural expiry.
// Without a backing KV every token stays valid for its full lifetime.
type RevocationList struct {
	kv  KV
	now func() time.Time
}

func NewRevocationList(kv KV) *RevocationList {
	return &RevocationList{kv: kv, now: time.Now}
}

// Revoke deny-lists p's token. Tokens without an id or already expired are ignored.
func (r *RevocationList) Revoke(ctx context.Context, p Principal) error {
	if r == nil || r.kv == nil || p.TokenID == "" {
		return nil
	}
	ttl := p.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return nil
	}
	return r.kv.Set(ctx, revokedTokenKeyPrefix+p.TokenID, []byte("1"), ttl)
}

// IsRevoked reports whether tokenID was deny-listed. Lookup failures count as not revoked.
func (r *RevocationList) IsRevoked(ctx context.Context, tokenID string) bool {
	if r == nil || r.kv == nil || tokenID == "" {
		return false
	}
	data, err := r.kv.Get(ctx, revokedTokenKeyPrefix+tokenID)
	return err == nil && data != nil
}

package auth

import (
	"context"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
)

const revokedKeyPrefix = "auth:revoked:"

// RevocationChecker reports whether a token id was signed out.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) bool
}

// Denylist keeps signed-out token ids until the token would have expired anyway.
type Denylist struct {
	cache *cache.Cache[string]
	now   func() time.Time
}

// NewDenylist wraps a string cache.
func NewDenylist(c *cache.Cache[string]) *Denylist {
	return &Denylist{cache: c, now: time.Now}
}

// Revoke stores tokenID until expiresAt. Already-expired tokens are ignored.
func (d *Denylist) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(d.now())
	if tokenID == "" || ttl <= 0 {
		return nil
	}
	return d.cache.Set(ctx, revokedKeyPrefix+tokenID, "1", store.WithExpiration(ttl))
}

// IsRevoked treats any lookup failure, including a cache miss, as not revoked.
func (d *Denylist) IsRevoked(ctx context.Context, tokenID string) bool {
	if d == nil || tokenID == "" {
		return false
	}
	val, err := d.cache.Get(ctx, revokedKeyPrefix+tokenID)
	return err == nil && val != ""
}

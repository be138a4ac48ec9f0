package ports

import (
	"context"
	"time"
)

// RevocationStore records tokens invalidated before their natural expiry.
type RevocationStore interface {
	// Revoke marks token as revoked for ttl. Calling it again has the same
	// effect. A non-positive ttl records nothing.
	Revoke(ctx context.Context, token string, ttl time.Duration) error

	// IsRevoked reports whether token has a live revocation entry. When the
	// store cannot answer it returns true together with the error.
	IsRevoked(ctx context.Context, token string) (bool, error)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/layer-3/taskboard/core"
	"github.com/layer-3/taskboard/internal/logctx"
	"github.com/layer-3/taskboard/ports"
)

const bearerPrefix = "Bearer "

// Gate turns an Authorization header into a Principal. Checks run in a fixed
// order and stop at the first failure: header shape, revocation, signature
// and expiry, then identity lookup.
type Gate struct {
	tokens      ports.Tokenizer
	revocations ports.RevocationStore
	users       ports.UserRepository
}

func NewGate(tokens ports.Tokenizer, revocations ports.RevocationStore, users ports.UserRepository) *Gate {
	return &Gate{
		tokens:      tokens,
		revocations: revocations,
		users:       users,
	}
}

// Authenticate resolves the bearer token in header. Rejections match
// core.ErrUnauthenticated; a token whose user no longer exists also matches
// core.ErrUserNotFound.
func (g *Gate) Authenticate(ctx context.Context, header string) (core.Principal, error) {
	token, ok := bearerToken(header)
	if !ok {
		return core.Principal{}, core.ErrMissingToken
	}

	revoked, err := g.revocations.IsRevoked(ctx, token)
	if err != nil {
		logctx.From(ctx).Warn("revocation_check_failed", "error", err)
	}
	if revoked || err != nil {
		return core.Principal{}, core.ErrTokenRevoked
	}

	claims, err := g.tokens.Verify(token)
	if err != nil {
		logctx.From(ctx).Debug("token_rejected", "error", err)
		return core.Principal{}, core.ErrBadToken
	}

	user, err := g.users.UserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			return core.Principal{}, fmt.Errorf("%w: %w", core.ErrUnauthenticated, core.ErrUserNotFound)
		}
		return core.Principal{}, fmt.Errorf("service/gate: load identity: %w", err)
	}

	return core.Principal{
		Identity:  user.Identity(),
		Token:     token,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt,
	}, nil
}

// Authorize returns nil when identity holds one of roles, core.ErrForbidden
// otherwise.
func Authorize(identity core.Identity, roles ...core.Role) error {
	if identity.HasRole(roles...) {
		return nil
	}
	return core.ErrForbidden
}

func bearerToken(header string) (string, bool) {
	rest, ok := strings.CutPrefix(header, bearerPrefix)
	if !ok {
		return "", false
	}
	token := strings.TrimSpace(rest)
	return token, token != ""
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/layer-3/taskboard/adapters/tokenizer"
	"github.com/layer-3/taskboard/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticateResolvesIdentity(t *testing.T) {
	f := newFixture(t)
	s := f.register(t, "Ada", "ada@example.com")

	p := f.principal(t, s.Token)
	assert.Equal(t, s.User, p.Identity)
	assert.Equal(t, s.Token, p.Token)
	assert.NotEmpty(t, p.TokenID)
	assert.True(t, f.clock.Now().Add(tokenizer.DefaultTTL).Equal(p.ExpiresAt))
}

func TestAuthenticateRequiresBearerHeader(t *testing.T) {
	f := newFixture(t)
	s := f.register(t, "Ada", "ada@example.com")

	for _, header := range []string{"", "Basic abc", "Bearer ", "Bearer    ", "bearer " + s.Token, s.Token} {
		_, err := f.gate.Authenticate(context.Background(), header)
		assert.ErrorIs(t, err, core.ErrMissingToken, "header %q", header)
		assert.ErrorIs(t, err, core.ErrUnauthenticated)
	}
}

func TestAuthenticateRejectsExpiredToken(t *testing.T) {
	f := newFixture(t, tokenizer.WithTTL(10*time.Second))
	s := f.register(t, "Ada", "ada@example.com")

	f.principal(t, s.Token)

	f.clock.Advance(11 * time.Second)
	_, err := f.gate.Authenticate(context.Background(), "Bearer "+s.Token)
	assert.ErrorIs(t, err, core.ErrBadToken)
	assert.ErrorIs(t, err, core.ErrUnauthenticated)
}

func TestAuthenticateRejectsGarbage(t *testing.T) {
	f := newFixture(t)

	_, err := f.gate.Authenticate(context.Background(), "Bearer not.a.jwt")
	assert.ErrorIs(t, err, core.ErrBadToken)
}

func TestScenarioRevokedTokenIsRejected(t *testing.T) {
	f := newFixture(t)
	s := f.register(t, "Ada", "ada@example.com")

	require.NoError(t, f.store.Revoke(context.Background(), s.Token, 604800*time.Second))

	_, err := f.gate.Authenticate(context.Background(), "Bearer "+s.Token)
	assert.ErrorIs(t, err, core.ErrUnauthenticated)
	assert.ErrorIs(t, err, core.ErrTokenRevoked)
}

func TestScenarioAuthorize(t *testing.T) {
	assert.ErrorIs(t, Authorize(core.Identity{Role: core.RoleUser}, core.RoleAdmin), core.ErrForbidden)
	assert.NoError(t, Authorize(core.Identity{Role: core.RoleAdmin}, core.RoleAdmin))
	assert.NoError(t, Authorize(core.Identity{Role: core.RoleUser}, core.RoleUser, core.RoleAdmin))
	assert.ErrorIs(t, Authorize(core.Identity{Role: core.RoleAdmin}), core.ErrForbidden)
}

func TestScenarioDeletedIdentityIsRejected(t *testing.T) {
	f := newFixture(t)
	s := f.register(t, "Ada", "ada@example.com")

	require.NoError(t, f.admin.DeleteUser(context.Background(), s.User.ID))

	_, err := f.gate.Authenticate(context.Background(), "Bearer "+s.Token)
	assert.ErrorIs(t, err, core.ErrUnauthenticated)
	assert.ErrorIs(t, err, core.ErrUserNotFound)
}

func TestAuthenticateFailsClosed(t *testing.T) {
	f := newFixture(t)
	s := f.register(t, "Ada", "ada@example.com")

	gate := NewGate(f.tokens, unreachableStore{}, f.users)
	_, err := gate.Authenticate(context.Background(), "Bearer "+s.Token)
	assert.ErrorIs(t, err, core.ErrTokenRevoked)
}

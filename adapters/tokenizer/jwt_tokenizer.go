package tokenizer

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/layer-3/taskboard/core"
	"github.com/layer-3/taskboard/ports"
)

// DefaultTTL is the validity window of issued tokens unless configured otherwise
const DefaultTTL = 7 * 24 * time.Hour

// Option configures a JWTTokenizer
type Option func(*JWTTokenizer)

// WithTTL overrides the validity window of issued tokens
func WithTTL(ttl time.Duration) Option {
	return func(j *JWTTokenizer) {
		if ttl > 0 {
			j.ttl = ttl
		}
	}
}

// WithClock replaces the time source used for issuing and verifying
func WithClock(now func() time.Time) Option {
	return func(j *JWTTokenizer) {
		if now != nil {
			j.now = now
		}
	}
}

// JWTTokenizer implements the Tokenizer interface using HS256 JWTs
type JWTTokenizer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTTokenizer creates a new JWT tokenizer
func NewJWTTokenizer(secret string, opts ...Option) (*JWTTokenizer, error) {
	if secret == "" {
		return nil, errors.New("tokenizer: empty signing secret")
	}

	j := &JWTTokenizer{
		secret: []byte(secret),
		ttl:    DefaultTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}

	return j, nil
}

var _ ports.Tokenizer = (*JWTTokenizer)(nil)

// TTL returns the validity window of issued tokens
func (j *JWTTokenizer) TTL() time.Duration {
	return j.ttl
}

// Issue signs an access token for subject
func (j *JWTTokenizer) Issue(subject string, role core.Role) (string, core.Claims, error) {
	if subject == "" {
		return "", core.Claims{}, fmt.Errorf("failed to sign token: empty subject")
	}

	// NumericDate has second precision; truncate so the returned claims
	// match what Verify will later read back.
	now := j.now().Truncate(time.Second)
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Role: string(role),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedToken, err := token.SignedString(j.secret)
	if err != nil {
		return "", core.Claims{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return signedToken, toCore(&claims), nil
}

// Verify parses tokenStr and checks its signature and expiry
func (j *JWTTokenizer) Verify(tokenStr string) (core.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return core.Claims{}, fmt.Errorf("%w: %w", core.ErrInvalidToken, err)
	}

	if !token.Valid {
		return core.Claims{}, core.ErrInvalidToken
	}

	claims, ok := token.Claims.(*AccessClaims)
	if !ok {
		return core.Claims{}, fmt.Errorf("%w: invalid claims type", core.ErrInvalidToken)
	}

	if claims.Subject == "" || !core.Role(claims.Role).Valid() {
		return core.Claims{}, fmt.Errorf("%w: missing subject or role", core.ErrInvalidToken)
	}

	return toCore(claims), nil
}

func toCore(claims *AccessClaims) core.Claims {
	out := core.Claims{
		ID:      claims.ID,
		Subject: claims.Subject,
		Role:    core.Role(claims.Role),
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out
}

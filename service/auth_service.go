package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/layer-3/taskboard/core"
	"github.com/layer-3/taskboard/internal/logctx"
	"github.com/layer-3/taskboard/ports"
	"golang.org/x/crypto/bcrypt"
)

type RegisterInput struct {
	Name     string `json:"name" validate:"min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"min=6"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Session is the result of a successful register or login.
type Session struct {
	User  core.Identity `json:"user"`
	Token string        `json:"token"`
}

// AuthService handles authentication business logic
type AuthService struct {
	users       ports.UserRepository
	tokenizer   ports.Tokenizer
	revocations ports.RevocationStore
	eventPub    ports.EventPublisher

	hashCost int
	now      func() time.Time
}

// NewAuthService creates a new authentication service
func NewAuthService(
	users ports.UserRepository,
	tokenizer ports.Tokenizer,
	revocations ports.RevocationStore,
	eventPub ports.EventPublisher,
) *AuthService {
	return &AuthService{
		users:       users,
		tokenizer:   tokenizer,
		revocations: revocations,
		eventPub:    eventPub,
		hashCost:    bcrypt.DefaultCost,
		now:         time.Now,
	}
}

// Register creates a user with the user role and signs them in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	hash, err := hashPassword(in.Password, s.hashCost)
	if err != nil {
		return nil, err
	}

	user := &core.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         core.RoleUser,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: create user: %w", err)
	}

	logctx.From(ctx).Info("user_registered", "user_id", user.ID, "email", user.Email)

	return s.session(user)
}

// Login checks the credentials and issues a fresh token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	user, err := s.users.UserByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			return nil, core.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("service/auth: find user: %w", err)
	}

	if !checkPassword(user.PasswordHash, in.Password) {
		return nil, core.ErrInvalidCredentials
	}

	logctx.From(ctx).Info("user_logged_in", "user_id", user.ID)

	return s.session(user)
}

// Logout revokes the principal's token for the rest of its lifetime and
// announces it. A failed announcement is logged and ignored.
func (s *AuthService) Logout(ctx context.Context, p core.Principal) error {
	ttl := p.RemainingTTL(s.now())
	if err := s.revocations.Revoke(ctx, p.Token, ttl); err != nil {
		return fmt.Errorf("service/auth: revoke token: %w", err)
	}

	if err := s.eventPub.PublishLogout(ctx, p.Identity.ID, p.TokenID); err != nil {
		logctx.From(ctx).Warn("publish_logout_failed", "user_id", p.Identity.ID, "error", err)
	}

	logctx.From(ctx).Info("user_logged_out", "user_id", p.Identity.ID, "ttl", ttl)
	return nil
}

func (s *AuthService) session(user *core.User) (*Session, error) {
	token, _, err := s.tokenizer.Issue(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("service/auth: issue token: %w", err)
	}

	return &Session{User: user.Identity(), Token: token}, nil
}

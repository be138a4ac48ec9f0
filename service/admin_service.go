package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/layer-3/taskboard/core"
	"github.com/layer-3/taskboard/internal/logctx"
	"github.com/layer-3/taskboard/ports"
	"golang.org/x/crypto/bcrypt"
)

// AdminInput describes the bootstrap administrator account.
type AdminInput struct {
	Name     string `json:"name" validate:"min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"min=6"`
}

// BootstrapResult reports what EnsureAdmin did.
type BootstrapResult int

const (
	AdminUnchanged BootstrapResult = iota
	AdminCreated
	AdminPromoted
)

func (r BootstrapResult) String() string {
	switch r {
	case AdminCreated:
		return "created"
	case AdminPromoted:
		return "promoted"
	default:
		return "unchanged"
	}
}

type AdminService struct {
	users    ports.UserRepository
	eventPub ports.EventPublisher

	hashCost int
}

func NewAdminService(users ports.UserRepository, eventPub ports.EventPublisher) *AdminService {
	return &AdminService{
		users:    users,
		eventPub: eventPub,
		hashCost: bcrypt.DefaultCost,
	}
}

// ListUsers returns all accounts, newest first.
func (s *AdminService) ListUsers(ctx context.Context) ([]core.User, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/admin: list users: %w", err)
	}
	return users, nil
}

func (s *AdminService) UpdateRole(ctx context.Context, id string, role core.Role) (*core.User, error) {
	if !role.Valid() {
		return nil, core.ErrInvalidRole
	}

	user, err := s.users.UserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/admin: find user: %w", err)
	}

	user.Role = role
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("service/admin: update user: %w", err)
	}

	logctx.From(ctx).Info("user_role_updated", "user_id", user.ID, "role", role)
	return user, nil
}

// DeleteUser removes the account. Tokens already issued to it stop working
// at the gate's identity lookup.
func (s *AdminService) DeleteUser(ctx context.Context, id string) error {
	user, err := s.users.DeleteUser(ctx, id)
	if err != nil {
		return fmt.Errorf("service/admin: delete user: %w", err)
	}

	if err := s.eventPub.PublishUserDeleted(ctx, user.ID); err != nil {
		logctx.From(ctx).Warn("publish_user_deleted_failed", "user_id", user.ID, "error", err)
	}

	logctx.From(ctx).Info("user_deleted", "user_id", user.ID, "email", user.Email)
	return nil
}

// EnsureAdmin creates the administrator or promotes an existing account with
// the same email. Promotion also resets the password. An account that is
// already an admin is left alone.
func (s *AdminService) EnsureAdmin(ctx context.Context, in AdminInput) (BootstrapResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	if err := validateStruct(in); err != nil {
		return AdminUnchanged, err
	}

	existing, err := s.users.UserByEmail(ctx, in.Email)
	switch {
	case errors.Is(err, core.ErrUserNotFound):
		hash, err := hashPassword(in.Password, s.hashCost)
		if err != nil {
			return AdminUnchanged, err
		}
		user := &core.User{Name: in.Name, Email: in.Email, PasswordHash: hash, Role: core.RoleAdmin}
		if err := s.users.CreateUser(ctx, user); err != nil {
			return AdminUnchanged, fmt.Errorf("service/admin: create admin: %w", err)
		}
		return AdminCreated, nil
	case err != nil:
		return AdminUnchanged, fmt.Errorf("service/admin: find admin: %w", err)
	case existing.Role == core.RoleAdmin:
		return AdminUnchanged, nil
	}

	hash, err := hashPassword(in.Password, s.hashCost)
	if err != nil {
		return AdminUnchanged, err
	}
	existing.Role = core.RoleAdmin
	existing.PasswordHash = hash
	if err := s.users.UpdateUser(ctx, existing); err != nil {
		return AdminUnchanged, fmt.Errorf("service/admin: promote admin: %w", err)
	}
	return AdminPromoted, nil
}

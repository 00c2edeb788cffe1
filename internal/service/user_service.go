package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"blogsphere/internal/cache"
	apperrors "blogsphere/internal/errors"
	"blogsphere/internal/logging"
	"blogsphere/internal/model"
	"blogsphere/internal/repository"
)

const userCacheTTL = 5 * time.Minute

// UserService is the admin-facing user management surface.
type UserService interface {
	ListUsers(ctx context.Context) ([]model.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
	CreateUser(ctx context.Context, name, email, password string, role model.Role) (*model.User, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role model.Role) (*model.User, error)
	DeleteUser(ctx context.Context, callerID, id uuid.UUID) error
}

type userService struct {
	repo  repository.UserRepository
	cache *cache.Client
	log   logging.Logger
}

// NewUserService creates a user service.
func NewUserService(repo repository.UserRepository, cache *cache.Client, log logging.Logger) UserService {
	return &userService{repo: repo, cache: cache, log: log}
}

func (s *userService) cacheKey(id uuid.UUID) string {
	return fmt.Sprintf("user:%s", id.String())
}

// ListUsers returns every user, newest first.
func (s *userService) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.Store("Failed to fetch users", err)
	}
	return users, nil
}

// GetUser retrieves a user by ID with caching.
func (s *userService) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var cached model.User
	if s.cache.GetJSON(ctx, s.cacheKey(id), &cached) {
		return &cached, nil
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "User not found", "Failed to fetch user")
	}

	s.cache.SetJSON(ctx, s.cacheKey(id), user, userCacheTTL)
	return user, nil
}

// CreateUser creates an account on behalf of an admin. An empty role means RoleUser.
func (s *userService) CreateUser(ctx context.Context, name, email, password string, role model.Role) (*model.User, error) {
	if role == "" {
		role = model.RoleUser
	}
	if !role.Valid() {
		return nil, apperrors.Validation("Invalid role provided")
	}
	user, err := createUser(ctx, s.repo, name, email, password, role)
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "user created by admin", "user_id", user.ID, "role", user.Role)
	return user, nil
}

// UpdateRole changes a user's role.
func (s *userService) UpdateRole(ctx context.Context, id uuid.UUID, role model.Role) (*model.User, error) {
	if !role.Valid() {
		return nil, apperrors.Validation("Invalid role provided")
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "User not found", "Failed to update user role")
	}

	user.Role = role
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, apperrors.Store("Failed to update user role", err)
	}

	s.invalidate(ctx, id)
	return user, nil
}

// DeleteUser removes a user. Admins cannot delete themselves.
func (s *userService) DeleteUser(ctx context.Context, callerID, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return lookupErr(err, "User not found", "Failed to delete user")
	}
	if callerID == id {
		return apperrors.Validation("You cannot delete your own admin account")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return apperrors.Store("Failed to delete user", err)
	}

	s.invalidate(ctx, id)
	s.log.Info(ctx, "user deleted", "user_id", id, "by", callerID)
	return nil
}

func (s *userService) invalidate(ctx context.Context, id uuid.UUID) {
	if err := s.cache.Delete(ctx, s.cacheKey(id)); err != nil {
		s.log.Warn(ctx, "user cache invalidation failed", "user_id", id, "error", err)
	}
}

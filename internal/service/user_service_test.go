package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blogsphere/internal/cache"
	apperrors "blogsphere/internal/errors"
	"blogsphere/internal/logging"
	"blogsphere/internal/model"
	"blogsphere/internal/repository/memory"
)

func TestUserService_CreateUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name        string
		email       string
		role        model.Role
		expectedErr error
		wantRole    model.Role
	}{
		{"default role", "one@example.com", "", nil, model.RoleUser},
		{"admin", "two@example.com", model.RoleAdmin, nil, model.RoleAdmin},
		{"invalid role", "three@example.com", "superuser", apperrors.ErrValidation, ""},
		{"duplicate email", "ONE@example.com", model.RoleUser, apperrors.ErrConflict, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := f.users.CreateUser(ctx, "someone", tt.email, "secret123", tt.role)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRole, user.Role)
			assert.NotEqual(t, "secret123", user.PasswordHash)
		})
	}
}

func TestUserService_UpdateRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	member := f.user(t, "member", model.RoleUser)

	updated, err := f.users.UpdateRole(ctx, member.UserID, model.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, updated.Role)

	_, err = f.users.UpdateRole(ctx, member.UserID, "owner")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = f.users.UpdateRole(ctx, uuid.New(), model.RoleUser)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUserService_LogsFailedInvalidation(t *testing.T) {
	store := memory.New()
	unreachable := cache.New("127.0.0.1:1", "", 0)
	defer unreachable.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var buf bytes.Buffer
	svc := NewUserService(store.Users(), unreachable, logging.New(&buf, "warn", "text"))
	member := &model.User{Name: "member", Email: "member@example.com", PasswordHash: "x", Role: model.RoleUser}
	require.NoError(t, store.Users().Create(ctx, member))

	updated, err := svc.UpdateRole(ctx, member.ID, model.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, updated.Role)
	assert.Contains(t, buf.String(), "user cache invalidation failed")
}

func TestUserService_DeleteUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.user(t, "admin", model.RoleAdmin)
	member := f.user(t, "member", model.RoleUser)

	err := f.users.DeleteUser(ctx, admin.UserID, admin.UserID)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	_, err = f.users.GetUser(ctx, admin.UserID)
	assert.NoError(t, err)

	require.NoError(t, f.users.DeleteUser(ctx, admin.UserID, member.UserID))
	_, err = f.users.GetUser(ctx, member.UserID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	err = f.users.DeleteUser(ctx, admin.UserID, member.UserID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUserService_ListUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "first", model.RoleUser)
	f.user(t, "second", model.RoleUser)

	users, err := f.users.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "second", users[0].Name)
}
